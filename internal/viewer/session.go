// Package viewer owns one loaded report: its board, options and needle.
package viewer

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"foxie/internal/config"
	"foxie/internal/logging"
	"foxie/internal/report"
	"foxie/internal/skills"
	"foxie/internal/svg"
	"foxie/internal/timeline"
)

var capitalized = regexp.MustCompile(`^[A-Z]`)

// Config carries the drawing scale and initial options of a session.
type Config struct {
	MsPerPixel  float64
	RailHeight  float64
	RailPad     float64
	Options     timeline.Options
	BonusSkills map[int64]string
}

// DefaultConfig matches the board of a freshly loaded report.
func DefaultConfig() Config {
	return Config{
		MsPerPixel: timeline.DefaultMsPerPixel,
		RailHeight: 20,
		RailPad:    4,
		Options:    timeline.DefaultOptions(),
	}
}

// ConfigFrom builds a session Config from the file configuration.
func ConfigFrom(cfg *config.ViewerConfig) (Config, error) {
	bonus, err := cfg.BonusSkillOverrides()
	if err != nil {
		return Config{}, err
	}
	return Config{
		MsPerPixel: cfg.MsPerPixel,
		RailHeight: cfg.RailHeight,
		RailPad:    cfg.RailPad,
		Options: timeline.Options{
			ShowDps:          cfg.Options.ShowDps,
			SortByProfession: cfg.Options.SortByProfession,
			ShowIcons:        cfg.Options.ShowIcons,
			VideoOffset:      cfg.VideoOffset,
		},
		BonusSkills: bonus,
	}, nil
}

// Viewport is the visible window of the scrollable board container.
// ScrollLeft is the container's current horizontal scroll.
type Viewport struct {
	Left       float64 `json:"left"`
	Width      float64 `json:"width"`
	ScrollLeft float64 `json:"scrollLeft"`
}

// NeedleUpdate tells the page where to put the needle and scroll position.
// VideoTime is set only when the video should seek.
type NeedleUpdate struct {
	X          float64  `json:"x"`
	Time       float64  `json:"time"`
	ScrollLeft float64  `json:"scrollLeft"`
	VideoTime  *float64 `json:"videoTime,omitempty"`
}

// Session is the controller of one displayed report.
type Session struct {
	ID      string
	Log     *report.Log
	Dims    timeline.Dimensions
	Created time.Time

	mu         sync.Mutex
	board      *svg.Node
	legend     *svg.Node
	needle     *svg.Node
	opts       timeline.Options
	rows       int
	viewport   Viewport
	scrollLeft float64
	needleTime float64
	video      *Video
	closed     bool
}

// UsedSkills returns the ids referenced by casts plus every skill whose
// name is already capitalized, ascending.
func UsedSkills(l *report.Log) []int64 {
	used := make(map[int64]struct{})
	for _, casts := range l.Casts {
		for _, c := range casts {
			used[c.ID] = struct{}{}
		}
	}
	for id, name := range l.Skills {
		if capitalized.MatchString(name) {
			used[id] = struct{}{}
		}
	}
	ids := make([]int64, 0, len(used))
	for id := range used {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// NewSession prepares l for display: it sorts casts, waits for skill
// metadata, builds the board and performs the initial draw.
func NewSession(ctx context.Context, l *report.Log, loader skills.Loader, cfg Config) (*Session, error) {
	log := logging.FromContext(ctx)
	l.SortCasts()

	if l.Skills == nil {
		l.Skills = make(map[int64]string)
	}
	if l.Icons == nil {
		l.Icons = make(map[int64]string)
	}
	if loader != nil {
		meta, err := loader.Load(ctx, UsedSkills(l))
		if err != nil {
			return nil, fmt.Errorf("load skill data: %w", err)
		}
		for id, s := range meta {
			if _, ok := l.Skills[id]; !ok && s.Name != "" {
				l.Skills[id] = s.Name
			}
			if s.Icon != "" {
				l.Icons[id] = s.Icon
			}
		}
	}

	dims := timeline.NewDimensions(l.Start, l.End, cfg.MsPerPixel, cfg.RailHeight, cfg.RailPad)
	board, legend, needle := timeline.NewBoard(dims)

	for id, name := range skills.BonusSkills() {
		l.Skills[id] = name
	}
	for id, name := range cfg.BonusSkills {
		l.Skills[id] = name
	}

	s := &Session{
		ID:         uuid.New().String(),
		Log:        l,
		Dims:       dims,
		Created:    time.Now(),
		board:      board,
		legend:     legend,
		needle:     needle,
		opts:       cfg.Options,
		needleTime: l.Start,
	}
	s.rows = timeline.Draw(board, legend, needle, l, dims, s.opts)
	log.Info("session created", "session", s.ID, "encounter", l.Encounter,
		"players", len(l.Players), "rows", s.rows, "width", dims.Width)
	return s, nil
}

// SetOption flips a checkbox option and redraws the board.
func (s *Session) SetOption(key string, checked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.opts.Set(key, checked); err != nil {
		return err
	}
	s.rows = timeline.Draw(s.board, s.legend, s.needle, s.Log, s.Dims, s.opts)
	return nil
}

// SetVideoOffset sets the seconds added to log time when seeking the video.
func (s *Session) SetVideoOffset(sec float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts.VideoOffset = sec
}

// Options returns a copy of the current options.
func (s *Session) Options() timeline.Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts
}

// Rows returns the row count of the last draw.
func (s *Session) Rows() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows
}

// BoardSVG serializes the board.
func (s *Session) BoardSVG() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.String()
}

// LegendSVG serializes the legend.
func (s *Session) LegendSVG() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.legend.String()
}

// NeedleIsLast reports whether the needle is the board's last child.
func (s *Session) NeedleIsLast() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.LastChild() == s.needle
}

// SetViewport records the board container geometry and scroll reported
// by the page.
func (s *Session) SetViewport(v Viewport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewport = v
	s.scrollLeft = s.clampScroll(v.ScrollLeft)
}

// Needle returns the current needle position.
func (s *Session) Needle() NeedleUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return NeedleUpdate{X: s.needle.Float("x"), Time: s.needleTime, ScrollLeft: s.scrollLeft}
}

// ScrollToLogTime moves the needle to logTime. The container recenters on
// the needle unless scrollVideo is set and the needle is already visible;
// with scrollVideo and an attached video the update carries a seek time.
func (s *Session) ScrollToLogTime(logTime float64, scrollVideo bool) NeedleUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scrollToLogTime(logTime, scrollVideo)
}

func (s *Session) scrollToLogTime(logTime float64, scrollVideo bool) NeedleUpdate {
	x := s.Dims.TimeToX(logTime)
	s.needle.SetFloat("x", x)
	s.needleTime = logTime
	if !scrollVideo || x < s.scrollLeft || x > s.scrollLeft+s.viewport.Width {
		s.scrollLeft = s.clampScroll(x - s.viewport.Width/2)
	}
	u := NeedleUpdate{X: x, Time: logTime, ScrollLeft: s.scrollLeft}
	if scrollVideo && s.video != nil {
		vt := (logTime-s.Log.Start)/1000 + s.opts.VideoOffset
		u.VideoTime = &vt
	}
	return u
}

func (s *Session) clampScroll(v float64) float64 {
	maxScroll := math.Max(0, s.Dims.Width-s.viewport.Width)
	return math.Min(math.Max(v, 0), maxScroll)
}

// Click handles a click on the board at page coordinate clientX.
func (s *Session) Click(clientX float64) NeedleUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	totalX := clientX + s.scrollLeft - s.viewport.Left
	return s.scrollToLogTime(s.Dims.XToTime(totalX), true)
}

// TimeLink handles a click on a time link. Zero or NaN starts are ignored.
func (s *Session) TimeLink(start float64) (NeedleUpdate, bool) {
	if start == 0 || math.IsNaN(start) {
		return NeedleUpdate{}, false
	}
	return s.ScrollToLogTime(start, true), true
}

// VideoTimeUpdate follows video playback. It never seeks the video back.
func (s *Session) VideoTimeUpdate(currentTime float64) NeedleUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	logTime := (currentTime-s.opts.VideoOffset)*1000 + s.Log.Start
	return s.scrollToLogTime(logTime, false)
}

// AttachVideo enables video seeking for this session.
func (s *Session) AttachVideo(v *Video) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.video = v
}

// Video returns the attached video or nil.
func (s *Session) Video() *Video {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.video
}

// Close releases the board and video.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.video = nil
	s.board.Clear()
	s.legend.Clear()
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

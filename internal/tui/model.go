// Package tui shows a loaded report in the terminal. It drives the same
// viewer.Session as the web page: arrow keys and mouse clicks move the
// needle, playback follows it the way a video would.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"foxie/internal/timeline"
	"foxie/internal/viewer"
)

const (
	defaultPxPerCol = 5
	maxPxPerCol     = 320
	playInterval    = 250 * time.Millisecond
)

// tickMsg advances playback.
type tickMsg time.Time

// Model is the bubbletea model of the terminal viewer.
type Model struct {
	sess      *viewer.Session
	keys      keyMap
	help      help.Model
	vp        viewport.Model
	jump      textinput.Model
	jumping   bool
	playing   bool
	playClock float64 // seconds of playback, like a video's currentTime
	pxPerCol  float64
	width     int
	height    int
	status    string
}

// New returns a model sized for a width x height terminal.
func New(sess *viewer.Session, width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "m:ss"
	ti.CharLimit = 10
	ti.Prompt = "go to "
	m := Model{
		sess:     sess,
		keys:     keys,
		help:     help.New(),
		vp:       viewport.New(width, 0),
		jump:     ti,
		pxPerCol: defaultPxPerCol,
	}
	m.resize(width, height)
	return m
}

// Run shows sess until the user quits.
func Run(sess *viewer.Session, width, height int) error {
	p := tea.NewProgram(New(sess, width, height), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) trackCols() int {
	cols := m.width - labelWidth - 1
	if cols < 1 {
		cols = 1
	}
	return cols
}

func (m Model) colMs() float64 {
	return m.pxPerCol * m.sess.Dims.MsPerPixel()
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
	m.vp.Width = width
	h := height - lipgloss.Height(m.header()) - lipgloss.Height(m.footer()) - 2
	if h < 1 {
		h = 1
	}
	m.vp.Height = h
	m.setViewport()
	m.refresh()
}

// setViewport reports the visible track width and keeps the current scroll.
func (m *Model) setViewport() {
	m.sess.SetViewport(viewer.Viewport{
		Width:      float64(m.trackCols()) * m.pxPerCol,
		ScrollLeft: m.sess.Needle().ScrollLeft,
	})
}

func (m *Model) refresh() {
	n := m.sess.Needle()
	w := window{scrollLeft: n.ScrollLeft, pxPerCol: m.pxPerCol, cols: m.trackCols()}
	lines := boardLines(m.sess.Log, m.sess.Dims, m.sess.Options(), n.X, w)
	m.vp.SetContent(strings.Join(lines, "\n"))
}

func (m *Model) scrub(deltaMs float64) {
	m.seek(m.sess.Needle().Time + deltaMs)
}

func (m *Model) seek(t float64) {
	l := m.sess.Log
	if t < l.Start {
		t = l.Start
	}
	if t > l.End {
		t = l.End
	}
	m.sess.ScrollToLogTime(t, true)
	m.refresh()
}

func (m *Model) toggle(key string, current bool) {
	if err := m.sess.SetOption(key, !current); err != nil {
		m.status = err.Error()
	}
	m.refresh()
}

func (m *Model) zoom(factor float64) {
	px := m.pxPerCol * factor
	if px < 1 || px > maxPxPerCol {
		return
	}
	m.pxPerCol = px
	m.setViewport()
	m.sess.ScrollToLogTime(m.sess.Needle().Time, false)
	m.refresh()
}

func tick() tea.Cmd {
	return tea.Tick(playInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tickMsg:
		if !m.playing {
			return m, nil
		}
		m.playClock += playInterval.Seconds()
		u := m.sess.VideoTimeUpdate(m.playClock)
		m.refresh()
		if u.Time >= m.sess.Log.End {
			m.playing = false
			return m, nil
		}
		return m, tick()
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && msg.X > labelWidth {
			m.sess.Click(float64(msg.X-labelWidth-1) * m.pxPerCol)
			m.refresh()
		}
	case tea.KeyMsg:
		if m.jumping {
			return m.updateJump(msg)
		}
		opts := m.sess.Options()
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Left):
			m.scrub(-m.colMs())
		case key.Matches(msg, m.keys.Right):
			m.scrub(m.colMs())
		case key.Matches(msg, m.keys.PageLeft):
			m.scrub(-m.colMs() * float64(m.trackCols()) / 2)
		case key.Matches(msg, m.keys.PageRight):
			m.scrub(m.colMs() * float64(m.trackCols()) / 2)
		case key.Matches(msg, m.keys.Home):
			m.seek(m.sess.Log.Start)
		case key.Matches(msg, m.keys.End):
			m.seek(m.sess.Log.End)
		case key.Matches(msg, m.keys.Up):
			m.vp.SetYOffset(m.vp.YOffset - 1)
		case key.Matches(msg, m.keys.Down):
			m.vp.SetYOffset(m.vp.YOffset + 1)
		case key.Matches(msg, m.keys.ZoomIn):
			m.zoom(0.5)
		case key.Matches(msg, m.keys.ZoomOut):
			m.zoom(2)
		case key.Matches(msg, m.keys.ShowDps):
			m.toggle(timeline.OptionShowDps, opts.ShowDps)
		case key.Matches(msg, m.keys.SortByProfession):
			m.toggle(timeline.OptionSortByProfession, opts.SortByProfession)
		case key.Matches(msg, m.keys.ShowIcons):
			m.toggle(timeline.OptionShowIcons, opts.ShowIcons)
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.resize(m.width, m.height)
		case key.Matches(msg, m.keys.Jump):
			m.jumping = true
			m.jump.Reset()
			return m, m.jump.Focus()
		case key.Matches(msg, m.keys.Play):
			m.playing = !m.playing
			if !m.playing {
				return m, nil
			}
			m.playClock = (m.sess.Needle().Time-m.sess.Log.Start)/1000 + opts.VideoOffset
			return m, tick()
		}
	}
	return m, nil
}

func (m Model) updateJump(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.jumping = false
		m.jump.Blur()
		sec, err := parseClock(m.jump.Value())
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		if _, ok := m.sess.TimeLink(m.sess.Log.Start + sec*1000); !ok {
			m.status = "ignored jump to the log start"
			return m, nil
		}
		m.status = ""
		m.refresh()
		return m, nil
	case tea.KeyEsc:
		m.jumping = false
		m.jump.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.jump, cmd = m.jump.Update(msg)
	return m, cmd
}

func (m Model) header() string {
	l := m.sess.Log
	opts := m.sess.Options()
	name := l.Encounter
	if name == "" {
		name = "report"
	}
	indicator := func(on bool, label string) string {
		color := lipgloss.Color("9")
		if on {
			color = lipgloss.Color("10")
		}
		return lipgloss.NewStyle().Foreground(color).Render("●") + " " + label
	}
	needle := m.sess.Needle()
	state := "paused"
	if m.playing {
		state = "playing"
	}
	return fmt.Sprintf("%s  %s / %s  %s | %s | %s | %s | %.0fms/col",
		titleStyle.Render(name),
		formatClock(needle.Time-l.Start), formatClock(l.Duration()), state,
		indicator(opts.ShowDps, "dps"),
		indicator(opts.SortByProfession, "profession"),
		indicator(opts.ShowIcons, "icons"),
		m.colMs())
}

func (m Model) footer() string {
	if m.jumping {
		return m.jump.View()
	}
	if m.status != "" {
		return m.status + "\n" + m.help.View(m.keys)
	}
	return m.help.View(m.keys)
}

func (m Model) View() string {
	divider := dimStyle.Render(strings.Repeat("─", m.width))
	return strings.Join([]string{m.header(), divider, m.vp.View(), divider, m.footer()}, "\n")
}

package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"foxie/internal/report"
	"foxie/internal/timeline"
)

const (
	labelWidth  = 16
	bucketMs    = 10 * 1000
	emptyCell   = ' '
	castCell    = '─'
	iconCell    = '■'
	needleGlyph = "│"
)

var (
	sparkRunes  = []rune("▁▂▃▄▅▆▇█")
	labelStyle  = lipgloss.NewStyle().Width(labelWidth).Bold(true)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	needleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// window is the part of the board visible in the terminal.
type window struct {
	scrollLeft float64 // px
	pxPerCol   float64
	cols       int
}

func (w window) col(x float64) int {
	return int(math.Floor((x - w.scrollLeft) / w.pxPerCol))
}

// boardLines renders one line per rail in layout order. The damage graph
// takes a single line here.
func boardLines(l *report.Log, dims timeline.Dimensions, opts timeline.Options, needleX float64, w window) []string {
	rows, _ := timeline.Layout(l, opts)
	needle := w.col(needleX)
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		var label string
		var track []rune
		if r.Graph {
			label = timeline.DpsGraphLabel
			track = sparkline(timeline.SumFirstTarget(l), dims, w)
		} else {
			p := l.Players[r.PlayerID]
			label = p.Name
			if label == "" {
				label = p.Account
			}
			track = castTrack(l, l.Casts[r.PlayerID], dims, opts.LabelMode(), w)
		}
		label = truncate.StringWithTail(label, labelWidth-1, "…")
		lines = append(lines, labelStyle.Render(label)+dimStyle.Render("┃")+renderTrack(track, needle, r.Graph))
	}
	return lines
}

func renderTrack(track []rune, needle int, graph bool) string {
	style := lipgloss.NewStyle()
	if graph {
		style = graphStyle
	}
	if needle < 0 || needle >= len(track) {
		return style.Render(string(track))
	}
	return style.Render(string(track[:needle])) + needleStyle.Render(needleGlyph) + style.Render(string(track[needle+1:]))
}

// castTrack marks the columns covered by casts. The column a cast starts in
// shows the first letter of the skill, or a block in icon mode.
func castTrack(l *report.Log, casts []report.Cast, dims timeline.Dimensions, mode timeline.LabelMode, w window) []rune {
	track := []rune(strings.Repeat(string(emptyCell), w.cols))
	for _, c := range casts {
		x0 := dims.TimeToX(c.Start)
		x1 := math.Max(x0+1, dims.TimeToX(c.End()))
		first := w.col(x0)
		last := int(math.Ceil((x1-w.scrollLeft)/w.pxPerCol)) - 1
		if last < first {
			last = first
		}
		if last < 0 || first >= w.cols {
			continue
		}
		for i := max(first, 0); i <= min(last, w.cols-1); i++ {
			if track[i] == emptyCell {
				track[i] = castCell
			}
		}
		if first >= 0 {
			track[first] = castMark(l, c.ID, mode)
		}
	}
	return track
}

func castMark(l *report.Log, id int64, mode timeline.LabelMode) rune {
	if mode == timeline.LabelIcon {
		return iconCell
	}
	for _, r := range l.SkillName(id) {
		return r
	}
	return iconCell
}

func sparkline(cumulative []float64, dims timeline.Dimensions, w window) []rune {
	buckets := timeline.DamagePer10s(cumulative)
	var peak float64
	for _, v := range buckets {
		peak = math.Max(peak, v)
	}
	track := []rune(strings.Repeat(string(emptyCell), w.cols))
	for i := range track {
		t := dims.XToTime(w.scrollLeft + (float64(i)+0.5)*w.pxPerCol)
		b := int((t - dims.Start) / bucketMs)
		if b < 0 || b >= len(buckets) {
			continue
		}
		level := 0
		if peak > 0 {
			level = int(buckets[b] / peak * float64(len(sparkRunes)-1))
		}
		track[i] = sparkRunes[level]
	}
	return track
}

// formatClock renders ms of fight time as m:ss.s.
func formatClock(ms float64) string {
	if ms < 0 {
		ms = 0
	}
	sec := ms / 1000
	m := int(sec) / 60
	return fmt.Sprintf("%d:%04.1f", m, sec-float64(m*60))
}

// parseClock reads "m:ss", "m:ss.s" or plain seconds.
func parseClock(text string) (float64, error) {
	text = strings.TrimSpace(text)
	var mins int
	var sec float64
	if strings.Contains(text, ":") {
		if _, err := fmt.Sscanf(text, "%d:%f", &mins, &sec); err != nil {
			return 0, fmt.Errorf("bad time %q: %w", text, err)
		}
	} else if _, err := fmt.Sscanf(text, "%f", &sec); err != nil {
		return 0, fmt.Errorf("bad time %q: %w", text, err)
	}
	if mins < 0 || sec < 0 || math.IsNaN(sec) {
		return 0, fmt.Errorf("bad time %q", text)
	}
	return float64(mins)*60 + sec, nil
}

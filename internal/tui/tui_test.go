package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"foxie/internal/report"
	"foxie/internal/timeline"
	"foxie/internal/viewer"
)

func newTestSession(t *testing.T) *viewer.Session {
	t.Helper()
	l := &report.Log{
		Encounter: "Cairn",
		Start:     0,
		End:       60000,
		Players: []report.Player{
			{Name: "Alpha", Account: "alpha.1", Group: 1, Profession: "Weaver", Damage1S: [][]float64{{0, 100, 200, 300}}},
			{Name: "A very long character name", Account: "bravo.2", Group: 2, Profession: "Firebrand"},
		},
		Casts: map[int][]report.Cast{
			0: {{ID: 1, Start: 1000, Duration: 400}},
		},
		Skills: map[int64]string{1: "Fireball"},
	}
	sess, err := viewer.NewSession(context.Background(), l, nil, viewer.DefaultConfig())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return sess
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	mm, ok := next.(Model)
	if !ok {
		t.Fatalf("unexpected model type %T", next)
	}
	return mm, cmd
}

func TestBoardLines(t *testing.T) {
	sess := newTestSession(t)
	w := window{scrollLeft: 0, pxPerCol: 5, cols: 40}
	opts := timeline.Options{}
	lines := boardLines(sess.Log, sess.Dims, opts, 0, w)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "Alpha") || !strings.Contains(lines[0], "F───") {
		t.Errorf("cast not drawn: %q", lines[0])
	}
	if !strings.Contains(lines[0], "┃│") {
		t.Errorf("needle should sit in the first column: %q", lines[0])
	}
	if !strings.Contains(lines[1], "A very long ch…") {
		t.Errorf("long names should be truncated: %q", lines[1])
	}

	opts.ShowIcons = true
	lines = boardLines(sess.Log, sess.Dims, opts, 0, w)
	if !strings.Contains(lines[0], "■───") {
		t.Errorf("icon mode should use a block: %q", lines[0])
	}

	opts.ShowDps = true
	lines = boardLines(sess.Log, sess.Dims, opts, 0, w)
	if len(lines) != 3 || !strings.Contains(lines[0], timeline.DpsGraphLabel) {
		t.Fatalf("damage graph should come first: %q", lines)
	}
}

func TestCastTrackOffscreen(t *testing.T) {
	sess := newTestSession(t)
	w := window{scrollLeft: 500, pxPerCol: 5, cols: 10}
	track := castTrack(sess.Log, sess.Log.Casts[0], sess.Dims, timeline.LabelName, w)
	if strings.TrimSpace(string(track)) != "" {
		t.Errorf("cast before the window should not be drawn: %q", string(track))
	}
}

func TestScrubKeys(t *testing.T) {
	m := New(newTestSession(t), 80, 24)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if got := m.sess.Needle().Time; got != 100 {
		t.Fatalf("needle time = %v, want 100", got)
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if got := m.sess.Needle().Time; got != 0 {
		t.Fatalf("needle should stop at the log start, got %v", got)
	}
	m, _ = update(t, m, runes("$"))
	if got := m.sess.Needle().Time; got != 60000 {
		t.Fatalf("needle time = %v, want 60000", got)
	}
}

func TestMouseClickMovesNeedle(t *testing.T) {
	m := New(newTestSession(t), 80, 24)
	m, _ = update(t, m, tea.MouseMsg{X: labelWidth + 1 + 10, Y: 3, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	n := m.sess.Needle()
	if n.X != 50 || n.Time != 1000 {
		t.Fatalf("unexpected needle %+v", n)
	}
}

func TestToggleOptions(t *testing.T) {
	m := New(newTestSession(t), 80, 24)
	m, _ = update(t, m, runes("d"))
	if !m.sess.Options().ShowDps {
		t.Fatalf("d should enable the damage graph")
	}
	if !strings.Contains(m.View(), timeline.DpsGraphLabel) {
		t.Errorf("view should show the damage graph")
	}
	m, _ = update(t, m, runes("i"))
	if m.sess.Options().ShowIcons {
		t.Errorf("i should switch to skill names")
	}
	m, _ = update(t, m, runes("p"))
	if !m.sess.Options().SortByProfession {
		t.Errorf("p should sort by profession")
	}
}

func TestJumpToTime(t *testing.T) {
	m := New(newTestSession(t), 80, 24)
	m, _ = update(t, m, runes("g"))
	if !m.jumping {
		t.Fatalf("g should open the jump prompt")
	}
	m, _ = update(t, m, runes("0:30"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	n := m.sess.Needle()
	if m.jumping || n.Time != 30000 {
		t.Fatalf("unexpected needle %+v", n)
	}
	if n.ScrollLeft != 1500-315.0/2 {
		t.Errorf("board should recenter on the needle, scrollLeft = %v", n.ScrollLeft)
	}

	m, _ = update(t, m, runes("g"))
	m, _ = update(t, m, runes("0:00"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.sess.Needle().Time != 30000 || m.status == "" {
		t.Errorf("a jump to the log start is ignored")
	}
}

func TestPlaybackFollowsNeedle(t *testing.T) {
	m := New(newTestSession(t), 80, 24)
	m, cmd := update(t, m, runes(" "))
	if !m.playing || cmd == nil {
		t.Fatalf("space should start playback")
	}
	m, cmd = update(t, m, tickMsg(time.Now()))
	if got := m.sess.Needle().Time; got != 250 {
		t.Fatalf("needle time = %v, want 250", got)
	}
	if cmd == nil {
		t.Errorf("playback should schedule the next tick")
	}
	m, _ = update(t, m, runes(" "))
	m, cmd = update(t, m, tickMsg(time.Now()))
	if cmd != nil || m.sess.Needle().Time != 250 {
		t.Errorf("paused playback should not move the needle")
	}
}

func TestQuit(t *testing.T) {
	m := New(newTestSession(t), 80, 24)
	_, cmd := update(t, m, runes("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("expected tea.QuitMsg")
	}
}

func TestParseClock(t *testing.T) {
	cases := map[string]float64{"1:30": 90, "0:05.5": 5.5, "42": 42, " 2:00 ": 120}
	for in, want := range cases {
		got, err := parseClock(in)
		if err != nil || got != want {
			t.Errorf("parseClock(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := parseClock("soon"); err == nil {
		t.Errorf("expected error for text")
	}
	if got := formatClock(90500); got != "1:30.5" {
		t.Errorf("formatClock = %q", got)
	}
}

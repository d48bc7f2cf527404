// Package report holds the parsed combat log and the ways of obtaining one.
package report

import (
	"errors"
	"sort"
)

var (
	// ErrInvalidJSON is returned when a log file is not a JSON blob.
	ErrInvalidJSON = errors.New("failed to parse log file, should be JSON blob")
	// ErrBadReportURL is returned for report URLs outside the accepted hosts.
	ErrBadReportURL = errors.New("paste in format https://dps.report/Sosx-20180802-193036_cairn")
	// ErrFetch is returned when a remote report cannot be fetched.
	ErrFetch = errors.New("failed to fetch that log, typo maybe?")
	// ErrEmptyReport is returned when the remote service answers without a log.
	ErrEmptyReport = errors.New("report is empty")
)

// Cast is a single skill activation.
type Cast struct {
	ID       int64   `json:"id"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// End returns the log time at which the cast finished.
func (c Cast) End() float64 { return c.Start + c.Duration }

// Player is one member of the squad. Damage1S holds cumulative damage per
// second, one series per target.
type Player struct {
	Name       string      `json:"name"`
	Account    string      `json:"account"`
	Group      int         `json:"group"`
	Profession string      `json:"profession"`
	Damage1S   [][]float64 `json:"damage1S"`
}

// Log is a parsed encounter. Times are milliseconds of log time.
type Log struct {
	Encounter string           `json:"encounter"`
	Start     float64          `json:"start"`
	End       float64          `json:"end"`
	Players   []Player         `json:"players"`
	Casts     map[int][]Cast   `json:"casts"`
	Skills    map[int64]string `json:"skills"`

	// Icons maps skill ids to icon URLs once metadata is loaded.
	Icons map[int64]string `json:"-"`
	// TargetDamage1S is the summed first-target series of all players,
	// filled in when the DPS graph is drawn.
	TargetDamage1S []float64 `json:"-"`
}

// Duration returns End-Start.
func (l *Log) Duration() float64 { return l.End - l.Start }

// PlayerIDs returns the ids of players with a cast list, ascending.
func (l *Log) PlayerIDs() []int {
	ids := make([]int, 0, len(l.Casts))
	for id := range l.Casts {
		if id < 0 || id >= len(l.Players) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// SortCasts orders every player's casts by start time in place.
func (l *Log) SortCasts() {
	for id := range l.Casts {
		casts := l.Casts[id]
		sort.SliceStable(casts, func(i, j int) bool { return casts[i].Start < casts[j].Start })
	}
}

// SkillName returns the display name of a skill or its numeric id.
func (l *Log) SkillName(id int64) string {
	if name, ok := l.Skills[id]; ok && name != "" {
		return name
	}
	return formatID(id)
}

package export

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"foxie/internal/report"
)

// ReplayCasts replays cast rows from r to writer. A speed >0 spaces rows by
// their log time divided by speed; speed <= 0 inserts no delay.
func ReplayCasts(r io.Reader, writer CastWriter, speed float64) error {
	dec := json.NewDecoder(r)
	var prev float64
	first := true
	for {
		var row CastRow
		if err := dec.Decode(&row); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if !first && speed > 0 {
			diff := time.Duration((row.Start - prev) * float64(time.Millisecond) / speed)
			if diff > 0 {
				time.Sleep(diff)
			}
		}
		if err := writer.WriteCast(row); err != nil {
			return err
		}
		prev = row.Start
		first = false
	}
}

// ReplayCastFile opens a file and replays its cast rows.
func ReplayCastFile(path string, writer CastWriter, speed float64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ReplayCasts(f, writer, speed)
}

// LogCollector gathers cast rows back into a Log.
type LogCollector struct {
	log     *report.Log
	players map[int]bool
}

// NewLogCollector returns an empty collector.
func NewLogCollector() *LogCollector {
	return &LogCollector{
		log: &report.Log{
			Casts:  make(map[int][]report.Cast),
			Skills: make(map[int64]string),
			Icons:  make(map[int64]string),
		},
		players: make(map[int]bool),
	}
}

// WriteCast implements CastWriter.
func (c *LogCollector) WriteCast(row CastRow) error {
	l := c.log
	if l.Encounter == "" {
		l.Encounter = row.Encounter
	}
	for len(l.Players) <= row.PlayerID {
		l.Players = append(l.Players, report.Player{})
	}
	if !c.players[row.PlayerID] {
		c.players[row.PlayerID] = true
		l.Players[row.PlayerID] = report.Player{
			Name:       row.Player,
			Account:    row.Account,
			Group:      row.Group,
			Profession: row.Profession,
		}
	}
	l.Casts[row.PlayerID] = append(l.Casts[row.PlayerID], report.Cast{ID: row.SkillID, Start: row.Start, Duration: row.Duration})
	if row.Skill != "" {
		l.Skills[row.SkillID] = row.Skill
	}
	if end := row.Start + row.Duration; end > l.End {
		l.End = end
	}
	return nil
}

// Log returns the collected log.
func (c *LogCollector) Log() *report.Log {
	return c.log
}

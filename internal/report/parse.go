package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type eiSkillCast struct {
	CastTime float64 `json:"castTime"`
	Duration float64 `json:"duration"`
}

type eiRotation struct {
	ID     int64         `json:"id"`
	Skills []eiSkillCast `json:"skills"`
}

type eiPlayer struct {
	Name       string       `json:"name"`
	Account    string       `json:"account"`
	Group      int          `json:"group"`
	Profession string       `json:"profession"`
	Damage1S   [][]float64  `json:"damage1S"`
	Rotation   []eiRotation `json:"rotation"`
}

type eiSkill struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type eiPhase struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// eiLog is the subset of an Elite Insights JSON export foxie reads.
type eiLog struct {
	FightName string             `json:"fightName"`
	Players   []eiPlayer         `json:"players"`
	SkillMap  map[string]eiSkill `json:"skillMap"`
	Phases    []eiPhase          `json:"phases"`
	Error     string             `json:"error"`
}

// ParseJSON decodes an Elite Insights JSON export into a Log.
func ParseJSON(r io.Reader) (*Log, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	return parseBytes(data)
}

func parseBytes(data []byte) (*Log, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrEmptyReport
	}
	var raw eiLog
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if raw.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyReport, raw.Error)
	}
	if len(raw.Players) == 0 {
		return nil, ErrEmptyReport
	}
	return raw.toLog(), nil
}

func (raw *eiLog) toLog() *Log {
	l := &Log{
		Encounter: raw.FightName,
		Players:   make([]Player, len(raw.Players)),
		Casts:     make(map[int][]Cast, len(raw.Players)),
		Skills:    make(map[int64]string, len(raw.SkillMap)),
		Icons:     make(map[int64]string),
	}
	var lastEnd, longestSeries float64
	for i, p := range raw.Players {
		l.Players[i] = Player{
			Name:       p.Name,
			Account:    p.Account,
			Group:      p.Group,
			Profession: p.Profession,
			Damage1S:   p.Damage1S,
		}
		casts := []Cast{}
		for _, rot := range p.Rotation {
			for _, s := range rot.Skills {
				c := Cast{ID: rot.ID, Start: s.CastTime, Duration: s.Duration}
				if c.Duration < 0 {
					c.Duration = 0
				}
				if c.End() > lastEnd {
					lastEnd = c.End()
				}
				casts = append(casts, c)
			}
		}
		l.Casts[i] = casts
		for _, series := range p.Damage1S {
			if n := float64(len(series)) * 1000; n > longestSeries {
				longestSeries = n
			}
		}
	}
	for key, s := range raw.SkillMap {
		id, err := strconv.ParseInt(strings.TrimLeft(key, "sb"), 10, 64)
		if err != nil {
			continue
		}
		l.Skills[id] = s.Name
		if s.Icon != "" {
			l.Icons[id] = s.Icon
		}
	}
	if len(raw.Phases) > 0 && raw.Phases[0].End > raw.Phases[0].Start {
		l.Start = raw.Phases[0].Start
		l.End = raw.Phases[0].End
	} else {
		l.End = lastEnd
		if longestSeries > l.End {
			l.End = longestSeries
		}
	}
	return l
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// Package export writes casts and damage series to external sinks.
package export

import (
	"time"

	"foxie/internal/report"
	"foxie/internal/timeline"
)

// CastRow is one cast of one player.
type CastRow struct {
	Session    string    `json:"session"`    // TAG
	Encounter  string    `json:"encounter"`  // TAG
	PlayerID   int       `json:"player_id"`  // TAG
	Player     string    `json:"player"`     // FIELD
	Account    string    `json:"account"`    // FIELD
	Profession string    `json:"profession"` // FIELD
	Group      int       `json:"group"`      // FIELD
	SkillID    int64     `json:"skill_id"`   // FIELD
	Skill      string    `json:"skill"`      // FIELD
	Start      float64   `json:"start"`      // FIELD, ms of log time
	Duration   float64   `json:"duration"`   // FIELD, ms
	Timestamp  time.Time `json:"ts"`         // TIME INDEX
}

// DamageRow is one second of the summed first-target damage.
type DamageRow struct {
	Session   string    `json:"session"`   // TAG
	Encounter string    `json:"encounter"` // TAG
	Second    int       `json:"second"`    // FIELD
	Damage    float64   `json:"damage"`    // FIELD, cumulative
	Timestamp time.Time `json:"ts"`        // TIME INDEX
}

// CastWriter accepts cast rows.
type CastWriter interface {
	WriteCast(CastRow) error
}

// DamageWriter accepts damage rows.
type DamageWriter interface {
	WriteDamage(DamageRow) error
}

// Optional: writers may support batch mode
type batchCastWriter interface {
	WriteCasts([]CastRow) error
}

type batchDamageWriter interface {
	WriteDamages([]DamageRow) error
}

// CastRows flattens the casts of l. base anchors log time 0 to wall time.
func CastRows(l *report.Log, session string, base time.Time) []CastRow {
	var rows []CastRow
	for _, id := range l.PlayerIDs() {
		p := l.Players[id]
		for _, c := range l.Casts[id] {
			rows = append(rows, CastRow{
				Session:    session,
				Encounter:  l.Encounter,
				PlayerID:   id,
				Player:     p.Name,
				Account:    p.Account,
				Profession: p.Profession,
				Group:      p.Group,
				SkillID:    c.ID,
				Skill:      l.SkillName(c.ID),
				Start:      c.Start,
				Duration:   c.Duration,
				Timestamp:  base.Add(time.Duration(c.Start * float64(time.Millisecond))),
			})
		}
	}
	return rows
}

// DamageRows returns the summed first-target series of l, one row per second.
func DamageRows(l *report.Log, session string, base time.Time) []DamageRow {
	series := timeline.SumFirstTarget(l)
	rows := make([]DamageRow, len(series))
	for i, v := range series {
		rows[i] = DamageRow{
			Session:   session,
			Encounter: l.Encounter,
			Second:    i,
			Damage:    v,
			Timestamp: base.Add(time.Duration(l.Start*float64(time.Millisecond)) + time.Duration(i)*time.Second),
		}
	}
	return rows
}

// Export writes every cast and damage row of l. A nil writer skips its rows.
func Export(l *report.Log, session string, base time.Time, cw CastWriter, dw DamageWriter) error {
	if cw != nil {
		if err := writeCasts(cw, CastRows(l, session, base)); err != nil {
			return err
		}
	}
	if dw != nil {
		if err := writeDamages(dw, DamageRows(l, session, base)); err != nil {
			return err
		}
	}
	return nil
}

func writeCasts(w CastWriter, rows []CastRow) error {
	if bw, ok := w.(batchCastWriter); ok {
		return bw.WriteCasts(rows)
	}
	for _, r := range rows {
		if err := w.WriteCast(r); err != nil {
			return err
		}
	}
	return nil
}

func writeDamages(w DamageWriter, rows []DamageRow) error {
	if bw, ok := w.(batchDamageWriter); ok {
		return bw.WriteDamages(rows)
	}
	for _, r := range rows {
		if err := w.WriteDamage(r); err != nil {
			return err
		}
	}
	return nil
}

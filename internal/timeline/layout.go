package timeline

import (
	"sort"
	"strings"

	"foxie/internal/report"
)

// DpsGraphRows is the number of rails the aggregate damage graph occupies.
const DpsGraphRows = 3

// OrderPlayers returns player ids sorted by group, or by profession when
// byProfession is set. Ties keep ascending id order.
func OrderPlayers(l *report.Log, byProfession bool) []int {
	ids := l.PlayerIDs()
	if byProfession {
		sort.SliceStable(ids, func(i, j int) bool {
			return strings.Compare(l.Players[ids[i]].Profession, l.Players[ids[j]].Profession) < 0
		})
		return ids
	}
	sort.SliceStable(ids, func(i, j int) bool {
		return l.Players[ids[i]].Group < l.Players[ids[j]].Group
	})
	return ids
}

// Row is one rail of the board.
type Row struct {
	Index    int
	PlayerID int
	// Graph marks the aggregate damage rail; PlayerID is -1 for it.
	Graph bool
}

// Layout returns the rails in drawing order and the total row count.
func Layout(l *report.Log, opts Options) ([]Row, int) {
	var rows []Row
	row := 0
	if opts.ShowDps {
		rows = append(rows, Row{Index: row, PlayerID: -1, Graph: true})
		row += DpsGraphRows
	}
	for _, id := range OrderPlayers(l, opts.SortByProfession) {
		rows = append(rows, Row{Index: row, PlayerID: id})
		row++
	}
	return rows, row
}

// SumFirstTarget adds up every player's first-target damage series element-wise.
func SumFirstTarget(l *report.Log) []float64 {
	var total []float64
	for _, p := range l.Players {
		if len(p.Damage1S) == 0 {
			continue
		}
		for i, v := range p.Damage1S[0] {
			if i >= len(total) {
				total = append(total, 0)
			}
			total[i] += v
		}
	}
	return total
}

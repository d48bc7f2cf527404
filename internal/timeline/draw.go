package timeline

import (
	"foxie/internal/report"
	"foxie/internal/svg"
)

// DpsGraphLabel is the legend text of the aggregate damage rail.
const DpsGraphLabel = "Damage per 10s"

// Draw clears board and legend and redraws every rail for opts. The needle
// is resized to the board and appended last so it renders above the rails.
// It returns the number of rows drawn.
func Draw(board, legend, needle *svg.Node, l *report.Log, dims Dimensions, opts Options) int {
	board.Clear()
	legend.Clear()

	rows, rowCount := Layout(l, opts)
	for _, r := range rows {
		if r.Graph {
			l.TargetDamage1S = SumFirstTarget(l)
			DrawDpsGraph(board, l.TargetDamage1S, r.Index, dims)
			label := svg.New("text", "class", "name").SetText(DpsGraphLabel)
			label.SetFloat("x", 0).SetFloat("y", dims.RailHeight/2)
			legend.Append(label)
			continue
		}
		legend.Append(legendEntry(l.Players[r.PlayerID], r.Index, dims))
		DrawCastTimeline(board, l, l.Casts[r.PlayerID], r.Index, dims, opts.LabelMode())
	}

	height := dims.Height(rowCount)
	board.SetFloat("height", height)
	legend.SetFloat("height", height)
	needle.SetFloat("height", height)
	board.Append(needle)
	return rowCount
}

func legendEntry(p report.Player, row int, dims Dimensions) *svg.Node {
	title, use := doubledTitle(p.Account)
	name := svg.New("text", "class", "name").SetText(p.Name)
	name.SetFloat("x", 0).SetFloat("y", dims.RowY(row)+dims.RailHeight/2)
	return svg.New("g", "class", "player").Append(title, use, name)
}

// doubledTitle returns a tooltip for the group and an info icon carrying
// the same tooltip.
func doubledTitle(text string) (*svg.Node, *svg.Node) {
	title := svg.New("title").SetText(text)
	inner := svg.New("title").SetText(text)
	use := svg.New("use", "xlink:href", "#adjust-solid").Append(inner)
	return title, use
}

// NewBoard creates the board, legend and needle elements for dims.
func NewBoard(dims Dimensions) (board, legend, needle *svg.Node) {
	board = svg.Root("board")
	board.SetFloat("width", dims.Width)
	legend = svg.Root("legend")
	needle = svg.New("rect", "x", "0", "y", "0", "width", "2", "class", "needle")
	board.Append(needle)
	return board, legend, needle
}

package timeline

import (
	"math"
	"strconv"

	"foxie/internal/report"
	"foxie/internal/svg"
)

// LabelMode selects how a cast is labelled on its rail.
type LabelMode string

const (
	LabelIcon LabelMode = "icon"
	LabelName LabelMode = "name"
)

// DrawCastTimeline draws one rail of casts into board. Casts without a
// known icon fall back to a text label in icon mode.
func DrawCastTimeline(board *svg.Node, l *report.Log, casts []report.Cast, row int, dims Dimensions, mode LabelMode) {
	y := dims.RowY(row)
	msPerPixel := dims.MsPerPixel()
	rail := svg.New("g", "class", "rail", "data-row", strconv.Itoa(row))
	for _, c := range casts {
		x := dims.TimeToX(c.Start)
		width := math.Max(1, c.Duration/msPerPixel)
		name := l.SkillName(c.ID)

		g := svg.New("g", "class", "cast", "data-skill", strconv.FormatInt(c.ID, 10))
		g.SetFloat("data-start", c.Start)
		g.Append(svg.New("title").SetText(name))
		rect := svg.New("rect")
		rect.SetFloat("x", x).SetFloat("y", y).SetFloat("width", width).SetFloat("height", dims.RailHeight)
		g.Append(rect)

		icon := l.Icons[c.ID]
		if mode == LabelIcon && icon != "" {
			img := svg.New("image", "href", icon)
			img.SetFloat("x", x).SetFloat("y", y).SetFloat("width", dims.RailHeight).SetFloat("height", dims.RailHeight)
			g.Append(img)
		} else {
			text := svg.New("text", "class", "cast-name").SetText(name)
			text.SetFloat("x", x).SetFloat("y", y+dims.RailHeight/2)
			g.Append(text)
		}
		rail.Append(g)
	}
	board.Append(rail)
}

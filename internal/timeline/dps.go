package timeline

import (
	"strconv"
	"strings"

	"foxie/internal/svg"
)

// dpsBucketSeconds is the width of one damage graph sample.
const dpsBucketSeconds = 10

// DamagePer10s turns a cumulative per-second damage series into damage
// dealt in each 10 second bucket.
func DamagePer10s(cumulative []float64) []float64 {
	if len(cumulative) == 0 {
		return nil
	}
	last := len(cumulative) - 1
	var out []float64
	for start := 0; start < last; start += dpsBucketSeconds {
		end := start + dpsBucketSeconds
		if end > last {
			end = last
		}
		out = append(out, cumulative[end]-cumulative[start])
	}
	return out
}

// DrawDpsGraph draws the aggregate damage series as a polyline spanning
// DpsGraphRows rails starting at row.
func DrawDpsGraph(board *svg.Node, cumulative []float64, row int, dims Dimensions) {
	buckets := DamagePer10s(cumulative)
	top := dims.RowY(row)
	height := dims.Height(DpsGraphRows)

	var peak float64
	for _, v := range buckets {
		if v > peak {
			peak = v
		}
	}

	points := make([]string, 0, len(buckets)+1)
	for i, v := range buckets {
		x := dims.TimeToX(dims.Start + float64(i*dpsBucketSeconds*1000))
		y := top + height
		if peak > 0 {
			y -= height * v / peak
		}
		points = append(points, svg.FormatFloat(x)+","+svg.FormatFloat(y))
	}

	g := svg.New("g", "class", "dps-graph", "data-row", strconv.Itoa(row))
	base := svg.New("line", "class", "dps-axis")
	base.SetFloat("x1", 0).SetFloat("y1", top+height).SetFloat("x2", dims.Width).SetFloat("y2", top+height)
	g.Append(base)
	g.Append(svg.New("polyline", "class", "dps", "fill", "none", "points", strings.Join(points, " ")))
	board.Append(g)
}

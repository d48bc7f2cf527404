// Package timeline lays out and draws the cast board.
package timeline

// DefaultMsPerPixel is the time quantum drawn as one pixel.
const DefaultMsPerPixel = 20

// Dimensions is the read-only geometry shared by every drawing call.
type Dimensions struct {
	Start      float64
	End        float64
	Width      float64
	RailHeight float64
	RailPad    float64
}

// NewDimensions derives the board width from the log span so that
// msPerPixel milliseconds map to one pixel.
func NewDimensions(start, end, msPerPixel, railHeight, railPad float64) Dimensions {
	if msPerPixel <= 0 {
		msPerPixel = DefaultMsPerPixel
	}
	return Dimensions{
		Start:      start,
		End:        end,
		Width:      (end - start) / msPerPixel,
		RailHeight: railHeight,
		RailPad:    railPad,
	}
}

// TimeToX maps a log time to a board x offset.
func (d Dimensions) TimeToX(t float64) float64 {
	span := d.End - d.Start
	if span == 0 {
		return 0
	}
	return d.Width * (t - d.Start) / span
}

// XToTime is the inverse of TimeToX.
func (d Dimensions) XToTime(x float64) float64 {
	if d.Width == 0 {
		return d.Start
	}
	return (x/d.Width)*(d.End-d.Start) + d.Start
}

// RowY returns the top of a rail.
func (d Dimensions) RowY(row int) float64 {
	return float64(row) * (d.RailHeight + d.RailPad)
}

// Height returns the board height for rows rails.
func (d Dimensions) Height(rows int) float64 {
	if rows <= 0 {
		return 0
	}
	return float64(rows)*(d.RailHeight+d.RailPad) - d.RailPad
}

// MsPerPixel returns the scale the dimensions were built with.
func (d Dimensions) MsPerPixel() float64 {
	if d.Width == 0 {
		return DefaultMsPerPixel
	}
	return (d.End - d.Start) / d.Width
}

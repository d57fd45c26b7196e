package richprompt

import "math"

// Zoom defaults.
const (
	DefaultZoomMin  = 0.5
	DefaultZoomMax  = 3.0
	DefaultZoomStep = 0.1
)

// Zoom is a display scale. It belongs to the view only: changing it never
// touches the text or triggers highlighting.
type Zoom struct {
	level float64
	min   float64
	max   float64
	step  float64
}

// NewZoom creates a zoom at 1.0 clamped to [lo, hi]. Invalid bounds fall back
// to the defaults.
func NewZoom(lo, hi float64) *Zoom {
	if lo <= 0 || hi < lo {
		lo, hi = DefaultZoomMin, DefaultZoomMax
	}
	z := &Zoom{min: lo, max: hi, step: DefaultZoomStep}
	z.Set(1)
	return z
}

// Level returns the current scale.
func (z *Zoom) Level() float64 { return z.level }

// Bounds returns the clamp range.
func (z *Zoom) Bounds() (lo, hi float64) { return z.min, z.max }

// Set sets the scale, clamped.
func (z *Zoom) Set(level float64) float64 {
	z.level = math.Min(z.max, math.Max(z.min, level))
	// keep levels on the step grid so repeated steps do not drift
	z.level = math.Round(z.level*100) / 100
	return z.level
}

// Adjust moves the scale by steps increments (negative zooms out).
func (z *Zoom) Adjust(steps int) float64 {
	return z.Set(z.level + float64(steps)*z.step)
}

// Reset returns to 1.0, or the nearest bound.
func (z *Zoom) Reset() float64 {
	return z.Set(1)
}

// Scale applies the zoom to a size in cells, never returning less than 1.
func (z *Zoom) Scale(cells int) int {
	scaled := int(math.Round(float64(cells) * z.level))
	if scaled < 1 {
		return 1
	}
	return scaled
}

package render

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// magmaStops samples matplotlib's magma map at nine evenly spaced points.
var magmaStops = []string{
	"#000004", "#1c1044", "#4f127b", "#812581", "#b5367a",
	"#e55064", "#fb8761", "#fec287", "#fcfdbf",
}

// Ramp is a colour map over [0, 1].
type Ramp struct {
	stops []colorful.Color
}

// NewRamp parses hex stops into a ramp. Reversed flips it end to end.
func NewRamp(hex []string, reversed bool) (*Ramp, error) {
	stops := make([]colorful.Color, len(hex))
	for i, h := range hex {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, err
		}
		if reversed {
			stops[len(hex)-1-i] = c
		} else {
			stops[i] = c
		}
	}
	return &Ramp{stops: stops}, nil
}

// MagmaReversed runs from pale yellow at 0 to near black at 1.
func MagmaReversed() *Ramp {
	r, err := NewRamp(magmaStops, true)
	if err != nil {
		panic(err)
	}
	return r
}

// At returns the colour at t, clamped to [0, 1], blending neighbouring stops
// in Lab space.
func (r *Ramp) At(t float64) color.Color {
	if len(r.stops) == 1 {
		return r.stops[0]
	}
	t = min(max(t, 0), 1)
	pos := t * float64(len(r.stops)-1)
	i := int(pos)
	if i >= len(r.stops)-1 {
		return r.stops[len(r.stops)-1]
	}
	frac := pos - float64(i)
	if frac == 0 {
		return r.stops[i]
	}
	return r.stops[i].BlendLab(r.stops[i+1], frac).Clamped()
}

package colorizer

import (
	"math"

	"github.com/ecopia-map/cesium_stream/internal/codec"
	"github.com/ecopia-map/cesium_stream/internal/schema"
	"github.com/pkg/errors"
)

var (
	ErrUnknownRamp      = errors.New("unknown color ramp")
	ErrUnknownDimension = errors.New("unknown colorization dimension")
)

// Colorization parameters. The zero value means "no colorization".
type Params struct {
	RampName      string
	DimensionName string
}

func (p Params) Configured() bool {
	return p.RampName != "" && p.DimensionName != ""
}

// Validate checks the parameters against the known ramps and, when a header is given, its dimensions
func (p Params) Validate(header *schema.Header) error {
	if !p.Configured() {
		return nil
	}
	if _, ok := LookupRamp(p.RampName); !ok {
		return errors.Wrapf(ErrUnknownRamp, "%q", p.RampName)
	}
	if header != nil {
		if _, ok := header.Dimension(p.DimensionName); !ok {
			return errors.Wrapf(ErrUnknownDimension, "%q", p.DimensionName)
		}
	}
	return nil
}

// Normalize maps v into [0,1] over [min,max], clamping outside values. A degenerate range maps to 0.
func Normalize(v, min, max float64) float64 {
	span := max - min
	if span == 0 || math.IsNaN(span) || math.IsNaN(v) {
		return 0
	}
	t := (v - min) / span
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// FillWhite resets an rgba buffer to opaque white
func FillWhite(rgba []uint8) {
	for i := range rgba {
		rgba[i] = 255
	}
}

// Colorize overwrites the first numPoints entries of rgba (4 bytes each) with the ramp color of
// every value. Alpha is always 255.
func Colorize(values codec.Array, min, max float64, numPoints int, ramp *Ramp, rgba []uint8) error {
	if values.Len() < numPoints {
		return errors.Errorf("colorize: %d values for %d points", values.Len(), numPoints)
	}
	if len(rgba) < numPoints*4 {
		return errors.Errorf("colorize: rgba holds %d bytes, need %d", len(rgba), numPoints*4)
	}

	for i := 0; i < numPoints; i++ {
		r, g, b := ramp.RGB255(Normalize(values.At(i), min, max))
		rgba[i*4] = r
		rgba[i*4+1] = g
		rgba[i*4+2] = b
		rgba[i*4+3] = 255
	}
	return nil
}

// Run colorizes a decoded tile with these parameters. Unconfigured parameters leave rgba untouched.
// Dimensions without a declared range use the range observed in the tile.
func (p Params) Run(header *schema.Header, dims []codec.Dimension, numPoints int, rgba []uint8) error {
	if !p.Configured() || numPoints == 0 {
		return nil
	}

	ramp, ok := LookupRamp(p.RampName)
	if !ok {
		return errors.Wrapf(ErrUnknownRamp, "%q", p.RampName)
	}
	values, ok := codec.Lookup(dims, p.DimensionName)
	if !ok {
		return errors.Wrapf(ErrUnknownDimension, "%q", p.DimensionName)
	}

	var min, max float64
	declared := false
	if dim, found := header.Dimension(p.DimensionName); found {
		min, max, declared = dim.Range()
	}
	if !declared {
		min, max = ObservedRange(values, numPoints)
	}

	return Colorize(values, min, max, numPoints, ramp, rgba)
}

// ObservedRange scans the first numPoints values for their min and max
func ObservedRange(values codec.Array, numPoints int) (float64, float64) {
	if numPoints == 0 {
		return 0, 0
	}
	min, max := math.Inf(1), math.Inf(-1)
	for i := 0; i < numPoints; i++ {
		v := values.At(i)
		if math.IsNaN(v) {
			continue
		}
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	if math.IsInf(min, 1) {
		return 0, 0
	}
	return min, max
}

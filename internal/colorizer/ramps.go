package colorizer

import (
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/samber/lo"
)

// A Ramp is an ordered list of evenly spaced color stops
type Ramp struct {
	Name  string
	Stops []colorful.Color
}

// ColorBrewer sequential and diverging schemes, low values first
var rampDefinitions = map[string][]string{
	"Blues":    {"#f7fbff", "#deebf7", "#c6dbef", "#9ecae1", "#6baed6", "#4292c6", "#2171b5", "#08519c", "#08306b"},
	"Greens":   {"#f7fcf5", "#e5f5e0", "#c7e9c0", "#a1d99b", "#74c476", "#41ab5d", "#238b45", "#006d2c", "#00441b"},
	"Greys":    {"#ffffff", "#f0f0f0", "#d9d9d9", "#bdbdbd", "#969696", "#737373", "#525252", "#252525", "#000000"},
	"Oranges":  {"#fff5eb", "#fee6ce", "#fdd0a2", "#fdae6b", "#fd8d3c", "#f16913", "#d94801", "#a63603", "#7f2704"},
	"Purples":  {"#fcfbfd", "#efedf5", "#dadaeb", "#bcbddc", "#9e9ac8", "#807dba", "#6a51a3", "#54278f", "#3f007d"},
	"Reds":     {"#fff5f0", "#fee0d2", "#fcbba1", "#fc9272", "#fb6a4a", "#ef3b2c", "#cb181d", "#a50f15", "#67000d"},
	"YlOrRd":   {"#ffffcc", "#ffeda0", "#fed976", "#feb24c", "#fd8d3c", "#fc4e2a", "#e31a1c", "#bd0026", "#800026"},
	"YlGnBu":   {"#ffffd9", "#edf8b1", "#c7e9b4", "#7fcdbb", "#41b6c4", "#1d91c0", "#225ea8", "#253494", "#081d58"},
	"BuGn":     {"#f7fcfd", "#e5f5f9", "#ccece6", "#99d8c9", "#66c2a4", "#41ae76", "#238b45", "#006d2c", "#00441b"},
	"RdYlGn":   {"#a50026", "#d73027", "#f46d43", "#fdae61", "#fee08b", "#ffffbf", "#d9ef8b", "#a6d96a", "#66bd63", "#1a9850", "#006837"},
	"RdYlBu":   {"#a50026", "#d73027", "#f46d43", "#fdae61", "#fee090", "#ffffbf", "#e0f3f8", "#abd9e9", "#74add1", "#4575b4", "#313695"},
	"RdBu":     {"#67001f", "#b2182b", "#d6604d", "#f4a582", "#fddbc7", "#f7f7f7", "#d1e5f0", "#92c5de", "#4393c3", "#2166ac", "#053061"},
	"Spectral": {"#9e0142", "#d53e4f", "#f46d43", "#fdae61", "#fee08b", "#ffffbf", "#e6f598", "#abdda4", "#66c2a5", "#3288bd", "#5e4fa2"},
}

var ramps = buildRamps()

func buildRamps() map[string]*Ramp {
	built := make(map[string]*Ramp, len(rampDefinitions))
	for name, hexes := range rampDefinitions {
		stops := make([]colorful.Color, len(hexes))
		for i, hex := range hexes {
			c, err := colorful.Hex(hex)
			if err != nil {
				panic("colorizer: bad stop " + hex + " in ramp " + name)
			}
			stops[i] = c
		}
		built[name] = &Ramp{Name: name, Stops: stops}
	}
	return built
}

func LookupRamp(name string) (*Ramp, bool) {
	r, ok := ramps[name]
	return r, ok
}

// RampNames lists the known ramps alphabetically
func RampNames() []string {
	names := lo.Keys(ramps)
	sort.Strings(names)
	return names
}

// At samples the ramp at t in [0,1], interpolating linearly in RGB space between neighbouring stops.
// t outside [0,1] is clamped.
func (r *Ramp) At(t float64) colorful.Color {
	n := len(r.Stops)
	if n == 0 {
		return colorful.Color{R: 1, G: 1, B: 1}
	}
	if n == 1 || math.IsNaN(t) || t <= 0 {
		return r.Stops[0]
	}
	if t >= 1 {
		return r.Stops[n-1]
	}

	pos := t * float64(n-1)
	i := int(math.Floor(pos))
	if i >= n-1 {
		return r.Stops[n-1]
	}
	return r.Stops[i].BlendRgb(r.Stops[i+1], pos-float64(i))
}

// RGB255 samples the ramp and quantizes to 8 bit channels
func (r *Ramp) RGB255(t float64) (uint8, uint8, uint8) {
	return r.At(t).Clamped().RGB255()
}

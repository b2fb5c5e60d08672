package offset_elevation_corrector

import "github.com/ecopia-map/cesium_stream/internal/converters"

// Shifts every height by a constant, e.g. to compensate a datum offset of the served tiles
type OffsetElevationCorrector struct {
	Offset float64
}

func NewOffsetElevationCorrector(offset float64) converters.ElevationCorrector {
	return &OffsetElevationCorrector{
		Offset: offset,
	}
}

func (c *OffsetElevationCorrector) CorrectElevation(lon, lat, z float64) float64 {
	return z + c.Offset
}

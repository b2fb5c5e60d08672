package converters

import (
	"github.com/ecopia-map/cesium_stream/internal/geometry"
)

// Well known EPSG codes understood by the converters
const (
	SridWGS84Geographic = 4326 // longitude, latitude in degrees, ellipsoidal height in meters
	SridWGS84Geocentric = 4978 // earth centered earth fixed cartesian, meters
)

type CoordinateConverter interface {
	ConvertCoordinateSrid(sourceSrid int, targetSrid int, coord geometry.Coordinate) (geometry.Coordinate, error)
	Convert2DBoundingboxToWGS84Region(bbox *geometry.BoundingBox, srid int) (*geometry.BoundingBox, error)
	ConvertToWGS84Cartesian(coord geometry.Coordinate, sourceSrid int) (geometry.Coordinate, error)
	Cleanup()
}

type ElevationCorrector interface {
	CorrectElevation(lon, lat, z float64) float64
}

// CartesianFunc places one geographic point (degrees, meters) in the WGS84 cartesian frame
type CartesianFunc func(lon, lat, height float64) (geometry.Coordinate, error)

// NewCartesianFunc binds a converter and an optional elevation corrector into the pure
// conversion injected into tiles
func NewCartesianFunc(converter CoordinateConverter, corrector ElevationCorrector) CartesianFunc {
	return func(lon, lat, height float64) (geometry.Coordinate, error) {
		if corrector != nil {
			height = corrector.CorrectElevation(lon, lat, height)
		}
		return converter.ConvertToWGS84Cartesian(geometry.Coordinate{X: lon, Y: lat, Z: height}, SridWGS84Geographic)
	}
}

package ellipsoid_coordinate_converter

import (
	"math"

	"github.com/ecopia-map/cesium_stream/internal/converters"
	"github.com/ecopia-map/cesium_stream/internal/geometry"
	"github.com/pkg/errors"
)

// WGS84 ellipsoid radii in meters
const (
	RadiusEquatorial = 6378137.0
	RadiusPolar      = 6356752.3142451793
)

var ErrUnsupportedSrid = errors.New("unsupported srid")

var radiiSquared = geometry.Coordinate{
	X: RadiusEquatorial * RadiusEquatorial,
	Y: RadiusEquatorial * RadiusEquatorial,
	Z: RadiusPolar * RadiusPolar,
}

// Pure go converter between WGS84 geographic coordinates (EPSG:4326, degrees) and the WGS84
// earth centered frame (EPSG:4978). It reproduces Cesium's Cartesian3.fromRadians.
type ellipsoidCoordinateConverter struct{}

func NewEllipsoidCoordinateConverter() converters.CoordinateConverter {
	return &ellipsoidCoordinateConverter{}
}

func (c *ellipsoidCoordinateConverter) ConvertCoordinateSrid(sourceSrid int, targetSrid int, coord geometry.Coordinate) (geometry.Coordinate, error) {
	if sourceSrid == targetSrid {
		return coord, nil
	}
	switch {
	case sourceSrid == converters.SridWGS84Geographic && targetSrid == converters.SridWGS84Geocentric:
		return GeographicToCartesian(coord.X, coord.Y, coord.Z), nil
	case sourceSrid == converters.SridWGS84Geocentric && targetSrid == converters.SridWGS84Geographic:
		return CartesianToGeographic(coord), nil
	}
	return geometry.Coordinate{}, errors.Wrapf(ErrUnsupportedSrid, "EPSG:%d to EPSG:%d", sourceSrid, targetSrid)
}

// Converts a bounding box given in degrees into a region expressed in radians, as used by
// Cesium bounding volumes. Z bounds are carried through.
func (c *ellipsoidCoordinateConverter) Convert2DBoundingboxToWGS84Region(bbox *geometry.BoundingBox, srid int) (*geometry.BoundingBox, error) {
	if srid != converters.SridWGS84Geographic {
		return nil, errors.Wrapf(ErrUnsupportedSrid, "EPSG:%d", srid)
	}
	return geometry.NewBoundingBox(
		geometry.DegToRad(bbox.Xmin), geometry.DegToRad(bbox.Xmax),
		geometry.DegToRad(bbox.Ymin), geometry.DegToRad(bbox.Ymax),
		bbox.Zmin, bbox.Zmax,
	), nil
}

func (c *ellipsoidCoordinateConverter) ConvertToWGS84Cartesian(coord geometry.Coordinate, sourceSrid int) (geometry.Coordinate, error) {
	return c.ConvertCoordinateSrid(sourceSrid, converters.SridWGS84Geocentric, coord)
}

func (c *ellipsoidCoordinateConverter) Cleanup() {}

// GeographicToCartesian maps longitude and latitude in degrees plus the height above the
// ellipsoid in meters to earth centered cartesian coordinates
func GeographicToCartesian(lon, lat, height float64) geometry.Coordinate {
	lonRad := geometry.DegToRad(lon)
	latRad := geometry.DegToRad(lat)
	cosLat := math.Cos(latRad)

	// geodetic surface normal
	n := normalize(geometry.Coordinate{
		X: cosLat * math.Cos(lonRad),
		Y: cosLat * math.Sin(lonRad),
		Z: math.Sin(latRad),
	})
	k := geometry.Coordinate{
		X: radiiSquared.X * n.X,
		Y: radiiSquared.Y * n.Y,
		Z: radiiSquared.Z * n.Z,
	}
	gamma := math.Sqrt(n.X*k.X + n.Y*k.Y + n.Z*k.Z)

	return geometry.Coordinate{
		X: k.X/gamma + n.X*height,
		Y: k.Y/gamma + n.Y*height,
		Z: k.Z/gamma + n.Z*height,
	}
}

// CartesianToGeographic is the inverse of GeographicToCartesian, solved with Bowring's
// iteration. Results are in degrees and meters.
func CartesianToGeographic(c geometry.Coordinate) geometry.Coordinate {
	a := RadiusEquatorial
	b := RadiusPolar
	e2 := 1 - (b*b)/(a*a)
	p := math.Hypot(c.X, c.Y)
	lon := math.Atan2(c.Y, c.X)

	if p < 1e-9 {
		lat := math.Copysign(math.Pi/2, c.Z)
		return geometry.Coordinate{X: geometry.RadToDeg(lon), Y: geometry.RadToDeg(lat), Z: math.Abs(c.Z) - b}
	}

	lat := math.Atan2(c.Z, p*(1-e2))
	var height float64
	for i := 0; i < 10; i++ {
		sinLat := math.Sin(lat)
		nRadius := a / math.Sqrt(1-e2*sinLat*sinLat)
		height = p/math.Cos(lat) - nRadius
		next := math.Atan2(c.Z, p*(1-e2*nRadius/(nRadius+height)))
		if math.Abs(next-lat) < 1e-14 {
			lat = next
			break
		}
		lat = next
	}

	return geometry.Coordinate{X: geometry.RadToDeg(lon), Y: geometry.RadToDeg(lat), Z: height}
}

func normalize(c geometry.Coordinate) geometry.Coordinate {
	m := math.Sqrt(c.X*c.X + c.Y*c.Y + c.Z*c.Z)
	return geometry.Coordinate{X: c.X / m, Y: c.Y / m, Z: c.Z / m}
}

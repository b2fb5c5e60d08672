package proj4_coordinate_converter

import (
	"math"
	"sync"

	"github.com/ecopia-map/cesium_stream/internal/converters"
	"github.com/ecopia-map/cesium_stream/internal/geometry"
	"github.com/pkg/errors"
	proj "github.com/xeonx/proj4"
)

var ErrUnknownSrid = errors.New("no proj4 definition for srid")

// proj4 definitions of the reference systems tiles can be expressed or placed in
var epsgDefinitions = map[int]string{
	converters.SridWGS84Geographic: "+proj=longlat +datum=WGS84 +no_defs",
	converters.SridWGS84Geocentric: "+proj=geocent +datum=WGS84 +units=m +no_defs",
	3857:                           "+proj=merc +a=6378137 +b=6378137 +lat_ts=0.0 +lon_0=0.0 +x_0=0.0 +y_0=0 +k=1.0 +units=m +nadgrids=@null +wktext +no_defs",
	3395:                           "+proj=merc +lon_0=0 +k=1 +x_0=0 +y_0=0 +datum=WGS84 +units=m +no_defs",
}

type proj4CoordinateConverter struct {
	sync.Mutex
	projections map[int]*proj.Proj
}

// NewProj4CoordinateConverter returns a converter backed by the PROJ library. Projections are
// initialized lazily and released by Cleanup.
func NewProj4CoordinateConverter() converters.CoordinateConverter {
	return &proj4CoordinateConverter{
		projections: make(map[int]*proj.Proj),
	}
}

func (cc *proj4CoordinateConverter) ConvertCoordinateSrid(sourceSrid int, targetSrid int, coord geometry.Coordinate) (geometry.Coordinate, error) {
	if sourceSrid == targetSrid {
		return coord, nil
	}

	cc.Lock()
	defer cc.Unlock()

	src, err := cc.initProjection(sourceSrid)
	if err != nil {
		return coord, err
	}
	dst, err := cc.initProjection(targetSrid)
	if err != nil {
		return coord, err
	}

	return convertPointCoordinate(src, dst, coord)
}

func (cc *proj4CoordinateConverter) Convert2DBoundingboxToWGS84Region(bbox *geometry.BoundingBox, srid int) (*geometry.BoundingBox, error) {
	projLowCorner := geometry.Coordinate{X: bbox.Xmin, Y: bbox.Ymin, Z: 0}
	projHighCorner := geometry.Coordinate{X: bbox.Xmax, Y: bbox.Ymax, Z: 0}

	w84lc, err := cc.ConvertCoordinateSrid(srid, converters.SridWGS84Geographic, projLowCorner)
	if err != nil {
		return nil, err
	}
	w84hc, err := cc.ConvertCoordinateSrid(srid, converters.SridWGS84Geographic, projHighCorner)
	if err != nil {
		return nil, err
	}

	return geometry.NewBoundingBox(
		geometry.DegToRad(w84lc.X), geometry.DegToRad(w84hc.X),
		geometry.DegToRad(w84lc.Y), geometry.DegToRad(w84hc.Y),
		bbox.Zmin, bbox.Zmax,
	), nil
}

func (cc *proj4CoordinateConverter) ConvertToWGS84Cartesian(coord geometry.Coordinate, sourceSrid int) (geometry.Coordinate, error) {
	return cc.ConvertCoordinateSrid(sourceSrid, converters.SridWGS84Geocentric, coord)
}

// Releases all the initialized projections
func (cc *proj4CoordinateConverter) Cleanup() {
	cc.Lock()
	defer cc.Unlock()

	for srid, p := range cc.projections {
		p.Close()
		delete(cc.projections, srid)
	}
}

func (cc *proj4CoordinateConverter) initProjection(srid int) (*proj.Proj, error) {
	if p, ok := cc.projections[srid]; ok {
		return p, nil
	}

	definition, ok := epsgDefinitions[srid]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownSrid, "EPSG:%d", srid)
	}
	p, err := proj.InitPlus(definition)
	if err != nil {
		return nil, errors.Wrapf(err, "init projection EPSG:%d", srid)
	}
	cc.projections[srid] = p

	return p, nil
}

// Geographic systems are expressed in degrees, proj works in radians
func convertPointCoordinate(src, dst *proj.Proj, coord geometry.Coordinate) (geometry.Coordinate, error) {
	x := []float64{coord.X}
	y := []float64{coord.Y}
	z := []float64{coord.Z}
	if src.IsLatLong() {
		x[0] = geometry.DegToRad(x[0])
		y[0] = geometry.DegToRad(y[0])
	}

	if err := proj.TransformRaw(src, dst, x, y, z); err != nil {
		return coord, errors.Wrap(err, "proj transform")
	}
	if math.IsInf(x[0], 0) || math.IsInf(y[0], 0) {
		return coord, errors.Errorf("proj transform of %v produced an infinite coordinate", coord)
	}

	if dst.IsLatLong() {
		x[0] = geometry.RadToDeg(x[0])
		y[0] = geometry.RadToDeg(y[0])
	}

	return geometry.Coordinate{X: x[0], Y: y[0], Z: z[0]}, nil
}

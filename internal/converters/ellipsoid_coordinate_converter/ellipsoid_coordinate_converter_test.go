package ellipsoid_coordinate_converter

import (
	"testing"

	"github.com/ecopia-map/cesium_stream/internal/converters"
	"github.com/ecopia-map/cesium_stream/internal/geometry"
	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestGeographicToCartesianAxes(t *testing.T) {
	origin := GeographicToCartesian(0, 0, 0)
	test.That(t, origin.X, test.ShouldAlmostEqual, RadiusEquatorial, 1e-6)
	test.That(t, origin.Y, test.ShouldAlmostEqual, 0.0, 1e-6)
	test.That(t, origin.Z, test.ShouldAlmostEqual, 0.0, 1e-6)

	east := GeographicToCartesian(90, 0, 100)
	test.That(t, east.X, test.ShouldAlmostEqual, 0.0, 1e-6)
	test.That(t, east.Y, test.ShouldAlmostEqual, RadiusEquatorial+100, 1e-6)

	pole := GeographicToCartesian(0, 90, 0)
	test.That(t, pole.X, test.ShouldAlmostEqual, 0.0, 1e-6)
	test.That(t, pole.Z, test.ShouldAlmostEqual, RadiusPolar, 1e-6)
}

func TestGeographicToCartesianKnownPoint(t *testing.T) {
	// Cesium.Cartesian3.fromDegrees(10, 20, 5)
	c := GeographicToCartesian(10, 20, 5)
	test.That(t, c.X, test.ShouldAlmostEqual, 5904750.7837, 1e-3)
	test.That(t, c.Y, test.ShouldAlmostEqual, 1041166.8775, 1e-3)
	test.That(t, c.Z, test.ShouldAlmostEqual, 2167698.4979, 1e-3)
}

func TestRoundTrip(t *testing.T) {
	conv := NewEllipsoidCoordinateConverter()
	defer conv.Cleanup()

	for _, in := range []geometry.Coordinate{
		{X: 10, Y: 20, Z: 5},
		{X: -122.4, Y: 37.8, Z: 120},
		{X: 179.5, Y: -45, Z: -30},
	} {
		cart, err := conv.ConvertToWGS84Cartesian(in, converters.SridWGS84Geographic)
		test.That(t, err, test.ShouldBeNil)
		out, err := conv.ConvertCoordinateSrid(converters.SridWGS84Geocentric, converters.SridWGS84Geographic, cart)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out.X, test.ShouldAlmostEqual, in.X, 1e-9)
		test.That(t, out.Y, test.ShouldAlmostEqual, in.Y, 1e-9)
		test.That(t, out.Z, test.ShouldAlmostEqual, in.Z, 1e-5)
	}
}

func TestUnsupportedSrid(t *testing.T) {
	conv := NewEllipsoidCoordinateConverter()
	_, err := conv.ConvertToWGS84Cartesian(geometry.Coordinate{}, 32633)
	test.That(t, errors.Is(err, ErrUnsupportedSrid), test.ShouldBeTrue)

	_, err = conv.Convert2DBoundingboxToWGS84Region(geometry.NewBoundingBox(0, 1, 0, 1, 0, 0), 3857)
	test.That(t, errors.Is(err, ErrUnsupportedSrid), test.ShouldBeTrue)

	region, err := conv.Convert2DBoundingboxToWGS84Region(geometry.NewBoundingBox(0, 180, -90, 90, 1, 2), converters.SridWGS84Geographic)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, region.Xmax, test.ShouldAlmostEqual, 3.141592653589793, 1e-12)
	test.That(t, region.Ymin, test.ShouldAlmostEqual, -1.5707963267948966, 1e-12)
	test.That(t, region.Zmax, test.ShouldEqual, 2.0)
}

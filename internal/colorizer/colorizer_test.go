package colorizer

import (
	"testing"

	"github.com/ecopia-map/cesium_stream/internal/codec"
	"github.com/ecopia-map/cesium_stream/internal/schema"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.viam.com/test"
)

func whiteBuffer(numPoints int) []uint8 {
	rgba := make([]uint8, numPoints*4)
	FillWhite(rgba)
	return rgba
}

func nullDecimal(v int64) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.NewFromInt(v), Valid: true}
}

func testHeader(t *testing.T) *schema.Header {
	t.Helper()
	header, err := schema.NewHeader(schema.SupportedVersion, []schema.Dimension{
		{Name: "X", Datatype: schema.Float64},
		{Name: "Y", Datatype: schema.Float64},
		{Name: "Z", Datatype: schema.Float32, Minimum: nullDecimal(0), Maximum: nullDecimal(100)},
		{Name: "Intensity", Datatype: schema.Uint16},
	})
	test.That(t, err, test.ShouldBeNil)
	return header
}

func testDimensions() []codec.Dimension {
	return []codec.Dimension{
		{Name: "X", Values: codec.NewValues(schema.Float64, []float64{1, 2, 3})},
		{Name: "Y", Values: codec.NewValues(schema.Float64, []float64{1, 2, 3})},
		{Name: "Z", Values: codec.NewValues(schema.Float32, []float32{-20, 50, 250})},
		{Name: "Intensity", Values: codec.NewValues(schema.Uint16, []uint16{10, 20, 30})},
	}
}

func TestNormalize(t *testing.T) {
	test.That(t, Normalize(5, 0, 10), test.ShouldEqual, 0.5)
	test.That(t, Normalize(-5, 0, 10), test.ShouldEqual, 0.0)
	test.That(t, Normalize(50, 0, 10), test.ShouldEqual, 1.0)
	test.That(t, Normalize(3, 3, 3), test.ShouldEqual, 0.0)
}

func TestRampEndpointsAndInterpolation(t *testing.T) {
	ramp, ok := LookupRamp("Greys")
	test.That(t, ok, test.ShouldBeTrue)

	r, g, b := ramp.RGB255(0)
	test.That(t, []uint8{r, g, b}, test.ShouldResemble, []uint8{255, 255, 255})
	r, g, b = ramp.RGB255(1)
	test.That(t, []uint8{r, g, b}, test.ShouldResemble, []uint8{0, 0, 0})
	r, g, b = ramp.RGB255(-3)
	test.That(t, []uint8{r, g, b}, test.ShouldResemble, []uint8{255, 255, 255})

	// halfway between two stops of a two stop ramp
	two := &Ramp{Name: "two", Stops: []colorful.Color{{R: 0, G: 0, B: 0}, {R: 1, G: 0.5, B: 0}}}
	r, g, b = two.RGB255(0.5)
	test.That(t, []uint8{r, g, b}, test.ShouldResemble, []uint8{128, 64, 0})

	_, ok = LookupRamp("NoSuchRamp")
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, RampNames(), test.ShouldContain, "Spectral")
}

func TestColorizeOverwrites(t *testing.T) {
	header := testHeader(t)
	dims := testDimensions()
	rgba := whiteBuffer(3)

	byZ := Params{RampName: "Greys", DimensionName: "Z"}
	test.That(t, byZ.Run(header, dims, 3, rgba), test.ShouldBeNil)
	// declared range 0..100: clamped low, middle, clamped high
	test.That(t, rgba[0:4], test.ShouldResemble, []uint8{255, 255, 255, 255})
	test.That(t, rgba[8:12], test.ShouldResemble, []uint8{0, 0, 0, 255})
	first := append([]uint8(nil), rgba...)

	byIntensity := Params{RampName: "Reds", DimensionName: "Intensity"}
	test.That(t, byIntensity.Run(header, dims, 3, rgba), test.ShouldBeNil)

	fresh := whiteBuffer(3)
	test.That(t, byIntensity.Run(header, dims, 3, fresh), test.ShouldBeNil)
	test.That(t, rgba, test.ShouldResemble, fresh)
	test.That(t, rgba, test.ShouldNotResemble, first)

	// observed range 10..30 for the undeclared dimension
	reds, _ := LookupRamp("Reds")
	r, g, b := reds.RGB255(1)
	test.That(t, rgba[8:12], test.ShouldResemble, []uint8{r, g, b, 255})
}

func TestColorizeUnconfiguredLeavesWhite(t *testing.T) {
	header := testHeader(t)
	dims := testDimensions()

	for _, p := range []Params{{}, {RampName: "Reds"}, {DimensionName: "Z"}} {
		rgba := whiteBuffer(3)
		test.That(t, p.Run(header, dims, 3, rgba), test.ShouldBeNil)
		test.That(t, rgba, test.ShouldResemble, whiteBuffer(3))
	}
}

func TestParamsValidate(t *testing.T) {
	header := testHeader(t)

	test.That(t, Params{}.Validate(header), test.ShouldBeNil)
	test.That(t, Params{RampName: "Blues", DimensionName: "Z"}.Validate(header), test.ShouldBeNil)

	err := Params{RampName: "Nope", DimensionName: "Z"}.Validate(header)
	test.That(t, errors.Is(err, ErrUnknownRamp), test.ShouldBeTrue)

	err = Params{RampName: "Blues", DimensionName: "GpsTime"}.Validate(header)
	test.That(t, errors.Is(err, ErrUnknownDimension), test.ShouldBeTrue)

	err = Params{RampName: "Blues", DimensionName: "GpsTime"}.Run(header, testDimensions(), 3, whiteBuffer(3))
	test.That(t, errors.Is(err, ErrUnknownDimension), test.ShouldBeTrue)
}

func TestObservedRange(t *testing.T) {
	min, max := ObservedRange(codec.NewValues(schema.Int8, []int8{4, -7, 2}), 3)
	test.That(t, min, test.ShouldEqual, -7.0)
	test.That(t, max, test.ShouldEqual, 4.0)

	min, max = ObservedRange(codec.NewValues(schema.Int8, []int8{}), 0)
	test.That(t, min, test.ShouldEqual, 0.0)
	test.That(t, max, test.ShouldEqual, 0.0)
}

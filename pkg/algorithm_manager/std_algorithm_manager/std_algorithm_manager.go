package std_algorithm_manager

import (
	"github.com/ecopia-map/cesium_stream/internal/converters"
	"github.com/ecopia-map/cesium_stream/internal/converters/elevation/offset_elevation_corrector"
	"github.com/ecopia-map/cesium_stream/internal/converters/ellipsoid_coordinate_converter"
	"github.com/ecopia-map/cesium_stream/internal/converters/proj4_coordinate_converter"
	"github.com/ecopia-map/cesium_stream/internal/stream"
	"github.com/ecopia-map/cesium_stream/pkg/algorithm_manager"
	"github.com/golang/glog"
)

type StandardAlgorithmManager struct {
	options             *stream.StreamOptions
	coordinateConverter converters.CoordinateConverter
	elevationCorrector  converters.ElevationCorrector
}

func NewAlgorithmManager(opts *stream.StreamOptions) algorithm_manager.AlgorithmManager {
	var coordinateConverter converters.CoordinateConverter
	switch opts.Converter {
	case stream.ConverterProj4:
		coordinateConverter = proj4_coordinate_converter.NewProj4CoordinateConverter()
	default:
		coordinateConverter = ellipsoid_coordinate_converter.NewEllipsoidCoordinateConverter()
	}
	glog.V(1).Infof("using %s coordinate converter, z offset %.3f", opts.Converter, opts.ZOffset)

	return &StandardAlgorithmManager{
		options:             opts,
		coordinateConverter: coordinateConverter,
		elevationCorrector:  offset_elevation_corrector.NewOffsetElevationCorrector(opts.ZOffset),
	}
}

func (m *StandardAlgorithmManager) GetElevationCorrectionAlgorithm() converters.ElevationCorrector {
	return m.elevationCorrector
}

func (m *StandardAlgorithmManager) GetCoordinateConverterAlgorithm() converters.CoordinateConverter {
	return m.coordinateConverter
}

func (m *StandardAlgorithmManager) GetCartesianFunc() converters.CartesianFunc {
	return converters.NewCartesianFunc(m.coordinateConverter, m.elevationCorrector)
}

package algorithm_manager

import (
	"github.com/ecopia-map/cesium_stream/internal/converters"
)

type AlgorithmManager interface {
	GetElevationCorrectionAlgorithm() converters.ElevationCorrector
	GetCoordinateConverterAlgorithm() converters.CoordinateConverter
	// Conversion applied to tile points before rendering
	GetCartesianFunc() converters.CartesianFunc
}

package quadtree

import (
	"math"

	"github.com/ecopia-map/cesium_stream/internal/geometry"
)

const (
	// WGS84 semi-major axis in meters
	wgs84MaximumRadius = 6378137.0

	heightmapTerrainQuality = 0.25
	defaultTileWidth        = 65
)

// Geographic (equirectangular) tiling over the whole globe
type TilingScheme struct {
	levelZeroTilesX       uint32
	levelZeroTilesY       uint32
	levelZeroMaximumError float64
}

// Two level zero tiles, one per hemisphere east and west of Greenwich
func NewGeographicTilingScheme() *TilingScheme {
	return NewTilingScheme(2, 1)
}

func NewTilingScheme(levelZeroTilesX, levelZeroTilesY uint32) *TilingScheme {
	scheme := &TilingScheme{
		levelZeroTilesX: levelZeroTilesX,
		levelZeroTilesY: levelZeroTilesY,
	}
	scheme.levelZeroMaximumError = wgs84MaximumRadius * 2 * math.Pi * heightmapTerrainQuality /
		float64(defaultTileWidth*levelZeroTilesX)
	return scheme
}

func (s *TilingScheme) NumberOfXTilesAtLevel(level uint32) uint32 {
	return s.levelZeroTilesX << level
}

func (s *TilingScheme) NumberOfYTilesAtLevel(level uint32) uint32 {
	return s.levelZeroTilesY << level
}

// RootAddresses lists every level zero tile
func (s *TilingScheme) RootAddresses() []Address {
	roots := make([]Address, 0, s.levelZeroTilesX*s.levelZeroTilesY)
	for y := uint32(0); y < s.levelZeroTilesY; y++ {
		for x := uint32(0); x < s.levelZeroTilesX; x++ {
			roots = append(roots, NewAddress(0, x, y))
		}
	}
	return roots
}

// Contains reports whether the address is inside the tiling at its level
func (s *TilingScheme) Contains(a Address) bool {
	return a.X < s.NumberOfXTilesAtLevel(a.Level) && a.Y < s.NumberOfYTilesAtLevel(a.Level)
}

// TileRectangle returns the extent of the tile in degrees; Z bounds are zero
func (s *TilingScheme) TileRectangle(a Address) *geometry.BoundingBox {
	width := 360.0 / float64(s.NumberOfXTilesAtLevel(a.Level))
	height := 180.0 / float64(s.NumberOfYTilesAtLevel(a.Level))

	west := -180.0 + float64(a.X)*width
	north := 90.0 - float64(a.Y)*height

	return geometry.NewBoundingBox(west, west+width, north-height, north, 0, 0)
}

// Geometric error allowed at the given level, halving at every level
func (s *TilingScheme) LevelMaximumGeometricError(level uint32) float64 {
	return s.levelZeroMaximumError / float64(uint64(1)<<level)
}

package io

import (
	"github.com/ecopia-map/cesium_stream/internal/geometry"
	"github.com/ecopia-map/cesium_stream/internal/quadtree"
	"github.com/ecopia-map/cesium_stream/internal/stream"
	"github.com/ecopia-map/cesium_stream/internal/tile"
)

// Contains the minimal data needed to export a single tile, i.e. a binary content.ply file and a tile.json file.
// The tile data is captured when the unit is produced so a later eviction of the tile does not affect it.
type WorkUnit struct {
	Address   quadtree.Address
	NumPoints int
	ChildMask quadtree.ChildMask
	Buffer    *tile.RenderBuffer    // nil when the source is streamed without visibility
	Bounds    *geometry.BoundingBox // geographic extent of the points
	Opts      *stream.StreamOptions
	BasePath  string
}

func NewWorkUnit(t *tile.Tile, basePath string, opts *stream.StreamOptions) *WorkUnit {
	return &WorkUnit{
		Address:   t.Address,
		NumPoints: t.NumPoints(),
		ChildMask: t.ChildMask(),
		Buffer:    t.RenderBuffer(),
		Bounds:    t.Bounds(),
		Opts:      opts,
		BasePath:  basePath,
	}
}

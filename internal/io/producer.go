package io

import (
	"sync"

	"github.com/ecopia-map/cesium_stream/internal/tile"
)

// Walk traverses a source and calls visit for every Ready tile holding points
type Walk func(visit func(t *tile.Tile) error) error

type Producer interface {
	Produce(work chan *WorkUnit, wg *sync.WaitGroup, walk Walk)
}

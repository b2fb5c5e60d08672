package io

import (
	"path"
	"sort"
	"sync"

	"github.com/ecopia-map/cesium_stream/internal/stream"
	"github.com/ecopia-map/cesium_stream/internal/tile"
	"github.com/golang/glog"
)

type StandardProducer struct {
	basePath string
	options  *stream.StreamOptions

	mu       sync.Mutex
	produced []string
	err      error
}

func NewStandardProducer(basePath string, options *stream.StreamOptions) *StandardProducer {
	return &StandardProducer{
		basePath: basePath,
		options:  options,
	}
}

// Walks the source and submits a WorkUnit per visited tile to the provided workchannel.
// Closes the channel when the walk is over.
func (p *StandardProducer) Produce(work chan *WorkUnit, wg *sync.WaitGroup, walk Walk) {
	defer wg.Done()
	defer close(work)

	err := walk(func(t *tile.Tile) error {
		tilePath := t.Address.Path()
		work <- NewWorkUnit(t, path.Join(p.basePath, tilePath), p.options)

		p.mu.Lock()
		p.produced = append(p.produced, tilePath)
		p.mu.Unlock()
		return nil
	})
	if err != nil {
		glog.Warningf("walk ended with errors: %v", err)
	}

	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

// Produced lists the paths of all submitted tiles, sorted
func (p *StandardProducer) Produced() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	produced := append([]string(nil), p.produced...)
	sort.Strings(produced)
	return produced
}

// Err is the error the walk ended with
func (p *StandardProducer) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

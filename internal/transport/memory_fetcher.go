package transport

import (
	"context"
	"sync"

	"github.com/ecopia-map/cesium_stream/internal/quadtree"
	"github.com/pkg/errors"
)

// Serves a source held in memory. It records every tile request, which makes it handy for
// fixtures and for asserting which tiles were actually fetched.
type MemoryFetcher struct {
	mu       sync.Mutex
	header   []byte
	tiles    map[quadtree.Address][]byte
	requests []quadtree.Address
	gate     chan struct{}
}

func NewMemoryFetcher(header []byte) *MemoryFetcher {
	return &MemoryFetcher{
		header: header,
		tiles:  make(map[quadtree.Address][]byte),
	}
}

func (f *MemoryFetcher) PutTile(address quadtree.Address, payload []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tiles[address] = payload
}

// Hold makes subsequent tile fetches block until Release is called
func (f *MemoryFetcher) Hold() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gate == nil {
		f.gate = make(chan struct{})
	}
}

func (f *MemoryFetcher) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gate != nil {
		close(f.gate)
		f.gate = nil
	}
}

// Requests lists the tile addresses fetched so far, in request order
func (f *MemoryFetcher) Requests() []quadtree.Address {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]quadtree.Address(nil), f.requests...)
}

func (f *MemoryFetcher) FetchHeader(ctx context.Context) ([]byte, error) {
	if f.header == nil {
		return nil, errors.Wrap(ErrTransportFailure, "no header")
	}
	return f.header, nil
}

func (f *MemoryFetcher) FetchTile(ctx context.Context, address quadtree.Address) ([]byte, error) {
	f.mu.Lock()
	f.requests = append(f.requests, address)
	gate := f.gate
	payload, ok := f.tiles[address]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, errors.Wrapf(ErrTransportFailure, "fetch %s: %v", address, ctx.Err())
		}
	}

	if !ok {
		return nil, errors.Wrapf(ErrTransportFailure, "tile %s not found", address)
	}
	return payload, nil
}

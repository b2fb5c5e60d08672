package pkg

import (
	"context"
	"sync"

	"github.com/ecopia-map/cesium_stream/internal/colorizer"
	"github.com/ecopia-map/cesium_stream/internal/converters"
	"github.com/ecopia-map/cesium_stream/internal/quadtree"
	"github.com/ecopia-map/cesium_stream/internal/schema"
	"github.com/ecopia-map/cesium_stream/internal/tile"
	"github.com/ecopia-map/cesium_stream/internal/transport"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

var (
	// A child was queried or loaded before its parent reached Ready
	ErrInvalidLoadOrder = errors.New("invalid load order")
	// A tile operation was attempted before a successful header load
	ErrProviderNotReady = errors.New("provider not ready")
)

// TileCache owns the lifetime of the tiles of a provider
type TileCache interface {
	Get(address quadtree.Address) (*tile.Tile, bool)
	GetOrCreate(address quadtree.Address, create func() *tile.Tile) (*tile.Tile, bool)
	Pin(address quadtree.Address)
	Unpin(address quadtree.Address)
}

// Status is what LoadTile reports to the traversal driver
type Status struct {
	Address    quadtree.Address
	State      tile.State
	Absent     bool // the tile is known not to exist, nothing was fetched
	Renderable bool // Ready with a render buffer
	Err        error
	Tile       *tile.Tile
}

// Done reports whether the tile reached a terminal state and polling can stop
func (s Status) Done() bool {
	return s.State.Terminal()
}

// Provider streams the tiles of one point cloud source. It owns the header, the tiling scheme
// and the colorization parameters, and enforces the existence protocol: a child is only ever
// fetched when its Ready parent says it exists.
type Provider struct {
	fetcher     transport.Fetcher
	cache       TileCache
	scheme      *quadtree.TilingScheme
	toCartesian converters.CartesianFunc
	visible     bool

	headerMu  sync.Mutex
	header    *schema.Header
	headerErr error
	config    *tile.Config

	colorMu sync.RWMutex
	params  colorizer.Params
}

func NewProvider(fetcher transport.Fetcher, cache TileCache, toCartesian converters.CartesianFunc, visible bool) *Provider {
	return &Provider{
		fetcher:     fetcher,
		cache:       cache,
		scheme:      quadtree.NewGeographicTilingScheme(),
		toCartesian: toCartesian,
		visible:     visible,
	}
}

// HeaderLoad fetches and validates the header. It runs at most once: later calls return the
// outcome of the first one, so a provider whose header failed stays unusable.
func (p *Provider) HeaderLoad(ctx context.Context) error {
	p.headerMu.Lock()
	defer p.headerMu.Unlock()

	if p.header != nil || p.headerErr != nil {
		return p.headerErr
	}

	header, err := p.loadHeader(ctx)
	if err != nil {
		p.headerErr = err
		glog.Errorf("header load failed: %v", err)
		return err
	}

	p.colorMu.RLock()
	params := p.params
	p.colorMu.RUnlock()
	if err := params.Validate(header); err != nil {
		glog.Warningf("dropping colorization %s by %s: %v", params.RampName, params.DimensionName, err)
		p.colorMu.Lock()
		p.params = colorizer.Params{}
		p.colorMu.Unlock()
	}

	p.header = header
	p.config = &tile.Config{
		Header:       header,
		Fetcher:      p.fetcher,
		ToCartesian:  p.toCartesian,
		Colorization: p.Colorization,
		Visible:      p.visible,
	}
	glog.Infof("header loaded: %d dimensions %v, point stride %d bytes", len(header.Dimensions), header.Names(), header.PointStride)
	return nil
}

func (p *Provider) loadHeader(ctx context.Context) (*schema.Header, error) {
	data, err := p.fetcher.FetchHeader(ctx)
	if err != nil {
		return nil, errors.WithMessage(err, "fetch header")
	}
	return schema.ParseHeader(data)
}

// Header returns the loaded header, nil before a successful HeaderLoad
func (p *Provider) Header() *schema.Header {
	p.headerMu.Lock()
	defer p.headerMu.Unlock()
	return p.header
}

func (p *Provider) Ready() bool {
	return p.Header() != nil
}

func (p *Provider) tileConfig() (*tile.Config, error) {
	p.headerMu.Lock()
	defer p.headerMu.Unlock()
	if p.header == nil {
		if p.headerErr != nil {
			return nil, errors.Wrapf(ErrProviderNotReady, "header failed: %v", p.headerErr)
		}
		return nil, errors.Wrap(ErrProviderNotReady, "header not loaded")
	}
	return p.config, nil
}

func (p *Provider) TilingScheme() *quadtree.TilingScheme {
	return p.scheme
}

func (p *Provider) LevelMaximumGeometricError(level uint32) float64 {
	return p.scheme.LevelMaximumGeometricError(level)
}

// CheckExistence tells whether the tile at address exists in the source, using only the
// already decoded parent. Every level zero tile exists. A parent that is not cached means the
// child does not exist; a parent that exists but is not Ready is ErrInvalidLoadOrder.
func (p *Provider) CheckExistence(address quadtree.Address) (bool, error) {
	exists, _, err := p.existence(address)
	return exists, err
}

// existence also reports whether the answer came from a cached parent, as opposed to a root
// or a parent missing from the cache
func (p *Provider) existence(address quadtree.Address) (exists bool, fromParent bool, err error) {
	if _, err := p.tileConfig(); err != nil {
		return false, false, err
	}
	if address.IsRoot() {
		return true, false, nil
	}
	if !p.scheme.Contains(address) {
		return false, false, nil
	}

	parentAddress, _ := address.Parent()
	parent, ok := p.cache.Get(parentAddress)
	if !ok {
		return false, false, nil
	}
	if state := parent.State(); state != tile.Ready {
		return false, false, errors.Wrapf(ErrInvalidLoadOrder, "parent %s of %s is %s", parentAddress, address, state)
	}
	return parent.ChildMask().IsChildAvailable(parentAddress, address), true, nil
}

// LoadTile drives the tile at address towards a terminal state. It is idempotent: on a tile
// already known it only reports the current status, so the traversal driver can poll it.
// A fresh address is checked for existence first; a tile known to be absent is synthesized
// without any fetch.
func (p *Provider) LoadTile(ctx context.Context, address quadtree.Address) (Status, error) {
	config, err := p.tileConfig()
	if err != nil {
		return Status{Address: address}, err
	}

	if t, ok := p.cache.Get(address); ok {
		return statusOf(t), nil
	}

	exists, fromParent, err := p.existence(address)
	if err != nil {
		return Status{Address: address}, err
	}

	// without a cached parent the answer may change once the parent is loaded again
	if !exists && !fromParent {
		glog.V(2).Infof("tile %s has no cached parent", address)
		return statusOf(tile.NewAbsent(address)), nil
	}
	if !exists {
		t, _ := p.cache.GetOrCreate(address, func() *tile.Tile {
			glog.V(2).Infof("tile %s does not exist", address)
			return tile.NewAbsent(address)
		})
		return statusOf(t), nil
	}

	t, created := p.cache.GetOrCreate(address, func() *tile.Tile {
		return tile.New(address, config)
	})
	if created {
		// loads outlive the polling call that started them
		t.Load(context.WithoutCancel(ctx))
	}
	return statusOf(t), nil
}

// Pin keeps the tile at address, cached or about to be, from being evicted until Unpin
func (p *Provider) Pin(address quadtree.Address) {
	p.cache.Pin(address)
}

func (p *Provider) Unpin(address quadtree.Address) {
	p.cache.Unpin(address)
}

// Tile returns the cached tile at address, if any
func (p *Provider) Tile(address quadtree.Address) (*tile.Tile, bool) {
	return p.cache.Get(address)
}

func statusOf(t *tile.Tile) Status {
	return Status{
		Address:    t.Address,
		State:      t.State(),
		Absent:     t.Absent(),
		Renderable: t.RenderBuffer() != nil,
		Err:        t.Err(),
		Tile:       t,
	}
}

// SetColorization replaces the colorization parameters used by subsequent decodes. Empty
// names disable colorization. Tiles already Ready keep their colors until recolorized.
func (p *Provider) SetColorization(rampName, dimensionName string) error {
	params := colorizer.Params{RampName: rampName, DimensionName: dimensionName}
	if err := params.Validate(p.Header()); err != nil {
		return err
	}

	p.colorMu.Lock()
	defer p.colorMu.Unlock()
	p.params = params
	return nil
}

// Colorization returns a snapshot of the current parameters
func (p *Provider) Colorization() colorizer.Params {
	p.colorMu.RLock()
	defer p.colorMu.RUnlock()
	return p.params
}

// Recolorize regenerates the colors of one Ready tile with the current parameters
func (p *Provider) Recolorize(t *tile.Tile) error {
	return t.Recolorize(p.Colorization())
}

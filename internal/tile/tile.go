package tile

import (
	"context"
	"sync"

	"github.com/ecopia-map/cesium_stream/internal/codec"
	"github.com/ecopia-map/cesium_stream/internal/colorizer"
	"github.com/ecopia-map/cesium_stream/internal/converters"
	"github.com/ecopia-map/cesium_stream/internal/geometry"
	"github.com/ecopia-map/cesium_stream/internal/quadtree"
	"github.com/ecopia-map/cesium_stream/internal/schema"
	"github.com/ecopia-map/cesium_stream/internal/transport"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

var (
	ErrNotReady   = errors.New("tile is not ready")
	ErrDestroyed  = errors.New("tile destroyed")
	ErrNotLoading = errors.New("tile is not loading")
)

// Everything a tile needs from its source to load and decode itself. It is shared by all the
// tiles of a source and must not change once tiles exist, except for what Colorization returns.
type Config struct {
	Header  *schema.Header
	Fetcher transport.Fetcher
	// Places geographic X/Y/Z in the cartesian render frame
	ToCartesian converters.CartesianFunc
	// Snapshot of the current colorization parameters, read once per decode. May be nil.
	Colorization func() colorizer.Params
	// When false tiles decode but derive no render buffer
	Visible bool
}

// RenderBuffer pairs cartesian positions (3 per point) with colors (4 bytes per point)
type RenderBuffer struct {
	NumPoints int
	Positions []float64
	RGBA      []uint8
}

// A Tile owns the decoded points of one quadtree node and the existence flags of its children
type Tile struct {
	Address quadtree.Address

	config *Config

	mu         sync.RWMutex
	state      State
	err        error
	absent     bool
	destroyed  bool
	numPoints  int
	childMask  quadtree.ChildMask
	dimensions []codec.Dimension
	rgba       []uint8
	positions  []float64
	bounds     *geometry.BoundingBox
	cancel     context.CancelFunc
	done       chan struct{}
}

func New(address quadtree.Address, config *Config) *Tile {
	return &Tile{
		Address: address,
		config:  config,
		state:   Unloaded,
		done:    make(chan struct{}),
	}
}

// NewAbsent returns the terminal tile standing in for a node that is known not to exist.
// It is Ready, holds no points and no children, and never fetches anything.
func NewAbsent(address quadtree.Address) *Tile {
	t := &Tile{
		Address: address,
		state:   Ready,
		absent:  true,
		done:    make(chan struct{}),
	}
	close(t.done)
	return t
}

// Load starts the asynchronous fetch and decode of the tile. Only an Unloaded tile starts
// loading; on any other tile Load does nothing and returns false.
func (t *Tile) Load(ctx context.Context) bool {
	t.mu.Lock()
	if t.state != Unloaded || t.destroyed {
		t.mu.Unlock()
		return false
	}
	ctx, cancel := context.WithCancel(ctx)
	t.state = Loading
	t.cancel = cancel
	t.mu.Unlock()

	go t.load(ctx)
	return true
}

func (t *Tile) load(ctx context.Context) {
	defer t.cancel()

	payload, err := t.config.Fetcher.FetchTile(ctx, t.Address)
	if err != nil {
		t.fail(errors.WithMessagef(err, "tile %s", t.Address))
		return
	}

	t.Decode(payload)
}

func (t *Tile) fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.destroyed {
		glog.V(2).Infof("tile %s destroyed before its load failed: %v", t.Address, err)
		return
	}
	if t.state.Terminal() {
		return
	}
	glog.Warningf("tile %s failed: %v", t.Address, err)
	t.state = Failed
	t.err = err
	close(t.done)
}

// Decode parses a raw payload and moves a Loading tile to Ready, or to Failed on any decode
// error. It runs to completion without suspending and is what the asynchronous load calls once
// bytes are available. A tile in any other state is left alone and ErrNotLoading is returned;
// on a destroyed tile the payload is discarded.
func (t *Tile) Decode(payload []byte) error {
	t.mu.RLock()
	state, destroyed := t.state, t.destroyed
	t.mu.RUnlock()
	if !destroyed && state != Loading {
		return errors.Wrapf(ErrNotLoading, "decode %s in state %s", t.Address, state)
	}

	if err := t.decode(payload); err != nil {
		err = errors.WithMessagef(err, "tile %s", t.Address)
		t.fail(err)
		return err
	}
	return nil
}

func (t *Tile) decode(payload []byte) error {
	cfg := t.config
	header := cfg.Header

	parsed, err := codec.ParsePayload(payload, header.PointStride)
	if err != nil {
		return err
	}
	numPoints := int(parsed.NumPoints)

	var dims []codec.Dimension
	var rgba []uint8
	var positions []float64
	var bounds *geometry.BoundingBox
	if numPoints > 0 {
		dims, err = codec.DecodeDimensions(header, parsed.Body, numPoints)
		if err != nil {
			return err
		}

		rgba = make([]uint8, numPoints*4)
		colorizer.FillWhite(rgba)
		if cfg.Colorization != nil {
			if err := cfg.Colorization().Run(header, dims, numPoints, rgba); err != nil {
				return err
			}
		}

		bounds, positions, err = derivePositions(cfg, dims, numPoints)
		if err != nil {
			return err
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.destroyed {
		glog.V(2).Infof("tile %s destroyed before its load completed, discarding %d points", t.Address, numPoints)
		return nil
	}
	if t.state.Terminal() {
		return errors.Errorf("already %s", t.state)
	}
	t.numPoints = numPoints
	t.childMask = quadtree.ChildMask(parsed.ChildMask)
	t.dimensions = dims
	t.rgba = rgba
	t.positions = positions
	t.bounds = bounds
	t.state = Ready
	close(t.done)

	glog.V(2).Infof("tile %s ready, %d points, child mask %04b", t.Address, numPoints, parsed.ChildMask)
	return nil
}

func derivePositions(cfg *Config, dims []codec.Dimension, numPoints int) (*geometry.BoundingBox, []float64, error) {
	xs, okX := codec.Lookup(dims, schema.DimensionX)
	ys, okY := codec.Lookup(dims, schema.DimensionY)
	zs, okZ := codec.Lookup(dims, schema.DimensionZ)
	if !okX || !okY || !okZ {
		if !cfg.Visible {
			return nil, nil, nil
		}
		return nil, nil, errors.Wrap(schema.ErrMalformedHeader, "positional dimensions X, Y and Z are required to render")
	}

	first := geometry.Coordinate{X: xs.At(0), Y: ys.At(0), Z: zs.At(0)}
	bounds := geometry.NewBoundingBox(first.X, first.X, first.Y, first.Y, first.Z, first.Z)
	for i := 1; i < numPoints; i++ {
		bounds.Extend(geometry.Coordinate{X: xs.At(i), Y: ys.At(i), Z: zs.At(i)})
	}

	if !cfg.Visible {
		return bounds, nil, nil
	}

	positions := make([]float64, numPoints*3)
	for i := 0; i < numPoints; i++ {
		c, err := cfg.ToCartesian(xs.At(i), ys.At(i), zs.At(i))
		if err != nil {
			return nil, nil, errors.Wrapf(err, "position of point %d", i)
		}
		positions[i*3] = c.X
		positions[i*3+1] = c.Y
		positions[i*3+2] = c.Z
	}
	return bounds, positions, nil
}

func (t *Tile) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Err is the reason of a Failed tile, nil otherwise
func (t *Tile) Err() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.err
}

// Done is closed when the tile reaches a terminal state
func (t *Tile) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the tile is terminal or ctx ends. It returns the failure of a Failed tile.
func (t *Tile) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Absent reports whether the tile was synthesized for a node that does not exist
func (t *Tile) Absent() bool {
	return t.absent
}

func (t *Tile) Destroyed() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.destroyed
}

func (t *Tile) NumPoints() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.numPoints
}

func (t *Tile) ChildMask() quadtree.ChildMask {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.childMask
}

func (t *Tile) SWExists() bool { return t.ChildMask().SWExists() }
func (t *Tile) SEExists() bool { return t.ChildMask().SEExists() }
func (t *Tile) NEExists() bool { return t.ChildMask().NEExists() }
func (t *Tile) NWExists() bool { return t.ChildMask().NWExists() }

// Dimensions returns the decoded arrays in header declaration order
func (t *Tile) Dimensions() []codec.Dimension {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.dimensions
}

func (t *Tile) Dimension(name string) (codec.Array, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return codec.Lookup(t.dimensions, name)
}

func (t *Tile) RGBA() []uint8 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rgba
}

// Bounds is the geographic extent of the tile points, nil for an empty tile
func (t *Tile) Bounds() *geometry.BoundingBox {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.bounds
}

// RenderBuffer returns the points to draw. A tile that is not Ready, holds no points or was
// loaded without visibility returns nil.
func (t *Tile) RenderBuffer() *RenderBuffer {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.state != Ready || t.numPoints == 0 || t.positions == nil {
		return nil
	}
	return &RenderBuffer{
		NumPoints: t.numPoints,
		Positions: t.positions,
		RGBA:      t.rgba,
	}
}

// Recolorize regenerates the rgba buffer of a Ready tile in place with the given parameters.
// The buffer is reset to white first so nothing of a previous run survives.
func (t *Tile) Recolorize(params colorizer.Params) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != Ready || t.destroyed {
		return errors.Wrapf(ErrNotReady, "recolorize %s in state %s", t.Address, t.state)
	}
	if t.numPoints == 0 {
		return nil
	}

	colorizer.FillWhite(t.rgba)
	return params.Run(t.config.Header, t.dimensions, t.numPoints, t.rgba)
}

// Destroy releases the decoded arrays and the render buffer. A load still in flight is
// cancelled, its completion ignored, and waiters are released with ErrDestroyed.
func (t *Tile) Destroy() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.destroyed {
		return
	}
	t.destroyed = true
	if t.cancel != nil {
		t.cancel()
	}
	if !t.state.Terminal() {
		t.err = errors.Wrapf(ErrDestroyed, "tile %s in state %s", t.Address, t.state)
		close(t.done)
	}
	t.dimensions = nil
	t.rgba = nil
	t.positions = nil
	t.bounds = nil
}

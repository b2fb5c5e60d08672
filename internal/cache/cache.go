package cache

import (
	"container/list"
	"sync"

	"github.com/ecopia-map/cesium_stream/internal/colorizer"
	"github.com/ecopia-map/cesium_stream/internal/quadtree"
	"github.com/ecopia-map/cesium_stream/internal/tile"
	"github.com/golang/glog"
	"go.uber.org/multierr"
)

// Cache owns the lifetime of the tiles of one source. It is bounded by tile count and evicts
// the least recently used tile that has no cached children, so a cached tile always has its
// parent cached too. Root tiles and addresses pinned by the caller are never evicted. Evicted
// tiles are destroyed.
type Cache struct {
	mu       sync.Mutex
	capacity int
	lru      *list.List
	entries  map[quadtree.Address]*list.Element
	children map[quadtree.Address]int
	pinned   map[quadtree.Address]int
}

// New returns a cache holding at most capacity tiles, pinned roots excluded from eviction.
// A capacity <= 0 means unbounded.
func New(capacity int) *Cache {
	return &Cache{
		capacity: capacity,
		lru:      list.New(),
		entries:  make(map[quadtree.Address]*list.Element),
		children: make(map[quadtree.Address]int),
		pinned:   make(map[quadtree.Address]int),
	}
}

// Get returns the cached tile and marks it as recently used
func (c *Cache) Get(address quadtree.Address) (*tile.Tile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[address]
	if !ok {
		return nil, false
	}
	c.lru.MoveToFront(el)
	return el.Value.(*tile.Tile), true
}

// GetOrCreate returns the cached tile for address, creating and caching it with create when
// missing. created reports whether create was called.
func (c *Cache) GetOrCreate(address quadtree.Address, create func() *tile.Tile) (t *tile.Tile, created bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[address]; ok {
		c.lru.MoveToFront(el)
		return el.Value.(*tile.Tile), false
	}

	t = create()
	c.entries[address] = c.lru.PushFront(t)
	if parent, ok := address.Parent(); ok {
		c.children[parent]++
	}
	c.evict(&address)
	return t, true
}

// Remove destroys the tile at address together with all its cached descendants
func (c *Cache) Remove(address quadtree.Address) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remove(address)
}

func (c *Cache) remove(address quadtree.Address) bool {
	el, ok := c.entries[address]
	if !ok {
		return false
	}
	if c.children[address] > 0 {
		for _, child := range address.Children() {
			c.remove(child)
		}
	}

	delete(c.entries, address)
	delete(c.children, address)
	c.lru.Remove(el)
	if parent, ok := address.Parent(); ok {
		if c.children[parent]--; c.children[parent] <= 0 {
			delete(c.children, parent)
		}
	}

	el.Value.(*tile.Tile).Destroy()
	return true
}

// Pin protects address from eviction until a matching Unpin. The address does not need to be
// cached yet, so a tile can be pinned before it is created. Pins nest.
func (c *Cache) Pin(address quadtree.Address) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pinned[address]++
}

// Unpin releases one Pin and evicts whatever the pin was holding over capacity
func (c *Cache) Unpin(address quadtree.Address) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pinned[address]--; c.pinned[address] <= 0 {
		delete(c.pinned, address)
	}
	c.evict(nil)
}

// evict removes tiles over capacity, never the one at keep when given
func (c *Cache) evict(keep *quadtree.Address) {
	if c.capacity <= 0 {
		return
	}
	for c.lru.Len() > c.capacity {
		victim, ok := c.oldestEvictable(keep)
		if !ok {
			return
		}
		glog.V(2).Infof("evicting tile %s", victim)
		c.remove(victim)
	}
}

func (c *Cache) oldestEvictable(keep *quadtree.Address) (quadtree.Address, bool) {
	for el := c.lru.Back(); el != nil; el = el.Prev() {
		address := el.Value.(*tile.Tile).Address
		if (keep == nil || address != *keep) && !address.IsRoot() && c.children[address] == 0 && c.pinned[address] == 0 {
			return address, true
		}
	}
	return quadtree.Address{}, false
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Tiles lists the cached tiles from most to least recently used
func (c *Cache) Tiles() []*tile.Tile {
	c.mu.Lock()
	defer c.mu.Unlock()

	tiles := make([]*tile.Tile, 0, c.lru.Len())
	for el := c.lru.Front(); el != nil; el = el.Next() {
		tiles = append(tiles, el.Value.(*tile.Tile))
	}
	return tiles
}

// Purge destroys every cached tile
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for el := c.lru.Front(); el != nil; el = el.Next() {
		el.Value.(*tile.Tile).Destroy()
	}
	c.lru.Init()
	c.entries = make(map[quadtree.Address]*list.Element)
	c.children = make(map[quadtree.Address]int)
	c.pinned = make(map[quadtree.Address]int)
}

// Recolorizer re-runs colorization on one tile, typically a provider with its current parameters
type Recolorizer interface {
	Recolorize(t *tile.Tile) error
}

// RecolorizeAll re-runs colorization on every Ready, non empty cached tile. Failures are
// collected and do not stop the pass.
func (c *Cache) RecolorizeAll(r Recolorizer) error {
	var errs error
	for _, t := range c.Tiles() {
		if t.State() != tile.Ready || t.NumPoints() == 0 {
			continue
		}
		errs = multierr.Append(errs, r.Recolorize(t))
	}
	return errs
}

// ParamsRecolorizer applies fixed parameters
type ParamsRecolorizer colorizer.Params

func (p ParamsRecolorizer) Recolorize(t *tile.Tile) error {
	return t.Recolorize(colorizer.Params(p))
}

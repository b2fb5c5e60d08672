package pkg

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/ecopia-map/cesium_stream/internal/quadtree"
	"github.com/ecopia-map/cesium_stream/internal/tile"
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// TileVisitor is called once for every Ready tile holding points
type TileVisitor func(t *tile.Tile) error

type CrawlStats struct {
	Ready    int
	Failed   int
	Empty    int // Ready tiles without points
	Absent   int // children skipped because their parent mask excludes them
	Points   int
	PerLevel map[uint32]int
}

// Crawler is a reference traversal driver: it walks the quadtree of a provider breadth-wise
// down to a maximum level, querying a child only once its parent is Ready.
type Crawler struct {
	provider    *Provider
	maxLevel    uint32
	concurrency int64
	visit       TileVisitor
}

func NewCrawler(provider *Provider, maxLevel uint32, concurrency int, visit TileVisitor) *Crawler {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Crawler{
		provider:    provider,
		maxLevel:    maxLevel,
		concurrency: int64(concurrency),
		visit:       visit,
	}
}

// Crawl loads every existing tile down to the maximum level. Failed tiles and visitor errors
// do not stop the crawl and are returned combined; protocol and context errors abort it.
func (c *Crawler) Crawl(ctx context.Context) (*CrawlStats, error) {
	stats := &CrawlStats{PerLevel: make(map[uint32]int)}
	var failures error
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(c.concurrency)

	// Every scheduled address stays pinned in the cache until its own children are cached, so
	// a parent is never evicted between becoming Ready and answering for its children.
	var walk func(address quadtree.Address, loaded func())
	walk = func(address quadtree.Address, loaded func()) {
		c.provider.Pin(address)
		g.Go(func() error {
			unpin := sync.OnceFunc(func() { c.provider.Unpin(address) })
			handedOver := false
			defer func() {
				if !handedOver {
					unpin()
				}
			}()

			if err := sem.Acquire(ctx, 1); err != nil {
				loaded()
				return err
			}
			status, err := c.poll(ctx, address, loaded)
			sem.Release(1)
			if err != nil {
				return err
			}

			mu.Lock()
			c.record(stats, status)
			if status.State == tile.Failed {
				failures = multierr.Append(failures, status.Err)
			}
			mu.Unlock()

			if status.State != tile.Ready {
				return nil
			}
			if c.visit != nil && status.Tile.NumPoints() > 0 {
				if err := c.visit(status.Tile); err != nil {
					mu.Lock()
					failures = multierr.Append(failures, errors.WithMessagef(err, "visit %s", address))
					mu.Unlock()
				}
			}
			if address.Level >= c.maxLevel {
				return nil
			}

			var existing []quadtree.Address
			for _, child := range address.Children() {
				exists, err := c.provider.CheckExistence(child)
				if err != nil {
					return err
				}
				if !exists {
					mu.Lock()
					stats.Absent++
					mu.Unlock()
					continue
				}
				existing = append(existing, child)
			}

			// the children take over the pin, the last one to be cached releases it
			remaining := int32(len(existing))
			childLoaded := func() {
				if atomic.AddInt32(&remaining, -1) == 0 {
					unpin()
				}
			}
			handedOver = len(existing) > 0
			for _, child := range existing {
				walk(child, sync.OnceFunc(childLoaded))
			}
			return nil
		})
	}

	for _, root := range c.provider.TilingScheme().RootAddresses() {
		walk(root, func() {})
	}

	err := g.Wait()
	glog.Infof("crawl done: %d ready, %d empty, %d failed, %d absent, %d points", stats.Ready, stats.Empty, stats.Failed, stats.Absent, stats.Points)
	return stats, multierr.Combine(err, failures)
}

// poll calls LoadTile until the tile is terminal, sleeping on the tile in between. loaded is
// called once the first LoadTile returned, when the tile is in the cache.
func (c *Crawler) poll(ctx context.Context, address quadtree.Address, loaded func()) (Status, error) {
	defer loaded()
	for {
		status, err := c.provider.LoadTile(ctx, address)
		loaded()
		if err != nil || status.Done() {
			return status, err
		}
		select {
		case <-status.Tile.Done():
		case <-ctx.Done():
			return status, ctx.Err()
		}
	}
}

func (c *Crawler) record(stats *CrawlStats, status Status) {
	switch status.State {
	case tile.Failed:
		stats.Failed++
	case tile.Ready:
		stats.Ready++
		stats.PerLevel[status.Address.Level]++
		numPoints := status.Tile.NumPoints()
		stats.Points += numPoints
		if numPoints == 0 {
			stats.Empty++
		}
	}
}

package pkg

import (
	"context"
	"sync"
	"testing"

	"github.com/ecopia-map/cesium_stream/internal/cache"
	"github.com/ecopia-map/cesium_stream/internal/quadtree"
	"github.com/ecopia-map/cesium_stream/internal/tile"
	"github.com/ecopia-map/cesium_stream/internal/transport"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/test"
)

func TestCrawl(t *testing.T) {
	p, fetcher := newTestProvider(t, testHeader)
	test.That(t, p.HeaderLoad(context.Background()), test.ShouldBeNil)

	west := quadtree.NewAddress(0, 0, 0)
	east := quadtree.NewAddress(0, 1, 0)
	fetcher.PutTile(west, encodeTile(t, quadtree.ChildMask(0).With(quadtree.NW).With(quadtree.SE), testPoint{-90, 0, 0, 0}))
	fetcher.PutTile(east, encodeTile(t, 0))
	fetcher.PutTile(west.Child(quadtree.NW), encodeTile(t, quadtree.MaskAll, testPoint{-135, 45, 0, 0}, testPoint{-130, 40, 0, 0}))
	// west SE is declared but missing on the server

	var mu sync.Mutex
	var visited []quadtree.Address
	crawler := NewCrawler(p, 1, 4, func(tl *tile.Tile) error {
		mu.Lock()
		defer mu.Unlock()
		visited = append(visited, tl.Address)
		return nil
	})

	stats, err := crawler.Crawl(context.Background())
	test.That(t, errors.Is(err, transport.ErrTransportFailure), test.ShouldBeTrue)
	test.That(t, multierr.Errors(err), test.ShouldHaveLength, 1)

	test.That(t, stats.Ready, test.ShouldEqual, 3)
	test.That(t, stats.Empty, test.ShouldEqual, 1)
	test.That(t, stats.Failed, test.ShouldEqual, 1)
	test.That(t, stats.Absent, test.ShouldEqual, 6)
	test.That(t, stats.Points, test.ShouldEqual, 3)
	test.That(t, stats.PerLevel[0], test.ShouldEqual, 2)
	test.That(t, stats.PerLevel[1], test.ShouldEqual, 1)

	test.That(t, visited, test.ShouldHaveLength, 2)
	test.That(t, visited, test.ShouldContain, west)
	test.That(t, visited, test.ShouldContain, west.Child(quadtree.NW))

	// level 2 is never requested even though the NW mask announces children
	for _, address := range fetcher.Requests() {
		test.That(t, address.Level, test.ShouldBeLessThanOrEqualTo, uint32(1))
	}
	test.That(t, fetcher.Requests(), test.ShouldHaveLength, 4)
}

func TestCrawlWithSmallCacheFetchesEveryTile(t *testing.T) {
	for _, capacity := range []int{0, 1, 3} {
		c := cache.New(capacity)
		p, fetcher := newTestProviderWithCache(t, testHeader, c)
		test.That(t, p.HeaderLoad(context.Background()), test.ShouldBeNil)

		// full tree down to level 2, one point per tile
		var addresses []quadtree.Address
		for _, root := range p.TilingScheme().RootAddresses() {
			addresses = append(addresses, root)
			for _, child := range root.Children() {
				addresses = append(addresses, child)
				addresses = append(addresses, child.Children()[:]...)
			}
		}
		for _, address := range addresses {
			mask := quadtree.MaskAll
			if address.Level == 2 {
				mask = 0
			}
			fetcher.PutTile(address, encodeTile(t, mask, testPoint{0, 0, 0, 0}))
		}

		stats, err := NewCrawler(p, 2, 4, nil).Crawl(context.Background())
		test.That(t, err, test.ShouldBeNil)
		test.That(t, stats.Ready, test.ShouldEqual, 42)
		test.That(t, stats.Empty, test.ShouldEqual, 0)
		test.That(t, stats.Points, test.ShouldEqual, 42)
		test.That(t, stats.Absent, test.ShouldEqual, 0)
		test.That(t, fetcher.Requests(), test.ShouldHaveLength, 42)
		if capacity > 0 {
			// pins are all released, only roots and tiles with cached children are left over capacity
			test.That(t, c.Len(), test.ShouldBeLessThan, 42)
		}
	}
}

func TestCrawlVisitorErrorsAreCollected(t *testing.T) {
	p, fetcher := newTestProvider(t, testHeader)
	test.That(t, p.HeaderLoad(context.Background()), test.ShouldBeNil)
	fetcher.PutTile(quadtree.NewAddress(0, 0, 0), encodeTile(t, 0, testPoint{-90, 0, 0, 0}))
	fetcher.PutTile(quadtree.NewAddress(0, 1, 0), encodeTile(t, 0, testPoint{90, 0, 0, 0}))

	boom := errors.New("disk full")
	stats, err := NewCrawler(p, 3, 1, func(*tile.Tile) error { return boom }).Crawl(context.Background())
	test.That(t, errors.Is(err, boom), test.ShouldBeTrue)
	test.That(t, multierr.Errors(err), test.ShouldHaveLength, 2)
	test.That(t, stats.Ready, test.ShouldEqual, 2)
	test.That(t, stats.Absent, test.ShouldEqual, 8)
}

func TestCrawlCancelled(t *testing.T) {
	p, fetcher := newTestProvider(t, testHeader)
	test.That(t, p.HeaderLoad(context.Background()), test.ShouldBeNil)
	fetcher.Hold()
	defer fetcher.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewCrawler(p, 3, 2, nil).Crawl(ctx)
	test.That(t, errors.Is(err, context.Canceled), test.ShouldBeTrue)
}

package pkg

import (
	"context"
	"net/http"
	"runtime"
	"sort"
	"strconv"
	"sync"

	"github.com/ecopia-map/cesium_stream/internal/cache"
	"github.com/ecopia-map/cesium_stream/internal/io"
	"github.com/ecopia-map/cesium_stream/internal/quadtree"
	"github.com/ecopia-map/cesium_stream/internal/stream"
	"github.com/ecopia-map/cesium_stream/internal/tile"
	"github.com/ecopia-map/cesium_stream/internal/transport"
	"github.com/ecopia-map/cesium_stream/pkg/algorithm_manager"
	"github.com/ecopia-map/cesium_stream/tools"
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"
)

type IStreamer interface {
	RunStreamer(ctx context.Context, opts *stream.StreamOptions) error
}

type Streamer struct {
	algorithmManager algorithm_manager.AlgorithmManager
}

func NewStreamer(algorithmManager algorithm_manager.AlgorithmManager) IStreamer {
	return &Streamer{
		algorithmManager: algorithmManager,
	}
}

// NewFetcher picks the transport matching the source: http(s) urls are fetched remotely,
// anything else is read as a local mirror folder
func NewFetcher(opts *stream.StreamOptions) transport.Fetcher {
	if opts.IsRemote() {
		return transport.NewHTTPFetcher(opts.Source, &http.Client{Timeout: opts.Timeout})
	}
	return transport.NewDirFetcher(opts.Source)
}

// Runs the command selected in the options against the source
func (s *Streamer) RunStreamer(ctx context.Context, opts *stream.StreamOptions) error {
	defer s.algorithmManager.GetCoordinateConverterAlgorithm().Cleanup()

	tileCache := cache.New(opts.CacheSize)
	defer tileCache.Purge()

	provider := NewProvider(NewFetcher(opts), tileCache, s.algorithmManager.GetCartesianFunc(), opts.Visible)
	tools.LogOutput("> loading header of", opts.Source)
	if err := provider.HeaderLoad(ctx); err != nil {
		return err
	}
	if err := provider.SetColorization(opts.RampName, opts.DimensionName); err != nil {
		return err
	}

	switch opts.Command {
	case stream.CommandInfo:
		s.printInfo(provider)
		return nil
	case stream.CommandCrawl:
		return s.crawl(ctx, provider, opts)
	case stream.CommandExport:
		return s.export(ctx, provider, opts)
	}
	return errors.Errorf("unknown command %q", opts.Command)
}

func (s *Streamer) printInfo(provider *Provider) {
	header := provider.Header()
	tools.LogOutput("version", header.Version, "point stride", header.PointStride, "bytes")
	for _, dim := range header.Dimensions {
		line := []interface{}{"  " + dim.Name, dim.Datatype.String(), "offset", dim.Offset}
		if min, max, ok := dim.Range(); ok {
			line = append(line, "range", min, max)
		}
		tools.LogOutput(line...)
	}

	scheme := provider.TilingScheme()
	roots := lo.Map(scheme.RootAddresses(), func(a quadtree.Address, _ int) string { return a.String() })
	tools.LogOutput("root tiles", roots, "level 0 geometric error", scheme.LevelMaximumGeometricError(0))
}

func (s *Streamer) crawl(ctx context.Context, provider *Provider, opts *stream.StreamOptions) error {
	tools.LogOutput("> crawling down to level", opts.MaxLevel)
	stats, err := NewCrawler(provider, opts.MaxLevel, opts.Concurrency, nil).Crawl(ctx)

	levels := lo.Keys(stats.PerLevel)
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })
	for _, level := range levels {
		tools.LogOutput("  level "+strconv.Itoa(int(level))+":", stats.PerLevel[level], "tiles")
	}
	tools.LogOutput("ready", stats.Ready, "empty", stats.Empty, "failed", stats.Failed, "absent", stats.Absent, "points", stats.Points)
	return err
}

// Crawls the source and exports every tile with points through a pool of consumers, then writes the index
func (s *Streamer) export(ctx context.Context, provider *Provider, opts *stream.StreamOptions) error {
	basePath := opts.ExportOptions.Output
	tools.LogOutput("> exporting down to level", opts.MaxLevel, "into", basePath)

	// a consumer goroutine per CPU
	numConsumers := runtime.NumCPU()

	// init channel where to submit work with a buffer 5 times greater than the number of consumer
	workChannel := make(chan *io.WorkUnit, numConsumers*5)

	// consumers report every failed tile, collected while they run
	errorChannel := make(chan error)
	var consumerErrs error
	collected := make(chan struct{})
	go func() {
		for err := range errorChannel {
			consumerErrs = multierr.Append(consumerErrs, err)
		}
		close(collected)
	}()

	var waitGroup sync.WaitGroup

	waitGroup.Add(1)
	producer := io.NewStandardProducer(basePath, opts)
	go producer.Produce(workChannel, &waitGroup, func(visit func(t *tile.Tile) error) error {
		_, err := NewCrawler(provider, opts.MaxLevel, opts.Concurrency, visit).Crawl(ctx)
		return err
	})

	for i := 0; i < numConsumers; i++ {
		waitGroup.Add(1)
		consumer := io.NewStandardConsumer(s.algorithmManager.GetCoordinateConverterAlgorithm(), provider.TilingScheme())
		go consumer.Consume(workChannel, errorChannel, &waitGroup)
	}

	waitGroup.Wait()
	close(errorChannel)
	<-collected

	scheme := provider.TilingScheme()
	index := &io.Index{
		Source:         opts.Source,
		Dimensions:     provider.Header().Names(),
		GeometricError: scheme.LevelMaximumGeometricError(0),
		Roots:          lo.Map(scheme.RootAddresses(), func(a quadtree.Address, _ int) string { return a.Path() }),
		Tiles:          producer.Produced(),
	}
	if err := io.WriteIndexFile(basePath, index); err != nil {
		return multierr.Combine(producer.Err(), consumerErrs, err)
	}

	tools.LogOutput("exported", len(index.Tiles), "tiles")
	if err := multierr.Combine(producer.Err(), consumerErrs); err != nil {
		glog.Warningf("export finished with %d errors", len(multierr.Errors(err)))
		return err
	}
	return nil
}

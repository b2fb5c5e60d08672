package io

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ecopia-map/cesium_stream/internal/codec"
	"github.com/ecopia-map/cesium_stream/internal/converters"
	"github.com/ecopia-map/cesium_stream/internal/converters/ellipsoid_coordinate_converter"
	"github.com/ecopia-map/cesium_stream/internal/quadtree"
	"github.com/ecopia-map/cesium_stream/internal/schema"
	"github.com/ecopia-map/cesium_stream/internal/stream"
	"github.com/ecopia-map/cesium_stream/internal/tile"
	"github.com/ecopia-map/cesium_stream/internal/transport"
	"github.com/pkg/errors"
	"go.viam.com/test"
)

func decodedTile(t *testing.T, address quadtree.Address, mask quadtree.ChildMask, visible bool) *tile.Tile {
	t.Helper()
	header, err := schema.NewHeader(schema.SupportedVersion, []schema.Dimension{
		{Name: "X", Datatype: schema.Float64},
		{Name: "Y", Datatype: schema.Float64},
		{Name: "Z", Datatype: schema.Float64},
	})
	test.That(t, err, test.ShouldBeNil)

	payload, err := codec.EncodePayload(header, uint32(mask), []codec.Dimension{
		{Name: "X", Values: codec.NewValues(schema.Float64, []float64{10, 12})},
		{Name: "Y", Values: codec.NewValues(schema.Float64, []float64{40, 41})},
		{Name: "Z", Values: codec.NewValues(schema.Float64, []float64{100, 200})},
	})
	test.That(t, err, test.ShouldBeNil)

	fetcher := transport.NewMemoryFetcher(nil)
	fetcher.PutTile(address, payload)

	converter := ellipsoid_coordinate_converter.NewEllipsoidCoordinateConverter()
	tl := tile.New(address, &tile.Config{
		Header:      header,
		Fetcher:     fetcher,
		ToCartesian: converters.NewCartesianFunc(converter, nil),
		Visible:     visible,
	})
	test.That(t, tl.Load(context.Background()), test.ShouldBeTrue)
	test.That(t, tl.Wait(context.Background()), test.ShouldBeNil)
	return tl
}

func runExport(t *testing.T, basePath string, tiles []*tile.Tile, walkErr error) (*StandardProducer, []error) {
	t.Helper()
	work := make(chan *WorkUnit, 2)
	errchan := make(chan error, len(tiles))
	var wg sync.WaitGroup

	producer := NewStandardProducer(basePath, stream.DefaultStreamOptions())
	wg.Add(1)
	go producer.Produce(work, &wg, func(visit func(*tile.Tile) error) error {
		for _, tl := range tiles {
			if err := visit(tl); err != nil {
				return err
			}
		}
		return walkErr
	})

	consumer := NewStandardConsumer(ellipsoid_coordinate_converter.NewEllipsoidCoordinateConverter(), quadtree.NewGeographicTilingScheme())
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go consumer.Consume(work, errchan, &wg)
	}
	wg.Wait()
	close(errchan)

	var errs []error
	for err := range errchan {
		errs = append(errs, err)
	}
	return producer, errs
}

func readTileJson(t *testing.T, file string) TileJson {
	t.Helper()
	data, err := os.ReadFile(file)
	test.That(t, err, test.ShouldBeNil)
	var tileJson TileJson
	test.That(t, json.Unmarshal(data, &tileJson), test.ShouldBeNil)
	return tileJson
}

func TestExportWritesTileFiles(t *testing.T) {
	basePath := t.TempDir()
	root := quadtree.NewAddress(0, 1, 0)
	tiles := []*tile.Tile{
		decodedTile(t, root, quadtree.ChildMask(0).With(quadtree.SW), true),
		decodedTile(t, root.Child(quadtree.SW), 0, false),
	}

	producer, errs := runExport(t, basePath, tiles, nil)
	test.That(t, errs, test.ShouldBeEmpty)
	test.That(t, producer.Err(), test.ShouldBeNil)
	test.That(t, producer.Produced(), test.ShouldResemble, []string{"0/1/0", "1/2/1"})

	rootJson := readTileJson(t, filepath.Join(basePath, "0", "1", "0", TileJsonFileName))
	test.That(t, rootJson.Address, test.ShouldEqual, "0/1/0")
	test.That(t, rootJson.NumPoints, test.ShouldEqual, 2)
	test.That(t, rootJson.Children, test.ShouldResemble, []string{"1/2/1"})
	test.That(t, rootJson.Content.Url, test.ShouldEqual, ContentFileName)
	test.That(t, rootJson.RtcCenter, test.ShouldHaveLength, 3)
	test.That(t, rootJson.BoundingVolume.Region[4], test.ShouldEqual, 100.0)
	test.That(t, rootJson.BoundingVolume.Region[5], test.ShouldEqual, 200.0)
	test.That(t, rootJson.GeometricError, test.ShouldAlmostEqual, quadtree.NewGeographicTilingScheme().LevelMaximumGeometricError(0), 1e-9)
	_, err := os.Stat(filepath.Join(basePath, "0", "1", "0", ContentFileName))
	test.That(t, err, test.ShouldBeNil)

	// without visibility there is no content, only the description
	childJson := readTileJson(t, filepath.Join(basePath, "1", "2", "1", TileJsonFileName))
	test.That(t, childJson.Content, test.ShouldBeNil)
	test.That(t, childJson.Children, test.ShouldBeEmpty)
	_, err = os.Stat(filepath.Join(basePath, "1", "2", "1", ContentFileName))
	test.That(t, os.IsNotExist(err), test.ShouldBeTrue)

	test.That(t, WriteIndexFile(basePath, &Index{Roots: []string{"0/1/0"}, Tiles: producer.Produced()}), test.ShouldBeNil)
	data, err := os.ReadFile(filepath.Join(basePath, IndexFileName))
	test.That(t, err, test.ShouldBeNil)
	var index Index
	test.That(t, json.Unmarshal(data, &index), test.ShouldBeNil)
	test.That(t, index.Asset.Version, test.ShouldEqual, "1.0")
	test.That(t, index.Tiles, test.ShouldHaveLength, 2)
}

func TestExportReportsErrors(t *testing.T) {
	// a file where the tile folder should be
	basePath := t.TempDir()
	test.That(t, os.WriteFile(filepath.Join(basePath, "0"), []byte{}, 0o644), test.ShouldBeNil)

	walkErr := errors.New("tile 0/0/0 failed")
	producer, errs := runExport(t, basePath, []*tile.Tile{decodedTile(t, quadtree.NewAddress(0, 1, 0), 0, false)}, walkErr)
	test.That(t, errs, test.ShouldHaveLength, 1)
	test.That(t, producer.Err(), test.ShouldEqual, walkErr)
}

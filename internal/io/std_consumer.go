package io

import (
	"encoding/json"
	"os"
	"path"
	"sync"

	"github.com/ecopia-map/cesium_stream/internal/converters"
	"github.com/ecopia-map/cesium_stream/internal/ply"
	"github.com/ecopia-map/cesium_stream/internal/quadtree"
	"github.com/ecopia-map/cesium_stream/tools"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

const (
	ContentFileName  = "content.ply"
	TileJsonFileName = "tile.json"
	IndexFileName    = "index.json"
)

type StandardConsumer struct {
	coordinateConverter converters.CoordinateConverter
	scheme              *quadtree.TilingScheme
}

func NewStandardConsumer(coordinateConverter converters.CoordinateConverter, scheme *quadtree.TilingScheme) *StandardConsumer {
	return &StandardConsumer{
		coordinateConverter: coordinateConverter,
		scheme:              scheme,
	}
}

// Continually consumes WorkUnits submitted to a work channel producing the corresponding content.ply and tile.json
// files. Errors are submitted to the error channel and do not stop the consumer, so the producer is never left
// blocked on a full channel.
func (c *StandardConsumer) Consume(workchan chan *WorkUnit, errchan chan error, waitGroup *sync.WaitGroup) {
	defer waitGroup.Done()

	for work := range workchan {
		if err := c.doWork(work); err != nil {
			glog.Errorf("export of tile %s failed: %v", work.Address, err)
			errchan <- errors.WithMessagef(err, "tile %s", work.Address)
		}
	}
}

// Takes a workunit and writes the corresponding content.ply and tile.json files
func (c *StandardConsumer) doWork(workUnit *WorkUnit) error {
	if err := tools.CreateDirectoryIfDoesNotExist(workUnit.BasePath); err != nil {
		return err
	}

	var center []float64
	if workUnit.Buffer != nil {
		rtc := ply.Center(workUnit.Buffer.Positions)
		verts := ply.FromRenderBuffer(workUnit.Buffer.Positions, workUnit.Buffer.RGBA, rtc)
		if err := ply.WritePlyFile(path.Join(workUnit.BasePath, ContentFileName), verts); err != nil {
			return err
		}
		center = rtc[:]
	}

	return c.writeTileJsonFile(workUnit, center)
}

func (c *StandardConsumer) writeTileJsonFile(workUnit *WorkUnit, center []float64) error {
	tileJson, err := c.generateTileJson(workUnit, center)
	if err != nil {
		return err
	}

	jsonData, err := json.MarshalIndent(tileJson, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(path.Join(workUnit.BasePath, TileJsonFileName), jsonData, 0666)
}

func (c *StandardConsumer) generateTileJson(workUnit *WorkUnit, center []float64) (*TileJson, error) {
	address := workUnit.Address
	tileJson := &TileJson{
		Address:        address.Path(),
		NumPoints:      workUnit.NumPoints,
		GeometricError: c.scheme.LevelMaximumGeometricError(address.Level),
		TileRegion:     c.scheme.TileRectangle(address).GetAsArray(),
		RtcCenter:      center,
	}

	if workUnit.Bounds != nil {
		reg, err := c.coordinateConverter.Convert2DBoundingboxToWGS84Region(workUnit.Bounds, converters.SridWGS84Geographic)
		if err != nil {
			return nil, err
		}
		tileJson.BoundingVolume = &BoundingVolume{
			Region: []float64{reg.Xmin, reg.Ymin, reg.Xmax, reg.Ymax, reg.Zmin, reg.Zmax},
		}
	}
	if center != nil {
		tileJson.Content = &Content{Url: ContentFileName}
	}

	for _, q := range quadtree.Quadrants {
		if workUnit.ChildMask.Has(q) {
			tileJson.Children = append(tileJson.Children, address.Child(q).Path())
		}
	}
	return tileJson, nil
}

// WriteIndexFile writes the top level index.json of an export folder
func WriteIndexFile(basePath string, index *Index) error {
	if err := tools.CreateDirectoryIfDoesNotExist(basePath); err != nil {
		return err
	}
	if index.Asset.Version == "" {
		index.Asset.Version = "1.0"
	}
	jsonData, err := json.MarshalIndent(index, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(path.Join(basePath, IndexFileName), jsonData, 0666)
}

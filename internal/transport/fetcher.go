package transport

import (
	"context"

	"github.com/ecopia-map/cesium_stream/internal/quadtree"
	"github.com/pkg/errors"
)

// Every network or io fault of a fetcher wraps this error
var ErrTransportFailure = errors.New("transport failure")

// A Fetcher retrieves the raw bytes of a point cloud source: its json header and its tiles
type Fetcher interface {
	FetchHeader(ctx context.Context) ([]byte, error)
	FetchTile(ctx context.Context, address quadtree.Address) ([]byte, error)
}

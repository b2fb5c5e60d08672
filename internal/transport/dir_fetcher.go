package transport

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ecopia-map/cesium_stream/internal/quadtree"
	"github.com/pkg/errors"
)

const HeaderFileName = "header.json"

// Reads a local mirror of a source: <root>/header.json and <root>/<level>/<x>/<y>
type DirFetcher struct {
	Root string
}

func NewDirFetcher(root string) *DirFetcher {
	return &DirFetcher{Root: root}
}

func (f *DirFetcher) FetchHeader(ctx context.Context) ([]byte, error) {
	return f.read(ctx, filepath.Join(f.Root, HeaderFileName))
}

func (f *DirFetcher) FetchTile(ctx context.Context, address quadtree.Address) ([]byte, error) {
	return f.read(ctx, f.TilePath(address))
}

func (f *DirFetcher) TilePath(address quadtree.Address) string {
	return filepath.Join(
		f.Root,
		strconv.FormatUint(uint64(address.Level), 10),
		strconv.FormatUint(uint64(address.X), 10),
		strconv.FormatUint(uint64(address.Y), 10),
	)
}

func (f *DirFetcher) read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrapf(ErrTransportFailure, "read %s: %v", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrTransportFailure, "read %s: %v", path, err)
	}
	return data, nil
}

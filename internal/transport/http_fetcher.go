package transport

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ecopia-map/cesium_stream/internal/quadtree"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

const DefaultTimeout = 30 * time.Second

// Fetches a source served over http. The header lives at the source url, every tile at
// <source-url>/<level>/<x>/<y>.
type HTTPFetcher struct {
	SourceURL string
	Client    *http.Client
}

func NewHTTPFetcher(sourceURL string, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &HTTPFetcher{
		SourceURL: strings.TrimRight(sourceURL, "/"),
		Client:    client,
	}
}

func (f *HTTPFetcher) FetchHeader(ctx context.Context) ([]byte, error) {
	return f.get(ctx, f.SourceURL)
}

func (f *HTTPFetcher) FetchTile(ctx context.Context, address quadtree.Address) ([]byte, error) {
	return f.get(ctx, f.TileURL(address))
}

func (f *HTTPFetcher) TileURL(address quadtree.Address) string {
	return f.SourceURL + "/" + address.Path()
}

func (f *HTTPFetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(ErrTransportFailure, "build request %s: %v", url, err)
	}

	glog.V(2).Infof("GET %s", url)
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(ErrTransportFailure, "GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(ErrTransportFailure, "GET %s: status %s", url, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(ErrTransportFailure, "read body of %s: %v", url, err)
	}
	return data, nil
}

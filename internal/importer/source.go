package importer

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	gzip "github.com/klauspost/pgzip"
	"github.com/sethgrid/pester"
)

// Default download settings.
const (
	DefaultMaxRetries = 3
	DefaultTimeout    = 60 * time.Second
)

// NewHTTPClient returns a retrying HTTP client for remote dumps.
func NewHTTPClient(maxRetries int, timeout time.Duration) *pester.Client {
	client := pester.New()
	client.Backoff = pester.ExponentialBackoff
	client.MaxRetries = maxRetries
	client.RetryOnHTTP429 = true
	client.Timeout = timeout
	return client
}

// IsURL reports whether the location is an http(s) URL.
func IsURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Open opens a local file or URL for reading. Locations ending in .gz or
// .zst are decompressed transparently. A nil client uses NewHTTPClient
// defaults.
func Open(location string, client *pester.Client) (io.ReadCloser, error) {
	var raw io.ReadCloser
	if IsURL(location) {
		if client == nil {
			client = NewHTTPClient(DefaultMaxRetries, DefaultTimeout)
		}
		resp, err := client.Get(location)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", location, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetching %s: unexpected status %s", location, resp.Status)
		}
		raw = resp.Body
	} else {
		f, err := os.Open(location)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", location, err)
		}
		raw = f
	}

	name := location
	if i := strings.IndexAny(name, "?#"); i >= 0 && IsURL(name) {
		name = name[:i]
	}

	switch {
	case strings.HasSuffix(name, ".gz"):
		zr, err := gzip.NewReader(raw)
		if err != nil {
			raw.Close()
			return nil, fmt.Errorf("opening gzip stream %s: %w", location, err)
		}
		return &stackedReader{Reader: zr, closers: []func() error{zr.Close, raw.Close}}, nil
	case strings.HasSuffix(name, ".zst"):
		zr, err := zstd.NewReader(raw)
		if err != nil {
			raw.Close()
			return nil, fmt.Errorf("opening zstd stream %s: %w", location, err)
		}
		return &stackedReader{Reader: zr, closers: []func() error{
			func() error { zr.Close(); return nil },
			raw.Close,
		}}, nil
	default:
		return raw, nil
	}
}

// stackedReader closes a decompressor and its underlying stream.
type stackedReader struct {
	io.Reader
	closers []func() error
}

func (s *stackedReader) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cnaize/blgen/src/types"
)

const (
	DefaultTimeout = time.Minute
	DefaultWorkers = 4
	// 32 MiB safety cap per source
	MaxSourceSize = 32 << 20
)

type Result struct {
	Source   string
	Data     []byte
	Err      error
	Duration time.Duration
}

func (r Result) Ok() bool {
	return r.Err == nil
}

type Fetcher struct {
	client  *http.Client
	timeout time.Duration
	workers int
}

func NewFetcher(client *http.Client, timeout time.Duration, workers int) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if workers < 1 {
		workers = DefaultWorkers
	}

	return &Fetcher{
		client:  client,
		timeout: timeout,
		workers: workers,
	}
}

// FetchAll fetches every source with a bounded number of concurrent workers.
// A failed source never fails the others; results keep the order of sources.
func (f *Fetcher) FetchAll(ctx context.Context, sources []string) []Result {
	results := make([]Result, len(sources))

	var g errgroup.Group
	g.SetLimit(f.workers)
	for i, source := range sources {
		g.Go(func() error {
			start := time.Now()
			data, err := f.Fetch(ctx, source)
			results[i] = Result{
				Source:   source,
				Data:     data,
				Err:      err,
				Duration: time.Since(start),
			}

			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Fetch reads a source: an http(s) URL, a file:// URL or a local path.
// Every failure wraps types.ErrSourceUnavailable.
func (f *Fetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	var (
		data []byte
		err  error
	)
	switch {
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		data, err = f.fetchURL(ctx, source)
	default:
		data, err = f.fetchFile(ctx, strings.TrimPrefix(source, "file://"))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", source, types.ErrSourceUnavailable, err)
	}

	return data, nil
}

func (f *Fetcher) fetchURL(ctx context.Context, url string) ([]byte, error) {
	// create request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	// do request
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	return readAll(resp.Body)
}

func (f *Fetcher) fetchFile(ctx context.Context, path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer file.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return readAll(file)
}

func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSourceSize+1))
	if err != nil {
		return nil, fmt.Errorf("read all: %w", err)
	}
	if len(data) > MaxSourceSize {
		return nil, fmt.Errorf("too large: over %d bytes", MaxSourceSize)
	}

	return data, nil
}

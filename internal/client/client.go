package client

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"nflstats/ingestion/internal/feed"
	"nflstats/ingestion/internal/metrics"
)

const userAgent = "nflstats-ingestion/1.0"

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Options configures a feed Client
type Options struct {
	Timeout     time.Duration
	MaxRetries  int
	RetryDelay  time.Duration
	Parallel    int    // concurrent downloads
	DownloadDir string // temp directory for downloads; empty uses the OS default
}

// Client downloads published stat feeds
type Client struct {
	httpClient  *http.Client
	limiter     *semaphore.Weighted
	maxRetries  int
	retryDelay  time.Duration
	downloadDir string
}

// NewClient creates a feed client
func NewClient(opts Options) *Client {
	if opts.Parallel < 1 {
		opts.Parallel = 4
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}

	return &Client{
		limiter:     semaphore.NewWeighted(int64(opts.Parallel)),
		maxRetries:  opts.MaxRetries,
		retryDelay:  opts.RetryDelay,
		downloadDir: opts.DownloadDir,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Rows downloads url and parses it into header-keyed rows. The temp file is
// removed before returning.
func (c *Client) Rows(ctx context.Context, url string) ([]feed.Raw, error) {
	path, err := c.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)

	return ReadCSV(path)
}

// Fetch downloads url to a temp file and returns its path. Gzip and zstd
// payloads are detected by magic bytes and decompressed on the way to disk.
// The caller owns the file.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	if err := c.limiter.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer c.limiter.Release(1)

	start := time.Now()
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("url", url).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying feed download after backoff")

			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		path, n, retry, err := c.download(ctx, url)
		if err == nil {
			metrics.RecordFetch("success", time.Since(start).Seconds(), n)
			log.Debug().
				Str("url", url).
				Str("path", path).
				Int64("bytes", n).
				Msg("Feed downloaded")
			return path, nil
		}

		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}
		log.Warn().
			Err(err).
			Str("url", url).
			Int("attempt", attempt+1).
			Msg("Feed download failed, will retry")
	}

	metrics.RecordFetch("error", time.Since(start).Seconds(), 0)
	return "", lastErr
}

// download performs one attempt. retry reports whether the failure is transient.
func (c *Client) download(ctx context.Context, url string) (path string, n int64, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/csv, application/gzip, */*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, true, fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return "", 0, true, fmt.Errorf("feed returned retryable status %d", resp.StatusCode)
	default:
		return "", 0, false, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	f, err := os.CreateTemp(c.downloadDir, "feed-*.csv")
	if err != nil {
		return "", 0, false, fmt.Errorf("failed to create download file: %w", err)
	}

	counted := &countingReader{r: resp.Body}
	body, err := decompress(counted)
	if err == nil {
		_, err = io.Copy(f, body)
		if cerr := body.Close(); err == nil {
			err = cerr
		}
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(f.Name())
		return "", 0, true, fmt.Errorf("failed to write feed %s: %w", url, err)
	}

	return f.Name(), counted.n, false, nil
}

// decompress wraps r according to its leading magic bytes
func decompress(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4)
	if err != nil && err != io.EOF {
		return nil, err
	}

	switch {
	case bytes.HasPrefix(head, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		return zr, nil
	case bytes.HasPrefix(head, zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to open zstd stream: %w", err)
		}
		return zr.IOReadCloser(), nil
	default:
		return io.NopCloser(br), nil
	}
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

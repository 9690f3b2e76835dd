// Package fetch downloads source datasets: MassGIS parcel shapefile
// archives and the MBTA GTFS feed. Downloads are rate limited per host,
// retried with jittered exponential backoff, and skipped when the
// server's ETag matches a previous run.
package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/masslots/parcelviz/internal/resilience"
)

// Well-known dataset sources.
const (
	MassGISHost = "download.massgis.digital.mass.gov"
	MBTAHost    = "cdn.mbta.com"

	// MBTAGTFSURL is the current MBTA GTFS bundle.
	MBTAGTFSURL = "https://cdn.mbta.com/MBTA_GTFS.zip"
)

// Options configures the downloader.
type Options struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	Limiters   map[string]*rate.Limiter
}

// Client downloads remote datasets over HTTP with per-host rate limiting
// and retry.
type Client struct {
	http     *http.Client
	opts     Options
	retry    resilience.RetryConfig
	limiters map[string]*rate.Limiter
}

// defaultLimiters keeps the public data hosts comfortably under their
// published request limits.
func defaultLimiters() map[string]*rate.Limiter {
	return map[string]*rate.Limiter{
		MassGISHost: rate.NewLimiter(5, 5),
		MBTAHost:    rate.NewLimiter(5, 5),
	}
}

// NewClient creates a downloader with the given options.
func NewClient(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Minute
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "parcelviz/1.0"
	}
	limiters := defaultLimiters()
	for k, v := range opts.Limiters {
		limiters[k] = v
	}

	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = opts.MaxRetries
	retry.InitialBackoff = time.Second
	retry.OnRetry = resilience.RetryLogger("fetch", "download")

	transport := &http.Transport{
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Client{
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		opts:     opts,
		retry:    retry,
		limiters: limiters,
	}
}

func (c *Client) limiterFor(rawURL string) *rate.Limiter {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rate.NewLimiter(5, 5)
	}
	if lim, ok := c.limiters[u.Host]; ok {
		return lim
	}
	return rate.NewLimiter(10, 10)
}

// doWithRetry issues the request, retrying transient failures: network
// errors and retryable HTTP statuses (429, 5xx).
func (c *Client) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	lim := c.limiterFor(req.URL.String())

	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*http.Response, error) {
		if err := lim.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "fetch: rate limiter wait")
		}

		resp, err := c.http.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			_ = resp.Body.Close()
			return nil, resilience.NewTransientError(
				eris.Errorf("fetch: http %d from %s", resp.StatusCode, req.URL.String()),
				resp.StatusCode,
			)
		}
		return resp, nil
	})
}

// Download fetches the URL and returns the response body.
func (c *Client) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetch: create request")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: download %s", rawURL)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, eris.Errorf("fetch: unexpected status %d from %s", resp.StatusCode, rawURL)
	}
	return resp.Body, nil
}

// DownloadToFile fetches the URL and writes it to path, returning the
// number of bytes written.
func (c *Client) DownloadToFile(ctx context.Context, rawURL, path string) (int64, error) {
	body, err := c.Download(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	defer body.Close() //nolint:errcheck

	file, err := os.Create(path)
	if err != nil {
		return 0, eris.Wrapf(err, "fetch: create %s", path)
	}
	defer file.Close() //nolint:errcheck

	n, err := io.Copy(file, body)
	if err != nil {
		return n, eris.Wrapf(err, "fetch: write %s", path)
	}

	zap.L().Info("fetch: downloaded",
		zap.String("url", rawURL),
		zap.String("path", path),
		zap.Int64("bytes", n),
	)
	return n, nil
}

// DownloadIfChanged fetches the URL only when the server's ETag differs
// from the one recorded on a previous run. Returns (body, newETag,
// changed, error); when unchanged, body is nil.
func (c *Client) DownloadIfChanged(ctx context.Context, rawURL, etag string) (io.ReadCloser, string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", false, eris.Wrap(err, "fetch: create request")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return nil, "", false, eris.Wrapf(err, "fetch: conditional download %s", rawURL)
	}

	if resp.StatusCode == http.StatusNotModified {
		_ = resp.Body.Close()
		return nil, etag, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, "", false, eris.Errorf("fetch: unexpected status %d from %s", resp.StatusCode, rawURL)
	}
	return resp.Body, resp.Header.Get("ETag"), true, nil
}

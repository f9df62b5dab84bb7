package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/concordia247/drafts/internal/cache"
	"github.com/concordia247/drafts/internal/ratelimit"
	"github.com/concordia247/drafts/internal/retry"
)

const maxBodyBytes = 8 << 20

// DefaultUserAgent identifies the bot to news sites.
const DefaultUserAgent = "Mozilla/5.0 (compatible; Concordia247Bot/1.0; +https://concordia247.com.ar)"

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.Code)
}

type FetcherConfig struct {
	UserAgent string
	Timeout   time.Duration
	Retry     retry.RetryConfig
	Limiter   *ratelimit.HostLimiter
	Cache     *cache.Cache
	Client    *http.Client
}

// Fetcher downloads pages. It is shared by the feed reader and the article
// extractor so both obey the same pacing.
type Fetcher struct {
	client    *http.Client
	userAgent string
	retry     retry.RetryConfig
	limiter   *ratelimit.HostLimiter
	cache     *cache.Cache
	log       *slog.Logger
}

func NewFetcher(cfg FetcherConfig, log *slog.Logger) *Fetcher {
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Retry.MaxAttempts < 1 {
		cfg.Retry.MaxAttempts = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &Fetcher{
		client:    client,
		userAgent: cfg.UserAgent,
		retry:     cfg.Retry,
		limiter:   cfg.Limiter,
		cache:     cfg.Cache,
		log:       log,
	}
}

// Fetch returns the body of url. Client errors (4xx) are not retried.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if body, ok := f.cache.Get(url); ok {
		f.log.Debug("page cache hit", "url", url)
		return body, nil
	}

	var body []byte
	err := retry.WithRetry(ctx, f.retry, func() error {
		b, err := f.fetchOnce(ctx, url)
		if err != nil {
			f.log.Debug("fetch attempt failed", "url", url, "error", err)
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	f.cache.Set(url, body)
	return body, nil
}

// ResetCache forgets every cached body, so the next fetch of a feed or page
// goes to the network.
func (f *Fetcher) ResetCache() {
	f.cache.Clear()
}

// Stats reports host pacing and page cache occupancy.
func (f *Fetcher) Stats() map[string]interface{} {
	return map[string]interface{}{
		"rate_limit":         f.limiter.GetStats(),
		"page_cache_entries": f.cache.Len(),
	}
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx, url); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept-Language", "es-AR,es;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := &StatusError{URL: url, Code: resp.StatusCode}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, retry.Permanent(serr)
		}
		return nil, serr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body %s: %w", url, err)
	}
	return body, nil
}

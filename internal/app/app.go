// Package app wires the feed reader, extractor, policy, summarizer and post
// builder into the run, refresh and touch operations.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/concordia247/drafts/internal/cache"
	"github.com/concordia247/drafts/internal/config"
	"github.com/concordia247/drafts/internal/logger"
	"github.com/concordia247/drafts/internal/metrics"
	"github.com/concordia247/drafts/internal/policy"
	"github.com/concordia247/drafts/internal/post"
	"github.com/concordia247/drafts/internal/ratelimit"
	"github.com/concordia247/drafts/internal/retry"
	"github.com/concordia247/drafts/internal/rss"
	"github.com/concordia247/drafts/internal/scraper"
	"github.com/concordia247/drafts/internal/storage"
	"github.com/concordia247/drafts/internal/telegram"
)

// TouchLayout is the stamp written by Touch.
const TouchLayout = "2006-01-02 15:04 UTC"

// App holds the components built from one configuration.
type App struct {
	cfg       *config.Config
	loc       *time.Location
	fetcher   *scraper.Fetcher
	extractor *scraper.Extractor
	builder   post.Builder
	drafts    *storage.DraftDir
	reviews   *storage.ReviewLog
	log       *slog.Logger
}

func New(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.For("app")

	fetcher := scraper.NewFetcher(scraper.FetcherConfig{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.RequestTimeout,
		Retry: retry.RetryConfig{
			MaxAttempts: cfg.RetryAttempts,
			Delay:       cfg.RetryDelay,
			Backoff:     true,
		},
		Limiter: ratelimit.NewHostLimiter(cfg.RequestInterval),
		Cache:   cache.New(cfg.PageCacheTTL),
	}, logger.For("fetcher"))

	return &App{
		cfg:       cfg,
		loc:       cfg.Location(),
		fetcher:   fetcher,
		extractor: scraper.NewExtractor(cfg.Readability, logger.For("extractor")),
		builder:   post.NewBuilder(cfg.Layout, cfg.Author),
		drafts:    storage.NewDraftDir(cfg.PostsDir),
		reviews:   storage.NewReviewLog(cfg.ReviewLog),
		log:       log,
	}, nil
}

// Run executes one pipeline run against the configured seen store. Pages
// cached by an earlier run are dropped first.
func (a *App) Run(ctx context.Context) (Result, error) {
	a.fetcher.ResetCache()

	sources, err := rss.LoadSources(a.cfg.SourcesPath)
	if err != nil {
		return Result{}, err
	}
	rules, err := policy.LoadRules(a.cfg.PolicyPath)
	if err != nil {
		return Result{}, err
	}

	seen, err := storage.Open(ctx, a.cfg.SeenOptions(), logger.For("storage"))
	if err != nil {
		return Result{}, fmt.Errorf("open seen store: %w", err)
	}
	defer func() {
		if err := seen.Close(); err != nil {
			a.log.Warn("close seen store", "error", err)
		}
	}()

	reader := rss.NewReader(a.fetcher, rss.ReaderConfig{Freshness: a.cfg.Freshness}, logger.For("rss"))
	pipeline := NewPipeline(a.fetcher, a.extractor, policy.NewFilter(rules), a.builder, a.drafts, PipelineConfig{
		MaxPosts: a.cfg.MaxPosts,
		Quotas:   a.cfg.Quotas,
		Location: a.loc,
	}, logger.For("pipeline"))

	runner := &Runner{
		Sources:  sources,
		Reader:   reader,
		Pipeline: pipeline,
		Seen:     seen,
		Reviews:  a.reviews,
		Metrics:  metrics.Global,
		Location: a.loc,
		Log:      logger.For("runner"),
	}
	if n := telegram.New(a.cfg.TelegramToken, a.cfg.TelegramChatID, a.cfg.TelegramAPI, logger.For("telegram")); n != nil {
		runner.Notifier = n
	}
	return runner.Run(ctx)
}

// Refresh re-renders the drafts of one date.
func (a *App) Refresh(ctx context.Context, date string) (RefreshResult, error) {
	r := &Refresher{
		Drafts:    a.drafts,
		Fetcher:   a.fetcher,
		Extractor: a.extractor,
		Builder:   a.builder,
		Log:       logger.For("refresh"),
	}
	return r.Refresh(ctx, date)
}

// Touch stamps the review log with the current UTC time.
func (a *App) Touch() error {
	return a.reviews.Touch(time.Now().UTC().Format(TouchLayout))
}

// FetchStats exposes the shared fetcher's pacing and cache counters.
func (a *App) FetchStats() interface{} {
	return a.fetcher.Stats()
}

// ReviewLogPath is the file Touch updates.
func (a *App) ReviewLogPath() string {
	return a.cfg.ReviewLog
}

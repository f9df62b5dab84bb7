package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/concordia247/drafts/internal/metrics"
	"github.com/concordia247/drafts/internal/news"
	"github.com/concordia247/drafts/internal/storage"
)

// StampLayout formats review section headings.
const StampLayout = "2006-01-02 15:04 MST"

type Collector interface {
	Collect(ctx context.Context, sources []news.Source) []news.Item
}

type ReviewAppender interface {
	Append(stamp string, entries []news.Review) error
}

type ReviewNotifier interface {
	NotifyReviews(ctx context.Context, stamp string, entries []news.Review) error
}

// Runner performs one full run: load seen, collect, process, persist.
type Runner struct {
	Sources  []news.Source
	Reader   Collector
	Pipeline *Pipeline
	Seen     storage.SeenStore
	Reviews  ReviewAppender
	Notifier ReviewNotifier
	Metrics  *metrics.Metrics
	Location *time.Location
	Log      *slog.Logger

	now func() time.Time
}

type Result struct {
	RunID  string
	New    int
	Review int
	Seen   int
}

// String is the one-line run summary printed on exit.
func (r Result) String() string {
	return fmt.Sprintf("new=%d review=%d seen=%d", r.New, r.Review, r.Seen)
}

func (r *Runner) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	nowFn := r.now
	if nowFn == nil {
		nowFn = time.Now
	}
	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}
	log := r.Log
	if log == nil {
		log = slog.Default()
	}

	res := Result{RunID: uuid.NewString()}
	log = log.With("run_id", res.RunID)

	seen, err := r.Seen.Load(ctx)
	if err != nil {
		return res, r.fail(fmt.Errorf("load seen: %w", err))
	}
	log.Info("run started", "sources", len(r.Sources), "seen", seen.Len())

	candidates := r.Reader.Collect(ctx, r.Sources)
	out, procErr := r.Pipeline.Process(ctx, candidates, seen)
	if procErr != nil {
		log.Error("processing stopped", "error", procErr)
	}

	// Persist whatever was handled, even after a processing error.
	if err := r.Seen.Save(ctx, out.Seen); err != nil {
		return res, r.fail(fmt.Errorf("save seen: %w", err))
	}

	stamp := nowFn().In(loc).Format(StampLayout)
	if err := r.Reviews.Append(stamp, out.Reviews); err != nil {
		return res, r.fail(fmt.Errorf("append review log: %w", err))
	}
	if r.Notifier != nil {
		if err := r.Notifier.NotifyReviews(ctx, stamp, out.Reviews); err != nil {
			log.Warn("review notification failed", "error", err)
		}
	}

	res.New = len(out.Drafts)
	res.Review = len(out.Reviews)
	res.Seen = out.Seen.Len()

	if r.Metrics != nil {
		r.Metrics.RecordRun(metrics.RunStats{
			RunID:          res.RunID,
			Candidates:     out.Candidates,
			New:            res.New,
			Reviews:        res.Review,
			SeenSkipped:    out.SeenSkipped,
			FetchFailures:  out.FetchFailures,
			QuotaDeferred:  out.QuotaDeferred,
			OffTopic:       out.OffTopic,
			ExistingDrafts: out.ExistingDrafts,
			SeenTotal:      res.Seen,
			Duration:       time.Since(start),
		})
	}

	log.Info("run finished",
		"candidates", out.Candidates,
		"new", res.New,
		"review", res.Review,
		"seen", res.Seen,
		"fetch_failures", out.FetchFailures,
		"quota_deferred", out.QuotaDeferred,
		"duration", time.Since(start).Round(time.Millisecond))

	if procErr != nil {
		return res, r.fail(procErr)
	}
	return res, nil
}

func (r *Runner) fail(err error) error {
	if r.Metrics != nil {
		r.Metrics.SetError(err.Error())
	}
	return err
}

package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/concordia247/drafts/internal/post"
	"github.com/concordia247/drafts/internal/summary"
)

// DraftStore is a DraftSink that can also enumerate and read drafts.
type DraftStore interface {
	DraftSink
	List(prefix string) ([]string, error)
	Read(name string) (string, error)
}

// Refresher re-renders existing drafts with the current extraction and
// summary rules.
type Refresher struct {
	Drafts    DraftStore
	Fetcher   Fetcher
	Extractor Extractor
	Builder   Builder
	Log       *slog.Logger
}

type RefreshResult struct {
	Changed int
	Total   int
}

func (r RefreshResult) String() string {
	return fmt.Sprintf("refreshed=%d/%d", r.Changed, r.Total)
}

// Refresh rewrites drafts dated date (YYYY-MM-DD) whose recomputed text
// differs from what is on disk. Drafts without a canonical_url, or whose
// page cannot be fetched, are left alone.
func (r *Refresher) Refresh(ctx context.Context, date string) (RefreshResult, error) {
	var res RefreshResult
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return res, fmt.Errorf("invalid date %q: want YYYY-MM-DD", date)
	}
	log := r.Log
	if log == nil {
		log = slog.Default()
	}

	names, err := r.Drafts.List(date + "-")
	if err != nil {
		return res, err
	}
	res.Total = len(names)

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		current, err := r.Drafts.Read(name)
		if err != nil {
			log.Warn("skip unreadable draft", "file", name, "error", err)
			continue
		}
		fm, err := post.ParseFrontMatter(current)
		if err != nil || fm.CanonicalURL == "" {
			log.Debug("skip draft without canonical url", "file", name)
			continue
		}

		html, err := r.Fetcher.Fetch(ctx, fm.CanonicalURL)
		if err != nil {
			log.Warn("refresh fetch failed", "file", name, "url", fm.CanonicalURL, "error", err)
			continue
		}
		content := r.Extractor.Extract(html, fm.CanonicalURL)

		title := firstNonEmpty(content.Title, fm.Title, strings.TrimSuffix(name, ".md"))
		source := firstNonEmpty(fm.Source, post.SourceFallback)
		s := summary.Summarize(content.Description, content.Lead, content.Paragraphs)

		doc, err := r.Builder.Build(title, source, fm.CanonicalURL, s)
		if err != nil {
			return res, fmt.Errorf("build draft %s: %w", name, err)
		}
		if doc == current {
			continue
		}
		if err := r.Drafts.Write(name, doc); err != nil {
			return res, fmt.Errorf("write draft %s: %w", name, err)
		}
		res.Changed++
		log.Info("draft refreshed", "file", name)
	}
	return res, nil
}

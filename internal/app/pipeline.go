package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/concordia247/drafts/internal/news"
	"github.com/concordia247/drafts/internal/post"
	"github.com/concordia247/drafts/internal/scraper"
	"github.com/concordia247/drafts/internal/summary"
)

// DefaultMaxPosts caps drafts written per run.
const DefaultMaxPosts = 5

// DefaultQuotas limits drafts per source type per run.
func DefaultQuotas() map[string]int {
	return map[string]int{news.TypeOfficial: 1}
}

type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type Extractor interface {
	Extract(html []byte, pageURL string) scraper.Content
}

type Policy interface {
	Focus(url, title, description string) bool
	Block(url, title, description string) (reason string, blocked bool)
}

type Builder interface {
	Build(title, source, url string, s summary.Summary) (string, error)
}

// DraftSink is where accepted drafts land.
type DraftSink interface {
	Exists(name string) (bool, error)
	Write(name, content string) error
}

type PipelineConfig struct {
	MaxPosts int
	Quotas   map[string]int
	Location *time.Location
}

// Pipeline evaluates candidates against a seen set. It holds no state
// between calls.
type Pipeline struct {
	fetcher   Fetcher
	extractor Extractor
	policy    Policy
	builder   Builder
	sink      DraftSink
	cfg       PipelineConfig
	now       func() time.Time
	log       *slog.Logger
}

func NewPipeline(f Fetcher, e Extractor, p Policy, b Builder, sink DraftSink, cfg PipelineConfig, log *slog.Logger) *Pipeline {
	if cfg.MaxPosts <= 0 {
		cfg.MaxPosts = DefaultMaxPosts
	}
	if cfg.Quotas == nil {
		cfg.Quotas = DefaultQuotas()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		fetcher:   f,
		extractor: e,
		policy:    p,
		builder:   b,
		sink:      sink,
		cfg:       cfg,
		now:       time.Now,
		log:       log,
	}
}

// Outcome is the result of one pass. Seen is a new set; the input set is
// never modified.
type Outcome struct {
	Seen    news.SeenSet
	Drafts  []string
	Reviews []news.Review

	Candidates     int
	SeenSkipped    int
	FetchFailures  int
	QuotaDeferred  int
	OffTopic       int
	ExistingDrafts int
}

// Process walks candidates newest first until MaxPosts drafts are written.
//
// Items whose page cannot be fetched, or whose source type is over quota,
// stay out of the seen set so a later run retries them. Off-topic, blocked
// and already-written items are marked seen. Only sink errors abort; the
// partial outcome is returned with them.
func (p *Pipeline) Process(ctx context.Context, candidates []news.Item, seen news.SeenSet) (Outcome, error) {
	now := p.now()
	out := Outcome{Seen: seen.Clone(), Candidates: len(candidates)}

	items := make([]news.Item, len(candidates))
	copy(items, candidates)
	news.SortByPublished(items, now)

	visited := make(map[string]bool, len(items))
	perType := make(map[string]int)

	for _, item := range items {
		if len(out.Drafts) >= p.cfg.MaxPosts {
			p.log.Debug("run cap reached", "max_posts", p.cfg.MaxPosts)
			break
		}
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if visited[item.URL] {
			continue
		}
		visited[item.URL] = true

		if out.Seen.Has(item.URL) {
			out.SeenSkipped++
			continue
		}

		html, err := p.fetcher.Fetch(ctx, item.URL)
		if err != nil {
			out.FetchFailures++
			p.log.Warn("article fetch failed", "url", item.URL, "error", err)
			continue
		}
		content := p.extractor.Extract(html, item.URL)

		if quota, ok := p.cfg.Quotas[item.SourceType]; ok && perType[item.SourceType] >= quota {
			out.QuotaDeferred++
			p.log.Debug("source type over quota", "url", item.URL, "type", item.SourceType, "quota", quota)
			continue
		}

		title := firstNonEmpty(content.Title, item.Title, item.URL)
		if !p.policy.Focus(item.URL, title, content.Description) {
			out.OffTopic++
			out.Seen.Add(item.URL)
			p.log.Debug("off topic", "url", item.URL)
			continue
		}

		if reason, blocked := p.policy.Block(item.URL, title, content.Description); blocked {
			out.Reviews = append(out.Reviews, news.Review{Title: title, URL: item.URL, Reason: reason})
			out.Seen.Add(item.URL)
			p.log.Info("held for review", "url", item.URL, "reason", reason)
			continue
		}

		name := post.FileName(item.PublishedOr(now).In(p.cfg.Location), item.URL)
		exists, err := p.sink.Exists(name)
		if err != nil {
			return out, fmt.Errorf("check draft %s: %w", name, err)
		}
		if exists {
			out.ExistingDrafts++
			out.Seen.Add(item.URL)
			p.log.Debug("draft already exists", "url", item.URL, "file", name)
			continue
		}

		s := summary.Summarize(content.Description, content.Lead, content.Paragraphs)
		doc, err := p.builder.Build(title, item.SourceName, item.URL, s)
		if err != nil {
			return out, fmt.Errorf("build draft %s: %w", name, err)
		}
		if err := p.sink.Write(name, doc); err != nil {
			return out, fmt.Errorf("write draft %s: %w", name, err)
		}

		out.Seen.Add(item.URL)
		out.Drafts = append(out.Drafts, name)
		perType[item.SourceType]++
		p.log.Info("draft written", "file", name, "source", item.SourceName)
	}

	return out, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

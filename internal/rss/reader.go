package rss

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/concordia247/drafts/internal/news"
)

// Fetcher downloads a URL body.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

const DefaultFreshness = 12 * time.Hour

// Reader turns configured sources into candidate items.
type Reader struct {
	fetcher     Fetcher
	parser      *gofeed.Parser
	freshness   time.Duration
	maxChildren int
	now         func() time.Time
	log         *slog.Logger
}

type ReaderConfig struct {
	// Freshness drops sitemap entries older than now-Freshness.
	Freshness time.Duration
	// MaxChildSitemaps bounds how many sitemaps of a sitemap index are read.
	MaxChildSitemaps int
}

func NewReader(fetcher Fetcher, cfg ReaderConfig, log *slog.Logger) *Reader {
	if cfg.Freshness <= 0 {
		cfg.Freshness = DefaultFreshness
	}
	if cfg.MaxChildSitemaps <= 0 {
		cfg.MaxChildSitemaps = 3
	}
	if log == nil {
		log = slog.Default()
	}
	return &Reader{
		fetcher:     fetcher,
		parser:      gofeed.NewParser(),
		freshness:   cfg.Freshness,
		maxChildren: cfg.MaxChildSitemaps,
		now:         time.Now,
		log:         log,
	}
}

// Collect reads every source in order. A failing source is logged and
// contributes no items; it never stops the others.
func (r *Reader) Collect(ctx context.Context, sources []news.Source) []news.Item {
	var all []news.Item
	ok := 0
	for _, src := range sources {
		items, err := r.Read(ctx, src)
		if err != nil {
			r.log.Warn("source failed", "source", src.Name, "url", src.URL, "error", err)
			continue
		}
		ok++
		r.log.Info("source loaded", "source", src.Name, "items", len(items))
		all = append(all, items...)
	}
	r.log.Info("sources processed", "ok", ok, "total", len(sources), "items", len(all))
	return all
}

// Read fetches and normalizes one source.
func (r *Reader) Read(ctx context.Context, src news.Source) ([]news.Item, error) {
	data, err := r.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		return nil, err
	}
	switch src.Kind {
	case news.KindSitemap:
		return r.readSitemap(ctx, src, data)
	default:
		return r.parseFeed(src, data)
	}
}

func (r *Reader) parseFeed(src news.Source, data []byte) ([]news.Item, error) {
	feed, err := r.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := make([]news.Item, 0, len(feed.Items))
	for _, it := range feed.Items {
		link := resolveLink(src.URL, entryLink(it))
		if link == "" {
			continue
		}
		published := it.PublishedParsed
		if published == nil {
			published = it.UpdatedParsed
		}
		if published != nil {
			t := published.UTC()
			published = &t
		}
		items = append(items, news.Item{
			SourceName: src.Name,
			SourceType: src.Type,
			URL:        link,
			Title:      news.Collapse(it.Title),
			Published:  published,
		})
	}
	return items, nil
}

func entryLink(it *gofeed.Item) string {
	if l := strings.TrimSpace(it.Link); l != "" {
		return l
	}
	for _, l := range it.Links {
		if l = strings.TrimSpace(l); l != "" {
			return l
		}
	}
	return ""
}

// resolveLink makes link absolute against base; "" when it cannot be an
// http(s) URL.
func resolveLink(base, link string) string {
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	if !u.IsAbs() {
		b, err := url.Parse(base)
		if err != nil {
			return ""
		}
		u = b.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

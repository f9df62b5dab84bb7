package news

import (
	"sort"
	"time"
)

// Feed kinds a source can declare.
const (
	KindRSS     = "rss"
	KindSitemap = "sitemap"
)

// TypeOfficial marks government and institutional sources, which get a
// separate per-run quota.
const TypeOfficial = "official"

// Source describes one configured feed.
type Source struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
	URL  string `yaml:"url"`
	Type string `yaml:"type"`
}

// Item is a single candidate URL discovered from a source.
type Item struct {
	SourceName string
	SourceType string
	URL        string
	Title      string
	Published  *time.Time
}

// PublishedOr returns the item's publish time, or fallback when unknown.
func (i Item) PublishedOr(fallback time.Time) time.Time {
	if i.Published == nil {
		return fallback
	}
	return *i.Published
}

// Review records an item held back for a human to look at.
type Review struct {
	Title  string
	URL    string
	Reason string
}

// SortByPublished orders items newest first. Items without a publish time
// are treated as published at now. Equal times keep their collection order.
func SortByPublished(items []Item, now time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedOr(now).After(items[j].PublishedOr(now))
	})
}

// SeenSet is the set of URLs already handled by some run.
type SeenSet map[string]struct{}

func NewSeenSet(urls ...string) SeenSet {
	s := make(SeenSet, len(urls))
	for _, u := range urls {
		s.Add(u)
	}
	return s
}

func (s SeenSet) Has(url string) bool {
	_, ok := s[url]
	return ok
}

func (s SeenSet) Add(url string) {
	if url == "" {
		return
	}
	s[url] = struct{}{}
}

func (s SeenSet) Len() int { return len(s) }

// Sorted returns the URLs in lexical order.
func (s SeenSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for u := range s {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy.
func (s SeenSet) Clone() SeenSet {
	out := make(SeenSet, len(s))
	for u := range s {
		out[u] = struct{}{}
	}
	return out
}

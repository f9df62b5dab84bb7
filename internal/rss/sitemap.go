package rss

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/concordia247/drafts/internal/news"
)

type sitemapDoc struct {
	XMLName  xml.Name
	URLs     []sitemapURL   `xml:"url"`
	Sitemaps []sitemapChild `xml:"sitemap"`
}

type sitemapURL struct {
	Loc     string      `xml:"loc"`
	LastMod string      `xml:"lastmod"`
	News    sitemapNews `xml:"news"`
}

// sitemapNews holds the Google News extension fields (news:news).
type sitemapNews struct {
	PublicationDate string `xml:"publication_date"`
	Title           string `xml:"title"`
}

type sitemapChild struct {
	Loc string `xml:"loc"`
}

// Accepted W3C datetime forms. Layouts without a zone parse as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseTimestamp parses an ISO-8601 sitemap date. ok is false when no
// layout matches.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func (r *Reader) readSitemap(ctx context.Context, src news.Source, data []byte) ([]news.Item, error) {
	doc, err := decodeSitemap(data)
	if err != nil {
		return nil, err
	}

	if doc.XMLName.Local == "sitemapindex" {
		return r.readIndex(ctx, src, doc)
	}
	return r.sitemapItems(src, doc), nil
}

// readIndex follows the first few child sitemaps of an index. Child
// failures are logged and skipped.
func (r *Reader) readIndex(ctx context.Context, src news.Source, doc sitemapDoc) ([]news.Item, error) {
	var items []news.Item
	followed := 0
	for _, child := range doc.Sitemaps {
		if followed == r.maxChildren {
			break
		}
		loc := resolveLink(src.URL, strings.TrimSpace(child.Loc))
		if loc == "" {
			continue
		}
		followed++

		data, err := r.fetcher.Fetch(ctx, loc)
		if err != nil {
			r.log.Warn("child sitemap failed", "source", src.Name, "url", loc, "error", err)
			continue
		}
		childDoc, err := decodeSitemap(data)
		if err != nil {
			r.log.Warn("child sitemap failed", "source", src.Name, "url", loc, "error", err)
			continue
		}
		items = append(items, r.sitemapItems(src, childDoc)...)
	}
	return items, nil
}

func decodeSitemap(data []byte) (sitemapDoc, error) {
	var doc sitemapDoc
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	if err := dec.Decode(&doc); err != nil {
		return doc, fmt.Errorf("parse sitemap: %w", err)
	}
	return doc, nil
}

func (r *Reader) sitemapItems(src news.Source, doc sitemapDoc) []news.Item {
	cutoff := r.now().Add(-r.freshness)

	items := make([]news.Item, 0, len(doc.URLs))
	for _, u := range doc.URLs {
		loc := resolveLink(src.URL, strings.TrimSpace(u.Loc))
		if loc == "" {
			continue
		}

		stamp := u.LastMod
		if strings.TrimSpace(stamp) == "" {
			stamp = u.News.PublicationDate
		}
		var published *time.Time
		if t, ok := ParseTimestamp(stamp); ok {
			if t.Before(cutoff) {
				continue
			}
			published = &t
		}

		items = append(items, news.Item{
			SourceName: src.Name,
			SourceType: src.Type,
			URL:        loc,
			Title:      news.Collapse(u.News.Title),
			Published:  published,
		})
	}
	return items
}

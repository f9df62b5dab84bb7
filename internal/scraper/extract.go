package scraper

import (
	"bytes"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"github.com/concordia247/drafts/internal/news"
)

const (
	minLeadRunes  = 80
	minExtraRunes = 120
	maxExtras     = 10
)

// Content is what the extractor recovers from one article page.
type Content struct {
	Title       string
	Description string
	Lead        string
	Paragraphs  []string
}

// Boilerplate markers, matched case and accent insensitively.
var noiseMarkers = []string{
	// es
	"ver también", "ver tambien", "lo más visto", "lo más leído", "más leídas",
	"suscrib", "iniciar sesión", "registrate",
	"publicidad", "compartir", "compartí", "seguinos",
	// en
	"see also", "most viewed", "most read", "subscribe", "sign in", "log in",
	"advertisement", "share",
	// social
	"facebook", "twitter", "whatsapp", "instagram", "telegram", "tiktok",
}

var foldedNoise = func() []string {
	out := make([]string, len(noiseMarkers))
	for i, m := range noiseMarkers {
		out[i] = news.Fold(m)
	}
	return out
}()

// field resolves one value from a document, or "" when absent.
type field func(doc *goquery.Document) string

type Extractor struct {
	readability bool
	log         *slog.Logger
}

// NewExtractor returns a goquery extractor. With readability enabled, the
// readability article title and excerpt are tried after the metadata chains.
func NewExtractor(useReadability bool, log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{readability: useReadability, log: log}
}

// Extract never fails; malformed or empty HTML yields empty fields.
func (e *Extractor) Extract(html []byte, pageURL string) Content {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		e.log.Debug("html parse failed", "url", pageURL, "error", err)
		return Content{}
	}

	titles := []field{
		meta("og:title"),
		meta("twitter:title"),
		documentTitle,
	}
	descriptions := []field{
		meta("og:description"),
		meta("twitter:description"),
		meta("description"),
	}
	if e.readability {
		ra := e.lazyReadable(html, pageURL)
		titles = append(titles, func(*goquery.Document) string { return ra().Title })
		descriptions = append(descriptions, func(*goquery.Document) string { return ra().Excerpt })
	}

	c := Content{
		Title:       first(doc, titles...),
		Description: first(doc, descriptions...),
	}

	container := primaryContainer(doc)
	container.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := news.Collapse(s.Text())
		if text == "" || isNoise(text) {
			return
		}
		n := news.RuneLen(text)
		if c.Lead == "" && n >= minLeadRunes {
			c.Lead = text
		}
		if n >= minExtraRunes && len(c.Paragraphs) < maxExtras {
			c.Paragraphs = append(c.Paragraphs, text)
		}
	})
	return c
}

type readableArticle struct {
	Title   string
	Excerpt string
}

// lazyReadable defers the readability pass until a chain actually needs it.
func (e *Extractor) lazyReadable(html []byte, pageURL string) func() readableArticle {
	var (
		done bool
		ra   readableArticle
	)
	return func() readableArticle {
		if done {
			return ra
		}
		done = true
		u, err := url.Parse(pageURL)
		if err != nil {
			u = &url.URL{}
		}
		article, err := readability.FromReader(bytes.NewReader(html), u)
		if err != nil {
			e.log.Debug("readability failed", "url", pageURL, "error", err)
			return ra
		}
		ra = readableArticle{Title: article.Title, Excerpt: article.Excerpt}
		return ra
	}
}

func first(doc *goquery.Document, fields ...field) string {
	for _, f := range fields {
		if v := news.Collapse(f(doc)); v != "" {
			return v
		}
	}
	return ""
}

// meta reads the content of a <meta> tag keyed by property or name.
func meta(key string) field {
	return func(doc *goquery.Document) string {
		v, _ := doc.Find(`meta[property="` + key + `"], meta[name="` + key + `"]`).First().Attr("content")
		return v
	}
}

func documentTitle(doc *goquery.Document) string {
	return doc.Find("title").First().Text()
}

// primaryContainer prefers <article>, then <main>, then the whole document.
func primaryContainer(doc *goquery.Document) *goquery.Selection {
	for _, sel := range []string{"article", "main"} {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s
		}
	}
	return doc.Selection
}

func isNoise(text string) bool {
	t := strings.TrimSpace(text)
	if isBareURL(t) {
		return true
	}
	folded := news.Fold(t)
	for _, m := range foldedNoise {
		if strings.Contains(folded, m) {
			return true
		}
	}
	return false
}

func isBareURL(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\n") {
		return false
	}
	l := strings.ToLower(s)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://") || strings.HasPrefix(l, "www.")
}

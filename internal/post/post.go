// Package post renders draft documents for the static site: a YAML front
// matter block followed by a short Markdown body.
package post

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/concordia247/drafts/internal/news"
	"github.com/concordia247/drafts/internal/summary"
)

const (
	DefaultLayout = "post"
	DefaultAuthor = "Redacción Concordia247"

	SummaryHeading = "**Resumen**"
	SourceFallback = "Fuente"

	maxTitleRunes = 120
	maxSlugRunes  = 80
	delimiter     = "---"
)

// FrontMatter is the metadata header, in emission order.
type FrontMatter struct {
	Layout       string `yaml:"layout"`
	Title        string `yaml:"title"`
	Author       string `yaml:"author"`
	Source       string `yaml:"source"`
	CanonicalURL string `yaml:"canonical_url"`
}

type Builder struct {
	Layout string
	Author string
}

func NewBuilder(layout, author string) Builder {
	if layout == "" {
		layout = DefaultLayout
	}
	if author == "" {
		author = DefaultAuthor
	}
	return Builder{Layout: layout, Author: author}
}

// Build renders a draft. Output depends only on the arguments.
func (b Builder) Build(title, source, url string, s summary.Summary) (string, error) {
	if source == "" {
		source = SourceFallback
	}
	fm := FrontMatter{
		Layout:       b.Layout,
		Title:        news.Truncate(news.Collapse(title), maxTitleRunes),
		Author:       b.Author,
		Source:       source,
		CanonicalURL: url,
	}

	var buf bytes.Buffer
	buf.WriteString(delimiter + "\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return "", fmt.Errorf("encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode front matter: %w", err)
	}
	buf.WriteString(delimiter + "\n\n")

	if lead := strings.TrimSpace(s.Lead); lead != "" {
		buf.WriteString(lead + "\n\n")
	}
	buf.WriteString(SummaryHeading + "\n\n")
	for _, bullet := range s.Bullets {
		buf.WriteString("- " + bullet + "\n")
	}
	buf.WriteString("\n")
	fmt.Fprintf(&buf, "Fuente: [%s](%s)\n", source, url)

	return buf.String(), nil
}

// ParseFrontMatter reads the header of a draft produced by Build.
func ParseFrontMatter(doc string) (FrontMatter, error) {
	var fm FrontMatter
	rest, ok := strings.CutPrefix(doc, delimiter+"\n")
	if !ok {
		return fm, errors.New("document has no front matter")
	}
	end := strings.Index(rest, "\n"+delimiter+"\n")
	if end < 0 {
		return fm, errors.New("front matter is not terminated")
	}
	if err := yaml.Unmarshal([]byte(rest[:end+1]), &fm); err != nil {
		return fm, fmt.Errorf("parse front matter: %w", err)
	}
	return fm, nil
}

// Slug derives a file-name-safe identifier from a URL: scheme dropped,
// accents folded, non-alphanumeric runs collapsed to "-", at most 80 runes.
func Slug(rawURL string) string {
	s := rawURL
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	s = news.Fold(s)

	var b strings.Builder
	dash := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
			continue
		}
		dash = true
	}

	slug := strings.Trim(news.Head(b.String(), maxSlugRunes), "-")
	if slug == "" {
		return "nota"
	}
	return slug
}

// FileName is "<YYYY-MM-DD>-<slug>.md" for the given publish date.
func FileName(date time.Time, rawURL string) string {
	return date.Format(time.DateOnly) + "-" + Slug(rawURL) + ".md"
}

// Package summary builds a short lead and a handful of bullet points from
// extracted article text using sentence heuristics only.
package summary

import (
	"strings"
	"unicode"

	"github.com/concordia247/drafts/internal/news"
)

const (
	FallbackLead   = "No se pudo extraer un resumen automático de esta nota."
	FallbackBullet = "Ver la nota completa en la fuente original."
)

// Limits, in runes.
const (
	maxExtras       = 5
	minSentence     = 40
	maxLead         = 240
	leadOverlap     = 70
	dedupPrefix     = 80
	maxBullets      = 4
	maxBulletLength = 190
	scanWindow      = 19
)

type Summary struct {
	Lead    string
	Bullets []string
}

// Summarize is deterministic: identical input yields identical output.
func Summarize(description, lead string, paragraphs []string) Summary {
	parts := []string{description, lead}
	if len(paragraphs) > maxExtras {
		paragraphs = paragraphs[:maxExtras]
	}
	parts = append(parts, paragraphs...)
	blob := news.Collapse(strings.Join(parts, " "))

	sentences := Sentences(blob)

	var s Summary
	var rest []string
	switch {
	case len(sentences) > 0:
		s.Lead = sentences[0]
		rest = sentences[1:]
	case news.Collapse(description) != "":
		s.Lead = news.Collapse(description)
	case news.Collapse(lead) != "":
		s.Lead = news.Collapse(lead)
	default:
		s.Lead = FallbackLead
	}
	s.Lead = news.Truncate(s.Lead, maxLead)

	if len(rest) > scanWindow {
		rest = rest[:scanWindow]
	}
	s.Bullets = bullets(s.Lead, rest)
	if len(s.Bullets) == 0 {
		s.Bullets = []string{FallbackBullet}
	}
	return s
}

func bullets(lead string, candidates []string) []string {
	var kept []string
	var keys []string

	for _, sentence := range candidates {
		if len(kept) == maxBullets {
			break
		}
		if strings.Contains(lead, news.Head(sentence, leadOverlap)) {
			continue
		}
		key := normalize(sentence)
		if key == "" || duplicate(key, keys) {
			continue
		}
		keys = append(keys, key)
		kept = append(kept, news.Truncate(sentence, maxBulletLength))
	}
	return kept
}

func duplicate(key string, keys []string) bool {
	head := news.Head(key, dedupPrefix)
	for _, k := range keys {
		if k == key {
			return true
		}
		other := news.Head(k, dedupPrefix)
		if strings.HasPrefix(head, other) || strings.HasPrefix(other, head) {
			return true
		}
	}
	return false
}

// normalize lowercases s and turns every run of non-word characters into a
// single space.
func normalize(s string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
			continue
		}
		space = true
	}
	return b.String()
}

// Sentences splits text after '.', '!' or '?' followed by whitespace, trims
// leading stray punctuation and drops fragments shorter than 40 runes.
func Sentences(text string) []string {
	runes := []rune(text)
	var out []string
	start := 0
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			out = appendSentence(out, string(runes[start:i+1]))
			start = i + 1
		}
	}
	if start < len(runes) {
		out = appendSentence(out, string(runes[start:]))
	}
	return out
}

func appendSentence(out []string, s string) []string {
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(leadingJunk, r)
	})
	s = strings.TrimSpace(s)
	if news.RuneLen(s) < minSentence {
		return out
	}
	return append(out, s)
}

const leadingJunk = "-–—•·*.,;:|>)]»"

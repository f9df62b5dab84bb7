package policy

import (
	"strings"

	"github.com/concordia247/drafts/internal/news"
)

// Filter applies the focus and block gates. Matching is case and accent
// insensitive; fragments are folded once at construction.
type Filter struct {
	keyword    string
	window     int
	localHosts []string
	urlRules   []Rule
	textRules  []Rule
}

func NewFilter(rules Rules) *Filter {
	f := &Filter{
		keyword: news.Fold(rules.FocusKeyword),
		window:  rules.FocusWindow,
	}
	if f.window <= 0 {
		f.window = 300
	}
	for _, h := range rules.LocalHosts {
		f.localHosts = append(f.localHosts, news.Fold(h))
	}
	f.urlRules = folded(rules.URLFragments)
	f.textRules = folded(rules.Keywords)
	return f
}

func folded(rules []Rule) []Rule {
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		out = append(out, Rule{Category: r.Category, Fragment: news.Fold(r.Fragment)})
	}
	return out
}

// Focus reports whether an item is about the covered locality.
func (f *Filter) Focus(url, title, description string) bool {
	u := news.Fold(url)
	for _, h := range f.localHosts {
		if strings.Contains(u, h) {
			return true
		}
	}
	if strings.Contains(u, f.keyword) {
		return true
	}
	head := news.Head(title+" "+description, f.window)
	return strings.Contains(news.Fold(head), f.keyword)
}

// Block reports whether an item must be held for manual review, and the
// matched rule as "url:<fragment>" or "keyword:<fragment>".
func (f *Filter) Block(url, title, description string) (string, bool) {
	u := news.Fold(url)
	for _, r := range f.urlRules {
		if strings.Contains(u, r.Fragment) {
			return "url:" + r.Fragment, true
		}
	}

	text := news.Fold(title + " " + description)
	for _, r := range f.textRules {
		if strings.Contains(text, r.Fragment) {
			return "keyword:" + r.Fragment, true
		}
	}
	return "", false
}

package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/concordia247/drafts/internal/news"
	"github.com/concordia247/drafts/internal/policy"
	"github.com/concordia247/drafts/internal/post"
	"github.com/concordia247/drafts/internal/scraper"
)

var errNotFound = errors.New("not found")

type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{pages: map[string]string{}}
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	page, ok := f.pages[url]
	if !ok {
		return nil, errNotFound
	}
	return []byte(page), nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type memSink struct {
	files map[string]string
}

func newMemSink() *memSink { return &memSink{files: map[string]string{}} }

func (m *memSink) Exists(name string) (bool, error) {
	_, ok := m.files[name]
	return ok, nil
}

func (m *memSink) Write(name, content string) error {
	m.files[name] = content
	return nil
}

func (m *memSink) List(prefix string) ([]string, error) {
	var out []string
	for name := range m.files {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *memSink) Read(name string) (string, error) {
	c, ok := m.files[name]
	if !ok {
		return "", errNotFound
	}
	return c, nil
}

// articlePage renders a minimal news page with metadata and enough body text
// to produce a lead and supporting paragraphs.
func articlePage(title, description string) string {
	return fmt.Sprintf(`<html><head>
<meta property="og:title" content="%s">
<meta property="og:description" content="%s">
</head><body><article>
<p>La información fue confirmada durante la mañana por fuentes oficiales consultadas por este medio.</p>
<p>Según explicaron, la medida alcanzará a distintos barrios de la ciudad y se aplicará de manera gradual durante las próximas semanas.</p>
<p>Los vecinos podrán realizar consultas en las oficinas municipales o a través de los canales de atención habilitados para tal fin.</p>
</article></body></html>`, title, description)
}

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func item(url, sourceType string, age time.Duration) news.Item {
	t := baseTime.Add(-age)
	return news.Item{SourceName: "Diario", SourceType: sourceType, URL: url, Published: &t}
}

func newTestPipeline(f Fetcher, sink DraftSink, cfg PipelineConfig) *Pipeline {
	p := NewPipeline(f, scraper.NewExtractor(false, nil), policy.NewFilter(policy.Default()), post.NewBuilder("", ""), sink, cfg, nil)
	p.now = func() time.Time { return baseTime }
	return p
}

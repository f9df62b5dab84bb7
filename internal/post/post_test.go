package post

import (
	"strings"
	"testing"
	"time"

	"github.com/concordia247/drafts/internal/summary"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.ElHeraldo.com.ar/notas/Puente-Nuevo?id=3", "www-elheraldo-com-ar-notas-puente-nuevo-id-3"},
		{"http://example.com/ñandú/", "example-com-nandu"},
		{"https:///", "nota"},
	}
	for _, tt := range tests {
		if got := Slug(tt.in); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	long := "https://example.com/" + strings.Repeat("abc/", 40)
	if got := Slug(long); len(got) > 80 || strings.HasSuffix(got, "-") {
		t.Errorf("long slug not bounded: %q (%d)", got, len(got))
	}
}

func TestFileName(t *testing.T) {
	d := time.Date(2025, 2, 9, 23, 0, 0, 0, time.UTC)
	if got := FileName(d, "https://example.com/nota"); got != "2025-02-09-example-com-nota.md" {
		t.Errorf("FileName = %q", got)
	}
}

func TestBuild_Format(t *testing.T) {
	b := NewBuilder("", "")
	s := summary.Summary{Lead: "Lead de la nota.", Bullets: []string{"Uno.", "Dos."}}

	doc, err := b.Build("Nuevo puente en Concordia", "El Heraldo", "https://example.com/n", s)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := "---\n" +
		"layout: post\n" +
		"title: Nuevo puente en Concordia\n" +
		"author: Redacción Concordia247\n" +
		"source: El Heraldo\n" +
		"canonical_url: https://example.com/n\n" +
		"---\n\n" +
		"Lead de la nota.\n\n" +
		"**Resumen**\n\n" +
		"- Uno.\n" +
		"- Dos.\n" +
		"\n" +
		"Fuente: [El Heraldo](https://example.com/n)\n"
	if doc != want {
		t.Errorf("Build mismatch\n got: %q\nwant: %q", doc, want)
	}
}

func TestBuild_TruncatesTitleAndRoundTrips(t *testing.T) {
	b := NewBuilder("post", "Autor")
	title := strings.Repeat("palabra ", 30)
	doc, err := b.Build(title, "", "https://example.com/x", summary.Summary{Bullets: []string{"a"}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	fm, err := ParseFrontMatter(doc)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if n := len([]rune(fm.Title)); n > 120 {
		t.Errorf("title has %d runes, want <= 120", n)
	}
	if fm.Source != SourceFallback || fm.CanonicalURL != "https://example.com/x" || fm.Author != "Autor" {
		t.Errorf("unexpected front matter: %+v", fm)
	}
	if strings.Contains(doc, "\n\n\n") {
		t.Errorf("empty lead left a blank gap: %q", doc)
	}

	again, _ := b.Build(title, "", "https://example.com/x", summary.Summary{Bullets: []string{"a"}})
	if again != doc {
		t.Errorf("Build is not deterministic")
	}
}

func TestParseFrontMatter_QuotedTitle(t *testing.T) {
	title := "Título: \"con\" comillas y dos puntos"
	doc, err := NewBuilder("", "").Build(title, "Diario", "https://example.com/q", summary.Summary{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	fm, err := ParseFrontMatter(doc)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if fm.Title != title {
		t.Errorf("Title = %q, want %q", fm.Title, title)
	}
}

func TestParseFrontMatter_Errors(t *testing.T) {
	for _, doc := range []string{"", "sin encabezado", "---\ntitle: x\n"} {
		if _, err := ParseFrontMatter(doc); err == nil {
			t.Errorf("ParseFrontMatter(%q) expected error", doc)
		}
	}
}

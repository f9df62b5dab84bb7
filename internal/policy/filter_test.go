package policy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFilter_Focus(t *testing.T) {
	f := NewFilter(Default())

	tests := []struct {
		name  string
		url   string
		title string
		desc  string
		want  bool
	}{
		{"keyword in title", "http://example.com/nota", "Algo pasó en Concordia", "", true},
		{"no keyword", "http://example.com/nota", "Noticia de Paraná", "", false},
		{"keyword in url", "http://example.com/concordia/obras", "Obras", "", true},
		{"local host", "https://www.elheraldo.com.ar/nota/123", "Corte de agua", "", true},
		{"keyword in description", "http://example.com/x", "Lluvias", "Se esperan tormentas en CONCÓRDIA", true},
		{"keyword past window", "http://example.com/x", strings.Repeat("a", 400), "concordia", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Focus(tt.url, tt.title, tt.desc); got != tt.want {
				t.Errorf("Focus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter_Block(t *testing.T) {
	f := NewFilter(Default())

	reason, blocked := f.Block("http://example.com/concordia/nota", "Vecinos presentan denuncia en Concordia", "")
	if !blocked {
		t.Fatalf("expected item to be blocked")
	}
	if !strings.Contains(reason, "denuncia") {
		t.Errorf("reason = %q, want it to mention denuncia", reason)
	}

	reason, blocked = f.Block("https://diario.com/policiales/concordia-1", "Título neutro", "")
	if !blocked || reason != "url:/policiales" {
		t.Errorf("url rule: got (%q, %v)", reason, blocked)
	}

	if reason, blocked := f.Block("https://diario.com/sociedad/x", "Inauguran plaza en Concordia", "Con juegos nuevos"); blocked {
		t.Errorf("unexpected block: %q", reason)
	}
}

func TestFilter_BlockFoldsAccents(t *testing.T) {
	f := NewFilter(Rules{
		FocusKeyword: "concord",
		FocusWindow:  300,
		Keywords:     []Rule{{CategoryCrime, "apuñal"}},
	})
	if _, blocked := f.Block("http://x", "APUÑALARON a un hombre", ""); !blocked {
		t.Errorf("expected accent-insensitive keyword match")
	}
}

func TestLoadRules(t *testing.T) {
	rules, err := LoadRules(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if rules.FocusKeyword != "concord" {
		t.Errorf("defaults not applied: %+v", rules)
	}

	path := filepath.Join(t.TempDir(), "policy.yml")
	content := `focus_keyword: paran
keywords:
  - category: crime
    fragment: robo
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	rules, err = LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if rules.FocusKeyword != "paran" {
		t.Errorf("FocusKeyword = %q", rules.FocusKeyword)
	}
	if len(rules.Keywords) != 1 || rules.Keywords[0].Fragment != "robo" {
		t.Errorf("Keywords = %+v", rules.Keywords)
	}
	if len(rules.URLFragments) == 0 {
		t.Errorf("url fragments should keep defaults when absent from file")
	}
}

func TestLoadRules_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yml")
	if err := os.WriteFile(path, []byte("keywords:\n  - category: crime\n    fragment: \"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRules(path); err == nil {
		t.Fatalf("expected validation error")
	}
}

package rss

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/concordia247/drafts/internal/news"
)

// SourcesConfig is the YAML layout of _data/sources.yml:
//
//	sources:
//	  - name: El Heraldo
//	    kind: rss
//	    url: https://www.elheraldo.com.ar/rss
//	    type: media
type SourcesConfig struct {
	Sources []news.Source `yaml:"sources"`
}

const defaultSourceType = "media"

// LoadSources reads and validates the source list.
func LoadSources(path string) ([]news.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources: %w", err)
	}
	defer f.Close()

	var cfg SourcesConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse sources %s: %w", path, err)
	}

	for i := range cfg.Sources {
		s := &cfg.Sources[i]
		s.Kind = strings.ToLower(strings.TrimSpace(s.Kind))
		if s.Kind == "" || s.Kind == "feed" || s.Kind == "atom" {
			s.Kind = news.KindRSS
		}
		if s.Type == "" {
			s.Type = defaultSourceType
		}
		if s.Name == "" {
			s.Name = s.URL
		}
		if err := validateSource(*s); err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}
	}
	return cfg.Sources, nil
}

func validateSource(s news.Source) error {
	if s.URL == "" {
		return fmt.Errorf("url is required")
	}
	if !strings.HasPrefix(s.URL, "http://") && !strings.HasPrefix(s.URL, "https://") {
		return fmt.Errorf("url %q must be http or https", s.URL)
	}
	if s.Kind != news.KindRSS && s.Kind != news.KindSitemap {
		return fmt.Errorf("kind %q must be rss or sitemap", s.Kind)
	}
	return nil
}

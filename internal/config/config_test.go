package config

import (
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/jessevdk/go-flags"
)

// clearEnv unsets every variable Config reads, restoring them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	typ := reflect.TypeOf(Config{})
	for i := 0; i < typ.NumField(); i++ {
		key := typ.Field(i).Tag.Get("env")
		if key == "" {
			continue
		}
		if old, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, old) })
			os.Unsetenv(key)
		}
	}
}

func parse(t *testing.T, args ...string) *Config {
	t.Helper()
	var cfg Config
	p := flags.NewParser(&cfg, flags.IgnoreUnknown)
	if _, err := p.ParseArgs(args); err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	return &cfg
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	cfg := parse(t)

	if cfg.MaxPosts != 5 {
		t.Errorf("MaxPosts = %d, want 5", cfg.MaxPosts)
	}
	if cfg.Quotas["official"] != 1 {
		t.Errorf("Quotas = %v, want official:1", cfg.Quotas)
	}
	if cfg.Freshness != 12*time.Hour {
		t.Errorf("Freshness = %v", cfg.Freshness)
	}
	if cfg.SeenBackend != "file" || cfg.SeenPath != "_data/seen.json" {
		t.Errorf("seen defaults = %s %s", cfg.SeenBackend, cfg.SeenPath)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_POSTS", "3")
	t.Setenv("SEEN_BACKEND", "sqlite")
	t.Setenv("SEEN_DSN", "file:seen.db")
	cfg := parse(t)

	if cfg.MaxPosts != 3 || cfg.SeenBackend != "sqlite" {
		t.Errorf("env not applied: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero cap", func(c *Config) { c.MaxPosts = 0 }},
		{"sql without dsn", func(c *Config) { c.SeenBackend = "postgres"; c.SeenDSN = "" }},
		{"telegram half configured", func(c *Config) { c.TelegramToken = "x" }},
		{"negative quota", func(c *Config) { c.Quotas = map[string]int{"official": -1} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := parse(t)
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected error")
			}
		})
	}
}

func TestLocation(t *testing.T) {
	cfg := &Config{Timezone: "Nowhere/Atlantis"}
	if cfg.Location() != time.UTC {
		t.Errorf("unknown zone should fall back to UTC")
	}
}

// Package config holds the command-line and environment settings shared by
// every command. Values come from flags, then the environment (a .env file
// is loaded first), then the defaults below.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/concordia247/drafts/internal/storage"
)

const DefaultTimezone = "America/Argentina/Buenos_Aires"

type Config struct {
	Debug bool `long:"debug" env:"DEBUG" description:"Enable debug logging"`

	// Site layout
	SourcesPath string `long:"sources" env:"SOURCES_FILE" default:"_data/sources.yml" description:"YAML list of feeds and sitemaps"`
	PolicyPath  string `long:"policy" env:"POLICY_FILE" default:"_data/policy.yml" description:"Optional YAML editorial policy (focus and block rules)"`
	PostsDir    string `long:"posts-dir" env:"POSTS_DIR" default:"_posts" description:"Directory where drafts are written"`
	ReviewLog   string `long:"review-log" env:"REVIEW_LOG" default:"revisar.md" description:"Markdown log of items held for manual review"`
	Layout      string `long:"layout" env:"POST_LAYOUT" default:"post" description:"Front matter layout of generated drafts"`
	Author      string `long:"author" env:"POST_AUTHOR" default:"Redacción Concordia247" description:"Front matter author of generated drafts"`
	Timezone    string `long:"timezone" env:"SITE_TIMEZONE" default:"America/Argentina/Buenos_Aires" description:"Timezone for draft dates and review stamps"`

	// Seen ledger
	SeenBackend string `long:"seen-backend" env:"SEEN_BACKEND" default:"file" choice:"file" choice:"sqlite" choice:"postgres" choice:"redis" description:"Where handled URLs are stored"`
	SeenPath    string `long:"seen-file" env:"SEEN_FILE" default:"_data/seen.json" description:"Seen ledger for the file backend"`
	SeenDSN     string `long:"seen-dsn" env:"SEEN_DSN" description:"Database DSN for the sqlite and postgres backends"`
	RedisURL    string `long:"redis-url" env:"REDIS_URL" default:"redis://localhost:6379/0" description:"Redis URL for the redis backend"`
	RedisKey    string `long:"redis-key" env:"REDIS_KEY" default:"concordia247:seen" description:"Redis set holding seen URLs"`

	// Run limits
	MaxPosts  int            `long:"max-posts" env:"MAX_POSTS" default:"5" description:"Maximum drafts written per run"`
	Quotas    map[string]int `long:"quota" env:"SOURCE_QUOTAS" env-delim:"," default:"official:1" description:"Per source type draft quota per run (type:n)"`
	Freshness time.Duration  `long:"freshness" env:"SITEMAP_FRESHNESS" default:"12h" description:"Ignore sitemap entries older than this"`

	// HTTP
	UserAgent       string        `long:"user-agent" env:"USER_AGENT" description:"User agent for page and feed requests"`
	RequestTimeout  time.Duration `long:"request-timeout" env:"REQUEST_TIMEOUT" default:"15s" description:"Timeout per HTTP request"`
	RetryAttempts   int           `long:"retry-attempts" env:"RETRY_ATTEMPTS" default:"2" description:"Attempts per HTTP request"`
	RetryDelay      time.Duration `long:"retry-delay" env:"RETRY_DELAY" default:"2s" description:"Delay between attempts"`
	RequestInterval time.Duration `long:"request-interval" env:"REQUEST_INTERVAL" default:"500ms" description:"Minimum spacing between requests to one host"`
	PageCacheTTL    time.Duration `long:"page-cache-ttl" env:"PAGE_CACHE_TTL" default:"30m" description:"How long fetched pages are cached in memory"`
	Readability     bool          `long:"readability" env:"READABILITY_FALLBACK" description:"Use readability as a last resort for title and description"`

	// Escalation
	TelegramToken  string `long:"telegram-token" env:"TELEGRAM_TOKEN" description:"Bot token for review notifications (optional)"`
	TelegramChatID string `long:"telegram-chat" env:"TELEGRAM_CHAT_ID" description:"Chat receiving review notifications"`
	TelegramAPI    string `long:"telegram-api" env:"TELEGRAM_API" default:"https://api.telegram.org" description:"Telegram Bot API base URL"`
}

func (c *Config) Validate() error {
	if c.SourcesPath == "" {
		return fmt.Errorf("SOURCES_FILE is required")
	}
	if c.PostsDir == "" {
		return fmt.Errorf("POSTS_DIR is required")
	}
	if c.MaxPosts < 1 {
		return fmt.Errorf("MAX_POSTS must be at least 1")
	}
	for typ, n := range c.Quotas {
		if n < 0 {
			return fmt.Errorf("quota for %q must not be negative", typ)
		}
	}
	switch c.SeenBackend {
	case storage.BackendFile:
		if c.SeenPath == "" {
			return fmt.Errorf("SEEN_FILE is required for the file backend")
		}
	case storage.BackendSQLite, storage.BackendPostgres:
		if c.SeenDSN == "" {
			return fmt.Errorf("SEEN_DSN is required for the %s backend", c.SeenBackend)
		}
	case storage.BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis backend")
		}
	default:
		return fmt.Errorf("SEEN_BACKEND must be file, sqlite, postgres or redis")
	}
	if (c.TelegramToken == "") != (c.TelegramChatID == "") {
		return fmt.Errorf("TELEGRAM_TOKEN and TELEGRAM_CHAT_ID must be set together")
	}
	return nil
}

// Location resolves Timezone, falling back to UTC when it is unknown.
func (c *Config) Location() *time.Location {
	name := c.Timezone
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		slog.Warn("unknown timezone, using UTC", "timezone", name, "error", err)
		return time.UTC
	}
	return loc
}

// SeenOptions maps the ledger settings onto storage options.
func (c *Config) SeenOptions() storage.Options {
	return storage.Options{
		Backend:  c.SeenBackend,
		Path:     c.SeenPath,
		DSN:      c.SeenDSN,
		RedisURL: c.RedisURL,
		RedisKey: c.RedisKey,
	}
}

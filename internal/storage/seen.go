package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/concordia247/drafts/internal/news"
)

// SeenStore persists the set of handled URLs between runs.
type SeenStore interface {
	Load(ctx context.Context) (news.SeenSet, error)
	Save(ctx context.Context, seen news.SeenSet) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Options struct {
	Backend  string
	Path     string // file backend
	DSN      string // sqlite and postgres backends
	RedisURL string
	RedisKey string
}

// Open returns the configured seen store.
func Open(ctx context.Context, opts Options, log *slog.Logger) (SeenStore, error) {
	switch opts.Backend {
	case "", BackendFile:
		return NewFileSeenStore(opts.Path), nil
	case BackendSQLite, BackendPostgres:
		return NewSQLSeenStore(ctx, opts.Backend, opts.DSN, log)
	case BackendRedis:
		return NewRedisSeenStore(ctx, opts.RedisURL, opts.RedisKey, log)
	default:
		return nil, fmt.Errorf("unknown seen store backend %q", opts.Backend)
	}
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/concordia247/drafts/internal/news"
)

const (
	seenTable   = "seen_urls"
	insertBatch = 500
	schema      = `
	CREATE TABLE IF NOT EXISTS seen_urls (
		url TEXT PRIMARY KEY,
		first_seen TEXT NOT NULL
	);`
)

// SQLSeenStore keeps the seen set in a SQL table. Rows are only ever
// inserted, never updated or removed.
type SQLSeenStore struct {
	db  *sql.DB
	sb  sq.StatementBuilderType
	log *slog.Logger
	now func() time.Time
}

// NewSQLSeenStore opens driver ("sqlite" or "postgres") at dsn and creates
// the table if needed.
func NewSQLSeenStore(ctx context.Context, driver, dsn string, log *slog.Logger) (*SQLSeenStore, error) {
	if log == nil {
		log = slog.Default()
	}

	placeholder, err := placeholderFor(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	store := &SQLSeenStore{
		db:  db,
		sb:  sq.StatementBuilder.PlaceholderFormat(placeholder),
		log: log,
		now: time.Now,
	}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	log.Info("seen store connected", "driver", driver)
	return store, nil
}

// placeholderFor returns the bind variable style of driver.
func placeholderFor(driver string) (sq.PlaceholderFormat, error) {
	switch driver {
	case BackendPostgres:
		return sq.Dollar, nil
	case BackendSQLite:
		return sq.Question, nil
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
}

// insertSeen builds the idempotent insert for one batch of urls.
func insertSeen(sb sq.StatementBuilderType, urls []string, stamp string) (string, []interface{}, error) {
	ins := sb.Insert(seenTable).Columns("url", "first_seen")
	for _, u := range urls {
		ins = ins.Values(u, stamp)
	}
	return ins.Suffix("ON CONFLICT (url) DO NOTHING").ToSql()
}

func (s *SQLSeenStore) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *SQLSeenStore) Load(ctx context.Context) (news.SeenSet, error) {
	query, args, err := s.sb.Select("url").From(seenTable).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query seen: %w", err)
	}
	defer rows.Close()

	seen := news.NewSeenSet()
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan url: %w", err)
		}
		seen.Add(u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return seen, nil
}

// Save inserts every URL of the set in one transaction. Existing rows are
// left untouched, so first_seen keeps the original timestamp.
func (s *SQLSeenStore) Save(ctx context.Context, seen news.SeenSet) error {
	urls := seen.Sorted()
	if len(urls) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stamp := s.now().UTC().Format(time.RFC3339)
	for start := 0; start < len(urls); start += insertBatch {
		end := min(start+insertBatch, len(urls))

		query, args, err := insertSeen(s.sb, urls[start:end], stamp)
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert seen: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seen: %w", err)
	}
	s.log.Debug("seen set saved", "urls", len(urls))
	return nil
}

func (s *SQLSeenStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

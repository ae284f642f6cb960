// Adapter registering the SQLite backend and its DDL bootstrapper with the
// storage factory.
package sqlite

import (
	"context"
	"fmt"

	"musicetl/internal/storage"
)

var newRepository = NewRepository

type wrappedRepo struct {
	*Repository
	closeFn func()
}

var _ storage.Repository = (*wrappedRepo)(nil)

func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

// createTableStatements mirrors the Postgres DDL with SQLite types. SQLite
// has no separate BIGINT/DOUBLE storage classes; INTEGER and REAL cover
// them.
var createTableStatements = []string{
	`CREATE TABLE IF NOT EXISTS songs (
  song_id   TEXT PRIMARY KEY,
  title     TEXT NOT NULL,
  artist_id TEXT NOT NULL,
  year      INTEGER NOT NULL,
  duration  REAL NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS artists (
  artist_id TEXT PRIMARY KEY,
  name      TEXT NOT NULL,
  location  TEXT,
  longitude REAL,
  latitude  REAL
)`,
	`CREATE TABLE IF NOT EXISTS time (
  start_time INTEGER PRIMARY KEY,
  hour       INTEGER NOT NULL,
  day        INTEGER NOT NULL,
  week       INTEGER NOT NULL,
  month      INTEGER NOT NULL,
  year       INTEGER NOT NULL,
  weekday    INTEGER NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS users (
  user_id    TEXT PRIMARY KEY,
  first_name TEXT NOT NULL,
  last_name  TEXT NOT NULL,
  gender     TEXT NOT NULL,
  level      TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS songplays (
  play_id    INTEGER PRIMARY KEY,
  start_time INTEGER NOT NULL,
  user_id    TEXT NOT NULL,
  level      TEXT NOT NULL,
  song_id    TEXT,
  artist_id  TEXT,
  session_id INTEGER NOT NULL,
  location   TEXT,
  user_agent TEXT
)`,
}

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	storage.RegisterDDL("sqlite", func(ctx context.Context, repo storage.Repository) error {
		for _, stmt := range createTableStatements {
			if err := repo.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("apply DDL: %w", err)
			}
		}
		return nil
	})
}

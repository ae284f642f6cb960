// Adapter registering the MySQL backend and its DDL bootstrapper with the
// storage factory.
package mysql

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

var createTableStatements = []string{
	`CREATE TABLE IF NOT EXISTS songs (
  song_id   VARCHAR(64) PRIMARY KEY,
  title     TEXT NOT NULL,
  artist_id VARCHAR(64) NOT NULL,
  year      INT NOT NULL,
  duration  DOUBLE NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS artists (
  artist_id VARCHAR(64) PRIMARY KEY,
  name      TEXT NOT NULL,
  location  TEXT,
  longitude DOUBLE,
  latitude  DOUBLE
)`,
	"CREATE TABLE IF NOT EXISTS `time` (" + `
  start_time BIGINT PRIMARY KEY,
  hour       INT NOT NULL,
  day        INT NOT NULL,
  week       INT NOT NULL,
  month      INT NOT NULL,
  year       INT NOT NULL,
  weekday    INT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS users (
  user_id    VARCHAR(64) PRIMARY KEY,
  first_name TEXT NOT NULL,
  last_name  TEXT NOT NULL,
  gender     VARCHAR(16) NOT NULL,
  level      VARCHAR(16) NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS songplays (
  play_id    BIGINT PRIMARY KEY,
  start_time BIGINT NOT NULL,
  user_id    VARCHAR(64) NOT NULL,
  level      VARCHAR(16) NOT NULL,
  song_id    VARCHAR(64),
  artist_id  VARCHAR(64),
  session_id BIGINT NOT NULL,
  location   TEXT,
  user_agent TEXT
)`,
}

func init() {
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	storage.RegisterDDL("mysql", func(ctx context.Context, repo storage.Repository) error {
		for _, stmt := range createTableStatements {
			if err := repo.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("apply DDL: %w", err)
			}
		}
		return nil
	})
}

// Adapter registering the SQL Server backend and its DDL bootstrapper with
// the storage factory.
package mssql

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
	`IF OBJECT_ID(N'songs', N'U') IS NULL CREATE TABLE songs (
  song_id   NVARCHAR(64) PRIMARY KEY,
  title     NVARCHAR(MAX) NOT NULL,
  artist_id NVARCHAR(64) NOT NULL,
  year      INT NOT NULL,
  duration  FLOAT NOT NULL
)`,
	`IF OBJECT_ID(N'artists', N'U') IS NULL CREATE TABLE artists (
  artist_id NVARCHAR(64) PRIMARY KEY,
  name      NVARCHAR(MAX) NOT NULL,
  location  NVARCHAR(MAX),
  longitude FLOAT,
  latitude  FLOAT
)`,
	`IF OBJECT_ID(N'time', N'U') IS NULL CREATE TABLE [time] (
  start_time BIGINT PRIMARY KEY,
  hour       INT NOT NULL,
  day        INT NOT NULL,
  week       INT NOT NULL,
  month      INT NOT NULL,
  year       INT NOT NULL,
  weekday    INT NOT NULL
)`,
	`IF OBJECT_ID(N'users', N'U') IS NULL CREATE TABLE users (
  user_id    NVARCHAR(64) PRIMARY KEY,
  first_name NVARCHAR(256) NOT NULL,
  last_name  NVARCHAR(256) NOT NULL,
  gender     NVARCHAR(16) NOT NULL,
  level      NVARCHAR(16) NOT NULL
)`,
	`IF OBJECT_ID(N'songplays', N'U') IS NULL CREATE TABLE songplays (
  play_id    BIGINT PRIMARY KEY,
  start_time BIGINT NOT NULL,
  user_id    NVARCHAR(64) NOT NULL,
  level      NVARCHAR(16) NOT NULL,
  song_id    NVARCHAR(64),
  artist_id  NVARCHAR(64),
  session_id BIGINT NOT NULL,
  location   NVARCHAR(MAX),
  user_agent NVARCHAR(MAX)
)`,
}

func init() {
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	storage.RegisterDDL("mssql", func(ctx context.Context, repo storage.Repository) error {
		for _, stmt := range createTableStatements {
			if err := repo.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("apply DDL: %w", err)
			}
		}
		return nil
	})
}

// Package mysql implements the storage sink on MySQL/MariaDB via
// database/sql and go-sql-driver. Dimension upserts use
// INSERT ... ON DUPLICATE KEY UPDATE; play inserts use INSERT IGNORE on the
// play fingerprint primary key.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"musicetl/internal/records"
	"musicetl/internal/storage"
)

// Config holds MySQL repository configuration.
type Config struct {
	// DSN in go-sql-driver format, e.g. "user:pass@tcp(host:3306)/db?parseTime=true".
	DSN string
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db *sql.DB
}

// NewRepository opens a MySQL connection pool and returns a Repository plus
// a close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("mysql: DSN must not be empty")
	}
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql: open: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("mysql: ping: %w", err)
	}
	closeFn := func() { db.Close() }
	return &Repository{db: db}, closeFn, nil
}

// Begin starts the per-file transaction.
func (r *Repository) Begin(ctx context.Context) (storage.Batch, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("mysql: begin: %w", err)
	}
	return &batch{tx: tx}, nil
}

// Exec runs a single statement outside any batch (used for DDL bootstrap).
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if _, err := r.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("mysql: exec: %w", err)
	}
	return nil
}

type batch struct {
	tx *sql.Tx
}

const (
	upsertSongSQL = `INSERT INTO songs (song_id, title, artist_id, year, duration)
VALUES (?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  title = VALUES(title), artist_id = VALUES(artist_id),
  year = VALUES(year), duration = VALUES(duration)`

	upsertArtistSQL = `INSERT INTO artists (artist_id, name, location, longitude, latitude)
VALUES (?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name = VALUES(name), location = VALUES(location),
  longitude = VALUES(longitude), latitude = VALUES(latitude)`

	upsertTimeSQL = "INSERT INTO `time` (start_time, hour, day, week, month, year, weekday)" + `
VALUES (?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  hour = VALUES(hour), day = VALUES(day), week = VALUES(week),
  month = VALUES(month), year = VALUES(year), weekday = VALUES(weekday)`

	upsertUserSQL = `INSERT INTO users (user_id, first_name, last_name, gender, level)
VALUES (?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  first_name = VALUES(first_name), last_name = VALUES(last_name),
  gender = VALUES(gender), level = VALUES(level)`

	insertPlaySQL = `INSERT IGNORE INTO songplays
  (play_id, start_time, user_id, level, song_id, artist_id, session_id, location, user_agent)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	lookupSongSQL = `SELECT s.song_id, s.artist_id
FROM songs s JOIN artists a ON s.artist_id = a.artist_id
WHERE s.title = ? AND a.name = ? AND s.duration = ?`
)

func (b *batch) UpsertSongs(ctx context.Context, rows []records.Song) (int64, error) {
	var n int64
	for _, s := range rows {
		if _, err := b.tx.ExecContext(ctx, upsertSongSQL, s.SongID, s.Title, s.ArtistID, s.Year, s.Duration); err != nil {
			return n, fmt.Errorf("mysql: upsert song %s: %w", s.SongID, err)
		}
		n++
	}
	return n, nil
}

func (b *batch) UpsertArtists(ctx context.Context, rows []records.Artist) (int64, error) {
	var n int64
	for _, a := range rows {
		if _, err := b.tx.ExecContext(ctx, upsertArtistSQL, a.ArtistID, a.Name, a.Location, a.Longitude, a.Latitude); err != nil {
			return n, fmt.Errorf("mysql: upsert artist %s: %w", a.ArtistID, err)
		}
		n++
	}
	return n, nil
}

func (b *batch) UpsertTimeEntries(ctx context.Context, rows []records.TimeEntry) (int64, error) {
	var n int64
	for _, t := range rows {
		if _, err := b.tx.ExecContext(ctx, upsertTimeSQL, t.TS, t.Hour, t.Day, t.Week, t.Month, t.Year, t.Weekday); err != nil {
			return n, fmt.Errorf("mysql: upsert time %d: %w", t.TS, err)
		}
		n++
	}
	return n, nil
}

func (b *batch) UpsertUsers(ctx context.Context, rows []records.User) (int64, error) {
	var n int64
	for _, u := range rows {
		if _, err := b.tx.ExecContext(ctx, upsertUserSQL, u.UserID, u.FirstName, u.LastName, string(u.Gender), string(u.Level)); err != nil {
			return n, fmt.Errorf("mysql: upsert user %s: %w", u.UserID, err)
		}
		n++
	}
	return n, nil
}

func (b *batch) InsertSongPlays(ctx context.Context, rows []records.SongPlay) (int64, error) {
	var n int64
	for _, p := range rows {
		if _, err := b.tx.ExecContext(ctx, insertPlaySQL,
			p.PlayID, p.TS, p.UserID, string(p.Level), p.SongID, p.ArtistID,
			p.SessionID, p.Location, p.UserAgent); err != nil {
			return n, fmt.Errorf("mysql: insert songplay %d: %w", p.PlayID, err)
		}
		n++
	}
	return n, nil
}

func (b *batch) LookupSong(ctx context.Context, title, artist string, duration float64) (*storage.SongKey, error) {
	var key storage.SongKey
	err := b.tx.QueryRowContext(ctx, lookupSongSQL, title, artist, duration).Scan(&key.SongID, &key.ArtistID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mysql: lookup song: %w", err)
	}
	return &key, nil
}

func (b *batch) Commit(ctx context.Context) error {
	if err := b.tx.Commit(); err != nil {
		return fmt.Errorf("mysql: commit: %w", err)
	}
	return nil
}

func (b *batch) Rollback(ctx context.Context) error {
	err := b.tx.Rollback()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("mysql: rollback: %w", err)
	}
	return nil
}

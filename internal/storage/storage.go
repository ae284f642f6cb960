// Package storage contains the storage-agnostic sink contract for the star
// schema and a registry-based factory for concrete backends.
//
// Backends (postgres, mysql, mssql, sqlite) register a constructor at init
// time; callers obtain a Repository via New without importing any backend
// package directly. Importing internal/storage/all (typically as a blank
// import in the wiring layer) enables every built-in backend.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"musicetl/internal/records"
)

// Config selects and configures a backend. DSN syntax is backend-specific
// and passed through to the driver unchanged.
type Config struct {
	Kind             string
	DSN              string
	AutoCreateTables bool
}

// Repository is an open connection to a sink. It hands out one Batch per
// input file; the batch owns the underlying transaction exclusively until
// Commit or Rollback.
type Repository interface {
	// Begin starts the transaction for one input file's writes.
	Begin(ctx context.Context) (Batch, error)

	// Exec runs a single statement outside any batch (DDL bootstrap).
	Exec(ctx context.Context, sql string) error

	// Close releases the underlying pool/connection.
	Close()
}

// SongKey is the resolved dimension-key pair for a fact row.
type SongKey struct {
	SongID   string
	ArtistID string
}

// Batch is the per-file write surface. Dimension writes are upserts keyed
// on their natural unique key, overwriting on conflict; play writes are
// insert-or-ignore on the play fingerprint so that replays cannot duplicate
// fact rows. Nothing is visible to other batches until Commit.
type Batch interface {
	UpsertSongs(ctx context.Context, rows []records.Song) (int64, error)
	UpsertArtists(ctx context.Context, rows []records.Artist) (int64, error)
	UpsertTimeEntries(ctx context.Context, rows []records.TimeEntry) (int64, error)
	UpsertUsers(ctx context.Context, rows []records.User) (int64, error)
	InsertSongPlays(ctx context.Context, rows []records.SongPlay) (int64, error)

	// LookupSong resolves a playback event against the loaded catalog by
	// exact match on title, artist name and duration. A miss returns
	// (nil, nil): it is an expected outcome, not an error.
	//
	// Duration compares with plain float64 equality. No tolerance band is
	// defined for the corpus; representation drift between catalog and log
	// sources will surface as a miss, never as a wrong match.
	LookupSong(ctx context.Context, title, artist string, duration float64) (*SongKey, error)

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// FactoryFn constructs a Repository for one storage kind.
type FactoryFn func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]FactoryFn{}
)

// Register installs (or replaces) the factory for a storage kind. It is
// called from backend packages' init functions.
func Register(kind string, fn FactoryFn) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = fn
}

// New opens a Repository for cfg.Kind using the registered factory.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	fn, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%q (registered: %v)", cfg.Kind, ListKinds())
	}
	return fn(ctx, cfg)
}

// ListKinds returns the registered storage kinds in sorted order.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

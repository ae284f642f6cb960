// This adapter wires the Postgres backend into the storage-agnostic
// factory by registering a constructor and a DDL bootstrapper at init time.
// Callers obtain a Repository via storage.New(...) without importing this
// package directly (internal/storage/all blank-imports it).
package postgres

import (
	"context"
	"fmt"

	"musicetl/internal/storage"
)

// newRepository is a test hook pointing at NewRepository by default. Tests
// may replace it to avoid real connections.
var newRepository = NewRepository

// wrappedRepo adds a Close method backed by the close function returned by
// NewRepository.
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

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	storage.RegisterDDL("postgres", func(ctx context.Context, repo storage.Repository) error {
		for _, stmt := range createTableStatements {
			if err := repo.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("apply DDL: %w", err)
			}
		}
		return nil
	})
}

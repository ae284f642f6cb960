package storage

import (
	"context"
	"fmt"
	"sync"
)

// DDLBootstrapper applies a backend's CREATE TABLE IF NOT EXISTS statements
// for the five star-schema tables via repo.Exec. Backends register their
// implementation for a given storage kind at init time.
type DDLBootstrapper func(ctx context.Context, repo Repository) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) a DDLBootstrapper for the given
// storage kind.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureSchema locates the DDLBootstrapper for the kind and invokes it.
// Callers stay backend-agnostic; they pass the already-open Repository.
func EnsureSchema(ctx context.Context, kind string, repo Repository) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for storage.kind=%q", kind)
	}
	return fn(ctx, repo)
}

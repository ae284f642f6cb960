package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeRepo satisfies Repository for registry tests; Exec records statements.
type fakeRepo struct {
	execs []string
}

func (f *fakeRepo) Begin(ctx context.Context) (Batch, error) { return nil, errors.New("not implemented") }
func (f *fakeRepo) Exec(ctx context.Context, sql string) error {
	f.execs = append(f.execs, sql)
	return nil
}
func (f *fakeRepo) Close() {}

func TestRegistry(t *testing.T) {
	// Registry state is process-global, so tests use unique kind names and
	// run serially.
	want := &fakeRepo{}
	Register("fake-registry-test", func(ctx context.Context, cfg Config) (Repository, error) {
		if cfg.DSN != "dsn-under-test" {
			t.Errorf("factory got DSN %q, want dsn-under-test", cfg.DSN)
		}
		return want, nil
	})

	got, err := New(context.Background(), Config{Kind: "fake-registry-test", DSN: "dsn-under-test"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got != Repository(want) {
		t.Fatal("New returned a different repository than the factory produced")
	}

	kinds := ListKinds()
	found := false
	for _, k := range kinds {
		if k == "fake-registry-test" {
			found = true
		}
	}
	if !found {
		t.Errorf("ListKinds() = %v, missing fake-registry-test", kinds)
	}
	for i := 1; i < len(kinds); i++ {
		if kinds[i-1] > kinds[i] {
			t.Errorf("ListKinds() = %v, not sorted", kinds)
		}
	}
}

func TestNew_UnsupportedKind(t *testing.T) {
	_, err := New(context.Background(), Config{Kind: "no-such-kind"})
	if err == nil {
		t.Fatal("New succeeded for unregistered kind")
	}
	if !strings.Contains(err.Error(), "no-such-kind") {
		t.Errorf("error %q should name the kind", err.Error())
	}
}

func TestEnsureSchema(t *testing.T) {
	RegisterDDL("fake-ddl-test", func(ctx context.Context, repo Repository) error {
		return repo.Exec(ctx, "CREATE TABLE IF NOT EXISTS songs (song_id TEXT PRIMARY KEY)")
	})

	repo := &fakeRepo{}
	if err := EnsureSchema(context.Background(), "fake-ddl-test", repo); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if len(repo.execs) != 1 {
		t.Fatalf("Exec called %d times, want 1", len(repo.execs))
	}

	if err := EnsureSchema(context.Background(), "no-such-kind", repo); err == nil {
		t.Fatal("EnsureSchema succeeded for unregistered kind")
	}
}

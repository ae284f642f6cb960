// Package file implements local filesystem data sources: opening a single
// input file and discovering the per-corpus file sets.
package file

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Local is a filesystem data source bound to one path.
type Local struct{ path string }

// NewLocal returns a Local data source for the provided path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Open opens the configured path for reading. If the context is already
// canceled, Open returns its error without touching the filesystem. Errors
// are wrapped with the path while preserving errors.Is checks (e.g.
// os.ErrNotExist).
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}

// ListJSON walks root recursively and returns every *.json file found,
// sorted lexically so a corpus is always processed in a stable order.
// The sorted order is what makes cross-file last-write-wins deterministic
// for the activity corpus.
func ListJSON(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".json") {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", root, err)
	}
	sort.Strings(out)
	return out, nil
}

// Package datasource defines the minimal contract for opening raw input
// data. The loader only ever reads local files, but keeping the contract
// narrow lets tests substitute in-memory sources.
package datasource

import (
	"context"
	"io"
)

// Source opens one raw input for reading.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

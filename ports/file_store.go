package ports

import (
	"context"
	"io"

	"churnscope/domain/core"
)

// FileStore holds uploaded datasets and generated result artifacts.
type FileStore interface {
	// Store writes r under a collision-free name derived from filename and
	// returns the stored name.
	Store(ctx context.Context, r io.Reader, filename string) (core.FileRef, error)
	// StoreNamed writes r under exactly the given name, for generated
	// results whose names already embed a UUID.
	StoreNamed(ctx context.Context, r io.Reader, name string) (core.FileRef, error)
	Open(ctx context.Context, ref core.FileRef) (io.ReadCloser, error)
	Path(ref core.FileRef) string
	Exists(ctx context.Context, ref core.FileRef) (bool, error)
}

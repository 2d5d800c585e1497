package interfaces

import (
	"context"
	"io"
)

// ArtifactStore persists generated site artifacts. Paths are slash separated
// and relative to the store root; "" names the root itself.
type ArtifactStore interface {
	EnsureDir(ctx context.Context, path string) error
	WriteFile(ctx context.Context, path string, content io.Reader) error
	// ReadFile returns an error matching fs.ErrNotExist for missing files.
	ReadFile(ctx context.Context, path string) ([]byte, error)
	RemoveAll(ctx context.Context, path string) error
}

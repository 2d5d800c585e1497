package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/lagstiftning/go-lagstiftning/pkg/interfaces"
)

// ErrPathOutsideRoot is returned for paths that would resolve outside the
// store root.
var ErrPathOutsideRoot = errors.New("storage: path escapes store root")

// FilesystemStore writes artifacts below a root directory on disk.
type FilesystemStore struct {
	root string
}

var _ interfaces.ArtifactStore = (*FilesystemStore)(nil)

// NewFilesystemStore returns a store rooted at root. The directory is
// created lazily on first write.
func NewFilesystemStore(root string) *FilesystemStore {
	if strings.TrimSpace(root) == "" {
		root = "."
	}
	return &FilesystemStore{root: filepath.Clean(root)}
}

// Root returns the directory the store writes to.
func (s *FilesystemStore) Root() string {
	return s.root
}

func (s *FilesystemStore) EnsureDir(ctx context.Context, rel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := s.resolve(rel)
	if err != nil {
		return err
	}
	return os.MkdirAll(target, 0o755)
}

// WriteFile writes content to rel through a temporary file in the same
// directory so readers never observe a partially written page.
func (s *FilesystemStore) WriteFile(ctx context.Context, rel string, content io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if content == nil {
		return fmt.Errorf("storage: write %s: nil content", rel)
	}
	target, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if target == s.root {
		return fmt.Errorf("storage: write requires a file path")
	}
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := io.Copy(tmp, content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("storage: write %s: %w", rel, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

func (s *FilesystemStore) ReadFile(ctx context.Context, rel string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	target, err := s.resolve(rel)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(target)
}

// RemoveAll deletes rel and everything below it. Removing "" deletes the
// root directory itself.
func (s *FilesystemStore) RemoveAll(ctx context.Context, rel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := s.resolve(rel)
	if err != nil {
		return err
	}
	return os.RemoveAll(target)
}

func (s *FilesystemStore) resolve(rel string) (string, error) {
	cleaned := strings.Trim(path.Clean("/"+strings.TrimSpace(filepath.ToSlash(rel))), "/")
	if cleaned == "" {
		return s.root, nil
	}
	local := filepath.FromSlash(cleaned)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("%w: %s", ErrPathOutsideRoot, rel)
	}
	return filepath.Join(s.root, local), nil
}

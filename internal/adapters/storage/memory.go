package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/lagstiftning/go-lagstiftning/pkg/interfaces"
)

// MemoryStore keeps artifacts in memory. It backs dry runs and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	files map[string][]byte
	dirs  map[string]struct{}
}

var _ interfaces.ArtifactStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		files: map[string][]byte{},
		dirs:  map[string]struct{}{},
	}
}

func (s *MemoryStore) EnsureDir(ctx context.Context, rel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := memoryKey(rel)
	if key == "" {
		return nil
	}
	s.mu.Lock()
	s.dirs[key] = struct{}{}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) WriteFile(ctx context.Context, rel string, content io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := memoryKey(rel)
	if key == "" {
		return fmt.Errorf("storage: write requires a file path")
	}
	if content == nil {
		return fmt.Errorf("storage: write %s: nil content", rel)
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.files[key] = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) ReadFile(ctx context.Context, rel string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	data, ok := s.files[memoryKey(rel)]
	s.mu.RUnlock()
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: rel, Err: fs.ErrNotExist}
	}
	return bytes.Clone(data), nil
}

func (s *MemoryStore) RemoveAll(ctx context.Context, rel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := memoryKey(rel)
	s.mu.Lock()
	defer s.mu.Unlock()
	for name := range s.files {
		if key == "" || name == key || strings.HasPrefix(name, key+"/") {
			delete(s.files, name)
		}
	}
	for name := range s.dirs {
		if key == "" || name == key || strings.HasPrefix(name, key+"/") {
			delete(s.dirs, name)
		}
	}
	return nil
}

// Files returns the stored file paths, sorted.
func (s *MemoryStore) Files() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Contents returns the stored content of rel as a string, "" if absent.
func (s *MemoryStore) Contents(rel string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return string(s.files[memoryKey(rel)])
}

func memoryKey(rel string) string {
	return strings.Trim(path.Clean("/"+strings.TrimSpace(rel)), "/")
}

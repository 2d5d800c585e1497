package lagstiftning_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	lagstiftning "github.com/lagstiftning/go-lagstiftning"
	"github.com/lagstiftning/go-lagstiftning/internal/adapters/storage"
	"github.com/lagstiftning/go-lagstiftning/internal/di"
	"github.com/lagstiftning/go-lagstiftning/internal/generator"
)

func newModule(t *testing.T, store *storage.MemoryStore) (*lagstiftning.Module, string) {
	t.Helper()
	dir := t.TempDir()
	fixture, err := os.ReadFile(filepath.Join("internal", "revisions", "testdata", "revision.yaml"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "2024:12.yaml"), fixture, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg := lagstiftning.DefaultConfig()
	cfg.SourceDirectory = dir
	cfg.Generator.OutputDir = t.TempDir()
	cfg.BasePath = "/las"
	cfg.Logging.Level = "error"
	cfg.Watch.Debounce = 20 * time.Millisecond

	module, err := lagstiftning.New(cfg, di.WithStorage(store))
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	return module, dir
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := lagstiftning.DefaultConfig()
	cfg.Generator.OutputDir = " "
	if _, err := lagstiftning.New(cfg); !errors.Is(err, lagstiftning.ErrGeneratorOutputDirRequired) {
		t.Fatalf("expected ErrGeneratorOutputDirRequired, got %v", err)
	}
}

func TestModuleGeneratesSite(t *testing.T) {
	store := storage.NewMemoryStore()
	module, _ := newModule(t, store)

	result, err := module.Generator().Build(context.Background(), generator.BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(result.Revisions) != 1 {
		t.Fatalf("expected one revision, got %v", result.Revisions)
	}
	if !strings.Contains(store.Contents("2024:12/index.html"), "Employment Protection Act") {
		t.Fatalf("expected document page to carry the English title")
	}
}

func TestModuleSections(t *testing.T) {
	module, _ := newModule(t, storage.NewMemoryStore())

	rev, sections, err := module.Sections(context.Background(), "2024:12")
	if err != nil {
		t.Fatalf("sections: %v", err)
	}
	if rev.Abbreviation != "LAS" {
		t.Fatalf("unexpected abbreviation %q", rev.Abbreviation)
	}
	if len(sections) == 0 {
		t.Fatalf("expected sections")
	}

	if _, _, err := module.Sections(context.Background(), "2024:99"); !errors.Is(err, lagstiftning.ErrRevisionNotFound) {
		t.Fatalf("expected ErrRevisionNotFound, got %v", err)
	}
	if _, _, err := module.Sections(context.Background(), "../etc"); !errors.Is(err, lagstiftning.ErrInvalidIdentifier) {
		t.Fatalf("expected ErrInvalidIdentifier, got %v", err)
	}
}

func TestModuleWatchRebuildsChangedRevision(t *testing.T) {
	store := storage.NewMemoryStore()
	module, dir := newModule(t, store)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- module.Watch(ctx) }()

	fixture, err := os.ReadFile(filepath.Join(dir, "2024:12.yaml"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for store.Contents("2024:12/index.html") == "" && time.Now().Before(deadline) {
		if err := os.WriteFile(filepath.Join(dir, "2024:12.yaml"), fixture, 0o644); err != nil {
			t.Fatalf("touch fixture: %v", err)
		}
		time.Sleep(100 * time.Millisecond)
	}
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("watch: %v", err)
	}
	if store.Contents("2024:12/index.html") == "" {
		t.Fatalf("expected watch to rebuild the changed revision")
	}
}

func TestZeroModuleIsNotConfigured(t *testing.T) {
	var module *lagstiftning.Module
	if err := module.Watch(context.Background()); !errors.Is(err, lagstiftning.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if module.Generator() != nil || module.Catalog() != nil || module.Commands() != nil {
		t.Fatalf("expected nil collaborators")
	}
}

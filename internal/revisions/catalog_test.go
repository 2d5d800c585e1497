package revisions

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestCatalogListFiltersRevisionFiles(t *testing.T) {
	dir := t.TempDir()
	data := readFixture(t, validFixture)
	writeRevision(t, dir, "2024:12", data)
	writeRevision(t, dir, "2023:1", data)
	writeRevision(t, dir, "draft", data)
	writeRevision(t, dir, "2024-12", data)
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# notes"), 0o644); err != nil {
		t.Fatalf("write README: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "archive"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeRevision(t, filepath.Join(dir, "archive"), "2020:1", data)

	ids, err := NewCatalog(dir, nil).List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"2023:1", "2024:12"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
}

func TestCatalogListMissingDirectory(t *testing.T) {
	_, err := NewCatalog(filepath.Join(t.TempDir(), "missing"), nil).List(context.Background())
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestCatalogLoadDecodesIdentifier(t *testing.T) {
	dir := t.TempDir()
	writeRevision(t, dir, "2024:12", readFixture(t, validFixture))

	rev, err := NewCatalog(dir, nil).Load(context.Background(), "2024%3A12")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rev.Identifier != "2024:12" {
		t.Fatalf("expected identifier 2024:12, got %q", rev.Identifier)
	}
}

func TestCatalogLoadMissingRevisionIsIsolated(t *testing.T) {
	dir := t.TempDir()
	writeRevision(t, dir, "2024:12", readFixture(t, validFixture))
	catalog := NewCatalog(dir, nil)

	_, err := catalog.Load(context.Background(), "9999:1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var loadErr *LoadError
	if !errors.As(err, &loadErr) || loadErr.Path != filepath.Join(dir, "9999:1.yaml") {
		t.Fatalf("expected LoadError with path, got %v", err)
	}

	if _, err := catalog.Load(context.Background(), "2024:12"); err != nil {
		t.Fatalf("expected other revisions to load, got %v", err)
	}
}

func TestNormalizeIdentifier(t *testing.T) {
	cases := map[string]string{
		"2024:12":   "2024:12",
		"2024%3A12": "2024:12",
		" 1:1 ":     "1:1",
	}
	for raw, want := range cases {
		got, err := NormalizeIdentifier(raw)
		if err != nil {
			t.Fatalf("NormalizeIdentifier(%q): %v", raw, err)
		}
		if got != want {
			t.Fatalf("NormalizeIdentifier(%q) = %q, want %q", raw, got, want)
		}
	}

	for _, raw := range []string{"", "..", "../etc/passwd", "a%2Fb", "%zz"} {
		if _, err := NormalizeIdentifier(raw); !errors.Is(err, ErrInvalidIdentifier) {
			t.Fatalf("NormalizeIdentifier(%q): expected ErrInvalidIdentifier, got %v", raw, err)
		}
	}
}

func TestIdentifierFromFilename(t *testing.T) {
	if id, ok := IdentifierFromFilename("/src/2024:12.yaml"); !ok || id != "2024:12" {
		t.Fatalf("unexpected result %q %v", id, ok)
	}
	for _, name := range []string{"2024:12.yml", "x2024:12.yaml", "2024.yaml", "2024:12.yaml.bak"} {
		if _, ok := IdentifierFromFilename(name); ok {
			t.Fatalf("expected %q to be rejected", name)
		}
	}
}

package revisions

import (
	"os"
	"path/filepath"
	"testing"
)

const validFixture = "testdata/revision.yaml"

func readFixture(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture %s: %v", path, err)
	}
	return data
}

// writeRevision stores data as <dir>/<identifier>.yaml and returns the path.
// Revision file names contain colons, so fixtures are written at test time.
func writeRevision(t *testing.T, dir, identifier string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, identifier+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

package revisions

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/lagstiftning/go-lagstiftning/internal/logging"
	"github.com/lagstiftning/go-lagstiftning/pkg/interfaces"
)

// sourceFilePattern matches revision file names such as "2024:12.yaml".
var sourceFilePattern = regexp.MustCompile(`^\d+:\d+\.yaml$`)

// IdentifierFromFilename returns the identifier encoded in a revision file
// name and whether the name follows the revision naming convention.
func IdentifierFromFilename(name string) (string, bool) {
	base := path.Base(filepath.ToSlash(name))
	if !sourceFilePattern.MatchString(base) {
		return "", false
	}
	return strings.TrimSuffix(base, sourceExtension), true
}

// NormalizeIdentifier URL-decodes raw and rejects identifiers that could
// escape the source directory.
func NormalizeIdentifier(raw string) (string, error) {
	decoded, err := url.PathUnescape(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidIdentifier, raw, err)
	}
	decoded = strings.TrimSpace(decoded)
	if decoded == "" || decoded == "." || decoded == ".." ||
		strings.ContainsAny(decoded, `/\`) || strings.ContainsRune(decoded, 0) {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, raw)
	}
	return decoded, nil
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithCatalogLogger sets the logger used by the catalog.
func WithCatalogLogger(logger interfaces.Logger) CatalogOption {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Catalog discovers and loads the revisions stored in one source directory.
type Catalog struct {
	dir    string
	loader *Loader
	logger interfaces.Logger
}

// NewCatalog returns a catalog over dir. An empty dir means the working
// directory; a nil loader selects NewLoader(nil).
func NewCatalog(dir string, loader *Loader, opts ...CatalogOption) *Catalog {
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	if loader == nil {
		loader = NewLoader(nil)
	}
	c := &Catalog{
		dir:    filepath.Clean(dir),
		loader: loader,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Directory returns the source directory.
func (c *Catalog) Directory() string {
	return c.dir
}

// List returns the identifiers of every revision file in the source
// directory, sorted.
func (c *Catalog) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(c.dir); err != nil {
		return nil, fmt.Errorf("revisions: list %s: %w", c.dir, err)
	}
	candidates, err := doublestar.Glob(os.DirFS(c.dir), "*"+sourceExtension)
	if err != nil {
		return nil, fmt.Errorf("revisions: list %s: %w", c.dir, err)
	}

	identifiers := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		identifier, ok := IdentifierFromFilename(candidate)
		if !ok {
			c.logger.Debug("revision.catalog.skipped", "file", candidate)
			continue
		}
		identifiers = append(identifiers, identifier)
	}
	sort.Strings(identifiers)

	c.logger.Debug("revision.catalog.listed", "directory", c.dir, "count", len(identifiers))
	return identifiers, nil
}

// Path returns the source file path for identifier.
func (c *Catalog) Path(identifier string) string {
	return filepath.Join(c.dir, identifier+sourceExtension)
}

// Load loads the revision for identifier. The identifier may be URL-encoded
// ("2024%3A12"). A missing file fails with a *LoadError matching ErrNotFound.
func (c *Catalog) Load(ctx context.Context, identifier string) (*Revision, error) {
	normalized, err := NormalizeIdentifier(identifier)
	if err != nil {
		return nil, err
	}
	return c.loader.Load(ctx, c.Path(normalized))
}

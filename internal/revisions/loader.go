package revisions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/lagstiftning/go-lagstiftning/internal/logging"
	"github.com/lagstiftning/go-lagstiftning/internal/markdown"
	"github.com/lagstiftning/go-lagstiftning/internal/schema"
	"github.com/lagstiftning/go-lagstiftning/internal/validation"
	"github.com/lagstiftning/go-lagstiftning/pkg/interfaces"
)

const sourceExtension = ".yaml"

var (
	revisionValidatorOnce sync.Once
	revisionValidator     *validation.Validator
)

// RevisionValidator returns the shared validator for revision documents.
func RevisionValidator() *validation.Validator {
	revisionValidatorOnce.Do(func() {
		revisionValidator = validation.MustCompile("revision.json", schema.Revision())
	})
	return revisionValidator
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger interfaces.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithValidator replaces the revision schema validator.
func WithValidator(validator *validation.Validator) LoaderOption {
	return func(l *Loader) {
		if validator != nil {
			l.validator = validator
		}
	}
}

// WithRenderConcurrency bounds how many texts are rendered at once. Zero or
// less means unbounded.
func WithRenderConcurrency(limit int) LoaderOption {
	return func(l *Loader) {
		l.renderLimit = limit
	}
}

// WithClock overrides the clock used to time loads.
func WithClock(clock func() time.Time) LoaderOption {
	return func(l *Loader) {
		if clock != nil {
			l.now = clock
		}
	}
}

// Loader reads revision source files, validates them and renders their
// paragraph text. A Loader holds no per-load state and may be shared.
type Loader struct {
	parser      interfaces.MarkdownParser
	validator   *validation.Validator
	logger      interfaces.Logger
	renderLimit int
	now         func() time.Time
}

// NewLoader constructs a Loader. A nil parser selects the goldmark parser
// with default options.
func NewLoader(parser interfaces.MarkdownParser, opts ...LoaderOption) *Loader {
	if parser == nil {
		parser = markdown.NewGoldmarkParser(interfaces.ParseOptions{})
	}
	l := &Loader{
		parser: parser,
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.validator == nil {
		l.validator = RevisionValidator()
	}
	return l
}

// Load reads the revision stored at path. The identifier is the file name
// without its extension. Failures are returned as *LoadError.
func (l *Loader) Load(ctx context.Context, path string) (*Revision, error) {
	identifier := IdentifierFromPath(path)
	logger := logging.WithRevisionContext(l.logger, identifier, path)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		kind := KindRead
		if errors.Is(err, fs.ErrNotExist) {
			kind = KindNotFound
		}
		loadErr := &LoadError{Identifier: identifier, Path: path, Kind: kind, Err: err}
		logger.Error("revision.load.failed", "kind", string(kind), "error", err)
		return nil, loadErr
	}

	rev, err := l.decode(ctx, identifier, path, data, logger)
	if err != nil {
		return nil, err
	}
	return rev, nil
}

// Decode builds a revision from source bytes already in memory.
func (l *Loader) Decode(ctx context.Context, identifier string, data []byte) (*Revision, error) {
	logger := logging.WithRevisionContext(l.logger, identifier, "")
	return l.decode(ctx, identifier, "", data, logger)
}

func (l *Loader) decode(ctx context.Context, identifier, path string, data []byte, logger interfaces.Logger) (*Revision, error) {
	start := l.now()
	logger.Debug("revision.load.start", "bytes", len(data))

	fail := func(kind ErrorKind, err error) error {
		loadErr := &LoadError{Identifier: identifier, Path: path, Kind: kind, Err: err}
		args := []any{"kind", string(kind), "error", err}
		if field := loadErr.Field(); field != "" {
			args = append(args, "field", field)
		}
		logger.Error("revision.load.failed", args...)
		return loadErr
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fail(KindDeserialization, err)
	}
	if err := l.validator.Validate(raw); err != nil {
		return nil, fail(KindSchema, err)
	}

	rev, err := toRevision(raw)
	if err != nil {
		return nil, fail(KindSchema, err)
	}
	rev.Identifier = identifier

	if err := l.render(ctx, rev); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, err
		}
		return nil, fail(KindRender, err)
	}

	logger.Info("revision.load.completed",
		"elements", len(rev.Elements),
		"duration_ms", l.now().Sub(start).Milliseconds(),
	)
	return rev, nil
}

// toRevision converts a validated document tree into a Revision.
func toRevision(raw any) (*Revision, error) {
	normalized, err := validation.Normalize(raw)
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(normalized)
	if err != nil {
		return nil, err
	}
	rev := &Revision{}
	if err := json.Unmarshal(encoded, rev); err != nil {
		return nil, fmt.Errorf("decode revision: %w", err)
	}
	return rev, nil
}

// render replaces the Swedish and English text of every paragraph with its
// rendered HTML. Texts are rendered concurrently; each goroutine writes only
// its own field so element order is untouched.
func (l *Loader) render(ctx context.Context, rev *Revision) error {
	group, groupCtx := errgroup.WithContext(ctx)
	if l.renderLimit > 0 {
		group.SetLimit(l.renderLimit)
	}

	for index := range rev.Elements {
		element := &rev.Elements[index]
		if element.Type != ParagraphText {
			continue
		}
		targets := map[Language]*string{
			Swedish: &element.Text.SV,
			English: &element.Text.EN,
		}
		for _, lang := range Languages {
			index, lang, target := index, lang, targets[lang]
			group.Go(func() error {
				if err := groupCtx.Err(); err != nil {
					return err
				}
				out, err := l.parser.Parse([]byte(*target))
				if err != nil {
					return &RenderError{Index: index, Language: lang, Err: err}
				}
				*target = string(out)
				return nil
			})
		}
	}

	return group.Wait()
}

// IdentifierFromPath returns the base file name of path without its
// extension.
func IdentifierFromPath(path string) string {
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

package lagstiftning

import (
	"context"
	"errors"

	staticcmd "github.com/lagstiftning/go-lagstiftning/internal/commands/static"
	"github.com/lagstiftning/go-lagstiftning/internal/di"
	"github.com/lagstiftning/go-lagstiftning/internal/generator"
	"github.com/lagstiftning/go-lagstiftning/internal/logging"
	"github.com/lagstiftning/go-lagstiftning/internal/revisions"
	"github.com/lagstiftning/go-lagstiftning/internal/watch"
)

// GeneratorService exports the static site generator contract.
type GeneratorService = generator.Service

// Revision exports the loaded revision document.
type Revision = revisions.Revision

// Element exports a single revision element.
type Element = revisions.Element

// Section exports a section page derived from a revision.
type Section = revisions.Section

// Catalog exports the revision catalog over a source directory.
type Catalog = revisions.Catalog

// CommandHandlers exports the build, clean and validate handlers.
type CommandHandlers = staticcmd.HandlerSet

// ErrNotConfigured is returned when a Module was not built with New.
var ErrNotConfigured = errors.New("lagstiftning: module not configured")

// Module represents the top level runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Generator returns the configured static site generator.
func (m *Module) Generator() GeneratorService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.GeneratorService()
}

// Catalog returns the catalog over the configured source directory.
func (m *Module) Catalog() *Catalog {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Catalog()
}

// Commands returns the command handlers.
func (m *Module) Commands() *CommandHandlers {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.CommandHandlers()
}

// Sections loads identifier and returns its section pages in document order.
func (m *Module) Sections(ctx context.Context, identifier string) (*Revision, []Section, error) {
	if m == nil || m.container == nil {
		return nil, nil, ErrNotConfigured
	}
	rev, err := m.container.Catalog().Load(ctx, identifier)
	if err != nil {
		return nil, nil, err
	}
	return rev, revisions.Sections(rev), nil
}

// Watch rebuilds the site whenever revision files in the source directory
// change, until ctx is cancelled. It does not perform an initial build.
func (m *Module) Watch(ctx context.Context) error {
	if m == nil || m.container == nil {
		return ErrNotConfigured
	}
	handlers := m.container.CommandHandlers()
	rebuild := func(ctx context.Context, identifiers []string) error {
		return handlers.Build.Execute(ctx, staticcmd.BuildSiteCommand{Identifiers: identifiers})
	}

	cfg := m.container.Config
	watcher, err := watch.New(watch.Config{
		Directory: cfg.SourceDirectory,
		Debounce:  cfg.Watch.Debounce,
	}, rebuild, logging.WatchLogger(m.container.LoggerProvider()))
	if err != nil {
		return err
	}
	return watcher.Run(ctx)
}

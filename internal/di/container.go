package di

import (
	"fmt"
	"strings"
	"time"

	"github.com/lagstiftning/go-lagstiftning/internal/adapters/storage"
	staticcmd "github.com/lagstiftning/go-lagstiftning/internal/commands/static"
	"github.com/lagstiftning/go-lagstiftning/internal/generator"
	"github.com/lagstiftning/go-lagstiftning/internal/logging"
	"github.com/lagstiftning/go-lagstiftning/internal/logging/console"
	"github.com/lagstiftning/go-lagstiftning/internal/logging/gologger"
	"github.com/lagstiftning/go-lagstiftning/internal/markdown"
	"github.com/lagstiftning/go-lagstiftning/internal/revisions"
	"github.com/lagstiftning/go-lagstiftning/internal/runtimeconfig"
	"github.com/lagstiftning/go-lagstiftning/pkg/interfaces"
)

// Container wires module dependencies from a validated configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	parser         interfaces.MarkdownParser
	storage        interfaces.ArtifactStore
	template       interfaces.TemplateRenderer
	registry       staticcmd.CommandRegistry
	clock          func() time.Time

	loader       *revisions.Loader
	catalog      *revisions.Catalog
	generatorSvc generator.Service
	handlers     *staticcmd.HandlerSet
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider selected by Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithMarkdownParser overrides the goldmark parser.
func WithMarkdownParser(parser interfaces.MarkdownParser) Option {
	return func(c *Container) {
		if parser != nil {
			c.parser = parser
		}
	}
}

// WithStorage overrides the filesystem store rooted at the output directory.
func WithStorage(store interfaces.ArtifactStore) Option {
	return func(c *Container) {
		if store != nil {
			c.storage = store
		}
	}
}

// WithTemplate overrides the built-in page templates.
func WithTemplate(tr interfaces.TemplateRenderer) Option {
	return func(c *Container) {
		if tr != nil {
			c.template = tr
		}
	}
}

// WithCommandRegistry registers the command handlers with reg.
func WithCommandRegistry(reg staticcmd.CommandRegistry) Option {
	return func(c *Container) {
		c.registry = reg
	}
}

// WithClock overrides the clock used to stamp builds.
func WithClock(clock func() time.Time) Option {
	return func(c *Container) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// NewContainer validates cfg and wires the revision pipeline, the generator
// and the command handlers.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		opt(c)
	}

	if c.loggerProvider == nil {
		provider, err := newLoggerProvider(cfg.Logging)
		if err != nil {
			return nil, err
		}
		c.loggerProvider = provider
	}
	if c.parser == nil {
		c.parser = markdown.NewGoldmarkParser(cfg.Markdown.ParseOptions(),
			markdown.WithParserLogger(logging.MarkdownLogger(c.loggerProvider)))
	}
	if c.storage == nil {
		c.storage = storage.NewFilesystemStore(cfg.Generator.OutputDir)
	}
	if c.template == nil {
		c.template = generator.NewTemplateRenderer()
	}

	revisionsLogger := logging.RevisionsLogger(c.loggerProvider)
	loaderOpts := []revisions.LoaderOption{revisions.WithLogger(revisionsLogger)}
	if c.clock != nil {
		loaderOpts = append(loaderOpts, revisions.WithClock(c.clock))
	}
	c.loader = revisions.NewLoader(c.parser, loaderOpts...)
	c.catalog = revisions.NewCatalog(cfg.SourceDirectory, c.loader, revisions.WithCatalogLogger(revisionsLogger))

	var generatorOpts []generator.Option
	if c.clock != nil {
		generatorOpts = append(generatorOpts, generator.WithClock(c.clock))
	}
	c.generatorSvc = generator.NewService(generatorConfig(cfg), generator.Dependencies{
		Revisions: c.catalog,
		Renderer:  c.template,
		Storage:   c.storage,
		Logger:    logging.GeneratorLogger(c.loggerProvider),
	}, generatorOpts...)

	handlers, err := staticcmd.RegisterStaticCommands(c.registry, c.generatorSvc, c.catalog, c.loggerProvider)
	if err != nil {
		return nil, err
	}
	c.handlers = handlers
	return c, nil
}

func generatorConfig(cfg runtimeconfig.Config) generator.Config {
	return generator.Config{
		BasePath:        runtimeconfig.NormalizeBasePath(cfg.BasePath),
		BaseURL:         cfg.Generator.BaseURL,
		Workers:         cfg.Generator.Workers,
		CleanBuild:      cfg.Generator.CleanBuild,
		GenerateSitemap: cfg.Generator.GenerateSitemap,
		SiteName:        cfg.Generator.SiteName,
		HomeURL:         cfg.Generator.HomeURL,
		ParentName:      cfg.Generator.ParentName,
		ParentURL:       cfg.Generator.ParentURL,
	}
}

func newLoggerProvider(cfg runtimeconfig.LoggingConfig) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "console":
		level, ok := console.ParseLevel(cfg.Level)
		if !ok && strings.TrimSpace(cfg.Level) != "" {
			return nil, fmt.Errorf("%w: %q", runtimeconfig.ErrLoggingLevelInvalid, cfg.Level)
		}
		return console.NewProvider(console.Options{MinLevel: &level}), nil
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("%w: %q", runtimeconfig.ErrLoggingProviderUnknown, cfg.Provider)
	}
}

// LoggerProvider returns the provider every module logger comes from.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// MarkdownParser returns the parser used for paragraph text.
func (c *Container) MarkdownParser() interfaces.MarkdownParser {
	return c.parser
}

// StorageProvider returns the artifact store generated pages are written to.
func (c *Container) StorageProvider() interfaces.ArtifactStore {
	return c.storage
}

// TemplateRenderer returns the page renderer.
func (c *Container) TemplateRenderer() interfaces.TemplateRenderer {
	return c.template
}

// RevisionLoader returns the revision loader.
func (c *Container) RevisionLoader() *revisions.Loader {
	return c.loader
}

// Catalog returns the catalog over the source directory.
func (c *Container) Catalog() *revisions.Catalog {
	return c.catalog
}

// GeneratorService returns the static site generator.
func (c *Container) GeneratorService() generator.Service {
	return c.generatorSvc
}

// CommandHandlers returns the build, clean and validate handlers.
func (c *Container) CommandHandlers() *staticcmd.HandlerSet {
	return c.handlers
}

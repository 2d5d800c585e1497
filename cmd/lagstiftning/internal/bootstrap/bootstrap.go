package bootstrap

import (
	"fmt"
	"strings"

	lagstiftning "github.com/lagstiftning/go-lagstiftning"
	"github.com/lagstiftning/go-lagstiftning/internal/di"
	"github.com/lagstiftning/go-lagstiftning/pkg/interfaces"
)

// Options captures command line overrides applied over the configuration
// file (or the defaults when no file is given).
type Options struct {
	ConfigPath  string
	SourceDir   string
	OutputDir   string
	BasePath    *string
	BaseURL     string
	Workers     *int
	LogLevel    string
	LogProvider string
	Sitemap     *bool

	LoggerProvider interfaces.LoggerProvider
}

// Resources holds the module constructed for a command invocation.
type Resources struct {
	Module *lagstiftning.Module
	Config lagstiftning.Config
}

// BuildModule resolves the configuration and constructs the module.
func BuildModule(opts Options) (*Resources, error) {
	cfg := lagstiftning.DefaultConfig()
	if path := strings.TrimSpace(opts.ConfigPath); path != "" {
		loaded, err := lagstiftning.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if dir := strings.TrimSpace(opts.SourceDir); dir != "" {
		cfg.SourceDirectory = dir
	}
	if dir := strings.TrimSpace(opts.OutputDir); dir != "" {
		cfg.Generator.OutputDir = dir
	}
	if opts.BasePath != nil {
		cfg.BasePath = strings.TrimSpace(*opts.BasePath)
	}
	if url := strings.TrimSpace(opts.BaseURL); url != "" {
		cfg.Generator.BaseURL = url
	}
	if opts.Workers != nil {
		cfg.Generator.Workers = *opts.Workers
	}
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		cfg.Logging.Level = level
	}
	if provider := strings.TrimSpace(opts.LogProvider); provider != "" {
		cfg.Logging.Provider = provider
	}
	if opts.Sitemap != nil {
		cfg.Generator.GenerateSitemap = *opts.Sitemap
	}

	var diOpts []di.Option
	if opts.LoggerProvider != nil {
		diOpts = append(diOpts, di.WithLoggerProvider(opts.LoggerProvider))
	}

	module, err := lagstiftning.New(cfg, diOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise lagstiftning module: %w", err)
	}
	return &Resources{Module: module, Config: cfg}, nil
}

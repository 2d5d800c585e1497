package runtimeconfig

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/lagstiftning/go-lagstiftning/internal/markdown"
	"github.com/lagstiftning/go-lagstiftning/pkg/interfaces"
)

var (
	ErrSourceDirectoryRequired    = errors.New("lagstiftning config: source directory is required")
	ErrBasePathInvalid            = errors.New("lagstiftning config: base path must be empty or an absolute url path")
	ErrGeneratorOutputDirRequired = errors.New("lagstiftning config: generator output directory is required")
	ErrGeneratorWorkersInvalid    = errors.New("lagstiftning config: generator workers must be zero or positive")
	ErrGeneratorBaseURLInvalid    = errors.New("lagstiftning config: generator base url must be an absolute http(s) url")
	ErrMarkdownExtensionUnknown   = errors.New("lagstiftning config: markdown extension is unknown")
	ErrLoggingProviderUnknown     = errors.New("lagstiftning config: logging provider is invalid")
	ErrLoggingLevelInvalid        = errors.New("lagstiftning config: logging level is invalid")
	ErrLoggingFormatInvalid       = errors.New("lagstiftning config: logging format is invalid")
	ErrWatchDebounceInvalid       = errors.New("lagstiftning config: watch debounce must be zero or positive")
)

// Config holds everything needed to load revisions and generate the site.
// It replaces environment lookups; callers build it once and pass it down.
type Config struct {
	// BasePath prefixes every generated link, e.g. "/las". Empty means the
	// site is served from the root.
	BasePath        string          `yaml:"base_path"`
	// SourceDirectory holds the revision files ("<digits>:<digits>.yaml").
	SourceDirectory string          `yaml:"source_directory"`
	Generator       GeneratorConfig `yaml:"generator"`
	Markdown        MarkdownConfig  `yaml:"markdown"`
	Logging         LoggingConfig   `yaml:"logging"`
	Watch           WatchConfig     `yaml:"watch"`
}

// GeneratorConfig captures behaviour for the static site generator.
type GeneratorConfig struct {
	OutputDir       string `yaml:"output_dir"`
	BaseURL         string `yaml:"base_url"`
	Workers         int    `yaml:"workers"`
	CleanBuild      bool   `yaml:"clean_build"`
	GenerateSitemap bool   `yaml:"generate_sitemap"`
	// SiteName and HomeURL label the site's own breadcrumb.
	SiteName        string `yaml:"site_name"`
	HomeURL         string `yaml:"home_url"`
	// ParentName and ParentURL label the first breadcrumb. Empty ParentName
	// omits it.
	ParentName      string `yaml:"parent_name"`
	ParentURL       string `yaml:"parent_url"`
}

// MarkdownConfig mirrors interfaces.ParseOptions for runtime configuration.
type MarkdownConfig struct {
	SafeMode             bool     `yaml:"safe_mode"`
	HardWraps            bool     `yaml:"hard_wraps"`
	Extensions           []string `yaml:"extensions"`
	OrderedListClasses   []string `yaml:"ordered_list_classes"`
	UnorderedListClasses []string `yaml:"unordered_list_classes"`
}

// ParseOptions converts the configuration into parser options.
func (m MarkdownConfig) ParseOptions() interfaces.ParseOptions {
	return interfaces.ParseOptions{
		Extensions:           append([]string(nil), m.Extensions...),
		HardWraps:            m.HardWraps,
		Unsafe:               !m.SafeMode,
		OrderedListClasses:   m.OrderedListClasses,
		UnorderedListClasses: m.UnorderedListClasses,
	}
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// WatchConfig controls rebuilds on source changes.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// DefaultConfig returns the configuration used by the lagstiftning sites.
func DefaultConfig() Config {
	return Config{
		BasePath:        "",
		SourceDirectory: ".",
		Generator: GeneratorConfig{
			OutputDir:       "dist",
			Workers:         0,
			CleanBuild:      true,
			GenerateSitemap: true,
			SiteName:        "Lagstiftning",
			HomeURL:         "/",
			ParentName:      "Arbetsmarknad",
			ParentURL:       "https://arbetsmarknad.github.io/",
		},
		Markdown: MarkdownConfig{
			SafeMode: true,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Watch: WatchConfig{
			Debounce: 250 * time.Millisecond,
		},
	}
}

// Validate performs consistency checks and returns the sentinel for the
// first problem found.
func (cfg Config) Validate() error {
	checks := []struct {
		sentinel error
		value    any
		rules    []validation.Rule
	}{
		{ErrSourceDirectoryRequired, strings.TrimSpace(cfg.SourceDirectory), []validation.Rule{validation.Required}},
		{ErrBasePathInvalid, cfg.BasePath, []validation.Rule{validation.By(validBasePath)}},
		{ErrGeneratorOutputDirRequired, strings.TrimSpace(cfg.Generator.OutputDir), []validation.Rule{validation.Required}},
		{ErrGeneratorWorkersInvalid, cfg.Generator.Workers, []validation.Rule{validation.Min(0)}},
		{ErrGeneratorBaseURLInvalid, strings.TrimSpace(cfg.Generator.BaseURL), []validation.Rule{validation.By(validBaseURL)}},
		{ErrMarkdownExtensionUnknown, cfg.Markdown.Extensions, []validation.Rule{validation.Each(validation.By(knownExtension))}},
		{ErrLoggingProviderUnknown, normalize(cfg.Logging.Provider), []validation.Rule{validation.In("console", "gologger")}},
		{ErrLoggingLevelInvalid, normalize(cfg.Logging.Level), []validation.Rule{validation.In("trace", "debug", "info", "warn", "warning", "error", "fatal")}},
		{ErrLoggingFormatInvalid, normalize(cfg.Logging.Format), []validation.Rule{validation.In("json", "console", "pretty")}},
		{ErrWatchDebounceInvalid, int64(cfg.Watch.Debounce), []validation.Rule{validation.Min(int64(0))}},
	}

	for _, check := range checks {
		if err := validation.Validate(check.value, check.rules...); err != nil {
			return fmt.Errorf("%w: %v", check.sentinel, err)
		}
	}
	return nil
}

// NormalizeBasePath returns path with a leading slash and without a trailing
// one; "" and "/" both normalise to "".
func NormalizeBasePath(path string) string {
	trimmed := strings.Trim(strings.TrimSpace(path), "/")
	if trimmed == "" {
		return ""
	}
	return "/" + trimmed
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func validBasePath(value any) error {
	path, _ := value.(string)
	if path == "" {
		return nil
	}
	if !strings.HasPrefix(path, "/") || strings.ContainsAny(path, "?#") || strings.Contains(path, "//") {
		return fmt.Errorf("%q is not an absolute url path", path)
	}
	return nil
}

func validBaseURL(value any) error {
	raw, _ := value.(string)
	if raw == "" {
		return nil
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("%q is not an absolute http(s) url", raw)
	}
	return nil
}

func knownExtension(value any) error {
	name, _ := value.(string)
	if !markdown.KnownExtension(name) {
		return fmt.Errorf("%q is not a supported extension", name)
	}
	return nil
}

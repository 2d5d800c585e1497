package runtimeconfig_test

import (
	"errors"
	"testing"
	"time"

	"github.com/lagstiftning/go-lagstiftning/internal/runtimeconfig"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := runtimeconfig.DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*runtimeconfig.Config)
		want   error
	}{
		{"empty source directory", func(c *runtimeconfig.Config) { c.SourceDirectory = " " }, runtimeconfig.ErrSourceDirectoryRequired},
		{"relative base path", func(c *runtimeconfig.Config) { c.BasePath = "las" }, runtimeconfig.ErrBasePathInvalid},
		{"base path with query", func(c *runtimeconfig.Config) { c.BasePath = "/las?x=1" }, runtimeconfig.ErrBasePathInvalid},
		{"missing output dir", func(c *runtimeconfig.Config) { c.Generator.OutputDir = "" }, runtimeconfig.ErrGeneratorOutputDirRequired},
		{"negative workers", func(c *runtimeconfig.Config) { c.Generator.Workers = -1 }, runtimeconfig.ErrGeneratorWorkersInvalid},
		{"relative base url", func(c *runtimeconfig.Config) { c.Generator.BaseURL = "example.com" }, runtimeconfig.ErrGeneratorBaseURLInvalid},
		{"unknown extension", func(c *runtimeconfig.Config) { c.Markdown.Extensions = []string{"gfm", "mermaid"} }, runtimeconfig.ErrMarkdownExtensionUnknown},
		{"unknown provider", func(c *runtimeconfig.Config) { c.Logging.Provider = "syslog" }, runtimeconfig.ErrLoggingProviderUnknown},
		{"unknown level", func(c *runtimeconfig.Config) { c.Logging.Level = "loud" }, runtimeconfig.ErrLoggingLevelInvalid},
		{"unknown format", func(c *runtimeconfig.Config) { c.Logging.Format = "xml" }, runtimeconfig.ErrLoggingFormatInvalid},
		{"negative debounce", func(c *runtimeconfig.Config) { c.Watch.Debounce = -time.Second }, runtimeconfig.ErrWatchDebounceInvalid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := runtimeconfig.DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestConfigValidateAcceptsOptionalValues(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.BasePath = "/las"
	cfg.Generator.BaseURL = "https://lagstiftning.github.io"
	cfg.Generator.Workers = 4
	cfg.Markdown.Extensions = []string{"GFM", "footnote"}
	cfg.Logging.Provider = "GoLogger"
	cfg.Logging.Level = "DEBUG"
	cfg.Logging.Format = "json"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestNormalizeBasePath(t *testing.T) {
	cases := map[string]string{
		"":       "",
		"/":      "",
		"las":    "/las",
		"/las/":  "/las",
		" /a/b ": "/a/b",
	}
	for in, want := range cases {
		if got := runtimeconfig.NormalizeBasePath(in); got != want {
			t.Fatalf("NormalizeBasePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMarkdownParseOptions(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	if cfg.Markdown.ParseOptions().Unsafe {
		t.Fatalf("expected safe mode by default")
	}
	cfg.Markdown.SafeMode = false
	cfg.Markdown.OrderedListClasses = []string{"steps"}
	opts := cfg.Markdown.ParseOptions()
	if !opts.Unsafe || len(opts.OrderedListClasses) != 1 {
		t.Fatalf("unexpected parse options %+v", opts)
	}
}

package logging

import (
	"context"
	"strings"

	"github.com/lagstiftning/go-lagstiftning/pkg/interfaces"
)

const (
	rootModule      = "lagstiftning"
	revisionsModule = "lagstiftning.revisions"
	markdownModule  = "lagstiftning.markdown"
	generatorModule = "lagstiftning.generator"
	watchModule     = "lagstiftning.watch"
)

const (
	fieldIdentifier = "identifier"
	fieldPath       = "path"
)

// ModuleLogger returns a logger scoped to module. Without a provider (or when
// the provider returns nil) a no-op logger is used. The module name is
// attached as the "module" field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// RevisionsLogger returns the logger used by the revision loader and catalog.
func RevisionsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, revisionsModule)
}

// MarkdownLogger returns the logger used by the markdown renderer.
func MarkdownLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, markdownModule)
}

// GeneratorLogger returns the logger used by the static site generator.
func GeneratorLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, generatorModule)
}

// WatchLogger returns the logger used by the source directory watcher.
func WatchLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, watchModule)
}

// WithRevisionContext adds the revision identifier and source path to logger.
// Empty values are skipped.
func WithRevisionContext(logger interfaces.Logger, identifier, path string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(identifier); trimmed != "" {
		fields[fieldIdentifier] = trimmed
	}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldPath] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that discards every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}

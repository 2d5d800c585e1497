// Package gologger plugs github.com/goliatone/go-logger into the module's
// logger contracts. Fields stored on a context with logging.ContextWithFields
// are attached when a logger is bound to that context, matching the console
// provider.
package gologger

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/lagstiftning/go-lagstiftning/internal/logging"
	"github.com/lagstiftning/go-lagstiftning/pkg/interfaces"
)

// Config captures the options exposed by the go-logger adapter.
type Config struct {
	// Level is one of trace, debug, info, warn, error, fatal. Empty keeps the
	// go-logger default.
	Level string
	// Format is json (default), console or pretty.
	Format    string
	AddSource bool
	// Focus limits output to the named loggers, e.g. lagstiftning.generator.
	Focus []string
}

var levels = map[string]string{
	"trace":   glog.Trace,
	"debug":   glog.Debug,
	"info":    glog.Info,
	"warn":    glog.Warn,
	"warning": glog.Warn,
	"error":   glog.Error,
	"fatal":   glog.Fatal,
}

var formats = map[string]func() glog.Option{
	"":        func() glog.Option { return glog.WithLoggerTypeJSON() },
	"json":    func() glog.Option { return glog.WithLoggerTypeJSON() },
	"console": func() glog.Option { return glog.WithLoggerTypeConsole() },
	"pretty":  func() glog.Option { return glog.WithLoggerTypePretty() },
}

// Provider hands out named go-logger children of one root logger.
type Provider struct {
	root *glog.BaseLogger
}

var _ interfaces.LoggerProvider = (*Provider)(nil)

// NewProvider builds the root logger from cfg.
func NewProvider(cfg Config) (*Provider, error) {
	format, ok := formats[strings.ToLower(strings.TrimSpace(cfg.Format))]
	if !ok {
		return nil, fmt.Errorf("gologger: unsupported format %q", cfg.Format)
	}
	options := []glog.Option{format()}

	levelName := strings.ToLower(strings.TrimSpace(cfg.Level))
	if levelName != "" {
		level, ok := levels[levelName]
		if !ok {
			return nil, fmt.Errorf("gologger: unsupported level %q", cfg.Level)
		}
		options = append(options, glog.WithLevel(level))
	}
	if cfg.AddSource {
		options = append(options, glog.WithAddSource(true))
	}

	root := glog.NewLogger(options...)
	if focus := trimmed(cfg.Focus); len(focus) > 0 {
		root.Focus(focus...)
	}
	return &Provider{root: root}, nil
}

// GetLogger returns the child logger for a module name, or the root logger
// for an empty name.
func (p *Provider) GetLogger(name string) interfaces.Logger {
	if p == nil || p.root == nil {
		return logging.NoOp()
	}
	if name = strings.TrimSpace(name); name == "" {
		return newAdapter(p.root)
	}
	return newAdapter(p.root.GetLogger(name))
}

// adapter forwards to go-logger. When the wrapped logger cannot hold fields
// they are kept in extra and appended to every call.
type adapter struct {
	inner glog.Logger
	extra []any
}

var (
	_ interfaces.Logger       = (*adapter)(nil)
	_ interfaces.FieldsLogger = (*adapter)(nil)
)

func newAdapter(inner glog.Logger) interfaces.Logger {
	if inner == nil {
		return logging.NoOp()
	}
	return &adapter{inner: inner}
}

func (a *adapter) args(args []any) []any {
	if len(a.extra) == 0 {
		return args
	}
	return append(slices.Clone(a.extra), args...)
}

func (a *adapter) Trace(msg string, args ...any) { a.inner.Trace(msg, a.args(args)...) }
func (a *adapter) Debug(msg string, args ...any) { a.inner.Debug(msg, a.args(args)...) }
func (a *adapter) Info(msg string, args ...any)  { a.inner.Info(msg, a.args(args)...) }
func (a *adapter) Warn(msg string, args ...any)  { a.inner.Warn(msg, a.args(args)...) }
func (a *adapter) Error(msg string, args ...any) { a.inner.Error(msg, a.args(args)...) }
func (a *adapter) Fatal(msg string, args ...any) { a.inner.Fatal(msg, a.args(args)...) }

func (a *adapter) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return a
	}
	if fl, ok := a.inner.(glog.FieldsLogger); ok {
		return &adapter{inner: fl.WithFields(maps.Clone(fields)), extra: a.extra}
	}
	extra := slices.Clone(a.extra)
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		extra = append(extra, key, fields[key])
	}
	return &adapter{inner: a.inner, extra: extra}
}

func (a *adapter) WithContext(ctx context.Context) interfaces.Logger {
	if ctx == nil {
		return a
	}
	bound := &adapter{inner: a.inner.WithContext(ctx), extra: a.extra}
	if fields := logging.ContextFields(ctx); len(fields) > 0 {
		return bound.WithFields(fields)
	}
	return bound
}

func trimmed(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

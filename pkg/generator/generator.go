// Package generator exposes the static site generation API for hosts that
// render lagstiftning revisions with their own storage or templates.
// Use NewService with Config and Dependencies to build the index, document
// and section pages plus the sitemap.
package generator

import (
	"time"

	internal "github.com/lagstiftning/go-lagstiftning/internal/generator"
)

type (
	Service          = internal.Service
	Config           = internal.Config
	BuildOptions     = internal.BuildOptions
	BuildResult      = internal.BuildResult
	Failure          = internal.Failure
	RenderedPage     = internal.RenderedPage
	RenderDiagnostic = internal.RenderDiagnostic
	Dependencies     = internal.Dependencies
	RevisionSource   = internal.RevisionSource
	TemplateContext  = internal.TemplateContext
	SiteMetadata     = internal.SiteMetadata
	PageContext      = internal.PageContext
	PageKind         = internal.PageKind
	Option           = internal.Option
)

const (
	PageKindIndex    = internal.PageKindIndex
	PageKindRevision = internal.PageKindRevision
	PageKindSection  = internal.PageKindSection
)

// NewService wires a static site generator with the supplied configuration and dependencies.
func NewService(cfg Config, deps Dependencies, opts ...Option) Service {
	return internal.NewService(cfg, deps, opts...)
}

// NewTemplateRenderer returns the renderer for the built-in page templates.
func NewTemplateRenderer() *internal.TemplateRenderer {
	return internal.NewTemplateRenderer()
}

// WithClock overrides the clock used to stamp builds.
func WithClock(clock func() time.Time) Option {
	return internal.WithClock(clock)
}

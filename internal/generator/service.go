package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lagstiftning/go-lagstiftning/internal/identity"
	"github.com/lagstiftning/go-lagstiftning/internal/logging"
	"github.com/lagstiftning/go-lagstiftning/internal/revisions"
	"github.com/lagstiftning/go-lagstiftning/pkg/interfaces"
)

var (
	errRendererRequired  = errors.New("generator: template renderer is required")
	errRevisionsRequired = errors.New("generator: revision source is required")
	errStorageRequired   = errors.New("generator: artifact store is required")
)

// Service describes the static site generator contract.
type Service interface {
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)
	Clean(ctx context.Context) error
}

// Config captures runtime behaviour toggles for the generator.
type Config struct {
	// BasePath prefixes generated links, e.g. "/las".
	BasePath        string
	BaseURL         string
	Workers         int
	CleanBuild      bool
	GenerateSitemap bool
	SiteName        string
	HomeURL         string
	ParentName      string
	ParentURL       string
}

// BuildOptions narrows the scope of a generator run.
type BuildOptions struct {
	// Identifiers limits the build to these revisions. Empty builds every
	// revision the source lists.
	Identifiers []string
	// DryRun renders pages without writing anything.
	DryRun bool
}

// BuildResult reports aggregated build metadata.
type BuildResult struct {
	Revisions    []string
	PagesBuilt   int
	PagesSkipped int
	Duration     time.Duration
	Rendered     []RenderedPage
	Diagnostics  []RenderDiagnostic
	Failures     []Failure
	Errors       []error
	DryRun       bool
}

// Failure records a revision that could not be generated. Other revisions
// are unaffected.
type Failure struct {
	Identifier string
	Kind       revisions.ErrorKind
	Field      string
	Err        error
}

func (f Failure) Error() string {
	return fmt.Sprintf("generator: revision %s: %v", f.Identifier, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// RevisionSource lists and loads revisions. *revisions.Catalog satisfies it.
type RevisionSource interface {
	List(ctx context.Context) ([]string, error)
	Load(ctx context.Context, identifier string) (*revisions.Revision, error)
}

// Dependencies lists the services required by the generator.
type Dependencies struct {
	Revisions RevisionSource
	Renderer  interfaces.TemplateRenderer
	Storage   interfaces.ArtifactStore
	Logger    interfaces.Logger
}

// Option configures the generator service.
type Option func(*service)

// WithClock overrides the clock used to stamp builds.
func WithClock(clock func() time.Time) Option {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewService wires a generator implementation with the provided configuration and dependencies.
func NewService(cfg Config, deps Dependencies, opts ...Option) Service {
	s := &service{
		cfg:    cfg,
		deps:   deps,
		now:    time.Now,
		logger: deps.Logger,
	}
	if s.logger == nil {
		s.logger = logging.NoOp()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type service struct {
	cfg    Config
	deps   Dependencies
	now    func() time.Time
	logger interfaces.Logger
}

type revisionOutcome struct {
	identifier string
	summary    RevisionSummary
	pages      []RenderedPage
	failure    *Failure
	diagnostic []RenderDiagnostic
}

func (s *service) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.deps.Renderer == nil {
		return nil, errRendererRequired
	}
	if s.deps.Revisions == nil {
		return nil, errRevisionsRequired
	}
	if s.deps.Storage == nil && !opts.DryRun {
		return nil, errStorageRequired
	}

	start := s.now()
	fullBuild := len(opts.Identifiers) == 0
	identifiers, invalid, err := s.resolveIdentifiers(ctx, opts.Identifiers)
	if err != nil {
		return nil, err
	}

	s.logger.Info("generator.build.start",
		"revisions", len(identifiers),
		"full", fullBuild,
		"dry_run", opts.DryRun,
	)

	site := s.siteMetadata(start)
	outcomes := make([]revisionOutcome, len(identifiers))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.effectiveWorkerCount(len(identifiers)))
	for i, identifier := range identifiers {
		i, identifier := i, identifier
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			outcomes[i] = s.buildRevision(groupCtx, site, identifier)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	result := &BuildResult{DryRun: opts.DryRun}
	var errs []error
	for _, failure := range invalid {
		result.Failures = append(result.Failures, failure)
		errs = append(errs, failure)
	}

	var (
		rendered  []RenderedPage
		summaries []RevisionSummary
		built     = map[string]struct{}{}
	)
	for _, outcome := range outcomes {
		result.Diagnostics = append(result.Diagnostics, outcome.diagnostic...)
		if outcome.failure != nil {
			result.Failures = append(result.Failures, *outcome.failure)
			errs = append(errs, *outcome.failure)
			continue
		}
		built[outcome.identifier] = struct{}{}
		result.Revisions = append(result.Revisions, outcome.identifier)
		summaries = append(summaries, outcome.summary)
		rendered = append(rendered, outcome.pages...)
	}

	manifest := newBuildManifest()
	cleaned := false
	if !opts.DryRun {
		if s.cfg.CleanBuild && fullBuild {
			if err := s.deps.Storage.RemoveAll(ctx, ""); err != nil {
				errs = append(errs, fmt.Errorf("generator: clean output: %w", err))
			}
			cleaned = true
		} else {
			previous, err := loadManifest(ctx, s.deps.Storage)
			if err != nil {
				errs = append(errs, err)
			} else {
				manifest = previous
			}
		}
	}

	manifest.merge(summaries, built, failedIdentifiers(result.Failures), identifiers, fullBuild)

	index, err := s.renderIndex(site, manifest.revisionSummaries())
	if err != nil {
		errs = append(errs, err)
		result.Diagnostics = append(result.Diagnostics, RenderDiagnostic{Route: indexRoute, Template: indexTemplate, Err: err})
	} else {
		rendered = append(rendered, index)
	}

	sort.Slice(rendered, func(i, j int) bool { return rendered[i].Route < rendered[j].Route })
	for i := range rendered {
		rendered[i].Checksum = computeHashFromString(rendered[i].HTML)
	}

	if opts.DryRun {
		result.Rendered = rendered
		result.PagesBuilt = len(rendered)
		result.Duration = s.now().Sub(start)
		return s.finish(result, errs)
	}

	writer := newArtifactWriter(s.deps.Storage)
	for i := range rendered {
		page := &rendered[i]
		if !cleaned && manifest.unchanged(page.Route, page.Checksum, page.Output) {
			result.PagesSkipped++
			manifest.setPage(*page, site.GeneratedAt)
			continue
		}
		if err := writer.writePage(ctx, *page); err != nil {
			errs = append(errs, err)
			continue
		}
		result.PagesBuilt++
		manifest.setPage(*page, site.GeneratedAt)
	}
	for _, output := range manifest.prune(rendered, built) {
		if err := s.deps.Storage.RemoveAll(ctx, output); err != nil {
			errs = append(errs, fmt.Errorf("generator: remove stale %s: %w", output, err))
			continue
		}
		s.logger.Debug("generator.page.removed", "output", output)
	}

	if s.cfg.GenerateSitemap {
		content := buildSitemap(site.BaseURL, site.BasePath, manifest.sitemapEntries())
		if err := writer.writeFile(ctx, sitemapFileName, content); err != nil {
			errs = append(errs, err)
		}
		if err := writer.writeFile(ctx, robotsFileName, buildRobots(site.BaseURL, site.BasePath)); err != nil {
			errs = append(errs, err)
		}
	}

	manifest.GeneratedAt = site.GeneratedAt
	if err := persistManifest(ctx, writer, manifest); err != nil {
		errs = append(errs, err)
	}

	result.Rendered = rendered
	result.Duration = s.now().Sub(start)
	return s.finish(result, errs)
}

func (s *service) finish(result *BuildResult, errs []error) (*BuildResult, error) {
	s.logger.Info("generator.build.completed",
		"revisions", len(result.Revisions),
		"pages_built", result.PagesBuilt,
		"pages_skipped", result.PagesSkipped,
		"failures", len(result.Failures),
		"duration_ms", result.Duration.Milliseconds(),
	)
	if len(errs) == 0 {
		return result, nil
	}
	result.Errors = append(result.Errors, errs...)
	return result, errors.Join(errs...)
}

// resolveIdentifiers returns the sorted, de-duplicated revisions to build.
// Requested identifiers that cannot be used are reported as failures.
func (s *service) resolveIdentifiers(ctx context.Context, requested []string) ([]string, []Failure, error) {
	if len(requested) == 0 {
		listed, err := s.deps.Revisions.List(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("generator: list revisions: %w", err)
		}
		requested = listed
	}

	seen := map[string]struct{}{}
	var (
		identifiers []string
		invalid     []Failure
	)
	for _, raw := range requested {
		identifier, err := revisions.NormalizeIdentifier(raw)
		if err != nil {
			invalid = append(invalid, Failure{Identifier: raw, Err: err})
			continue
		}
		if _, ok := seen[identifier]; ok {
			continue
		}
		seen[identifier] = struct{}{}
		identifiers = append(identifiers, identifier)
	}
	sort.Strings(identifiers)
	return identifiers, invalid, nil
}

func (s *service) buildRevision(ctx context.Context, site SiteMetadata, identifier string) revisionOutcome {
	outcome := revisionOutcome{identifier: identifier}
	logger := logging.WithRevisionContext(s.logger, identifier, "")

	rev, err := s.deps.Revisions.Load(ctx, identifier)
	if err != nil {
		failure := Failure{
			Identifier: identifier,
			Kind:       revisions.KindOf(err),
			Field:      revisions.FieldOf(err),
			Err:        err,
		}
		args := []any{"kind", string(failure.Kind), "error", err}
		if failure.Field != "" {
			args = append(args, "field", failure.Field)
		}
		logger.Error("generator.revision.failed", args...)
		outcome.failure = &failure
		return outcome
	}

	prepared, skipped := prepareSlugs(rev, logger)
	jobs := revisionPages(site, prepared, skipped)

	revisionID := identity.RevisionUUID(identifier)
	for _, job := range jobs {
		page, diagnostic := s.renderPage(job, revisionID)
		outcome.diagnostic = append(outcome.diagnostic, diagnostic)
		if diagnostic.Err != nil {
			failure := Failure{Identifier: identifier, Kind: revisions.KindRender, Err: diagnostic.Err}
			logger.Error("generator.revision.failed", "kind", string(failure.Kind), "route", job.route, "error", diagnostic.Err)
			outcome.failure = &failure
			outcome.pages = nil
			return outcome
		}
		outcome.pages = append(outcome.pages, page)
	}

	outcome.summary = summarize(prepared)
	logger.Debug("generator.revision.rendered", "pages", len(outcome.pages))
	return outcome
}

func (s *service) renderPage(job pageJob, revisionID uuid.UUID) (RenderedPage, RenderDiagnostic) {
	diagnostic := RenderDiagnostic{
		Identifier: job.identifier,
		Route:      job.route,
		Template:   job.template,
	}
	start := time.Now()
	html, err := s.deps.Renderer.RenderTemplate(job.template, job.context)
	diagnostic.Duration = time.Since(start)
	if err != nil {
		diagnostic.Err = fmt.Errorf("generator: render template %q for %s: %w", job.template, job.route, err)
		return RenderedPage{}, diagnostic
	}
	return RenderedPage{
		PageID:     identity.PageUUID(revisionID, job.route),
		Identifier: job.identifier,
		Kind:       job.context.Page.Kind,
		Route:      job.route,
		Output:     outputPath(job.route),
		Template:   job.template,
		HTML:       html,
		Duration:   diagnostic.Duration,
	}, diagnostic
}

func (s *service) renderIndex(site SiteMetadata, summaries []RevisionSummary) (RenderedPage, error) {
	job := indexPage(site, summaries)
	page, diagnostic := s.renderPage(job, uuid.Nil)
	return page, diagnostic.Err
}

func (s *service) Clean(ctx context.Context) error {
	if s.deps.Storage == nil {
		return errStorageRequired
	}
	if err := s.deps.Storage.RemoveAll(ctx, ""); err != nil {
		return fmt.Errorf("generator: clean output: %w", err)
	}
	s.logger.Info("generator.clean.completed")
	return nil
}

func (s *service) siteMetadata(now time.Time) SiteMetadata {
	name := strings.TrimSpace(s.cfg.SiteName)
	if name == "" {
		name = "Lagstiftning"
	}
	basePath := normalizeBasePath(s.cfg.BasePath)
	home := strings.TrimSpace(s.cfg.HomeURL)
	if home == "" {
		home = "/"
	}
	return SiteMetadata{
		Name:        name,
		BaseURL:     strings.TrimRight(strings.TrimSpace(s.cfg.BaseURL), "/"),
		BasePath:    basePath,
		HomeURL:     home,
		ParentName:  strings.TrimSpace(s.cfg.ParentName),
		ParentURL:   strings.TrimSpace(s.cfg.ParentURL),
		GeneratedAt: now.UTC(),
	}
}

func (s *service) effectiveWorkerCount(revisionCount int) int {
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	if revisionCount > 0 && workers > revisionCount {
		return revisionCount
	}
	return workers
}

func failedIdentifiers(failures []Failure) map[string]struct{} {
	out := make(map[string]struct{}, len(failures))
	for _, failure := range failures {
		out[failure.Identifier] = struct{}{}
	}
	return out
}

func computeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func computeHashFromString(content string) string {
	return computeHash([]byte(content))
}

package staticcmd

import (
	"context"
	"errors"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lagstiftning/go-lagstiftning/internal/commands"
	"github.com/lagstiftning/go-lagstiftning/internal/generator"
	"github.com/lagstiftning/go-lagstiftning/internal/revisions"
	"github.com/lagstiftning/go-lagstiftning/pkg/interfaces"
)

// ErrServiceUnavailable is returned when a handler has no service to delegate to.
var ErrServiceUnavailable = errors.New("staticcmd: service not configured")

// BuildSiteHandler orchestrates generator builds using the shared command handler foundation.
type BuildSiteHandler struct {
	inner *commands.Handler[BuildSiteCommand]
}

// NewBuildSiteHandler constructs a handler wired to the provided generator service.
func NewBuildSiteHandler(service generator.Service, logger interfaces.Logger, opts ...commands.HandlerOption[BuildSiteCommand]) *BuildSiteHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg BuildSiteCommand) error {
		if service == nil {
			return ErrServiceUnavailable
		}
		result, err := service.Build(ctx, generator.BuildOptions{
			Identifiers: append([]string(nil), msg.Identifiers...),
			DryRun:      msg.DryRun,
		})
		operation := "build"
		if msg.DryRun {
			operation = "dry_run"
		}
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Result: result,
			Metadata: map[string]any{
				"operation": operation,
			},
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[BuildSiteCommand]{
		commands.WithLogger[BuildSiteCommand](baseLogger),
		commands.WithOperation[BuildSiteCommand]("static.build"),
		commands.WithMessageFields(func(msg BuildSiteCommand) map[string]any {
			fields := map[string]any{}
			if len(msg.Identifiers) > 0 {
				fields["identifiers"] = len(msg.Identifiers)
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[BuildSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &BuildSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[BuildSiteCommand].
func (h *BuildSiteHandler) Execute(ctx context.Context, msg BuildSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CleanSiteHandler clears generator artifacts.
type CleanSiteHandler struct {
	inner *commands.Handler[CleanSiteCommand]
}

// NewCleanSiteHandler constructs a handler that cleans generator output.
func NewCleanSiteHandler(service generator.Service, logger interfaces.Logger, opts ...commands.HandlerOption[CleanSiteCommand]) *CleanSiteHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, _ CleanSiteCommand) error {
		if service == nil {
			return ErrServiceUnavailable
		}
		return service.Clean(ctx)
	}

	handlerOpts := []commands.HandlerOption[CleanSiteCommand]{
		commands.WithLogger[CleanSiteCommand](baseLogger),
		commands.WithOperation[CleanSiteCommand]("static.clean"),
		commands.WithTelemetry(commands.DefaultTelemetry[CleanSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CleanSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[CleanSiteCommand].
func (h *CleanSiteHandler) Execute(ctx context.Context, msg CleanSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ValidateRevisionsHandler loads revisions and reports schema, YAML and
// markdown failures without writing output.
type ValidateRevisionsHandler struct {
	inner *commands.Handler[ValidateRevisionsCommand]
}

// NewValidateRevisionsHandler constructs a handler over the revision source.
func NewValidateRevisionsHandler(source generator.RevisionSource, logger interfaces.Logger, opts ...commands.HandlerOption[ValidateRevisionsCommand]) *ValidateRevisionsHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg ValidateRevisionsCommand) error {
		if source == nil {
			return ErrServiceUnavailable
		}
		report, err := validateRevisions(ctx, source, msg.Identifiers)
		if msg.ReportCallback != nil {
			msg.ReportCallback(report)
		}
		if err != nil {
			return err
		}
		var errs []error
		for _, check := range report.Failed() {
			errs = append(errs, check.Err)
		}
		return errors.Join(errs...)
	}

	handlerOpts := []commands.HandlerOption[ValidateRevisionsCommand]{
		commands.WithLogger[ValidateRevisionsCommand](baseLogger),
		commands.WithOperation[ValidateRevisionsCommand]("revisions.validate"),
		commands.WithMessageFields(func(msg ValidateRevisionsCommand) map[string]any {
			if len(msg.Identifiers) == 0 {
				return nil
			}
			return map[string]any{"identifiers": len(msg.Identifiers)}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ValidateRevisionsCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ValidateRevisionsHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[ValidateRevisionsCommand].
func (h *ValidateRevisionsHandler) Execute(ctx context.Context, msg ValidateRevisionsCommand) error {
	return h.inner.Execute(ctx, msg)
}

func validateRevisions(ctx context.Context, source generator.RevisionSource, identifiers []string) (ValidationReport, error) {
	start := time.Now()
	if len(identifiers) == 0 {
		listed, err := source.List(ctx)
		if err != nil {
			return ValidationReport{}, err
		}
		identifiers = listed
	}

	checks := make([]RevisionCheck, len(identifiers))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.NumCPU())
	for i, identifier := range identifiers {
		i, identifier := i, identifier
		group.Go(func() error {
			check := RevisionCheck{Identifier: identifier}
			rev, err := source.Load(groupCtx, identifier)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				check.Kind = revisions.KindOf(err)
				check.Field = revisions.FieldOf(err)
				check.Err = err
			} else {
				check.Elements = len(rev.Elements)
				check.Sections = len(revisions.Sections(rev))
			}
			checks[i] = check
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return ValidationReport{}, err
	}

	sort.Slice(checks, func(i, j int) bool { return checks[i].Identifier < checks[j].Identifier })
	return ValidationReport{Revisions: checks, Duration: time.Since(start)}, nil
}

func invokeCallback(cb ResultCallback, envelope ResultEnvelope) {
	if cb == nil {
		return
	}
	cb(envelope)
}

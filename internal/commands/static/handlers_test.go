package staticcmd

import (
	"context"
	"errors"
	"os"
	"sort"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/lagstiftning/go-lagstiftning/internal/commands"
	"github.com/lagstiftning/go-lagstiftning/internal/generator"
	"github.com/lagstiftning/go-lagstiftning/internal/revisions"
)

type fakeGeneratorService struct {
	buildFunc func(ctx context.Context, opts generator.BuildOptions) (*generator.BuildResult, error)
	cleans    int
}

func (f *fakeGeneratorService) Build(ctx context.Context, opts generator.BuildOptions) (*generator.BuildResult, error) {
	if f.buildFunc == nil {
		return &generator.BuildResult{}, nil
	}
	return f.buildFunc(ctx, opts)
}

func (f *fakeGeneratorService) Clean(context.Context) error {
	f.cleans++
	return nil
}

type fakeSource struct {
	revisions map[string]*revisions.Revision
	errs      map[string]error
}

func (f *fakeSource) List(context.Context) ([]string, error) {
	var ids []string
	for id := range f.revisions {
		ids = append(ids, id)
	}
	for id := range f.errs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakeSource) Load(_ context.Context, identifier string) (*revisions.Revision, error) {
	if err, ok := f.errs[identifier]; ok {
		return nil, err
	}
	if rev, ok := f.revisions[identifier]; ok {
		return rev, nil
	}
	return nil, &revisions.LoadError{Identifier: identifier, Kind: revisions.KindNotFound, Err: os.ErrNotExist}
}

type recordingRegistry struct {
	handlers []any
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	r.handlers = append(r.handlers, handler)
	return nil
}

func TestBuildSiteHandlerExecute(t *testing.T) {
	var captured generator.BuildOptions
	svc := &fakeGeneratorService{
		buildFunc: func(_ context.Context, opts generator.BuildOptions) (*generator.BuildResult, error) {
			captured = opts
			return &generator.BuildResult{PagesBuilt: 3, DryRun: opts.DryRun}, nil
		},
	}
	handler := NewBuildSiteHandler(svc, nil)

	var envelope ResultEnvelope
	err := handler.Execute(context.Background(), BuildSiteCommand{
		Identifiers:    []string{"2024:12"},
		DryRun:         true,
		ResultCallback: func(env ResultEnvelope) { envelope = env },
	})
	if err != nil {
		t.Fatalf("execute build: %v", err)
	}
	if len(captured.Identifiers) != 1 || captured.Identifiers[0] != "2024:12" || !captured.DryRun {
		t.Fatalf("unexpected build options %+v", captured)
	}
	if envelope.Result == nil || envelope.Result.PagesBuilt != 3 {
		t.Fatalf("expected build result in callback, got %+v", envelope)
	}
	if envelope.Metadata["operation"] != "dry_run" {
		t.Fatalf("expected dry_run operation, got %v", envelope.Metadata["operation"])
	}
}

func TestBuildSiteCommandValidation(t *testing.T) {
	called := false
	svc := &fakeGeneratorService{
		buildFunc: func(context.Context, generator.BuildOptions) (*generator.BuildResult, error) {
			called = true
			return nil, nil
		},
	}
	handler := NewBuildSiteHandler(svc, nil)

	for _, ids := range [][]string{{""}, {"../etc"}, {"a/b"}} {
		err := handler.Execute(context.Background(), BuildSiteCommand{Identifiers: ids})
		if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
			t.Fatalf("expected validation error for %q, got %v", ids, err)
		}
	}
	if called {
		t.Fatal("service must not run for invalid commands")
	}
}

func TestBuildSiteHandlerClassifiesFailures(t *testing.T) {
	loadErr := &revisions.LoadError{Identifier: "2024:99", Kind: revisions.KindNotFound, Err: os.ErrNotExist}
	svc := &fakeGeneratorService{
		buildFunc: func(context.Context, generator.BuildOptions) (*generator.BuildResult, error) {
			failure := generator.Failure{Identifier: "2024:99", Kind: revisions.KindNotFound, Err: loadErr}
			return &generator.BuildResult{Failures: []generator.Failure{failure}}, errors.Join(failure)
		},
	}
	handler := NewBuildSiteHandler(svc, nil)

	var envelope ResultEnvelope
	err := handler.Execute(context.Background(), BuildSiteCommand{
		Identifiers:    []string{"2024:99"},
		ResultCallback: func(env ResultEnvelope) { envelope = env },
	})
	if err == nil {
		t.Fatal("expected build error")
	}
	if code := commands.TextCode(err); code != commands.RevisionNotFoundCode {
		t.Fatalf("expected %s, got %q", commands.RevisionNotFoundCode, code)
	}
	if !errors.Is(err, revisions.ErrNotFound) {
		t.Fatalf("expected not found in chain, got %v", err)
	}
	if envelope.Result == nil || len(envelope.Result.Failures) != 1 {
		t.Fatalf("expected partial result in callback, got %+v", envelope.Result)
	}
}

func TestCleanSiteHandlerExecute(t *testing.T) {
	svc := &fakeGeneratorService{}
	if err := NewCleanSiteHandler(svc, nil).Execute(context.Background(), CleanSiteCommand{}); err != nil {
		t.Fatalf("clean: %v", err)
	}
	if svc.cleans != 1 {
		t.Fatalf("expected one clean call, got %d", svc.cleans)
	}
}

func TestHandlersWithoutServiceFail(t *testing.T) {
	err := NewCleanSiteHandler(nil, nil).Execute(context.Background(), CleanSiteCommand{})
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestValidateRevisionsHandlerReportsFailures(t *testing.T) {
	schemaErr := &revisions.LoadError{Identifier: "2024:13", Kind: revisions.KindSchema, Err: errors.New("additionalProperties 'extra' not allowed")}
	source := &fakeSource{
		revisions: map[string]*revisions.Revision{
			"2024:12": {
				Identifier: "2024:12",
				Elements: []revisions.Element{
					{Type: revisions.SectionHeading, Slug: "1"},
					{Type: revisions.ParagraphText},
					{Type: revisions.SectionHeading, Slug: "2"},
				},
			},
		},
		errs: map[string]error{"2024:13": schemaErr},
	}
	handler := NewValidateRevisionsHandler(source, nil)

	var report ValidationReport
	err := handler.Execute(context.Background(), ValidateRevisionsCommand{
		ReportCallback: func(r ValidationReport) { report = r },
	})
	if code := commands.TextCode(err); code != commands.RevisionSchemaInvalidCode {
		t.Fatalf("expected %s, got %q (%v)", commands.RevisionSchemaInvalidCode, code, err)
	}
	if len(report.Revisions) != 2 {
		t.Fatalf("expected two checks, got %+v", report.Revisions)
	}
	if ok := report.Revisions[0]; ok.Identifier != "2024:12" || ok.Sections != 2 || ok.Elements != 3 || ok.Err != nil {
		t.Fatalf("unexpected check %+v", ok)
	}
	failed := report.Failed()
	if len(failed) != 1 || failed[0].Kind != revisions.KindSchema {
		t.Fatalf("unexpected failures %+v", failed)
	}
}

func TestValidateRevisionsHandlerPassesCleanSource(t *testing.T) {
	source := &fakeSource{revisions: map[string]*revisions.Revision{"2024:12": {Identifier: "2024:12"}}}
	err := NewValidateRevisionsHandler(source, nil).Execute(context.Background(), ValidateRevisionsCommand{Identifiers: []string{"2024:12"}})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestRegisterStaticCommands(t *testing.T) {
	reg := &recordingRegistry{}
	set, err := RegisterStaticCommands(reg, &fakeGeneratorService{}, &fakeSource{}, nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if set.Build == nil || set.Clean == nil || set.Validate == nil {
		t.Fatalf("expected all handlers, got %+v", set)
	}
	if len(reg.handlers) != 3 {
		t.Fatalf("expected 3 registered handlers, got %d", len(reg.handlers))
	}
	if _, err := RegisterStaticCommands(nil, nil, &fakeSource{}, nil); err == nil {
		t.Fatal("expected error without generator service")
	}
}

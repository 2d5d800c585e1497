package gologger

import (
	"context"
	"testing"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/lagstiftning/go-lagstiftning/internal/logging"
	"github.com/lagstiftning/go-lagstiftning/pkg/interfaces"
)

func TestNewProviderCreatesLogger(t *testing.T) {
	p, err := NewProvider(Config{Level: "debug", Format: "console", Focus: []string{" lagstiftning.test "}})
	if err != nil {
		t.Fatalf("NewProvider returned error: %v", err)
	}

	logger := p.GetLogger("lagstiftning.test")
	if logger == nil {
		t.Fatal("expected logger, got nil")
	}
	child := logging.WithFields(logger, map[string]any{"identifier": "2024:12"})
	child.Debug("adapter.initialised")
}

func TestNewProviderRejectsUnknownOptions(t *testing.T) {
	if _, err := NewProvider(Config{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if _, err := NewProvider(Config{Level: "loud"}); err == nil {
		t.Fatal("expected error for unsupported level")
	}
}

func TestNilProviderReturnsNoOp(t *testing.T) {
	var p *Provider
	if p.GetLogger("lagstiftning.test") == nil {
		t.Fatal("expected no-op logger")
	}
}

func TestAdapterForwardsCallsAndClonesFields(t *testing.T) {
	stub := &fieldsStub{}
	adapted := newAdapter(stub)

	adapted.Trace("trace", "key", "value")
	adapted.Debug("debug")
	adapted.Info("info")
	adapted.Warn("warn")
	adapted.Error("error")
	adapted.Fatal("fatal")

	fields := map[string]any{"identifier": "2024:12"}
	logging.WithFields(adapted, fields)
	fields["identifier"] = "2025:1"

	if len(stub.fields) != 1 || stub.fields[0]["identifier"] != "2024:12" {
		t.Fatalf("expected cloned fields, got %v", stub.fields)
	}
	want := []string{"trace", "debug", "info", "warn", "error", "fatal"}
	if len(stub.calls) != len(want) {
		t.Fatalf("expected %d calls, got %v", len(want), stub.calls)
	}
	for i := range want {
		if stub.calls[i] != want[i] {
			t.Fatalf("call %d: expected %q, got %q", i, want[i], stub.calls[i])
		}
	}
}

func TestAdapterAttachesContextFields(t *testing.T) {
	stub := &fieldsStub{}
	ctx := logging.ContextWithFields(context.Background(), map[string]any{"build_id": "b-1"})

	newAdapter(stub).WithContext(ctx)

	if len(stub.contexts) != 1 || stub.contexts[0] != ctx {
		t.Fatalf("expected context propagation, got %#v", stub.contexts)
	}
	if len(stub.fields) != 1 || stub.fields[0]["build_id"] != "b-1" {
		t.Fatalf("expected context fields, got %v", stub.fields)
	}
}

func TestAdapterCarriesFieldsWhenLoggerCannot(t *testing.T) {
	stub := &plainStub{}
	var logger interfaces.Logger = newAdapter(stub)
	logger = logging.WithFields(logger, map[string]any{"path": "a.yaml", "identifier": "2024:12"})

	logger.Info("revision.loaded", "elements", 3)

	want := []any{"identifier", "2024:12", "path", "a.yaml", "elements", 3}
	if len(stub.args) != len(want) {
		t.Fatalf("expected args %v, got %v", want, stub.args)
	}
	for i := range want {
		if stub.args[i] != want[i] {
			t.Fatalf("arg %d: expected %v, got %v", i, want[i], stub.args[i])
		}
	}
}

type plainStub struct {
	args []any
}

var _ glog.Logger = (*plainStub)(nil)

func (s *plainStub) Trace(string, ...any)                      {}
func (s *plainStub) Debug(string, ...any)                      {}
func (s *plainStub) Info(_ string, args ...any)                { s.args = args }
func (s *plainStub) Warn(string, ...any)                       {}
func (s *plainStub) Error(string, ...any)                      {}
func (s *plainStub) Fatal(string, ...any)                      {}
func (s *plainStub) WithContext(context.Context) glog.Logger { return s }

type fieldsStub struct {
	calls    []string
	fields   []map[string]any
	contexts []context.Context
}

var (
	_ glog.Logger       = (*fieldsStub)(nil)
	_ glog.FieldsLogger = (*fieldsStub)(nil)
)

func (s *fieldsStub) Trace(string, ...any) { s.calls = append(s.calls, "trace") }
func (s *fieldsStub) Debug(string, ...any) { s.calls = append(s.calls, "debug") }
func (s *fieldsStub) Info(string, ...any)  { s.calls = append(s.calls, "info") }
func (s *fieldsStub) Warn(string, ...any)  { s.calls = append(s.calls, "warn") }
func (s *fieldsStub) Error(string, ...any) { s.calls = append(s.calls, "error") }
func (s *fieldsStub) Fatal(string, ...any) { s.calls = append(s.calls, "fatal") }

func (s *fieldsStub) WithContext(ctx context.Context) glog.Logger {
	s.contexts = append(s.contexts, ctx)
	return s
}

func (s *fieldsStub) WithFields(fields map[string]any) glog.Logger {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	s.fields = append(s.fields, copied)
	return s
}

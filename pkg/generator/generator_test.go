package generator_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/lagstiftning/go-lagstiftning/internal/adapters/storage"
	"github.com/lagstiftning/go-lagstiftning/internal/revisions"
	"github.com/lagstiftning/go-lagstiftning/pkg/generator"
)

type mapSource map[string]*revisions.Revision

func (m mapSource) List(context.Context) ([]string, error) {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m mapSource) Load(_ context.Context, identifier string) (*revisions.Revision, error) {
	rev, ok := m[identifier]
	if !ok {
		return nil, revisions.ErrNotFound
	}
	return rev, nil
}

func TestPublicServiceBuildsIndex(t *testing.T) {
	store := storage.NewMemoryStore()
	source := mapSource{"1982:80": {
		Identifier:   "1982:80",
		Code:         "1982:80",
		Abbreviation: "LAS",
		Name:         revisions.Text{SV: "Lag om anställningsskydd", EN: "Employment Protection Act"},
		Elements: []revisions.Element{
			{Type: revisions.DocumentHeading, Text: revisions.Text{SV: "Lag", EN: "Act"}},
		},
	}}

	svc := generator.NewService(generator.Config{BasePath: "/las"}, generator.Dependencies{
		Revisions: source,
		Renderer:  generator.NewTemplateRenderer(),
		Storage:   store,
	}, generator.WithClock(func() time.Time { return time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC) }))

	result, err := svc.Build(context.Background(), generator.BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(result.Revisions) != 1 {
		t.Fatalf("unexpected revisions %v", result.Revisions)
	}
	if !strings.Contains(store.Contents("index.html"), "Employment Protection Act (LAS)") {
		t.Fatalf("expected revision link on index\n%s", store.Contents("index.html"))
	}
}

package generator

import (
	"testing"

	"github.com/lagstiftning/go-lagstiftning/internal/logging"
	"github.com/lagstiftning/go-lagstiftning/internal/revisions"
)

func TestPrepareSlugsDoesNotModifyInput(t *testing.T) {
	rev := lasRevision()
	rev.Elements[2].Slug = ""

	prepared, skipped := prepareSlugs(rev, logging.NoOp())
	if rev.Elements[2].Slug != "" {
		t.Fatalf("input revision was modified")
	}
	if prepared.Elements[2].Slug == "" {
		t.Fatalf("expected derived slug")
	}
	if len(skipped) != 0 {
		t.Fatalf("unexpected skipped sections %v", skipped)
	}
}

func TestPrepareSlugsSkipsDuplicates(t *testing.T) {
	rev := lasRevision()
	rev.Elements[4].Slug = rev.Elements[2].Slug

	_, skipped := prepareSlugs(rev, logging.NoOp())
	if _, ok := skipped[4]; !ok || len(skipped) != 1 {
		t.Fatalf("expected second heading skipped, got %v", skipped)
	}
}

func TestDeriveSlugFallsBack(t *testing.T) {
	element := revisions.Element{Type: revisions.SectionHeading}
	if got := deriveSlug(element, 7); got != "section-7" {
		t.Fatalf("expected fallback slug, got %q", got)
	}
}

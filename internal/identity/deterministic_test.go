package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDIsDeterministic(t *testing.T) {
	first := RevisionUUID("2024:12")
	second := RevisionUUID(" 2024:12 ")
	if first == uuid.Nil || first != second {
		t.Fatalf("expected stable non-nil ids, got %s and %s", first, second)
	}
	if other := RevisionUUID("2024:13"); other == first {
		t.Fatalf("expected distinct identifiers to produce distinct ids")
	}
}

func TestUUIDEmptyKey(t *testing.T) {
	if got := UUID("  "); got != uuid.Nil {
		t.Fatalf("expected uuid.Nil for empty key, got %s", got)
	}
}

func TestPageUUIDIgnoresSurroundingSlashes(t *testing.T) {
	rev := RevisionUUID("2024:12")
	if PageUUID(rev, "/2024:12/1/") != PageUUID(rev, "2024:12/1") {
		t.Fatalf("expected slash-insensitive page ids")
	}
	if PageUUID(rev, "2024:12/1") == PageUUID(rev, "2024:12/2") {
		t.Fatalf("expected distinct routes to produce distinct ids")
	}
}

func TestKeyNamespacesParts(t *testing.T) {
	if got := Key("page", "a", "b/c"); got != "lagstiftning:page:a:b/c" {
		t.Fatalf("unexpected key %q", got)
	}
}

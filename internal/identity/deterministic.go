// Package identity derives stable ids for revisions and generated pages so
// that repeated builds of the same sources report the same ids.
package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const namespace = "lagstiftning"

// Key joins kind and parts into the namespaced key hashed by UUID, e.g.
// "lagstiftning:page:<revision uuid>:2024:12/1".
func Key(kind string, parts ...string) string {
	segments := make([]string, 0, len(parts)+2)
	segments = append(segments, namespace, kind)
	segments = append(segments, parts...)
	return strings.Join(segments, ":")
}

// UUID hashes key into a UUID with go-hashid (SHA-256, normalised input). An
// empty key yields uuid.Nil. If hashing fails a name-based SHA-1 UUID is
// returned so the id stays deterministic.
func UUID(key string) uuid.UUID {
	key = strings.TrimSpace(key)
	if key == "" {
		return uuid.Nil
	}
	id, err := hashid.NewUUID(key,
		hashid.WithHashAlgorithm(hashid.SHA256),
		hashid.WithNormalization(true),
	)
	if err == nil && id != uuid.Nil {
		return id
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key))
}

// RevisionUUID identifies a revision by its source identifier.
func RevisionUUID(identifier string) uuid.UUID {
	return UUID(Key("revision", strings.TrimSpace(identifier)))
}

// PageUUID identifies a generated page by revision and route. Routes are
// compared without surrounding slashes so "/2024:12/1/" and "2024:12/1" agree.
func PageUUID(revisionID uuid.UUID, route string) uuid.UUID {
	return UUID(Key("page", revisionID.String(), strings.Trim(strings.TrimSpace(route), "/")))
}

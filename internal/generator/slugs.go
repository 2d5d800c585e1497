package generator

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-slug"

	"github.com/lagstiftning/go-lagstiftning/internal/revisions"
	"github.com/lagstiftning/go-lagstiftning/pkg/interfaces"
)

// prepareSlugs returns a copy of rev in which every section heading has a
// slug usable as a path segment. Missing slugs are derived from the
// heading's section label or text; slugs that are not url-safe are
// normalised. Headings repeating an earlier slug keep it, so document links
// point at the first section, and are returned in skipped so no second page
// overwrites it.
func prepareSlugs(rev *revisions.Revision, logger interfaces.Logger) (*revisions.Revision, map[int]struct{}) {
	prepared := *rev
	prepared.Elements = append([]revisions.Element(nil), rev.Elements...)

	seen := map[string]int{}
	skipped := map[int]struct{}{}
	for index := range prepared.Elements {
		element := &prepared.Elements[index]
		if element.Type != revisions.SectionHeading {
			continue
		}

		original := element.Slug
		switch {
		case strings.TrimSpace(original) == "":
			element.Slug = deriveSlug(*element, index)
			logger.Warn("generator.section.slug_derived",
				"index", index,
				"slug", element.Slug,
			)
		case !slug.IsValid(original):
			element.Slug = normalizeSlug(original, index)
			logger.Warn("generator.section.slug_normalized",
				"index", index,
				"from", original,
				"slug", element.Slug,
			)
		}

		if first, ok := seen[element.Slug]; ok {
			skipped[index] = struct{}{}
			logger.Warn("generator.section.slug_duplicate",
				"index", index,
				"first_index", first,
				"slug", element.Slug,
			)
			continue
		}
		seen[element.Slug] = index
	}
	return &prepared, skipped
}

func deriveSlug(element revisions.Element, index int) string {
	for _, candidate := range []string{element.Section, element.Text.EN, element.Text.SV} {
		if strings.TrimSpace(candidate) == "" {
			continue
		}
		if normalized, err := slug.Normalize(candidate); err == nil && normalized != "" {
			return normalized
		}
	}
	return fallbackSlug(index)
}

func normalizeSlug(value string, index int) string {
	normalized, err := slug.Normalize(value)
	if err != nil || normalized == "" || strings.ContainsAny(normalized, `/\`) {
		return fallbackSlug(index)
	}
	return normalized
}

func fallbackSlug(index int) string {
	return fmt.Sprintf("section-%d", index)
}

package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"github.com/lagstiftning/go-lagstiftning/internal/identity"
	"github.com/lagstiftning/go-lagstiftning/pkg/interfaces"
)

const (
	manifestFileName    = ".build-manifest.json"
	manifestFileVersion = 1
)

// buildManifest records what the output directory holds so partial builds
// can keep the index and sitemap complete and unchanged pages are not
// rewritten.
type buildManifest struct {
	Version     int
	GeneratedAt time.Time
	Revisions   map[string]manifestRevision
	Pages       map[string]manifestPage
}

type manifestRevision struct {
	Identifier   string `json:"identifier"`
	RevisionID   string `json:"revision_id"`
	Code         string `json:"code"`
	Abbreviation string `json:"abbreviation"`
	NameSV       string `json:"name_sv"`
	NameEN       string `json:"name_en"`
}

type manifestPage struct {
	PageID     string    `json:"page_id"`
	Identifier string    `json:"identifier,omitempty"`
	Kind       PageKind  `json:"kind"`
	Route      string    `json:"route"`
	Output     string    `json:"output"`
	Checksum   string    `json:"checksum"`
	RenderedAt time.Time `json:"rendered_at"`
}

// manifestFile is the on-disk form with stable ordering.
type manifestFile struct {
	Version     int                `json:"version"`
	GeneratedAt time.Time          `json:"generated_at"`
	Revisions   []manifestRevision `json:"revisions"`
	Pages       []manifestPage     `json:"pages"`
}

func newBuildManifest() *buildManifest {
	return &buildManifest{
		Version:   manifestFileVersion,
		Revisions: map[string]manifestRevision{},
		Pages:     map[string]manifestPage{},
	}
}

func parseManifest(data []byte) (*buildManifest, error) {
	manifest := newBuildManifest()
	if len(bytes.TrimSpace(data)) == 0 {
		return manifest, nil
	}
	var file manifestFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("generator: parse manifest: %w", err)
	}
	if file.Version != 0 {
		manifest.Version = file.Version
	}
	manifest.GeneratedAt = file.GeneratedAt
	for _, revision := range file.Revisions {
		manifest.Revisions[revision.Identifier] = revision
	}
	for _, page := range file.Pages {
		manifest.Pages[page.Route] = page
	}
	return manifest, nil
}

func (m *buildManifest) marshal() ([]byte, error) {
	file := manifestFile{
		Version:     m.Version,
		GeneratedAt: m.GeneratedAt,
		Revisions:   make([]manifestRevision, 0, len(m.Revisions)),
		Pages:       make([]manifestPage, 0, len(m.Pages)),
	}
	if file.Version == 0 {
		file.Version = manifestFileVersion
	}
	for _, revision := range m.Revisions {
		file.Revisions = append(file.Revisions, revision)
	}
	sort.Slice(file.Revisions, func(i, j int) bool {
		return file.Revisions[i].Identifier < file.Revisions[j].Identifier
	})
	for _, page := range m.Pages {
		file.Pages = append(file.Pages, page)
	}
	sort.Slice(file.Pages, func(i, j int) bool {
		return file.Pages[i].Route < file.Pages[j].Route
	})
	return json.MarshalIndent(file, "", "  ")
}

// merge folds one build into the manifest. Revisions built now replace
// their previous entries. A full build also forgets revisions that are no
// longer listed; failed revisions keep what earlier builds produced. Page
// records of rebuilt revisions stay until prune so unchanged pages can be
// recognised.
func (m *buildManifest) merge(
	summaries []RevisionSummary,
	built map[string]struct{},
	failed map[string]struct{},
	requested []string,
	fullBuild bool,
) {
	listed := make(map[string]struct{}, len(requested))
	for _, identifier := range requested {
		listed[identifier] = struct{}{}
	}

	for identifier := range m.Revisions {
		_, rebuilt := built[identifier]
		_, present := listed[identifier]
		_, broken := failed[identifier]
		if rebuilt || (fullBuild && !present && !broken) {
			delete(m.Revisions, identifier)
		}
	}

	for _, summary := range summaries {
		m.Revisions[summary.Identifier] = manifestRevision{
			Identifier:   summary.Identifier,
			RevisionID:   identity.RevisionUUID(summary.Identifier).String(),
			Code:         summary.Code,
			Abbreviation: summary.Abbreviation,
			NameSV:       summary.NameSV,
			NameEN:       summary.NameEN,
		}
	}

	for route, page := range m.Pages {
		if page.Identifier == "" {
			continue
		}
		if _, known := m.Revisions[page.Identifier]; !known {
			delete(m.Pages, route)
		}
	}
}

// prune drops page records of rebuilt revisions whose routes were not
// rendered again and returns their output paths.
func (m *buildManifest) prune(rendered []RenderedPage, built map[string]struct{}) []string {
	current := make(map[string]struct{}, len(rendered))
	for _, page := range rendered {
		current[page.Route] = struct{}{}
	}
	var stale []string
	for route, page := range m.Pages {
		if _, rebuilt := built[page.Identifier]; !rebuilt {
			continue
		}
		if _, ok := current[route]; ok {
			continue
		}
		stale = append(stale, page.Output)
		delete(m.Pages, route)
	}
	sort.Strings(stale)
	return stale
}

// unchanged reports whether the previous build wrote identical content to
// the same output.
func (m *buildManifest) unchanged(route, checksum, output string) bool {
	page, ok := m.Pages[route]
	return ok && page.Checksum == checksum && page.Output == output
}

func (m *buildManifest) setPage(page RenderedPage, renderedAt time.Time) {
	if previous, ok := m.Pages[page.Route]; ok && previous.Checksum == page.Checksum {
		renderedAt = previous.RenderedAt
	}
	m.Pages[page.Route] = manifestPage{
		PageID:     page.PageID.String(),
		Identifier: page.Identifier,
		Kind:       page.Kind,
		Route:      page.Route,
		Output:     page.Output,
		Checksum:   page.Checksum,
		RenderedAt: renderedAt,
	}
}

// revisionSummaries returns the recorded revisions sorted by identifier.
func (m *buildManifest) revisionSummaries() []RevisionSummary {
	out := make([]RevisionSummary, 0, len(m.Revisions))
	for _, revision := range m.Revisions {
		summary := RevisionSummary{
			Identifier:   revision.Identifier,
			Code:         revision.Code,
			Abbreviation: revision.Abbreviation,
			NameSV:       revision.NameSV,
			NameEN:       revision.NameEN,
		}
		summary.Subtitle = fmt.Sprintf("Version %s, English Translation", revision.Code)
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier < out[j].Identifier })
	return out
}

func (m *buildManifest) sitemapEntries() []sitemapEntry {
	entries := make([]sitemapEntry, 0, len(m.Pages))
	for _, page := range m.Pages {
		entries = append(entries, sitemapEntry{Route: page.Route, LastMod: page.RenderedAt})
	}
	return entries
}

func loadManifest(ctx context.Context, store interfaces.ArtifactStore) (*buildManifest, error) {
	data, err := store.ReadFile(ctx, manifestFileName)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return newBuildManifest(), nil
		}
		return nil, fmt.Errorf("generator: read manifest: %w", err)
	}
	return parseManifest(data)
}

func persistManifest(ctx context.Context, writer *artifactWriter, manifest *buildManifest) error {
	data, err := manifest.marshal()
	if err != nil {
		return err
	}
	return writer.writeFile(ctx, manifestFileName, string(data))
}

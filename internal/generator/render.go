package generator

import (
	"html/template"
	"time"

	"github.com/google/uuid"

	"github.com/lagstiftning/go-lagstiftning/internal/revisions"
)

const (
	indexTemplate    = "index.html"
	documentTemplate = "document.html"
)

// PageKind tells templates which view they render.
type PageKind string

const (
	PageKindIndex    PageKind = "index"
	PageKindRevision PageKind = "revision"
	PageKindSection  PageKind = "section"
)

// TemplateContext captures the data contract passed to TemplateRenderer implementations.
type TemplateContext struct {
	Site SiteMetadata
	Page PageContext
}

// SiteMetadata exposes site-wide values to templates.
type SiteMetadata struct {
	Name        string
	BaseURL     string
	BasePath    string
	HomeURL     string
	ParentName  string
	ParentURL   string
	GeneratedAt time.Time
}

// PageContext is the view model of a single page.
type PageContext struct {
	Kind        PageKind
	Identifier  string
	Route       string
	Canonical   string
	Title       string
	Description string
	Heading     string
	Subheading  string
	Breadcrumbs []Breadcrumb
	Rows        []Row
	Revisions   []RevisionSummary
}

// Breadcrumb is one step of a page's breadcrumb trail. Href is empty for
// steps that have no page of their own.
type Breadcrumb struct {
	Label string
	Href  string
}

// Row shows one element with the Swedish text on the left and the English
// text on the right. Both sides are ready to embed: paragraph text is the
// loader's sanitised markup, everything else is escaped.
type Row struct {
	Type revisions.ElementType
	SV   template.HTML
	EN   template.HTML
	Href string
}

// RevisionSummary describes a revision on the site index.
type RevisionSummary struct {
	Identifier   string
	Code         string
	Abbreviation string
	NameSV       string
	NameEN       string
	Subtitle     string
	Href         string
}

// RenderedPage captures the rendered HTML output for a page.
type RenderedPage struct {
	PageID     uuid.UUID
	Identifier string
	Kind       PageKind
	Route      string
	Output     string
	Template   string
	HTML       string
	Duration   time.Duration
	Checksum   string
}

// RenderDiagnostic records rendering timing and errors for individual pages.
type RenderDiagnostic struct {
	Identifier string
	Route      string
	Template   string
	Duration   time.Duration
	Err        error
}

type pageJob struct {
	identifier string
	route      string
	template   string
	context    TemplateContext
}

// revisionPages lists the document page and one page per section of rev.
// Sections whose index is in skipped get no page.
func revisionPages(site SiteMetadata, rev *revisions.Revision, skipped map[int]struct{}) []pageJob {
	documentHref := link(site.BasePath, documentRoute(rev.Identifier))

	rows := make([]Row, 0, len(rev.Elements))
	for _, element := range rev.Elements {
		row := newRow(element)
		if element.Type == revisions.SectionHeading && element.Slug != "" {
			row.Href = link(site.BasePath, sectionRoute(rev.Identifier, element.Slug))
		}
		rows = append(rows, row)
	}

	revisionCrumbs := append(siteBreadcrumbs(site), Breadcrumb{
		Label: rev.Abbreviation,
		Href:  documentHref,
	})

	jobs := []pageJob{{
		identifier: rev.Identifier,
		route:      documentRoute(rev.Identifier),
		template:   documentTemplate,
		context: TemplateContext{
			Site: site,
			Page: PageContext{
				Kind:        PageKindRevision,
				Identifier:  rev.Identifier,
				Route:       documentRoute(rev.Identifier),
				Canonical:   canonical(site, documentRoute(rev.Identifier)),
				Title:       rev.Name.EN,
				Description: rev.Subtitle(),
				Heading:     rev.Name.EN,
				Subheading:  rev.Subtitle(),
				Breadcrumbs: revisionCrumbs,
				Rows:        rows,
			},
		},
	}}

	for _, section := range revisions.Sections(rev) {
		if _, skip := skipped[section.Index]; skip {
			continue
		}
		route := sectionRoute(rev.Identifier, section.Slug())

		crumbs := append([]Breadcrumb(nil), revisionCrumbs...)
		if section.Context != nil {
			crumbs = append(crumbs, Breadcrumb{Label: section.Context.Text.EN})
		}
		crumbs = append(crumbs, Breadcrumb{
			Label: section.Title,
			Href:  link(site.BasePath, route),
		})

		sectionRows := make([]Row, 0, len(section.Elements))
		for _, element := range section.Elements {
			sectionRows = append(sectionRows, newRow(element))
		}

		jobs = append(jobs, pageJob{
			identifier: rev.Identifier,
			route:      route,
			template:   documentTemplate,
			context: TemplateContext{
				Site: site,
				Page: PageContext{
					Kind:        PageKindSection,
					Identifier:  rev.Identifier,
					Route:       route,
					Canonical:   canonical(site, route),
					Title:       section.PageTitle(rev),
					Description: section.Description,
					Heading:     section.PageTitle(rev),
					Subheading:  rev.Subtitle(),
					Breadcrumbs: crumbs,
					Rows:        sectionRows,
				},
			},
		})
	}
	return jobs
}

func indexPage(site SiteMetadata, summaries []RevisionSummary) pageJob {
	listed := make([]RevisionSummary, 0, len(summaries))
	for _, summary := range summaries {
		summary.Href = link(site.BasePath, documentRoute(summary.Identifier))
		listed = append(listed, summary)
	}
	return pageJob{
		route:    indexRoute,
		template: indexTemplate,
		context: TemplateContext{
			Site: site,
			Page: PageContext{
				Kind:        PageKindIndex,
				Route:       indexRoute,
				Canonical:   canonical(site, indexRoute),
				Title:       site.Name,
				Description: "Swedish legislation with English translations",
				Heading:     site.Name,
				Breadcrumbs: siteBreadcrumbs(site),
				Revisions:   listed,
			},
		},
	}
}

func summarize(rev *revisions.Revision) RevisionSummary {
	return RevisionSummary{
		Identifier:   rev.Identifier,
		Code:         rev.Code,
		Abbreviation: rev.Abbreviation,
		NameSV:       rev.Name.SV,
		NameEN:       rev.Name.EN,
		Subtitle:     rev.Subtitle(),
	}
}

func siteBreadcrumbs(site SiteMetadata) []Breadcrumb {
	var crumbs []Breadcrumb
	if site.ParentName != "" {
		crumbs = append(crumbs, Breadcrumb{Label: site.ParentName, Href: site.ParentURL})
	}
	return append(crumbs, Breadcrumb{Label: site.Name, Href: site.HomeURL})
}

func newRow(element revisions.Element) Row {
	row := Row{Type: element.Type}
	if element.Type == revisions.ParagraphText {
		row.SV = template.HTML(element.Text.SV)
		row.EN = template.HTML(element.Text.EN)
		return row
	}
	row.SV = template.HTML(template.HTMLEscapeString(element.Text.SV))
	row.EN = template.HTML(template.HTMLEscapeString(element.Text.EN))
	return row
}

func canonical(site SiteMetadata, route string) string {
	if site.BaseURL == "" {
		return ""
	}
	return site.BaseURL + link(site.BasePath, route)
}

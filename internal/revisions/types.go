package revisions

import "fmt"

// ElementType tags an element with its place in the heading hierarchy.
type ElementType string

const (
	DocumentHeading ElementType = "document_heading"
	ChapterHeading  ElementType = "chapter_heading"
	GroupHeading    ElementType = "group_heading"
	SectionHeading  ElementType = "section_heading"
	ParagraphText   ElementType = "paragraph_text"
)

// IsHeading reports whether t is one of the heading variants.
func (t ElementType) IsHeading() bool {
	switch t {
	case DocumentHeading, ChapterHeading, GroupHeading, SectionHeading:
		return true
	}
	return false
}

// IsContext reports whether t can be the chapter or group a section sits in.
func (t ElementType) IsContext() bool {
	return t == ChapterHeading || t == GroupHeading
}

// Language identifies one side of a Text.
type Language string

const (
	Swedish Language = "sv"
	English Language = "en"
)

// Languages lists the languages every Text carries, in display order.
var Languages = []Language{Swedish, English}

// Text holds the same content in Swedish and English.
type Text struct {
	SV string `json:"sv"`
	EN string `json:"en"`
}

// Get returns the text for lang, "" for unknown languages.
func (t Text) Get(lang Language) string {
	switch lang {
	case Swedish:
		return t.SV
	case English:
		return t.EN
	}
	return ""
}

// Element is one entry of a revision's element list. Paragraph text holds
// rendered HTML once loaded; heading text is plain display text.
type Element struct {
	Type      ElementType `json:"type"`
	Text      Text        `json:"text"`
	Chapter   string      `json:"chapter,omitempty"`
	Section   string      `json:"section,omitempty"`
	Slug      string      `json:"slug,omitempty"`
	Paragraph string      `json:"paragraph,omitempty"`
}

// Revision is one versioned snapshot of a statute.
type Revision struct {
	// Identifier is the source file name without extension, for example
	// "2024:12". It is not part of the source document.
	Identifier   string    `json:"-"`
	Name         Text      `json:"name"`
	Code         string    `json:"code"`
	Abbreviation string    `json:"abbreviation"`
	Elements     []Element `json:"elements"`
}

// Subtitle is the line shown under the revision name on every page.
func (r *Revision) Subtitle() string {
	return fmt.Sprintf("Version %s, English Translation", r.Code)
}

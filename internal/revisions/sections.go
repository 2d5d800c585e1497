package revisions

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Section is the view of a revision from one section heading up to the next.
// It is derived on demand and never stored.
type Section struct {
	// Heading is the section heading the section starts at.
	Heading Element
	// Index is the position of Heading in the revision's elements.
	Index int
	// Elements is the section's element slice, prefixed with Context when
	// there is one.
	Elements []Element
	// Context is the nearest chapter or group heading before Heading, nil if
	// none precedes it.
	Context *Element
	// Title is the heading's English text, prefixed with "Chapter <n>" when
	// the heading carries a chapter label.
	Title string
	// Description is the plain text of every paragraph in Elements, joined
	// with single spaces.
	Description string
}

// Slug returns the slug of the section heading.
func (s Section) Slug() string {
	return s.Heading.Slug
}

// PageTitle returns "<heading> of <revision name>".
func (s Section) PageTitle(rev *Revision) string {
	return fmt.Sprintf("%s of %s", s.Heading.Text.EN, rev.Name.EN)
}

// Sections returns one Section per section heading, in document order. A
// revision without section headings has no sections. rev is not modified.
func Sections(rev *Revision) []Section {
	if rev == nil {
		return nil
	}
	var sections []Section
	for index, element := range rev.Elements {
		if element.Type != SectionHeading {
			continue
		}
		sections = append(sections, sectionAt(rev.Elements, index))
	}
	return sections
}

// FindSection returns the first section whose heading has slug.
func FindSection(rev *Revision, slug string) (Section, bool) {
	if rev == nil || slug == "" {
		return Section{}, false
	}
	for index, element := range rev.Elements {
		if element.Type == SectionHeading && element.Slug == slug {
			return sectionAt(rev.Elements, index), true
		}
	}
	return Section{}, false
}

func sectionAt(elements []Element, start int) Section {
	end := len(elements)
	for i := start + 1; i < len(elements); i++ {
		if elements[i].Type == SectionHeading {
			end = i
			break
		}
	}

	context := nearestContext(elements, start)

	slice := make([]Element, 0, end-start+1)
	if context != nil {
		slice = append(slice, *context)
	}
	slice = append(slice, elements[start:end]...)

	heading := elements[start]
	return Section{
		Heading:     heading,
		Index:       start,
		Elements:    slice,
		Context:     context,
		Title:       sectionTitle(heading),
		Description: describe(slice),
	}
}

// nearestContext scans backwards from start over the whole prefix of the
// document, so a chapter heading stays in effect for every following section
// until another chapter or group heading appears.
func nearestContext(elements []Element, start int) *Element {
	for i := start - 1; i >= 0; i-- {
		if elements[i].Type.IsContext() {
			context := elements[i]
			return &context
		}
	}
	return nil
}

func sectionTitle(heading Element) string {
	if heading.Chapter != "" {
		return fmt.Sprintf("Chapter %s %s", heading.Chapter, heading.Text.EN)
	}
	return heading.Text.EN
}

func describe(elements []Element) string {
	parts := make([]string, 0, len(elements))
	for _, element := range elements {
		if element.Type != ParagraphText {
			continue
		}
		if text := PlainText(element.Text.EN); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// PlainText returns the text content of an HTML fragment with entities
// decoded and whitespace collapsed to single spaces.
func PlainText(markup string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(markup))
	var b strings.Builder
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(tokenizer.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			if _, ok := blockTags[string(name)]; ok {
				b.WriteByte(' ')
			}
		}
	}
}

// blockTags separate words that have no whitespace between them in the
// markup, e.g. "</li><li>".
var blockTags = map[string]struct{}{
	"p": {}, "br": {}, "li": {}, "ol": {}, "ul": {}, "blockquote": {},
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"pre": {}, "hr": {}, "div": {}, "table": {}, "tr": {}, "td": {}, "th": {},
	"dl": {}, "dt": {}, "dd": {},
}

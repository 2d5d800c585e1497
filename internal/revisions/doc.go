// Package revisions loads bilingual statute revisions from YAML source files
// and derives their navigable sections.
//
// A revision is a flat, ordered list of elements. Structure (document,
// chapter, group, section, paragraph) is positional: sections are found by
// scanning for section headings and the chapter or group a section belongs to
// is the nearest chapter or group heading before it.
package revisions

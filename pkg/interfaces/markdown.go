package interfaces

// MarkdownParser converts author-facing Markdown into embeddable HTML.
// Implementations must be safe for concurrent use. Unless ParseOptions.Unsafe
// is set they must never emit raw HTML or executable URLs from the source:
// rendered output is embedded into pages without any further escaping.
type MarkdownParser interface {
	// Parse renders Markdown using the parser's default options.
	Parse(markdown []byte) ([]byte, error)
	// ParseWithOptions renders Markdown using the supplied overrides.
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions customises Markdown rendering.
type ParseOptions struct {
	// Extensions lists goldmark extension names (gfm, table, strikethrough,
	// linkify, tasklist, definition, footnote). Empty means plain CommonMark.
	Extensions []string
	// HardWraps renders soft line breaks as <br>.
	HardWraps bool
	// Unsafe passes raw HTML and dangerous link schemes through untouched.
	Unsafe bool
	// OrderedListClasses is added to the class attribute of every <ol>.
	// Nil selects the default set.
	OrderedListClasses []string
	// UnorderedListClasses is added to the class attribute of every <ul>.
	// Nil selects the default set.
	UnorderedListClasses []string
}

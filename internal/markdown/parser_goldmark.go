package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/lagstiftning/go-lagstiftning/pkg/interfaces"
)

var (
	// DefaultOrderedListClasses decorate every <ol>: decimal numbering, left
	// padding and top margin.
	DefaultOrderedListClasses = []string{"list-decimal", "pl-6", "mt-4"}
	// DefaultUnorderedListClasses decorate every <ul>: disc bullets, left
	// padding and top margin.
	DefaultUnorderedListClasses = []string{"list-disc", "pl-6", "mt-4"}
)

// GoldmarkParser implements interfaces.MarkdownParser using the goldmark engine.
// The parser is stateless so a single instance can be shared between
// goroutines.
type GoldmarkParser struct {
	defaultOptions interfaces.ParseOptions
	logger         interfaces.Logger
}

// ParserOption customises a GoldmarkParser.
type ParserOption func(*GoldmarkParser)

// WithParserLogger sets the logger that reports ignored configuration.
func WithParserLogger(logger interfaces.Logger) ParserOption {
	return func(p *GoldmarkParser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewGoldmarkParser constructs a parser with the given defaults. The zero
// value of ParseOptions renders plain CommonMark in safe mode with the
// default list classes. Unknown extension names are ignored.
func NewGoldmarkParser(defaults interfaces.ParseOptions, opts ...ParserOption) *GoldmarkParser {
	p := &GoldmarkParser{
		defaultOptions: defaults,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger != nil {
		for _, name := range defaults.Extensions {
			if !KnownExtension(name) {
				p.logger.Warn("markdown.extension.unknown", "extension", name)
			}
		}
	}
	return p
}

// Parse renders Markdown into HTML using the parser's default configuration.
func (p *GoldmarkParser) Parse(markdown []byte) ([]byte, error) {
	return p.ParseWithOptions(markdown, p.defaultOptions)
}

// ParseString is Parse for string input and output.
func (p *GoldmarkParser) ParseString(markdown string) (string, error) {
	out, err := p.Parse([]byte(markdown))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ParseWithOptions renders Markdown into HTML using the provided options.
func (p *GoldmarkParser) ParseWithOptions(markdown []byte, opts interfaces.ParseOptions) ([]byte, error) {
	engine := newGoldmarkEngine(opts)
	var buf bytes.Buffer
	if err := engine.Convert(markdown, &buf); err != nil {
		return nil, fmt.Errorf("markdown parse: %w", err)
	}
	return buf.Bytes(), nil
}

func newGoldmarkEngine(opts interfaces.ParseOptions) goldmark.Markdown {
	exts := collectExtensions(opts.Extensions)

	ordered := opts.OrderedListClasses
	if ordered == nil {
		ordered = DefaultOrderedListClasses
	}
	unordered := opts.UnorderedListClasses
	if unordered == nil {
		unordered = DefaultUnorderedListClasses
	}

	parserOptions := []parser.Option{
		parser.WithASTTransformers(
			util.Prioritized(newListClassTransformer(ordered, unordered), 100),
		),
	}

	rendererOptions := []renderer.Option{}
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	// Without WithUnsafe goldmark drops raw HTML and blanks dangerous link
	// destinations (javascript:, vbscript:, file:, non-image data:).
	if opts.Unsafe {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	engineOptions := []goldmark.Option{
		goldmark.WithParserOptions(parserOptions...),
	}
	if len(rendererOptions) > 0 {
		engineOptions = append(engineOptions, goldmark.WithRendererOptions(rendererOptions...))
	}
	if len(exts) > 0 {
		engineOptions = append(engineOptions, goldmark.WithExtensions(exts...))
	}

	return goldmark.New(engineOptions...)
}

// listClassTransformer adds a class set to every list node in the document,
// nested lists included.
type listClassTransformer struct {
	ordered   []byte
	unordered []byte
}

func newListClassTransformer(ordered, unordered []string) *listClassTransformer {
	return &listClassTransformer{
		ordered:   []byte(joinClasses(ordered)),
		unordered: []byte(joinClasses(unordered)),
	}
}

func (t *listClassTransformer) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		list, ok := node.(*ast.List)
		if !ok {
			return ast.WalkContinue, nil
		}
		classes := t.unordered
		if list.IsOrdered() {
			classes = t.ordered
		}
		if len(classes) == 0 {
			return ast.WalkContinue, nil
		}
		list.SetAttributeString("class", mergeClassAttribute(list, classes))
		return ast.WalkContinue, nil
	})
}

func mergeClassAttribute(node ast.Node, classes []byte) []byte {
	existing, ok := node.AttributeString("class")
	if !ok {
		return classes
	}
	current, ok := existing.([]byte)
	if !ok || len(bytes.TrimSpace(current)) == 0 {
		return classes
	}
	merged := strings.Fields(string(current))
	for _, class := range strings.Fields(string(classes)) {
		if !containsString(merged, class) {
			merged = append(merged, class)
		}
	}
	return []byte(strings.Join(merged, " "))
}

func joinClasses(classes []string) string {
	out := make([]string, 0, len(classes))
	for _, class := range classes {
		for _, field := range strings.Fields(class) {
			if !containsString(out, field) {
				out = append(out, field)
			}
		}
	}
	return strings.Join(out, " ")
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
	"typographer":   extension.Typographer,
}

// KnownExtension reports whether name is a supported extension name.
func KnownExtension(name string) bool {
	_, ok := extensionRegistry[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return nil
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}

	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}
		extenders = append(extenders, ext)
		seen[key] = struct{}{}
	}

	return extenders
}

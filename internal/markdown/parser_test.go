package markdown

import (
	"context"
	"strings"
	"testing"

	"github.com/yuin/goldmark/ast"
	"golang.org/x/net/html"

	"github.com/lagstiftning/go-lagstiftning/pkg/interfaces"
)

const nestedLists = `Intro paragraph.

1. one
   - a
   - b
2. two
   1. inner
      - deep

- top
`

func TestGoldmarkParserDecoratesEveryList(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	out, err := parser.Parse([]byte(nestedLists))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	counts := countLists(t, string(out))
	if counts["ol"] != 2 {
		t.Fatalf("expected 2 ordered lists, got %d in %s", counts["ol"], out)
	}
	if counts["ul"] != 3 {
		t.Fatalf("expected 3 unordered lists, got %d in %s", counts["ul"], out)
	}
	if counts["ol:list-decimal pl-6 mt-4"] != 2 {
		t.Fatalf("expected every <ol> to carry the ordered classes: %s", out)
	}
	if counts["ul:list-disc pl-6 mt-4"] != 3 {
		t.Fatalf("expected every <ul> to carry the unordered classes: %s", out)
	}
}

func TestGoldmarkParserCustomClasses(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{
		OrderedListClasses:   []string{"steps"},
		UnorderedListClasses: []string{"bullets", "compact bullets"},
	})

	out, err := parser.Parse([]byte(nestedLists))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	counts := countLists(t, string(out))
	if counts["ol:steps"] != 2 || counts["ul:bullets compact"] != 3 {
		t.Fatalf("unexpected class counts %#v in %s", counts, out)
	}
}

func TestGoldmarkParserEmptyClassSetLeavesListsBare(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{
		OrderedListClasses:   []string{},
		UnorderedListClasses: []string{},
	})

	out, err := parser.Parse([]byte("- a\n- b\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if strings.Contains(string(out), "class=") {
		t.Fatalf("expected no class attribute, got %s", out)
	}
}

func TestGoldmarkParserNeutralisesExecutableContent(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	source := "<script>alert(1)</script>\n\nSee [link](javascript:alert(1)) and <img src=x onerror=alert(1)>.\n"
	out, err := parser.ParseString(source)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}

	lowered := strings.ToLower(out)
	for _, forbidden := range []string{"<script", "javascript:", "onerror", "<img"} {
		if strings.Contains(lowered, forbidden) {
			t.Fatalf("expected %q to be neutralised, got %s", forbidden, out)
		}
	}
	if !strings.Contains(out, "<a href=\"\">link</a>") {
		t.Fatalf("expected link text to survive with an empty href, got %s", out)
	}
}

func TestGoldmarkParserUnsafePassesRawHTML(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	out, err := parser.ParseWithOptions([]byte("<span>raw</span>\n"), interfaces.ParseOptions{Unsafe: true})
	if err != nil {
		t.Fatalf("ParseWithOptions: %v", err)
	}
	if !strings.Contains(string(out), "<span>raw</span>") {
		t.Fatalf("expected raw HTML to pass through, got %s", out)
	}
}

func TestGoldmarkParserIsDeterministic(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	sv, err := parser.ParseString("Lagen gäller *inte*:\n\n1. första\n2. andra\n")
	if err != nil {
		t.Fatalf("ParseString sv: %v", err)
	}
	en, err := parser.ParseString("The act does *not* apply:\n\n1. first\n2. second\n")
	if err != nil {
		t.Fatalf("ParseString en: %v", err)
	}
	again, err := parser.ParseString("Lagen gäller *inte*:\n\n1. första\n2. andra\n")
	if err != nil {
		t.Fatalf("ParseString sv again: %v", err)
	}
	if sv != again {
		t.Fatalf("expected identical output for identical input")
	}

	svCounts := countLists(t, sv)
	enCounts := countLists(t, en)
	if svCounts["ol"] != 1 || enCounts["ol"] != 1 {
		t.Fatalf("expected one ordered list per language, got sv=%v en=%v", svCounts, enCounts)
	}
	if !strings.Contains(sv, "<em>inte</em>") || !strings.Contains(en, "<em>not</em>") {
		t.Fatalf("expected emphasis to render: sv=%s en=%s", sv, en)
	}
}

func TestGoldmarkParserHardWraps(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{HardWraps: true})

	out, err := parser.ParseString("line one\nline two\n")
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if !strings.Contains(out, "<br>") {
		t.Fatalf("expected <br> for soft break, got %s", out)
	}
}

func TestGoldmarkParserExtensions(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	plain, err := parser.ParseString("~~gone~~\n")
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if strings.Contains(plain, "<del>") {
		t.Fatalf("expected plain CommonMark by default, got %s", plain)
	}

	out, err := parser.ParseWithOptions([]byte("~~gone~~\n"), interfaces.ParseOptions{Extensions: []string{"Strikethrough", "unknown"}})
	if err != nil {
		t.Fatalf("ParseWithOptions: %v", err)
	}
	if !strings.Contains(string(out), "<del>gone</del>") {
		t.Fatalf("expected strikethrough extension, got %s", out)
	}
}

func TestMergeClassAttributeKeepsExistingClasses(t *testing.T) {
	list := ast.NewList('-')
	list.SetAttributeString("class", []byte("custom pl-6"))

	got := string(mergeClassAttribute(list, []byte("list-disc pl-6 mt-4")))
	if got != "custom pl-6 list-disc mt-4" {
		t.Fatalf("unexpected merged classes %q", got)
	}
}

func TestKnownExtension(t *testing.T) {
	if !KnownExtension(" GFM ") {
		t.Fatalf("expected gfm to be known")
	}
	if KnownExtension("mermaid") {
		t.Fatalf("expected mermaid to be unknown")
	}
}

type warnLogger struct {
	warnings []string
}

func (l *warnLogger) Trace(string, ...any) {}
func (l *warnLogger) Debug(string, ...any) {}
func (l *warnLogger) Info(string, ...any)  {}
func (l *warnLogger) Warn(msg string, args ...any) {
	l.warnings = append(l.warnings, msg)
}
func (l *warnLogger) Error(string, ...any)                         {}
func (l *warnLogger) Fatal(string, ...any)                         {}
func (l *warnLogger) WithContext(context.Context) interfaces.Logger { return l }

func TestGoldmarkParserWarnsAboutUnknownExtensions(t *testing.T) {
	logger := &warnLogger{}
	parser := NewGoldmarkParser(interfaces.ParseOptions{Extensions: []string{"gfm", "mermaid"}}, WithParserLogger(logger))

	if len(logger.warnings) != 1 || logger.warnings[0] != "markdown.extension.unknown" {
		t.Fatalf("expected one unknown extension warning, got %v", logger.warnings)
	}
	if _, err := parser.ParseString("~~gone~~"); err != nil {
		t.Fatalf("parse: %v", err)
	}
}

// countLists tallies list containers by tag and by "tag:class".
func countLists(t *testing.T, markup string) map[string]int {
	t.Helper()
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("html.Parse: %v", err)
	}
	counts := map[string]int{}
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && (node.Data == "ol" || node.Data == "ul") {
			counts[node.Data]++
			for _, attr := range node.Attr {
				if attr.Key == "class" {
					counts[node.Data+":"+attr.Val]++
				}
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	return counts
}

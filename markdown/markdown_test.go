package markdown

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func render(t *testing.T, md string) string {
	t.Helper()
	got, err := New().Render(md)
	if err != nil {
		t.Fatalf("Render(%q) failed: %v", md, err)
	}
	return got
}

func TestRenderHeadings(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"# Heading 1", `<h1 id="heading-1">Heading 1</h1>`},
		{"## Heading 2", `<h2 id="heading-2">Heading 2</h2>`},
		{"### Heading 3", `<h3 id="heading-3">Heading 3</h3>`},
	}
	for _, tt := range tests {
		got := strings.TrimSpace(render(t, tt.input))
		if got != tt.expected {
			t.Errorf("Render(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestRenderInline(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"**bold**", "<strong>bold</strong>"},
		{"*italic*", "<em>italic</em>"},
		{"use `fmt.Println` here", "<code>fmt.Println</code>"},
		{"~~gone~~", "<del>gone</del>"},
	}
	for _, tt := range tests {
		got := render(t, tt.input)
		if !strings.Contains(got, tt.expected) {
			t.Errorf("Render(%q) = %q, want it to contain %q", tt.input, got, tt.expected)
		}
	}
}

func TestRenderLists(t *testing.T) {
	got := render(t, "- item 1\n- item 2")
	if !strings.Contains(got, "<ul>") || !strings.Contains(got, "<li>item 1</li>") {
		t.Errorf("unordered list: %q", got)
	}
	got = render(t, "1. first\n2. second")
	if !strings.Contains(got, "<ol>") || !strings.Contains(got, "<li>second</li>") {
		t.Errorf("ordered list: %q", got)
	}
}

func TestRenderTable(t *testing.T) {
	got := render(t, "| a | b |\n|---|---|\n| 1 | 2 |")
	for _, want := range []string{"<table>", "<th>a</th>", "<td>2</td>"} {
		if !strings.Contains(got, want) {
			t.Errorf("table output missing %q: %q", want, got)
		}
	}
}

func TestRenderExternalLinkOpensNewTab(t *testing.T) {
	got := render(t, "[Google](https://google.com)")
	if !strings.Contains(got, `target="_blank"`) || !strings.Contains(got, `rel="noopener noreferrer"`) {
		t.Errorf("external link should open in a new tab: %q", got)
	}
	got = render(t, "[feed](/feed)")
	if strings.Contains(got, "target=") {
		t.Errorf("internal link should not open in a new tab: %q", got)
	}
}

func TestRenderImagesLoadLazilyAfterFirst(t *testing.T) {
	got := render(t, "![a](/a.png)\n\n![b](/b.png)")
	if strings.Count(got, `loading="lazy"`) != 1 {
		t.Errorf("want exactly one lazy image: %q", got)
	}
	if strings.Count(got, `decoding="async"`) != 2 {
		t.Errorf("want async decoding on both images: %q", got)
	}
}

func TestRenderRawHTMLPassesThrough(t *testing.T) {
	got := render(t, "<div class=\"note\">hi</div>")
	if !strings.Contains(got, `<div class="note">hi</div>`) {
		t.Errorf("raw html should pass through: %q", got)
	}
}

func TestRenderCodeBlockWithLanguage(t *testing.T) {
	got := render(t, "```go\nfunc main() {}\n```")
	if !strings.Contains(got, `<span class="kd">func</span>`) {
		t.Errorf("go keyword should be highlighted: %q", got)
	}
	if !strings.Contains(got, `<span class="code-lang">go</span>`) {
		t.Errorf("code block should have language badge: %q", got)
	}
	if !strings.Contains(got, `class="chroma"`) {
		t.Errorf("code block should use chroma classes: %q", got)
	}
}

func TestRenderCodeBlockUnknownLanguage(t *testing.T) {
	got := render(t, "```nosuchlang\nsome <plain> text\n```")
	if !strings.Contains(got, "some &lt;plain&gt; text") {
		t.Errorf("unknown language should render escaped plain text: %q", got)
	}
	if strings.Contains(got, `class="kd"`) {
		t.Errorf("unknown language should not be tokenized as code: %q", got)
	}
}

func TestRenderCodeBlockWithoutLanguage(t *testing.T) {
	got := render(t, "```\nplain code\n```")
	if strings.Contains(got, "code-lang") {
		t.Errorf("code block without language should not have badge: %q", got)
	}
	if !strings.Contains(got, "plain code") {
		t.Errorf("code block missing content: %q", got)
	}
}

func TestRenderDeterministic(t *testing.T) {
	r := New()
	md := "# Title\n\nText with `code`.\n\n```js\nconst a = 1;\n```\n"
	first, err := r.Render(md)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := r.Render(md)
		if err != nil {
			t.Fatal(err)
		}
		if again != first {
			t.Fatalf("render %d differs:\n%s\n---\n%s", i, again, first)
		}
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	if err := New().Component("**hi**").Render(context.Background(), &buf); err != nil {
		t.Fatalf("Component render failed: %v", err)
	}
	if !strings.Contains(buf.String(), "<strong>hi</strong>") {
		t.Errorf("Component output = %q", buf.String())
	}
}

func TestWriteCSS(t *testing.T) {
	var buf bytes.Buffer
	if err := New(WithStyle("monokai")).WriteCSS(&buf); err != nil {
		t.Fatalf("WriteCSS failed: %v", err)
	}
	css := buf.String()
	if !strings.Contains(css, ".chroma") || !strings.Contains(css, ".kd") {
		t.Errorf("stylesheet missing chroma classes: %q", css)
	}
}

// Package markdown renders post bodies to HTML with goldmark and highlights
// fenced code with chroma.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// DefaultStyle is the chroma style used when none is configured.
const DefaultStyle = "github-dark"

// Renderer converts markdown to HTML. It is safe for concurrent use.
type Renderer struct {
	md        goldmark.Markdown
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithStyle selects the chroma style used by WriteCSS. Unknown names fall
// back to chroma's default style.
func WithStyle(name string) Option {
	return func(r *Renderer) {
		if name != "" {
			r.style = styles.Get(name)
		}
	}
}

// New creates a Renderer with GFM, heading IDs and raw HTML enabled.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		style:     styles.Get(DefaultStyle),
		formatter: chromahtml.New(chromahtml.WithClasses(true)),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(util.Prioritized(linkTransformer{}, 100)),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
			renderer.WithNodeRenderers(util.Prioritized(&codeRenderer{formatter: r.formatter, style: r.style}, 100)),
		),
	)
	return r
}

// Render returns the HTML for body.
func (r *Renderer) Render(body string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// Component returns body rendered as a templ component.
func (r *Renderer) Component(body string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		out, err := r.Render(body)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	})
}

// WriteCSS writes the stylesheet matching the classes emitted for code blocks.
func (r *Renderer) WriteCSS(w io.Writer) error {
	return r.formatter.WriteCSS(w, r.style)
}

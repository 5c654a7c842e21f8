package ogimage

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

// Kind is the type of a Node.
type Kind int

const (
	KindBox Kind = iota
	KindText
	KindImage
)

// Direction is the main axis of a box.
type Direction int

const (
	Column Direction = iota
	Row
)

// Justify distributes free space along the main axis.
type Justify int

const (
	JustifyStart Justify = iota
	JustifyBetween
)

// Align positions children on the cross axis. The zero value stretches
// boxes and text to the full cross size.
type Align int

const (
	AlignStretch Align = iota
	AlignStart
	AlignCenter
)

// Edges holds per-side lengths in pixels.
type Edges struct {
	Top, Right, Bottom, Left float64
}

// All returns the same length on every side.
func All(v float64) Edges {
	return Edges{v, v, v, v}
}

// XY returns horizontal and vertical lengths.
func XY(x, y float64) Edges {
	return Edges{Top: y, Right: x, Bottom: y, Left: x}
}

func (e Edges) horizontal() float64 { return e.Left + e.Right }
func (e Edges) vertical() float64   { return e.Top + e.Bottom }

// Style is the subset of flexbox and text styling the layout understands.
// Zero values mean "unset": Opacity 0 paints fully opaque and a color with
// zero alpha is not drawn (text colors are inherited instead).
type Style struct {
	Direction Direction
	Justify   Justify
	Align     Align
	Gap       float64
	Padding   Edges
	Margin    Edges
	PushEnd   bool // margin-left: auto

	Width, Height float64

	Background color.RGBA
	Radius     float64
	RadiusFull bool
	Opacity    float64

	Color      color.RGBA
	FontSize   float64
	LineHeight float64 // multiple of FontSize
	PreLine    bool
	MaxLines   int

	// Absolute children leave the flow and are anchored to the top-right
	// corner of their parent.
	Absolute   bool
	Top, Right float64
}

// Node is one element of the image scene graph.
type Node struct {
	Kind     Kind
	Tag      string
	Style    Style
	Text     string
	Picture  *Picture
	Alt      string
	Children []*Node
}

// Box returns a container node.
func Box(style Style, children ...*Node) *Node {
	var kept []*Node
	for _, c := range children {
		if c != nil {
			kept = append(kept, c)
		}
	}
	return &Node{Kind: KindBox, Tag: "div", Style: style, Children: kept}
}

// Text returns a text node rendered as the given tag.
func Text(tag, text string, style Style) *Node {
	return &Node{Kind: KindText, Tag: tag, Style: style, Text: text}
}

// Img returns an image node. A nil picture yields nil so optional images
// can be passed straight to Box.
func Img(pic *Picture, alt string, style Style) *Node {
	if pic == nil {
		return nil
	}
	return &Node{Kind: KindImage, Tag: "img", Style: style, Picture: pic, Alt: alt}
}

// Walk calls fn for n and every descendant, depth first.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Hex formats c as #rrggbb.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHex parses #rrggbb. Invalid input yields transparent black.
func ParseHex(s string) color.RGBA {
	s = strings.TrimPrefix(s, "#")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil || len(s) != 6 {
		return color.RGBA{}
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// CSS renders the style as an inline style attribute value.
func (s Style) CSS(kind Kind) string {
	var decl []string
	add := func(k, v string) { decl = append(decl, k+":"+v) }

	if kind == KindBox {
		add("display", "flex")
		if s.Direction == Row {
			add("flex-direction", "row")
		} else {
			add("flex-direction", "column")
		}
		if s.Justify == JustifyBetween {
			add("justify-content", "space-between")
		}
		switch s.Align {
		case AlignStart:
			add("align-items", "flex-start")
		case AlignCenter:
			add("align-items", "center")
		}
		if s.Gap > 0 {
			add("gap", px(s.Gap))
		}
	}
	if s.Absolute {
		add("position", "absolute")
		add("top", px(s.Top))
		add("right", px(s.Right))
	}
	if s.Width > 0 {
		add("width", px(s.Width))
	}
	if s.Height > 0 {
		add("height", px(s.Height))
	}
	if s.Padding != (Edges{}) {
		add("padding", edgesCSS(s.Padding))
	}
	if s.Margin != (Edges{}) {
		add("margin", edgesCSS(s.Margin))
	}
	if s.PushEnd {
		add("margin-left", "auto")
	}
	if s.Background.A > 0 {
		add("background-color", Hex(s.Background))
	}
	if s.RadiusFull {
		add("border-radius", "9999px")
	} else if s.Radius > 0 {
		add("border-radius", px(s.Radius))
	}
	if s.Opacity > 0 && s.Opacity < 1 {
		add("opacity", strconv.FormatFloat(s.Opacity, 'f', -1, 64))
	}
	if s.Color.A > 0 {
		add("color", Hex(s.Color))
	}
	if s.FontSize > 0 {
		add("font-size", px(s.FontSize))
	}
	if s.LineHeight > 0 {
		add("line-height", strconv.FormatFloat(s.LineHeight, 'f', -1, 64))
	}
	if s.PreLine {
		add("white-space", "pre-line")
	}
	if s.MaxLines > 0 {
		add("line-clamp", strconv.Itoa(s.MaxLines))
	}
	return strings.Join(decl, ";")
}

func edgesCSS(e Edges) string {
	return px(e.Top) + " " + px(e.Right) + " " + px(e.Bottom) + " " + px(e.Left)
}

// Markup serializes the tree as HTML. Text and attribute values are escaped.
func (n *Node) Markup() string {
	var b strings.Builder
	n.writeMarkup(&b)
	return b.String()
}

func (n *Node) writeMarkup(b *strings.Builder) {
	if n == nil {
		return
	}
	style := templ.EscapeString(n.Style.CSS(n.Kind))
	if n.Kind == KindImage {
		fmt.Fprintf(b, `<img src="%s" alt="%s" style="%s"/>`,
			templ.EscapeString(n.Picture.URI), templ.EscapeString(n.Alt), style)
		return
	}
	fmt.Fprintf(b, `<%s style="%s">`, n.Tag, style)
	if n.Kind == KindText {
		b.WriteString(templ.EscapeString(n.Text))
	}
	for _, c := range n.Children {
		c.writeMarkup(b)
	}
	fmt.Fprintf(b, "</%s>", n.Tag)
}

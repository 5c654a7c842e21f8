package ogimage

import (
	"fmt"
	"image/color"
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	defaultFontSize   = 16
	defaultLineHeight = 1.5
	ellipsis          = "…"
)

// OpKind is the type of a paint operation.
type OpKind int

const (
	OpRect OpKind = iota
	OpRoundRect
	OpImage
	OpText
)

// Rect is an axis-aligned rectangle in pixels.
type Rect struct {
	X, Y, W, H float64
}

// Op is one paint operation of a Scene. Text ops draw Text starting at
// Rect.X on Baseline.
type Op struct {
	Kind     OpKind
	Rect     Rect
	Radius   float64
	Fill     color.RGBA
	Opacity  float64
	Picture  *Picture
	Text     string
	Size     float64
	Baseline float64
}

// Scene is the flat, ordered result of laying out a Template.
type Scene struct {
	Width, Height int
	Family        string
	Ops           []Op
}

// faceCache holds the faces of one render. opentype faces are not safe for
// concurrent use, so a cache never outlives its render.
type faceCache struct {
	font  *opentype.Font
	faces map[float64]font.Face
}

func newFaceCache(f *opentype.Font) *faceCache {
	return &faceCache{font: f, faces: make(map[float64]font.Face)}
}

func (fc *faceCache) get(size float64) (font.Face, error) {
	if face, ok := fc.faces[size]; ok {
		return face, nil
	}
	if fc.font == nil {
		return nil, fmt.Errorf("%w: no font loaded", ErrRender)
	}
	face, err := opentype.NewFace(fc.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: font face %gpx: %w", ErrRender, size, err)
	}
	fc.faces[size] = face
	return face, nil
}

func (fc *faceCache) close() {
	for _, face := range fc.faces {
		_ = face.Close()
	}
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func advance(face font.Face, s string) float64 {
	return toFloat(font.MeasureString(face, s))
}

// wrapText breaks text into lines no wider than maxWidth. With preLine,
// newlines in text start new lines; other whitespace always collapses.
// Lines beyond maxLines are dropped and the last kept line ends in an
// ellipsis.
func wrapText(face font.Face, text string, maxWidth float64, preLine bool, maxLines int) []string {
	paragraphs := []string{text}
	if preLine {
		paragraphs = strings.Split(text, "\n")
	}
	var lines []string
	for _, para := range paragraphs {
		words := strings.Fields(para)
		if len(words) == 0 {
			if preLine && len(paragraphs) > 1 {
				lines = append(lines, "")
			}
			continue
		}
		line := ""
		for _, w := range words {
			candidate := w
			if line != "" {
				candidate = line + " " + w
			}
			if advance(face, candidate) <= maxWidth {
				line = candidate
				continue
			}
			if line != "" {
				lines = append(lines, line)
			}
			for advance(face, w) > maxWidth {
				n := fitPrefix(face, w, maxWidth)
				lines = append(lines, w[:n])
				w = w[n:]
			}
			line = w
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
		lines[maxLines-1] = truncate(face, lines[maxLines-1], maxWidth)
	}
	return lines
}

// fitPrefix returns the byte length of the longest prefix of s that fits,
// never less than one rune.
func fitPrefix(face font.Face, s string, maxWidth float64) int {
	end := 0
	for i := range s {
		if i > 0 && advance(face, s[:i]) > maxWidth {
			break
		}
		end = i
	}
	if end == 0 {
		_, size := utf8.DecodeRuneInString(s)
		return size
	}
	return end
}

func truncate(face font.Face, line string, maxWidth float64) string {
	line = strings.TrimRight(line, " ")
	for line != "" && advance(face, line+ellipsis) > maxWidth {
		_, size := utf8.DecodeLastRuneInString(line)
		line = strings.TrimRight(line[:len(line)-size], " ")
	}
	return line + ellipsis
}

type box struct {
	node     *Node
	x, y     float64
	w, h     float64
	color    color.RGBA
	lines    []string
	lineH    float64
	ascent   float64
	descent  float64
	flow     []*box
	absolute []*box
}

type layouter struct {
	faces *faceCache
}

func layout(tpl *Template, faces *faceCache) (*Scene, error) {
	if tpl == nil || tpl.Root == nil {
		return nil, fmt.Errorf("%w: empty template", ErrRender)
	}
	l := &layouter{faces: faces}
	root, err := l.measure(tpl.Root, float64(tpl.Width), color.RGBA{A: 0xff})
	if err != nil {
		return nil, err
	}
	place(root, 0, 0)
	return &Scene{
		Width:  tpl.Width,
		Height: tpl.Height,
		Family: tpl.Family,
		Ops:    emit(root, nil),
	}, nil
}

func (l *layouter) measure(n *Node, maxW float64, inherited color.RGBA) (*box, error) {
	s := n.Style
	b := &box{node: n, color: inherited}
	if s.Color.A > 0 {
		b.color = s.Color
	}
	if s.Width > 0 {
		maxW = s.Width
	}
	inner := max(0, maxW-s.Padding.horizontal())

	switch n.Kind {
	case KindText:
		size := fontSize(s)
		face, err := l.faces.get(size)
		if err != nil {
			return nil, err
		}
		lh := s.LineHeight
		if lh <= 0 {
			lh = defaultLineHeight
		}
		m := face.Metrics()
		b.ascent, b.descent = toFloat(m.Ascent), toFloat(m.Descent)
		b.lineH = size * lh
		b.lines = wrapText(face, n.Text, inner, s.PreLine, s.MaxLines)
		var tw float64
		for _, ln := range b.lines {
			tw = max(tw, advance(face, ln))
		}
		b.w = math.Ceil(tw) + s.Padding.horizontal()
		b.h = float64(len(b.lines))*b.lineH + s.Padding.vertical()

	case KindImage:
		bounds := n.Picture.Bounds()
		iw, ih := float64(bounds.Dx()), float64(bounds.Dy())
		switch {
		case s.Width > 0 && s.Height > 0:
			b.w, b.h = s.Width, s.Height
		case s.Width > 0:
			b.w, b.h = s.Width, s.Width*ih/iw
		case s.Height > 0:
			b.w, b.h = s.Height*iw/ih, s.Height
		default:
			b.w, b.h = iw, ih
		}
		return b, nil

	case KindBox:
		var cw, ch float64
		remaining := inner
		for _, c := range n.Children {
			if c.Style.Absolute {
				cb, err := l.measure(c, maxW, b.color)
				if err != nil {
					return nil, err
				}
				b.absolute = append(b.absolute, cb)
				continue
			}
			m := c.Style.Margin
			avail := inner - m.horizontal()
			if s.Direction == Row {
				avail = remaining - m.horizontal()
			}
			cb, err := l.measure(c, avail, b.color)
			if err != nil {
				return nil, err
			}
			b.flow = append(b.flow, cb)
			ow, oh := cb.w+m.horizontal(), cb.h+m.vertical()
			if s.Direction == Row {
				cw += ow
				ch = max(ch, oh)
				remaining -= ow
			} else {
				cw = max(cw, ow)
				ch += oh
			}
		}
		gaps := s.Gap * float64(max(len(b.flow)-1, 0))
		if s.Direction == Row {
			cw += gaps
		} else {
			ch += gaps
		}
		b.w = cw + s.Padding.horizontal()
		b.h = ch + s.Padding.vertical()
	}

	if s.Width > 0 {
		b.w = s.Width
	}
	if s.Height > 0 {
		b.h = s.Height
	}
	return b, nil
}

func place(b *box, x, y float64) {
	b.x, b.y = x, y
	if b.node.Kind != KindBox {
		return
	}
	s := b.node.Style
	ix, iy := x+s.Padding.Left, y+s.Padding.Top
	iw, ih := b.w-s.Padding.horizontal(), b.h-s.Padding.vertical()

	var used float64
	for _, c := range b.flow {
		m := c.node.Style.Margin
		if s.Direction == Row {
			used += c.w + m.horizontal()
		} else {
			used += c.h + m.vertical()
		}
	}
	gap := s.Gap
	used += gap * float64(max(len(b.flow)-1, 0))
	free := ih - used
	if s.Direction == Row {
		free = iw - used
	}
	if s.Justify == JustifyBetween && len(b.flow) > 1 && free > 0 {
		gap += free / float64(len(b.flow)-1)
		free = 0
	}

	if s.Direction == Column {
		cursor := iy
		for _, c := range b.flow {
			cs := c.node.Style
			m := cs.Margin
			if s.Align == AlignStretch && cs.Width == 0 && c.node.Kind != KindImage {
				c.w = iw - m.horizontal()
			}
			cx := ix + m.Left
			if s.Align == AlignCenter {
				cx = ix + (iw-c.w-m.horizontal())/2 + m.Left
			}
			place(c, cx, cursor+m.Top)
			cursor += m.vertical() + c.h + gap
		}
	} else {
		cursor := ix
		for _, c := range b.flow {
			cs := c.node.Style
			m := cs.Margin
			if cs.PushEnd && free > 0 {
				cursor += free
				free = 0
			}
			if s.Align == AlignStretch && cs.Height == 0 && c.node.Kind != KindImage {
				c.h = ih - m.vertical()
			}
			cy := iy + m.Top
			if s.Align == AlignCenter {
				cy = iy + (ih-c.h-m.vertical())/2 + m.Top
			}
			place(c, cursor+m.Left, cy)
			cursor += m.horizontal() + c.w + gap
		}
	}

	for _, a := range b.absolute {
		place(a, x+b.w-a.node.Style.Right-a.w, y+a.node.Style.Top)
	}
}

// emit flattens the tree into paint order: a node's own background, then
// its absolute children, then its flow children.
func emit(b *box, ops []Op) []Op {
	s := b.node.Style
	r := Rect{X: b.x, Y: b.y, W: b.w, H: b.h}
	radius := s.Radius
	if s.RadiusFull {
		radius = min(b.w, b.h) / 2
	}

	if s.Background.A > 0 && b.node.Kind != KindImage {
		kind := OpRect
		if radius > 0 {
			kind = OpRoundRect
		}
		ops = append(ops, Op{Kind: kind, Rect: r, Radius: radius, Fill: s.Background, Opacity: opacity(s)})
	}

	switch b.node.Kind {
	case KindImage:
		ops = append(ops, Op{Kind: OpImage, Rect: r, Radius: radius, Picture: b.node.Picture, Opacity: opacity(s)})
	case KindText:
		tx, top := b.x+s.Padding.Left, b.y+s.Padding.Top
		for i, ln := range b.lines {
			if ln == "" {
				continue
			}
			lineTop := top + float64(i)*b.lineH
			ops = append(ops, Op{
				Kind:     OpText,
				Rect:     Rect{X: tx, Y: lineTop, W: b.w - s.Padding.horizontal(), H: b.lineH},
				Fill:     b.color,
				Opacity:  opacity(s),
				Text:     ln,
				Size:     fontSize(s),
				Baseline: lineTop + (b.lineH-(b.ascent+b.descent))/2 + b.ascent,
			})
		}
	case KindBox:
		for _, a := range b.absolute {
			ops = emit(a, ops)
		}
		for _, c := range b.flow {
			ops = emit(c, ops)
		}
	}
	return ops
}

func fontSize(s Style) float64 {
	if s.FontSize > 0 {
		return s.FontSize
	}
	return defaultFontSize
}

func opacity(s Style) float64 {
	if s.Opacity > 0 && s.Opacity < 1 {
		return s.Opacity
	}
	return 1
}

package ogimage

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func opacityAttr(name string, v float64) string {
	if v <= 0 || v >= 1 {
		return ""
	}
	return fmt.Sprintf(` %s="%s"`, name, num(v))
}

// SVG serializes the scene as a standalone SVG document.
func (s *Scene) SVG() string {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		s.Width, s.Height, s.Width, s.Height)
	for _, op := range s.Ops {
		r := op.Rect
		switch op.Kind {
		case OpRect:
			fmt.Fprintf(&b, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s"%s/>`,
				num(r.X), num(r.Y), num(r.W), num(r.H), Hex(op.Fill), opacityAttr("fill-opacity", op.Opacity))
		case OpRoundRect:
			fmt.Fprintf(&b, `<rect x="%s" y="%s" width="%s" height="%s" rx="%s" fill="%s"%s/>`,
				num(r.X), num(r.Y), num(r.W), num(r.H), num(op.Radius), Hex(op.Fill), opacityAttr("fill-opacity", op.Opacity))
		case OpImage:
			fmt.Fprintf(&b, `<image href="%s" x="%s" y="%s" width="%s" height="%s" preserveAspectRatio="none"%s/>`,
				templ.EscapeString(op.Picture.URI), num(r.X), num(r.Y), num(r.W), num(r.H), opacityAttr("opacity", op.Opacity))
		case OpText:
			fmt.Fprintf(&b, `<text x="%s" y="%s" font-family="%s" font-size="%s" fill="%s"%s>%s</text>`,
				num(r.X), num(op.Baseline), templ.EscapeString(s.Family), num(op.Size), Hex(op.Fill),
				opacityAttr("fill-opacity", op.Opacity), templ.EscapeString(op.Text))
		}
	}
	b.WriteString("</svg>")
	return b.String()
}

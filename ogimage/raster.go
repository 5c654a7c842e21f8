package ogimage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Rasterizer lays out templates and paints them to PNG. It is safe for
// concurrent use; every call builds its own font faces.
type Rasterizer struct {
	assets *Assets
}

// NewRasterizer creates a Rasterizer drawing text with the assets' font.
func NewRasterizer(assets *Assets) *Rasterizer {
	return &Rasterizer{assets: assets}
}

// Layout computes the vector scene of tpl without painting it.
func (r *Rasterizer) Layout(tpl *Template) (*Scene, error) {
	faces := newFaceCache(r.assets.Font)
	defer faces.close()
	return layout(tpl, faces)
}

// Rasterize lays out and paints tpl, returning PNG bytes.
func (r *Rasterizer) Rasterize(ctx context.Context, tpl *Template) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	faces := newFaceCache(r.assets.Font)
	defer faces.close()

	scene, err := layout(tpl, faces)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := paint(scene, faces)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: encode png: %w", ErrRender, err)
	}
	return buf.Bytes(), nil
}

func paint(scene *Scene, faces *faceCache) (*image.RGBA, error) {
	if scene.Width <= 0 || scene.Height <= 0 {
		return nil, fmt.Errorf("%w: invalid size %dx%d", ErrRender, scene.Width, scene.Height)
	}
	dst := image.NewRGBA(image.Rect(0, 0, scene.Width, scene.Height))
	for _, op := range scene.Ops {
		switch op.Kind {
		case OpRect:
			draw.Draw(dst, op.Rect.bounds(), image.NewUniform(fade(op.Fill, op.Opacity)), image.Point{}, draw.Over)
		case OpRoundRect:
			fillRoundRect(dst, op)
		case OpImage:
			drawPicture(dst, op)
		case OpText:
			face, err := faces.get(op.Size)
			if err != nil {
				return nil, err
			}
			d := font.Drawer{
				Dst:  dst,
				Src:  image.NewUniform(fade(op.Fill, op.Opacity)),
				Face: face,
				Dot: fixed.Point26_6{
					X: fixed.Int26_6(math.Round(op.Rect.X * 64)),
					Y: fixed.Int26_6(math.Round(op.Baseline * 64)),
				},
			}
			d.DrawString(op.Text)
		}
	}
	return dst, nil
}

func (r Rect) bounds() image.Rectangle {
	return image.Rect(
		int(math.Round(r.X)), int(math.Round(r.Y)),
		int(math.Round(r.X+r.W)), int(math.Round(r.Y+r.H)),
	)
}

// fade scales a premultiplied color by opacity.
func fade(c color.RGBA, opacity float64) color.RGBA {
	if opacity >= 1 {
		return c
	}
	scale := func(v uint8) uint8 { return uint8(math.Round(float64(v) * opacity)) }
	return color.RGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: scale(c.A)}
}

// roundedMask returns the coverage of a rounded rectangle at rect over the
// clip area, with the mask origin at clip.Min.
func roundedMask(rect, clip image.Rectangle, radius float64) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, clip.Dx(), clip.Dy()))
	radius = max(0, min(radius, float64(min(rect.Dx(), rect.Dy()))/2))
	// Edges further than the corner diameter off the clip are pulled in, so
	// the path stays within float32 precision of the mask. Corners on pulled
	// edges are off the clip either way.
	margin := int(math.Ceil(2*radius)) + 1
	rect = rect.Intersect(image.Rectangle{
		Min: clip.Min.Sub(image.Pt(margin, margin)),
		Max: clip.Max.Add(image.Pt(margin, margin)),
	})
	ox, oy := float32(rect.Min.X-clip.Min.X), float32(rect.Min.Y-clip.Min.Y)
	fw, fh := float32(rect.Dx()), float32(rect.Dy())
	r := float32(radius)
	// Bezier handle length for a quarter circle.
	c := r * (1 - 0.5522847)

	z := vector.NewRasterizer(clip.Dx(), clip.Dy())
	move := func(x, y float32) { z.MoveTo(ox+x, oy+y) }
	line := func(x, y float32) { z.LineTo(ox+x, oy+y) }
	cube := func(x1, y1, x2, y2, x, y float32) { z.CubeTo(ox+x1, oy+y1, ox+x2, oy+y2, ox+x, oy+y) }
	move(r, 0)
	line(fw-r, 0)
	cube(fw-c, 0, fw, c, fw, r)
	line(fw, fh-r)
	cube(fw, fh-c, fw-c, fh, fw-r, fh)
	line(r, fh)
	cube(c, fh, 0, fh-c, 0, fh-r)
	line(0, r)
	cube(0, c, c, 0, r, 0)
	z.ClosePath()
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask
}

func fillRoundRect(dst *image.RGBA, op Op) {
	rect := op.Rect.bounds()
	visible := rect.Intersect(dst.Bounds())
	if visible.Empty() {
		return
	}
	mask := roundedMask(rect, visible, op.Radius)
	draw.DrawMask(dst, visible, image.NewUniform(fade(op.Fill, op.Opacity)), image.Point{}, mask, image.Point{}, draw.Over)
}

// drawPicture scales the picture into rect. Only the part that lands on
// the canvas is allocated or sampled.
func drawPicture(dst *image.RGBA, op Op) {
	rect := op.Rect.bounds()
	visible := rect.Intersect(dst.Bounds())
	src := op.Picture
	if visible.Empty() || src == nil || src.Bounds().Empty() {
		return
	}
	sb := src.Bounds()
	sx := float64(rect.Dx()) / float64(sb.Dx())
	sy := float64(rect.Dy()) / float64(sb.Dy())
	s2d := f64.Aff3{
		sx, 0, float64(rect.Min.X) - float64(sb.Min.X)*sx,
		0, sy, float64(rect.Min.Y) - float64(sb.Min.Y)*sy,
	}
	// Transform walks the destination bounds, unlike Scale whose kernel
	// tables grow with the full target rect.
	scaled := image.NewRGBA(visible)
	draw.CatmullRom.Transform(scaled, s2d, src.Image, sb, draw.Src, nil)

	var mask image.Image
	switch {
	case op.Radius > 0:
		m := roundedMask(rect, visible, op.Radius)
		if op.Opacity < 1 {
			for i, a := range m.Pix {
				m.Pix[i] = uint8(math.Round(float64(a) * op.Opacity))
			}
		}
		mask = m
	case op.Opacity < 1:
		mask = image.NewUniform(color.Alpha{A: uint8(math.Round(op.Opacity * 255))})
	}
	draw.DrawMask(dst, visible, scaled, visible.Min, mask, image.Point{}, draw.Over)
}

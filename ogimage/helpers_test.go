package ogimage

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func pngBytes(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func testAssets(t *testing.T) *Assets {
	t.Helper()
	a, err := NewAssets(goregular.TTF, pngBytes(t, 64, 64, color.RGBA{R: 0xa2, G: 0x2f, B: 0x9e, A: 0xff}))
	if err != nil {
		t.Fatalf("NewAssets failed: %v", err)
	}
	return a
}

func backgroundDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		data := pngBytes(t, 40, 30, color.RGBA{R: 0x20, G: 0x60, B: 0xc0, A: 0xff})
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func texts(n *Node) []string {
	var out []string
	n.Walk(func(c *Node) {
		if c.Kind == KindText {
			out = append(out, c.Text)
		}
	})
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Package ogimage builds and rasterizes the 1200x630 Open Graph preview
// images served for posts and pages.
package ogimage

import (
	"bytes"
	_ "embed"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	_ "golang.org/x/image/webp"
)

var (
	// ErrAsset reports a font or image that could not be read or decoded.
	ErrAsset = errors.New("ogimage: unusable asset")
	// ErrRender reports a failure while laying out, painting or encoding.
	ErrRender = errors.New("ogimage: render failed")
)

//go:embed logo.png
var defaultLogo []byte

// Picture is a decoded image together with the data URI of its source bytes.
type Picture struct {
	Image image.Image
	URI   string
}

// Bounds returns the size of the decoded image.
func (p *Picture) Bounds() image.Rectangle {
	return p.Image.Bounds()
}

// maxPicturePixels bounds the decoded size of logos and backgrounds.
var maxPicturePixels = 4096 * 4096

func decodePicture(data []byte) (*Picture, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > maxPicturePixels/cfg.Height {
		return nil, fmt.Errorf("image too large: %dx%d", cfg.Width, cfg.Height)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("empty %s image", format)
	}
	return &Picture{
		Image: img,
		URI:   "data:image/" + format + ";base64," + base64.StdEncoding.EncodeToString(data),
	}, nil
}

// Assets holds the font and logo shared by every render. It is never
// mutated after construction.
type Assets struct {
	Font   *opentype.Font
	Family string
	Logo   *Picture
}

// NewAssets parses a TrueType/OpenType font and a logo image.
func NewAssets(fontData, logoData []byte) (*Assets, error) {
	f, err := opentype.Parse(fontData)
	if err != nil {
		return nil, fmt.Errorf("%w: parse font: %w", ErrAsset, err)
	}
	logo, err := decodePicture(logoData)
	if err != nil {
		return nil, fmt.Errorf("%w: decode logo: %w", ErrAsset, err)
	}
	family, err := f.Name(nil, sfnt.NameIDFamily)
	if err != nil || family == "" {
		family = "sans-serif"
	}
	return &Assets{Font: f, Family: family, Logo: logo}, nil
}

// LoadAssets reads the font and logo from disk. An empty fontPath selects
// the bundled Go Medium face and an empty logoPath the built-in logo.
func LoadAssets(fontPath, logoPath string) (*Assets, error) {
	fontData := gomedium.TTF
	if fontPath != "" {
		b, err := os.ReadFile(fontPath)
		if err != nil {
			return nil, fmt.Errorf("%w: read font: %w", ErrAsset, err)
		}
		fontData = b
	}
	logoData := defaultLogo
	if logoPath != "" {
		b, err := os.ReadFile(logoPath)
		if err != nil {
			return nil, fmt.Errorf("%w: read logo: %w", ErrAsset, err)
		}
		logoData = b
	}
	return NewAssets(fontData, logoData)
}

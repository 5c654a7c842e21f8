package ogimage

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAssetsDefaults(t *testing.T) {
	a, err := LoadAssets("", "")
	if err != nil {
		t.Fatalf("LoadAssets failed: %v", err)
	}
	if a.Font == nil || a.Logo == nil {
		t.Fatal("default assets should include a font and a logo")
	}
	if a.Family == "" {
		t.Error("Family should not be empty")
	}
	if b := a.Logo.Bounds(); b.Dx() != 192 || b.Dy() != 192 {
		t.Errorf("logo size = %v, want 192x192", b)
	}
}

func TestLoadAssetsMissingFiles(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	if _, err := LoadAssets(missing+".ttf", ""); !errors.Is(err, ErrAsset) {
		t.Errorf("missing font: err = %v, want ErrAsset", err)
	}
	if _, err := LoadAssets("", missing+".png"); !errors.Is(err, ErrAsset) {
		t.Errorf("missing logo: err = %v, want ErrAsset", err)
	}
}

func TestNewAssetsRejectsGarbage(t *testing.T) {
	a := testAssets(t)
	logo := filepath.Join(t.TempDir(), "logo.png")
	if err := os.WriteFile(logo, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadAssets("", logo); !errors.Is(err, ErrAsset) {
		t.Errorf("bad logo: err = %v, want ErrAsset", err)
	}
	if _, err := NewAssets([]byte("not a font"), nil); !errors.Is(err, ErrAsset) {
		t.Errorf("bad font: err = %v, want ErrAsset", err)
	}
	if a.Logo.URI[:len("data:image/png;base64,")] != "data:image/png;base64," {
		t.Errorf("logo URI = %.30q", a.Logo.URI)
	}
}

func TestDecodePictureRejectsOversized(t *testing.T) {
	old := maxPicturePixels
	maxPicturePixels = 100
	t.Cleanup(func() { maxPicturePixels = old })

	if _, err := decodePicture(pngBytes(t, 10, 10, color.RGBA{A: 0xff})); err != nil {
		t.Fatalf("10x10 image within budget: %v", err)
	}
	if _, err := decodePicture(pngBytes(t, 20, 10, color.RGBA{A: 0xff})); err == nil {
		t.Fatal("20x10 image over a 100 pixel budget should be rejected")
	}
}

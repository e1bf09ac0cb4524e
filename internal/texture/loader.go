// Package texture loads skin textures from disk.
package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	_ "golang.org/x/image/webp"
)

// Extensions lists the supported texture file extensions, lowercase.
var Extensions = []string{".png", ".tga", ".webp", ".jpg", ".jpeg"}

// Supported reports whether path has a texture extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// LoadTexture reads a PNG, TGA, WebP or JPEG file and returns an NRGBA image.
func LoadTexture(path string) (*image.NRGBA, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("texture: read %s: %w", path, err)
	}

	var img image.Image
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".tga":
		// TGA has no magic number, so image.Decode cannot sniff it
		img, err = tga.Decode(bytes.NewReader(raw))
	case ".png", ".webp", ".jpg", ".jpeg":
		img, _, err = image.Decode(bytes.NewReader(raw))
	default:
		return nil, fmt.Errorf("texture: unknown extension: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", path, err)
	}

	return toNRGBA(img), nil
}

// toNRGBA converts any image to NRGBA format with a zero origin.
func toNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	if n, ok := src.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

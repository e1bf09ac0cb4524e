package sink

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
)

// Format is an export image encoding.
type Format string

const (
	PNG  Format = "png"
	WebP Format = "webp"
	TGA  Format = "tga"
)

// ParseFormat accepts a format name in any case, with or without a leading dot.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	switch f {
	case PNG, WebP, TGA:
		return f, nil
	case "":
		return PNG, nil
	}
	return "", fmt.Errorf("sink: unknown image format %q", s)
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// Encoder turns a captured frame into bytes for a sink.
type Encoder func(img image.Image) ([]byte, error)

// EncoderFor returns the encoder for f.
func EncoderFor(f Format) (Encoder, error) {
	switch f {
	case PNG:
		return EncodePNG, nil
	case WebP:
		return EncodeWebP, nil
	case TGA:
		return EncodeTGA, nil
	}
	return nil, fmt.Errorf("sink: unknown image format %q", string(f))
}

func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("sink: png encode: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeWebP writes a lossless WebP.
func EncodeWebP(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := nativewebp.Encode(&buf, img, nil); err != nil {
		return nil, fmt.Errorf("sink: webp encode: %w", err)
	}
	return buf.Bytes(), nil
}

func EncodeTGA(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := tga.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("sink: tga encode: %w", err)
	}
	return buf.Bytes(), nil
}

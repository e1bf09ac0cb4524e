package scene

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ParseHexColor parses "#rrggbb", "rrggbb" or "0xrrggbb" into an opaque color.
func ParseHexColor(s string) (color.NRGBA, error) {
	h := strings.TrimSpace(s)
	h = strings.TrimPrefix(h, "#")
	h = strings.TrimPrefix(strings.TrimPrefix(h, "0x"), "0X")
	if len(h) != 6 {
		return color.NRGBA{}, fmt.Errorf("scene: invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("scene: invalid color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// HexColor formats c as "#rrggbb".
func HexColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

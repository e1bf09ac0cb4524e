package scene

import (
	"image"
	"image/color"
)

// MaterialKind selects how the rasterizer shades a surface.
type MaterialKind int

const (
	// MaterialBasic is an unlit flat color (helpers, overlays).
	MaterialBasic MaterialKind = iota
	// MaterialLit is flat-shaded with the scene lights, optionally textured.
	MaterialLit
	// MaterialDepth encodes fragment depth as grayscale, near is white.
	MaterialDepth
	// MaterialNormal encodes the view-space normal as RGB.
	MaterialNormal
)

func (k MaterialKind) String() string {
	switch k {
	case MaterialBasic:
		return "basic"
	case MaterialLit:
		return "lit"
	case MaterialDepth:
		return "depth"
	case MaterialNormal:
		return "normal"
	}
	return "unknown"
}

// Material describes the surface appearance of a mesh node.
type Material struct {
	Kind  MaterialKind
	Color color.NRGBA

	// Texture is shared between clones and never copied.
	Texture *image.NRGBA
}

// NewMaterial returns a material of the given kind with a neutral color.
func NewMaterial(kind MaterialKind) *Material {
	return &Material{Kind: kind, Color: color.NRGBA{R: 200, G: 200, B: 200, A: 255}}
}

// NewColorMaterial returns a material of the given kind and color.
func NewColorMaterial(kind MaterialKind, c color.NRGBA) *Material {
	return &Material{Kind: kind, Color: c}
}

// Clone copies m. A nil material clones to nil.
func (m *Material) Clone() *Material {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

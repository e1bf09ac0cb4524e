// Package gizmo models the interactive transform handle. Only one node can
// be attached at a time; attaching another replaces it.
package gizmo

import (
	"posecap/internal/logx"
	"posecap/internal/mathutil"
	"posecap/internal/scene"
)

// Mode selects what a drag on the handle does.
type Mode int

const (
	Rotate Mode = iota
	Translate
)

func (m Mode) String() string {
	if m == Translate {
		return "translate"
	}
	return "rotate"
}

// Space selects the axes the handle is aligned to.
type Space int

const (
	Local Space = iota
	World
)

func (s Space) String() string {
	if s == World {
		return "world"
	}
	return "local"
}

// Gizmo is the transform control.
type Gizmo struct {
	object *scene.Node
	mode   Mode
	space  Space
}

// New returns a detached gizmo in rotate mode with local axes.
func New() *Gizmo {
	return &Gizmo{mode: Rotate, space: Local}
}

// Attach makes n the single controlled node.
func (g *Gizmo) Attach(n *scene.Node) {
	g.object = n
	logx.Logger().Debug("gizmo: attach", "node", n.String(), "mode", g.mode, "space", g.space)
}

// Detach releases the controlled node, if any.
func (g *Gizmo) Detach() {
	if g.object != nil {
		logx.Logger().Debug("gizmo: detach", "node", g.object.String())
	}
	g.object = nil
}

// Object returns the attached node or nil.
func (g *Gizmo) Object() *scene.Node { return g.object }

// IsAttached reports whether n is the attached node.
func (g *Gizmo) IsAttached(n *scene.Node) bool { return n != nil && g.object == n }

func (g *Gizmo) Mode() Mode { return g.mode }

func (g *Gizmo) SetMode(m Mode) { g.mode = m }

func (g *Gizmo) Space() Space { return g.space }

func (g *Gizmo) SetSpace(s Space) { g.space = s }

// Rotate turns the attached node by angle radians around axis, expressed
// in the gizmo space. No-op when detached.
func (g *Gizmo) Rotate(axis mathutil.Vec3, angle float64) {
	n := g.object
	if n == nil {
		return
	}
	if g.space == Local {
		r := mathutil.QuatFromAxisAngle(axis, angle)
		n.Transform.Rotation = mathutil.QuatMul(n.Transform.Rotation, r).Normalize()
		return
	}
	if n.Parent != nil {
		// world axis into the parent's frame
		axis = n.Parent.WorldMatrix().AffineInverse().MulDir(axis)
	}
	r := mathutil.QuatFromAxisAngle(axis, angle)
	n.Transform.Rotation = mathutil.QuatMul(r, n.Transform.Rotation).Normalize()
}

// Translate moves the attached node by delta, expressed in the gizmo space.
// No-op when detached.
func (g *Gizmo) Translate(delta mathutil.Vec3) {
	n := g.object
	if n == nil {
		return
	}
	if g.space == Local {
		delta = n.Transform.Rotation.Rotate(delta)
	} else if n.Parent != nil {
		// world delta into the parent's frame
		delta = n.Parent.WorldMatrix().AffineInverse().MulDir(delta)
	}
	n.Transform.Position = n.Transform.Position.Add(delta)
}

package capture

import (
	"image/color"

	"posecap/internal/gizmo"
	"posecap/internal/scene"
)

// Each step applies one mutation and returns the closure that reverts it to
// the exact pre-call value.

func detachGizmo(g *gizmo.Gizmo) func() {
	if g == nil {
		return nil
	}
	prev, mode, space := g.Object(), g.Mode(), g.Space()
	g.Detach()
	return func() {
		g.SetMode(mode)
		g.SetSpace(space)
		if prev != nil {
			g.Attach(prev)
		}
	}
}

func setVisible(nodes []*scene.Node, visible bool) func() {
	prev := make([]bool, len(nodes))
	for i, n := range nodes {
		prev[i] = n.Visible
		n.Visible = visible
	}
	return func() {
		for i, n := range nodes {
			n.Visible = prev[i]
		}
	}
}

func setClearColor(s Surface, c color.NRGBA) func() {
	prev := s.ClearColor()
	s.SetClearColor(c)
	return func() { s.SetClearColor(prev) }
}

func setComposer(s Surface, enable bool) func() {
	prev := s.ComposerEnabled()
	s.SetComposerEnabled(enable)
	return func() { s.SetComposerEnabled(prev) }
}

// swapMaterial gives every patch a fresh material of kind. With exact set
// the returned closure puts the original instances back; otherwise it
// restores by kind: a fresh material of the kind the patches had before,
// which drops any custom color or texture.
func swapMaterial(patches []*scene.Node, kind scene.MaterialKind, exact bool) func() {
	prev := make([]*scene.Material, len(patches))
	restoreKind := priorKind(patches)
	for i, n := range patches {
		prev[i] = n.Material
		n.Material = scene.NewMaterial(kind)
	}
	return func() {
		for i, n := range patches {
			if exact || prev[i] == nil {
				n.Material = prev[i]
				continue
			}
			n.Material = scene.NewMaterial(restoreKind)
		}
	}
}

// priorKind infers the single kind to restore: depth unless some patch
// carries another kind, the last such patch winning.
func priorKind(patches []*scene.Node) scene.MaterialKind {
	kind := scene.MaterialDepth
	for _, n := range patches {
		if n.Material != nil && n.Material.Kind != scene.MaterialDepth {
			kind = n.Material.Kind
		}
	}
	return kind
}

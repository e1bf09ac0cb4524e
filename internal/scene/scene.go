package scene

import (
	"image/color"

	"posecap/internal/mathutil"
)

// RootName names the scene root node.
const RootName = "scene"

// Scene owns the node tree. Bodies are direct children of Root.
type Scene struct {
	Root *Node
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{Root: NewNode(RootName)}
}

// Add appends n to the scene root.
func (s *Scene) Add(n *Node) {
	s.Root.Add(n)
}

// Attach reparents n under the scene root keeping its world transform.
func (s *Scene) Attach(n *Node) {
	s.Root.Attach(n)
}

// Bodies returns the root children named "torso".
func (s *Scene) Bodies() []*Node {
	var out []*Node
	for _, c := range s.Root.Children {
		if c.Name == BodyRootName {
			out = append(out, c)
		}
	}
	return out
}

// SkinPatches returns every skin patch node found inside a body subtree.
// Patches reparented out of their body are not reported.
func (s *Scene) SkinPatches() []*Node {
	var out []*Node
	for _, b := range s.Bodies() {
		b.Traverse(func(n *Node) {
			if n.Name == SkinPatchName {
				out = append(out, n)
			}
		})
	}
	return out
}

// Find returns the first node named name in pre-order, or nil.
func (s *Scene) Find(name string) *Node {
	var found *Node
	s.Root.Traverse(func(n *Node) {
		if found == nil && n.Name == name {
			found = n
		}
	})
	return found
}

// Count returns the number of nodes in the tree, the root included.
func (s *Scene) Count() int {
	count := 0
	s.Root.Traverse(func(*Node) { count++ })
	return count
}

// NewGrid builds a flat grid overlay of size × size units with the given
// number of divisions, centered on the origin.
func NewGrid(size float64, divisions int) *Node {
	if divisions < 1 {
		divisions = 1
	}
	half := size / 2
	step := size / float64(divisions)
	const thickness = 0.4
	var lines []*Mesh
	for i := 0; i <= divisions; i++ {
		p := -half + float64(i)*step
		lines = append(lines,
			Quad(p-thickness/2, -half, p+thickness/2, half),
			Quad(-half, p-thickness/2, half, p+thickness/2),
		)
	}
	return NewMeshNode("grid", Merge(lines...), NewColorMaterial(MaterialBasic, color.NRGBA{R: 68, G: 68, B: 68, A: 255}))
}

// NewAxes builds the red/green/blue axis overlay of the given length.
func NewAxes(length float64) *Node {
	const w = 0.6
	axes := NewNode("axes")
	axes.Add(NewMeshNode("axis_x",
		Box(mathutil.Vec3{length, w, w}, mathutil.Vec3{length / 2, 0, 0}),
		NewColorMaterial(MaterialBasic, color.NRGBA{R: 255, A: 255})))
	axes.Add(NewMeshNode("axis_y",
		Box(mathutil.Vec3{w, length, w}, mathutil.Vec3{0, length / 2, 0}),
		NewColorMaterial(MaterialBasic, color.NRGBA{G: 255, A: 255})))
	axes.Add(NewMeshNode("axis_z",
		Box(mathutil.Vec3{w, w, length}, mathutil.Vec3{0, 0, length / 2}),
		NewColorMaterial(MaterialBasic, color.NRGBA{B: 255, A: 255})))
	return axes
}

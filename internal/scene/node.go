package scene

import (
	"fmt"

	"github.com/jinzhu/copier"

	"posecap/internal/mathutil"
)

const (
	// BodyRootName names the root node of every posable body.
	BodyRootName = "torso"

	// SkinPatchName names the renderable skin surface subtree of a body.
	SkinPatchName = "038F_05SET_04SHOT"
)

// Transform is a node's local position, rotation and scale.
type Transform struct {
	Position mathutil.Vec3
	Rotation mathutil.Quat
	Scale    mathutil.Vec3
}

// IdentityTransform returns a transform with no translation, rotation or scale.
func IdentityTransform() Transform {
	return Transform{
		Rotation: mathutil.QuatIdentity(),
		Scale:    mathutil.Vec3{1, 1, 1},
	}
}

// Matrix returns the local matrix T × R × S.
func (t Transform) Matrix() mathutil.Mat4 {
	return mathutil.Compose(t.Position, t.Rotation, t.Scale)
}

// TransformFromMatrix decomposes an affine matrix.
func TransformFromMatrix(m mathutil.Mat4) Transform {
	p, r, s := m.Decompose()
	return Transform{Position: p, Rotation: r, Scale: s}
}

// Node is one element of the scene tree. Children are owned; Parent is a
// back-reference maintained by Add, Remove and Attach.
type Node struct {
	Name      string
	Visible   bool
	Transform Transform
	Mesh      *Mesh     `copier:"-"`
	Material  *Material `copier:"-"`

	Parent   *Node   `copier:"-"`
	Children []*Node `copier:"-"`
}

// NewNode returns a visible node with an identity transform.
func NewNode(name string) *Node {
	return &Node{
		Name:      name,
		Visible:   true,
		Transform: IdentityTransform(),
	}
}

// NewMeshNode returns a visible node carrying geometry and a material.
func NewMeshNode(name string, mesh *Mesh, mat *Material) *Node {
	n := NewNode(name)
	n.Mesh = mesh
	n.Material = mat
	return n
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	return n.Name
}

// Add appends child, detaching it from its previous parent first.
// The child's local transform is kept as is.
func (n *Node) Add(child *Node) *Node {
	n.insert(child, len(n.Children))
	return n
}

func (n *Node) insert(child *Node, index int) {
	if child == nil || child == n {
		return
	}
	child.RemoveFromParent()
	if index < 0 || index > len(n.Children) {
		index = len(n.Children)
	}
	n.Children = append(n.Children, nil)
	copy(n.Children[index+1:], n.Children[index:])
	n.Children[index] = child
	child.Parent = n
}

// Remove detaches child and reports whether it was a child of n.
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			return true
		}
	}
	return false
}

// RemoveFromParent detaches n from its parent, if any.
func (n *Node) RemoveFromParent() {
	if n.Parent != nil {
		n.Parent.Remove(n)
	}
}

// Index returns the position of n among its siblings, or -1 without a parent.
func (n *Node) Index() int {
	if n.Parent == nil {
		return -1
	}
	for i, c := range n.Parent.Children {
		if c == n {
			return i
		}
	}
	return -1
}

// Attach reparents child under n keeping its world transform unchanged.
func (n *Node) Attach(child *Node) {
	n.AttachAt(child, len(n.Children))
}

// AttachAt is Attach with an explicit sibling index.
func (n *Node) AttachAt(child *Node, index int) {
	if child == nil || child == n {
		return
	}
	world := child.WorldMatrix()
	local := mathutil.Mat4Mul(n.WorldMatrix().AffineInverse(), world)
	child.Transform = TransformFromMatrix(local)
	n.insert(child, index)
}

// WorldMatrix chains local matrices from the root down to n.
func (n *Node) WorldMatrix() mathutil.Mat4 {
	m := n.Transform.Matrix()
	for p := n.Parent; p != nil; p = p.Parent {
		m = mathutil.Mat4Mul(p.Transform.Matrix(), m)
	}
	return m
}

// WorldPosition returns the origin of n in world space.
func (n *Node) WorldPosition() mathutil.Vec3 {
	return n.WorldMatrix().Translation()
}

// Traverse visits n and every descendant in pre-order, regardless of visibility.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	// Copy so callbacks may reparent children while we walk.
	kids := append([]*Node(nil), n.Children...)
	for _, c := range kids {
		c.Traverse(fn)
	}
}

// TraverseVisible is Traverse that skips invisible nodes and their subtrees.
func (n *Node) TraverseVisible(fn func(*Node)) {
	if !n.Visible {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.TraverseVisible(fn)
	}
}

// IsVisibleInWorld reports whether n and every ancestor are visible.
func (n *Node) IsVisibleInWorld() bool {
	for p := n; p != nil; p = p.Parent {
		if !p.Visible {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the subtree rooted at n. Meshes are shared,
// materials are copied, and the clone has no parent.
func (n *Node) Clone() (*Node, error) {
	c := &Node{}
	if err := copier.CopyWithOption(c, n, copier.Option{CaseSensitive: true, DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("scene: clone %s: %w", n.Name, err)
	}
	c.Mesh = n.Mesh
	c.Material = n.Material.Clone()
	for _, kid := range n.Children {
		kc, err := kid.Clone()
		if err != nil {
			return nil, err
		}
		c.Add(kc)
	}
	return c, nil
}

// BodyRoot resolves n to the root of the body it belongs to: the first
// "torso" ancestor (n included), then outward through directly nested
// "torso" nodes. Returns nil when no "torso" lies on the path to the root.
func BodyRoot(n *Node) *Node {
	obj := n
	for obj != nil && obj.Name != BodyRootName {
		obj = obj.Parent
	}
	for obj != nil && obj.Parent != nil && obj.Parent.Name == BodyRootName {
		obj = obj.Parent
	}
	return obj
}

// OutermostJoint walks up from n while the parent represents the same
// joint, returning the outermost node of that joint. ok is false when n is
// not a joint.
func OutermostJoint(n *Node) (*Node, bool) {
	if n == nil {
		return nil, false
	}
	j, ok := ParseJoint(n.Name)
	if !ok {
		return nil, false
	}
	obj := n
	for obj.Parent != nil {
		pj, pok := ParseJoint(obj.Parent.Name)
		if !pok || pj != j {
			break
		}
		obj = obj.Parent
	}
	return obj, true
}

package capture

import "posecap/internal/scene"

// reparentEntry remembers where a skin patch lived before it was moved to
// the scene root.
type reparentEntry struct {
	node      *scene.Node
	parent    *scene.Node
	index     int
	transform scene.Transform
}

// CaptureState maps each detached skin patch to its original parent and
// records the body roots it hid. It belongs to exactly one capture call and
// is consumed by the first Restore.
type CaptureState struct {
	entries []reparentEntry
	bodies  []*scene.Node
	visible []bool
}

// detachSkins moves every skin patch to the scene root, keeping its world
// transform so joint rotations no longer drive it, and hides the body roots
// so only the detached skin renders.
func detachSkins(sc *scene.Scene) *CaptureState {
	st := &CaptureState{}
	for _, patch := range sc.SkinPatches() {
		st.entries = append(st.entries, reparentEntry{
			node:      patch,
			parent:    patch.Parent,
			index:     patch.Index(),
			transform: patch.Transform,
		})
		sc.Attach(patch)
	}
	for _, body := range sc.Bodies() {
		st.bodies = append(st.bodies, body)
		st.visible = append(st.visible, body.Visible)
		body.Visible = false
	}
	return st
}

// Len returns the number of pending reparent records.
func (st *CaptureState) Len() int { return len(st.entries) }

// Restore reattaches every patch at its recorded parent and sibling index
// with its exact local transform, and restores body visibility. Later calls
// do nothing.
func (st *CaptureState) Restore() {
	for i := len(st.entries) - 1; i >= 0; i-- {
		e := st.entries[i]
		if e.parent != nil {
			e.parent.AttachAt(e.node, e.index)
		} else {
			e.node.RemoveFromParent()
		}
		e.node.Transform = e.transform
	}
	for i, body := range st.bodies {
		body.Visible = st.visible[i]
	}
	st.entries = nil
	st.bodies = nil
	st.visible = nil
}

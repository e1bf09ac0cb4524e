package scene

// Snapshot records the observable structure of a scene: topology, sibling
// order, visibility, local transforms and material kinds. Two snapshots of
// the same scene compare equal with reflect.DeepEqual when nothing changed.
type Snapshot struct {
	Count      int
	Children   map[*Node][]*Node
	Parents    map[*Node]*Node
	Visible    map[*Node]bool
	Transforms map[*Node]Transform
	Materials  map[*Node]MaterialKind
}

// TakeSnapshot walks the whole scene, invisible nodes included.
func (s *Scene) TakeSnapshot() Snapshot {
	snap := Snapshot{
		Children:   map[*Node][]*Node{},
		Parents:    map[*Node]*Node{},
		Visible:    map[*Node]bool{},
		Transforms: map[*Node]Transform{},
		Materials:  map[*Node]MaterialKind{},
	}
	s.Root.Traverse(func(n *Node) {
		snap.Count++
		snap.Parents[n] = n.Parent
		snap.Visible[n] = n.Visible
		snap.Transforms[n] = n.Transform
		if len(n.Children) > 0 {
			snap.Children[n] = append([]*Node(nil), n.Children...)
		}
		if n.Material != nil {
			snap.Materials[n] = n.Material.Kind
		}
	})
	return snap
}

package scene

import "posecap/internal/mathutil"

// Mesh is indexed triangle geometry in the owning node's local space.
// Meshes are immutable once built and shared between cloned nodes.
type Mesh struct {
	Positions []mathutil.Vec3
	UVs       [][2]float64 // optional, parallel to Positions
	Triangles [][3]int
}

// Box returns an axis-aligned box of the given size centered at center.
func Box(size, center mathutil.Vec3) *Mesh {
	hx, hy, hz := size[0]/2, size[1]/2, size[2]/2
	cx, cy, cz := center[0], center[1], center[2]
	m := &Mesh{}
	// faces: +x, -x, +y, -y, +z, -z; each as a quad with outward winding
	faces := [6][4]mathutil.Vec3{
		{{hx, -hy, hz}, {hx, -hy, -hz}, {hx, hy, -hz}, {hx, hy, hz}},
		{{-hx, -hy, -hz}, {-hx, -hy, hz}, {-hx, hy, hz}, {-hx, hy, -hz}},
		{{-hx, hy, hz}, {hx, hy, hz}, {hx, hy, -hz}, {-hx, hy, -hz}},
		{{-hx, -hy, -hz}, {hx, -hy, -hz}, {hx, -hy, hz}, {-hx, -hy, hz}},
		{{-hx, -hy, hz}, {hx, -hy, hz}, {hx, hy, hz}, {-hx, hy, hz}},
		{{hx, -hy, -hz}, {-hx, -hy, -hz}, {-hx, hy, -hz}, {hx, hy, -hz}},
	}
	uvs := [4][2]float64{{0, 1}, {1, 1}, {1, 0}, {0, 0}}
	for _, f := range faces {
		base := len(m.Positions)
		for i, p := range f {
			m.Positions = append(m.Positions, mathutil.Vec3{p[0] + cx, p[1] + cy, p[2] + cz})
			m.UVs = append(m.UVs, uvs[i])
		}
		m.Triangles = append(m.Triangles, [3]int{base, base + 1, base + 2}, [3]int{base, base + 2, base + 3})
	}
	return m
}

// Quad returns a single rectangle in the XZ plane (y = 0) spanning the given corners.
func Quad(x0, z0, x1, z1 float64) *Mesh {
	return &Mesh{
		Positions: []mathutil.Vec3{{x0, 0, z0}, {x1, 0, z0}, {x1, 0, z1}, {x0, 0, z1}},
		UVs:       [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
		Triangles: [][3]int{{0, 2, 1}, {0, 3, 2}},
	}
}

// Merge concatenates meshes into one.
func Merge(meshes ...*Mesh) *Mesh {
	out := &Mesh{}
	for _, m := range meshes {
		base := len(out.Positions)
		out.Positions = append(out.Positions, m.Positions...)
		if len(m.UVs) == len(m.Positions) {
			out.UVs = append(out.UVs, m.UVs...)
		} else {
			out.UVs = append(out.UVs, make([][2]float64, len(m.Positions))...)
		}
		for _, t := range m.Triangles {
			out.Triangles = append(out.Triangles, [3]int{t[0] + base, t[1] + base, t[2] + base})
		}
	}
	return out
}

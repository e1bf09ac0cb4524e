package raster

import (
	"posecap/internal/mathutil"
	"posecap/internal/scene"
)

// View bundles the camera matrices used to project a scene.
type View struct {
	ViewMatrix mathutil.Mat4
	Projection mathutil.Mat4
}

// DrawScene rasterizes every visible mesh node of root into fb. The caller
// clears fb first. Returns the number of triangles submitted.
func DrawScene(fb *FrameBuffer, root *scene.Node, view View, lc *LightConfig) int {
	viewProj := mathutil.Mat4Mul(view.Projection, view.ViewMatrix)
	w, h := float64(fb.Width), float64(fb.Height)

	var (
		verts []Vertex
		world []mathutil.Vec3
		ok    []bool
		count int
	)

	root.TraverseVisible(func(n *scene.Node) {
		if n.Mesh == nil || n.Material == nil || len(n.Mesh.Triangles) == 0 {
			return
		}
		mesh := n.Mesh
		model := n.WorldMatrix()
		mvp := mathutil.Mat4Mul(viewProj, model)

		// Project vertices, reusing scratch slices across meshes
		verts = verts[:0]
		world = world[:0]
		ok = ok[:0]
		for i, p := range mesh.Positions {
			clip := mvp.MulVec4(p.Point())
			valid := clip[3] > 1e-6
			var v Vertex
			if valid {
				invW := 1 / clip[3]
				v.X = (clip[0]*invW*0.5 + 0.5) * w
				v.Y = (1 - (clip[1]*invW*0.5 + 0.5)) * h
				v.Z = clip[2] * invW
			}
			if i < len(mesh.UVs) {
				v.U, v.V = mesh.UVs[i][0], mesh.UVs[i][1]
			}
			verts = append(verts, v)
			world = append(world, model.MulPoint(p))
			ok = append(ok, valid)
		}

		mat := n.Material
		sh := Shading{
			Kind:  mat.Kind,
			R:     mat.Color.R,
			G:     mat.Color.G,
			B:     mat.Color.B,
			A:     mat.Color.A,
			Tex:   mat.Texture,
			Light: lc,
		}
		if sh.A == 0 && mat.Kind != scene.MaterialBasic {
			sh.A = 255
		}

		for _, tri := range mesh.Triangles {
			a, b, c := tri[0], tri[1], tri[2]
			if a < 0 || b < 0 || c < 0 || a >= len(verts) || b >= len(verts) || c >= len(verts) {
				continue
			}
			// Triangles crossing the camera plane are dropped, not clipped
			if !ok[a] || !ok[b] || !ok[c] {
				continue
			}
			normal := world[b].Sub(world[a]).Cross(world[c].Sub(world[a])).Normalize()
			viewNormal := view.ViewMatrix.MulDir(normal).Normalize()
			if viewNormal[2] < 0 {
				// back face: shade it as seen from the camera
				viewNormal = viewNormal.Scale(-1)
			}
			sh.WorldNormal = normal
			sh.ViewNormal = viewNormal
			RasterizeTriangle(fb, verts[a], verts[b], verts[c], &sh)
			count++
		}
	})

	return count
}

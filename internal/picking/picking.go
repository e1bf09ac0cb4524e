// Package picking maps pointer clicks on the viewport to scene nodes and
// attaches the transform gizmo to the resolved target.
package picking

import (
	"sort"

	"posecap/internal/gizmo"
	"posecap/internal/logx"
	"posecap/internal/mathutil"
	"posecap/internal/render"
	"posecap/internal/scene"
)

// Viewport reports the logical size of the surface receiving pointer events.
type Viewport interface {
	Size() (width, height int)
}

// Hit is one ray intersection with a mesh node.
type Hit struct {
	Node     *scene.Node
	Distance float64
	Point    mathutil.Vec3
}

// Result describes what a click did.
type Result struct {
	// Hit is the intersected node, nil when the click missed every body.
	Hit *scene.Node
	// Target is the node the gizmo was attached to, nil when detached or
	// left unchanged.
	Target *scene.Node
	Mode   gizmo.Mode
	Space  gizmo.Space
}

// Controller owns the click latch and performs picks.
type Controller struct {
	Scene    *scene.Scene
	Camera   *render.Camera
	Gizmo    *gizmo.Gizmo
	Viewport Viewport

	clicked bool
}

// NDC maps a pointer position in pixels to normalized device coordinates.
func NDC(px, py float64, width, height int) (float64, float64) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	return (px/float64(width))*2 - 1, -(py/float64(height))*2 + 1
}

// PointerDown arms the click latch.
func (c *Controller) PointerDown() { c.clicked = true }

// PointerMove cancels the click latch; the gesture is a drag.
func (c *Controller) PointerMove() { c.clicked = false }

// Clicked reports whether the latch is armed.
func (c *Controller) Clicked() bool { return c.clicked }

// PointerUp consumes the latch and picks when the gesture was a click.
// ok is false when the gesture was a drag and nothing happened.
func (c *Controller) PointerUp(px, py float64, moveMode bool) (Result, bool) {
	if !c.clicked {
		return Result{}, false
	}
	c.clicked = false
	return c.Pick(px, py, moveMode), true
}

// Intersect returns hits against visible meshes inside "torso" subtrees,
// closest first.
func (c *Controller) Intersect(ray mathutil.Ray) []Hit {
	var hits []Hit
	for _, body := range c.Scene.Bodies() {
		body.TraverseVisible(func(n *scene.Node) {
			if n.Mesh == nil {
				return
			}
			if h, ok := intersectMesh(ray, n); ok {
				hits = append(hits, h)
			}
		})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	return hits
}

func intersectMesh(ray mathutil.Ray, n *scene.Node) (Hit, bool) {
	world := n.WorldMatrix()
	best := Hit{Node: n}
	found := false
	pos := n.Mesh.Positions
	for _, tri := range n.Mesh.Triangles {
		if tri[0] >= len(pos) || tri[1] >= len(pos) || tri[2] >= len(pos) {
			continue
		}
		a := world.MulPoint(pos[tri[0]])
		b := world.MulPoint(pos[tri[1]])
		cc := world.MulPoint(pos[tri[2]])
		t, ok := ray.IntersectTriangle(a, b, cc)
		if ok && (!found || t < best.Distance) {
			best.Distance = t
			best.Point = ray.At(t)
			found = true
		}
	}
	return best, found
}

// Pick resolves the closest node under (px, py) and attaches the gizmo:
// the whole body in move mode, otherwise the outermost node of the clicked
// joint. A miss detaches the gizmo.
func (c *Controller) Pick(px, py float64, moveMode bool) Result {
	w, h := c.Viewport.Size()
	x, y := NDC(px, py, w, h)
	hits := c.Intersect(c.Camera.Ray(x, y))
	if len(hits) == 0 {
		c.Gizmo.Detach()
		return Result{}
	}

	res := Result{Hit: hits[0].Node}
	target, mode, space, ok := Resolve(res.Hit, moveMode)
	logx.Logger().Debug("picking: hit", "node", res.Hit.Name, "distance", hits[0].Distance, "moveMode", moveMode, "resolved", ok)
	if !ok {
		return res
	}
	c.Gizmo.SetMode(mode)
	c.Gizmo.SetSpace(space)
	c.Gizmo.Attach(target)
	res.Target, res.Mode, res.Space = target, mode, space
	return res
}

// Resolve maps a hit node to its manipulation target. ok is false when the
// hit does not resolve: no body root in move mode, or not a joint otherwise.
func Resolve(hit *scene.Node, moveMode bool) (*scene.Node, gizmo.Mode, gizmo.Space, bool) {
	if moveMode {
		body := scene.BodyRoot(hit)
		if body == nil {
			return nil, 0, 0, false
		}
		return body, gizmo.Translate, gizmo.World, true
	}
	joint, ok := scene.OutermostJoint(hit)
	if !ok {
		return nil, 0, 0, false
	}
	return joint, gizmo.Rotate, gizmo.Local, true
}

package render

import (
	"math"

	"posecap/internal/mathutil"
	"posecap/internal/raster"
)

// Camera is a perspective camera looking from Position towards Target.
type Camera struct {
	FOV    float64 // vertical field of view, degrees
	Aspect float64
	Near   float64
	Far    float64

	Position mathutil.Vec3
	Target   mathutil.Vec3
	Up       mathutil.Vec3
}

// NewCamera returns a camera at the origin looking down -Z.
func NewCamera(fov, aspect, near, far float64) *Camera {
	return &Camera{
		FOV:    fov,
		Aspect: aspect,
		Near:   near,
		Far:    far,
		Target: mathutil.Vec3{0, 0, -1},
		Up:     mathutil.Vec3{0, 1, 0},
	}
}

// LookAt points the camera at target.
func (c *Camera) LookAt(target mathutil.Vec3) {
	c.Target = target
}

// ViewMatrix maps world space to camera space.
func (c *Camera) ViewMatrix() mathutil.Mat4 {
	return mathutil.LookAt(c.Position, c.Target, c.Up)
}

// ProjectionMatrix maps camera space to clip space.
func (c *Camera) ProjectionMatrix() mathutil.Mat4 {
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	return mathutil.Perspective(mathutil.Deg2Rad(c.FOV), aspect, c.Near, c.Far)
}

// View returns the matrices the rasterizer needs.
func (c *Camera) View() raster.View {
	return raster.View{ViewMatrix: c.ViewMatrix(), Projection: c.ProjectionMatrix()}
}

// Ray returns the world-space ray through normalized device coordinates
// (ndcX, ndcY), both in [-1, 1] with +Y up.
func (c *Camera) Ray(ndcX, ndcY float64) mathutil.Ray {
	forward := c.Target.Sub(c.Position).Normalize()
	right := forward.Cross(c.Up).Normalize()
	up := right.Cross(forward)

	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	t := math.Tan(mathutil.Deg2Rad(c.FOV) / 2)
	dir := forward.
		Add(right.Scale(ndcX * t * aspect)).
		Add(up.Scale(ndcY * t))
	return mathutil.Ray{Origin: c.Position, Dir: dir.Normalize()}
}

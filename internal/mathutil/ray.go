package mathutil

import "math"

// Ray is a half-line from Origin along the unit vector Dir.
type Ray struct {
	Origin Vec3
	Dir    Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Dir.Scale(t))
}

// IntersectTriangle runs Möller–Trumbore against triangle (a, b, c),
// both faces counted. Returns the hit distance and true on a hit in front
// of the origin.
func (r Ray) IntersectTriangle(a, b, c Vec3) (float64, bool) {
	const eps = 1e-9
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := r.Dir.Cross(e2)
	det := e1.Dot(p)
	if math.Abs(det) < eps {
		return 0, false
	}
	inv := 1 / det
	s := r.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := r.Dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := e2.Dot(q) * inv
	if t <= eps {
		return 0, false
	}
	return t, true
}

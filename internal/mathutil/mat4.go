package mathutil

import "math"

// Mat4 is a 4×4 matrix stored row-major. Points are column vectors: p' = M × p.
type Mat4 [16]float64

func Mat4Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mat4Mul returns a × b.
func Mat4Mul(a, b Mat4) Mat4 {
	var m Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m[r*4+c] = a[r*4+0]*b[0*4+c] + a[r*4+1]*b[1*4+c] +
				a[r*4+2]*b[2*4+c] + a[r*4+3]*b[3*4+c]
		}
	}
	return m
}

// MulPoint transforms a 3D point (w=1) by the affine part of the matrix.
func (m Mat4) MulPoint(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2] + m[3],
		m[4]*v[0] + m[5]*v[1] + m[6]*v[2] + m[7],
		m[8]*v[0] + m[9]*v[1] + m[10]*v[2] + m[11],
	}
}

// MulDir transforms a direction (w=0), ignoring translation.
func (m Mat4) MulDir(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2],
		m[4]*v[0] + m[5]*v[1] + m[6]*v[2],
		m[8]*v[0] + m[9]*v[1] + m[10]*v[2],
	}
}

// MulVec4 returns M × v with the full projective row.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	var out Vec4
	for r := 0; r < 4; r++ {
		out[r] = m[r*4]*v[0] + m[r*4+1]*v[1] + m[r*4+2]*v[2] + m[r*4+3]*v[3]
	}
	return out
}

// FromMat3Translation builds a 4×4 affine matrix from a 3×3 rotation and translation.
func FromMat3Translation(r Mat3, t Vec3) Mat4 {
	return Mat4{
		r[0], r[1], r[2], t[0],
		r[3], r[4], r[5], t[1],
		r[6], r[7], r[8], t[2],
		0, 0, 0, 1,
	}
}

// Linear returns the upper-left 3×3 block.
func (m Mat4) Linear() Mat3 {
	return Mat3{
		m[0], m[1], m[2],
		m[4], m[5], m[6],
		m[8], m[9], m[10],
	}
}

// Translation returns the translation column.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[3], m[7], m[11]}
}

// AffineInverse inverts a matrix whose last row is (0, 0, 0, 1).
func (m Mat4) AffineInverse() Mat4 {
	inv := m.Linear().Inverse()
	t := inv.MulVec3(m.Translation()).Scale(-1)
	return FromMat3Translation(inv, t)
}

// Compose builds T × R × S.
func Compose(pos Vec3, rot Quat, scale Vec3) Mat4 {
	r := QuatToMat3(rot)
	for row := 0; row < 3; row++ {
		r[row*3+0] *= scale[0]
		r[row*3+1] *= scale[1]
		r[row*3+2] *= scale[2]
	}
	return FromMat3Translation(r, pos)
}

// Decompose splits an affine matrix into translation, rotation and scale.
// Shear is discarded.
func (m Mat4) Decompose() (Vec3, Quat, Vec3) {
	l := m.Linear()
	sx := Vec3{l[0], l[3], l[6]}.Len()
	sy := Vec3{l[1], l[4], l[7]}.Len()
	sz := Vec3{l[2], l[5], l[8]}.Len()
	if l.Det() < 0 {
		sx = -sx
	}
	var r Mat3
	for row := 0; row < 3; row++ {
		r[row*3+0] = safeDiv(l[row*3+0], sx)
		r[row*3+1] = safeDiv(l[row*3+1], sy)
		r[row*3+2] = safeDiv(l[row*3+2], sz)
	}
	return m.Translation(), QuatFromMat3(r), Vec3{sx, sy, sz}
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// Perspective returns an OpenGL-style projection matrix mapping view space
// (camera looking down -Z) to clip space with NDC depth in [-1, 1].
// fovY is in radians.
func Perspective(fovY, aspect, near, far float64) Mat4 {
	f := 1 / math.Tan(fovY/2)
	nf := 1 / (near - far)
	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) * nf, 2 * far * near * nf,
		0, 0, -1, 0,
	}
}

// LookAt returns the view matrix of an eye at pos looking towards target.
func LookAt(pos, target, up Vec3) Mat4 {
	back := pos.Sub(target).Normalize()
	right := up.Cross(back).Normalize()
	if right.Len() == 0 {
		// up is parallel to the view direction
		right = Vec3{1, 0, 0}
	}
	u := back.Cross(right)
	return Mat4{
		right[0], right[1], right[2], -right.Dot(pos),
		u[0], u[1], u[2], -u.Dot(pos),
		back[0], back[1], back[2], -back.Dot(pos),
		0, 0, 0, 1,
	}
}

// IsIdentity checks if the matrix is approximately identity.
func (m Mat4) IsIdentity() bool {
	id := Mat4Identity()
	for i := 0; i < 16; i++ {
		d := m[i] - id[i]
		if d > 1e-8 || d < -1e-8 {
			return false
		}
	}
	return true
}

package mathutil

import "math"

// Quat represents a quaternion (x, y, z, w).
type Quat [4]float64

// QuatIdentity is the rotation that does nothing.
func QuatIdentity() Quat {
	return Quat{0, 0, 0, 1}
}

// EulerToQuat converts Euler XYZ (radians) to a quaternion.
func EulerToQuat(rx, ry, rz float64) Quat {
	cx, sx := math.Cos(rx*0.5), math.Sin(rx*0.5)
	cy, sy := math.Cos(ry*0.5), math.Sin(ry*0.5)
	cz, sz := math.Cos(rz*0.5), math.Sin(rz*0.5)

	return Quat{
		sx*cy*cz + cx*sy*sz, // x
		cx*sy*cz - sx*cy*sz, // y
		cx*cy*sz + sx*sy*cz, // z
		cx*cy*cz - sx*sy*sz, // w
	}
}

// QuatFromAxisAngle builds a rotation of angle radians around axis.
func QuatFromAxisAngle(axis Vec3, angle float64) Quat {
	a := axis.Normalize()
	s := math.Sin(angle / 2)
	return Quat{a[0] * s, a[1] * s, a[2] * s, math.Cos(angle / 2)}
}

// QuatMul returns a × b (apply b first, then a).
func QuatMul(a, b Quat) Quat {
	ax, ay, az, aw := a[0], a[1], a[2], a[3]
	bx, by, bz, bw := b[0], b[1], b[2], b[3]
	return Quat{
		aw*bx + ax*bw + ay*bz - az*by,
		aw*by - ax*bz + ay*bw + az*bx,
		aw*bz + ax*by - ay*bx + az*bw,
		aw*bw - ax*bx - ay*by - az*bz,
	}
}

// Normalize returns q scaled to unit length; the zero quaternion becomes identity.
func (q Quat) Normalize() Quat {
	l := math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
	if l < 1e-12 {
		return QuatIdentity()
	}
	return Quat{q[0] / l, q[1] / l, q[2] / l, q[3] / l}
}

// Conjugate returns the inverse of a unit quaternion.
func (q Quat) Conjugate() Quat {
	return Quat{-q[0], -q[1], -q[2], q[3]}
}

// Rotate applies the rotation to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	return QuatToMat3(q).MulVec3(v)
}

// QuatToMat3 converts a quaternion to a 3×3 rotation matrix.
func QuatToMat3(q Quat) Mat3 {
	x, y, z, w := q[0], q[1], q[2], q[3]
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	return Mat3{
		1 - 2*(yy+zz), 2 * (xy - wz), 2 * (xz + wy),
		2 * (xy + wz), 1 - 2*(xx+zz), 2 * (yz - wx),
		2 * (xz - wy), 2 * (yz + wx), 1 - 2*(xx+yy),
	}
}

// QuatFromMat3 converts a pure rotation matrix to a quaternion (Shepperd's method).
func QuatFromMat3(m Mat3) Quat {
	m00, m01, m02 := m[0], m[1], m[2]
	m10, m11, m12 := m[3], m[4], m[5]
	m20, m21, m22 := m[6], m[7], m[8]

	trace := m00 + m11 + m22
	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		return Quat{(m21 - m12) * s, (m02 - m20) * s, (m10 - m01) * s, 0.25 / s}
	case m00 > m11 && m00 > m22:
		s := 2 * math.Sqrt(1+m00-m11-m22)
		return Quat{0.25 * s, (m01 + m10) / s, (m02 + m20) / s, (m21 - m12) / s}
	case m11 > m22:
		s := 2 * math.Sqrt(1+m11-m00-m22)
		return Quat{(m01 + m10) / s, 0.25 * s, (m12 + m21) / s, (m02 - m20) / s}
	default:
		s := 2 * math.Sqrt(1+m22-m00-m11)
		return Quat{(m02 + m20) / s, (m12 + m21) / s, 0.25 * s, (m10 - m01) / s}
	}
}

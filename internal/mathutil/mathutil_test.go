package mathutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVec(t *testing.T, want, got Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-9, "component %d", i)
	}
}

func TestVec3(t *testing.T) {
	a, b := Vec3{1, 0, 0}, Vec3{0, 1, 0}
	assert.Equal(t, Vec3{0, 0, 1}, a.Cross(b))
	assert.Equal(t, 0.0, a.Dot(b))
	assert.Equal(t, 5.0, Vec3{3, 4, 0}.Len())
	assert.Equal(t, Vec3{}, Vec3{}.Normalize())
	assert.InDelta(t, math.Sqrt2, a.DistTo(b), 1e-12)
	assert.Equal(t, Vec4{1, 2, 3, 1}, Vec3{1, 2, 3}.Point())
}

func TestQuatRotate(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{0, 0, 1}, math.Pi/2)
	assertVec(t, Vec3{0, 1, 0}, q.Rotate(Vec3{1, 0, 0}))
	assertVec(t, Vec3{1, 0, 0}, q.Conjugate().Rotate(Vec3{0, 1, 0}))

	// b first, then a
	a := QuatFromAxisAngle(Vec3{0, 1, 0}, math.Pi/2)
	ab := QuatMul(a, q)
	assertVec(t, a.Rotate(q.Rotate(Vec3{1, 0, 0})), ab.Rotate(Vec3{1, 0, 0}))

	assert.Equal(t, QuatIdentity(), Quat{}.Normalize())
}

func TestEulerToQuat(t *testing.T) {
	q := EulerToQuat(0, math.Pi/2, 0)
	assertVec(t, Vec3{0, 0, -1}, q.Rotate(Vec3{1, 0, 0}))
	assert.Equal(t, QuatIdentity(), EulerToQuat(0, 0, 0))
}

func TestQuatMat3RoundTrip(t *testing.T) {
	for _, q := range []Quat{
		EulerToQuat(0.1, 0.2, 0.3),
		EulerToQuat(math.Pi-0.01, 0, 0),
		EulerToQuat(0, math.Pi-0.01, 0),
		EulerToQuat(0, 0, math.Pi-0.01),
	} {
		got := QuatFromMat3(QuatToMat3(q))
		v := Vec3{0.3, -0.5, 0.8}
		assertVec(t, q.Rotate(v), got.Rotate(v))
	}
}

func TestComposeDecompose(t *testing.T) {
	pos := Vec3{1, -2, 3}
	rot := EulerToQuat(0.4, -0.3, 1.1)
	scale := Vec3{2, 1, 0.5}
	m := Compose(pos, rot, scale)

	p, r, s := m.Decompose()
	assertVec(t, pos, p)
	assertVec(t, scale, s)
	v := Vec3{1, 1, 1}
	assertVec(t, rot.Rotate(v), r.Rotate(v))
}

func TestAffineInverse(t *testing.T) {
	m := Compose(Vec3{5, 6, 7}, EulerToQuat(0.2, 0.7, -0.4), Vec3{1, 3, 2})
	assert.True(t, Mat4Mul(m, m.AffineInverse()).IsIdentity())
	assert.True(t, Mat4Identity().IsIdentity())

	p := Vec3{1, 2, 3}
	assertVec(t, p, m.AffineInverse().MulPoint(m.MulPoint(p)))
}

func TestMat3Inverse(t *testing.T) {
	m := RotY(0.5)
	id := Mat3Mul(m, m.Inverse())
	for i, want := range Mat3Identity() {
		assert.InDelta(t, want, id[i], 1e-12)
	}
	assert.InDelta(t, 1, m.Det(), 1e-12)
	assert.InDelta(t, math.Pi, Deg2Rad(180), 1e-12)
}

func TestPerspectiveDepthRange(t *testing.T) {
	near, far := 130.0, 600.0
	p := Perspective(Deg2Rad(60), 1, near, far)

	ndc := func(z float64) float64 {
		c := p.MulVec4(Vec4{0, 0, -z, 1})
		return c[2] / c[3]
	}
	assert.InDelta(t, -1, ndc(near), 1e-9)
	assert.InDelta(t, 1, ndc(far), 1e-9)
	assert.Less(t, ndc(200), ndc(300))
}

func TestLookAt(t *testing.T) {
	v := LookAt(Vec3{0, 100, 200}, Vec3{0, 100, 0}, Vec3{0, 1, 0})
	assertVec(t, Vec3{0, 0, -200}, v.MulPoint(Vec3{0, 100, 0}))
	assertVec(t, Vec3{10, 0, -200}, v.MulPoint(Vec3{10, 100, 0}))

	// looking straight down keeps a valid basis
	down := LookAt(Vec3{0, 10, 0}, Vec3{}, Vec3{0, 1, 0})
	assertVec(t, Vec3{0, 0, -10}, down.MulPoint(Vec3{}))
}

func TestIntersectTriangle(t *testing.T) {
	a, b, c := Vec3{-1, -1, 0}, Vec3{1, -1, 0}, Vec3{0, 1, 0}
	r := Ray{Origin: Vec3{0, 0, 5}, Dir: Vec3{0, 0, -1}}

	d, ok := r.IntersectTriangle(a, b, c)
	require.True(t, ok)
	assert.InDelta(t, 5, d, 1e-12)
	assertVec(t, Vec3{}, r.At(d))

	// back face counts too
	_, ok = r.IntersectTriangle(a, c, b)
	assert.True(t, ok)

	// behind the origin
	_, ok = Ray{Origin: Vec3{0, 0, -5}, Dir: Vec3{0, 0, -1}}.IntersectTriangle(a, b, c)
	assert.False(t, ok)

	// outside
	_, ok = Ray{Origin: Vec3{3, 0, 5}, Dir: Vec3{0, 0, -1}}.IntersectTriangle(a, b, c)
	assert.False(t, ok)

	// parallel
	_, ok = Ray{Origin: Vec3{0, 0, 5}, Dir: Vec3{1, 0, 0}}.IntersectTriangle(a, b, c)
	assert.False(t, ok)
}

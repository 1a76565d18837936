package math

import "math"

// SlerpEpsilon is the threshold on (1 - cos angle) below which Slerp falls back
// to component-wise linear interpolation.
const SlerpEpsilon = 1e-6

// Quat represents a quaternion for 3D rotations.
// Components are stored as X, Y, Z, W where W is the scalar part.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{X: 0, Y: 0, Z: 0, W: 1}
}

// QuatFromAxisAngle creates a quaternion from axis-angle rotation.
// axis should be normalized, angle is in radians.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	halfAngle := angle / 2
	s := float32(math.Sin(float64(halfAngle)))
	return Quat{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: float32(math.Cos(float64(halfAngle))),
	}
}

// QuatFromEuler creates a quaternion from Euler angles in radians.
// The rotation is applied X first, then Y, then Z (R = Rz * Ry * Rx).
func QuatFromEuler(x, y, z float32) Quat {
	qx := QuatFromAxisAngle(Vec3{X: 1}, x)
	qy := QuatFromAxisAngle(Vec3{Y: 1}, y)
	qz := QuatFromAxisAngle(Vec3{Z: 1}, z)
	return qz.Mul(qy).Mul(qx)
}

// QuatFromMat4 extracts the rotation of a matrix as a quaternion.
// Scale in the upper 3x3 block is divided out before conversion.
func QuatFromMat4(m Mat4) Quat {
	r := m.RotationOnly()
	m11, m12, m13 := r[0], r[4], r[8]
	m21, m22, m23 := r[1], r[5], r[9]
	m31, m32, m33 := r[2], r[6], r[10]
	trace := float64(m11 + m22 + m33)

	var q Quat
	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1.0)
		q.W = float32(0.25 / s)
		q.X = float32(float64(m32-m23) * s)
		q.Y = float32(float64(m13-m31) * s)
		q.Z = float32(float64(m21-m12) * s)
	case m11 > m22 && m11 > m33:
		s := 2.0 * math.Sqrt(float64(1.0+m11-m22-m33))
		q.W = float32(float64(m32-m23) / s)
		q.X = float32(0.25 * s)
		q.Y = float32(float64(m12+m21) / s)
		q.Z = float32(float64(m13+m31) / s)
	case m22 > m33:
		s := 2.0 * math.Sqrt(float64(1.0+m22-m11-m33))
		q.W = float32(float64(m13-m31) / s)
		q.X = float32(float64(m12+m21) / s)
		q.Y = float32(0.25 * s)
		q.Z = float32(float64(m23+m32) / s)
	default:
		s := 2.0 * math.Sqrt(float64(1.0+m33-m11-m22))
		q.W = float32(float64(m21-m12) / s)
		q.X = float32(float64(m13+m31) / s)
		q.Y = float32(float64(m23+m32) / s)
		q.Z = float32(0.25 * s)
	}
	return q
}

// Normalize returns a normalized quaternion.
func (q Quat) Normalize() Quat {
	length := float32(math.Sqrt(float64(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)))
	if length < 0.0001 {
		return QuatIdentity()
	}
	invLen := 1.0 / length
	return Quat{
		X: q.X * invLen,
		Y: q.Y * invLen,
		Z: q.Z * invLen,
		W: q.W * invLen,
	}
}

// Neg returns -q, which represents the same rotation.
func (q Quat) Neg() Quat {
	return Quat{X: -q.X, Y: -q.Y, Z: -q.Z, W: -q.W}
}

// Dot returns the dot product of two quaternions.
func (q Quat) Dot(other Quat) float32 {
	return q.X*other.X + q.Y*other.Y + q.Z*other.Z + q.W*other.W
}

// Slerp performs spherical linear interpolation from q to other.
// Inputs are expected to be unit quaternions; the result is not renormalized.
func (q Quat) Slerp(other Quat, t float32) Quat {
	return Slerp(q, other, t)
}

// Slerp performs spherical linear interpolation between a and b along the shortest arc.
// When the quaternions are nearly parallel it falls back to linear weights.
func Slerp(a, b Quat, t float32) Quat {
	dot := float64(a.Dot(b))

	// q and -q are the same rotation; flip to avoid the long way around.
	if dot < 0 {
		b = b.Neg()
		dot = -dot
	}

	s0 := 1 - float64(t)
	s1 := float64(t)
	if 1-dot > SlerpEpsilon {
		omega := math.Acos(math.Min(dot, 1))
		sinOmega := math.Sin(omega)
		s0 = math.Sin((1-float64(t))*omega) / sinOmega
		s1 = math.Sin(float64(t)*omega) / sinOmega
	}

	return Quat{
		X: float32(s0*float64(a.X) + s1*float64(b.X)),
		Y: float32(s0*float64(a.Y) + s1*float64(b.Y)),
		Z: float32(s0*float64(a.Z) + s1*float64(b.Z)),
		W: float32(s0*float64(a.W) + s1*float64(b.W)),
	}
}

// ToMat4 converts the quaternion to a 4x4 rotation matrix.
func (q Quat) ToMat4() Mat4 {
	// Normalize first
	q = q.Normalize()

	xx := q.X * q.X
	xy := q.X * q.Y
	xz := q.X * q.Z
	xw := q.X * q.W
	yy := q.Y * q.Y
	yz := q.Y * q.Z
	yw := q.Y * q.W
	zz := q.Z * q.Z
	zw := q.Z * q.W

	return Mat4{
		1 - 2*(yy+zz), 2 * (xy + zw), 2 * (xz - yw), 0,
		2 * (xy - zw), 1 - 2*(xx+zz), 2 * (yz + xw), 0,
		2 * (xz + yw), 2 * (yz - xw), 1 - 2*(xx+yy), 0,
		0, 0, 0, 1,
	}
}

// Lerp performs normalized linear interpolation between two quaternions.
// Use Slerp for constant angular velocity; this is the cheaper approximation.
func (q Quat) Lerp(other Quat, t float32) Quat {
	if q.Dot(other) < 0 {
		other = other.Neg()
	}
	return Quat{
		X: q.X + t*(other.X-q.X),
		Y: q.Y + t*(other.Y-q.Y),
		Z: q.Z + t*(other.Z-q.Z),
		W: q.W + t*(other.W-q.W),
	}.Normalize()
}

// Mul multiplies two quaternions (combines rotations).
// The result applies other first, then q.
func (q Quat) Mul(other Quat) Quat {
	a := Vec3{X: q.X, Y: q.Y, Z: q.Z}
	b := Vec3{X: other.X, Y: other.Y, Z: other.Z}
	v := b.Scale(q.W).Add(a.Scale(other.W)).Add(a.Cross(b))
	return Quat{X: v.X, Y: v.Y, Z: v.Z, W: q.W*other.W - a.Dot(b)}
}

// SameRotation reports whether q and other describe the same rotation within eps,
// treating q and -q as equal.
func (q Quat) SameRotation(other Quat, eps float32) bool {
	d := q.Normalize().Dot(other.Normalize())
	return absf(absf(d)-1) <= eps
}

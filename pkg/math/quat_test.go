package math

import (
	"math"
	"testing"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
}

func TestQuatNormalize(t *testing.T) {
	q := Quat{X: 1, Y: 2, Z: 3, W: 4}
	n := q.Normalize()

	length := float32(math.Sqrt(float64(n.X*n.X + n.Y*n.Y + n.Z*n.Z + n.W*n.W)))
	if math.Abs(float64(length-1.0)) > 0.0001 {
		t.Errorf("Normalized quaternion length should be 1, got %v", length)
	}
}

func TestQuatSlerp(t *testing.T) {
	// Test endpoints
	q1 := QuatIdentity()
	q2 := QuatFromAxisAngle(Vec3{X: 0, Y: 1, Z: 0}, float32(math.Pi/2))

	// At t=0, should equal q1
	result0 := q1.Slerp(q2, 0)
	if math.Abs(float64(result0.W-q1.W)) > 0.001 {
		t.Errorf("Slerp at t=0 should equal q1")
	}

	// At t=1, should equal q2
	result1 := q1.Slerp(q2, 1)
	if math.Abs(float64(result1.W-q2.W)) > 0.001 {
		t.Errorf("Slerp at t=1 should equal q2")
	}

	// At t=0.5, should be halfway
	result5 := q1.Slerp(q2, 0.5)
	// For 90 degree rotation, halfway should be 45 degrees
	expectedW := float32(math.Cos(float64(math.Pi / 8))) // cos(45/2 degrees)
	if math.Abs(float64(result5.W-expectedW)) > 0.01 {
		t.Errorf("Slerp at t=0.5: expected W ~%v, got %v", expectedW, result5.W)
	}
}

func TestSlerpShortestPath(t *testing.T) {
	a := QuatFromAxisAngle(Vec3{X: 1}, 0.3)
	q := QuatFromAxisAngle(Vec3{Y: 1}, 1.2)

	got := Slerp(a, q, 0.5)
	gotNeg := Slerp(a, q.Neg(), 0.5)

	if !got.SameRotation(gotNeg, 1e-5) {
		t.Errorf("slerp toward q and -q should agree, got %v and %v", got, gotNeg)
	}
}

func TestSlerpNearParallel(t *testing.T) {
	a := QuatFromAxisAngle(Vec3{Z: 1}, 0.5)
	b := QuatFromAxisAngle(Vec3{Z: 1}, 0.5+1e-5)

	got := Slerp(a, b, 0.5)
	if math.IsNaN(float64(got.W)) || math.IsNaN(float64(got.X)) {
		t.Fatalf("near-parallel slerp produced NaN: %v", got)
	}
	if !got.SameRotation(a, 1e-4) {
		t.Errorf("near-parallel slerp should stay close to inputs, got %v", got)
	}
}

func TestSlerpIdenticalInputs(t *testing.T) {
	a := QuatFromAxisAngle(Vec3{Y: 1}, 0.8)
	got := Slerp(a, a, 0.37)
	if !got.SameRotation(a, 1e-6) {
		t.Errorf("Slerp(a, a) = %v, want %v", got, a)
	}
}

func TestQuatToMat4(t *testing.T) {
	// Identity quaternion should produce identity matrix
	q := QuatIdentity()
	m := q.ToMat4()

	identity := Identity()
	for i := 0; i < 16; i++ {
		if math.Abs(float64(m[i]-identity[i])) > 0.0001 {
			t.Errorf("Identity quat should produce identity matrix, element %d: got %v, want %v", i, m[i], identity[i])
		}
	}
}

func TestQuatFromAxisAngle(t *testing.T) {
	// 90 degrees around Y axis
	q := QuatFromAxisAngle(Vec3{X: 0, Y: 1, Z: 0}, float32(math.Pi/2))

	// Should have Y component and W = cos(45deg)
	expectedW := float32(math.Cos(math.Pi / 4))
	expectedY := float32(math.Sin(math.Pi / 4))

	if math.Abs(float64(q.W-expectedW)) > 0.001 {
		t.Errorf("QuatFromAxisAngle W: expected %v, got %v", expectedW, q.W)
	}
	if math.Abs(float64(q.Y-expectedY)) > 0.001 {
		t.Errorf("QuatFromAxisAngle Y: expected %v, got %v", expectedY, q.Y)
	}
}

func TestQuatFromMat4RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		q    Quat
	}{
		{"identity", QuatIdentity()},
		{"x 90", QuatFromAxisAngle(Vec3{X: 1}, float32(math.Pi/2))},
		{"y 170", QuatFromAxisAngle(Vec3{Y: 1}, float32(170*math.Pi/180))},
		{"z 180", QuatFromAxisAngle(Vec3{Z: 1}, float32(math.Pi))},
		{"oblique", QuatFromAxisAngle(Vec3{X: 1, Y: 1, Z: 1}.Normalize(), 2.1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := QuatFromMat4(tt.q.ToMat4())
			if !got.SameRotation(tt.q, 1e-4) {
				t.Errorf("QuatFromMat4(ToMat4(%v)) = %v", tt.q, got)
			}
		})
	}
}

func TestQuatFromMat4IgnoresScale(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{Y: 1}, 0.7)
	m := FromTRS(Vec3{X: 3}, q, Vec3{X: 2, Y: 5, Z: 0.5})

	got := QuatFromMat4(m)
	if !got.SameRotation(q, 1e-4) {
		t.Errorf("expected %v, got %v", q, got)
	}
}

func TestQuatFromEulerMatchesMatrices(t *testing.T) {
	x, y, z := float32(0.3), float32(-0.6), float32(1.1)
	want := RotateZ(z).Mul(RotateY(y)).Mul(RotateX(x))
	got := QuatFromEuler(x, y, z).ToMat4()

	if !got.ApproxEqual(want, 1e-5) {
		t.Errorf("QuatFromEuler matrix mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestQuatLerpNormalized(t *testing.T) {
	a := QuatIdentity()
	b := QuatFromAxisAngle(Vec3{Z: 1}, 1.0)

	got := a.Lerp(b, 0.5)
	length := math.Sqrt(float64(got.Dot(got)))
	if math.Abs(length-1) > 1e-5 {
		t.Errorf("Lerp result should be unit length, got %v", length)
	}
}

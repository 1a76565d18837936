package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	id := Identity()
	result := m.Mul(id)

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestMulOrder(t *testing.T) {
	// Translate after scaling: point is scaled first.
	m := Translate(10, 0, 0).Mul(Scale(2, 2, 2))
	got := m.TransformPoint([3]float32{1, 0, 0})

	want := [3]float32{12, 0, 0}
	if got != want {
		t.Errorf("T*S applied to (1,0,0): got %v, want %v", got, want)
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(5, 10, 15)

	// Translation should be in column 4 (indices 12, 13, 14)
	if m[12] != 5 || m[13] != 10 || m[14] != 15 {
		t.Errorf("Translate: got (%f, %f, %f), want (5, 10, 15)", m[12], m[13], m[14])
	}
	if got := m.Translation(); got != (Vec3{5, 10, 15}) {
		t.Errorf("Translation() = %v, want (5, 10, 15)", got)
	}
}

func TestScale(t *testing.T) {
	m := Scale(2, 3, 4)

	if m[0] != 2 || m[5] != 3 || m[10] != 4 {
		t.Errorf("Scale diagonal: got (%f, %f, %f), want (2, 3, 4)", m[0], m[5], m[10])
	}
}

func TestTransformPoint(t *testing.T) {
	// Translate by (10, 20, 30)
	m := Translate(10, 20, 30)
	p := [3]float32{1, 2, 3}
	result := m.TransformPoint(p)

	expected := [3]float32{11, 22, 33}
	if result != expected {
		t.Errorf("TransformPoint: got %v, want %v", result, expected)
	}
}

func TestRotateY90(t *testing.T) {
	m := RotateY(float32(math.Pi / 2)) // 90 degrees
	p := [3]float32{1, 0, 0}           // Point on X axis
	result := m.TransformPoint(p)

	// After 90 degree Y rotation, (1,0,0) should become approximately (0,0,-1)
	if abs(result[0]) > 0.001 || abs(result[1]) > 0.001 || abs(result[2]+1) > 0.001 {
		t.Errorf("RotateY 90: got %v, want (0, 0, -1)", result)
	}
}

func TestFromTRS(t *testing.T) {
	tr := Vec3{1, 2, 3}
	r := QuatFromAxisAngle(Vec3{Z: 1}, float32(math.Pi/2))
	s := Vec3{2, 2, 2}

	got := FromTRS(tr, r, s)
	want := Translate(1, 2, 3).Mul(RotateZ(float32(math.Pi / 2))).Mul(Scale(2, 2, 2))
	if !got.ApproxEqual(want, 1e-5) {
		t.Errorf("FromTRS mismatch:\n got %v\nwant %v", got, want)
	}

	if sf := got.ScaleFactors(); !sf.ApproxEqual(s, 1e-5) {
		t.Errorf("ScaleFactors() = %v, want %v", sf, s)
	}
}

func TestEulerFromMat4(t *testing.T) {
	tests := []struct {
		name string
		e    Vec3
	}{
		{"zero", Vec3{}},
		{"x only", Vec3{X: 0.4}},
		{"mixed", Vec3{X: 0.3, Y: -0.6, Z: 1.1}},
		{"negative", Vec3{X: -1.2, Y: 0.2, Z: -2.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := FromTRS(Vec3{}, QuatFromEuler(tt.e.X, tt.e.Y, tt.e.Z), Vec3{1.5, 1.5, 1.5})
			got := EulerFromMat4(m)
			if !got.ApproxEqual(tt.e, 1e-4) {
				t.Errorf("EulerFromMat4 = %v, want %v", got, tt.e)
			}
		})
	}
}

func TestEulerFromMat4GimbalLock(t *testing.T) {
	m := QuatFromEuler(0.5, float32(math.Pi/2), 0).ToMat4()
	e := EulerFromMat4(m)

	back := QuatFromEuler(e.X, e.Y, e.Z).ToMat4()
	if !back.ApproxEqual(m, 1e-3) {
		t.Errorf("gimbal-locked decomposition does not reproduce rotation: %v", e)
	}
}

func TestInverse(t *testing.T) {
	m := Translate(1, -2, 3).Mul(RotateX(0.7)).Mul(Scale(2, 1, 0.5))
	got := m.Mul(m.Inverse())

	if !got.ApproxEqual(Identity(), 1e-5) {
		t.Errorf("M * M^-1 should be identity, got %v", got)
	}
}

func TestInverseSingular(t *testing.T) {
	m := Scale(0, 1, 1)
	if got := m.Inverse(); got != Identity() {
		t.Errorf("singular inverse should return identity, got %v", got)
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

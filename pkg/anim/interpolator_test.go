package anim

import (
	"testing"

	"github.com/Faultbox/midgard-anim/pkg/math"
)

func TestParseInterpolator(t *testing.T) {
	tests := []struct {
		in      string
		want    Interpolator
		wantErr bool
	}{
		{"linear", InterpLinear, false},
		{"SLERP", InterpSlerp, false},
		{" step ", InterpStep, false},
		{"constant", InterpStep, false},
		{"cubic", InterpLinear, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseInterpolator(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseInterpolator(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseInterpolator(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestInterpolatorFloat(t *testing.T) {
	tests := []struct {
		name   string
		interp Interpolator
		t      float32
		want   float32
	}{
		{"linear half", InterpLinear, 0.5, 5},
		{"slerp scalar is linear", InterpSlerp, 0.25, 2.5},
		{"step holds", InterpStep, 0.99, 0},
		{"step at end", InterpStep, 1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.interp.Float(0, 10, tt.t); got != tt.want {
				t.Errorf("Float(0, 10, %v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}

func TestInterpolatorQuat(t *testing.T) {
	a := math.QuatIdentity()
	b := math.QuatFromAxisAngle(math.Vec3{Z: 1}, 1.5)

	if got := InterpStep.Quat(a, b, 0.5); got != a {
		t.Errorf("step should hold first rotation, got %v", got)
	}

	slerped := InterpSlerp.Quat(a, b, 0.5)
	if want := math.QuatFromAxisAngle(math.Vec3{Z: 1}, 0.75); !slerped.SameRotation(want, eps) {
		t.Errorf("slerp half = %v, want %v", slerped, want)
	}

	// nlerp and slerp agree on the midpoint of a symmetric arc.
	if lerped := InterpLinear.Quat(a, b, 0.5); !lerped.SameRotation(slerped, eps) {
		t.Errorf("nlerp half = %v, want %v", lerped, slerped)
	}
}

func TestInterpolatorString(t *testing.T) {
	for _, i := range []Interpolator{InterpLinear, InterpSlerp, InterpStep} {
		back, err := ParseInterpolator(i.String())
		if err != nil || back != i {
			t.Errorf("String/Parse mismatch for %d: %q -> %v, %v", int(i), i.String(), back, err)
		}
	}
}

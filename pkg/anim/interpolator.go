package anim

import (
	"fmt"
	"strings"

	"github.com/Faultbox/midgard-anim/pkg/math"
)

// Interpolator selects how values are blended between two keyframes.
type Interpolator int

const (
	InterpLinear Interpolator = iota // Component-wise lerp (nlerp for rotations)
	InterpSlerp                      // Spherical interpolation for rotations, lerp otherwise
	InterpStep                       // Hold the earlier value until the next keyframe
)

// String returns the interpolator name as used in rig files.
func (i Interpolator) String() string {
	switch i {
	case InterpLinear:
		return "linear"
	case InterpSlerp:
		return "slerp"
	case InterpStep:
		return "step"
	default:
		return fmt.Sprintf("Unknown(%d)", int(i))
	}
}

// ParseInterpolator converts a name to an Interpolator. Matching is case-insensitive.
func ParseInterpolator(s string) (Interpolator, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear", "lerp":
		return InterpLinear, nil
	case "slerp", "spherical":
		return InterpSlerp, nil
	case "step", "constant":
		return InterpStep, nil
	default:
		return InterpLinear, fmt.Errorf("unknown interpolator %q", s)
	}
}

// Float blends two scalars.
func (i Interpolator) Float(a, b, t float32) float32 {
	if i == InterpStep {
		if t < 1 {
			return a
		}
		return b
	}
	return a + t*(b-a)
}

// Vec3 blends two vectors. Slerp has no spherical meaning for vectors and falls back to lerp.
func (i Interpolator) Vec3(a, b math.Vec3, t float32) math.Vec3 {
	if i == InterpStep {
		if t < 1 {
			return a
		}
		return b
	}
	return a.Lerp(b, t)
}

// Quat blends two rotations.
func (i Interpolator) Quat(a, b math.Quat, t float32) math.Quat {
	switch i {
	case InterpStep:
		if t < 1 {
			return a
		}
		return b
	case InterpLinear:
		return a.Lerp(b, t)
	default:
		return math.Slerp(a, b, t)
	}
}

// Package anim computes per-frame skinning matrices for skinned characters.
//
// A Track of (possibly sparse) Keyframes is completed once against a joint
// Hierarchy, sampled at a time into a Pose, and the Pose is applied down the
// joint tree to produce each joint's animated transform. A Sequencer drives
// playback time for any number of Animators.
package anim

import (
	"fmt"

	"github.com/Faultbox/midgard-anim/pkg/math"
)

// Channel identifies one of the nine independently keyed scalar values of a joint transform.
type Channel int

const (
	ScaleX Channel = iota
	ScaleY
	ScaleZ
	RotationX // Euler angle in radians
	RotationY
	RotationZ
	LocationX
	LocationY
	LocationZ

	channelCount
)

// Channels lists every channel in storage order.
var Channels = [channelCount]Channel{
	ScaleX, ScaleY, ScaleZ,
	RotationX, RotationY, RotationZ,
	LocationX, LocationY, LocationZ,
}

const allChannels = uint16(1)<<channelCount - 1

// String returns a short channel name such as "rotation.x".
func (c Channel) String() string {
	names := [channelCount]string{
		"scale.x", "scale.y", "scale.z",
		"rotation.x", "rotation.y", "rotation.z",
		"location.x", "location.y", "location.z",
	}
	if c < 0 || c >= channelCount {
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
	return names[c]
}

// JointTransform is a single joint's local transform at one instant.
//
// It is either a set of per-channel values (some possibly missing until the
// owning track is completed) or a precomputed matrix. Set on any channel makes
// the channel representation authoritative.
type JointTransform struct {
	values  [channelCount]float32
	defined uint16

	// Raw matrix, authoritative when hasMatrix is set.
	matrix    math.Mat4
	hasMatrix bool

	// Rotation given directly as a quaternion; the Euler channels mirror it.
	quat    math.Quat
	hasQuat bool

	resolved bool
	derived  derivedTransform
}

type derivedTransform struct {
	position math.Vec3
	rotation math.Quat
	scale    math.Vec3
	local    math.Mat4
}

// NewJointTransform returns a transform with no channels defined.
func NewJointTransform() *JointTransform {
	return &JointTransform{}
}

// NewMatrixTransform returns a transform whose authoritative form is m.
// All nine channels are filled from the decomposition of m.
func NewMatrixTransform(m math.Mat4) *JointTransform {
	jt := &JointTransform{matrix: m, hasMatrix: true}
	jt.fillFromMatrix(m, allChannels)
	jt.resolve()
	return jt
}

// NewPoseTransform returns a transform from a position and rotation with unit scale.
func NewPoseTransform(position math.Vec3, rotation math.Quat) *JointTransform {
	jt := &JointTransform{quat: rotation, hasQuat: true}
	e := math.EulerFromMat4(rotation.ToMat4())
	jt.values = [channelCount]float32{
		1, 1, 1,
		e.X, e.Y, e.Z,
		position.X, position.Y, position.Z,
	}
	jt.defined = allChannels
	jt.resolve()
	return jt
}

// Set defines a channel value.
func (jt *JointTransform) Set(c Channel, v float32) *JointTransform {
	jt.values[c] = v
	jt.defined |= 1 << c
	jt.hasMatrix = false
	if c >= RotationX && c <= RotationZ {
		jt.hasQuat = false
	}
	jt.resolved = false
	return jt
}

// Get returns a channel value and whether it is defined.
func (jt *JointTransform) Get(c Channel) (float32, bool) {
	return jt.values[c], jt.Has(c)
}

// Has reports whether a channel is defined.
func (jt *JointTransform) Has(c Channel) bool {
	return jt.defined&(1<<c) != 0
}

// IsComplete reports whether all nine channels are defined.
func (jt *JointTransform) IsComplete() bool {
	return jt.defined == allChannels
}

// Missing returns the channels not yet defined.
func (jt *JointTransform) Missing() []Channel {
	var out []Channel
	for _, c := range Channels {
		if !jt.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// IsMatrix reports whether the raw matrix form is authoritative.
func (jt *JointTransform) IsMatrix() bool {
	return jt.hasMatrix
}

// Clone returns a copy of the transform.
func (jt *JointTransform) Clone() *JointTransform {
	c := *jt
	return &c
}

// Position returns the translation.
func (jt *JointTransform) Position() math.Vec3 {
	return jt.view().position
}

// Rotation returns the rotation quaternion.
func (jt *JointTransform) Rotation() math.Quat {
	return jt.view().rotation
}

// ScaleVec returns the per-axis scale.
func (jt *JointTransform) ScaleVec() math.Vec3 {
	return jt.view().scale
}

// Matrix returns the local 4x4 matrix (T * R * S, or the raw matrix).
func (jt *JointTransform) Matrix() math.Mat4 {
	if jt.hasMatrix {
		return jt.matrix
	}
	return jt.view().local
}

// fillFromMatrix defines the channels in mask from the decomposition of m.
// Channels already defined are left alone.
func (jt *JointTransform) fillFromMatrix(m math.Mat4, mask uint16) {
	s := m.ScaleFactors()
	e := math.EulerFromMat4(m)
	p := m.Translation()
	src := [channelCount]float32{s.X, s.Y, s.Z, e.X, e.Y, e.Z, p.X, p.Y, p.Z}
	for _, c := range Channels {
		if mask&(1<<c) != 0 && !jt.Has(c) {
			jt.values[c] = src[c]
			jt.defined |= 1 << c
		}
	}
}

// resolve caches the derived position, rotation, scale and local matrix.
// Call once the transform is no longer mutated; reads are then allocation and trig free.
func (jt *JointTransform) resolve() {
	jt.derived = jt.derive()
	jt.resolved = true
}

func (jt *JointTransform) view() derivedTransform {
	if jt.resolved {
		return jt.derived
	}
	return jt.derive()
}

func (jt *JointTransform) derive() derivedTransform {
	var d derivedTransform
	if jt.hasMatrix {
		d.position = jt.matrix.Translation()
		d.rotation = math.QuatFromMat4(jt.matrix)
		d.scale = jt.matrix.ScaleFactors()
		d.local = jt.matrix
		return d
	}

	v := func(c Channel, def float32) float32 {
		if jt.Has(c) {
			return jt.values[c]
		}
		return def
	}
	d.scale = math.Vec3{X: v(ScaleX, 1), Y: v(ScaleY, 1), Z: v(ScaleZ, 1)}
	d.position = math.Vec3{X: v(LocationX, 0), Y: v(LocationY, 0), Z: v(LocationZ, 0)}
	if jt.hasQuat {
		d.rotation = jt.quat
	} else {
		d.rotation = math.QuatFromEuler(v(RotationX, 0), v(RotationY, 0), v(RotationZ, 0))
	}
	d.local = math.FromTRS(d.position, d.rotation, d.scale)
	return d
}

// Interpolate blends two transforms into a local matrix.
// Position and scale use pos, rotation uses rot.
func Interpolate(a, b *JointTransform, t float32, pos, rot Interpolator) math.Mat4 {
	da, db := a.view(), b.view()
	return math.FromTRS(
		pos.Vec3(da.position, db.position, t),
		rot.Quat(da.rotation, db.rotation, t),
		pos.Vec3(da.scale, db.scale, t),
	)
}

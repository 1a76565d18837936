package anim

import (
	"fmt"
	stdmath "math"
	"sync"
)

// Keyframe is a timestamp and a partial mapping from joint id to transform.
type Keyframe struct {
	Time   float32 // Seconds from the start of the track
	Joints map[string]*JointTransform
}

// NewKeyframe returns an empty keyframe at the given time.
func NewKeyframe(time float32) *Keyframe {
	return &Keyframe{Time: time, Joints: make(map[string]*JointTransform)}
}

// Set assigns the transform for a joint and returns the keyframe for chaining.
func (k *Keyframe) Set(joint string, jt *JointTransform) *Keyframe {
	if k.Joints == nil {
		k.Joints = make(map[string]*JointTransform)
	}
	k.Joints[joint] = jt
	return k
}

// Transform returns the transform for a joint, if present.
func (k *Keyframe) Transform(joint string) (*JointTransform, bool) {
	jt, ok := k.Joints[joint]
	return jt, ok && jt != nil
}

// Track is one animation clip: keyframes ordered by time.
//
// A track is completed exactly once (see Completer) before it is sampled.
// After completion every keyframe holds a full transform for every joint of
// the track and the track must be treated as read-only.
type Track struct {
	Name string

	// PositionInterp blends location and scale between keyframes.
	PositionInterp Interpolator
	// RotationInterp blends rotation between keyframes.
	RotationInterp Interpolator

	keyframes []*Keyframe
	length    float32

	mu          sync.Mutex
	initialized bool
	joints      []string
	frames      [][]*JointTransform // [keyframe][joint]
}

// NewTrack validates keyframes and returns a track.
// Keyframes must be non-empty, with finite, non-negative, non-decreasing times.
func NewTrack(name string, keyframes []*Keyframe) (*Track, error) {
	if len(keyframes) == 0 {
		return nil, fmt.Errorf("track %q: %w: no keyframes", name, ErrMalformedTrack)
	}

	prev := float32(0)
	for i, kf := range keyframes {
		if kf == nil {
			return nil, fmt.Errorf("track %q: %w: keyframe %d is nil", name, ErrMalformedTrack, i)
		}
		t := float64(kf.Time)
		if stdmath.IsNaN(t) || stdmath.IsInf(t, 0) || t < 0 {
			return nil, fmt.Errorf("track %q: %w: keyframe %d has invalid time %v", name, ErrMalformedTrack, i, kf.Time)
		}
		if i > 0 && kf.Time < prev {
			return nil, fmt.Errorf("track %q: %w: keyframe %d time %v before %v", name, ErrMalformedTrack, i, kf.Time, prev)
		}
		if kf.Joints == nil {
			kf.Joints = make(map[string]*JointTransform)
		}
		prev = kf.Time
	}

	return &Track{
		Name:           name,
		PositionInterp: InterpLinear,
		RotationInterp: InterpSlerp,
		keyframes:      keyframes,
		length:         keyframes[len(keyframes)-1].Time,
	}, nil
}

// Keyframes returns the track's keyframes in time order.
func (t *Track) Keyframes() []*Keyframe {
	return t.keyframes
}

// Length returns the time of the last keyframe in seconds.
func (t *Track) Length() float32 {
	return t.length
}

// Initialized reports whether the track has been completed.
func (t *Track) Initialized() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.initialized
}

// JointIDs returns the joints animated by a completed track, sorted.
// It is empty before completion.
func (t *Track) JointIDs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.joints))
	copy(out, t.joints)
	return out
}

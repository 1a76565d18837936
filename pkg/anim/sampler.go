package anim

import (
	"github.com/Faultbox/midgard-anim/pkg/math"
)

// Pose holds local-space matrices for one sampling instant, indexed by joint handle.
type Pose struct {
	locals  []math.Mat4
	present []bool
}

// NewPose returns an empty pose for a hierarchy of n joints.
func NewPose(n int) *Pose {
	return &Pose{
		locals:  make([]math.Mat4, n),
		present: make([]bool, n),
	}
}

// Reset clears every entry without releasing storage.
func (p *Pose) Reset() {
	for i := range p.present {
		p.present[i] = false
	}
}

// Set stores the local matrix for a joint handle.
func (p *Pose) Set(handle int, m math.Mat4) {
	p.locals[handle] = m
	p.present[handle] = true
}

// Local returns the local matrix for a joint handle, if the pose has one.
func (p *Pose) Local(handle int) (math.Mat4, bool) {
	if handle < 0 || handle >= len(p.present) || !p.present[handle] {
		return math.Mat4{}, false
	}
	return p.locals[handle], true
}

// Len returns the number of joint slots.
func (p *Pose) Len() int {
	return len(p.present)
}

// Sampler produces poses from tracks for one hierarchy.
// It is not safe for concurrent use; the returned Pose is reused by the next call.
type Sampler struct {
	hierarchy *Hierarchy
	completer *Completer
	pose      *Pose
	bindings  map[*Track][]int
}

// NewSampler creates a sampler writing poses for h.
func NewSampler(h *Hierarchy, opts ...Option) *Sampler {
	return &Sampler{
		hierarchy: h,
		completer: NewCompleter(opts...),
		pose:      NewPose(h.Len()),
		bindings:  make(map[*Track][]int),
	}
}

// Sample returns the local pose of track at time seconds.
//
// Times before the first keyframe or after the last clamp to that keyframe.
// A time landing exactly on a keyframe returns that keyframe's matrices
// without interpolation. An uncompleted track is completed first.
func (s *Sampler) Sample(track *Track, seconds float32) *Pose {
	handles := s.bind(track)
	kfs := track.keyframes

	prev, next := 0, 0
	for i := range kfs {
		if kfs[i].Time > seconds {
			next = i
			break
		}
		prev = i
		next = i
	}

	progression := float32(0)
	if span := kfs[next].Time - kfs[prev].Time; span > 0 {
		progression = (seconds - kfs[prev].Time) / span
	}

	s.pose.Reset()
	from, to := track.frames[prev], track.frames[next]
	for j, handle := range handles {
		if handle < 0 {
			continue
		}
		if progression == 0 {
			s.pose.Set(handle, from[j].Matrix())
			continue
		}
		s.pose.Set(handle, Interpolate(from[j], to[j], progression, track.PositionInterp, track.RotationInterp))
	}
	return s.pose
}

// bind completes the track if needed and resolves its joints to handles once.
func (s *Sampler) bind(track *Track) []int {
	if handles, ok := s.bindings[track]; ok {
		return handles
	}

	s.completer.Complete(track, s.hierarchy)

	handles := make([]int, len(track.joints))
	for j, id := range track.joints {
		handle, ok := s.hierarchy.Find(id)
		if !ok {
			handle = -1
		}
		handles[j] = handle
	}
	s.bindings[track] = handles
	return handles
}

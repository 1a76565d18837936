package anim

import (
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-anim/pkg/math"
)

// Animator plays one track on one hierarchy.
//
// Update samples and applies under a write lock, so a background sequencer
// and a renderer reading AnimatedTransform or CopySkinMatrices may run on
// different goroutines. Give each Animator its own hierarchy (see Hierarchy.Clone).
type Animator struct {
	mu sync.RWMutex

	hierarchy *Hierarchy
	track     *Track
	sampler   *Sampler

	showBindPose bool
	depthLimit   int
	lastTime     float32
}

// NewAnimator binds track to h. The track is completed here, off the frame path.
func NewAnimator(h *Hierarchy, track *Track, opts ...Option) *Animator {
	o := buildOptions(opts)
	a := &Animator{
		hierarchy:  h,
		track:      track,
		sampler:    NewSampler(h, opts...),
		depthLimit: NoDepthLimit,
	}
	a.sampler.bind(track)

	o.log.Debug("animator ready",
		zap.String("track", track.Name),
		zap.Float32("length", track.Length()),
		zap.Int("joints", len(track.JointIDs())))
	return a
}

// Duration returns the track length in seconds.
func (a *Animator) Duration() float32 {
	return a.track.Length()
}

// Update samples the track at seconds and applies the pose to the hierarchy.
func (a *Animator) Update(seconds float32) {
	a.mu.Lock()
	defer a.mu.Unlock()

	pose := a.sampler.Sample(a.track, seconds)
	Apply(a.hierarchy, pose, a.showBindPose, a.depthLimit)
	a.lastTime = seconds
}

// SetBindPose makes subsequent updates ignore the track and use rest transforms.
func (a *Animator) SetBindPose(show bool) {
	a.mu.Lock()
	a.showBindPose = show
	a.mu.Unlock()
}

// BindPose reports whether bind pose display is on.
func (a *Animator) BindPose() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.showBindPose
}

// SetDepthLimit sets how deep below the root joints are animated. See Apply.
func (a *Animator) SetDepthLimit(limit int) {
	a.mu.Lock()
	a.depthLimit = limit
	a.mu.Unlock()
}

// LastTime returns the track time of the last update.
func (a *Animator) LastTime() float32 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastTime
}

// AnimatedTransform returns the current skinning matrix of a joint.
func (a *Animator) AnimatedTransform(id string) (math.Mat4, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.hierarchy.AnimatedTransform(id)
}

// CopySkinMatrices copies the skinning matrix array into dst, growing it as needed.
func (a *Animator) CopySkinMatrices(dst []math.Mat4) []math.Mat4 {
	a.mu.RLock()
	defer a.mu.RUnlock()

	src := a.hierarchy.SkinMatrices()
	if cap(dst) < len(src) {
		dst = make([]math.Mat4, len(src))
	}
	dst = dst[:len(src)]
	copy(dst, src)
	return dst
}

// Track returns the animated track.
func (a *Animator) Track() *Track {
	return a.track
}

// Hierarchy returns the animated hierarchy.
func (a *Animator) Hierarchy() *Hierarchy {
	return a.hierarchy
}

package anim

import (
	"sync"
	"testing"
	"time"

	"github.com/Faultbox/midgard-anim/pkg/math"
)

const eps = 1e-4

// fakeClock is a manually advanced Clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// recordingTarget remembers every time it was updated with.
type recordingTarget struct {
	mu       sync.Mutex
	duration float32
	times    []float32
	bindPose bool
}

func (r *recordingTarget) Duration() float32 { return r.duration }

func (r *recordingTarget) Update(seconds float32) {
	r.mu.Lock()
	r.times = append(r.times, seconds)
	r.mu.Unlock()
}

func (r *recordingTarget) SetBindPose(show bool) {
	r.mu.Lock()
	r.bindPose = show
	r.mu.Unlock()
}

func (r *recordingTarget) last(t *testing.T) float32 {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.times) == 0 {
		t.Fatal("target was never updated")
	}
	return r.times[len(r.times)-1]
}

func (r *recordingTarget) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.times)
}

func identity() *math.Mat4 {
	m := math.Identity()
	return &m
}

func mustHierarchy(t *testing.T, root JointSpec, opts ...Option) *Hierarchy {
	t.Helper()
	h, err := NewHierarchy(root, opts...)
	if err != nil {
		t.Fatalf("NewHierarchy: %v", err)
	}
	return h
}

func mustTrack(t *testing.T, name string, kfs ...*Keyframe) *Track {
	t.Helper()
	tr, err := NewTrack(name, kfs)
	if err != nil {
		t.Fatalf("NewTrack: %v", err)
	}
	return tr
}

// singleJoint returns a one-joint hierarchy named "root" at rest at the origin.
func singleJoint(t *testing.T) *Hierarchy {
	t.Helper()
	return mustHierarchy(t, JointSpec{
		ID:          "root",
		SkinIndex:   0,
		BindLocal:   math.Identity(),
		InverseBind: identity(),
	})
}

// linearTrack moves "root" from the origin at t=0 to (10,0,0) at t=2.
func linearTrack(t *testing.T) *Track {
	t.Helper()
	return mustTrack(t, "linear",
		NewKeyframe(0).Set("root", NewPoseTransform(math.Vec3{}, math.QuatIdentity())),
		NewKeyframe(2).Set("root", NewPoseTransform(math.Vec3{X: 10}, math.QuatIdentity())),
	)
}

func channel(t *testing.T, jt *JointTransform, c Channel) float32 {
	t.Helper()
	v, ok := jt.Get(c)
	if !ok {
		t.Fatalf("channel %s not defined", c)
	}
	return v
}

func near(a, b float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}

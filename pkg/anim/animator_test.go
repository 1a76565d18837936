package anim

import (
	"context"
	"sync"
	"testing"

	"github.com/Faultbox/midgard-anim/pkg/math"
)

func TestAnimatorLoopScenario(t *testing.T) {
	h := singleJoint(t)
	a := NewAnimator(h, linearTrack(t))
	seq, _ := newTestSequencer(t, PolicyLoop)
	seq.Register(a)
	seq.Start(context.Background())

	seq.Step(seconds(3))

	m, ok := a.AnimatedTransform("root")
	if !ok {
		t.Fatal("root not found")
	}
	if got := m.Translation(); !got.ApproxEqual(math.Vec3{X: 5}, eps) {
		t.Errorf("loop at 3s: expected (5,0,0), got %v", got)
	}
	if !near(a.LastTime(), 1) {
		t.Errorf("expected last time 1, got %v", a.LastTime())
	}
}

func TestAnimatorPingPongScenario(t *testing.T) {
	h := singleJoint(t)
	a := NewAnimator(h, linearTrack(t))
	seq, _ := newTestSequencer(t, PolicyPingPong)
	seq.Register(a)
	seq.Start(context.Background())

	seq.Step(seconds(3))

	m, _ := a.AnimatedTransform("root")
	if got := m.Translation(); !got.ApproxEqual(math.Vec3{X: 5}, eps) {
		t.Errorf("ping-pong at 3s: expected (5,0,0), got %v", got)
	}
}

func TestAnimatorCompletesEagerly(t *testing.T) {
	tr := linearTrack(t)
	a := NewAnimator(singleJoint(t), tr)

	if !tr.Initialized() {
		t.Error("NewAnimator should complete the track")
	}
	if a.Duration() != 2 {
		t.Errorf("expected duration 2, got %v", a.Duration())
	}
	if a.Track() != tr {
		t.Error("Track should return the bound track")
	}
}

func TestAnimatorBindPose(t *testing.T) {
	h := bindChain(t)
	tr := mustTrack(t, "lift",
		NewKeyframe(0).Set("root", NewJointTransform().Set(LocationY, 2)),
		NewKeyframe(1).Set("root", NewJointTransform().Set(LocationY, 4)),
	)
	a := NewAnimator(h, tr)

	a.Update(1)
	root, _ := a.AnimatedTransform("root")
	if got := root.Translation(); !got.ApproxEqual(math.Vec3{Y: 2}, eps) {
		t.Errorf("expected root lifted by 2, got %v", got)
	}

	a.SetBindPose(true)
	if !a.BindPose() {
		t.Error("BindPose should report true")
	}
	a.Update(1)
	root, _ = a.AnimatedTransform("root")
	if !root.ApproxEqual(math.Identity(), eps) {
		t.Errorf("bind pose should give identity, got %v", root)
	}
}

func TestAnimatorDepthLimit(t *testing.T) {
	h := bindChain(t)
	tr := mustTrack(t, "both",
		NewKeyframe(0).
			Set("root", NewJointTransform().Set(LocationY, 3)).
			Set("arm", NewJointTransform().Set(LocationX, 2)),
	)
	a := NewAnimator(h, tr)
	a.SetDepthLimit(0)

	a.Update(0)

	arm, _ := a.AnimatedTransform("arm")
	if arm != math.Identity() {
		t.Errorf("arm past the depth limit should be identity, got %v", arm)
	}
}

func TestAnimatorCopySkinMatrices(t *testing.T) {
	h := singleJoint(t)
	a := NewAnimator(h, linearTrack(t))
	a.Update(2)

	dst := a.CopySkinMatrices(nil)
	if len(dst) != 1 {
		t.Fatalf("expected 1 skin matrix, got %d", len(dst))
	}
	if got := dst[0].Translation(); !got.ApproxEqual(math.Vec3{X: 10}, eps) {
		t.Errorf("expected (10,0,0), got %v", got)
	}

	a.Update(0)
	if got := dst[0].Translation(); !got.ApproxEqual(math.Vec3{X: 10}, eps) {
		t.Error("copied skin matrices should not change with later updates")
	}

	reused := a.CopySkinMatrices(dst)
	if &reused[0] != &dst[0] {
		t.Error("a large enough destination should be reused")
	}
}

func TestAnimatorsShareTrack(t *testing.T) {
	base := singleJoint(t)
	tr := linearTrack(t)
	a := NewAnimator(base.Clone(), tr)
	b := NewAnimator(base.Clone(), tr)

	var wg sync.WaitGroup
	for _, an := range []*Animator{a, b} {
		wg.Add(1)
		go func(an *Animator) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				an.Update(float32(i) / 25)
			}
		}(an)
	}
	wg.Wait()

	ma, _ := a.AnimatedTransform("root")
	mb, _ := b.AnimatedTransform("root")
	if ma != mb {
		t.Errorf("animators on clones should agree: %v vs %v", ma, mb)
	}
}

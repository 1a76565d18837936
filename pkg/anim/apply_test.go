package anim

import (
	stdmath "math"
	"testing"

	"github.com/Faultbox/midgard-anim/pkg/math"
)

// bindChain returns root (rest (0,2,0)) -> arm (rest (1,0,0)) with correct inverse binds.
func bindChain(t *testing.T) *Hierarchy {
	t.Helper()
	rootInv := math.Translate(0, -2, 0)
	armInv := math.Translate(-1, -2, 0)
	return mustHierarchy(t, JointSpec{
		ID:          "root",
		SkinIndex:   0,
		BindLocal:   math.Translate(0, 2, 0),
		InverseBind: &rootInv,
		Children: []JointSpec{{
			ID:          "arm",
			SkinIndex:   1,
			BindLocal:   math.Translate(1, 0, 0),
			InverseBind: &armInv,
		}},
	})
}

func TestApplyPropagatesParentTransform(t *testing.T) {
	h := mustHierarchy(t, JointSpec{
		ID: "root", SkinIndex: 0, BindLocal: math.Identity(), InverseBind: identity(),
		Children: []JointSpec{{ID: "child", SkinIndex: 1, BindLocal: math.Identity(), InverseBind: identity()}},
	})
	pose := NewPose(h.Len())
	pose.Set(0, math.Translate(1, 0, 0))
	pose.Set(1, math.Identity())

	Apply(h, pose, false, NoDepthLimit)

	child, _ := h.AnimatedTransform("child")
	if got := child.TransformVec3(math.Vec3{}); !got.ApproxEqual(math.Vec3{X: 1}, eps) {
		t.Errorf("child origin should move with root to (1,0,0), got %v", got)
	}
}

func TestApplyBindPoseIsIdentity(t *testing.T) {
	h := bindChain(t)

	pose := NewPose(h.Len())
	pose.Set(0, math.Translate(5, 5, 5))

	Apply(h, pose, true, NoDepthLimit)

	for _, id := range h.JointIDs() {
		m, _ := h.AnimatedTransform(id)
		if !m.ApproxEqual(math.Identity(), eps) {
			t.Errorf("%s: bind pose should give identity skinning, got %v", id, m)
		}
	}
}

func TestApplyFallsBackToRest(t *testing.T) {
	h := bindChain(t)

	// Empty pose: every joint uses its bind-local transform.
	Apply(h, NewPose(h.Len()), false, NoDepthLimit)

	arm, _ := h.AnimatedTransform("arm")
	if !arm.ApproxEqual(math.Identity(), eps) {
		t.Errorf("unposed joints should rest, got %v", arm)
	}

	Apply(h, nil, false, NoDepthLimit)
	if root, _ := h.AnimatedTransform("root"); !root.ApproxEqual(math.Identity(), eps) {
		t.Errorf("nil pose should rest, got %v", root)
	}
}

func TestApplyDepthLimit(t *testing.T) {
	h := bindChain(t)
	pose := NewPose(h.Len())
	pose.Set(0, math.Translate(0, 3, 0))
	pose.Set(1, math.Translate(1, 0, 0))

	Apply(h, pose, false, 0)

	root, _ := h.AnimatedTransform("root")
	if got := root.Translation(); !got.ApproxEqual(math.Vec3{Y: 1}, eps) {
		t.Errorf("root within limit should be animated, got %v", got)
	}
	arm, _ := h.AnimatedTransform("arm")
	if arm != math.Identity() {
		t.Errorf("joint past the limit should be identity, got %v", arm)
	}

	Apply(h, pose, false, -1)
	root, _ = h.AnimatedTransform("root")
	if root != math.Identity() {
		t.Errorf("negative limit should leave the root undeformed, got %v", root)
	}

	Apply(h, pose, false, stdmath.MinInt)
	for _, id := range h.JointIDs() {
		if m, _ := h.AnimatedTransform(id); m != math.Identity() {
			t.Errorf("%s: MinInt limit should leave the tree undeformed, got %v", id, m)
		}
	}
}

func TestApplyPublishesSkinMatrices(t *testing.T) {
	h := mustHierarchy(t, JointSpec{
		ID: "root", SkinIndex: 1, BindLocal: math.Identity(), InverseBind: identity(),
		Children: []JointSpec{{ID: "helper", SkinIndex: NoSkin, BindLocal: math.Identity()}},
	})
	pose := NewPose(h.Len())
	pose.Set(0, math.Translate(0, 0, 4))

	Apply(h, pose, false, NoDepthLimit)

	skin := h.SkinMatrices()
	if len(skin) != 2 {
		t.Fatalf("expected 2 skin slots, got %d", len(skin))
	}
	if got := skin[1].Translation(); !got.ApproxEqual(math.Vec3{Z: 4}, eps) {
		t.Errorf("skin slot 1 should hold root, got %v", got)
	}
	if skin[0] != math.Identity() {
		t.Error("unused skin slot should stay identity")
	}
}

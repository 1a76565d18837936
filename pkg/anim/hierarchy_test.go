package anim

import (
	"errors"
	stdmath "math"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/midgard-anim/pkg/math"
)

func TestNewHierarchyFlattensPreorder(t *testing.T) {
	h := mustHierarchy(t, JointSpec{
		ID: "hips", SkinIndex: 0, InverseBind: identity(), BindLocal: math.Identity(),
		Children: []JointSpec{
			{ID: "spine", SkinIndex: 1, InverseBind: identity(), BindLocal: math.Identity(),
				Children: []JointSpec{{ID: "head", SkinIndex: 3, InverseBind: identity(), BindLocal: math.Identity()}}},
			{ID: "tail", SkinIndex: NoSkin, BindLocal: math.Identity()},
		},
	})

	want := []string{"hips", "spine", "head", "tail"}
	got := h.JointIDs()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("handle %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	if h.Len() != 4 {
		t.Errorf("expected 4 joints, got %d", h.Len())
	}
	if h.BoneCount() != 3 {
		t.Errorf("expected 3 bones, got %d", h.BoneCount())
	}
	if n := len(h.SkinMatrices()); n != 4 {
		t.Errorf("skin array should cover the highest skin index, got %d entries", n)
	}
	if h.Root() != 0 {
		t.Errorf("expected root handle 0, got %d", h.Root())
	}

	head, ok := h.Find("head")
	if !ok {
		t.Fatal("head not found")
	}
	j := h.Joint(head)
	if j.Depth != 2 {
		t.Errorf("expected head depth 2, got %d", j.Depth)
	}
	if parent := h.Joint(j.Parent); parent.ID != "spine" {
		t.Errorf("expected head parent spine, got %s", parent.ID)
	}
	if root := h.Joint(0); len(root.Children) != 2 {
		t.Errorf("expected 2 root children, got %d", len(root.Children))
	}
}

func TestNewHierarchyDuplicateID(t *testing.T) {
	_, err := NewHierarchy(JointSpec{
		ID:       "root",
		Children: []JointSpec{{ID: "a"}, {ID: "root"}},
	})
	if !errors.Is(err, ErrDuplicateJoint) {
		t.Fatalf("expected ErrDuplicateJoint, got %v", err)
	}
}

func TestNewHierarchyInvalidSkinIndex(t *testing.T) {
	tests := []struct {
		name    string
		root    JointSpec
		wantErr error
	}{
		{"max int32", JointSpec{ID: "root", SkinIndex: stdmath.MaxInt32}, ErrInvalidSkinIndex},
		{"sparse", JointSpec{ID: "root", SkinIndex: 100000000}, ErrInvalidSkinIndex},
		{"equal to joint count", JointSpec{
			ID: "root", SkinIndex: 0,
			Children: []JointSpec{{ID: "a", SkinIndex: 2}},
		}, ErrInvalidSkinIndex},
		{"duplicate", JointSpec{
			ID: "root", SkinIndex: 1,
			Children: []JointSpec{{ID: "a", SkinIndex: 0}, {ID: "b", SkinIndex: 1}},
		}, ErrDuplicateSkinIndex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := NewHierarchy(tt.root)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if h != nil {
				t.Error("expected no hierarchy on error")
			}
		})
	}
}

func TestNewHierarchyMissingInverseBind(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	h := mustHierarchy(t, JointSpec{
		ID:        "root",
		SkinIndex: 0,
		BindLocal: math.Translate(1, 0, 0),
		Children:  []JointSpec{{ID: "helper", SkinIndex: NoSkin}},
	}, WithLogger(zap.New(core)))

	if n := logs.Len(); n != 1 {
		t.Fatalf("expected one warning for the skinned joint, got %d", n)
	}
	if got := logs.All()[0].ContextMap()["joint"]; got != "root" {
		t.Errorf("warning should name root, got %v", got)
	}
	if got := h.Joint(0).InverseBind; got != math.Identity() {
		t.Errorf("missing inverse bind should default to identity, got %v", got)
	}
}

func TestHierarchyRestAndBindWorld(t *testing.T) {
	h := twoJoints(t)

	rest, ok := h.RestTransform("arm")
	if !ok || rest != math.Translate(1, 0, 0) {
		t.Errorf("unexpected arm rest transform %v (ok=%v)", rest, ok)
	}
	if _, ok := h.RestTransform("missing"); ok {
		t.Error("unknown joint should have no rest transform")
	}

	arm, _ := h.Find("arm")
	if got := h.BindWorld(arm).Translation(); !got.ApproxEqual(math.Vec3{X: 1, Y: 2}, eps) {
		t.Errorf("expected arm bind world at (1,2,0), got %v", got)
	}
}

func TestHierarchyClone(t *testing.T) {
	h := twoJoints(t)
	c := h.Clone()

	c.Joint(0).Animated = math.Translate(9, 9, 9)
	c.SkinMatrices()[0] = math.Translate(9, 9, 9)
	c.Joint(0).Children[0] = 42

	if h.Joint(0).Animated != math.Identity() {
		t.Error("clone shares animated transforms with original")
	}
	if h.SkinMatrices()[0] != math.Identity() {
		t.Error("clone shares skin matrices with original")
	}
	if h.Joint(0).Children[0] != 1 {
		t.Error("clone shares child slices with original")
	}
	if handle, ok := c.Find("arm"); !ok || handle != 1 {
		t.Errorf("clone index broken: %d, %v", handle, ok)
	}
}

package anim

import (
	stdmath "math"

	"github.com/Faultbox/midgard-anim/pkg/math"
)

// NoDepthLimit animates the whole tree.
const NoDepthLimit = stdmath.MaxInt32

// Apply walks the hierarchy from the root and writes every joint's animated transform.
//
// Each joint's local matrix comes from pose, or from its bind-local transform when
// the pose has no entry or showBindPose is set. The world matrix is
// parentWorld * local and the animated transform is world * inverseBind.
// Joints deeper than depthLimit get identity instead, which leaves that subtree
// undeformed; a negative limit does this for the whole tree.
// Skinned joints also publish their animated transform to SkinMatrices.
func Apply(h *Hierarchy, pose *Pose, showBindPose bool, depthLimit int) {
	// Decrementing per level must not wrap around.
	depthLimit = max(depthLimit, -1)
	if root := h.Root(); root >= 0 {
		h.apply(root, pose, showBindPose, depthLimit, math.Identity())
	}
}

func (h *Hierarchy) apply(handle int, pose *Pose, showBindPose bool, depthLimit int, parentWorld math.Mat4) {
	j := &h.joints[handle]

	local := j.BindLocal
	if !showBindPose && pose != nil {
		if m, ok := pose.Local(handle); ok {
			local = m
		}
	}
	world := parentWorld.Mul(local)

	if depthLimit >= 0 {
		j.Animated = world.Mul(j.InverseBind)
	} else {
		j.Animated = math.Identity()
	}

	if j.SkinIndex >= 0 && int(j.SkinIndex) < len(h.skin) {
		h.skin[j.SkinIndex] = j.Animated
	}

	for _, child := range j.Children {
		h.apply(child, pose, showBindPose, depthLimit-1, world)
	}
}

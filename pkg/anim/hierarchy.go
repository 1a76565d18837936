package anim

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-anim/pkg/math"
)

// NoSkin marks a joint that no vertex references.
const NoSkin int32 = -1

// JointSpec describes one joint as delivered by a skeleton importer.
type JointSpec struct {
	ID        string
	SkinIndex int32 // Index into the skinning matrix array, or NoSkin

	// BindLocal is the rest transform relative to the parent joint.
	BindLocal math.Mat4
	// InverseBind is the inverse of the joint's model-space rest transform.
	// Nil on a skinned joint is reported and replaced by identity.
	InverseBind *math.Mat4

	Children []JointSpec
}

// Joint is a node of the hierarchy arena. Parent and Children are handles.
type Joint struct {
	ID          string
	SkinIndex   int32
	BindLocal   math.Mat4
	InverseBind math.Mat4
	Animated    math.Mat4 // Written by Apply once per frame

	Parent   int // -1 for the root
	Children []int
	Depth    int
}

// Hierarchy owns a joint tree stored as an arena indexed by integer handle.
// The root has handle 0 and every parent precedes its children.
type Hierarchy struct {
	joints    []Joint
	index     map[string]int
	skin      []math.Mat4
	boneCount int
}

// NewHierarchy flattens root into an arena. Joint ids and skin indices must be unique,
// and every skin index must be below the joint count.
func NewHierarchy(root JointSpec, opts ...Option) (*Hierarchy, error) {
	o := buildOptions(opts)
	h := &Hierarchy{index: make(map[string]int)}

	if err := h.add(&root, -1, 0, o.log); err != nil {
		return nil, err
	}

	// Skin indices must be unique and below the joint count.
	owner := make(map[int32]string)
	slots := 0
	for i := range h.joints {
		j := &h.joints[i]
		if j.SkinIndex < 0 {
			continue
		}
		if int(j.SkinIndex) >= len(h.joints) {
			return nil, fmt.Errorf("%w: joint %q has skin index %d, hierarchy has %d joints",
				ErrInvalidSkinIndex, j.ID, j.SkinIndex, len(h.joints))
		}
		if prev, dup := owner[j.SkinIndex]; dup {
			return nil, fmt.Errorf("%w: %d used by %q and %q", ErrDuplicateSkinIndex, j.SkinIndex, prev, j.ID)
		}
		owner[j.SkinIndex] = j.ID
		h.boneCount++
		slots = max(slots, int(j.SkinIndex)+1)
	}
	h.skin = make([]math.Mat4, slots)
	for i := range h.skin {
		h.skin[i] = math.Identity()
	}

	o.log.Debug("hierarchy built",
		zap.String("root", root.ID),
		zap.Int("joints", len(h.joints)),
		zap.Int("bones", h.boneCount))

	return h, nil
}

func (h *Hierarchy) add(spec *JointSpec, parent, depth int, log *zap.Logger) error {
	if _, dup := h.index[spec.ID]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicateJoint, spec.ID)
	}

	inv := math.Identity()
	if spec.InverseBind != nil {
		inv = *spec.InverseBind
	} else if spec.SkinIndex >= 0 {
		log.Warn("skinned joint has no inverse bind transform, using identity",
			zap.String("joint", spec.ID),
			zap.Int32("skin_index", spec.SkinIndex),
			zap.Error(ErrMissingInverseBind))
	}

	skin := spec.SkinIndex
	if skin < 0 {
		skin = NoSkin
	}

	handle := len(h.joints)
	h.joints = append(h.joints, Joint{
		ID:          spec.ID,
		SkinIndex:   skin,
		BindLocal:   spec.BindLocal,
		InverseBind: inv,
		Animated:    math.Identity(),
		Parent:      parent,
		Depth:       depth,
	})
	h.index[spec.ID] = handle
	if parent >= 0 {
		h.joints[parent].Children = append(h.joints[parent].Children, handle)
	}

	for i := range spec.Children {
		if err := h.add(&spec.Children[i], handle, depth+1, log); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of joints.
func (h *Hierarchy) Len() int {
	return len(h.joints)
}

// BoneCount returns the number of joints referenced by skin weights.
func (h *Hierarchy) BoneCount() int {
	return h.boneCount
}

// Root returns the root handle, or -1 for an empty hierarchy.
func (h *Hierarchy) Root() int {
	if len(h.joints) == 0 {
		return -1
	}
	return 0
}

// Find returns the handle for a joint id.
func (h *Hierarchy) Find(id string) (int, bool) {
	handle, ok := h.index[id]
	return handle, ok
}

// Joint returns the joint at handle. The pointer is valid until the hierarchy is discarded.
func (h *Hierarchy) Joint(handle int) *Joint {
	return &h.joints[handle]
}

// JointIDs returns all joint ids in handle order.
func (h *Hierarchy) JointIDs() []string {
	ids := make([]string, len(h.joints))
	for i := range h.joints {
		ids[i] = h.joints[i].ID
	}
	return ids
}

// RestTransform returns a joint's bind-local transform.
func (h *Hierarchy) RestTransform(id string) (math.Mat4, bool) {
	handle, ok := h.index[id]
	if !ok {
		return math.Mat4{}, false
	}
	return h.joints[handle].BindLocal, true
}

// AnimatedTransform returns the skinning matrix last written for a joint:
// vertex' = AnimatedTransform * vertex in model space.
func (h *Hierarchy) AnimatedTransform(id string) (math.Mat4, bool) {
	handle, ok := h.index[id]
	if !ok {
		return math.Mat4{}, false
	}
	return h.joints[handle].Animated, true
}

// SkinMatrices returns the live skinning matrix array indexed by skin index.
// It is overwritten by every Apply.
func (h *Hierarchy) SkinMatrices() []math.Mat4 {
	return h.skin
}

// BindWorld returns a joint's model-space rest transform, computed from the bind-local chain.
func (h *Hierarchy) BindWorld(handle int) math.Mat4 {
	world := h.joints[handle].BindLocal
	for p := h.joints[handle].Parent; p >= 0; p = h.joints[p].Parent {
		world = h.joints[p].BindLocal.Mul(world)
	}
	return world
}

// Clone returns a deep copy with its own animated transforms and id index.
func (h *Hierarchy) Clone() *Hierarchy {
	c := &Hierarchy{
		joints:    make([]Joint, len(h.joints)),
		index:     make(map[string]int, len(h.joints)),
		skin:      make([]math.Mat4, len(h.skin)),
		boneCount: h.boneCount,
	}
	copy(c.skin, h.skin)
	for i := range h.joints {
		j := h.joints[i]
		j.Children = append([]int(nil), j.Children...)
		c.joints[i] = j
		c.index[j.ID] = i
	}
	return c
}

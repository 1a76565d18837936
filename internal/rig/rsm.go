package rig

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-anim/pkg/anim"
	"github.com/Faultbox/midgard-anim/pkg/formats"
	"github.com/Faultbox/midgard-anim/pkg/math"
)

// FromRSM converts a model's node tree into a skeleton and its node keys into
// one track called name. Every node becomes a skinned joint, numbered in
// depth-first order. Models without keys get no track.
func FromRSM(model *formats.RSM, name string, log *zap.Logger) (*Rig, error) {
	if log == nil {
		log = zap.NewNop()
	}

	root := model.Root()
	if root == nil {
		return nil, fmt.Errorf("%w: model has no nodes", ErrInvalidRig)
	}

	seen := make(map[string]bool, len(model.Nodes))
	for i := range model.Nodes {
		n := model.Nodes[i].Name
		if seen[n] {
			return nil, fmt.Errorf("%w: duplicate node %q", ErrInvalidRig, n)
		}
		seen[n] = true
	}

	b := &rsmBuilder{model: model, log: log, visited: make(map[string]bool, len(model.Nodes))}
	spec := b.joint(root, math.Identity())

	// Nodes unreachable from the root have a missing parent or sit in a
	// parent cycle. They hang off the root instead.
	for i := range model.Nodes {
		n := &model.Nodes[i]
		if b.visited[n.Name] {
			continue
		}
		log.Warn("attaching orphan node to root",
			zap.String("node", n.Name),
			zap.String("parent", n.Parent))
		spec.Children = append(spec.Children, b.joint(n, b.rootWorld))
	}

	r := &Rig{Name: name, Skeleton: spec}
	if model.HasAnimation() {
		tr, err := rsmTrack(model, name)
		if err != nil {
			return nil, err
		}
		r.Tracks = append(r.Tracks, tr)
	}
	return r, nil
}

type rsmBuilder struct {
	model     *formats.RSM
	log       *zap.Logger
	visited   map[string]bool
	nextSkin  int32
	rootWorld math.Mat4
}

func (b *rsmBuilder) joint(n *formats.RSMNode, parentWorld math.Mat4) anim.JointSpec {
	b.visited[n.Name] = true

	bind := nodeBind(n)
	world := parentWorld.Mul(bind)
	if b.nextSkin == 0 {
		b.rootWorld = world
	}
	inv := world.Inverse()

	spec := anim.JointSpec{
		ID:          n.Name,
		SkinIndex:   b.nextSkin,
		BindLocal:   bind,
		InverseBind: &inv,
	}
	b.nextSkin++

	for _, child := range b.model.Children(n.Name) {
		if b.visited[child.Name] {
			continue
		}
		spec.Children = append(spec.Children, b.joint(child, world))
	}
	return spec
}

// nodeBind is T(position) * R(axis, angle) * S(scale).
func nodeBind(n *formats.RSMNode) math.Mat4 {
	rot := math.QuatIdentity()
	axis := vec3Of(n.RotAxis)
	if axis.Length() > 0 && n.RotAngle != 0 {
		rot = math.QuatFromAxisAngle(axis.Normalize(), n.RotAngle)
	}

	scale := vec3Of(n.Scale)
	if scale == (math.Vec3{}) {
		scale = math.Vec3{X: 1, Y: 1, Z: 1}
	}
	return math.FromTRS(vec3Of(n.Position), rot, scale)
}

func vec3Of(v [3]float32) math.Vec3 {
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}
}

// rsmTrack gathers every node key into keyframes at distinct times.
// Key frames are milliseconds; keyframe times are seconds.
//
// Rotation keys are quaternions, so a node with rotation keys gets its
// rotation sampled from its own keys at every keyframe of the track instead
// of leaving gaps for per-axis Euler completion.
func rsmTrack(model *formats.RSM, name string) (*anim.Track, error) {
	frames := make(map[int32]*anim.Keyframe)
	addFrame := func(frame int32) {
		if _, ok := frames[frame]; !ok {
			frames[frame] = anim.NewKeyframe(float32(frame) / 1000)
		}
	}
	at := func(frame int32, joint string) *anim.JointTransform {
		kf := frames[frame]
		jt, ok := kf.Transform(joint)
		if !ok {
			jt = anim.NewJointTransform()
			kf.Set(joint, jt)
		}
		return jt
	}

	last := int32(0)
	for i := range model.Nodes {
		n := &model.Nodes[i]
		for _, k := range n.PosKeys {
			addFrame(k.Frame)
			last = max(last, k.Frame)
		}
		for _, k := range n.RotKeys {
			addFrame(k.Frame)
			last = max(last, k.Frame)
		}
		for _, k := range n.ScaleKeys {
			addFrame(k.Frame)
			last = max(last, k.Frame)
		}
	}
	// Hold the last key until the model's declared length.
	if model.AnimLength > last {
		addFrame(model.AnimLength)
	}

	for i := range model.Nodes {
		n := &model.Nodes[i]
		for _, k := range n.PosKeys {
			jt := at(k.Frame, n.Name)
			jt.Set(anim.LocationX, k.Position[0])
			jt.Set(anim.LocationY, k.Position[1])
			jt.Set(anim.LocationZ, k.Position[2])
		}
		if len(n.RotKeys) > 0 {
			keys := sortedRotKeys(n.RotKeys)
			for frame := range frames {
				e := math.EulerFromMat4(rotKeyAt(keys, frame).ToMat4())
				jt := at(frame, n.Name)
				jt.Set(anim.RotationX, e.X)
				jt.Set(anim.RotationY, e.Y)
				jt.Set(anim.RotationZ, e.Z)
			}
		}
		for _, k := range n.ScaleKeys {
			jt := at(k.Frame, n.Name)
			jt.Set(anim.ScaleX, k.Scale[0])
			jt.Set(anim.ScaleY, k.Scale[1])
			jt.Set(anim.ScaleZ, k.Scale[2])
		}
	}

	order := make([]int32, 0, len(frames))
	for f := range frames {
		order = append(order, f)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	kfs := make([]*anim.Keyframe, len(order))
	for i, f := range order {
		kfs[i] = frames[f]
	}
	return anim.NewTrack(name, kfs)
}

func sortedRotKeys(keys []formats.RSMRotKeyframe) []formats.RSMRotKeyframe {
	sorted := append([]formats.RSMRotKeyframe(nil), keys...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Frame < sorted[j].Frame })
	return sorted
}

// rotKeyAt samples sorted rotation keys at frame. Frames before the first key
// and after the last hold that key; frames in between are SLERPed.
func rotKeyAt(keys []formats.RSMRotKeyframe, frame int32) math.Quat {
	next := sort.Search(len(keys), func(i int) bool { return keys[i].Frame > frame })
	switch {
	case next == 0:
		return quatOf(keys[0]).Normalize()
	case next == len(keys):
		return quatOf(keys[next-1]).Normalize()
	}

	k0, k1 := keys[next-1], keys[next]
	if k0.Frame == frame {
		return quatOf(k0).Normalize()
	}
	t := float32(frame-k0.Frame) / float32(k1.Frame-k0.Frame)
	return math.Slerp(quatOf(k0).Normalize(), quatOf(k1).Normalize(), t).Normalize()
}

func quatOf(k formats.RSMRotKeyframe) math.Quat {
	return math.Quat{X: k.Quaternion[0], Y: k.Quaternion[1], Z: k.Quaternion[2], W: k.Quaternion[3]}
}

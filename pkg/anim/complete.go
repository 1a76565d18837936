package anim

import (
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-anim/pkg/math"
)

// RestPose supplies a joint's bind-local transform, used to fill channels
// missing from a track's first keyframe. Hierarchy implements it.
type RestPose interface {
	RestTransform(joint string) (math.Mat4, bool)
}

// Completer fills in per-joint, per-channel values missing from a track's keyframes.
type Completer struct {
	log *zap.Logger
}

// NewCompleter creates a keyframe completer.
func NewCompleter(opts ...Option) *Completer {
	o := buildOptions(opts)
	return &Completer{log: o.log}
}

// Complete runs the one-time completion pass over track.
//
// Joints named by keyframes but unknown to rest are logged and dropped.
// For every remaining joint and keyframe i in order:
//   - a fully defined transform is kept as is;
//   - at i == 0 missing channels come from the rest pose;
//   - at the last keyframe a missing transform is copied from the previous one;
//   - otherwise each missing channel is interpolated between keyframe i-1 and
//     the first later keyframe defining that channel, or carried over from
//     i-1 when no later keyframe defines it.
//
// Channels search independently, so two channels of one joint may interpolate
// toward different keyframes across the same gap.
//
// Calling Complete on an already completed track does nothing.
func (c *Completer) Complete(track *Track, rest RestPose) {
	track.mu.Lock()
	defer track.mu.Unlock()

	if track.initialized {
		return
	}

	kfs := track.keyframes
	known := make(map[string]math.Mat4)
	unresolved := make(map[string]bool)
	for _, kf := range kfs {
		for id := range kf.Joints {
			if _, ok := known[id]; ok || unresolved[id] {
				continue
			}
			if m, ok := rest.RestTransform(id); ok {
				known[id] = m
				continue
			}
			unresolved[id] = true
			c.log.Warn("skipping joint not in hierarchy",
				zap.String("track", track.Name),
				zap.String("joint", id),
				zap.Error(ErrUnresolvedJoint))
		}
	}
	for _, kf := range kfs {
		for id := range unresolved {
			delete(kf.Joints, id)
		}
		for id, jt := range kf.Joints {
			if jt == nil {
				delete(kf.Joints, id)
			}
		}
	}

	ids := make([]string, 0, len(known))
	for id := range known {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	filled := 0
	for _, id := range ids {
		filled += c.completeJoint(kfs, id, known[id])
	}

	frames := make([][]*JointTransform, len(kfs))
	for i, kf := range kfs {
		frames[i] = make([]*JointTransform, len(ids))
		for j, id := range ids {
			jt := kf.Joints[id]
			jt.resolve()
			frames[i][j] = jt
		}
	}

	track.joints = ids
	track.frames = frames
	track.initialized = true

	c.log.Debug("track completed",
		zap.String("track", track.Name),
		zap.Int("keyframes", len(kfs)),
		zap.Int("joints", len(ids)),
		zap.Int("unresolved", len(unresolved)),
		zap.Int("channels_filled", filled))
}

// completeJoint completes one joint across all keyframes and returns how many
// channels it had to fill.
func (c *Completer) completeJoint(kfs []*Keyframe, id string, rest math.Mat4) int {
	filled := 0
	last := len(kfs) - 1

	for i := range kfs {
		jt := kfs[i].Joints[id]
		if jt != nil && jt.IsComplete() {
			continue
		}

		switch {
		case i == 0:
			if jt == nil {
				jt = NewJointTransform()
				kfs[i].Joints[id] = jt
			}
			filled += len(jt.Missing())
			jt.fillFromMatrix(rest, allChannels)

		case i == last && jt == nil:
			prev := kfs[i-1].Joints[id]
			kfs[i].Joints[id] = prev.Clone()
			filled += int(channelCount)

		default:
			if jt == nil {
				jt = NewJointTransform()
				kfs[i].Joints[id] = jt
			}
			prev := kfs[i-1].Joints[id]
			for _, ch := range jt.Missing() {
				from, _ := prev.Get(ch)
				value := from

				if target := nextDefining(kfs, i, id, ch); target > 0 {
					to, _ := kfs[target].Joints[id].Get(ch)
					frac := float32(0)
					if span := kfs[target].Time - kfs[i-1].Time; span != 0 {
						frac = (kfs[i].Time - kfs[i-1].Time) / span
					}
					value = from + frac*(to-from)
				}

				jt.Set(ch, value)
				filled++
			}
		}
	}
	return filled
}

// nextDefining returns the first keyframe after i defining ch for the joint, or -1.
func nextDefining(kfs []*Keyframe, i int, id string, ch Channel) int {
	for j := i + 1; j < len(kfs); j++ {
		if jt := kfs[j].Joints[id]; jt != nil && jt.Has(ch) {
			return j
		}
	}
	return -1
}

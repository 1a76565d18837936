package rig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/midgard-anim/pkg/anim"
	"github.com/Faultbox/midgard-anim/pkg/formats"
	"github.com/Faultbox/midgard-anim/pkg/grf"
	"github.com/Faultbox/midgard-anim/pkg/math"
)

// ErrInvalidRig is returned for rig sources that decode but cannot describe a skeleton.
var ErrInvalidRig = errors.New("invalid rig")

// archiveSep separates a GRF archive path from an entry inside it.
const archiveSep = ".grf#"

// Rig is a loaded skeleton with its tracks. Tracks are not yet completed.
type Rig struct {
	Name     string
	Skeleton anim.JointSpec
	Tracks   []*anim.Track
}

// Load reads and converts a rig. Files ending in .rsm are read as models;
// anything else is a YAML rig document. A path of the form
// "archive.grf#data/model/walker.rsm" reads the entry from a GRF archive.
func Load(path string, log *zap.Logger) (*Rig, error) {
	if log == nil {
		log = zap.NewNop()
	}

	data, name, err := readSource(path)
	if err != nil {
		return nil, err
	}

	var r *Rig
	switch strings.ToLower(filepath.Ext(name)) {
	case ".rsm":
		model, perr := formats.ParseRSM(data)
		if perr != nil {
			return nil, fmt.Errorf("rig %s: %w", path, perr)
		}
		base := filepath.Base(name)
		r, err = FromRSM(model, strings.TrimSuffix(base, filepath.Ext(base)), log)
	default:
		r, err = Parse(data)
	}
	if err != nil {
		return nil, fmt.Errorf("rig %s: %w", path, err)
	}

	log.Info("rig loaded",
		zap.String("path", path),
		zap.String("name", r.Name),
		zap.String("root", r.Skeleton.ID),
		zap.Int("tracks", len(r.Tracks)))
	return r, nil
}

// readSource returns the bytes at path and the name used to pick a decoder.
func readSource(path string) ([]byte, string, error) {
	i := strings.Index(strings.ToLower(path), archiveSep)
	if i < 0 {
		data, err := os.ReadFile(path)
		return data, path, err
	}

	archivePath, entry := path[:i+len(archiveSep)-1], path[i+len(archiveSep):]
	archive, err := grf.Open(archivePath)
	if err != nil {
		return nil, "", fmt.Errorf("opening archive %s: %w", archivePath, err)
	}
	defer archive.Close()

	data, err := archive.Read(entry)
	if err != nil {
		return nil, "", err
	}
	return data, strings.ReplaceAll(entry, "\\", "/"), nil
}

// Parse converts a rig document.
func Parse(data []byte) (*Rig, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f.Convert()
}

// Convert turns the document into a JointSpec tree and tracks.
func (f *File) Convert() (*Rig, error) {
	if f.Skeleton.ID == "" {
		return nil, fmt.Errorf("%w: skeleton root has no id", ErrInvalidRig)
	}

	computeInverse := f.ComputeInverseBind == nil || *f.ComputeInverseBind
	root, err := f.Skeleton.convert(math.Identity(), computeInverse)
	if err != nil {
		return nil, err
	}
	if _, err := anim.NewHierarchy(root); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRig, err)
	}

	r := &Rig{Name: f.Name, Skeleton: root}
	for i := range f.Tracks {
		tr, err := f.Tracks[i].convert()
		if err != nil {
			return nil, err
		}
		r.Tracks = append(r.Tracks, tr)
	}
	return r, nil
}

// Hierarchy builds a fresh hierarchy for the rig's skeleton.
func (r *Rig) Hierarchy(opts ...anim.Option) (*anim.Hierarchy, error) {
	return anim.NewHierarchy(r.Skeleton, opts...)
}

// Track returns the named track.
func (r *Rig) Track(name string) (*anim.Track, bool) {
	for _, tr := range r.Tracks {
		if tr.Name == name {
			return tr, true
		}
	}
	return nil, false
}

func (j *JointFile) convert(parentWorld math.Mat4, computeInverse bool) (anim.JointSpec, error) {
	if j.ID == "" {
		return anim.JointSpec{}, fmt.Errorf("%w: joint without id", ErrInvalidRig)
	}

	bind, err := j.Bind.matrix()
	if err != nil {
		return anim.JointSpec{}, fmt.Errorf("joint %q bind: %w", j.ID, err)
	}
	world := parentWorld.Mul(bind)

	spec := anim.JointSpec{
		ID:        j.ID,
		SkinIndex: anim.NoSkin,
		BindLocal: bind,
	}
	if j.Skin != nil {
		if *j.Skin < 0 {
			return anim.JointSpec{}, fmt.Errorf("%w: joint %q has negative skin index %d", ErrInvalidRig, j.ID, *j.Skin)
		}
		spec.SkinIndex = *j.Skin
	}

	switch {
	case j.InverseBind != nil:
		m, err := mat4(j.InverseBind)
		if err != nil {
			return anim.JointSpec{}, fmt.Errorf("joint %q inverse_bind: %w", j.ID, err)
		}
		spec.InverseBind = &m
	case computeInverse:
		inv := world.Inverse()
		spec.InverseBind = &inv
	}

	for i := range j.Children {
		child, err := j.Children[i].convert(world, computeInverse)
		if err != nil {
			return anim.JointSpec{}, err
		}
		spec.Children = append(spec.Children, child)
	}
	return spec, nil
}

func (b *BindFile) matrix() (math.Mat4, error) {
	if b.Matrix != nil {
		return mat4(b.Matrix)
	}

	t, err := vec3(b.Translation, math.Vec3{})
	if err != nil {
		return math.Mat4{}, fmt.Errorf("translation: %w", err)
	}
	e, err := vec3(b.Rotation, math.Vec3{})
	if err != nil {
		return math.Mat4{}, fmt.Errorf("rotation: %w", err)
	}
	s, err := vec3(b.Scale, math.Vec3{X: 1, Y: 1, Z: 1})
	if err != nil {
		return math.Mat4{}, fmt.Errorf("scale: %w", err)
	}
	return math.Translate(t.X, t.Y, t.Z).
		Mul(math.RotateZ(e.Z)).
		Mul(math.RotateY(e.Y)).
		Mul(math.RotateX(e.X)).
		Mul(math.Scale(s.X, s.Y, s.Z)), nil
}

func (t *TrackFile) convert() (*anim.Track, error) {
	kfs := make([]*anim.Keyframe, 0, len(t.Keyframes))
	for i := range t.Keyframes {
		kf, err := t.Keyframes[i].convert()
		if err != nil {
			return nil, fmt.Errorf("track %q keyframe %d: %w", t.Name, i, err)
		}
		kfs = append(kfs, kf)
	}

	tr, err := anim.NewTrack(t.Name, kfs)
	if err != nil {
		return nil, err
	}
	if t.PositionInterp != "" {
		if tr.PositionInterp, err = anim.ParseInterpolator(t.PositionInterp); err != nil {
			return nil, fmt.Errorf("track %q: %w", t.Name, err)
		}
	}
	if t.RotationInterp != "" {
		if tr.RotationInterp, err = anim.ParseInterpolator(t.RotationInterp); err != nil {
			return nil, fmt.Errorf("track %q: %w", t.Name, err)
		}
	}
	return tr, nil
}

func (k *KeyframeFile) convert() (*anim.Keyframe, error) {
	kf := anim.NewKeyframe(k.Time)
	for id, ch := range k.Joints {
		if ch.Matrix != nil {
			m, err := mat4(ch.Matrix)
			if err != nil {
				return nil, fmt.Errorf("joint %q matrix: %w", id, err)
			}
			kf.Set(id, anim.NewMatrixTransform(m))
			continue
		}

		jt := anim.NewJointTransform()
		ch.Scale.apply(jt, anim.ScaleX)
		ch.Rotation.apply(jt, anim.RotationX)
		ch.Location.apply(jt, anim.LocationX)
		kf.Set(id, jt)
	}
	return kf, nil
}

// apply sets the keyed axes on channels first, first+1 and first+2.
func (a AxesFile) apply(jt *anim.JointTransform, first anim.Channel) {
	for i, v := range []*float32{a.X, a.Y, a.Z} {
		if v != nil {
			jt.Set(first+anim.Channel(i), *v)
		}
	}
}

func vec3(v []float32, def math.Vec3) (math.Vec3, error) {
	switch len(v) {
	case 0:
		return def, nil
	case 3:
		return math.Vec3{X: v[0], Y: v[1], Z: v[2]}, nil
	default:
		return math.Vec3{}, fmt.Errorf("%w: expected 3 values, got %d", ErrInvalidRig, len(v))
	}
}

func mat4(v []float32) (math.Mat4, error) {
	var m math.Mat4
	if len(v) != len(m) {
		return m, fmt.Errorf("%w: expected %d matrix values, got %d", ErrInvalidRig, len(m), len(v))
	}
	copy(m[:], v)
	return m, nil
}

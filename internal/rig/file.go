// Package rig loads skeletons and animation tracks from YAML rig files and
// RSM models, optionally stored inside GRF archives.
//
// A rig file looks like:
//
//	name: walker
//	skeleton:
//	  id: hips
//	  skin: 0
//	  bind: {translation: [0, 1, 0]}
//	  children:
//	    - id: spine
//	      skin: 1
//	      bind: {translation: [0, 0.5, 0], rotation: [0, 0, 0.1]}
//	tracks:
//	  - name: sway
//	    keyframes:
//	      - time: 0
//	        joints:
//	          spine: {rotation: {z: 0.1}}
//	      - time: 1
//	        joints:
//	          spine: {rotation: {z: -0.1}, location: {y: 0.55}}
//
// Keyframes may leave any channel out; completion fills it in later.
package rig

// File is the YAML document.
type File struct {
	Name     string      `yaml:"name"`
	Skeleton JointFile   `yaml:"skeleton"`
	Tracks   []TrackFile `yaml:"tracks"`

	// ComputeInverseBind fills missing inverse bind matrices of skinned joints
	// from the bind pose. Defaults to true.
	ComputeInverseBind *bool `yaml:"compute_inverse_bind"`
}

// JointFile is one joint and its subtree.
type JointFile struct {
	ID          string      `yaml:"id"`
	Skin        *int32      `yaml:"skin"` // Omitted for joints no vertex references
	Bind        BindFile    `yaml:"bind"`
	InverseBind []float32   `yaml:"inverse_bind"` // 16 values, column-major
	Children    []JointFile `yaml:"children"`
}

// BindFile is a bind-local transform, either TRS or a raw matrix.
type BindFile struct {
	Translation []float32 `yaml:"translation"` // x, y, z
	Rotation    []float32 `yaml:"rotation"`    // Euler x, y, z in radians
	Scale       []float32 `yaml:"scale"`       // x, y, z
	Matrix      []float32 `yaml:"matrix"`      // 16 values, column-major; wins over TRS
}

// TrackFile is one animation clip.
type TrackFile struct {
	Name           string         `yaml:"name"`
	PositionInterp string         `yaml:"position_interp"`
	RotationInterp string         `yaml:"rotation_interp"`
	Keyframes      []KeyframeFile `yaml:"keyframes"`
}

// KeyframeFile is a time and sparse per-joint channels.
type KeyframeFile struct {
	Time   float32                 `yaml:"time"`
	Joints map[string]ChannelsFile `yaml:"joints"`
}

// ChannelsFile holds the channels keyed for one joint. Nil means not keyed.
type ChannelsFile struct {
	Scale    AxesFile  `yaml:"scale"`
	Rotation AxesFile  `yaml:"rotation"`
	Location AxesFile  `yaml:"location"`
	Matrix   []float32 `yaml:"matrix"` // 16 values; replaces all channels
}

// AxesFile is an optional x, y, z triple.
type AxesFile struct {
	X *float32 `yaml:"x"`
	Y *float32 `yaml:"y"`
	Z *float32 `yaml:"z"`
}

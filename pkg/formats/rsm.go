// RSM (Resource Model) reader. Only the node hierarchy, node transforms and
// animation keyframes are decoded; mesh data is skipped.
package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/midgard-anim/pkg/encoding"
)

// RSM format errors.
var (
	ErrInvalidRSMMagic       = errors.New("invalid RSM magic: expected 'GRSM'")
	ErrUnsupportedRSMVersion = errors.New("unsupported RSM version")
	ErrTruncatedRSMData      = errors.New("truncated RSM data")
	ErrInvalidRSMCount       = errors.New("invalid RSM element count")
)

const (
	rsmNameSize = 40

	maxRSMNodes     = 10000
	maxRSMTextures  = 1000
	maxRSMMeshItems = 100000
	maxRSMKeys      = 10000
)

// RSMVersion represents the RSM file version.
type RSMVersion struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v RSMVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// AtLeast returns true if version is >= major.minor.
func (v RSMVersion) AtLeast(major, minor uint8) bool {
	if v.Major != major {
		return v.Major > major
	}
	return v.Minor >= minor
}

// RSMPosKeyframe is a position key. Frame is in milliseconds.
type RSMPosKeyframe struct {
	Frame    int32
	Position [3]float32
}

// RSMRotKeyframe is a rotation key stored as an X, Y, Z, W quaternion.
type RSMRotKeyframe struct {
	Frame      int32
	Quaternion [4]float32
}

// RSMScaleKeyframe is a scale key (v1.5+).
type RSMScaleKeyframe struct {
	Frame int32
	Scale [3]float32
}

// RSMNode is one node of the model hierarchy.
type RSMNode struct {
	Name       string
	Parent     string // empty for the root
	TextureIDs []int32

	// Matrix and Offset place the mesh inside its node and are not part of
	// the node transform. RotAngle is in radians.
	Matrix   [9]float32
	Offset   [3]float32
	Position [3]float32
	RotAngle float32
	RotAxis  [3]float32
	Scale    [3]float32

	VertexCount int
	FaceCount   int

	PosKeys   []RSMPosKeyframe // v < 1.5
	RotKeys   []RSMRotKeyframe
	ScaleKeys []RSMScaleKeyframe // v >= 1.5
}

// RSM is a decoded model.
type RSM struct {
	Version    RSMVersion
	AnimLength int32 // milliseconds
	Shading    int32
	Alpha      float32
	Textures   []string
	RootNode   string
	Nodes      []RSMNode
}

// rsmReader is a little-endian reader that remembers its first error.
type rsmReader struct {
	r   *bytes.Reader
	err error
}

func (rr *rsmReader) read(v any) {
	if rr.err != nil {
		return
	}
	if err := binary.Read(rr.r, binary.LittleEndian, v); err != nil {
		rr.err = ErrTruncatedRSMData
	}
}

func (rr *rsmReader) skip(n int64) {
	if rr.err != nil {
		return
	}
	if int64(rr.r.Len()) < n {
		rr.err = ErrTruncatedRSMData
		return
	}
	_, _ = rr.r.Seek(n, io.SeekCurrent)
}

func (rr *rsmReader) name() string {
	buf := make([]byte, rsmNameSize)
	rr.read(buf)
	if rr.err != nil {
		return ""
	}
	return encoding.FixedStringToUTF8(buf)
}

// count reads an int32 element count and checks it against limit.
func (rr *rsmReader) count(what string, limit int32) int {
	var n int32
	rr.read(&n)
	if rr.err != nil {
		return 0
	}
	if n < 0 || n > limit {
		rr.err = fmt.Errorf("%w: %d %s", ErrInvalidRSMCount, n, what)
		return 0
	}
	return int(n)
}

// ParseRSM parses RSM data from a byte slice. Versions 1.1 through 1.5 are supported.
func ParseRSM(data []byte) (*RSM, error) {
	if len(data) < 6 {
		return nil, ErrTruncatedRSMData
	}
	if string(data[:4]) != "GRSM" {
		return nil, ErrInvalidRSMMagic
	}

	rsm := &RSM{
		Version: RSMVersion{Major: data[4], Minor: data[5]},
		Alpha:   1,
	}
	if !rsm.Version.AtLeast(1, 1) || rsm.Version.AtLeast(2, 0) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedRSMVersion, rsm.Version)
	}

	rr := &rsmReader{r: bytes.NewReader(data[6:])}
	rr.read(&rsm.AnimLength)
	rr.read(&rsm.Shading)
	if rsm.Version.AtLeast(1, 4) {
		var alpha uint8
		rr.read(&alpha)
		rsm.Alpha = float32(alpha) / 255
	}
	rr.skip(16) // reserved

	textures := rr.count("textures", maxRSMTextures)
	rsm.Textures = make([]string, textures)
	for i := range rsm.Textures {
		rsm.Textures[i] = rr.name()
	}

	rsm.RootNode = rr.name()

	nodes := rr.count("nodes", maxRSMNodes)
	rsm.Nodes = make([]RSMNode, nodes)
	for i := range rsm.Nodes {
		rr.node(&rsm.Nodes[i], rsm.Version)
		if rr.err != nil {
			return nil, fmt.Errorf("parsing node %d: %w", i, rr.err)
		}
	}
	if rr.err != nil {
		return nil, rr.err
	}

	return rsm, nil
}

func (rr *rsmReader) node(n *RSMNode, version RSMVersion) {
	n.Name = rr.name()
	n.Parent = rr.name()

	n.TextureIDs = make([]int32, rr.count("texture ids", maxRSMTextures))
	rr.read(n.TextureIDs)

	rr.read(&n.Matrix)
	rr.read(&n.Offset)
	rr.read(&n.Position)
	rr.read(&n.RotAngle)
	rr.read(&n.RotAxis)
	rr.read(&n.Scale)

	n.VertexCount = rr.count("vertices", maxRSMMeshItems)
	rr.skip(int64(n.VertexCount) * 12)

	texCoordSize := int64(8)
	faceSize := int64(20)
	if version.AtLeast(1, 2) {
		texCoordSize += 4 // vertex color
		faceSize += 4     // smooth group
	}
	rr.skip(int64(rr.count("texture coordinates", maxRSMMeshItems)) * texCoordSize)

	n.FaceCount = rr.count("faces", maxRSMMeshItems)
	rr.skip(int64(n.FaceCount) * faceSize)

	if !version.AtLeast(1, 5) {
		n.PosKeys = make([]RSMPosKeyframe, rr.count("position keys", maxRSMKeys))
		rr.read(n.PosKeys)
	}

	n.RotKeys = make([]RSMRotKeyframe, rr.count("rotation keys", maxRSMKeys))
	rr.read(n.RotKeys)

	if version.AtLeast(1, 5) {
		n.ScaleKeys = make([]RSMScaleKeyframe, rr.count("scale keys", maxRSMKeys))
		rr.read(n.ScaleKeys)
	}
}

// ParseRSMFile parses an RSM file from disk.
func ParseRSMFile(path string) (*RSM, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading RSM file: %w", err)
	}
	return ParseRSM(data)
}

// NodeByName returns a node by its name, or nil if not found.
func (rsm *RSM) NodeByName(name string) *RSMNode {
	for i := range rsm.Nodes {
		if rsm.Nodes[i].Name == name {
			return &rsm.Nodes[i]
		}
	}
	return nil
}

// Root returns the node named by RootNode. If no node carries that name the
// first node without a parent is used.
func (rsm *RSM) Root() *RSMNode {
	if n := rsm.NodeByName(rsm.RootNode); n != nil {
		return n
	}
	for i := range rsm.Nodes {
		if rsm.Nodes[i].Parent == "" {
			return &rsm.Nodes[i]
		}
	}
	return nil
}

// Children returns all nodes that have the given parent name, in file order.
func (rsm *RSM) Children(parentName string) []*RSMNode {
	var children []*RSMNode
	for i := range rsm.Nodes {
		n := &rsm.Nodes[i]
		if n.Parent == parentName && n.Name != parentName {
			children = append(children, n)
		}
	}
	return children
}

// HasAnimation returns true if the model has any animation keyframes.
func (rsm *RSM) HasAnimation() bool {
	for _, node := range rsm.Nodes {
		if len(node.PosKeys) > 0 || len(node.RotKeys) > 0 || len(node.ScaleKeys) > 0 {
			return true
		}
	}
	return false
}

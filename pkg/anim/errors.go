package anim

import "errors"

// Animation errors.
var (
	// ErrMalformedTrack is returned when a track has no keyframes or its timestamps go backwards.
	ErrMalformedTrack = errors.New("malformed track")

	// ErrUnresolvedJoint marks a keyframe entry naming a joint the hierarchy does not have.
	ErrUnresolvedJoint = errors.New("unresolved joint")

	// ErrMissingInverseBind marks a skinned joint built without an inverse bind transform.
	ErrMissingInverseBind = errors.New("missing inverse bind transform")

	// ErrDuplicateJoint is returned when two joints in one hierarchy share an id.
	ErrDuplicateJoint = errors.New("duplicate joint id")

	// ErrInvalidSkinIndex is returned for a skin index at or past the joint count.
	ErrInvalidSkinIndex = errors.New("skin index out of range")

	// ErrDuplicateSkinIndex is returned when two joints publish to the same skin slot.
	ErrDuplicateSkinIndex = errors.New("duplicate skin index")
)

// Package formats provides binary readers for model files that carry a node
// hierarchy and keyframed node transforms.
package formats

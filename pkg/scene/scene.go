// Package scene turns a solved layout tree back into flat, styled visual
// elements: one node per plan node (plus a synthetic label per partition)
// and one edge per connection, ready for a canvas renderer.
package scene

import "encoding/json"

// Kind classifies a scene node for the renderer.
type Kind string

const (
	// KindContainer is a partition drawn as a resizable region.
	KindContainer Kind = "container"
	// KindLeaf is an ordinary node drawn as a box.
	KindLeaf Kind = "leaf"
	// KindLabel is the synthetic caption of a container. Not selectable.
	KindLabel Kind = "label"
)

// Layer color fallbacks, applied field by field when a node's layer is
// missing or leaves a color empty.
const (
	DefaultBackground = "#ffffff"
	DefaultText       = "#000000"
	DefaultBorder     = "#cccccc"
)

// DefaultArrow is the edge terminator used when nothing else is configured.
const DefaultArrow = "triangle"

// Z-order bands: containers sit at their nesting depth, leaves are lifted
// above every container so a deeply nested region can never cover a node.
const leafZBase = 1000

// Style is the resolved color set of a scene node.
type Style struct {
	Background string `json:"background" bson:"background"`
	Border     string `json:"border" bson:"border"`
	Text       string `json:"text" bson:"text"`
}

// Position is a point relative to the parent element's origin. Top-level
// elements are relative to the canvas origin.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Node is one visual element.
type Node struct {
	ID         string   `json:"id" bson:"id"`
	ParentID   string   `json:"parent_id,omitempty" bson:"parent_id,omitempty"`
	Kind       Kind     `json:"kind" bson:"kind"`
	Position   Position `json:"position" bson:"position"`
	Width      float64  `json:"width" bson:"width"`
	Height     float64  `json:"height" bson:"height"`
	Z          int      `json:"z" bson:"z"`
	Label      string   `json:"label" bson:"label"`
	Style      Style    `json:"style" bson:"style"`
	Selectable bool     `json:"selectable" bson:"selectable"`
}

// Edge is one visual connection. DataKind mirrors the source node's type so
// renderers can style reference edges differently from data edges.
type Edge struct {
	ID       string `json:"id" bson:"id"`
	Source   string `json:"source" bson:"source"`
	Target   string `json:"target" bson:"target"`
	Label    string `json:"label,omitempty" bson:"label,omitempty"`
	Stroke   string `json:"stroke" bson:"stroke"`
	Arrow    string `json:"arrow" bson:"arrow"`
	DataKind string `json:"data_kind" bson:"data_kind"`
}

// Scene is the flat element list handed to a renderer. Nodes are ordered
// parents before children so a renderer can draw them in slice order and
// rely on Z only for hit testing.
type Scene struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// MarshalScene serializes a scene for caching or transport.
func MarshalScene(s *Scene) ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalScene deserializes a scene produced by MarshalScene.
func UnmarshalScene(data []byte) (*Scene, error) {
	var s Scene
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

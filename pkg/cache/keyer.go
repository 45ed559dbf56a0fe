package cache

// Keyer generates cache keys. Splitting key generation from storage lets the
// same backend serve differently-scoped namespaces (see ScopedKeyer).
type Keyer interface {
	// GraphKey keys a stored graph by its ID.
	GraphKey(graphID string) string
	// SceneKey keys a computed scene by the graph content hash plus every
	// option that changes the geometry.
	SceneKey(graphHash string, opts SceneKeyOpts) string
}

// SceneKeyOpts are the layout options folded into a scene cache key. Two
// requests differing in any field must never share a key.
type SceneKeyOpts struct {
	Orientation  string   `json:"orientation"`
	NodeSpacing  float64  `json:"node_spacing"`
	RankSpacing  float64  `json:"rank_spacing"`
	HiddenLayers []string `json:"hidden_layers"`
}

// DefaultKeyer implements the standard key scheme: prefix:sha256(parts).
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// GraphKey generates a key for graph caching.
func (k *DefaultKeyer) GraphKey(graphID string) string {
	return hashKey("graph", graphID)
}

// SceneKey generates a key for scene caching.
func (k *DefaultKeyer) SceneKey(graphHash string, opts SceneKeyOpts) string {
	return hashKey("scene", graphHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)

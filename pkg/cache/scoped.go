package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// This is useful when one cache backend serves several workspaces or users
// that must not see each other's graphs.
//
// Example usage:
//
//	// Workspace-specific keys
//	wsKeyer := NewScopedKeyer(NewDefaultKeyer(), "ws:abc123:")
//
//	// Global keys
//	globalKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// GraphKey generates a prefixed key for graph caching.
func (k *ScopedKeyer) GraphKey(graphID string) string {
	return k.prefix + k.inner.GraphKey(graphID)
}

// SceneKey generates a prefixed key for scene caching.
func (k *ScopedKeyer) SceneKey(graphHash string, opts SceneKeyOpts) string {
	return k.prefix + k.inner.SceneKey(graphHash, opts)
}

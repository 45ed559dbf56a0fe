// Package pipeline runs the complete filter → hierarchy → layout →
// materialize pass that turns a plan graph into a renderable scene.
// CLI and API both go through this package so caching, logging and option
// handling behave identically in every entry point.
//
// # Architecture
//
// A pass consists of four stages:
//
//  1. Filter: drop nodes and edges on hidden layers
//  2. Hierarchy: nest the flat node list by containment
//  3. Layout: hand the nested tree to the solver for geometry
//  4. Materialize: flatten the solved tree into styled scene elements
//
// The expensive stage is layout; completed scenes are cached by graph hash
// plus layout options, so re-rendering an unchanged plan is a cache lookup.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger, nil)
//	result, err := runner.Execute(ctx, g, pipeline.Options{
//	    Orientation: pipeline.OrientationVertical,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	render(result.Scene)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/strataviz/strataviz/pkg/errors"
	"github.com/strataviz/strataviz/pkg/scene"
)

// Orientation values for Options.Orientation.
const (
	OrientationVertical   = "vertical"
	OrientationHorizontal = "horizontal"
)

// Default spacings in pixels.
const (
	DefaultNodeSpacing = 40.0
	DefaultRankSpacing = 60.0
)

// Options contains all configuration for a pipeline pass.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Orientation string  `json:"orientation,omitempty"`
	NodeSpacing float64 `json:"node_spacing,omitempty"`
	RankSpacing float64 `json:"rank_spacing,omitempty"`

	// HiddenLayers removes nodes and edges on these layers before layout.
	HiddenLayers []string `json:"hidden_layers,omitempty"`

	// Refresh bypasses the scene cache for this pass.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks enumerated fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Orientation == "" {
		o.Orientation = OrientationVertical
	}
	if o.Orientation != OrientationVertical && o.Orientation != OrientationHorizontal {
		return errors.New(errors.ErrCodeInvalidOptions, "orientation must be vertical or horizontal, got %q", o.Orientation)
	}
	if o.NodeSpacing == 0 {
		o.NodeSpacing = DefaultNodeSpacing
	}
	if o.RankSpacing == 0 {
		o.RankSpacing = DefaultRankSpacing
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Result contains the outputs of a pipeline pass.
type Result struct {
	// Scene is the renderable element list.
	Scene *scene.Scene

	// GraphHash is the content hash of the input graph.
	GraphHash string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks whether the scene came from cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount       int
	EdgeCount       int
	HiddenNodeCount int // nodes removed by layer filtering
	LayoutTime      time.Duration
	TotalTime       time.Duration
}

// CacheInfo tracks cache usage for a pass.
type CacheInfo struct {
	SceneHit bool // Whether the scene came from cache
}

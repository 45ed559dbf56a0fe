package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/strataviz/strataviz/pkg/cache"
	"github.com/strataviz/strataviz/pkg/graph"
	"github.com/strataviz/strataviz/pkg/hierarchy"
	"github.com/strataviz/strataviz/pkg/layout"
	"github.com/strataviz/strataviz/pkg/observability"
	"github.com/strataviz/strataviz/pkg/scene"
)

// Runner executes pipeline passes with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, engine and logger - it
// doesn't store pass results. Multiple goroutines can safely share one
// Runner; the engine guarantees that concurrent passes never publish a
// stale layout.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	Engine *layout.Engine
}

// NewRunner creates a runner with the given cache, keyer and engine.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If engine is nil, a Graphviz-backed engine is used.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger, engine *layout.Engine) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	if engine == nil {
		engine = layout.NewEngine(layout.NewGraphvizSolver(), logger)
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		Engine: engine,
	}
}

// Execute runs the complete filter → hierarchy → layout → materialize pass.
//
// If a newer pass supersedes this one mid-flight, Execute returns
// layout.ErrSuperseded and the caller should drop the result.
func (r *Runner) Execute(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	start := time.Now()

	result := &Result{}
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()

	// Stage 1: Filter
	visible := visibleSet(g, opts.HiddenLayers)
	work := graph.FilterVisible(g, visible)
	result.Stats.HiddenNodeCount = g.NodeCount() - work.NodeCount()

	// Compute graph hash for cache keys and API responses
	if data, err := graph.MarshalGraph(work); err == nil {
		result.GraphHash = cache.Hash(data)
	}

	// Try cache first (unless refresh requested)
	sceneKey := r.Keyer.SceneKey(result.GraphHash, r.sceneKeyOpts(opts))
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, sceneKey); err == nil && hit {
			if s, err := scene.UnmarshalScene(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "scene")
				result.Scene = s
				result.CacheInfo.SceneHit = true
				result.Stats.TotalTime = time.Since(start)
				observability.Pipeline().OnPassComplete(ctx, work.NodeCount(), work.EdgeCount(), true, result.Stats.TotalTime)
				opts.Logger.Debug("scene cache hit", "key", sceneKey)
				return result, nil
			}
			// Corrupt cache entry - fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, "scene")
	}

	// Stage 2: Hierarchy
	forest := hierarchy.Build(work, hierarchy.LevelConfig{
		NodeSpacing: opts.NodeSpacing,
		RankSpacing: opts.RankSpacing,
		Direction:   direction(opts.Orientation),
	})

	// Stage 3: Layout
	layoutStart := time.Now()
	layoutOpts := layout.Options{
		Direction:   layout.Direction(direction(opts.Orientation)),
		NodeSpacing: opts.NodeSpacing,
		RankSpacing: opts.RankSpacing,
	}
	tree := layout.FromForest(forest, layoutOpts)
	observability.Pipeline().OnLayoutStart(ctx, work.NodeCount())
	solved, err := r.Engine.Compute(ctx, tree, layoutOpts)
	observability.Pipeline().OnLayoutComplete(ctx, work.NodeCount(), time.Since(layoutStart), err)
	if err != nil {
		return nil, err
	}
	result.Stats.LayoutTime = time.Since(layoutStart)

	opts.Logger.Info("computed layout",
		"nodes", work.NodeCount(),
		"edges", work.EdgeCount(),
		"duration", result.Stats.LayoutTime)

	// Stage 4: Materialize
	result.Scene = scene.Materialize(solved, work, hierarchy.Depths(work))
	result.Stats.TotalTime = time.Since(start)

	// Cache the result
	if data, err := scene.MarshalScene(result.Scene); err == nil {
		_ = r.Cache.Set(ctx, sceneKey, data, cache.TTLScene)
		observability.Cache().OnCacheSet(ctx, "scene", len(data))
	}

	observability.Pipeline().OnPassComplete(ctx, work.NodeCount(), work.EdgeCount(), false, time.Since(start))
	return result, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) sceneKeyOpts(opts Options) cache.SceneKeyOpts {
	return cache.SceneKeyOpts{
		Orientation:  opts.Orientation,
		NodeSpacing:  opts.NodeSpacing,
		RankSpacing:  opts.RankSpacing,
		HiddenLayers: opts.HiddenLayers,
	}
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// visibleSet converts the hidden-layer list to the visibility map consumed
// by graph.FilterVisible. Layers not mentioned stay visible.
func visibleSet(g *graph.Graph, hidden []string) map[string]bool {
	if len(hidden) == 0 {
		return nil
	}
	visible := make(map[string]bool, len(g.Layers))
	for _, l := range g.Layers {
		visible[l.ID] = true
	}
	for _, id := range hidden {
		visible[id] = false
	}
	return visible
}

func direction(orientation string) string {
	if orientation == OrientationHorizontal {
		return string(layout.DirectionRight)
	}
	return string(layout.DirectionDown)
}

package layout

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/strataviz/strataviz/pkg/errors"
)

// ErrSuperseded is returned by Engine.Compute when a newer pass was requested
// while this one was running. The caller should drop the result; the newer
// pass will publish its own.
var ErrSuperseded = errors.New(errors.ErrCodeSuperseded, "layout pass superseded by a newer request")

// Engine serializes publication of solver results. Any number of passes may
// run concurrently, but only the most recently issued one may publish: stale
// results are discarded so the visible layout never jumps backwards after a
// rapid sequence of edits.
//
// A failed pass publishes nothing — Latest keeps returning the last good
// tree, which is what an editor wants to keep on screen.
type Engine struct {
	solver Solver
	logger *log.Logger

	mu     sync.Mutex
	issued uint64
	latest *Tree
}

// NewEngine wraps a solver with supersede tracking. logger may be nil.
func NewEngine(solver Solver, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{solver: solver, logger: logger}
}

// Compute runs a layout pass over root. If a newer pass is requested before
// this one finishes, the result is discarded and ErrSuperseded is returned.
func (e *Engine) Compute(ctx context.Context, root *Tree, opts Options) (*Tree, error) {
	e.mu.Lock()
	e.issued++
	gen := e.issued
	e.mu.Unlock()

	solved, err := e.solver.Solve(ctx, root, opts.Normalize())

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.issued {
		e.logger.Debug("discarding stale layout pass", "generation", gen, "current", e.issued)
		return nil, ErrSuperseded
	}
	if err != nil {
		e.logger.Warn("layout pass failed, keeping previous layout", "err", err)
		return nil, errors.Wrap(errors.ErrCodeSolverFailure, err, "layout pass failed")
	}
	e.latest = solved
	return solved, nil
}

// Latest returns the most recently published tree, or nil if no pass has
// succeeded yet.
func (e *Engine) Latest() *Tree {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.latest
}

package graph

import (
	"context"
	"io"
	"log/slog"
)

// End is the terminal pseudo-node. Routing to it ends the run.
const End = "__end__"

// NodeFunc is a unit of work: it receives a private clone of the current
// merged State and returns the fields it changed. Returning an error aborts
// the run; recoverable failures should instead be recorded in the Partial.
type NodeFunc func(ctx context.Context, rc *RunContext, s State) (Partial, error)

// PlannerFunc plans a fan-out step: one Task per unit of concurrent work.
// An empty plan is not an error; the executor then follows the planner
// node's unconditional edge.
type PlannerFunc func(ctx context.Context, rc *RunContext, s State) ([]Task, error)

// Task is one fan-out instance: the target node to run and per-task seed
// data overlaid onto that instance's view of the State. Seed fields are
// read-only extra context; they are never written back to the shared State.
type Task struct {
	Node string
	Seed map[string]any
}

// RouteFunc evaluates a conditional edge: it maps the current State to the
// label of the transition to take.
type RouteFunc func(s State) string

// RunContext carries per-run collaborators into nodes: the structured
// logger, the observer hooks, and out-of-band capabilities (such as an
// extraction client) under Values. It replaces any ambient global state.
type RunContext struct {
	// RunID identifies this execution. Assigned by the executor when empty.
	RunID string

	// Logger receives node-level diagnostics. Defaults to a no-op logger.
	Logger *slog.Logger

	// Hooks observes run, node, and fan-out lifecycle events.
	Hooks RunHooks

	// Values holds injected capabilities keyed by name. Treated as
	// immutable for the duration of the run.
	Values map[string]any
}

// Value returns the injected capability for key, or nil.
func (rc *RunContext) Value(key string) any {
	if rc == nil || rc.Values == nil {
		return nil
	}
	return rc.Values[key]
}

func (rc *RunContext) normalized() *RunContext {
	out := &RunContext{}
	if rc != nil {
		*out = *rc
	}
	if out.Logger == nil {
		out.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if out.Hooks == nil {
		out.Hooks = NoopHooks{}
	}
	return out
}

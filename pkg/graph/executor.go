package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const defaultMaxSteps = 1000

// Graph is a compiled, executable declaration. It is immutable and safe for
// concurrent runs.
type Graph struct {
	nodes    map[string]*node
	order    []string
	entry    string
	edges    map[string]string
	conds    map[string]conditional
	reducers Reducers

	maxSteps       int
	maxConcurrency int
}

// Option configures execution behavior at compile time.
type Option func(*Graph)

// WithMaxSteps bounds the number of node executions per run, guarding
// against routing loops that never terminate. Default 1000.
func WithMaxSteps(n int) Option {
	return func(g *Graph) { g.maxSteps = n }
}

// WithMaxConcurrency limits how many fanned-out tasks run at once.
// Zero means unbounded: the whole batch runs concurrently.
func WithMaxConcurrency(n int) Option {
	return func(g *Graph) { g.maxConcurrency = n }
}

// RouteError reports a routing function returning a label with no declared
// target and no unconditional fallback.
type RouteError struct {
	Node  string
	Label string
}

func (e *RouteError) Error() string {
	return fmt.Sprintf("node %q routed to unknown label %q", e.Node, e.Label)
}

// MaxStepsError reports a run exceeding its step budget.
type MaxStepsError struct {
	Limit int
}

func (e *MaxStepsError) Error() string {
	return fmt.Sprintf("run exceeded %d steps without reaching the end marker", e.Limit)
}

// Run executes the graph from its entry node until the end marker is
// reached, a sink node is left without transitions, the context is
// cancelled, or a node fails.
//
// The initial partial seeds the State before the entry node runs. The
// returned State is the final merged snapshot even when err is non-nil.
func (g *Graph) Run(ctx context.Context, rc *RunContext, initial Partial) (State, error) {
	rc = rc.normalized()
	if rc.RunID == "" {
		rc.RunID = uuid.NewString()
	}

	state := State{}
	for k, v := range initial {
		state[k] = v
	}

	started := time.Now()
	rc.Hooks.OnRunStart(ctx, rc.RunID)
	err := g.run(ctx, rc, state)
	rc.Hooks.OnRunEnd(ctx, rc.RunID, err, time.Since(started))
	return state, err
}

func (g *Graph) run(ctx context.Context, rc *RunContext, state State) error {
	cur := g.entry
	for step := 0; ; step++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if cur == End {
			return nil
		}
		if step >= g.maxSteps {
			return &MaxStepsError{Limit: g.maxSteps}
		}

		n := g.nodes[cur]
		var (
			next string
			err  error
		)
		if n.planner != nil {
			next, err = g.runFanOut(ctx, rc, n, state)
		} else {
			next, err = g.runNode(ctx, rc, n, state)
		}
		if err != nil {
			return err
		}
		cur = next
	}
}

func (g *Graph) runNode(ctx context.Context, rc *RunContext, n *node, state State) (string, error) {
	rc.Hooks.OnNodeStart(ctx, n.name)
	started := time.Now()
	partial, err := n.fn(ctx, rc, state.Clone())
	rc.Hooks.OnNodeEnd(ctx, n.name, err, time.Since(started))
	if err != nil {
		return "", fmt.Errorf("node %q: %w", n.name, err)
	}
	g.reducers.Apply(state, partial)
	return g.next(n.name, state)
}

// runFanOut dispatches one concurrent instance of the target node per
// planned task, joins the whole batch, then merges the collected partials
// in ascending task index. No new batch is dispatched after this one: the
// routing that follows decides whether to plan again.
func (g *Graph) runFanOut(ctx context.Context, rc *RunContext, n *node, state State) (string, error) {
	tasks, err := n.planner(ctx, rc, state.Clone())
	if err != nil {
		return "", fmt.Errorf("planner %q: %w", n.name, err)
	}
	rc.Hooks.OnFanOut(ctx, n.name, len(tasks))
	if len(tasks) == 0 {
		// Empty plan is a routing signal, not an error.
		return g.next(n.name, state)
	}

	allowed := make(map[string]bool, len(n.targets))
	for _, t := range n.targets {
		allowed[t] = true
	}
	for i, t := range tasks {
		if !allowed[t.Node] {
			return "", fmt.Errorf("planner %q: task %d targets undeclared node %q", n.name, i, t.Node)
		}
	}

	partials := make([]Partial, len(tasks))
	durations := make([]time.Duration, len(tasks))

	eg, taskCtx := errgroup.WithContext(ctx)
	if g.maxConcurrency > 0 {
		eg.SetLimit(g.maxConcurrency)
	}
	for i, t := range tasks {
		i, t := i, t
		target := g.nodes[t.Node]
		view := state.Clone()
		for k, v := range t.Seed {
			view[k] = v
		}
		eg.Go(func() error {
			started := time.Now()
			p, err := target.fn(taskCtx, rc, view)
			durations[i] = time.Since(started)
			if err != nil {
				return fmt.Errorf("task %d (%s): %w", i, t.Node, err)
			}
			partials[i] = p
			return nil
		})
	}
	// Join barrier: nothing advances until the whole batch has finished.
	if err := eg.Wait(); err != nil {
		return "", fmt.Errorf("fan-out %q: %w", n.name, err)
	}

	// Merge in ascending task index: the documented tie-break for
	// non-commutative reducers like FirstNonNil.
	for i, p := range partials {
		g.reducers.Apply(state, p)
		rc.Hooks.OnTaskEnd(ctx, tasks[i].Node, i, p, nil, durations[i])
	}

	// The batch's successor comes from the target node's edges, evaluated
	// against the merged state. Mixed targets must agree.
	var next string
	seen := map[string]bool{}
	for _, t := range tasks {
		if seen[t.Node] {
			continue
		}
		seen[t.Node] = true
		nx, err := g.next(t.Node, state)
		if err != nil {
			return "", err
		}
		if next != "" && nx != next {
			return "", fmt.Errorf("fan-out %q: targets disagree on successor (%q vs %q)", n.name, next, nx)
		}
		next = nx
	}
	return next, nil
}

// next resolves the transition out of from: conditional edges first, then
// the unconditional edge. A node with no transitions terminates the run.
func (g *Graph) next(from string, state State) (string, error) {
	if c, ok := g.conds[from]; ok {
		label := c.route(state)
		if to, ok := c.targets[label]; ok {
			return to, nil
		}
		if to, ok := g.edges[from]; ok {
			return to, nil
		}
		return "", &RouteError{Node: from, Label: label}
	}
	if to, ok := g.edges[from]; ok {
		return to, nil
	}
	return End, nil
}

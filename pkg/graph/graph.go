package graph

import (
	"fmt"
	"sort"
	"strings"
)

// Builder declares a graph: named nodes, one entry point, unconditional and
// conditional edges, and fan-out planners. Call Compile to validate the
// declaration and obtain an executable Graph.
type Builder struct {
	nodes    map[string]*node
	order    []string
	entry    string
	edges    map[string]string
	conds    map[string]conditional
	reducers Reducers
}

type node struct {
	name    string
	fn      NodeFunc
	planner PlannerFunc
	// targets lists the nodes a planner may dispatch to. Declared up front
	// so compilation can validate reachability.
	targets []string
}

type conditional struct {
	route   RouteFunc
	targets map[string]string
}

// NewBuilder creates an empty graph declaration.
func NewBuilder() *Builder {
	return &Builder{
		nodes:    make(map[string]*node),
		edges:    make(map[string]string),
		conds:    make(map[string]conditional),
		reducers: make(Reducers),
	}
}

// AddNode registers a regular node under name.
func (b *Builder) AddNode(name string, fn NodeFunc) *Builder {
	b.register(&node{name: name, fn: fn})
	return b
}

// AddFanOut registers a fan-out planner under name. targets lists every node
// the planner is allowed to dispatch to; dispatching outside this set is a
// runtime error.
func (b *Builder) AddFanOut(name string, fn PlannerFunc, targets ...string) *Builder {
	b.register(&node{name: name, planner: fn, targets: targets})
	return b
}

func (b *Builder) register(n *node) {
	if _, dup := b.nodes[n.name]; !dup {
		b.order = append(b.order, n.name)
	}
	b.nodes[n.name] = n
}

// SetEntry designates the node the executor starts at.
func (b *Builder) SetEntry(name string) *Builder {
	b.entry = name
	return b
}

// AddEdge declares an unconditional transition from -> to. For a fan-out
// node this edge doubles as the empty-plan fallback.
func (b *Builder) AddEdge(from, to string) *Builder {
	b.edges[from] = to
	return b
}

// AddConditionalEdges declares a routing function on from. The label it
// returns selects the next node from targets. Conditional edges take
// priority over an unconditional edge on the same node.
func (b *Builder) AddConditionalEdges(from string, route RouteFunc, targets map[string]string) *Builder {
	b.conds[from] = conditional{route: route, targets: targets}
	return b
}

// Reduce registers the merge function for a State field.
func (b *Builder) Reduce(field string, r Reducer) *Builder {
	b.reducers[field] = r
	return b
}

// CompileError reports every problem found while validating a graph
// declaration. Compilation failure is a fatal configuration error; the
// run must not start.
type CompileError struct {
	Problems []string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("graph compilation failed: %s", strings.Join(e.Problems, "; "))
}

// Compile validates the declaration and returns an executable Graph.
//
// Checks: the entry node is set and exists, every edge and routing target
// references a declared node (or End), fan-out planners have declared
// targets plus an unconditional fallback edge, and every node reachable
// from the entry can reach End on at least one routing outcome.
func (b *Builder) Compile(opts ...Option) (*Graph, error) {
	var problems []string

	if b.entry == "" {
		problems = append(problems, "entry node not set")
	} else if _, ok := b.nodes[b.entry]; !ok {
		problems = append(problems, fmt.Sprintf("entry node %q not declared", b.entry))
	}

	exists := func(name string) bool {
		if name == End {
			return true
		}
		_, ok := b.nodes[name]
		return ok
	}

	for from, to := range b.edges {
		if !exists(from) || from == End {
			problems = append(problems, fmt.Sprintf("edge from undeclared node %q", from))
		}
		if !exists(to) {
			problems = append(problems, fmt.Sprintf("edge %q -> %q targets undeclared node", from, to))
		}
	}

	for from, c := range b.conds {
		if !exists(from) || from == End {
			problems = append(problems, fmt.Sprintf("conditional edge from undeclared node %q", from))
		}
		if c.route == nil {
			problems = append(problems, fmt.Sprintf("conditional edge on %q has nil routing function", from))
		}
		for label, to := range c.targets {
			if !exists(to) {
				problems = append(problems, fmt.Sprintf("conditional edge %q[%s] targets undeclared node %q", from, label, to))
			}
		}
	}

	for _, name := range b.order {
		n := b.nodes[name]
		if n.planner == nil {
			continue
		}
		if len(n.targets) == 0 {
			problems = append(problems, fmt.Sprintf("fan-out node %q declares no targets", name))
		}
		for _, t := range n.targets {
			tn, ok := b.nodes[t]
			if !ok {
				problems = append(problems, fmt.Sprintf("fan-out node %q targets undeclared node %q", name, t))
			} else if tn.planner != nil {
				problems = append(problems, fmt.Sprintf("fan-out node %q targets another fan-out node %q", name, t))
			}
		}
		if _, ok := b.edges[name]; !ok {
			problems = append(problems, fmt.Sprintf("fan-out node %q has no fallback edge for an empty plan", name))
		}
	}

	if len(problems) == 0 {
		problems = append(problems, b.checkSoundness()...)
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return nil, &CompileError{Problems: problems}
	}

	g := &Graph{
		nodes:    b.nodes,
		order:    b.order,
		entry:    b.entry,
		edges:    b.edges,
		conds:    b.conds,
		reducers: b.reducers,
		maxSteps: defaultMaxSteps,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// successors returns every node name reachable from name in one transition.
func (b *Builder) successors(name string) []string {
	var out []string
	if to, ok := b.edges[name]; ok {
		out = append(out, to)
	}
	if c, ok := b.conds[name]; ok {
		for _, to := range c.targets {
			out = append(out, to)
		}
	}
	if n, ok := b.nodes[name]; ok && n.planner != nil {
		out = append(out, n.targets...)
	}
	return out
}

// checkSoundness verifies that every node reachable from the entry reaches
// End in at least one routing outcome. A sink node (no outgoing edges) is
// treated as reaching End, matching the executor's termination rule.
func (b *Builder) checkSoundness() []string {
	reachable := map[string]bool{}
	stack := []string{b.entry}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == End || reachable[cur] {
			continue
		}
		reachable[cur] = true
		stack = append(stack, b.successors(cur)...)
	}

	// Reverse walk: which nodes can reach End (or a sink)?
	sound := map[string]bool{}
	changed := true
	for changed {
		changed = false
		for name := range reachable {
			if sound[name] {
				continue
			}
			succ := b.successors(name)
			ok := len(succ) == 0
			for _, s := range succ {
				if s == End || sound[s] {
					ok = true
					break
				}
			}
			if ok {
				sound[name] = true
				changed = true
			}
		}
	}

	var problems []string
	for name := range reachable {
		if !sound[name] {
			problems = append(problems, fmt.Sprintf("node %q cannot reach the end marker", name))
		}
	}
	return problems
}

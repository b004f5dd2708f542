package graph

import "sort"

// Edge describes one declared transition, for introspection and
// visualization tools.
type Edge struct {
	From string
	To   string

	// Label is the routing label selecting this edge, empty for an
	// unconditional transition.
	Label string

	// FanOut marks a planner dispatch edge rather than a routed transition.
	FanOut bool
}

// Entry returns the name of the node a run starts at.
func (g *Graph) Entry() string {
	return g.entry
}

// Nodes returns every declared node name in declaration order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Topology returns every declared edge. Nodes appear in declaration order;
// within a node, fan-out dispatches come first, then conditional edges
// sorted by label, then the unconditional edge.
func (g *Graph) Topology() []Edge {
	var out []Edge
	for _, name := range g.order {
		n := g.nodes[name]
		for _, t := range n.targets {
			out = append(out, Edge{From: name, To: t, FanOut: true})
		}
		if c, ok := g.conds[name]; ok {
			labels := make([]string, 0, len(c.targets))
			for label := range c.targets {
				labels = append(labels, label)
			}
			sort.Strings(labels)
			for _, label := range labels {
				out = append(out, Edge{From: name, To: c.targets[label], Label: label})
			}
		}
		if to, ok := g.edges[name]; ok {
			out = append(out, Edge{From: name, To: to})
		}
	}
	return out
}

/*
Package graph is a small directed-graph runtime for stateful workflows.

Named nodes run over a shared, incrementally merged State. Each node receives
the current merged snapshot and returns only the fields it changed; the
executor folds those partial updates back into the State through per-field
reducers. Between nodes, control flow is decided by unconditional edges,
conditional edges (a routing function over the current State), or fan-out
planners that dispatch many concurrent instances of a target node and join
them at a barrier before merging.

The graph is declared up front with a Builder and validated by Compile; there
is no dynamic graph mutation at runtime and no persistence of State across
process restarts.

	b := graph.NewBuilder().
		AddNode("plan", planFn).
		AddNode("work", workFn).
		SetEntry("plan").
		AddEdge("plan", "work").
		AddEdge("work", graph.End)

	g, err := b.Compile()
	if err != nil {
		log.Fatal(err)
	}

	final, err := g.Run(ctx, &graph.RunContext{}, graph.Partial{"input": 42})
*/
package graph

package agent

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/ferret/pkg/extract"
	"github.com/aretw0/ferret/pkg/graph"
)

// Config assembles an Agent. Extractor is the only required collaborator.
type Config struct {
	// Extractor turns a URL plus instruction into a structured record.
	Extractor extract.Extractor

	// Logger receives node-level diagnostics. Nil means silent.
	Logger *slog.Logger

	// Hooks observes run lifecycle events, in addition to the agent's own
	// report tracking.
	Hooks graph.RunHooks

	// MaxConcurrency caps how many scraper tasks run at once. Zero means
	// unbounded.
	MaxConcurrency int

	// ExtractTimeout bounds each individual extraction call. Zero means the
	// run context's deadline is the only bound.
	ExtractTimeout time.Duration
}

// Input names the pages to hunt and the keyword to hunt for. URLs accepts a
// single string or a []string; empty inputs fall back to the defaults.
type Input struct {
	URLs    any
	Keyword string
}

// Result is the terminal summary of a hunt.
type Result struct {
	// Found reports whether any page answered for the keyword.
	Found bool

	// SourceURL is the page the winning record came from. Empty when
	// nothing was found.
	SourceURL string

	// Info is the extracted record: the winning scrape's output when Found,
	// otherwise the first record any scrape produced (which may carry an
	// error payload).
	Info extract.Record

	// LastError holds the most recent contained extraction failure, if any.
	LastError string

	// Keyword and URLsTried echo what the run actually did after default
	// substitution.
	Keyword   string
	URLsTried int
}

// Agent executes the keyword hunt. Construct with New; the graph is compiled
// once and reused across runs.
type Agent struct {
	graph *graph.Graph
	cfg   Config
}

// New compiles the workflow graph. A declaration problem is reported here,
// before any run starts.
func New(cfg Config) (*Agent, error) {
	b := graph.NewBuilder()
	b.AddNode(nodeInit, initializeState)
	b.AddNode(nodeManager, scrapeManager)
	b.AddFanOut(nodeSend, sendToScraper, nodeScraper)
	b.AddNode(nodeScraper, scraper)
	b.AddNode(nodeEvaluate, evaluate)

	b.SetEntry(nodeInit)
	b.AddEdge(nodeInit, nodeManager)
	b.AddConditionalEdges(nodeManager, routeAfterManager, map[string]string{
		routeScrape:   nodeSend,
		routeEvaluate: nodeEvaluate,
	})
	b.AddEdge(nodeSend, nodeEvaluate)
	b.AddConditionalEdges(nodeScraper, shouldContinueScraping, map[string]string{
		routeContinue: nodeManager,
		routeEnd:      nodeEvaluate,
	})
	b.AddEdge(nodeEvaluate, graph.End)

	for field, r := range reducers() {
		b.Reduce(field, r)
	}

	var opts []graph.Option
	if cfg.MaxConcurrency > 0 {
		opts = append(opts, graph.WithMaxConcurrency(cfg.MaxConcurrency))
	}

	g, err := b.Compile(opts...)
	if err != nil {
		return nil, err
	}
	return &Agent{graph: g, cfg: cfg}, nil
}

// Graph exposes the compiled workflow for introspection and visualization.
func (a *Agent) Graph() *graph.Graph {
	return a.graph
}

// Run executes one hunt to completion.
func (a *Agent) Run(ctx context.Context, in Input) (*Result, error) {
	tr := &tracker{}
	rc := &graph.RunContext{
		Logger: a.cfg.Logger,
		Hooks:  graph.NewCompositeHooks(tr, a.cfg.Hooks),
		Values: map[string]any{
			valExtractor:      a.cfg.Extractor,
			valExtractTimeout: a.cfg.ExtractTimeout,
		},
	}

	final, err := a.graph.Run(ctx, rc, graph.Partial{
		keyInitialURLs: in.URLs,
		keyKeyword:     in.Keyword,
	})
	if err != nil {
		return nil, err
	}
	return tr.result(final), nil
}

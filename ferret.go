package ferret

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/ferret/internal/agent"
	"github.com/aretw0/ferret/pkg/extract"
	"github.com/aretw0/ferret/pkg/graph"
)

// Agent is the high-level entry point for the Ferret library.
// It wraps the internal workflow and provides a simplified API for consumers.
type Agent struct {
	inner *agent.Agent
}

// Input names the pages to hunt and the keyword to hunt for. URLs accepts a
// single string or a []string; empty inputs fall back to the built-in
// defaults.
type Input struct {
	URLs    any
	Keyword string
}

// Report is the terminal summary of a hunt.
type Report struct {
	// Found reports whether any page answered for the keyword.
	Found bool

	// SourceURL is the page the winning record came from.
	SourceURL string

	// Info is the extracted record attributed to the winning page, or the
	// first record produced when nothing matched.
	Info extract.Record

	// LastError holds the most recent contained extraction failure, if any.
	LastError string

	// Keyword and URLsTried echo what the run actually did after default
	// substitution.
	Keyword   string
	URLsTried int
}

type options struct {
	extractor      extract.Extractor
	fetcher        extract.Fetcher
	logger         *slog.Logger
	hooks          graph.RunHooks
	model          string
	baseURL        string
	maxConcurrency int
	extractTimeout time.Duration
}

// Option defines a functional option for configuring the Agent.
type Option func(*options)

// WithExtractor injects a custom extractor, bypassing the default OpenAI
// client initialization.
func WithExtractor(e extract.Extractor) Option {
	return func(o *options) { o.extractor = e }
}

// WithFetcher sets how the default extractor retrieves page content, for
// example a headless-browser fetcher for script-heavy sites.
func WithFetcher(f extract.Fetcher) Option {
	return func(o *options) { o.fetcher = f }
}

// WithLogger sets a custom structured logger for the agent.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithHooks registers observability hooks for run lifecycle events.
func WithHooks(h graph.RunHooks) Option {
	return func(o *options) { o.hooks = h }
}

// WithModel overrides the model used by the default extractor.
func WithModel(model string) Option {
	return func(o *options) { o.model = model }
}

// WithBaseURL points the default extractor at an OpenAI-compatible gateway.
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

// WithMaxConcurrency caps how many pages are scraped at once. Zero means
// the whole batch runs concurrently.
func WithMaxConcurrency(n int) Option {
	return func(o *options) { o.maxConcurrency = n }
}

// WithExtractTimeout bounds each individual extraction call.
func WithExtractTimeout(d time.Duration) Option {
	return func(o *options) { o.extractTimeout = d }
}

// New initializes a new Ferret Agent.
// By default it extracts through the OpenAI API with the given key.
// If the WithExtractor option is provided, apiKey can be empty and the
// OpenAI client is skipped. The workflow graph is compiled here, so a
// declaration problem surfaces before any run starts.
func New(apiKey string, opts ...Option) (*Agent, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if o.extractor == nil {
		if apiKey == "" {
			return nil, fmt.Errorf("apiKey is required when no custom extractor is provided")
		}
		var exOpts []extract.OpenAIOption
		if o.model != "" {
			exOpts = append(exOpts, extract.WithModel(o.model))
		}
		if o.baseURL != "" {
			exOpts = append(exOpts, extract.WithBaseURL(o.baseURL))
		}
		if o.fetcher != nil {
			exOpts = append(exOpts, extract.WithFetcher(o.fetcher))
		}
		o.extractor = extract.NewOpenAIExtractor(apiKey, exOpts...)
	}

	inner, err := agent.New(agent.Config{
		Extractor:      o.extractor,
		Logger:         o.logger,
		Hooks:          o.hooks,
		MaxConcurrency: o.maxConcurrency,
		ExtractTimeout: o.extractTimeout,
	})
	if err != nil {
		return nil, err
	}
	return &Agent{inner: inner}, nil
}

// Run executes one hunt to completion and returns its report.
func (a *Agent) Run(ctx context.Context, in Input) (*Report, error) {
	res, err := a.inner.Run(ctx, agent.Input{URLs: in.URLs, Keyword: in.Keyword})
	if err != nil {
		return nil, err
	}
	return &Report{
		Found:     res.Found,
		SourceURL: res.SourceURL,
		Info:      res.Info,
		LastError: res.LastError,
		Keyword:   res.Keyword,
		URLsTried: res.URLsTried,
	}, nil
}

// Graph returns the compiled workflow for introspection or visualization
// tools.
func (a *Agent) Graph() *graph.Graph {
	return a.inner.Graph()
}

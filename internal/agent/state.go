package agent

import "github.com/aretw0/ferret/pkg/graph"

// Defaults substituted when a run is started with no inputs.
const (
	DefaultURL     = "https://python.langchain.com"
	DefaultKeyword = "How to track token usage for LLMs"
)

// State field keys.
const (
	keyInitialURLs     = "initial_urls"
	keyCurrentURLIndex = "current_url_index"
	keyTotalURLs       = "total_urls"
	keyURLsToScrape    = "urls_to_scrape"
	keyExtractedInfo   = "extracted_info"
	keyExtractedFrom   = "extracted_from_url"
	keyFound           = "is_information_found"
	keyKeyword         = "keyword"

	// seedURL is overlaid per fanned task; it never enters the shared state.
	seedURL = "url"
)

// Node names.
const (
	nodeInit     = "initialize_state"
	nodeManager  = "scrape_manager"
	nodeSend     = "send_to_scraper"
	nodeScraper  = "scraper"
	nodeEvaluate = "evaluate"
)

// Routing labels.
const (
	routeScrape   = "scrape"
	routeEvaluate = "evaluate"
	routeContinue = "continue_scraping"
	routeEnd      = "end_process"
)

// RunContext value keys.
const (
	valExtractor      = "extractor"
	valExtractTimeout = "extract_timeout"
)

// reducers is the per-field merge table for concurrent scraper partials.
// Fields without an entry are last-value-wins, which only sequential nodes
// write.
func reducers() graph.Reducers {
	return graph.Reducers{
		keyExtractedInfo:   graph.FirstNonNil,
		keyExtractedFrom:   graph.FirstNonNil,
		keyFound:           graph.Or,
		keyCurrentURLIndex: graph.Sum,
		keyURLsToScrape:    graph.Consume,
	}
}

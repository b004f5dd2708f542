package extract

import "context"

// Record is the structured result of one extraction. Keys and shape are
// model-determined; callers treat it as opaque data.
type Record map[string]any

// Extractor turns a resource locator and an instruction into a structured
// record. Implementations must be safe for concurrent use: the agent graph
// invokes one extraction per fanned-out task.
type Extractor interface {
	Extract(ctx context.Context, url, instruction string) (Record, error)
}

// Fetcher retrieves the textual content of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

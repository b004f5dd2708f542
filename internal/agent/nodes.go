package agent

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/ferret/pkg/extract"
	"github.com/aretw0/ferret/pkg/graph"
)

// instructionFor builds the extraction prompt for a keyword. The phrasing
// asks the model to self-report irrelevance, which the relevance check in
// the scraper keys off.
func instructionFor(keyword string) string {
	return fmt.Sprintf("Extract information related to '%s'. "+
		"Summarize the key points concisely. "+
		"If the keyword is not mentioned or relevant, state that clearly. "+
		"Add full source url without modification where you found keyword.", keyword)
}

type runInputs struct {
	URLs    []string `mapstructure:"initial_urls"`
	Keyword string   `mapstructure:"keyword"`
}

// promoteString lets a bare string stand in for a single-element slice.
func promoteString(from, to reflect.Kind, data any) (any, error) {
	if from == reflect.String && to == reflect.Slice {
		if s, ok := data.(string); ok {
			return []string{s}, nil
		}
	}
	return data, nil
}

// initializeState normalizes the raw run inputs into the full state schema.
// It never fails: malformed or missing inputs degrade to the defaults.
func initializeState(ctx context.Context, rc *graph.RunContext, s graph.State) (graph.Partial, error) {
	var in runInputs
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     &in,
		DecodeHook: mapstructure.DecodeHookFuncKind(promoteString),
	})
	if err == nil {
		if derr := dec.Decode(map[string]any(s)); derr != nil {
			rc.Logger.Warn("ignoring malformed run inputs", "error", derr)
			in = runInputs{}
		}
	}

	urls := make([]string, 0, len(in.URLs))
	for _, u := range in.URLs {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	if len(urls) == 0 {
		urls = []string{DefaultURL}
	}
	keyword := strings.TrimSpace(in.Keyword)
	if keyword == "" {
		keyword = DefaultKeyword
	}

	queue := make([]string, len(urls))
	copy(queue, urls)

	rc.Logger.Info("hunt initialized", "urls", len(urls), "keyword", keyword)
	return graph.Partial{
		keyInitialURLs:     urls,
		keyKeyword:         keyword,
		keyURLsToScrape:    queue,
		keyTotalURLs:       len(urls),
		keyCurrentURLIndex: 0,
		keyFound:           false,
	}, nil
}

// scrapeManager reports progress. It owns no state transitions of its own;
// the conditional edge attached to it decides what happens next.
func scrapeManager(ctx context.Context, rc *graph.RunContext, s graph.State) (graph.Partial, error) {
	rc.Logger.Info("scrape progress",
		"scraped", s.Int(keyCurrentURLIndex),
		"total", s.Int(keyTotalURLs),
		"queued", len(s.Strings(keyURLsToScrape)),
		"found", s.Bool(keyFound),
	)
	return nil, nil
}

// sendToScraper plans one scraper task per queued URL. Every task carries its
// own URL as seed data so it knows which queue entry it is responsible for.
func sendToScraper(ctx context.Context, rc *graph.RunContext, s graph.State) ([]graph.Task, error) {
	queue := s.Strings(keyURLsToScrape)
	keyword := s.String(keyKeyword)
	tasks := make([]graph.Task, 0, len(queue))
	for _, u := range queue {
		tasks = append(tasks, graph.Task{
			Node: nodeScraper,
			Seed: map[string]any{seedURL: u, keyKeyword: keyword},
		})
	}
	return tasks, nil
}

// scraper extracts one page and judges its relevance. Extraction failures
// are contained as an error record, never surfaced as a node error, so one
// dead page cannot abort the batch.
func scraper(ctx context.Context, rc *graph.RunContext, s graph.State) (graph.Partial, error) {
	url := s.String(seedURL)
	keyword := s.String(keyKeyword)

	rec := extractPage(ctx, rc, url, keyword)
	found := isRelevant(rec, keyword)
	if found {
		rc.Logger.Info("keyword found", "url", url)
	}

	queue := s.Strings(keyURLsToScrape)
	remaining := make([]string, 0, len(queue))
	for _, u := range queue {
		if u != url {
			remaining = append(remaining, u)
		}
	}

	return graph.Partial{
		keyExtractedInfo:   rec,
		keyExtractedFrom:   url,
		keyFound:           found,
		keyURLsToScrape:    remaining,
		keyCurrentURLIndex: 1,
	}, nil
}

func extractPage(ctx context.Context, rc *graph.RunContext, url, keyword string) extract.Record {
	ext, ok := rc.Value(valExtractor).(extract.Extractor)
	if !ok {
		return extract.Record{"error": "no extractor configured"}
	}
	if d, ok := rc.Value(valExtractTimeout).(time.Duration); ok && d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	rec, err := ext.Extract(ctx, url, instructionFor(keyword))
	if err != nil {
		rc.Logger.Warn("extraction failed", "url", url, "error", err)
		return extract.Record{"error": err.Error()}
	}
	return rec
}

// isRelevant decides whether an extracted record actually answers for the
// keyword: the stringified record must mention it, and the model must not
// have flagged the page as irrelevant.
func isRelevant(rec extract.Record, keyword string) bool {
	if len(rec) == 0 {
		return false
	}
	if _, failed := rec["error"]; failed {
		return false
	}
	text := strings.ToLower(fmt.Sprint(map[string]any(rec)))
	if !strings.Contains(text, strings.ToLower(keyword)) {
		return false
	}
	return !strings.Contains(text, "not mentioned") && !strings.Contains(text, "not relevant")
}

// evaluate re-asserts the outcome flag. Running it twice is a no-op, which
// keeps re-routing into it harmless.
func evaluate(ctx context.Context, rc *graph.RunContext, s graph.State) (graph.Partial, error) {
	found := s.Bool(keyFound)
	rc.Logger.Info("hunt finished", "found", found)
	return graph.Partial{keyFound: found}, nil
}

// routeAfterManager dispatches the queue to the scrapers, or wraps up when
// the hunt is over.
func routeAfterManager(s graph.State) string {
	if s.Bool(keyFound) || len(s.Strings(keyURLsToScrape)) == 0 {
		return routeEvaluate
	}
	return routeScrape
}

// shouldContinueScraping runs after a scraper batch has joined: stop on a
// hit, keep going while queue entries remain, otherwise wrap up.
func shouldContinueScraping(s graph.State) string {
	if s.Bool(keyFound) {
		return routeEnd
	}
	if s.Int(keyCurrentURLIndex) < s.Int(keyTotalURLs) {
		return routeContinue
	}
	return routeEnd
}

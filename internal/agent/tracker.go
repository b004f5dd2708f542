package agent

import (
	"context"
	"time"

	"github.com/aretw0/ferret/pkg/extract"
	"github.com/aretw0/ferret/pkg/graph"
)

// tracker records which fanned scrape actually produced the hit. The merged
// state keeps the first task's record regardless of outcome, so the final
// report needs its own bookkeeping to attribute the winning output.
//
// OnTaskEnd is delivered after the join barrier in ascending task index, so
// no locking is needed and "first hit" is deterministic.
type tracker struct {
	graph.NoopHooks

	tasks     int
	found     bool
	info      extract.Record
	sourceURL string
	lastError string
}

func (t *tracker) OnTaskEnd(ctx context.Context, node string, index int, p graph.Partial, err error, d time.Duration) {
	if node != nodeScraper {
		return
	}
	t.tasks++

	rec, _ := p[keyExtractedInfo].(extract.Record)
	if msg, ok := rec["error"].(string); ok {
		t.lastError = msg
	}
	if t.found {
		return
	}
	if hit, _ := p[keyFound].(bool); hit {
		t.found = true
		t.info = rec
		t.sourceURL, _ = p[keyExtractedFrom].(string)
	}
}

// result folds the tracked outcome and the final merged state into a Result.
func (t *tracker) result(final graph.State) *Result {
	res := &Result{
		Found:     final.Bool(keyFound),
		Keyword:   final.String(keyKeyword),
		URLsTried: t.tasks,
		LastError: t.lastError,
	}
	if t.found {
		res.Info = t.info
		res.SourceURL = t.sourceURL
		return res
	}
	if v, ok := final.Value(keyExtractedInfo); ok {
		res.Info, _ = v.(extract.Record)
		res.SourceURL = final.String(keyExtractedFrom)
	}
	return res
}

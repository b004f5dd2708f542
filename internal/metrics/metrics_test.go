package metrics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/ferret/internal/logging"
	"github.com/aretw0/ferret/pkg/graph"
)

func TestHooks_CountsOutcomes(t *testing.T) {
	h := New()
	ctx := context.Background()

	h.OnRunEnd(ctx, "run-1", nil, 120*time.Millisecond)
	h.OnRunEnd(ctx, "run-2", fmt.Errorf("boom"), 80*time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(h.runs.WithLabelValues(outcomeOK)))
	assert.Equal(t, float64(1), testutil.ToFloat64(h.runs.WithLabelValues(outcomeError)))
}

func TestHooks_CountsTasksPerNode(t *testing.T) {
	h := New()
	ctx := context.Background()

	h.OnFanOut(ctx, "send_to_scraper", 3)
	for i := 0; i < 3; i++ {
		h.OnTaskEnd(ctx, "scraper", i, graph.Partial{}, nil, time.Millisecond)
	}

	assert.Equal(t, float64(3), testutil.ToFloat64(h.tasks.WithLabelValues("scraper")))
}

func TestHooks_GatherAndLogSummary(t *testing.T) {
	h := New()
	ctx := context.Background()

	h.OnNodeEnd(ctx, "initialize_state", nil, time.Millisecond)
	h.OnRunEnd(ctx, "run-1", nil, time.Second)

	families, err := h.Registry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)

	// Must not panic on a populated registry.
	h.LogSummary(logging.NewNop())
}

func TestHooks_ImplementsRunHooks(t *testing.T) {
	var _ graph.RunHooks = New()
}

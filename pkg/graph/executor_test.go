package graph

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_LinearFlow(t *testing.T) {
	g, err := NewBuilder().
		AddNode("one", func(ctx context.Context, rc *RunContext, s State) (Partial, error) {
			return Partial{"trail": s.String("trail") + "1"}, nil
		}).
		AddNode("two", func(ctx context.Context, rc *RunContext, s State) (Partial, error) {
			return Partial{"trail": s.String("trail") + "2"}, nil
		}).
		SetEntry("one").
		AddEdge("one", "two").
		AddEdge("two", End).
		Compile()
	require.NoError(t, err)

	final, err := g.Run(context.Background(), nil, Partial{"trail": ""})
	require.NoError(t, err)
	assert.Equal(t, "12", final.String("trail"))
}

func TestRun_ConditionalRouting(t *testing.T) {
	g, err := NewBuilder().
		AddNode("decide", noopNode).
		AddNode("left", func(ctx context.Context, rc *RunContext, s State) (Partial, error) {
			return Partial{"took": "left"}, nil
		}).
		AddNode("right", func(ctx context.Context, rc *RunContext, s State) (Partial, error) {
			return Partial{"took": "right"}, nil
		}).
		SetEntry("decide").
		AddConditionalEdges("decide", func(s State) string {
			if s.Bool("go_left") {
				return "left"
			}
			return "right"
		}, map[string]string{"left": "left", "right": "right"}).
		AddEdge("left", End).
		AddEdge("right", End).
		Compile()
	require.NoError(t, err)

	final, err := g.Run(context.Background(), nil, Partial{"go_left": true})
	require.NoError(t, err)
	assert.Equal(t, "left", final.String("took"))

	final, err = g.Run(context.Background(), nil, Partial{"go_left": false})
	require.NoError(t, err)
	assert.Equal(t, "right", final.String("took"))
}

func TestRun_RouteToUnknownLabel(t *testing.T) {
	g, err := NewBuilder().
		AddNode("decide", noopNode).
		AddNode("left", noopNode).
		SetEntry("decide").
		AddConditionalEdges("decide", func(State) string { return "nowhere" }, map[string]string{
			"left": "left",
		}).
		AddEdge("left", End).
		Compile()
	require.NoError(t, err)

	_, err = g.Run(context.Background(), nil, nil)
	var re *RouteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "decide", re.Node)
	assert.Equal(t, "nowhere", re.Label)
}

func TestRun_NodeErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	g, err := NewBuilder().
		AddNode("a", func(ctx context.Context, rc *RunContext, s State) (Partial, error) {
			return nil, boom
		}).
		SetEntry("a").
		AddEdge("a", End).
		Compile()
	require.NoError(t, err)

	_, err = g.Run(context.Background(), nil, nil)
	require.ErrorIs(t, err, boom)
}

func TestRun_MaxSteps(t *testing.T) {
	g, err := NewBuilder().
		AddNode("loop", noopNode).
		SetEntry("loop").
		AddConditionalEdges("loop", func(State) string { return "again" }, map[string]string{
			"again": "loop",
			"done":  End,
		}).
		Compile(WithMaxSteps(10))
	require.NoError(t, err)

	_, err = g.Run(context.Background(), nil, nil)
	var me *MaxStepsError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, 10, me.Limit)
}

func TestRun_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	g, err := NewBuilder().
		AddNode("a", func(ctx context.Context, rc *RunContext, s State) (Partial, error) {
			cancel() // cancel mid-run; the executor must stop before the next node
			return Partial{}, nil
		}).
		AddNode("b", func(ctx context.Context, rc *RunContext, s State) (Partial, error) {
			t.Fatal("node after cancellation must not run")
			return nil, nil
		}).
		SetEntry("a").
		AddEdge("a", "b").
		AddEdge("b", End).
		Compile()
	require.NoError(t, err)

	_, err = g.Run(ctx, nil, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func fanOutGraph(t *testing.T, worker NodeFunc, opts ...Option) *Graph {
	t.Helper()
	g, err := NewBuilder().
		AddFanOut("plan", func(ctx context.Context, rc *RunContext, s State) ([]Task, error) {
			var tasks []Task
			for _, item := range s.Strings("items") {
				tasks = append(tasks, Task{Node: "work", Seed: map[string]any{"item": item}})
			}
			return tasks, nil
		}, "work").
		AddNode("work", worker).
		SetEntry("plan").
		AddEdge("plan", End).
		AddEdge("work", End).
		Compile(opts...)
	require.NoError(t, err)
	return g
}

func TestRun_FanOutJoinAndMerge(t *testing.T) {
	var running, peak atomic.Int32
	worker := func(ctx context.Context, rc *RunContext, s State) (Partial, error) {
		cur := running.Add(1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)
		return Partial{"count": 1, "seen": true}, nil
	}

	g, err := NewBuilder().
		AddFanOut("plan", func(ctx context.Context, rc *RunContext, s State) ([]Task, error) {
			var tasks []Task
			for _, item := range s.Strings("items") {
				tasks = append(tasks, Task{Node: "work", Seed: map[string]any{"item": item}})
			}
			return tasks, nil
		}, "work").
		AddNode("work", worker).
		Reduce("count", Sum).
		Reduce("seen", Or).
		SetEntry("plan").
		AddEdge("plan", End).
		AddEdge("work", End).
		Compile()
	require.NoError(t, err)

	final, err := g.Run(context.Background(), nil, Partial{"items": []string{"a", "b", "c", "d"}})
	require.NoError(t, err)
	assert.Equal(t, 4, final.Int("count"))
	assert.Equal(t, true, final.Bool("seen"))
	assert.Greater(t, peak.Load(), int32(1), "batch should run concurrently")
}

func TestRun_FanOutConcurrencyLimit(t *testing.T) {
	var running, peak atomic.Int32
	worker := func(ctx context.Context, rc *RunContext, s State) (Partial, error) {
		cur := running.Add(1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)
		return Partial{}, nil
	}

	g := fanOutGraph(t, worker, WithMaxConcurrency(2))
	_, err := g.Run(context.Background(), nil, Partial{"items": []string{"a", "b", "c", "d", "e", "f"}})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRun_FanOutMergeOrderIsTaskIndex(t *testing.T) {
	// Tasks finish in reverse order, but FirstNonNil must still keep the
	// lowest task index's value: the merge happens after the join barrier,
	// in ascending index.
	worker := func(ctx context.Context, rc *RunContext, s State) (Partial, error) {
		item := s.String("item")
		if item == "a" {
			time.Sleep(20 * time.Millisecond) // finishes last
		}
		return Partial{"winner": item}, nil
	}

	g, err := NewBuilder().
		AddFanOut("plan", func(ctx context.Context, rc *RunContext, s State) ([]Task, error) {
			var tasks []Task
			for _, item := range s.Strings("items") {
				tasks = append(tasks, Task{Node: "work", Seed: map[string]any{"item": item}})
			}
			return tasks, nil
		}, "work").
		AddNode("work", worker).
		Reduce("winner", FirstNonNil).
		SetEntry("plan").
		AddEdge("plan", End).
		AddEdge("work", End).
		Compile()
	require.NoError(t, err)

	final, err := g.Run(context.Background(), nil, Partial{"items": []string{"a", "b", "c"}})
	require.NoError(t, err)
	assert.Equal(t, "a", final.String("winner"))
}

func TestRun_FanOutSeedIsolation(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]bool{}
	worker := func(ctx context.Context, rc *RunContext, s State) (Partial, error) {
		mu.Lock()
		seen[s.String("item")] = true
		mu.Unlock()
		return Partial{}, nil
	}

	g := fanOutGraph(t, worker)
	final, err := g.Run(context.Background(), nil, Partial{"items": []string{"a", "b"}})
	require.NoError(t, err)

	// Every task saw its own seed, and no seed leaked into shared state.
	assert.Equal(t, map[string]bool{"a": true, "b": true}, seen)
	_, leaked := final.Value("item")
	assert.False(t, leaked)
}

func TestRun_FanOutEmptyPlanFallsThrough(t *testing.T) {
	worker := func(ctx context.Context, rc *RunContext, s State) (Partial, error) {
		t.Fatal("no task should run for an empty plan")
		return nil, nil
	}

	g, err := NewBuilder().
		AddFanOut("plan", func(ctx context.Context, rc *RunContext, s State) ([]Task, error) {
			return nil, nil
		}, "work").
		AddNode("work", worker).
		AddNode("after", func(ctx context.Context, rc *RunContext, s State) (Partial, error) {
			return Partial{"fell_through": true}, nil
		}).
		SetEntry("plan").
		AddEdge("plan", "after").
		AddEdge("work", "after").
		AddEdge("after", End).
		Compile()
	require.NoError(t, err)

	final, err := g.Run(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.True(t, final.Bool("fell_through"))
}

func TestRun_FanOutUndeclaredTarget(t *testing.T) {
	g, err := NewBuilder().
		AddFanOut("plan", func(ctx context.Context, rc *RunContext, s State) ([]Task, error) {
			return []Task{{Node: "rogue"}}, nil
		}, "work").
		AddNode("work", noopNode).
		AddNode("rogue", noopNode).
		SetEntry("plan").
		AddEdge("plan", End).
		AddEdge("work", End).
		AddEdge("rogue", End).
		Compile()
	require.NoError(t, err)

	_, err = g.Run(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undeclared node")
}

func TestRun_Hooks(t *testing.T) {
	rec := &recordingHooks{}
	g := fanOutGraph(t, func(ctx context.Context, rc *RunContext, s State) (Partial, error) {
		return Partial{"item": s.String("item")}, nil
	})

	rc := &RunContext{RunID: "run-1", Hooks: rec}
	_, err := g.Run(context.Background(), rc, Partial{"items": []string{"x", "y"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"run_start run-1", "fan_out plan 2", "task_end work 0", "task_end work 1", "run_end run-1"}, rec.events)
}

type recordingHooks struct {
	NoopHooks
	events []string
}

func (r *recordingHooks) OnRunStart(ctx context.Context, runID string) {
	r.events = append(r.events, "run_start "+runID)
}

func (r *recordingHooks) OnRunEnd(ctx context.Context, runID string, err error, d time.Duration) {
	r.events = append(r.events, "run_end "+runID)
}

func (r *recordingHooks) OnFanOut(ctx context.Context, node string, tasks int) {
	r.events = append(r.events, fmt.Sprintf("fan_out %s %d", node, tasks))
}

func (r *recordingHooks) OnTaskEnd(ctx context.Context, node string, index int, p Partial, err error, d time.Duration) {
	r.events = append(r.events, fmt.Sprintf("task_end %s %d", node, index))
}

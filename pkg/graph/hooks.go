package graph

import (
	"context"
	"log/slog"
	"time"
)

// RunHooks receives callbacks from the executor for observability.
//
// Implementations should be fast and non-blocking. OnTaskEnd is invoked
// after the join barrier, sequentially in ascending task index, so hook
// implementations see fan-out results in a deterministic order.
type RunHooks interface {
	// OnRunStart is called once before the entry node runs.
	OnRunStart(ctx context.Context, runID string)

	// OnRunEnd is called once when the run terminates, normally or not.
	OnRunEnd(ctx context.Context, runID string, err error, d time.Duration)

	// OnNodeStart is called before a regular node executes.
	OnNodeStart(ctx context.Context, node string)

	// OnNodeEnd is called after a regular node returns.
	OnNodeEnd(ctx context.Context, node string, err error, d time.Duration)

	// OnFanOut is called when a planner produced its batch, before dispatch.
	OnFanOut(ctx context.Context, node string, tasks int)

	// OnTaskEnd is called once per fanned task after the whole batch has
	// joined, in ascending task index, with the partial the task produced.
	OnTaskEnd(ctx context.Context, node string, index int, p Partial, err error, d time.Duration)
}

// NoopHooks is a RunHooks that does nothing. It is the default when no
// hooks are configured.
type NoopHooks struct{}

func (NoopHooks) OnRunStart(ctx context.Context, runID string)                       {}
func (NoopHooks) OnRunEnd(ctx context.Context, runID string, err error, d time.Duration) {}
func (NoopHooks) OnNodeStart(ctx context.Context, node string)                       {}
func (NoopHooks) OnNodeEnd(ctx context.Context, node string, err error, d time.Duration) {}
func (NoopHooks) OnFanOut(ctx context.Context, node string, tasks int)               {}
func (NoopHooks) OnTaskEnd(ctx context.Context, node string, index int, p Partial, err error, d time.Duration) {
}

// CompositeHooks fans events out to multiple hook implementations.
type CompositeHooks struct {
	hooks []RunHooks
}

// NewCompositeHooks combines the non-nil hooks into one. With zero or one
// usable entry it returns the trivial equivalent instead of a wrapper.
func NewCompositeHooks(hooks ...RunHooks) RunHooks {
	filtered := make([]RunHooks, 0, len(hooks))
	for _, h := range hooks {
		if h != nil {
			filtered = append(filtered, h)
		}
	}
	if len(filtered) == 0 {
		return NoopHooks{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeHooks{hooks: filtered}
}

func (c *CompositeHooks) OnRunStart(ctx context.Context, runID string) {
	for _, h := range c.hooks {
		h.OnRunStart(ctx, runID)
	}
}

func (c *CompositeHooks) OnRunEnd(ctx context.Context, runID string, err error, d time.Duration) {
	for _, h := range c.hooks {
		h.OnRunEnd(ctx, runID, err, d)
	}
}

func (c *CompositeHooks) OnNodeStart(ctx context.Context, node string) {
	for _, h := range c.hooks {
		h.OnNodeStart(ctx, node)
	}
}

func (c *CompositeHooks) OnNodeEnd(ctx context.Context, node string, err error, d time.Duration) {
	for _, h := range c.hooks {
		h.OnNodeEnd(ctx, node, err, d)
	}
}

func (c *CompositeHooks) OnFanOut(ctx context.Context, node string, tasks int) {
	for _, h := range c.hooks {
		h.OnFanOut(ctx, node, tasks)
	}
}

func (c *CompositeHooks) OnTaskEnd(ctx context.Context, node string, index int, p Partial, err error, d time.Duration) {
	for _, h := range c.hooks {
		h.OnTaskEnd(ctx, node, index, p, err, d)
	}
}

// LoggingHooks writes lifecycle events through a structured logger.
type LoggingHooks struct {
	Logger *slog.Logger
}

// NewLoggingHooks creates hooks that log run and node events. If logger is
// nil, slog.Default() is used.
func NewLoggingHooks(logger *slog.Logger) RunHooks {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingHooks{Logger: logger}
}

func (l *LoggingHooks) OnRunStart(ctx context.Context, runID string) {
	l.Logger.InfoContext(ctx, "run_start", slog.String("run_id", runID))
}

func (l *LoggingHooks) OnRunEnd(ctx context.Context, runID string, err error, d time.Duration) {
	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelError
	}
	l.Logger.Log(ctx, level, "run_end",
		slog.String("run_id", runID),
		slog.Duration("duration", d),
		slog.Any("error", err),
	)
}

func (l *LoggingHooks) OnNodeStart(ctx context.Context, node string) {
	l.Logger.DebugContext(ctx, "node_start", slog.String("node", node))
}

func (l *LoggingHooks) OnNodeEnd(ctx context.Context, node string, err error, d time.Duration) {
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelError
	}
	l.Logger.Log(ctx, level, "node_end",
		slog.String("node", node),
		slog.Duration("duration", d),
		slog.Any("error", err),
	)
}

func (l *LoggingHooks) OnFanOut(ctx context.Context, node string, tasks int) {
	l.Logger.InfoContext(ctx, "fan_out",
		slog.String("node", node),
		slog.Int("tasks", tasks),
	)
}

func (l *LoggingHooks) OnTaskEnd(ctx context.Context, node string, index int, p Partial, err error, d time.Duration) {
	l.Logger.DebugContext(ctx, "task_end",
		slog.String("node", node),
		slog.Int("task", index),
		slog.Duration("duration", d),
		slog.Any("error", err),
	)
}

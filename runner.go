package ferret

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Runner executes a hunt and writes the rendered report using provided IO.
// This allows for easy testing and integration with different frontends
// (CLI, TUI, etc).
type Runner struct {
	Output   io.Writer
	Renderer ContentRenderer
}

// ContentRenderer is a function that transforms the report markdown before
// outputting it. This allows for TUI rendering (markdown to ANSI) without
// coupling the core package.
type ContentRenderer func(string) string

// NewRunner creates a new Runner. Set Output before calling Run
// (typically os.Stdout; a buffer in tests).
func NewRunner() *Runner {
	return &Runner{}
}

// Run executes the hunt and writes its report. The report is also returned
// so callers can inspect the outcome programmatically.
func (r *Runner) Run(ctx context.Context, agent *Agent, in Input) (*Report, error) {
	if r.Output == nil {
		return nil, fmt.Errorf("output writer must be set (use os.Stdout)")
	}

	report, err := agent.Run(ctx, in)
	if err != nil {
		return nil, err
	}

	output := report.Markdown()
	if r.Renderer != nil {
		output = r.Renderer(output)
	}
	fmt.Fprintln(r.Output, strings.TrimSpace(output))
	return report, nil
}

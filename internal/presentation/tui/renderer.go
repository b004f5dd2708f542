package tui

import (
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// NewRenderer returns a function that renders markdown for the terminal
// using glamour. When plain is true, or the terminal does not support
// color at all, the markdown passes through untouched so output stays
// pipe-friendly.
func NewRenderer(plain bool) func(string) string {
	if plain || termenv.EnvColorProfile() == termenv.Ascii {
		return func(markdown string) string { return markdown }
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return func(markdown string) string { return markdown }
	}

	return func(markdown string) string {
		out, err := r.Render(markdown)
		if err != nil {
			return markdown
		}
		return out
	}
}

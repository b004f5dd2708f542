package graph

import (
	"fmt"
	"strings"

	core "github.com/aretw0/ferret/pkg/graph"
)

// GenerateMermaid produces a Mermaid flowchart (graph TD) from a compiled
// workflow topology. It applies semantic styling:
// - Entry and end marker: ((Circle))
// - Fan-out targets: [[Subroutine]]
// - Default: [Rectangle]
// Routed transitions carry their label; fan-out dispatches use dotted
// arrows since one dispatch stands for a whole concurrent batch.
func GenerateMermaid(entry string, edges []core.Edge) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	fanTargets := make(map[string]bool)
	for _, e := range edges {
		if e.FanOut {
			fanTargets[e.To] = true
		}
	}

	declared := make(map[string]bool)
	declare := func(name string) {
		safeID := sanitizeMermaidID(name)
		if declared[safeID] {
			return
		}
		declared[safeID] = true

		opener, closer := "[", "]"
		switch {
		case name == entry || name == core.End:
			opener, closer = "((", "))" // Circle
		case fanTargets[name]:
			opener, closer = "[[", "]]" // Subroutine
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, displayName(name), closer))
	}
	for _, e := range edges {
		declare(e.From)
		declare(e.To)
	}

	for _, e := range edges {
		arrow := "-->"
		switch {
		case e.FanOut:
			arrow = "-.->"
		case e.Label != "":
			// Escape double quotes in label for Mermaid
			safeLabel := strings.ReplaceAll(e.Label, "\"", "'")
			arrow = fmt.Sprintf("-- \"%s\" -->", safeLabel)
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", sanitizeMermaidID(e.From), arrow, sanitizeMermaidID(e.To)))
	}

	return sb.String()
}

func displayName(name string) string {
	if name == core.End {
		return "end"
	}
	return name
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return strings.Trim(s, "_")
}

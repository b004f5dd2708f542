package ferret

import (
	"fmt"
	"sort"
	"strings"
)

// Markdown renders the report as a markdown document. Frontends decide how
// to display it: raw for pipes, through a terminal renderer for humans.
func (r *Report) Markdown() string {
	var sb strings.Builder
	sb.WriteString("# Hunt report\n\n")
	fmt.Fprintf(&sb, "**Keyword:** %s\n\n", r.Keyword)
	fmt.Fprintf(&sb, "**Pages scraped:** %d\n\n", r.URLsTried)

	if r.Found {
		fmt.Fprintf(&sb, "## Found on %s\n\n", r.SourceURL)
		keys := make([]string, 0, len(r.Info))
		for k := range r.Info {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, "- **%s:** %v\n", k, r.Info[k])
		}
		return sb.String()
	}

	sb.WriteString("## Not found\n\nThe keyword was not found on any of the scraped pages.\n")
	if r.LastError != "" {
		fmt.Fprintf(&sb, "\nLast extraction error: `%s`\n", r.LastError)
	}
	return sb.String()
}

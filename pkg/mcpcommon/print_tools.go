package mcpcommon

import (
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// PrintTools writes a human-readable description of tools to w, sorted by name.
func PrintTools(w io.Writer, tools []server.ServerTool) {
	sorted := make([]mcp.Tool, 0, len(tools))
	for _, t := range tools {
		sorted = append(sorted, t.Tool)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	for _, tool := range sorted {
		fmt.Fprintf(w, "Tool: %s%s\n", tool.Name, hints(tool))
		if tool.Description != "" {
			fmt.Fprintf(w, "  Description: %s\n", tool.Description)
		}

		if len(tool.InputSchema.Properties) == 0 {
			fmt.Fprintf(w, "  Parameters: none\n\n")
			continue
		}

		fmt.Fprintf(w, "  Parameters:\n")
		names := make([]string, 0, len(tool.InputSchema.Properties))
		for name := range tool.InputSchema.Properties {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			line := "    " + name
			// Properties are plain maps built by the mcp.With* options
			if prop, ok := tool.InputSchema.Properties[name].(map[string]any); ok {
				if typ, ok := prop["type"].(string); ok {
					line += " [" + typ + "]"
				}
				if slices.Contains(tool.InputSchema.Required, name) {
					line += " (required)"
				}
				if desc, ok := prop["description"].(string); ok && desc != "" {
					line += " - " + desc
				}
			}
			fmt.Fprintln(w, line)
		}
		fmt.Fprintln(w)
	}
}

func hints(tool mcp.Tool) string {
	var h []string
	if b := tool.Annotations.ReadOnlyHint; b != nil && *b {
		h = append(h, "read-only")
	}
	if b := tool.Annotations.DestructiveHint; b != nil && *b {
		h = append(h, "destructive")
	}
	if len(h) == 0 {
		return ""
	}
	return " (" + strings.Join(h, ", ") + ")"
}

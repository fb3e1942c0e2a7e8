package answer

import (
	"fmt"
	"strings"

	"github.com/wakalAIagency/tamhid-chat-api/core"
)

// BuildContext renders retrieved matches as a numbered, cited context block.
// Each match becomes a [[n]] section carrying its content and best-known
// source; blocks are joined by blank lines. No matches renders to "".
func BuildContext(matches []core.Match) string {
	blocks := make([]string, 0, len(matches))
	for i, m := range matches {
		src := m.Metadata.SourceURL
		if src == "" {
			src = m.Metadata.Source
		}
		if src == "" {
			src = "N/A"
		}
		blocks = append(blocks, fmt.Sprintf("[[%d]]\n%s\n(Source: %s)", i+1, m.Content, src))
	}
	return strings.Join(blocks, "\n\n")
}

// Sources lists the distinct sources behind a set of matches, preserving
// retrieval order. Matches with no source information are skipped.
func Sources(matches []core.Match) []string {
	seen := make(map[string]bool, len(matches))
	var out []string
	for _, m := range matches {
		src := m.Metadata.SourceURL
		if src == "" {
			src = m.Metadata.Source
		}
		if src == "" || seen[src] {
			continue
		}
		seen[src] = true
		out = append(out, src)
	}
	return out
}

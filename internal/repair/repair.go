// Package repair normalizes common malformations in diagram source produced
// by language models and rewrites repaired blocks into the document.
//
// Repair is best-effort: it never fails. If the result is still structurally
// unrenderable, the renderer reports the failure downstream.
package repair

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/avenal/go-llm2pdf/internal/scan"
)

// Precompiled patterns for syntax normalization.
var (
	// Long-form connector tokens (--->, ----> ...) normalized to -->.
	longArrow = regexp.MustCompile(`-{3,}>`)

	// Node label immediately followed by a spaced link: "[label] (url)".
	spacedNodeLink = regexp.MustCompile(`\[([^\]]+)\]\s*\(([^\)]+)\)`)

	// Markdown table header-separator line: | --- | :--- | ...
	tableSeparator = regexp.MustCompile(`^\s*\|?\s*[-:]+\s*\|`)
)

// Canonicalize returns the canonical, maximally renderable form of a
// diagram-source string. Canonical source round-trips: applying Canonicalize
// to its own output is the identity.
func Canonicalize(source string) string {
	fixed := strings.TrimSpace(source)

	fixed = longArrow.ReplaceAllString(fixed, "-->")
	fixed = spacedNodeLink.ReplaceAllString(fixed, "[$1]($2)")

	// Right-trim every line and drop blank-only lines.
	lines := strings.Split(fixed, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			continue
		}
		cleaned = append(cleaned, line)
	}
	fixed = strings.Join(cleaned, "\n")

	// Stray markdown-table syntax inside diagram source is a common LLM
	// error. Synthesize a minimal flow-graph from it; lossy but renderable.
	if strings.Contains(fixed, "|") && strings.Contains(fixed, "---") {
		fixed = convertTableToFlowchart(fixed)
	}

	return fixed
}

// convertTableToFlowchart turns an accidental markdown table into a chain of
// flowchart nodes, one node per non-separator row with cells joined as the
// label. Column semantics are discarded. Content that merely looks table-ish
// (no separator line, fewer than two piped rows) passes through unchanged.
func convertTableToFlowchart(content string) string {
	lines := strings.Split(content, "\n")

	hasPipes := false
	hasSeparator := false
	for _, line := range lines {
		if strings.Contains(line, "|") {
			hasPipes = true
		}
		if tableSeparator.MatchString(line) {
			hasSeparator = true
		}
	}
	if !hasPipes || !hasSeparator {
		return content
	}

	var tableLines []string
	for _, line := range lines {
		if strings.Contains(line, "|") {
			tableLines = append(tableLines, line)
		}
	}
	if len(tableLines) < 2 {
		return content
	}

	var sb strings.Builder
	sb.WriteString("flowchart TD")

	nodeID := 0
	for _, line := range tableLines {
		if tableSeparator.MatchString(line) {
			continue
		}
		var cells []string
		for _, cell := range strings.Split(line, "|") {
			if c := strings.TrimSpace(cell); c != "" {
				cells = append(cells, c)
			}
		}
		if len(cells) == 0 {
			continue
		}
		nodeID++
		fmt.Fprintf(&sb, "\n    A%d[%s]", nodeID, strings.Join(cells, " | "))
		if nodeID > 1 {
			fmt.Fprintf(&sb, "\n    A%d --> A%d", nodeID-1, nodeID)
		}
	}

	if nodeID == 0 {
		return content
	}
	return sb.String()
}

// RewriteDocument replaces every Diagram block's original fenced text with a
// canonical mermaid fence around its canonicalized source. Substitution is
// by recorded span, strictly rightmost-first, so earlier spans never shift;
// spans of all blocks (including non-diagram ones) are updated in place and
// remain valid for the returned document. Identical duplicate blocks are
// therefore handled safely: identity, not text search, selects the target.
func RewriteDocument(doc string, blocks []scan.Block) (string, []scan.Block) {
	for i := len(blocks) - 1; i >= 0; i-- {
		b := &blocks[i]
		if b.Kind != scan.KindDiagram {
			continue
		}

		canonical := Canonicalize(b.Source)
		fence := "```" + scan.CanonicalTag + "\n" + canonical + "\n```"

		delta := len(fence) - (b.End - b.Start)
		doc = doc[:b.Start] + fence + doc[b.End:]

		b.Source = canonical
		b.Tag = scan.CanonicalTag
		b.NeedsRetag = false
		b.Repaired = true
		b.End = b.Start + len(fence)

		// Blocks to the right were already rewritten; shift their spans.
		for j := i + 1; j < len(blocks); j++ {
			blocks[j].Start += delta
			blocks[j].End += delta
		}
	}
	return doc, blocks
}

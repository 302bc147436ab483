// Package scan locates fenced code regions in document text and classifies
// each one as diagram source, plain code, or an unknown artifact.
package scan

import (
	"regexp"
	"strings"
)

// CanonicalTag is the single recognized identifier for diagram source after repair.
const CanonicalTag = "mermaid"

// fenceMarker delimits fenced code regions.
const fenceMarker = "```"

// Kind classifies a fenced block.
type Kind int

const (
	// KindDiagram marks a block whose source should be rendered as a diagram.
	KindDiagram Kind = iota
	// KindCode marks a recognized programming-language sample, kept verbatim.
	KindCode
	// KindUnknown marks a block that is neither; retained as code unless
	// flagged for discard.
	KindUnknown
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindDiagram:
		return "diagram"
	case KindCode:
		return "code"
	default:
		return "unknown"
	}
}

// Block is a detected fenced region. Start and End are a half-open byte span
// [Start, End) into the document at detection time, covering the opening
// fence through the closing fence.
type Block struct {
	ID         int
	Tag        string // original language tag, lowercased ("" if none)
	Source     string // raw text between the fences
	Start, End int
	Kind       Kind
	NeedsRetag bool // diagram detected by content heuristic, not by tag
	Discard    bool // unknown artifact to be dropped from the output
	Repaired   bool // set once the repairer has rewritten the block
}

// diagramKeywords are the grammar keywords that open a mermaid diagram.
// Matching is a plain prefix check on trimmed, lowercased content. This is
// deliberately imprecise: a code sample that happens to start with "graph"
// or "pie" is misclassified. Kept for compatibility with upstream behavior.
var diagramKeywords = []string{
	"graph", "flowchart", "sequencediagram", "classdiagram",
	"statediagram", "erdiagram", "gantt", "pie", "journey",
	"gitgraph", "mindmap", "timeline", "quadrantchart",
}

// diagramFamily marks tags or leading words that name a diagram/chart
// artifact without being renderable grammar.
var diagramFamily = []string{"mermaid", "diagram", "graph", "flowchart", "chart"}

// codeLanguages are general-purpose language tags whose blocks are kept verbatim.
var codeLanguages = map[string]bool{
	"python": true, "javascript": true, "java": true, "c": true,
	"cpp": true, "csharp": true, "ruby": true, "go": true,
	"rust": true, "php": true, "sql": true, "bash": true,
	"shell": true, "typescript": true, "jsx": true, "tsx": true,
	"json": true, "xml": true, "yaml": true, "html": true, "css": true,
}

var crlfOrCR = regexp.MustCompile(`\r\n?`)

// NormalizeLineEndings converts \r\n and \r to \n. Run before scanning so
// recorded spans refer to the normalized text.
func NormalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// Scan returns the ordered list of fenced blocks in doc. Unterminated fences
// are not matched and their text is left untouched. The scan is read-only;
// spans of returned blocks are pairwise non-overlapping.
func Scan(doc string) []Block {
	var blocks []Block

	pos := 0
	for {
		rel := strings.Index(doc[pos:], fenceMarker)
		if rel < 0 {
			break
		}
		open := pos + rel

		// The opening fence must be followed by a newline on its logical
		// line; the tag is whatever sits between the backticks and that
		// newline. Leading text before the fence marker is tolerated.
		nl := strings.IndexByte(doc[open:], '\n')
		if nl < 0 {
			break // opener at EOF with no content: unterminated
		}
		tagText := doc[open+len(fenceMarker) : open+nl]
		contentStart := open + nl + 1

		closeRel := strings.Index(doc[contentStart:], fenceMarker)
		if closeRel < 0 {
			break // unterminated fence, leave as plain text
		}
		end := contentStart + closeRel + len(fenceMarker)

		source := doc[contentStart : contentStart+closeRel]
		tag := parseTag(tagText)

		b := Block{
			ID:     len(blocks),
			Tag:    tag,
			Source: source,
			Start:  open,
			End:    end,
		}
		classify(&b)
		blocks = append(blocks, b)

		pos = end
	}

	return blocks
}

// parseTag extracts the lowercased language identifier from the text after
// the opening fence. Only the first whitespace-separated token counts.
func parseTag(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

// classify applies the classification rules in priority order.
func classify(b *Block) {
	// Rule 1: explicit diagram tag.
	if b.Tag == CanonicalTag {
		b.Kind = KindDiagram
		return
	}

	recognized := codeLanguages[b.Tag]

	// Rule 2: empty or unrecognized tag with diagram-grammar content.
	if !recognized && startsWithDiagramKeyword(b.Source) {
		b.Kind = KindDiagram
		b.NeedsRetag = true
		return
	}

	// Rule 3: recognized programming language.
	if recognized {
		b.Kind = KindCode
		return
	}

	// Rule 4: unknown. Dropped when it is an unrenderable diagram artifact:
	// blank content, a diagram-family tag, or diagram-family leading text.
	b.Kind = KindUnknown
	if strings.TrimSpace(b.Source) == "" {
		b.Discard = true
		return
	}
	for _, kw := range diagramFamily {
		if b.Tag != "" && strings.Contains(b.Tag, kw) {
			b.Discard = true
			return
		}
	}
	lead := leadingWord(b.Source)
	for _, kw := range diagramFamily {
		if lead == kw {
			b.Discard = true
			return
		}
	}
}

// startsWithDiagramKeyword reports whether trimmed, lowercased content opens
// with one of the mermaid grammar keywords.
func startsWithDiagramKeyword(source string) bool {
	content := strings.ToLower(strings.TrimSpace(source))
	for _, kw := range diagramKeywords {
		if strings.HasPrefix(content, kw) {
			return true
		}
	}
	return false
}

// leadingWord returns the first whitespace-separated token of source, lowercased.
func leadingWord(source string) string {
	fields := strings.Fields(source)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

package repair

import (
	"strings"
	"testing"

	"github.com/avenal/go-llm2pdf/internal/scan"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "already canonical source is unchanged",
			input:    "graph TD\n A-->B",
			expected: "graph TD\n A-->B",
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "\n\n  graph TD\n A-->B  \n\n",
			expected: "graph TD\n A-->B",
		},
		{
			name:     "long arrows normalized",
			input:    "graph LR\n A ---> B\n B ----> C",
			expected: "graph LR\n A --> B\n B --> C",
		},
		{
			name:     "blank-only lines dropped",
			input:    "graph TD\n\n   \n A-->B",
			expected: "graph TD\n A-->B",
		},
		{
			name:     "spaced node link tightened",
			input:    "graph TD\n A[Home] (https://example.com)",
			expected: "graph TD\n A[Home](https://example.com)",
		},
		{
			name:     "trailing whitespace right-trimmed per line",
			input:    "graph TD  \n A-->B\t",
			expected: "graph TD\n A-->B",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Canonicalize(tt.input)
			if got != tt.expected {
				t.Errorf("Canonicalize() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	inputs := []string{
		"graph TD\n A-->B",
		"sequenceDiagram\n Alice->>John: Hello",
		"flowchart LR\n X --> Y\n Y --> Z",
	}
	for _, in := range inputs {
		once := Canonicalize(in)
		twice := Canonicalize(once)
		if once != twice {
			t.Errorf("Canonicalize not idempotent: %q -> %q -> %q", in, once, twice)
		}
	}
}

func TestConvertTableToFlowchart(t *testing.T) {
	t.Run("two-row table becomes two nodes and one edge", func(t *testing.T) {
		input := "| Stage | Owner |\n| --- | --- |\n| Build | CI |"
		got := Canonicalize(input)

		if !strings.HasPrefix(got, "flowchart TD") {
			t.Fatalf("result does not open a flowchart: %q", got)
		}
		if n := strings.Count(got, "["); n != 2 {
			t.Errorf("node count = %d, want 2", n)
		}
		if n := strings.Count(got, "-->"); n != 1 {
			t.Errorf("edge count = %d, want 1", n)
		}
		if !strings.Contains(got, "A1[Stage | Owner]") {
			t.Errorf("first node label missing cells: %q", got)
		}
	})

	t.Run("pipes without separator pass through", func(t *testing.T) {
		input := "graph TD\n A[a | b]-->C\n D --- E"
		got := Canonicalize(input)
		if strings.HasPrefix(got, "flowchart TD\n    A1") {
			t.Errorf("non-table content was converted: %q", got)
		}
	})

	t.Run("single piped row passes through", func(t *testing.T) {
		input := "| only row |\nsomething --- else"
		got := convertTableToFlowchart(input)
		if got != input {
			t.Errorf("convertTableToFlowchart() = %q, want pass-through", got)
		}
	})
}

func TestRewriteDocument(t *testing.T) {
	t.Run("untagged diagram gets canonical tag", func(t *testing.T) {
		doc := "before\n```\nflowchart LR\n A-->B\n```\nafter"
		blocks := scan.Scan(doc)
		out, blocks := RewriteDocument(doc, blocks)

		if !strings.Contains(out, "```mermaid\nflowchart LR\n A-->B\n```") {
			t.Errorf("canonical fence missing from output:\n%s", out)
		}
		if !strings.Contains(out, "before\n") || !strings.Contains(out, "\nafter") {
			t.Error("text outside the block was disturbed")
		}
		if !blocks[0].Repaired {
			t.Error("block not marked repaired")
		}
		if blocks[0].Tag != scan.CanonicalTag {
			t.Errorf("Tag = %q, want %q", blocks[0].Tag, scan.CanonicalTag)
		}
	})

	t.Run("correctly tagged valid blocks round-trip byte-identical", func(t *testing.T) {
		doc := "x\n```mermaid\ngraph TD\n A-->B\n```\ny\n```mermaid\npie\n \"a\" : 1\n```\nz"
		out, _ := RewriteDocument(doc, scan.Scan(doc))
		if out != doc {
			t.Errorf("repair is not idempotent on canonical input:\ngot  %q\nwant %q", out, doc)
		}
	})

	t.Run("duplicate identical blocks rewritten independently", func(t *testing.T) {
		doc := "```\ngraph TD\n A--->B\n```\nmid\n```\ngraph TD\n A--->B\n```"
		out, blocks := RewriteDocument(doc, scan.Scan(doc))

		if n := strings.Count(out, "```mermaid\n"); n != 2 {
			t.Fatalf("canonical fence count = %d, want 2", n)
		}
		if !strings.Contains(out, "\nmid\n") {
			t.Error("text between duplicate blocks corrupted")
		}
		// Updated spans must still select the rewritten fences exactly.
		for i, b := range blocks {
			got := out[b.Start:b.End]
			if !strings.HasPrefix(got, "```mermaid\n") || !strings.HasSuffix(got, "\n```") {
				t.Errorf("block %d span out of sync after rewrite: %q", i, got)
			}
			if !strings.Contains(got, "A-->B") {
				t.Errorf("block %d arrows not normalized: %q", i, got)
			}
		}
	})

	t.Run("code blocks untouched", func(t *testing.T) {
		doc := "```python\nx ---> y\n```"
		out, _ := RewriteDocument(doc, scan.Scan(doc))
		if out != doc {
			t.Errorf("code block was modified: %q", out)
		}
	})

	t.Run("spans of trailing code blocks stay valid after resize", func(t *testing.T) {
		doc := "```\ngraph TD\n A ---> B\n```\n\n```python\nprint(1)\n```"
		out, blocks := RewriteDocument(doc, scan.Scan(doc))

		code := blocks[1]
		if got := out[code.Start:code.End]; got != "```python\nprint(1)\n```" {
			t.Errorf("code block span drifted: %q", got)
		}
	})
}

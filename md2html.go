package llm2pdf

import (
	"bytes"
	"context"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// htmlConverter abstracts Markdown to HTML conversion.
type htmlConverter interface {
	ToHTML(ctx context.Context, content, extraCSS string) (string, error)
}

// Compile-time interface check
var _ htmlConverter = (*goldmarkConverter)(nil)

// htmlTemplate wraps goldmark's fragment output in a complete HTML5 document.
// First %s is the stylesheet, second is the rendered body.
const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Document</title>
<style>
%s
</style>
</head>
<body>
%s
</body>
</html>`

// documentCSS is the built-in print stylesheet. Images are centered and
// bordered so rendered diagrams stand out from flowing text.
const documentCSS = `@page {
    size: A4;
    margin: 2cm;
}
body {
    font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
    line-height: 1.6;
    color: #333;
    max-width: 100%;
    margin: 0 auto;
    padding: 20px;
}
h1, h2, h3, h4, h5, h6 {
    color: #2c3e50;
    margin-top: 1.5em;
    margin-bottom: 0.5em;
}
h1 {
    border-bottom: 3px solid #3498db;
    padding-bottom: 0.3em;
}
h2 {
    border-bottom: 2px solid #95a5a6;
    padding-bottom: 0.3em;
}
img {
    max-width: 100%;
    height: auto;
    display: block;
    margin: 20px auto;
    border: 1px solid #ddd;
    border-radius: 4px;
    padding: 5px;
}
table {
    border-collapse: collapse;
    width: 100%;
    margin: 20px 0;
}
table, th, td {
    border: 1px solid #ddd;
}
th, td {
    padding: 12px;
    text-align: left;
}
th {
    background-color: #3498db;
    color: white;
}
tr:nth-child(even) {
    background-color: #f2f2f2;
}
code {
    background-color: #f4f4f4;
    padding: 2px 6px;
    border-radius: 3px;
    font-family: 'Consolas', 'Monaco', monospace;
    font-size: 0.9em;
}
pre {
    background-color: #f4f4f4;
    border: 1px solid #ddd;
    border-radius: 4px;
    padding: 15px;
    overflow-x: auto;
}
pre code {
    background-color: transparent;
    padding: 0;
}
blockquote {
    border-left: 4px solid #3498db;
    padding-left: 20px;
    margin-left: 0;
    color: #555;
    font-style: italic;
}
a {
    color: #3498db;
    text-decoration: none;
}
ul, ol {
    padding-left: 30px;
}
li {
    margin: 8px 0;
}`

// chromaCSS styles the class-based token markup emitted by the syntax
// highlighter (chromahtml.WithClasses). Short class names are chroma's
// standard token abbreviations.
const chromaCSS = `.chroma { background-color: #f4f4f4; }
.chroma .k, .chroma .kc, .chroma .kd, .chroma .kn, .chroma .kp, .chroma .kr, .chroma .kt { color: #d73a49; }
.chroma .s, .chroma .s1, .chroma .s2, .chroma .sb, .chroma .sc, .chroma .sd, .chroma .se, .chroma .sh, .chroma .si, .chroma .sx { color: #032f62; }
.chroma .c, .chroma .c1, .chroma .cm, .chroma .ch, .chroma .cp, .chroma .cs { color: #6a737d; font-style: italic; }
.chroma .m, .chroma .mb, .chroma .mf, .chroma .mh, .chroma .mi, .chroma .mo, .chroma .il { color: #005cc5; }
.chroma .nf, .chroma .fm { color: #6f42c1; }
.chroma .na, .chroma .nb, .chroma .bp { color: #005cc5; }
.chroma .nt, .chroma .nc, .chroma .nn { color: #22863a; }
.chroma .o, .chroma .ow { color: #d73a49; }
.chroma .err { color: #b31d28; }`

// goldmarkConverter converts Markdown to HTML using goldmark (pure Go).
type goldmarkConverter struct {
	md goldmark.Markdown
}

// newGoldmarkConverter creates a goldmarkConverter with GFM extensions and
// syntax highlighting.
func newGoldmarkConverter() *goldmarkConverter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,      // Tables, strikethrough, autolinks, task lists
			extension.Footnote, // [^1] footnotes
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true), // CSS classes instead of inline styles
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
			// Note: WithUnsafe() intentionally NOT used; input documents are
			// machine-generated and untrusted.
		),
	)
	return &goldmarkConverter{md: md}
}

// ToHTML converts Markdown content to a standalone HTML5 document with the
// built-in print stylesheet plus any extra CSS appended. Supports context
// cancellation via goroutine + select since goldmark doesn't take a context.
func (c *goldmarkConverter) ToHTML(ctx context.Context, content, extraCSS string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		css := documentCSS + "\n" + chromaCSS
		if extraCSS != "" {
			css += "\n" + extraCSS
		}
		done <- result{html: fmt.Sprintf(htmlTemplate, css, buf.String())}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

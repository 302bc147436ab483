// Package extract pulls the embedded text layer out of PDF files so existing
// documents can be re-ingested by the pipeline.
//
// Only the text layer is read; scanned (image-only) PDFs would need OCR and
// are not handled here.
package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoText indicates the PDF contained no extractable text layer.
var ErrNoText = errors.New("pdf contains no extractable text")

// PageText is the extracted text of one page, 1-based.
type PageText struct {
	Number int
	Text   string
}

// Text extracts the text of every page of the PDF at path and assembles a
// markdown document with a heading per page. Pages with no text are skipped.
func Text(path string) (string, error) {
	pages, err := Pages(path)
	if err != nil {
		return "", err
	}
	return Assemble(pages)
}

// Pages returns per-page extracted text for the PDF at path.
func Pages(path string) ([]PageText, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	numPages := r.NumPage()
	fonts := make(map[string]*pdf.Font)
	var pages []PageText

	for i := 1; i <= numPages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}

		for _, name := range p.Fonts() {
			if _, ok := fonts[name]; !ok {
				font := p.Font(name)
				fonts[name] = &font
			}
		}

		text, pageErr := p.GetPlainText(fonts)
		if pageErr != nil {
			return nil, fmt.Errorf("read pdf page %d: %w", i, pageErr)
		}
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			pages = append(pages, PageText{Number: i, Text: trimmed})
		}
	}

	return pages, nil
}

// Assemble joins per-page text into one document, each page prefixed with a
// page heading so the downstream renderer keeps the original pagination
// visible.
func Assemble(pages []PageText) (string, error) {
	if len(pages) == 0 {
		return "", ErrNoText
	}

	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		parts = append(parts, fmt.Sprintf("# Page %d\n\n%s\n", p.Number, p.Text))
	}
	return strings.Join(parts, "\n"), nil
}

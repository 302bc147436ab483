package llm2pdf

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyDocument  = errors.New("document content cannot be empty")
	ErrHTMLConversion = errors.New("HTML conversion failed")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrImageDir       = errors.New("failed to prepare image directory")
)

package main

import (
	"errors"
	"os"

	llm2pdf "github.com/avenal/go-llm2pdf"
)

// Exit codes for the llm2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, llm2pdf.ErrBrowserConnect) ||
		errors.Is(err, llm2pdf.ErrPageCreate) ||
		errors.Is(err, llm2pdf.ErrPageLoad) ||
		errors.Is(err, llm2pdf.ErrPDFGeneration) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWritePDF) ||
		errors.Is(err, ErrNoFiles) ||
		errors.Is(err, llm2pdf.ErrImageDir) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrBothInputs) ||
		errors.Is(err, ErrUnsupportedInput) ||
		errors.Is(err, ErrInvalidDuration) ||
		errors.Is(err, ErrConfigNotFound) ||
		errors.Is(err, ErrConfigParse) ||
		errors.Is(err, llm2pdf.ErrEmptyDocument) {
		return ExitUsage
	}

	return ExitGeneral
}

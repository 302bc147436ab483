package llm2pdf

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/avenal/go-llm2pdf/internal/fileutil"
	"github.com/avenal/go-llm2pdf/internal/place"
	"github.com/avenal/go-llm2pdf/internal/render"
	"github.com/avenal/go-llm2pdf/internal/repair"
	"github.com/avenal/go-llm2pdf/internal/scan"
)

// imageFilePattern names rendered diagram files inside the run's image
// directory, numbered in document order.
const imageFilePattern = "mermaid_diagram_%d.png"

// diagramRenderer abstracts the rendering fallback chain for testing.
type diagramRenderer interface {
	Render(ctx context.Context, job *render.Job) error
	Close() error
}

// Compile-time interface check
var _ diagramRenderer = (*render.Chain)(nil)

// Service orchestrates the document-to-PDF pipeline: scan fenced blocks,
// repair diagram syntax, render diagrams to images, splice the images back,
// then convert the result to PDF.
type Service struct {
	cfg           serviceConfig
	logger        *log.Logger
	htmlConverter htmlConverter
	pdfConverter  pdfConverter
	renderer      diagramRenderer
}

// New creates a Service with default configuration.
// Use options to customize behavior (e.g., WithTimeout).
func New(opts ...Option) *Service {
	s := &Service{
		cfg: serviceConfig{
			timeout:     defaultTimeout,
			renderWait:  defaultRenderWait,
			apiEndpoint: render.DefaultAPIEndpoint,
			apiTimeout:  defaultAPITimeout,
		},
		htmlConverter: newGoldmarkConverter(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.cfg.logger == nil {
		s.cfg.logger = log.New(io.Discard)
	}
	s.logger = s.cfg.logger

	// Create the rendering chain and PDF converter if not injected (e.g., by tests)
	if s.renderer == nil {
		s.renderer = render.NewChain(s.logger,
			render.NewBrowserStrategy(s.cfg.renderWait),
			render.NewAPIStrategy(s.cfg.apiEndpoint, s.cfg.apiTimeout),
			render.NewPlaceholderStrategy(),
		)
	}
	if s.pdfConverter == nil {
		s.pdfConverter = newRodConverter(s.cfg.timeout)
	}

	return s
}

// Convert runs the full pipeline and returns the PDF as bytes.
// The context is used for cancellation and timeout.
func (s *Service) Convert(ctx context.Context, input Input) ([]byte, error) {
	if input.Document == "" {
		return nil, ErrEmptyDocument
	}

	imageDir, err := s.newImageDir()
	if err != nil {
		return nil, err
	}
	if !s.cfg.keepImages {
		defer func() { _ = os.RemoveAll(imageDir) }()
	}

	processed, report, err := s.ProcessMarkdown(ctx, input.Document, imageDir)
	if err != nil {
		return nil, err
	}
	s.logger.Info("document processed",
		"diagrams", report.Diagrams, "rendered", report.Rendered,
		"failed", report.Failed, "dropped", report.Dropped)

	htmlContent, err := s.htmlConverter.ToHTML(ctx, processed, input.CSS)
	if err != nil {
		return nil, fmt.Errorf("converting to HTML: %w", err)
	}

	pdfBytes, err := s.pdfConverter.ToPDF(ctx, htmlContent, imageDir)
	if err != nil {
		return nil, fmt.Errorf("converting to PDF: %w", err)
	}

	return pdfBytes, nil
}

// ProcessMarkdown repairs diagram blocks in doc and substitutes rendered
// images, writing image files into imageDir. It returns the rewritten
// document and a run report. Individual diagram failures never abort the
// run; an unwritable imageDir does.
func (s *Service) ProcessMarkdown(ctx context.Context, doc, imageDir string) (string, *Report, error) {
	if doc == "" {
		return "", nil, ErrEmptyDocument
	}
	if err := fileutil.EnsureWritableDir(imageDir); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrImageDir, err)
	}

	doc = scan.NormalizeLineEndings(doc)
	blocks := scan.Scan(doc)
	doc, blocks = repair.RewriteDocument(doc, blocks)

	report := &Report{Blocks: len(blocks), ImageDir: imageDir}

	jobs := make(map[int]*render.Job)
	seq := 0
	for _, b := range blocks {
		if b.Kind != scan.KindDiagram {
			continue
		}
		seq++
		file := fmt.Sprintf(imageFilePattern, seq)
		jobs[b.ID] = &render.Job{
			BlockID:   b.ID,
			Seq:       seq,
			Source:    b.Source,
			ImagePath: filepath.Join(imageDir, file),
			ImageFile: file,
		}
	}
	report.Diagrams = seq

	for _, b := range blocks {
		job, ok := jobs[b.ID]
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return "", nil, err
		}
		if err := s.renderer.Render(ctx, job); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", nil, ctxErr
			}
			s.logger.Warn("diagram left as source block", "seq", job.Seq, "err", err)
		}
	}

	res := place.Apply(doc, blocks, jobs)
	report.Rendered = res.Replaced
	report.Failed = res.Kept
	report.Dropped = res.Dropped
	report.Warnings = res.Warnings
	for _, w := range res.Warnings {
		s.logger.Warn("placement inconsistency", "detail", w)
	}

	return res.Output, report, nil
}

// newImageDir creates a fresh per-run directory for rendered images.
func (s *Service) newImageDir() (string, error) {
	dir, err := os.MkdirTemp(s.cfg.workDir, "llm2pdf-images-*")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrImageDir, err)
	}
	return dir, nil
}

// Close releases resources (headless Chrome browsers).
func (s *Service) Close() error {
	var firstErr error
	if s.renderer != nil {
		if err := s.renderer.Close(); err != nil {
			firstErr = err
		}
	}
	if s.pdfConverter != nil {
		if err := s.pdfConverter.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

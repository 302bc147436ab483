package llm2pdf

import (
	"time"

	"github.com/charmbracelet/log"
)

// Input contains conversion parameters.
type Input struct {
	Document string // markdown or extracted text (required)
	CSS      string // extra CSS appended to the document stylesheet (optional)
}

// Report summarizes one pipeline run.
type Report struct {
	Blocks   int      // fenced blocks detected
	Diagrams int      // diagram candidates among them
	Rendered int      // diagrams substituted with images
	Failed   int      // diagrams left as repaired source blocks
	Dropped  int      // unrenderable artifacts removed
	Warnings []string // placement inconsistencies
	ImageDir string   // per-run directory holding rendered images
}

// Option configures a Service.
type Option func(*Service)

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	timeout     time.Duration // HTML-to-PDF conversion timeout
	renderWait  time.Duration // bounded wait for browser diagram rendering
	apiEndpoint string        // hosted rendering service base URL
	apiTimeout  time.Duration // bounded timeout per hosted-API call
	workDir     string        // base directory for per-run image dirs ("" = system temp)
	keepImages  bool          // keep the per-run image directory after Convert
	logger      *log.Logger
}

// Default timeouts.
const (
	defaultTimeout    = 30 * time.Second
	defaultRenderWait = 10 * time.Second
	defaultAPITimeout = 10 * time.Second
)

// WithTimeout sets the HTML-to-PDF conversion timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("llm2pdf: WithTimeout duration must be positive")
	}
	return func(s *Service) {
		s.cfg.timeout = d
	}
}

// WithRenderWait bounds how long the browser strategy waits for a diagram to
// finish client-side rendering. Panics if d <= 0.
func WithRenderWait(d time.Duration) Option {
	if d <= 0 {
		panic("llm2pdf: WithRenderWait duration must be positive")
	}
	return func(s *Service) {
		s.cfg.renderWait = d
	}
}

// WithRenderEndpoint points the hosted rendering API fallback at a different
// service (e.g. a self-hosted mermaid.ink instance).
func WithRenderEndpoint(url string) Option {
	return func(s *Service) {
		s.cfg.apiEndpoint = url
	}
}

// WithWorkDir places per-run image directories under dir instead of the
// system temp directory.
func WithWorkDir(dir string) Option {
	return func(s *Service) {
		s.cfg.workDir = dir
	}
}

// WithKeepImages keeps the per-run image directory on disk after Convert
// returns, for debugging failed diagrams.
func WithKeepImages() Option {
	return func(s *Service) {
		s.cfg.keepImages = true
	}
}

// WithLogger attaches a structured logger. The default discards everything.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		s.cfg.logger = logger
	}
}

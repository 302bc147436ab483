package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/avenal/go-llm2pdf/internal/fileutil"
)

// Sentinel errors for the browser strategy.
var (
	ErrBrowserConnect  = errors.New("failed to connect to browser")
	ErrPageCreate      = errors.New("failed to create browser page")
	ErrDiagramNotReady = errors.New("diagram did not render in time")
	ErrScreenshot      = errors.New("failed to capture diagram screenshot")
)

// DefaultRenderWait bounds how long a page may take to produce the diagram SVG.
const DefaultRenderWait = 10 * time.Second

// mermaidPage embeds the diagram source in a minimal page that hydrates it
// client-side. The SVG appears inside the .mermaid container once done.
const mermaidPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<script type="module">
import mermaid from 'https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.esm.min.mjs';
mermaid.initialize({ startOnLoad: true, theme: 'default' });
</script>
<style>body { background: white; margin: 16px; }</style>
</head>
<body>
<div class="mermaid">
%s
</div>
</body>
</html>`

// svgSelector locates the rendered vector output element.
const svgSelector = ".mermaid svg"

// BrowserStrategy renders diagrams by driving headless Chrome via go-rod.
// One browser instance is shared across all jobs of a run, with one page per
// job; access is mutually exclusive because the session gives no isolation
// guarantees. Rod downloads Chromium on first run if none is found.
type BrowserStrategy struct {
	mu         sync.Mutex
	browser    *rod.Browser
	renderWait time.Duration
}

// NewBrowserStrategy creates a browser strategy with the given bounded wait
// for client-side rendering. Non-positive wait falls back to the default.
func NewBrowserStrategy(renderWait time.Duration) *BrowserStrategy {
	if renderWait <= 0 {
		renderWait = DefaultRenderWait
	}
	return &BrowserStrategy{renderWait: renderWait}
}

// Name identifies the strategy in logs and job records.
func (b *BrowserStrategy) Name() string { return "browser" }

// ensureBrowser lazily launches and connects to the browser.
// Callers must hold b.mu.
func (b *BrowserStrategy) ensureBrowser() error {
	if b.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	b.browser = browser
	return nil
}

// Render loads a page embedding the diagram source, waits a bounded duration
// for the SVG to appear, and captures it as a PNG screenshot at outPath.
// Page resources are torn down on every path.
func (b *BrowserStrategy) Render(ctx context.Context, source, outPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensureBrowser(); err != nil {
		return err
	}

	// The page is loaded from disk next to the output image; the diagram
	// script itself is fetched by the browser.
	html := fmt.Sprintf(mermaidPage, source)
	tmpPath, cleanup, err := fileutil.WriteTempFile(filepath.Dir(outPath), html, "html")
	if err != nil {
		return err
	}
	defer cleanup()

	page, err := b.browser.Page(proto.TargetCreateTarget{URL: "file://" + tmpPath})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	wait := b.renderWait
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < wait {
			wait = remaining
		}
		if wait <= 0 {
			return context.DeadlineExceeded
		}
	}

	el, err := page.Timeout(wait).Element(svgSelector)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDiagramNotReady, err)
	}

	data, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrScreenshot, err)
	}

	if err := os.WriteFile(outPath, data, 0o600); err != nil {
		return fmt.Errorf("writing diagram image: %w", err)
	}
	return nil
}

// Close shuts the shared browser down and releases its process.
func (b *BrowserStrategy) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser != nil {
		err := b.browser.Close()
		b.browser = nil
		return err
	}
	return nil
}

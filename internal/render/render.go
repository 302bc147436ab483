// Package render converts diagram-source strings into raster image files.
//
// Rendering is organized as an ordered chain of strategies tried per job
// until one succeeds: headless-browser capture, a hosted rendering API, and
// a locally synthesized placeholder image.
package render

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// Sentinel errors for rendering operations.
var (
	ErrNoStrategies = errors.New("render: no strategies configured")
	ErrExhausted    = errors.New("render: all strategies failed")
)

// Status is the lifecycle state of a rendering job.
type Status int

const (
	StatusPending Status = iota
	StatusRendered
	StatusFailed
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusRendered:
		return "rendered"
	case StatusFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Job is one unit of rendering work. A Failed job is not retried and never
// aborts the pipeline; the placement engine keeps its source block instead.
type Job struct {
	BlockID   int
	Seq       int    // 1-based position among the document's diagrams
	Source    string // canonical diagram source
	ImagePath string // absolute output path for the raster image
	ImageFile string // bare filename used in the image reference
	Status    Status
	Strategy  string // name of the strategy that produced the image
	Err       error  // last error when Status is StatusFailed
}

// Strategy renders one diagram-source string to an image file at outPath.
type Strategy interface {
	Name() string
	Render(ctx context.Context, source, outPath string) error
}

// Chain tries strategies in order until one succeeds.
type Chain struct {
	strategies []Strategy
	logger     *log.Logger
}

// NewChain creates a chain over the given strategies, tried in order.
// A nil logger disables logging.
func NewChain(logger *log.Logger, strategies ...Strategy) *Chain {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Chain{strategies: strategies, logger: logger}
}

// Render runs the job through the strategy chain, mutating its status.
// Only total exhaustion marks the job Failed; the returned error is then the
// last strategy's error. Context cancellation stops the chain immediately.
func (c *Chain) Render(ctx context.Context, job *Job) error {
	if len(c.strategies) == 0 {
		job.Status = StatusFailed
		job.Err = ErrNoStrategies
		return ErrNoStrategies
	}

	var lastErr error
	for _, s := range c.strategies {
		if err := ctx.Err(); err != nil {
			job.Status = StatusFailed
			job.Err = err
			return err
		}

		err := s.Render(ctx, job.Source, job.ImagePath)
		if err == nil {
			job.Status = StatusRendered
			job.Strategy = s.Name()
			c.logger.Debug("diagram rendered", "block", job.BlockID, "strategy", s.Name(), "image", job.ImageFile)
			return nil
		}

		lastErr = err
		c.logger.Warn("render strategy failed", "block", job.BlockID, "strategy", s.Name(), "err", err)
	}

	job.Status = StatusFailed
	job.Err = fmt.Errorf("%w: %v", ErrExhausted, lastErr)
	return job.Err
}

// Close releases resources held by strategies (browser processes).
func (c *Chain) Close() error {
	var errs []error
	for _, s := range c.strategies {
		if closer, ok := s.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

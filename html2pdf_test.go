package llm2pdf

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRodConverterCanceledContext(t *testing.T) {
	c := newRodConverter(time.Second)
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ToPDF(ctx, "<html></html>", t.TempDir())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ToPDF() error = %v, want context.Canceled", err)
	}
}

func TestRodConverterCloseWithoutBrowser(t *testing.T) {
	c := newRodConverter(time.Second)
	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestFloatPtr(t *testing.T) {
	p := floatPtr(8.27)
	if p == nil || *p != 8.27 {
		t.Errorf("floatPtr(8.27) = %v", p)
	}
}

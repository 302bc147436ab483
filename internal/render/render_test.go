package render

import (
	"context"
	"errors"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// fakeStrategy renders by writing a marker byte, or fails with err.
type fakeStrategy struct {
	name  string
	err   error
	calls int
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Render(_ context.Context, _, outPath string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(outPath, []byte(f.name), 0o600)
}

func newJob(t *testing.T, source string) *Job {
	t.Helper()
	dir := t.TempDir()
	return &Job{
		BlockID:   0,
		Seq:       1,
		Source:    source,
		ImagePath: filepath.Join(dir, "mermaid_diagram_1.png"),
		ImageFile: "mermaid_diagram_1.png",
	}
}

func TestChainFirstStrategyWins(t *testing.T) {
	first := &fakeStrategy{name: "first"}
	second := &fakeStrategy{name: "second"}
	chain := NewChain(nil, first, second)

	job := newJob(t, "graph TD\n A-->B")
	if err := chain.Render(context.Background(), job); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if job.Status != StatusRendered {
		t.Errorf("Status = %v, want %v", job.Status, StatusRendered)
	}
	if job.Strategy != "first" {
		t.Errorf("Strategy = %q, want %q", job.Strategy, "first")
	}
	if second.calls != 0 {
		t.Errorf("second strategy called %d times, want 0", second.calls)
	}
}

func TestChainFallsThroughOnFailure(t *testing.T) {
	boom := errors.New("boom")
	first := &fakeStrategy{name: "first", err: boom}
	second := &fakeStrategy{name: "second"}
	chain := NewChain(nil, first, second)

	job := newJob(t, "graph TD\n A-->B")
	if err := chain.Render(context.Background(), job); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if job.Status != StatusRendered {
		t.Errorf("Status = %v, want %v", job.Status, StatusRendered)
	}
	if job.Strategy != "second" {
		t.Errorf("Strategy = %q, want %q", job.Strategy, "second")
	}
	if first.calls != 1 || second.calls != 1 {
		t.Errorf("calls = (%d, %d), want (1, 1)", first.calls, second.calls)
	}
}

func TestChainExhaustionMarksFailed(t *testing.T) {
	first := &fakeStrategy{name: "first", err: errors.New("a")}
	second := &fakeStrategy{name: "second", err: errors.New("b")}
	chain := NewChain(nil, first, second)

	job := newJob(t, "graph TD")
	err := chain.Render(context.Background(), job)
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("Render() error = %v, want ErrExhausted", err)
	}
	if job.Status != StatusFailed {
		t.Errorf("Status = %v, want %v", job.Status, StatusFailed)
	}
	if job.Err == nil {
		t.Error("job.Err not recorded")
	}
}

func TestChainEmpty(t *testing.T) {
	chain := NewChain(nil)
	job := newJob(t, "graph TD")
	if err := chain.Render(context.Background(), job); !errors.Is(err, ErrNoStrategies) {
		t.Errorf("Render() error = %v, want ErrNoStrategies", err)
	}
}

func TestChainContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	first := &fakeStrategy{name: "first"}
	chain := NewChain(nil, first)

	job := newJob(t, "graph TD")
	err := chain.Render(ctx, job)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Render() error = %v, want context.Canceled", err)
	}
	if job.Status != StatusFailed {
		t.Errorf("Status = %v, want %v", job.Status, StatusFailed)
	}
	if first.calls != 0 {
		t.Errorf("strategy called %d times after cancellation, want 0", first.calls)
	}
}

func TestAPIStrategy(t *testing.T) {
	t.Run("success persists body", func(t *testing.T) {
		var gotPath string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			_, _ = w.Write([]byte("png-bytes"))
		}))
		defer srv.Close()

		s := NewAPIStrategy(srv.URL, time.Second)
		out := filepath.Join(t.TempDir(), "d.png")
		if err := s.Render(context.Background(), "graph TD\n A-->B", out); err != nil {
			t.Fatalf("Render() error = %v", err)
		}

		want := "/img/" + EncodeSource("graph TD\n A-->B")
		if gotPath != want {
			t.Errorf("request path = %q, want %q", gotPath, want)
		}
		data, err := os.ReadFile(out)
		if err != nil || string(data) != "png-bytes" {
			t.Errorf("persisted body = %q, %v", data, err)
		}
	})

	t.Run("non-success status is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		s := NewAPIStrategy(srv.URL, time.Second)
		err := s.Render(context.Background(), "graph TD", filepath.Join(t.TempDir(), "d.png"))
		if !errors.Is(err, ErrAPIStatus) {
			t.Errorf("Render() error = %v, want ErrAPIStatus", err)
		}
	})

	t.Run("network error is an error", func(t *testing.T) {
		s := NewAPIStrategy("http://127.0.0.1:1", 200*time.Millisecond)
		err := s.Render(context.Background(), "graph TD", filepath.Join(t.TempDir(), "d.png"))
		if err == nil {
			t.Error("Render() succeeded against unreachable endpoint")
		}
	})
}

func TestEncodeSource(t *testing.T) {
	// URL-safe alphabet: no + or / in the path segment.
	encoded := EncodeSource("graph TD\n A?>B\xfb\xff")
	if strings.ContainsAny(encoded, "+/") {
		t.Errorf("EncodeSource() = %q contains non-URL-safe characters", encoded)
	}
}

func TestPlaceholderStrategy(t *testing.T) {
	t.Run("never fails for non-empty source under writable dir", func(t *testing.T) {
		s := NewPlaceholderStrategy()
		out := filepath.Join(t.TempDir(), "ph.png")

		src := "sequenceDiagram\n Alice->>John: Hello John\n John-->>Alice: Hi"
		if err := s.Render(context.Background(), src, out); err != nil {
			t.Fatalf("Render() error = %v", err)
		}

		f, err := os.Open(out)
		if err != nil {
			t.Fatalf("opening output: %v", err)
		}
		defer f.Close()

		img, err := png.Decode(f)
		if err != nil {
			t.Fatalf("output is not a valid PNG: %v", err)
		}
		b := img.Bounds()
		if b.Dx() != 1200 || b.Dy() != 800 {
			t.Errorf("image size = %dx%d, want 1200x800", b.Dx(), b.Dy())
		}
	})

	t.Run("unwritable path fails", func(t *testing.T) {
		s := NewPlaceholderStrategy()
		err := s.Render(context.Background(), "graph TD", filepath.Join(t.TempDir(), "missing", "ph.png"))
		if err == nil {
			t.Error("Render() succeeded writing into a missing directory")
		}
	})
}

func TestPlaceholderTitle(t *testing.T) {
	tests := []struct {
		source   string
		expected string
	}{
		{"graph TD\n A-->B", "Mermaid Graph Diagram"},
		{"sequenceDiagram\n A->>B: x", "Mermaid Sequencediagram Diagram"},
		{"   ", "Mermaid Diagram Diagram"},
	}
	for _, tt := range tests {
		if got := PlaceholderTitle(tt.source); got != tt.expected {
			t.Errorf("PlaceholderTitle(%q) = %q, want %q", tt.source, got, tt.expected)
		}
	}
}

func TestPreviewLines(t *testing.T) {
	t.Run("caps line count", func(t *testing.T) {
		src := strings.Repeat("node\n", 40)
		got := PreviewLines(src, 15, 90)
		if len(got) != 15 {
			t.Errorf("len = %d, want 15", len(got))
		}
	})

	t.Run("wraps long lines", func(t *testing.T) {
		src := strings.Repeat("x", 200)
		got := PreviewLines(src, 15, 90)
		if len(got) != 3 {
			t.Fatalf("len = %d, want 3", len(got))
		}
		if len(got[0]) != 90 || len(got[1]) != 90 || len(got[2]) != 20 {
			t.Errorf("wrap widths = %d,%d,%d", len(got[0]), len(got[1]), len(got[2]))
		}
	})

	t.Run("skips blank lines", func(t *testing.T) {
		got := PreviewLines("a\n\n  \nb", 15, 90)
		if len(got) != 2 || got[0] != "a" || got[1] != "b" {
			t.Errorf("got %v, want [a b]", got)
		}
	})
}

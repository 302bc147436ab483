package fileutil_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/avenal/go-llm2pdf/internal/fileutil"
)

func TestValidateExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		extension string
		wantErr   error
	}{
		{
			name:      "valid extension png",
			extension: "png",
			wantErr:   nil,
		},
		{
			name:      "valid extension html",
			extension: "html",
			wantErr:   nil,
		},
		{
			name:      "empty extension",
			extension: "",
			wantErr:   fileutil.ErrExtensionEmpty,
		},
		{
			name:      "forward slash path traversal",
			extension: "../etc/passwd",
			wantErr:   fileutil.ErrExtensionPathTraversal,
		},
		{
			name:      "backslash path traversal",
			extension: "..\\windows",
			wantErr:   fileutil.ErrExtensionPathTraversal,
		},
		{
			name:      "null byte",
			extension: "png\x00",
			wantErr:   fileutil.ErrExtensionPathTraversal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fileutil.ValidateExtension(tt.extension)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateExtension(%q) = %v, want %v", tt.extension, err, tt.wantErr)
			}
		})
	}
}

func TestWriteTempFile(t *testing.T) {
	t.Run("creates file with content in given dir", func(t *testing.T) {
		dir := t.TempDir()
		path, cleanup, err := fileutil.WriteTempFile(dir, "<html></html>", "html")
		if err != nil {
			t.Fatalf("WriteTempFile() error = %v", err)
		}
		defer cleanup()

		if filepath.Dir(path) != dir {
			t.Errorf("file created in %q, want %q", filepath.Dir(path), dir)
		}
		if !strings.HasSuffix(path, ".html") {
			t.Errorf("path %q missing extension", path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading temp file: %v", err)
		}
		if string(data) != "<html></html>" {
			t.Errorf("content = %q, want %q", data, "<html></html>")
		}
	})

	t.Run("cleanup removes the file", func(t *testing.T) {
		path, cleanup, err := fileutil.WriteTempFile(t.TempDir(), "x", "txt")
		if err != nil {
			t.Fatalf("WriteTempFile() error = %v", err)
		}
		cleanup()
		if fileutil.FileExists(path) {
			t.Errorf("file %q still exists after cleanup", path)
		}
	})

	t.Run("invalid extension rejected", func(t *testing.T) {
		_, _, err := fileutil.WriteTempFile(t.TempDir(), "x", "a/b")
		if !errors.Is(err, fileutil.ErrExtensionPathTraversal) {
			t.Errorf("error = %v, want ErrExtensionPathTraversal", err)
		}
	})
}

func TestEnsureWritableDir(t *testing.T) {
	t.Run("creates missing directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "a", "b")
		if err := fileutil.EnsureWritableDir(dir); err != nil {
			t.Fatalf("EnsureWritableDir() error = %v", err)
		}
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("directory %q not created", dir)
		}
	})

	t.Run("fails on unwritable parent", func(t *testing.T) {
		if os.Getuid() == 0 {
			t.Skip("root bypasses permission checks")
		}
		parent := t.TempDir()
		if err := os.Chmod(parent, 0o500); err != nil {
			t.Fatalf("chmod: %v", err)
		}
		defer func() { _ = os.Chmod(parent, 0o700) }()

		err := fileutil.EnsureWritableDir(filepath.Join(parent, "sub"))
		if !errors.Is(err, fileutil.ErrDirNotWritable) {
			t.Errorf("error = %v, want ErrDirNotWritable", err)
		}
	})
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	if !fileutil.FileExists(file) {
		t.Error("FileExists() = false for existing file")
	}
	if fileutil.FileExists(dir) {
		t.Error("FileExists() = true for directory")
	}
	if fileutil.FileExists(filepath.Join(dir, "missing")) {
		t.Error("FileExists() = true for missing path")
	}
}

func TestBaseNoExt(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"report.md", "report"},
		{"/tmp/dir/report.pdf", "report"},
		{"noext", "noext"},
		{"archive.tar.gz", "archive.tar"},
	}
	for _, tt := range tests {
		if got := fileutil.BaseNoExt(tt.path); got != tt.expected {
			t.Errorf("BaseNoExt(%q) = %q, want %q", tt.path, got, tt.expected)
		}
	}
}

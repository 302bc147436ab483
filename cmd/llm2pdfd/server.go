package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	llm2pdf "github.com/avenal/go-llm2pdf"
	"github.com/avenal/go-llm2pdf/internal/extract"
	"github.com/avenal/go-llm2pdf/internal/fileutil"
)

// maxUploadBytes caps incoming multipart bodies.
const maxUploadBytes = 16 << 20 // 16MB

// fileMaxAge is how long uploads and generated PDFs stay on disk.
const fileMaxAge = time.Hour

// allowedExtensions are the upload types the server accepts.
var allowedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
	".pdf":      true,
}

// convertFunc runs one document through the pipeline. Swappable in tests so
// handlers are exercised without a browser.
type convertFunc func(ctx context.Context, doc string) ([]byte, error)

// server handles uploads: save, convert, return the PDF as an attachment.
type server struct {
	convert   convertFunc
	logger    *log.Logger
	uploadDir string
	outputDir string
}

// newServer creates a server backed by the service pool, with fresh upload
// and output directories.
func newServer(pool *llm2pdf.ServicePool, logger *log.Logger) (*server, error) {
	uploadDir, err := os.MkdirTemp("", "llm2pdf-uploads-*")
	if err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	outputDir, err := os.MkdirTemp("", "llm2pdf-outputs-*")
	if err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	return &server{
		convert: func(ctx context.Context, doc string) ([]byte, error) {
			svc := pool.Acquire()
			defer pool.Release(svc)
			return svc.Convert(ctx, llm2pdf.Input{Document: doc})
		},
		logger:    logger,
		uploadDir: uploadDir,
		outputDir: outputDir,
	}, nil
}

// router builds the gin engine with all routes registered.
func (s *server) router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = maxUploadBytes

	r.GET("/", s.handleIndex)
	r.GET("/api/health", s.handleHealth)
	r.POST("/api/upload", s.handleUpload)
	return r
}

// indexHTML is the minimal upload page served at the root.
const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>llm2pdf</title>
<style>
body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; max-width: 40em; margin: 4em auto; color: #333; }
h1 { color: #2c3e50; border-bottom: 3px solid #3498db; padding-bottom: 0.3em; }
form { margin-top: 2em; }
</style>
</head>
<body>
<h1>Markdown to PDF Converter</h1>
<p>Upload a .md, .markdown, .txt, or .pdf file. Mermaid diagrams are repaired
and rendered; the result comes back as a PDF.</p>
<form action="/api/upload" method="post" enctype="multipart/form-data">
<input type="file" name="file" accept=".md,.markdown,.txt,.pdf" required>
<button type="submit">Convert</button>
</form>
</body>
</html>`

// handleIndex serves the upload page.
func (s *server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexHTML))
}

// handleHealth reports liveness.
func (s *server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleUpload accepts one multipart file, converts it, and streams the PDF
// back as an attachment. Stale temp files are swept on every request.
func (s *server) handleUpload(c *gin.Context) {
	s.cleanupOldFiles()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return
	}

	name := filepath.Base(fileHeader.Filename)
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExtensions[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file type, upload .md, .markdown, .txt, or .pdf"})
		return
	}

	uniqueID := uuid.New().String()
	uploadPath := filepath.Join(s.uploadDir, uniqueID+"_"+name)
	if err := c.SaveUploadedFile(fileHeader, uploadPath); err != nil {
		s.logger.Error("saving upload failed", "file", name, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save upload"})
		return
	}
	defer func() { _ = os.Remove(uploadPath) }()

	doc, err := loadDocument(uploadPath, ext)
	if err != nil {
		s.logger.Warn("unreadable upload", "file", name, "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read document content"})
		return
	}

	pdfBytes, err := s.convert(c.Request.Context(), doc)
	if err != nil {
		s.logger.Error("conversion failed", "file", name, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
		return
	}

	stem := fileutil.BaseNoExt(name)
	outputPath := filepath.Join(s.outputDir, uniqueID+"_"+stem+".pdf")
	if err := os.WriteFile(outputPath, pdfBytes, 0o600); err != nil {
		s.logger.Error("writing output failed", "file", name, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist PDF"})
		return
	}

	s.logger.Info("document converted", "file", name, "bytes", len(pdfBytes))
	c.FileAttachment(outputPath, stem+"_processed.pdf")
}

// loadDocument reads an uploaded file as markdown text. PDF uploads go
// through text-layer extraction.
func loadDocument(path, ext string) (string, error) {
	if ext == ".pdf" {
		return extract.Text(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// cleanupOldFiles removes uploads and outputs older than fileMaxAge.
func (s *server) cleanupOldFiles() {
	cutoff := time.Now().Add(-fileMaxAge)

	for _, dir := range []string{s.uploadDir, s.outputDir} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			info, err := e.Info()
			if err != nil {
				continue
			}
			if info.ModTime().Before(cutoff) {
				_ = os.Remove(filepath.Join(dir, e.Name()))
			}
		}
	}
}

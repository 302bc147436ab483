package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	llm2pdf "github.com/avenal/go-llm2pdf"
	"github.com/avenal/go-llm2pdf/internal/extract"
	"github.com/avenal/go-llm2pdf/internal/fileutil"
)

// CLI errors.
var (
	ErrNoInput          = errors.New("no input file or directory specified")
	ErrBothInputs       = errors.New("cannot specify both an input file and a directory")
	ErrUnsupportedInput = errors.New("unsupported input file type")
	ErrInvalidDuration  = errors.New("invalid duration value")
	ErrReadInput        = errors.New("failed to read input")
	ErrWritePDF         = errors.New("failed to write PDF")
	ErrNoFiles          = errors.New("no convertible files found in directory")
	ErrBatchFailed      = errors.New("some files failed to convert")
)

// convertibleExtensions are the input types the CLI accepts. PDF inputs are
// re-ingested through their text layer.
var convertibleExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
	".pdf":      true,
}

// run dispatches to single-file or directory mode.
func run(ctx context.Context, flags *cliFlags, args []string) error {
	cfg, err := loadConfig(flags.config)
	if err != nil {
		return err
	}
	mergeConfig(flags, cfg)

	hasInput := len(args) > 0
	hasDir := flags.directory != ""
	switch {
	case hasInput && hasDir:
		return ErrBothInputs
	case !hasInput && !hasDir:
		printUsage(os.Stderr)
		return ErrNoInput
	}

	opts, err := buildOptions(flags)
	if err != nil {
		return err
	}

	if hasDir {
		return runBatch(ctx, flags, opts)
	}
	return runSingle(ctx, flags, args[0], opts)
}

// buildOptions translates flags into service options.
func buildOptions(flags *cliFlags) ([]llm2pdf.Option, error) {
	var opts []llm2pdf.Option

	if flags.timeout != "" {
		d, err := time.ParseDuration(flags.timeout)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%w: --timeout %q", ErrInvalidDuration, flags.timeout)
		}
		opts = append(opts, llm2pdf.WithTimeout(d))
	}
	if flags.renderWait != "" {
		d, err := time.ParseDuration(flags.renderWait)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%w: --render-wait %q", ErrInvalidDuration, flags.renderWait)
		}
		opts = append(opts, llm2pdf.WithRenderWait(d))
	}
	if flags.renderEndpoint != "" {
		opts = append(opts, llm2pdf.WithRenderEndpoint(flags.renderEndpoint))
	}
	if flags.keepImages {
		opts = append(opts, llm2pdf.WithKeepImages())
	}
	if flags.verbose {
		logger := log.New(os.Stderr)
		logger.SetLevel(log.DebugLevel)
		opts = append(opts, llm2pdf.WithLogger(logger))
	}

	return opts, nil
}

// runSingle converts one input file.
func runSingle(ctx context.Context, flags *cliFlags, input string, opts []llm2pdf.Option) error {
	svc := llm2pdf.New(opts...)
	defer svc.Close()

	outPath := flags.output
	if outPath == "" {
		outPath = replaceExt(input, ".pdf")
	}

	if err := convertFile(ctx, svc, input, outPath); err != nil {
		return err
	}
	fmt.Printf("PDF created: %s\n", outPath)
	return nil
}

// runBatch converts every convertible file in the directory, in parallel
// across a service pool.
func runBatch(ctx context.Context, flags *cliFlags, opts []llm2pdf.Option) error {
	files, err := discoverFiles(flags.directory)
	if err != nil {
		return err
	}
	fmt.Printf("Found %d file(s) to process\n", len(files))

	outDir := flags.output
	if outDir != "" {
		if err := fileutil.EnsureWritableDir(outDir); err != nil {
			return fmt.Errorf("%w: %v", ErrWritePDF, err)
		}
	}

	poolSize := llm2pdf.ResolvePoolSize(flags.workers)
	if flags.verbose {
		fmt.Fprintf(os.Stderr, "pool size: %d\n", poolSize)
	}
	pool := llm2pdf.NewServicePool(poolSize, opts...)
	defer pool.Close()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed int
	)
	for _, input := range files {
		outPath := replaceExt(input, ".pdf")
		if outDir != "" {
			outPath = filepath.Join(outDir, fileutil.BaseNoExt(input)+".pdf")
		}

		wg.Add(1)
		go func(input, outPath string) {
			defer wg.Done()

			svc := pool.Acquire()
			defer pool.Release(svc)

			if err := convertFile(ctx, svc, input, outPath); err != nil {
				fmt.Fprintf(os.Stderr, "failed: %s: %v\n", input, err)
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			fmt.Printf("PDF created: %s\n", outPath)
		}(input, outPath)
	}
	wg.Wait()

	fmt.Printf("Processed %d/%d files successfully\n", len(files)-failed, len(files))
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrBatchFailed, failed, len(files))
	}
	return nil
}

// convertFile reads the input, runs the pipeline, and writes the PDF.
func convertFile(ctx context.Context, svc *llm2pdf.Service, input, outPath string) error {
	doc, err := readDocument(input)
	if err != nil {
		return err
	}

	pdfBytes, err := svc.Convert(ctx, llm2pdf.Input{Document: doc})
	if err != nil {
		return fmt.Errorf("converting %s: %w", input, err)
	}

	if err := os.WriteFile(outPath, pdfBytes, 0o600); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWritePDF, outPath, err)
	}
	return nil
}

// readDocument loads an input file as markdown text. PDF inputs go through
// text-layer extraction.
func readDocument(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !convertibleExtensions[ext] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedInput, path)
	}

	if ext == ".pdf" {
		doc, err := extract.Text(path)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrReadInput, path, err)
		}
		return doc, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrReadInput, path, err)
	}
	return string(data), nil
}

// discoverFiles lists convertible files directly under dir, sorted by name.
func discoverFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrReadInput, dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if convertibleExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFiles, dir)
	}
	sort.Strings(files)
	return files, nil
}

// replaceExt swaps the file extension of path for newExt.
func replaceExt(path, newExt string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + newExt
}

package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// cliFlags holds all flags for the llm2pdf CLI.
type cliFlags struct {
	output         string
	directory      string
	config         string
	workers        int
	timeout        string
	renderEndpoint string
	renderWait     string
	keepImages     bool
	verbose        bool
	version        bool
}

// parseFlags parses command-line flags and returns positional args.
func parseFlags(args []string) (*cliFlags, []string, error) {
	fs := flag.NewFlagSet("llm2pdf", flag.ContinueOnError)
	f := &cliFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output PDF file or directory")
	fs.StringVarP(&f.directory, "directory", "d", "", "process all convertible files in directory")
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers for directory mode (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "PDF generation timeout (e.g., 30s, 2m)")
	fs.StringVar(&f.renderEndpoint, "render-endpoint", "", "hosted diagram rendering service URL")
	fs.StringVar(&f.renderWait, "render-wait", "", "max wait per diagram in the browser (e.g., 10s)")
	fs.BoolVar(&f.keepImages, "keep-images", false, "keep rendered diagram images on disk")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "verbose output")
	fs.BoolVar(&f.version, "version", false, "print version and exit")

	fs.Usage = func() { printUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}

func printUsage(w *os.File) {
	const usage = `llm2pdf converts machine-generated markdown (and text-layer PDFs) to PDF,
repairing and rendering the mermaid diagrams such documents contain.

Usage:
  llm2pdf [flags] <input>
  llm2pdf -d <directory> [flags]

Inputs: .md, .markdown, .txt, .pdf (text layer re-ingested)

Flags:
  -o, --output string            output PDF file or directory
  -d, --directory string         process all convertible files in directory
  -c, --config string            config file name or path
  -w, --workers int              parallel workers for directory mode (0 = auto)
  -t, --timeout string           PDF generation timeout (e.g., 30s, 2m)
      --render-endpoint string   hosted diagram rendering service URL
      --render-wait string       max wait per diagram in the browser
      --keep-images              keep rendered diagram images on disk
  -v, --verbose                  verbose output
      --version                  print version and exit

Examples:
  llm2pdf research_output.md
  llm2pdf research_output.md -o final_report.pdf
  llm2pdf -d ./research_outputs -o ./pdfs
  llm2pdf session.pdf -o cleaned.pdf
`
	_, _ = w.WriteString(usage)
}

package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	llm2pdf "github.com/avenal/go-llm2pdf"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	var (
		addr    string
		workers int
		verbose bool
	)
	fs := flag.NewFlagSet("llm2pdfd", flag.ContinueOnError)
	fs.StringVar(&addr, "addr", "", "listen address (default :5000, or PORT env)")
	fs.IntVarP(&workers, "workers", "w", 0, "parallel conversion workers (0 = auto)")
	fs.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	if err := fs.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := log.New(os.Stderr)
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	if addr == "" {
		if port := os.Getenv("PORT"); port != "" {
			addr = ":" + port
		} else {
			addr = ":5000"
		}
	}

	poolSize := llm2pdf.ResolvePoolSize(workers)
	pool := llm2pdf.NewServicePool(poolSize, llm2pdf.WithLogger(logger))
	defer pool.Close()

	srv, err := newServer(pool, logger)
	if err != nil {
		logger.Error("server setup failed", "err", err)
		os.Exit(1)
	}

	logger.Info("starting server", "addr", addr, "version", Version, "pool", poolSize)
	if err := srv.router().Run(addr); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

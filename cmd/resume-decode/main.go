package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/resume-parser/constants"
	"github.com/joseph-ayodele/resume-parser/internal/common"
	"github.com/joseph-ayodele/resume-parser/internal/ingest"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		in       = flag.String("in", "", "exported dataset: JSON array of {id, api_request} (required)")
		out      = flag.String("out", "output_files", "directory receiving file_<id>.<kind>")
		writeAll = flag.Bool("write-all", false, "overwrite files that already exist")
		writeNew = flag.Bool("write-new", false, "write only files that do not exist yet")
	)
	flag.Parse()

	if *in == "" {
		printError("Error: --in is required\n")
		os.Exit(2)
	}
	mode, ok := constants.ParseRunMode(*writeAll, *writeNew)
	if !ok {
		printError("Error: --write-all and --write-new are mutually exclusive\n")
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	logger, closeLog, err := common.NewLogger(cfg.Log, time.Now())
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = closeLog() }()
	slog.SetDefault(logger)

	stats, err := ingest.NewDecoder(*out, mode, logger).DecodeFile(context.Background(), *in)
	if err != nil {
		logger.Error("decoding failed", "in", *in, "error", err)
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Decoding completed!\n")
	fmt.Printf("- Records: %d\n", stats.Records)
	fmt.Printf("- Written: %d\n", stats.Written)
	fmt.Printf("- Overwritten: %d\n", stats.Overwritten)
	fmt.Printf("- Skipped: %d\n", stats.Skipped)
	fmt.Printf("- Failed: %d\n", stats.Failed)
}

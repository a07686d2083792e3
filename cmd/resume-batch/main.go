package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joseph-ayodele/resume-parser/constants"
	"github.com/joseph-ayodele/resume-parser/internal/common"
	"github.com/joseph-ayodele/resume-parser/internal/core/extract"
	"github.com/joseph-ayodele/resume-parser/internal/core/fallback"
	"github.com/joseph-ayodele/resume-parser/internal/core/ocr"
	"github.com/joseph-ayodele/resume-parser/internal/core/output"
	"github.com/joseph-ayodele/resume-parser/internal/core/pipeline"
	"github.com/joseph-ayodele/resume-parser/internal/entity"
	"github.com/joseph-ayodele/resume-parser/internal/export"
	"github.com/joseph-ayodele/resume-parser/internal/ingest"
	"github.com/joseph-ayodele/resume-parser/internal/llm"
	"github.com/joseph-ayodele/resume-parser/internal/llm/openai"
	repo "github.com/joseph-ayodele/resume-parser/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir        = flag.String("dir", "input_files", "directory holding the resumes to process")
		out        = flag.String("out", "extracted_json", "directory receiving <name>_extracted_info.json files")
		writeAll   = flag.Bool("write-all", false, "overwrite existing output files")
		writeNew   = flag.Bool("write-new", false, "skip documents whose output already exists")
		process    = flag.String("process", "", "process a single file (name with extension, inside -dir)")
		configPath = flag.String("config", "", "optional YAML config file")
		report     = flag.String("report", "", "optional XLSX batch report path")
		ledger     = flag.String("ledger", "", "optional run ledger DSN (sqlite://path, sqlite://:memory:, postgres://...)")
		watch      = flag.Bool("watch", false, "keep running and process files added to -dir")
		logLevel   = flag.String("log-level", "", "debug | info | warn | error")
		logFormat  = flag.String("log-format", "", "json | text")
	)
	flag.Parse()

	mode, ok := constants.ParseRunMode(*writeAll, *writeNew)
	if !ok {
		printError("Error: --write-all and --write-new are mutually exclusive\n")
		flag.Usage()
		os.Exit(2)
	}
	if *watch && *process != "" {
		printError("Error: --watch cannot be combined with --process\n")
		os.Exit(2)
	}

	// env first, then YAML, then explicit flags
	cfg := common.LoadConfig()
	if *configPath != "" {
		if err := cfg.LoadFile(*configPath); err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
	}
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["dir"] || cfg.Paths.InputDir == "" {
		cfg.Paths.InputDir = *dir
	}
	if set["out"] || cfg.Paths.OutputDir == "" {
		cfg.Paths.OutputDir = *out
	}
	if *ledger != "" {
		cfg.Ledger.DSN = *ledger
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}

	logger, closeLog, err := common.NewLogger(cfg.Log, time.Now())
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = closeLog() }()
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	prompt, err := llm.LoadPrompt(cfg.LLM.SystemPrompt, cfg.LLM.Skeleton)
	if err != nil {
		logger.Error("failed to load prompt", "error", err)
		os.Exit(1)
	}

	// Extraction: native text, then rasterise / harvest media with optional OCR.
	engine := ocr.NewEngine(ocr.Config{
		Pdftoppm:         cfg.OCR.Pdftoppm,
		Tesseract:        cfg.OCR.Tesseract,
		TesseractLang:    cfg.OCR.Lang,
		TessdataDir:      cfg.OCR.TessdataDir,
		DPI:              cfg.OCR.DPI,
		DocConverter:     cfg.OCR.DocConverter,
		ArtifactCacheDir: cfg.OCR.ArtifactCacheDir,
	}, nil, logger)
	textExtractor := extract.NewExtractor(engine, logger)
	fallbackExtractor := fallback.NewExtractor(
		fallback.Config{OCREnabled: cfg.OCR.Enabled},
		engine, engine, textExtractor, extract.PDFPageCount, logger,
	)

	var clientOpts []openai.Option
	if cfg.LLM.ValidateShape {
		checker, err := llm.NewShapeChecker(prompt.Skeleton, logger)
		if err != nil {
			logger.Error("failed to build shape checker", "error", err)
			os.Exit(1)
		}
		clientOpts = append(clientOpts, openai.WithShapeChecker(checker))
	}
	client := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger, clientOpts...)
	logger.Info("OpenAI client initialized", "model", cfg.LLM.Model)

	gate := output.NewGate(cfg.Paths.OutputDir, mode, logger)
	if err := gate.Prepare(); err != nil {
		logger.Error("failed to prepare output directory", "error", err)
		os.Exit(1)
	}

	// The ledger is optional; without it the batch runs the same.
	var jobs pipeline.JobRecorder
	if cfg.Ledger.DSN != "" {
		db, err := repo.Open(ctx, repo.Config{
			DSN:             cfg.Ledger.DSN,
			MaxConns:        cfg.Ledger.MaxConns,
			MinConns:        cfg.Ledger.MinConns,
			MaxConnLifetime: cfg.Ledger.MaxConnLifetime,
			DialTimeout:     cfg.Ledger.DialTimeout,
		}, logger)
		if err != nil {
			logger.Warn("run ledger unavailable, continuing without it", "error", err)
		} else {
			defer db.Close()
			jobs = repo.NewExtractJobRepository(db, logger)
		}
	}

	processor := pipeline.NewProcessor(logger, textExtractor, fallbackExtractor, client, gate, prompt, jobs)

	var docs []entity.Document
	if *process != "" {
		doc, err := ingest.Single(cfg.Paths.InputDir, *process)
		if err != nil {
			logger.Error("cannot process file", "file", *process, "error", err)
			printError("Error: %v\n", err)
			os.Exit(1)
		}
		docs = []entity.Document{doc}
	} else {
		docs, _, err = ingest.Discover(cfg.Paths.InputDir, logger)
		if err != nil {
			logger.Error("failed to list input directory", "dir", cfg.Paths.InputDir, "error", err)
			os.Exit(1)
		}
	}

	summary, outcomes := processor.RunBatch(ctx, docs)

	if *watch {
		summary, outcomes = watchLoop(ctx, logger, processor, cfg.Paths.InputDir, summary, outcomes)
	}

	if *report != "" {
		if err := export.NewService(logger).WriteBatchReport(*report, processor.RunID(), outcomes, summary); err != nil {
			logger.Warn("failed to write batch report", "path", *report, "error", err)
		}
	}

	fmt.Printf("Batch processing complete!\n")
	for _, k := range constants.Kinds {
		fmt.Printf("- %s files processed: %d\n", k, summary.Written[k])
	}
	fmt.Printf("- Skipped: %d\n", summary.Skipped)
	fmt.Printf("- Failures: %d\n", summary.Failed)
	if *report != "" {
		fmt.Printf("- Report: %s\n", *report)
	}
}

// watchLoop processes files as they land in dir until ctx is cancelled, one at a time.
func watchLoop(
	ctx context.Context,
	logger *slog.Logger,
	processor *pipeline.Processor,
	dir string,
	summary entity.Summary,
	outcomes []entity.Outcome,
) (entity.Summary, []entity.Outcome) {
	docs, errs, err := ingest.Watch(ctx, ingest.WatchConfig{Root: dir}, logger)
	if err != nil {
		logger.Error("failed to start watcher", "dir", dir, "error", err)
		return summary, outcomes
	}
	ctx = common.WithRunID(ctx, processor.RunID().String())
	for {
		select {
		case doc, ok := <-docs:
			if !ok {
				return summary, outcomes
			}
			o := processor.ProcessDocument(ctx, doc)
			summary.Add(o)
			outcomes = append(outcomes, o)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("watcher reported an error", "error", err)
			}
		case <-ctx.Done():
			logger.Info("watch stopped")
			return summary, outcomes
		}
	}
}

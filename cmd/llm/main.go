package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joseph-ayodele/resume-parser/internal/common"
	"github.com/joseph-ayodele/resume-parser/internal/core/extract"
	"github.com/joseph-ayodele/resume-parser/internal/core/fallback"
	"github.com/joseph-ayodele/resume-parser/internal/core/ocr"
	"github.com/joseph-ayodele/resume-parser/internal/entity"
	"github.com/joseph-ayodele/resume-parser/internal/llm"
	"github.com/joseph-ayodele/resume-parser/internal/llm/openai"
)

// runllm sends the same resume to the model several times without writing output,
// to compare answers across calls.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		logger.Error("usage: runllm <resume-file> [times]")
		os.Exit(2)
	}
	doc, err := entity.NewDocument(os.Args[1])
	if err != nil {
		logger.Error("unsupported document", "arg", os.Args[1], "error", err)
		os.Exit(2)
	}
	times := 3
	if len(os.Args) >= 3 {
		if n, err := strconv.Atoi(os.Args[2]); err == nil && n > 0 {
			times = n
		}
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	prompt, err := llm.LoadPrompt(cfg.LLM.SystemPrompt, cfg.LLM.Skeleton)
	if err != nil {
		logger.Error("load prompt", "error", err)
		os.Exit(1)
	}
	checker, err := llm.NewShapeChecker(prompt.Skeleton, logger)
	if err != nil {
		logger.Error("shape checker", "error", err)
		os.Exit(1)
	}

	// --- Wire extraction + client same as the batch
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
	fallbackExtractor := fallback.NewExtractor(fallback.Config{OCREnabled: cfg.OCR.Enabled},
		engine, engine, textExtractor, extract.PDFPageCount, logger)

	client := openai.NewClient(openai.Config{
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: cfg.LLM.Temperature,
		Timeout:     45 * time.Second,
	}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	res := textExtractor.Extract(ctx, doc)
	if res.Status == entity.ExtractionEmpty {
		res = fallbackExtractor.Extract(ctx, doc)
	}
	cancel()
	if res.Status != entity.ExtractionText {
		logger.Error("no content to send", "doc", doc.Name, "status", res.Status.String(), "error", res.Err)
		os.Exit(1)
	}
	content := llm.ContentFromExtraction(res)

	// --- Loop N times on the SAME document
	for i := 1; i <= times; i++ {
		runCtx, cancelRun := context.WithTimeout(context.Background(), 2*time.Minute)
		start := time.Now()
		logger.Info("llm.run.start", "iter", i, "doc", doc.Name, "strategy", res.Strategy)

		answer, err := client.Request(runCtx, prompt, content)
		cancelRun()

		if err != nil {
			logger.Error("llm.run.error", "iter", i, "code", common.Classify(err), "err", err)
		} else {
			logger.Info("llm.run.ok",
				"iter", i,
				"answer_bytes", len(answer),
				"shape_ok", checker.Check(doc.Name, answer),
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
		}

		time.Sleep(750 * time.Millisecond)
	}

	logger.Info("done", "doc", doc.Name, "times", times)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/resume-parser/internal/common"
	"github.com/joseph-ayodele/resume-parser/internal/core/extract"
	"github.com/joseph-ayodele/resume-parser/internal/core/fallback"
	"github.com/joseph-ayodele/resume-parser/internal/core/ocr"
	"github.com/joseph-ayodele/resume-parser/internal/entity"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	useOCR := flag.Bool("ocr", false, "run tesseract on the composite when native text is empty")
	printText := flag.Bool("print", false, "print the extracted text")
	flag.Parse()

	if flag.NArg() != 1 {
		logger.Error("usage", "cmd", "runocr [-ocr] [-print] <resume-file>")
		os.Exit(2)
	}
	doc, err := entity.NewDocument(flag.Arg(0))
	if err != nil {
		logger.Error("unsupported document", "arg", flag.Arg(0), "error", err)
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

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
		fallback.Config{OCREnabled: *useOCR || cfg.OCR.Enabled},
		engine, engine, textExtractor, extract.PDFPageCount, logger,
	)

	start := time.Now()
	res := textExtractor.Extract(ctx, doc)
	if res.Status == entity.ExtractionEmpty {
		logger.Info("no native text, trying fallback", "doc", doc.Name)
		res = fallbackExtractor.Extract(ctx, doc)
	}
	dur := time.Since(start)

	if res.Status == entity.ExtractionError {
		logger.Error("extraction failed",
			"doc", doc.Name, "code", common.Classify(res.Err), "error", res.Err, "duration_ms", dur.Milliseconds())
		os.Exit(1)
	}

	logger.Info("extraction OK",
		"doc", doc.Name,
		"status", res.Status.String(),
		"strategy", res.Strategy,
		"pages", res.Pages,
		"text_bytes", len(res.Text),
		"image_bytes", len(res.Image),
		"duration_ms", dur.Milliseconds(),
	)
	if *printText && res.Text != "" {
		fmt.Println(res.Text)
	}
}

package fallback

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/resume-parser/constants"
	"github.com/joseph-ayodele/resume-parser/internal/common"
	"github.com/joseph-ayodele/resume-parser/internal/encoder"
	"github.com/joseph-ayodele/resume-parser/internal/entity"
)

// Rasterizer renders a single 1-based PDF page.
type Rasterizer interface {
	RasterizePage(ctx context.Context, path string, page int) (image.Image, error)
}

// OCR reads text off an image file.
type OCR interface {
	OCRFile(ctx context.Context, path string) (string, error)
}

// ArchiveResolver returns the office archive to harvest for a docx/doc document.
type ArchiveResolver interface {
	ArchivePath(ctx context.Context, doc entity.Document) (string, error)
}

// PageCounter returns the page count of a PDF.
type PageCounter func(path string) (int, error)

type Config struct {
	OCREnabled  bool
	JPEGQuality int // default 90
}

// Extractor produces request content for documents whose native text is empty.
type Extractor struct {
	cfg       Config
	raster    Rasterizer
	ocr       OCR
	archives  ArchiveResolver
	pageCount PageCounter
	logger    *slog.Logger
}

func NewExtractor(cfg Config, raster Rasterizer, ocr OCR, archives ArchiveResolver, pageCount PageCounter, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.JPEGQuality <= 0 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = 90
	}
	return &Extractor{cfg: cfg, raster: raster, ocr: ocr, archives: archives, pageCount: pageCount, logger: logger}
}

// composite is the image handed on to OCR or the vision call.
type composite struct {
	data  []byte
	mime  string
	path  string // on-disk copy, "" if none
	pages int
}

// Extract derives the composite image for doc and turns it into request content:
// OCR text when local OCR is enabled and finds text, the image itself otherwise.
func (f *Extractor) Extract(ctx context.Context, doc entity.Document) entity.Extraction {
	c, err := f.composite(ctx, doc)
	if err != nil {
		return entity.ErrorResult(err, constants.StrategyVisionFallback)
	}

	if f.cfg.OCREnabled && f.ocr != nil && c.path != "" {
		txt, err := f.ocr.OCRFile(ctx, c.path)
		switch {
		case err != nil:
			f.logger.Warn("fallback.ocr.failed", "doc", doc.Name, "error", err)
		case strings.TrimSpace(txt) == "":
			f.logger.Info("fallback.ocr.empty", "doc", doc.Name)
		default:
			return entity.TextResult(txt, constants.StrategyOCRComposite, c.pages)
		}
	}
	return entity.ImageResult(c.data, c.mime, constants.StrategyVisionFallback, c.pages)
}

func (f *Extractor) composite(ctx context.Context, doc entity.Document) (composite, error) {
	if doc.Kind == constants.IMAGE {
		b, err := os.ReadFile(doc.Path)
		if err != nil {
			return composite{}, common.NewAppError(common.CodeExtractionFailed, "read image "+doc.Name, err)
		}
		return composite{data: b, mime: encoder.MIMEByExt(filepath.Ext(doc.Path)), path: doc.Path, pages: 1}, nil
	}

	// The cached composite is reused as-is, even if the source has changed since.
	cached := doc.CompositePath()
	if b, err := os.ReadFile(cached); err == nil {
		f.logger.Info("fallback.composite.cached", "doc", doc.Name, "path", cached)
		return composite{data: b, mime: "image/jpeg", path: cached}, nil
	}

	var (
		imgs []image.Image
		err  error
	)
	switch {
	case doc.Kind == constants.PDF:
		imgs, err = f.pdfPages(ctx, doc)
	case doc.Kind.IsArchiveKind():
		imgs, err = f.archiveMedia(ctx, doc)
	default:
		err = fmt.Errorf("%w: %s", common.ErrUnsupported, doc.Kind)
	}
	if err != nil {
		return composite{}, common.NewAppError(common.CodeExtractionFailed, "fallback "+doc.Name, err)
	}
	if len(imgs) == 0 {
		return composite{}, common.NewAppError(common.CodeFallbackExhausted, doc.Name, common.ErrNoImages)
	}

	canvas := Composite(imgs)
	data, err := EncodeJPEG(canvas, f.cfg.JPEGQuality)
	if err != nil {
		return composite{}, common.NewAppError(common.CodeExtractionFailed, "encode composite "+doc.Name, err)
	}
	f.logger.Info("fallback.composite.built",
		"doc", doc.Name,
		"images", len(imgs),
		"width", canvas.Bounds().Dx(),
		"height", canvas.Bounds().Dy(),
	)

	c := composite{data: data, mime: "image/jpeg", path: cached, pages: len(imgs)}
	if err := os.WriteFile(cached, data, 0o644); err != nil {
		f.logger.Warn("fallback.composite.cache_write_failed", "doc", doc.Name, "path", cached, "error", err)
		c.path = ""
	}
	return c, nil
}

// pdfPages rasterises each page; a page that fails is logged and skipped.
func (f *Extractor) pdfPages(ctx context.Context, doc entity.Document) ([]image.Image, error) {
	n, err := f.pageCount(doc.Path)
	if err != nil {
		return nil, err
	}
	imgs := make([]image.Image, 0, n)
	for page := 1; page <= n; page++ {
		img, err := f.raster.RasterizePage(ctx, doc.Path, page)
		if err != nil {
			f.logger.Error("fallback.page.failed", "doc", doc.Name, "page", page, "error", err)
			continue
		}
		imgs = append(imgs, img)
	}
	return imgs, nil
}

func (f *Extractor) archiveMedia(ctx context.Context, doc entity.Document) ([]image.Image, error) {
	path, err := f.archives.ArchivePath(ctx, doc)
	if err != nil {
		return nil, err
	}
	return HarvestMedia(path, f.logger)
}

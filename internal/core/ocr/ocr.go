package ocr

import (
	"log/slog"

	"github.com/joseph-ayodele/resume-parser/constants"
)

type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	TessdataDir   string
	DPI           int // rasterization DPI for PDF pages, default 300

	DocConverter     string // "soffice" | "libreoffice" | "" (disabled)
	ArtifactCacheDir string
}

// Engine wraps the external tools used when a document has no usable native text:
// page rasterisation, tesseract OCR and legacy .doc conversion.
type Engine struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewEngine(cfg Config, runner Runner, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = constants.RasterDPI
	}
	if cfg.ArtifactCacheDir == "" {
		cfg.ArtifactCacheDir = "./tmp"
	}
	return &Engine{cfg: cfg, runner: runner, logger: logger}
}

func (e *Engine) Config() Config { return e.cfg }

package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoConverter is returned when a legacy .doc needs conversion but none is configured.
var ErrNoConverter = errors.New("doc conversion not configured: set ocr.doc_converter to soffice | libreoffice")

// ConvertDocToDocx converts a legacy binary .doc into .docx inside the artifact cache dir.
// The converted file is persisted at {cacheDir}/{base}.docx and reused when present.
func (e *Engine) ConvertDocToDocx(ctx context.Context, in string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	cached := filepath.Join(e.cfg.ArtifactCacheDir, base+".docx")
	if st, err := os.Stat(cached); err == nil && !st.IsDir() {
		e.logger.Debug("using cached doc->docx", "cache", cached)
		return cached, nil
	}

	switch e.cfg.DocConverter {
	case "soffice", "libreoffice":
	case "":
		return "", ErrNoConverter
	default:
		return "", fmt.Errorf("unknown doc converter %q: use soffice | libreoffice", e.cfg.DocConverter)
	}

	if err := os.MkdirAll(e.cfg.ArtifactCacheDir, 0o755); err != nil {
		return "", err
	}

	// soffice --headless --convert-to docx --outdir <cache> <in.doc>
	if _, err := e.run(ctx, e.cfg.DocConverter,
		"--headless", "--convert-to", "docx", "--outdir", e.cfg.ArtifactCacheDir, in); err != nil {
		return "", fmt.Errorf("convert %s: %w", filepath.Base(in), err)
	}

	if _, err := os.Stat(cached); err != nil {
		return "", fmt.Errorf("doc conversion produced no output: %v", err)
	}
	e.logger.Debug("cached doc->docx", "cache", cached)
	return cached, nil
}

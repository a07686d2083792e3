package ocr

import "context"

// OCRFile runs tesseract on an image file and returns normalised text.
func (e *Engine) OCRFile(ctx context.Context, path string) (string, error) {
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	// tesseract <file> stdout -l <lang>
	out, err := e.run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", err
	}
	return Normalize(string(out)), nil
}

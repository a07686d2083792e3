package fallback

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const mediaPrefix = "word/media/"

// HarvestMedia decodes every embedded image of an office archive in archive order.
// Entries that are not decodable rasters (EMF, WMF, ...) are logged and skipped.
func HarvestMedia(path string, logger *slog.Logger) ([]image.Image, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	defer func() { _ = zr.Close() }()

	var imgs []image.Image
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, mediaPrefix) || f.FileInfo().IsDir() {
			continue
		}
		img, err := decodeEntry(f)
		if err != nil {
			logger.Warn("fallback.media.skip", "entry", f.Name, "error", err)
			continue
		}
		imgs = append(imgs, img)
	}
	return imgs, nil
}

func decodeEntry(f *zip.File) (image.Image, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(b))
	return img, err
}

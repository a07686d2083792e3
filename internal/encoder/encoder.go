// Package encoder turns binary payloads into transport-safe text and back.
package encoder

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/resume-parser/constants"
)

// Base64 encodes b with the standard alphabet.
func Base64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// DataURL renders b as a data: URL of the given MIME type.
func DataURL(b []byte, mimeType string) string {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return "data:" + mimeType + ";base64," + Base64(b)
}

// MIMEByExt resolves a MIME type from a file extension, with jpg/png fallbacks.
func MIMEByExt(ext string) string {
	ext = constants.NormalizeExt(ext)
	if mt := mime.TypeByExtension("." + ext); mt != "" {
		return mt
	}
	switch ext {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}

// FileDataURL reads path and returns its data URL and MIME type.
func FileDataURL(path string) (string, string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	mt := MIMEByExt(filepath.Ext(path))
	return DataURL(b, mt), mt, nil
}

// DecodeBase64 strictly decodes standard base64, ignoring surrounding whitespace.
func DecodeBase64(s string) ([]byte, error) {
	b, err := base64.StdEncoding.Strict().DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	return b, nil
}

var (
	magicPDF  = []byte("%PDF")
	magicJPG  = []byte{0xFF, 0xD8}
	magicZIP  = []byte{0x50, 0x4B, 0x03, 0x04}
	magicPNG  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	magicOLE2 = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// SniffKind guesses a file extension (no dot) from leading magic bytes.
// Anything unrecognised is "bin".
func SniffKind(b []byte) string {
	switch {
	case bytes.HasPrefix(b, magicPDF):
		return "pdf"
	case bytes.HasPrefix(b, magicJPG):
		return "jpg"
	case bytes.HasPrefix(b, magicZIP):
		return "docx"
	case bytes.HasPrefix(b, magicPNG):
		return "png"
	case bytes.HasPrefix(b, magicOLE2):
		return "doc"
	default:
		return "bin"
	}
}

// IsZip reports whether b starts like a zip archive.
func IsZip(b []byte) bool {
	return bytes.HasPrefix(b, magicZIP)
}

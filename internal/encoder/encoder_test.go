package encoder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataURL(t *testing.T) {
	assert.Equal(t, "data:image/jpeg;base64,AQID", DataURL([]byte{1, 2, 3}, "image/jpeg"))
	assert.Equal(t, "data:application/octet-stream;base64,", DataURL(nil, ""))
}

func TestFileDataURL(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "scan.JPG")
	require.NoError(t, os.WriteFile(p, []byte("abc"), 0o644))

	u, mt, err := FileDataURL(p)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mt)
	assert.Equal(t, "data:image/jpeg;base64,YWJj", u)

	_, _, err = FileDataURL(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
}

func TestDecodeBase64(t *testing.T) {
	b, err := DecodeBase64("  JVBERi0xLjQ=\n")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(b))

	_, err = DecodeBase64("not base64!!")
	assert.Error(t, err)
}

func TestSniffKind(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"pdf", []byte("%PDF-1.7"), "pdf"},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, "jpg"},
		{"docx", []byte{0x50, 0x4B, 0x03, 0x04, 0x14}, "docx"},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00}, "png"},
		{"doc", []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, "doc"},
		{"sp01", []byte("SP01...."), "bin"},
		{"empty", nil, "bin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SniffKind(tt.in))
		})
	}
}

package ocr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	calls []call
	fn    func(name string, args []string) ([]byte, []byte, error)
}

func (f *fakeRunner) Run(_ context.Context, name string, _ *slog.Logger, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	if f.fn == nil {
		return nil, nil, nil
	}
	return f.fn(name, args)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestNormalize(t *testing.T) {
	in := "Jane  Doe\r\n\tEngineer   \n-----\n\n\n\n01/05/2020\fPage 2"
	assert.Equal(t, "Jane Doe\n Engineer\n\n01/05/2020\nPage 2", Normalize(in))
	assert.Equal(t, "", Normalize(""))
}

func TestRasterizePage(t *testing.T) {
	page := pngBytes(t, 30, 40)
	r := &fakeRunner{fn: func(_ string, args []string) ([]byte, []byte, error) {
		prefix := args[len(args)-1]
		return nil, nil, os.WriteFile(prefix+".png", page, 0o644)
	}}
	e := NewEngine(Config{}, r, nil)

	img, err := e.RasterizePage(context.Background(), "cv.pdf", 2)
	require.NoError(t, err)
	assert.Equal(t, 30, img.Bounds().Dx())
	assert.Equal(t, 40, img.Bounds().Dy())

	require.Len(t, r.calls, 1)
	assert.Equal(t, "pdftoppm", r.calls[0].name)
	assert.Equal(t, []string{"-r", "300", "-f", "2", "-l", "2", "-png", "-singlefile", "cv.pdf"}, r.calls[0].args[:9])
}

func TestRasterizePageFailure(t *testing.T) {
	r := &fakeRunner{fn: func(string, []string) ([]byte, []byte, error) {
		return nil, []byte("bad page"), errors.New("exit status 1")
	}}
	e := NewEngine(Config{}, r, nil)
	_, err := e.RasterizePage(context.Background(), "cv.pdf", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad page")
}

func TestOCRFile(t *testing.T) {
	r := &fakeRunner{fn: func(string, []string) ([]byte, []byte, error) {
		return []byte("John   Doe\n\n\n\nSoftware Engineer\n"), nil, nil
	}}
	e := NewEngine(Config{TessdataDir: "/td", TesseractLang: "deu"}, r, nil)

	txt, err := e.OCRFile(context.Background(), "a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "John Doe\n\nSoftware Engineer", txt)
	assert.Equal(t, []string{"a.jpg", "stdout", "-l", "deu", "--tessdata-dir", "/td"}, r.calls[0].args)
}

func TestConvertDocToDocx(t *testing.T) {
	cache := t.TempDir()
	r := &fakeRunner{fn: func(_ string, args []string) ([]byte, []byte, error) {
		return nil, nil, os.WriteFile(filepath.Join(cache, "cv.docx"), []byte("PK"), 0o644)
	}}
	e := NewEngine(Config{DocConverter: "soffice", ArtifactCacheDir: cache}, r, nil)

	out, err := e.ConvertDocToDocx(context.Background(), "/in/cv.doc")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cache, "cv.docx"), out)

	// second call hits the cache
	_, err = e.ConvertDocToDocx(context.Background(), "/in/cv.doc")
	require.NoError(t, err)
	assert.Len(t, r.calls, 1)
}

func TestConvertDocToDocxDisabled(t *testing.T) {
	e := NewEngine(Config{ArtifactCacheDir: t.TempDir()}, &fakeRunner{}, nil)
	_, err := e.ConvertDocToDocx(context.Background(), "/in/cv.doc")
	assert.ErrorIs(t, err, ErrNoConverter)
}

func TestFailedToolKeepsStderr(t *testing.T) {
	cause := errors.New("exit status 1")
	r := &fakeRunner{fn: func(string, []string) ([]byte, []byte, error) {
		return nil, []byte("  Error opening data file eng.traineddata\n"), cause
	}}
	e := NewEngine(Config{}, r, nil)

	_, err := e.OCRFile(context.Background(), "a.jpg")
	var terr *ToolError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "tesseract", terr.Tool)
	assert.Equal(t, "Error opening data file eng.traineddata", terr.Stderr)
	assert.ErrorIs(t, err, cause)
}

func TestExecRunnerMissingTool(t *testing.T) {
	_, _, err := ExecRunner{}.Run(context.Background(), "resume-parser-no-such-tool", nil)
	assert.ErrorIs(t, err, ErrToolMissing)
}

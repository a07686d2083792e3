package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joseph-ayodele/resume-parser/constants"
	"github.com/joseph-ayodele/resume-parser/internal/common"
	"github.com/joseph-ayodele/resume-parser/internal/encoder"
	"github.com/joseph-ayodele/resume-parser/internal/entity"
)

// TextExtractor is stage 1: document -> native text.
type TextExtractor interface {
	Extract(ctx context.Context, doc entity.Document) entity.Extraction
}

// DocConverter turns a legacy binary .doc into a .docx path.
type DocConverter interface {
	ConvertDocToDocx(ctx context.Context, in string) (string, error)
}

// Extractor picks the native loader for a document kind. Images never have native text.
type Extractor struct {
	docs   DocConverter
	logger *slog.Logger
}

func NewExtractor(docs DocConverter, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{docs: docs, logger: logger}
}

var _ TextExtractor = (*Extractor)(nil)

func (e *Extractor) Extract(ctx context.Context, doc entity.Document) entity.Extraction {
	var (
		text  string
		pages int
		err   error
	)
	switch doc.Kind {
	case constants.PDF:
		text, pages, err = PDFText(doc.Path)
	case constants.DOCX:
		text, err = DocxText(doc.Path)
	case constants.DOC:
		text, err = e.docText(ctx, doc)
	case constants.IMAGE:
		return entity.TextResult("", constants.StrategyNative, 1)
	default:
		err = fmt.Errorf("%w: %s", common.ErrUnsupported, doc.Kind)
	}
	if err != nil {
		return entity.ErrorResult(
			common.NewAppError(common.CodeExtractionFailed, doc.Kind.String()+" "+doc.Name, err),
			constants.StrategyNative,
		)
	}
	return entity.TextResult(text, constants.StrategyNative, pages)
}

// docText reads a .doc that is really a zip archive directly; true binary .doc files
// go through the configured converter first.
func (e *Extractor) docText(ctx context.Context, doc entity.Document) (string, error) {
	zipped, err := looksZipped(doc.Path)
	if err != nil {
		return "", err
	}
	if zipped {
		return DocxText(doc.Path)
	}
	if e.docs == nil {
		return "", fmt.Errorf("binary .doc and no converter available")
	}
	converted, err := e.docs.ConvertDocToDocx(ctx, doc.Path)
	if err != nil {
		return "", err
	}
	e.logger.Debug("doc converted", "doc", doc.Name, "docx", converted)
	return DocxText(converted)
}

// ArchivePath is the zip archive to read for a docx/doc document, converting if needed.
func (e *Extractor) ArchivePath(ctx context.Context, doc entity.Document) (string, error) {
	if doc.Kind != constants.DOC {
		return doc.Path, nil
	}
	zipped, err := looksZipped(doc.Path)
	if err != nil || zipped {
		return doc.Path, err
	}
	if e.docs == nil {
		return "", fmt.Errorf("binary .doc and no converter available")
	}
	return e.docs.ConvertDocToDocx(ctx, doc.Path)
}

func looksZipped(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer func() { _ = f.Close() }()
	head := make([]byte, 4)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	return encoder.IsZip(head[:n]), nil
}

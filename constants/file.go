package constants

import "strings"

// DocumentKind is the closed set of input document kinds.
type DocumentKind string

const (
	PDF   DocumentKind = "pdf"
	DOCX  DocumentKind = "docx"
	DOC   DocumentKind = "doc"
	IMAGE DocumentKind = "image"
)

// Kinds lists every kind in batch enumeration order.
var Kinds = []DocumentKind{PDF, DOCX, IMAGE, DOC}

const (
	// OutputSuffix is appended to a document's base name to form its output file name.
	OutputSuffix = "_extracted_info.json"
	// CompositeExt is the extension of the cached composite image beside a source document.
	CompositeExt = ".jpg"
	// RasterDPI is the fallback rasterisation resolution for PDF pages.
	RasterDPI = 300
)

// extToKind holds the supported input extensions (normalised, no dot).
var extToKind = map[string]DocumentKind{
	"pdf":  PDF,
	"docx": DOCX,
	"doc":  DOC,
	"jpg":  IMAGE,
	"jpeg": IMAGE,
	"png":  IMAGE,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToKind returns the document kind for an extension, or "" if unsupported.
func MapExtToKind(ext string) DocumentKind {
	return extToKind[NormalizeExt(ext)]
}

// IsArchiveKind reports whether documents of this kind are read as office archives.
func (k DocumentKind) IsArchiveKind() bool {
	return k == DOCX || k == DOC
}

func (k DocumentKind) String() string { return string(k) }

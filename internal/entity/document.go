package entity

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/resume-parser/constants"
	"github.com/joseph-ayodele/resume-parser/internal/common"
)

// Document identifies one input file. It is built once at discovery and never mutated.
type Document struct {
	Path string                 `json:"path"`
	Name string                 `json:"name"`
	Kind constants.DocumentKind `json:"kind"`
	Base string                 `json:"base"`
}

// NewDocument derives a Document from a file path, rejecting unsupported suffixes.
func NewDocument(path string) (Document, error) {
	name := filepath.Base(path)
	ext := filepath.Ext(name)
	kind := constants.MapExtToKind(ext)
	if kind == "" {
		return Document{}, fmt.Errorf("%w: unsupported file type %q", common.ErrUnsupported, name)
	}
	return Document{
		Path: path,
		Name: name,
		Kind: kind,
		Base: strings.TrimSuffix(name, ext),
	}, nil
}

// Dir is the directory holding the source file.
func (d Document) Dir() string {
	return filepath.Dir(d.Path)
}

// CompositePath is where the document's combined fallback image is cached.
func (d Document) CompositePath() string {
	return filepath.Join(d.Dir(), d.Base+constants.CompositeExt)
}

// OutputName is the file name of the document's structured output record.
func (d Document) OutputName() string {
	return d.Base + constants.OutputSuffix
}

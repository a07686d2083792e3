package entity

import (
	"strings"

	"github.com/joseph-ayodele/resume-parser/constants"
)

// ExtractionStatus is the tri-state outcome of an extraction attempt.
type ExtractionStatus int

const (
	ExtractionText ExtractionStatus = iota
	ExtractionEmpty
	ExtractionError
)

func (s ExtractionStatus) String() string {
	switch s {
	case ExtractionText:
		return "text"
	case ExtractionEmpty:
		return "empty"
	default:
		return "error"
	}
}

// Extraction is the request content obtained for one document.
// Exactly one of Text or Image is meaningful when Status is ExtractionText.
type Extraction struct {
	Status   ExtractionStatus
	Strategy constants.Strategy
	Text     string
	Image    []byte
	MIME     string
	Pages    int
	Err      error
}

// TextResult classifies text: whitespace-only input yields Empty, not Text.
func TextResult(text string, strategy constants.Strategy, pages int) Extraction {
	if strings.TrimSpace(text) == "" {
		return Extraction{Status: ExtractionEmpty, Strategy: strategy, Pages: pages}
	}
	return Extraction{Status: ExtractionText, Strategy: strategy, Text: text, Pages: pages}
}

// ImageResult carries an image to be sent to the model instead of text.
func ImageResult(img []byte, mime string, strategy constants.Strategy, pages int) Extraction {
	return Extraction{Status: ExtractionText, Strategy: strategy, Image: img, MIME: mime, Pages: pages}
}

// ErrorResult wraps an extraction failure.
func ErrorResult(err error, strategy constants.Strategy) Extraction {
	return Extraction{Status: ExtractionError, Strategy: strategy, Err: err}
}

func (e Extraction) IsImage() bool { return len(e.Image) > 0 }

package entity

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/resume-parser/constants"
	"github.com/joseph-ayodele/resume-parser/internal/common"
)

func TestNewDocument(t *testing.T) {
	doc, err := NewDocument(filepath.Join("in", "Jane.Doe.CV.PDF"))
	require.NoError(t, err)
	assert.Equal(t, "Jane.Doe.CV.PDF", doc.Name)
	assert.Equal(t, "Jane.Doe.CV", doc.Base)
	assert.Equal(t, constants.PDF, doc.Kind)
	assert.Equal(t, filepath.Join("in", "Jane.Doe.CV.jpg"), doc.CompositePath())
	assert.Equal(t, "Jane.Doe.CV_extracted_info.json", doc.OutputName())

	img, err := NewDocument("photo.jpeg")
	require.NoError(t, err)
	assert.Equal(t, constants.IMAGE, img.Kind)

	_, err = NewDocument(filepath.Join("in", "notes.txt"))
	assert.ErrorIs(t, err, common.ErrUnsupported)
}

func TestTextResultIsTriState(t *testing.T) {
	assert.Equal(t, ExtractionEmpty, TextResult(" \n\t ", constants.StrategyNative, 2).Status)

	r := TextResult("Jane Doe", constants.StrategyNative, 1)
	assert.Equal(t, ExtractionText, r.Status)
	assert.False(t, r.IsImage())

	img := ImageResult([]byte{0xFF, 0xD8}, "image/jpeg", constants.StrategyVisionFallback, 3)
	assert.Equal(t, ExtractionText, img.Status)
	assert.True(t, img.IsImage())

	e := ErrorResult(errors.New("broken xref"), constants.StrategyNative)
	assert.Equal(t, ExtractionError, e.Status)
	assert.Error(t, e.Err)
}

func TestSummaryCountsPerKind(t *testing.T) {
	pdf, _ := NewDocument("a.pdf")
	png, _ := NewDocument("b.png")
	s := NewSummary()
	s.Add(Outcome{Document: pdf, State: constants.StateWritten})
	s.Add(Outcome{Document: pdf, State: constants.StateWritten})
	s.Add(Outcome{Document: png, State: constants.StateSkipped})
	s.Add(Outcome{Document: png, State: constants.StateFailed})

	assert.Equal(t, 2, s.Written[constants.PDF])
	assert.Equal(t, 0, s.Written[constants.IMAGE])
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Processed())
}

package entity

import (
	"time"

	"github.com/joseph-ayodele/resume-parser/constants"
)

// Outcome records how one document finished.
type Outcome struct {
	Document   Document           `json:"document"`
	State      constants.DocState `json:"state"`
	Strategy   constants.Strategy `json:"strategy,omitempty"`
	ErrorCode  string             `json:"error_code,omitempty"`
	Error      string             `json:"error,omitempty"`
	OutputPath string             `json:"output_path,omitempty"`
	Duration   time.Duration      `json:"duration"`
}

// Summary aggregates outcomes of a batch.
type Summary struct {
	Written map[constants.DocumentKind]int
	Skipped int
	Failed  int
	Total   int
}

func NewSummary() Summary {
	return Summary{Written: map[constants.DocumentKind]int{}}
}

// Add folds one outcome into the summary.
func (s *Summary) Add(o Outcome) {
	s.Total++
	switch o.State {
	case constants.StateWritten:
		s.Written[o.Document.Kind]++
	case constants.StateSkipped:
		s.Skipped++
	default:
		s.Failed++
	}
}

// Processed is the number of documents written across all kinds.
func (s Summary) Processed() int {
	n := 0
	for _, c := range s.Written {
		n += c
	}
	return n
}

package entity

import (
	"time"

	"github.com/google/uuid"
)

// ExtractJob is one run-ledger row: a document's trip through the pipeline.
type ExtractJob struct {
	ID           uuid.UUID  `json:"id"`
	RunID        uuid.UUID  `json:"run_id"`
	SourcePath   string     `json:"source_path"`
	Kind         string     `json:"kind"`
	Mode         string     `json:"mode"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	Status       string     `json:"status"`
	Strategy     *string    `json:"strategy,omitempty"`
	ErrorCode    *string    `json:"error_code,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	OutputPath   *string    `json:"output_path,omitempty"`
}

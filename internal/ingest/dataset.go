package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/resume-parser/constants"
	"github.com/joseph-ayodele/resume-parser/internal/common"
	"github.com/joseph-ayodele/resume-parser/internal/encoder"
)

// RecordID accepts both numeric and string ids.
type RecordID string

func (id *RecordID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = RecordID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = RecordID(n.String())
	return nil
}

// Record is one exported document: its id and base64 payload.
type Record struct {
	ID         RecordID `json:"id"`
	APIRequest string   `json:"api_request"`
}

// Decoder writes dataset records out as input files named file_<id>.<kind>.
type Decoder struct {
	outDir string
	mode   constants.RunMode
	logger *slog.Logger
}

func NewDecoder(outDir string, mode constants.RunMode, logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decoder{outDir: outDir, mode: mode, logger: logger}
}

// ReadDataset parses a JSON array of records.
func ReadDataset(r io.Reader) ([]Record, error) {
	var recs []Record
	if err := json.NewDecoder(r).Decode(&recs); err != nil {
		return nil, common.NewAppError(common.CodeConfig, "parse dataset", fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
	}
	return recs, nil
}

// DecodeFile reads the dataset at path and decodes every record.
func (d *Decoder) DecodeFile(ctx context.Context, path string) (DecodeStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return DecodeStats{}, common.WrapError(err, "open dataset")
	}
	defer func() { _ = f.Close() }()

	recs, err := ReadDataset(f)
	if err != nil {
		return DecodeStats{}, err
	}
	return d.Decode(ctx, recs)
}

// Decode writes each record. A bad record is logged and skipped; it never stops the run.
func (d *Decoder) Decode(ctx context.Context, recs []Record) (DecodeStats, error) {
	var stats DecodeStats
	if err := os.MkdirAll(d.outDir, 0o755); err != nil {
		return stats, fmt.Errorf("create output dir: %w", err)
	}

	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Records++
		outcome, err := d.decodeOne(rec)
		if err != nil {
			stats.Failed++
			d.logger.Error("decode.record_failed", "id", rec.ID, "error", err)
			continue
		}
		switch outcome {
		case "written":
			stats.Written++
		case "overwritten":
			stats.Overwritten++
		default:
			stats.Skipped++
		}
	}

	d.logger.Info("decode.done",
		"records", stats.Records,
		"written", stats.Written,
		"overwritten", stats.Overwritten,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
	)
	return stats, nil
}

func (d *Decoder) decodeOne(rec Record) (string, error) {
	v := common.NewValidator().
		Field("id", string(rec.ID), common.Required, common.SafeFileName).
		Field("api_request", rec.APIRequest, common.Required)
	if err := v.Error(); err != nil {
		return "", err
	}

	data, err := encoder.DecodeBase64(rec.APIRequest)
	if err != nil {
		return "", fmt.Errorf("%w: base64: %v", common.ErrInvalidInput, err)
	}
	kind := encoder.SniffKind(data)
	name := fmt.Sprintf("file_%s.%s", rec.ID, kind)
	dest := filepath.Join(d.outDir, name)

	_, statErr := os.Stat(dest)
	exists := statErr == nil || !errors.Is(statErr, fs.ErrNotExist)
	outcome := "written"
	if exists {
		if d.mode != constants.ModeWriteAll {
			d.logger.Info("decode.skip", "id", rec.ID, "file", name, "reason", "already exists")
			return "skipped", nil
		}
		outcome = "overwritten"
	}

	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", common.NewAppError(common.CodeWriteFailed, dest, fmt.Errorf("%w: %v", common.ErrWriteFailed, err))
	}
	d.logger.Info("decode."+outcome, "id", rec.ID, "file", name, "kind", kind, "bytes", len(data))
	if constants.MapExtToKind(kind) == "" {
		d.logger.Warn("decode.unsupported_kind", "id", rec.ID, "file", name, "hint", "the batch will not pick this file up")
	}
	return outcome, nil
}

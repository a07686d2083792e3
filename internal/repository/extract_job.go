package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/resume-parser/constants"
	"github.com/joseph-ayodele/resume-parser/internal/entity"
)

// JobStatusRunning marks a ledger row whose document has not reached a terminal state.
const JobStatusRunning = "RUNNING"

type ExtractJobRepository interface {
	Start(ctx context.Context, runID uuid.UUID, doc entity.Document, mode constants.RunMode) (uuid.UUID, error)
	Finish(ctx context.Context, jobID uuid.UUID, o entity.Outcome) error
	ListByRun(ctx context.Context, runID uuid.UUID) ([]entity.ExtractJob, error)
}

type extractJobRepo struct {
	db  *DB
	log *slog.Logger
	now func() time.Time
}

func NewExtractJobRepository(db *DB, log *slog.Logger) ExtractJobRepository {
	if log == nil {
		log = slog.Default()
	}
	return &extractJobRepo{db: db, log: log, now: func() time.Time { return time.Now().UTC() }}
}

func (r *extractJobRepo) Start(ctx context.Context, runID uuid.UUID, doc entity.Document, mode constants.RunMode) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.db.sql.ExecContext(ctx, r.db.rebind(
		`INSERT INTO extract_job (id, run_id, source_path, kind, mode, started_at, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`),
		id, runID, doc.Path, string(doc.Kind), string(mode), r.now(), JobStatusRunning,
	)
	if err != nil {
		r.log.Error("extract_job start failed", "doc", doc.Name, "err", err)
		return uuid.Nil, fmt.Errorf("insert extract_job: %w", err)
	}
	r.log.Debug("extract_job started", "job_id", id, "doc", doc.Name, "kind", doc.Kind)
	return id, nil
}

func (r *extractJobRepo) Finish(ctx context.Context, jobID uuid.UUID, o entity.Outcome) error {
	res, err := r.db.sql.ExecContext(ctx, r.db.rebind(
		`UPDATE extract_job
		    SET finished_at = ?, status = ?, strategy = ?, error_code = ?, error_message = ?, output_path = ?
		  WHERE id = ?`),
		r.now(), string(o.State), nullString(string(o.Strategy)), nullString(o.ErrorCode),
		nullString(o.Error), nullString(o.OutputPath), jobID,
	)
	if err != nil {
		r.log.Error("extract_job finish failed", "job_id", jobID, "err", err)
		return fmt.Errorf("update extract_job: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("extract_job %s not found", jobID)
	}
	r.log.Debug("extract_job finished", "job_id", jobID, "status", o.State)
	return nil
}

func (r *extractJobRepo) ListByRun(ctx context.Context, runID uuid.UUID) ([]entity.ExtractJob, error) {
	rows, err := r.db.sql.QueryContext(ctx, r.db.rebind(
		`SELECT id, run_id, source_path, kind, mode, started_at, finished_at, status,
		        strategy, error_code, error_message, output_path
		   FROM extract_job
		  WHERE run_id = ?
		  ORDER BY started_at, source_path`), runID)
	if err != nil {
		return nil, fmt.Errorf("list extract_job: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []entity.ExtractJob
	for rows.Next() {
		var (
			j        entity.ExtractJob
			finished sql.NullTime
		)
		var strategy, code, message, outputPath sql.NullString
		if err := rows.Scan(&j.ID, &j.RunID, &j.SourcePath, &j.Kind, &j.Mode, &j.StartedAt, &finished,
			&j.Status, &strategy, &code, &message, &outputPath); err != nil {
			return nil, fmt.Errorf("scan extract_job: %w", err)
		}
		if finished.Valid {
			t := finished.Time
			j.FinishedAt = &t
		}
		j.Strategy = ptr(strategy)
		j.ErrorCode = ptr(code)
		j.ErrorMessage = ptr(message)
		j.OutputPath = ptr(outputPath)
		out = append(out, j)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func ptr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/resume-parser/constants"
	"github.com/joseph-ayodele/resume-parser/internal/common"
	"github.com/joseph-ayodele/resume-parser/internal/core/output"
	"github.com/joseph-ayodele/resume-parser/internal/entity"
	"github.com/joseph-ayodele/resume-parser/internal/llm"
)

// Extractor turns a document into request content.
type Extractor interface {
	Extract(ctx context.Context, doc entity.Document) entity.Extraction
}

// JobRecorder persists one ledger row per processed document. Failures are logged only.
type JobRecorder interface {
	Start(ctx context.Context, runID uuid.UUID, doc entity.Document, mode constants.RunMode) (uuid.UUID, error)
	Finish(ctx context.Context, jobID uuid.UUID, o entity.Outcome) error
}

// Processor drives documents through extraction, fallback, request and write, one at a time.
type Processor struct {
	logger    *slog.Logger
	text      Extractor
	fallback  Extractor
	requester llm.Requester
	gate      *output.Gate
	prompt    llm.Prompt
	jobs      JobRecorder
	runID     uuid.UUID
}

func NewProcessor(
	logger *slog.Logger,
	text Extractor,
	fallback Extractor,
	requester llm.Requester,
	gate *output.Gate,
	prompt llm.Prompt,
	jobs JobRecorder,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		logger:    logger,
		text:      text,
		fallback:  fallback,
		requester: requester,
		gate:      gate,
		prompt:    prompt,
		jobs:      jobs,
		runID:     uuid.New(),
	}
}

func (p *Processor) RunID() uuid.UUID { return p.runID }

// RunBatch processes docs in order. A failing document never stops the batch.
func (p *Processor) RunBatch(ctx context.Context, docs []entity.Document) (entity.Summary, []entity.Outcome) {
	ctx = common.WithRunID(ctx, p.runID.String())
	start := time.Now()
	summary := entity.NewSummary()
	outcomes := make([]entity.Outcome, 0, len(docs))

	p.logger.Info("batch.start", "run_id", p.runID, "documents", len(docs), "mode", p.gate.Mode())
	for _, doc := range docs {
		o := p.ProcessDocument(ctx, doc)
		summary.Add(o)
		outcomes = append(outcomes, o)
	}

	args := []any{
		"run_id", p.runID,
		"processed", summary.Processed(),
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"elapsed_ms", time.Since(start).Milliseconds(),
	}
	for _, k := range constants.Kinds {
		args = append(args, string(k), summary.Written[k])
	}
	p.logger.Info("batch.done", args...)
	return summary, outcomes
}

// ProcessDocument runs one document to a terminal state. Panics are recovered here.
func (p *Processor) ProcessDocument(ctx context.Context, doc entity.Document) (out entity.Outcome) {
	ctx = common.WithDocument(ctx, doc.Name)
	log := common.LoggerFromContext(ctx, p.logger).With("kind", doc.Kind)
	start := time.Now()

	jobID := p.startJob(ctx, log, doc)
	defer func() {
		if r := recover(); r != nil {
			log.Error("document.panic", "panic", r, "stack", string(debug.Stack()))
			err := common.NewAppError(common.CodeInternal, "panic", fmt.Errorf("%w: %v", common.ErrInternal, r))
			out = failed(doc, out.Strategy, err)
		}
		if !out.State.Terminal() {
			err := common.NewAppError(common.CodeInternal, "stopped in state "+string(out.State), common.ErrInternal)
			out = failed(doc, out.Strategy, err)
		}
		out.Duration = time.Since(start)
		p.finishJob(ctx, log, jobID, out)
		log.Info("document.done",
			"state", out.State,
			"strategy", out.Strategy,
			"error_code", out.ErrorCode,
			"elapsed_ms", out.Duration.Milliseconds(),
		)
	}()

	return p.process(ctx, log, doc)
}

func (p *Processor) process(ctx context.Context, log *slog.Logger, doc entity.Document) entity.Outcome {
	state := constants.StateDiscovered
	advance := func(next constants.DocState) {
		log.Debug("document.state", "from", state, "to", next)
		state = next
	}

	// Already-handled documents cost no extraction and no request.
	if d := p.gate.Decide(doc); !d.Proceed() {
		advance(constants.StateSkipped)
		log.Info("document.skip", "reason", "already handled", "mode", p.gate.Mode())
		return entity.Outcome{Document: doc, State: state, OutputPath: p.gate.Destination(doc)}
	}

	ext, err := instrument(ctx, log, "extract.text", func(ctx context.Context) (entity.Extraction, error) {
		e := p.text.Extract(ctx, doc)
		return e, e.Err
	})
	if err != nil {
		advance(constants.StateFailed)
		return failed(doc, ext.Strategy, err)
	}

	if ext.Status == entity.ExtractionText {
		advance(constants.StateTextExtracted)
	} else {
		advance(constants.StateFallbackNeeded)
		log.Warn("document.fallback", "reason", "no native text")
		ext, err = instrument(ctx, log, "extract.fallback", func(ctx context.Context) (entity.Extraction, error) {
			e := p.fallback.Extract(ctx, doc)
			if e.Status == entity.ExtractionEmpty && e.Err == nil {
				e.Err = common.NewAppError(common.CodeFallbackExhausted, doc.Name, common.ErrNoImages)
			}
			return e, e.Err
		})
		if err != nil {
			advance(constants.StateFallbackFailed)
			advance(constants.StateFailed)
			return failed(doc, ext.Strategy, err)
		}
		advance(constants.StateFallbackExtracted)
	}

	answer, err := instrument(ctx, log, "llm.request", func(ctx context.Context) (string, error) {
		return p.requester.Request(ctx, p.prompt, llm.ContentFromExtraction(ext))
	})
	if err != nil {
		advance(constants.StateFailed)
		return failed(doc, ext.Strategy, err)
	}
	advance(constants.StateRequested)

	type written struct {
		decision output.Decision
		path     string
	}
	w, err := instrument(ctx, log, "output.write", func(context.Context) (written, error) {
		d, path, err := p.gate.Write(doc, answer)
		return written{d, path}, err
	})
	if err != nil {
		advance(constants.StateFailed)
		return failed(doc, ext.Strategy, err)
	}
	if !w.decision.Proceed() {
		advance(constants.StateSkipped)
	} else {
		advance(constants.StateWritten)
	}
	return entity.Outcome{Document: doc, State: state, Strategy: ext.Strategy, OutputPath: w.path}
}

func failed(doc entity.Document, strategy constants.Strategy, err error) entity.Outcome {
	return entity.Outcome{
		Document:  doc,
		State:     constants.StateFailed,
		Strategy:  strategy,
		ErrorCode: common.Classify(err),
		Error:     err.Error(),
	}
}

func (p *Processor) startJob(ctx context.Context, log *slog.Logger, doc entity.Document) uuid.UUID {
	if p.jobs == nil {
		return uuid.Nil
	}
	id, err := p.jobs.Start(ctx, p.runID, doc, p.gate.Mode())
	if err != nil {
		log.Warn("ledger.start_failed", "error", err)
		return uuid.Nil
	}
	return id
}

func (p *Processor) finishJob(ctx context.Context, log *slog.Logger, jobID uuid.UUID, o entity.Outcome) {
	if p.jobs == nil || jobID == uuid.Nil {
		return
	}
	if err := p.jobs.Finish(ctx, jobID, o); err != nil {
		log.Warn("ledger.finish_failed", "job_id", jobID, "error", err)
	}
}

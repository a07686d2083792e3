package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/resume-parser/constants"
	"github.com/joseph-ayodele/resume-parser/internal/common"
	"github.com/joseph-ayodele/resume-parser/internal/core/output"
	"github.com/joseph-ayodele/resume-parser/internal/entity"
	"github.com/joseph-ayodele/resume-parser/internal/llm"
)

type stubExtractor struct {
	results map[string]entity.Extraction
	panics  map[string]bool
	calls   []string
}

func (s *stubExtractor) Extract(_ context.Context, doc entity.Document) entity.Extraction {
	s.calls = append(s.calls, doc.Name)
	if s.panics[doc.Name] {
		panic("boom")
	}
	if r, ok := s.results[doc.Name]; ok {
		return r
	}
	return entity.TextResult("", constants.StrategyNative, 1)
}

type stubRequester struct {
	fail     map[string]bool
	contents []llm.Content
}

func (s *stubRequester) Request(ctx context.Context, _ llm.Prompt, c llm.Content) (string, error) {
	s.contents = append(s.contents, c)
	doc := common.DocumentFromContext(ctx)
	if s.fail[doc] {
		return "", common.NewAppError(common.CodeRequestFailed, "status 500", common.ErrRequestFailed)
	}
	return fmt.Sprintf(`{"source":%q}`, doc), nil
}

type recorder struct {
	started  []string
	finished []entity.Outcome
}

func (r *recorder) Start(_ context.Context, _ uuid.UUID, doc entity.Document, _ constants.RunMode) (uuid.UUID, error) {
	r.started = append(r.started, doc.Name)
	return uuid.New(), nil
}

func (r *recorder) Finish(_ context.Context, _ uuid.UUID, o entity.Outcome) error {
	r.finished = append(r.finished, o)
	return errors.New("ledger unavailable")
}

type harness struct {
	text     *stubExtractor
	fallback *stubExtractor
	req      *stubRequester
	jobs     *recorder
	out      string
	logs     *bytes.Buffer
	proc     *Processor
}

func newHarness(t *testing.T, mode constants.RunMode) *harness {
	t.Helper()
	h := &harness{
		text:     &stubExtractor{results: map[string]entity.Extraction{}, panics: map[string]bool{}},
		fallback: &stubExtractor{results: map[string]entity.Extraction{}, panics: map[string]bool{}},
		req:      &stubRequester{fail: map[string]bool{}},
		jobs:     &recorder{},
		out:      t.TempDir(),
		logs:     &bytes.Buffer{},
	}
	logger := slog.New(slog.NewJSONHandler(h.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	gate := output.NewGate(h.out, mode, logger)
	h.proc = NewProcessor(logger, h.text, h.fallback, h.req, gate, llm.DefaultPrompt(), h.jobs)
	return h
}

func docs(t *testing.T, names ...string) []entity.Document {
	t.Helper()
	out := make([]entity.Document, 0, len(names))
	for _, n := range names {
		d, err := entity.NewDocument(filepath.Join("input_files", n))
		require.NoError(t, err)
		out = append(out, d)
	}
	return out
}

func (h *harness) output(t *testing.T, base string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(h.out, base+constants.OutputSuffix))
	require.NoError(t, err)
	return string(b)
}

func TestNativeTextNeverTriggersFallback(t *testing.T) {
	h := newHarness(t, constants.ModeDefault)
	h.text.results["john.pdf"] = entity.TextResult("John Doe, Software Engineer", constants.StrategyNative, 1)

	summary, outcomes := h.proc.RunBatch(context.Background(), docs(t, "john.pdf"))

	require.Len(t, outcomes, 1)
	assert.Equal(t, constants.StateWritten, outcomes[0].State)
	assert.Equal(t, constants.StrategyNative, outcomes[0].Strategy)
	assert.Empty(t, h.fallback.calls)
	require.Len(t, h.req.contents, 1)
	assert.Equal(t, "John Doe, Software Engineer", h.req.contents[0].Text)
	assert.Equal(t, `{"source":"john.pdf"}`, h.output(t, "john"))
	assert.Equal(t, 1, summary.Written[constants.PDF])
}

func TestEmptyTextUsesFallbackImage(t *testing.T) {
	h := newHarness(t, constants.ModeDefault)
	h.fallback.results["scan.pdf"] = entity.ImageResult([]byte{0xFF, 0xD8}, "image/jpeg", constants.StrategyVisionFallback, 2)

	_, outcomes := h.proc.RunBatch(context.Background(), docs(t, "scan.pdf"))

	assert.Equal(t, []string{"scan.pdf"}, h.fallback.calls)
	assert.Equal(t, constants.StateWritten, outcomes[0].State)
	assert.Equal(t, constants.StrategyVisionFallback, outcomes[0].Strategy)
	require.Len(t, h.req.contents, 1)
	assert.True(t, h.req.contents[0].IsImage())
	assert.Contains(t, h.logs.String(), `"msg":"extract.fallback.ok"`)
}

func TestFallbackExhaustedFailsWithoutRequest(t *testing.T) {
	h := newHarness(t, constants.ModeDefault)
	h.fallback.results["blank.docx"] = entity.ErrorResult(
		common.NewAppError(common.CodeFallbackExhausted, "blank.docx", common.ErrNoImages), constants.StrategyVisionFallback)

	summary, outcomes := h.proc.RunBatch(context.Background(), docs(t, "blank.docx"))

	assert.Equal(t, constants.StateFailed, outcomes[0].State)
	assert.Equal(t, common.CodeFallbackExhausted, outcomes[0].ErrorCode)
	assert.Empty(t, h.req.contents)
	assert.Equal(t, 1, summary.Failed)
	assert.NoFileExists(t, filepath.Join(h.out, "blank"+constants.OutputSuffix))
	assert.Contains(t, h.logs.String(), `"to":"FALLBACK_FAILED"`)
}

func TestBatchIsolation(t *testing.T) {
	h := newHarness(t, constants.ModeDefault)
	for _, n := range []string{"a.pdf", "b.pdf", "c.pdf", "d.docx"} {
		h.text.results[n] = entity.TextResult("text of "+n, constants.StrategyNative, 1)
	}
	h.text.panics["b.pdf"] = true
	h.req.fail["c.pdf"] = true

	summary, outcomes := h.proc.RunBatch(context.Background(), docs(t, "a.pdf", "b.pdf", "c.pdf", "d.docx"))

	require.Len(t, outcomes, 4)
	assert.Equal(t, constants.StateWritten, outcomes[0].State)
	assert.Equal(t, constants.StateFailed, outcomes[1].State)
	assert.Equal(t, common.CodeInternal, outcomes[1].ErrorCode)
	assert.Equal(t, constants.StateFailed, outcomes[2].State)
	assert.Equal(t, common.CodeRequestFailed, outcomes[2].ErrorCode)
	assert.Equal(t, constants.StateWritten, outcomes[3].State)

	assert.Equal(t, 1, summary.Written[constants.PDF])
	assert.Equal(t, 1, summary.Written[constants.DOCX])
	assert.Equal(t, 2, summary.Failed)
	assert.Equal(t, 2, summary.Processed())
	assert.NoFileExists(t, filepath.Join(h.out, "c"+constants.OutputSuffix))
	assert.Contains(t, h.logs.String(), `"msg":"document.panic"`)
}

func TestExtractionErrorFailsDocument(t *testing.T) {
	h := newHarness(t, constants.ModeDefault)
	h.text.results["broken.pdf"] = entity.ErrorResult(
		common.NewAppError(common.CodeExtractionFailed, "broken.pdf", errors.New("malformed xref")), constants.StrategyNative)

	_, outcomes := h.proc.RunBatch(context.Background(), docs(t, "broken.pdf"))

	assert.Equal(t, constants.StateFailed, outcomes[0].State)
	assert.Equal(t, common.CodeExtractionFailed, outcomes[0].ErrorCode)
	assert.Empty(t, h.fallback.calls)
	assert.Contains(t, h.logs.String(), `"msg":"extract.text.error"`)
}

func TestExistingOutputSkippedBeforeExtraction(t *testing.T) {
	for _, mode := range []constants.RunMode{constants.ModeDefault, constants.ModeWriteNew} {
		t.Run(string(mode), func(t *testing.T) {
			h := newHarness(t, mode)
			dest := filepath.Join(h.out, "john"+constants.OutputSuffix)
			require.NoError(t, os.WriteFile(dest, []byte("previous"), 0o644))

			summary, outcomes := h.proc.RunBatch(context.Background(), docs(t, "john.pdf"))

			assert.Equal(t, constants.StateSkipped, outcomes[0].State)
			assert.Empty(t, h.text.calls)
			assert.Empty(t, h.req.contents)
			assert.Equal(t, "previous", h.output(t, "john"))
			assert.Equal(t, 1, summary.Skipped)
		})
	}
}

func TestWriteAllOverwrites(t *testing.T) {
	h := newHarness(t, constants.ModeWriteAll)
	h.text.results["john.pdf"] = entity.TextResult("John", constants.StrategyNative, 1)
	require.NoError(t, os.WriteFile(filepath.Join(h.out, "john"+constants.OutputSuffix), []byte("previous"), 0o644))

	_, outcomes := h.proc.RunBatch(context.Background(), docs(t, "john.pdf"))

	assert.Equal(t, constants.StateWritten, outcomes[0].State)
	assert.Equal(t, `{"source":"john.pdf"}`, h.output(t, "john"))
}

func TestLedgerFailuresDoNotChangeOutcome(t *testing.T) {
	h := newHarness(t, constants.ModeDefault)
	h.text.results["john.pdf"] = entity.TextResult("John", constants.StrategyNative, 1)

	_, outcomes := h.proc.RunBatch(context.Background(), docs(t, "john.pdf", "cv.png"))

	assert.Equal(t, []string{"john.pdf", "cv.png"}, h.jobs.started)
	require.Len(t, h.jobs.finished, 2)
	assert.Equal(t, constants.StateWritten, h.jobs.finished[0].State)
	assert.Equal(t, constants.StateWritten, outcomes[0].State)
	assert.Equal(t, constants.StateFailed, outcomes[1].State)
	assert.Equal(t, common.CodeFallbackExhausted, outcomes[1].ErrorCode)
	assert.Contains(t, h.logs.String(), "ledger.finish_failed")
}

func TestInstrumentLogsStages(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil)).With("doc", "john.pdf")

	v, err := instrument(context.Background(), log, "stage", func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = instrument(context.Background(), log, "stage", func(context.Context) (int, error) { return 0, errors.New("nope") })
	require.Error(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "msg=stage.start")
	assert.Contains(t, lines[1], "msg=stage.ok")
	assert.Contains(t, lines[1], "elapsed_ms=")
	assert.Contains(t, lines[3], "msg=stage.error")
	assert.Contains(t, lines[3], "doc=john.pdf")
}

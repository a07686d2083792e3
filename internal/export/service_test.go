package export

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/resume-parser/constants"
	"github.com/joseph-ayodele/resume-parser/internal/entity"
)

func sampleOutcomes(t *testing.T) ([]entity.Outcome, entity.Summary) {
	t.Helper()
	john, err := entity.NewDocument(filepath.Join("in", "john.pdf"))
	require.NoError(t, err)
	scan, err := entity.NewDocument(filepath.Join("in", "scan.docx"))
	require.NoError(t, err)

	outcomes := []entity.Outcome{
		{Document: john, State: constants.StateWritten, Strategy: constants.StrategyNative,
			OutputPath: "out/john_extracted_info.json", Duration: 1500 * time.Millisecond},
		{Document: scan, State: constants.StateFailed, Strategy: constants.StrategyVisionFallback,
			ErrorCode: "FALLBACK_EXHAUSTED", Error: strings.Repeat("x", 400)},
	}
	summary := entity.NewSummary()
	for _, o := range outcomes {
		summary.Add(o)
	}
	return outcomes, summary
}

func TestBatchReportHasOneRowPerOutcome(t *testing.T) {
	outcomes, summary := sampleOutcomes(t)
	runID := uuid.New()

	b, err := NewService(nil).BatchReportXLSX(runID, outcomes, summary)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(outcomesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Document", rows[0][0])
	assert.Equal(t, []string{"john.pdf", "pdf", "WRITTEN", "native", "", "", "out/john_extracted_info.json", "1500"}, rows[1])
	assert.Equal(t, "FALLBACK_EXHAUSTED", rows[2][4])
	assert.Len(t, []rune(rows[2][5]), 300)

	sum, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Run ID", runID.String()}, sum[0])
	assert.Contains(t, sum, []string{"Written pdf", "1"})
	assert.Contains(t, sum, []string{"Failed", "1"})
}

func TestWriteBatchReport(t *testing.T) {
	outcomes, summary := sampleOutcomes(t)
	path := filepath.Join(t.TempDir(), "reports", "batch.xlsx")

	require.NoError(t, NewService(nil).WriteBatchReport(path, uuid.New(), outcomes, summary))
	assert.FileExists(t, path)
}

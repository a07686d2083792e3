package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/resume-parser/constants"
	"github.com/joseph-ayodele/resume-parser/internal/entity"
)

const (
	outcomesSheet = "Documents"
	summarySheet  = "Summary"
)

// Service renders batch outcomes as an XLSX workbook.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// BatchReportXLSX returns a workbook with one row per outcome and a per-kind summary sheet.
func (s *Service) BatchReportXLSX(runID uuid.UUID, outcomes []entity.Outcome, summary entity.Summary) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// the default sheet is renamed rather than left empty beside ours
	if err := f.SetSheetName("Sheet1", outcomesSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(outcomesSheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Document",
		"Kind",
		"State",
		"Strategy",
		"Error Code",
		"Error",
		"Output Path",
		"Elapsed (ms)",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(outcomesSheet, cell, h)
	}

	row := 2
	for _, o := range outcomes {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(outcomesSheet, cell, v)
		}
		write(1, o.Document.Name)
		write(2, string(o.Document.Kind))
		write(3, string(o.State))
		write(4, string(o.Strategy))
		write(5, o.ErrorCode)
		write(6, truncate(o.Error, 300))
		write(7, o.OutputPath)
		write(8, o.Duration.Milliseconds())
		row++
	}

	_ = f.SetColWidth(outcomesSheet, "A", "A", 36) // document
	_ = f.SetColWidth(outcomesSheet, "B", "D", 16) // kind, state, strategy
	_ = f.SetColWidth(outcomesSheet, "E", "E", 20) // code
	_ = f.SetColWidth(outcomesSheet, "F", "F", 60) // error
	_ = f.SetColWidth(outcomesSheet, "G", "G", 48) // path

	summaryRows := [][]any{
		{"Run ID", runID.String()},
		{"Total", summary.Total},
	}
	for _, k := range constants.Kinds {
		summaryRows = append(summaryRows, []any{"Written " + string(k), summary.Written[k]})
	}
	summaryRows = append(summaryRows,
		[]any{"Skipped", summary.Skipped},
		[]any{"Failed", summary.Failed},
	)
	for i, r := range summaryRows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &r); err != nil {
			return nil, fmt.Errorf("summary row: %w", err)
		}
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 18)
	_ = f.SetColWidth(summarySheet, "B", "B", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"run_id", runID.String(),
		"rows", len(outcomes),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// WriteBatchReport renders the workbook and stores it at path.
func (s *Service) WriteBatchReport(path string, runID uuid.UUID, outcomes []entity.Outcome, summary entity.Summary) error {
	b, err := s.BatchReportXLSX(runID, outcomes, summary)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

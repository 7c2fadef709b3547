package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/procureflow/backend/internal/budget"
	wf "github.com/procureflow/backend/internal/domain/workflow"
	"github.com/procureflow/backend/internal/repository"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Exporter renders budget and requisition summaries as xlsx workbooks.
type Exporter struct {
	ledger       *budget.Ledger
	requisitions *repository.RequisitionRepository
	outputDir    string
	logger       *zap.Logger
}

// NewExporter creates a report exporter.
func NewExporter(ledger *budget.Ledger, requisitions *repository.RequisitionRepository, outputDir string, logger *zap.Logger) *Exporter {
	return &Exporter{
		ledger:       ledger,
		requisitions: requisitions,
		outputDir:    outputDir,
		logger:       logger,
	}
}

const sheet = "Sheet1"

// WriteBudgetReport streams a per-department budget utilization workbook.
func (e *Exporter) WriteBudgetReport(w io.Writer) error {
	statuses, err := e.ledger.ListStatuses()
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	headers := []string{"Department", "Total", "Used", "Remaining", "Utilization", "Health"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, s := range statuses {
		utilization := 0.0
		if s.Total > 0 {
			utilization = s.Used / s.Total
		}
		values := []interface{}{s.Department, s.Total, s.Used, s.Remaining, utilization, string(s.Health)}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write budget report: %w", err)
	}
	return nil
}

// WriteApprovedReport streams a workbook of all approved requisitions with
// their totals.
func (e *Exporter) WriteApprovedReport(w io.Writer) error {
	approved, err := e.requisitions.List(repository.ListFilter{Status: wf.StateApproved.String()})
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	headers := []string{"ID", "Department", "Created By", "Items", "Total Amount", "Created At", "Approved At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, req := range approved {
		values := []interface{}{
			req.ID,
			req.Department,
			req.CreatedBy,
			len(req.Items),
			req.TotalAmount(),
			req.CreatedAt.Format(time.RFC3339),
			req.UpdatedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write approved report: %w", err)
	}
	return nil
}

// ExportNightly writes the budget report to the output directory with a
// date-stamped name. Called by the scheduler.
func (e *Exporter) ExportNightly() error {
	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	name := fmt.Sprintf("budgets-%s.xlsx", time.Now().Format("2006-01-02"))
	path := filepath.Join(e.outputDir, name)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	if err := e.WriteBudgetReport(file); err != nil {
		return err
	}

	e.logger.Info("Nightly budget report exported", zap.String("path", path))
	return nil
}

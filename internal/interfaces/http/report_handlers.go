package http

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/procureflow/backend/internal/report"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler streams xlsx exports.
type ReportHandler struct {
	exporter *report.Exporter
	logger   *zap.Logger
}

// NewReportHandler creates the report handler.
func NewReportHandler(exporter *report.Exporter, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{exporter: exporter, logger: logger}
}

func attachmentHeader(c *gin.Context, prefix string) {
	name := fmt.Sprintf("%s-%s.xlsx", prefix, time.Now().Format("2006-01-02"))
	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
}

// Budgets streams the budget utilization workbook.
func (h *ReportHandler) Budgets(c *gin.Context) {
	attachmentHeader(c, "budgets")
	if err := h.exporter.WriteBudgetReport(c.Writer); err != nil {
		h.logger.Error("Failed to write budget report", zap.Error(err))
	}
}

// Approved streams the approved-requisitions workbook.
func (h *ReportHandler) Approved(c *gin.Context) {
	attachmentHeader(c, "approved-requisitions")
	if err := h.exporter.WriteApprovedReport(c.Writer); err != nil {
		h.logger.Error("Failed to write approved report", zap.Error(err))
	}
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/procureflow/backend/internal/budget"
	"go.uber.org/zap"
)

// BudgetHandler serves budget status and admin allocation.
type BudgetHandler struct {
	ledger *budget.Ledger
	logger *zap.Logger
}

// NewBudgetHandler creates the budget handler.
func NewBudgetHandler(ledger *budget.Ledger, logger *zap.Logger) *BudgetHandler {
	return &BudgetHandler{ledger: ledger, logger: logger}
}

// List returns every department's budget status.
func (h *BudgetHandler) List(c *gin.Context) {
	statuses, err := h.ledger.ListStatuses()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"budgets": statuses})
}

// Get returns one department's budget status.
func (h *BudgetHandler) Get(c *gin.Context) {
	status, err := h.ledger.GetStatus(c.Param("department"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if status == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no budget for department"})
		return
	}
	c.JSON(http.StatusOK, status)
}

type allocationRequest struct {
	Total float64 `json:"total"`
}

// SetAllocation creates or replaces a department's allocation.
func (h *BudgetHandler) SetAllocation(c *gin.Context) {
	var req allocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, err := h.ledger.SetAllocation(c.Param("department"), req.Total)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, status)
}

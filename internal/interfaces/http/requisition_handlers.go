package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/procureflow/backend/internal/auth"
	wf "github.com/procureflow/backend/internal/domain/workflow"
	"github.com/procureflow/backend/internal/models"
	"github.com/procureflow/backend/internal/repository"
	"github.com/procureflow/backend/internal/workflow"
	"go.uber.org/zap"
)

// RequisitionHandler serves requisition submission, listing, and decisions.
type RequisitionHandler struct {
	engine *workflow.RequisitionApprovalEngine
	logger *zap.Logger
}

// NewRequisitionHandler creates the requisition handler.
func NewRequisitionHandler(engine *workflow.RequisitionApprovalEngine, logger *zap.Logger) *RequisitionHandler {
	return &RequisitionHandler{engine: engine, logger: logger}
}

type requisitionItemRequest struct {
	ItemName string  `json:"item_name" binding:"required"`
	Quantity int     `json:"quantity" binding:"required"`
	Price    float64 `json:"price"`
}

type submitRequest struct {
	Department string                   `json:"department"`
	Items      []requisitionItemRequest `json:"items" binding:"required"`
}

func toItems(in []requisitionItemRequest) []*models.RequisitionItem {
	items := make([]*models.RequisitionItem, len(in))
	for i, item := range in {
		items[i] = &models.RequisitionItem{
			ItemName: item.ItemName,
			Quantity: item.Quantity,
			Price:    item.Price,
		}
	}
	return items
}

// Submit creates a requisition for the caller's department.
func (h *RequisitionHandler) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims := auth.ClaimsFrom(c)
	department := req.Department
	if department == "" {
		department = claims.Department
	}

	created, err := h.engine.Submit(workflow.SubmitInput{
		CreatedBy:  claims.Username,
		Department: department,
		Items:      toItems(req.Items),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Resubmit replaces a sent-back requisition's items and re-enters the chain.
func (h *RequisitionHandler) Resubmit(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid requisition id"})
		return
	}

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims := auth.ClaimsFrom(c)
	updated, err := h.engine.Resubmit(id, claims.Username, toItems(req.Items))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// List returns requisitions. Employees see their own; approvers may filter by
// department and status.
func (h *RequisitionHandler) List(c *gin.Context) {
	claims := auth.ClaimsFrom(c)

	filter := repository.ListFilter{
		Department: c.Query("department"),
		Status:     c.Query("status"),
	}
	if claims.Role == models.RoleEmployee {
		filter.CreatedBy = claims.Username
	}

	reqs, err := h.engine.List(filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requisitions": reqs})
}

// Get returns one requisition with its decision trail.
func (h *RequisitionHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid requisition id"})
		return
	}

	req, decisions, err := h.engine.Get(id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"requisition": req,
		"decisions":   decisions,
	})
}

type decideRequest struct {
	Stage   string `json:"stage" binding:"required"`
	Outcome string `json:"outcome" binding:"required"`
	Comment string `json:"comment"`
}

// Decide applies one approver decision at an explicit stage.
func (h *RequisitionHandler) Decide(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid requisition id"})
		return
	}

	var req decideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims := auth.ClaimsFrom(c)
	updated, err := h.engine.Decide(workflow.DecideInput{
		RequisitionID: id,
		Stage:         wf.Stage(req.Stage),
		Approver:      claims.Username,
		ApproverRole:  claims.Role,
		Outcome:       req.Outcome,
		Comment:       req.Comment,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

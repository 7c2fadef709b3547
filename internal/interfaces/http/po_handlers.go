package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/procureflow/backend/internal/auth"
	wf "github.com/procureflow/backend/internal/domain/workflow"
	"github.com/procureflow/backend/internal/models"
	"github.com/procureflow/backend/internal/repository"
	"go.uber.org/zap"
)

// PurchaseOrderHandler serves purchase orders and goods receipt notes.
type PurchaseOrderHandler struct {
	orders       *repository.PurchaseOrderRepository
	grns         *repository.GrnRepository
	requisitions *repository.RequisitionRepository
	logger       *zap.Logger
}

// NewPurchaseOrderHandler creates the purchase order handler.
func NewPurchaseOrderHandler(
	orders *repository.PurchaseOrderRepository,
	grns *repository.GrnRepository,
	requisitions *repository.RequisitionRepository,
	logger *zap.Logger,
) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{
		orders:       orders,
		grns:         grns,
		requisitions: requisitions,
		logger:       logger,
	}
}

type poRequest struct {
	RequisitionID *int64              `json:"requisition_id"`
	VendorName    string              `json:"vendor_name" binding:"required"`
	VendorAddress string              `json:"vendor_address"`
	VendorContact string              `json:"vendor_contact"`
	ShipToAddress string              `json:"ship_to_address"`
	LineItems     []models.POLineItem `json:"line_items" binding:"required"`
	Freight       float64             `json:"freight_charges"`
	GSTRate       float64             `json:"gst_rate"`
	PaymentTerms  string              `json:"payment_terms"`
	Department    string              `json:"department"`
}

// Create issues a purchase order, optionally against an approved requisition.
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req poRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.LineItems) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one line item is required"})
		return
	}

	department := req.Department
	if req.RequisitionID != nil {
		requisition, err := h.requisitions.GetByID(*req.RequisitionID)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		if requisition == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "requisition not found"})
			return
		}
		if requisition.Status != wf.StateApproved.String() {
			c.JSON(http.StatusConflict, gin.H{"error": "requisition is not approved"})
			return
		}
		department = requisition.Department
	}

	var subtotal float64
	for _, item := range req.LineItems {
		if item.Quantity <= 0 || item.UnitPrice < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid line item"})
			return
		}
		subtotal += float64(item.Quantity) * item.UnitPrice
	}
	gstAmount := (subtotal + req.Freight) * req.GSTRate / 100

	poNumber, err := h.orders.NextPONumber(time.Now().Year())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	claims := auth.ClaimsFrom(c)
	po := &models.PurchaseOrder{
		PONumber:       poNumber,
		RequisitionID:  req.RequisitionID,
		VendorName:     req.VendorName,
		VendorAddress:  req.VendorAddress,
		VendorContact:  req.VendorContact,
		ShipToAddress:  req.ShipToAddress,
		LineItems:      req.LineItems,
		Subtotal:       subtotal,
		FreightCharges: req.Freight,
		GSTRate:        req.GSTRate,
		GSTAmount:      gstAmount,
		TotalAmount:    subtotal + req.Freight + gstAmount,
		PaymentTerms:   req.PaymentTerms,
		CreatedBy:      claims.Username,
		Department:     department,
		Status:         models.POStatusDraft,
	}
	if err := h.orders.Create(po); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, po)
}

// List returns purchase orders, optionally filtered by department and status.
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	orders, err := h.orders.List(c.Query("department"), c.Query("status"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchase_orders": orders})
}

// Get returns one purchase order with its receipts.
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	po, err := h.orders.GetByID(id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if po == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "purchase order not found"})
		return
	}

	grns, err := h.grns.ListByPurchaseOrder(id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"purchase_order": po,
		"grns":           grns,
	})
}

type poStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus moves a purchase order along its status life, with
// compare-and-set against concurrent updates.
func (h *PurchaseOrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req poStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.IsValidPOStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}

	po, err := h.orders.GetByID(id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if po == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "purchase order not found"})
		return
	}
	if !models.CanTransitionPO(po.Status, req.Status) {
		c.JSON(http.StatusConflict, gin.H{"error": "invalid status transition"})
		return
	}

	moved, err := h.orders.UpdateStatus(id, po.Status, req.Status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if !moved {
		c.JSON(http.StatusConflict, gin.H{"error": "purchase order changed concurrently"})
		return
	}

	po.Status = req.Status
	c.JSON(http.StatusOK, po)
}

// Delete removes a draft purchase order.
func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	po, err := h.orders.GetByID(id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if po == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "purchase order not found"})
		return
	}
	if po.Status != models.POStatusDraft {
		c.JSON(http.StatusConflict, gin.H{"error": "only draft purchase orders can be deleted"})
		return
	}

	if _, err := h.orders.Delete(id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

type grnItemRequest struct {
	ItemName    string `json:"item_name" binding:"required"`
	OrderedQty  int    `json:"ordered_qty"`
	ReceivedQty int    `json:"received_qty"`
	AcceptedQty int    `json:"accepted_qty"`
	RejectedQty int    `json:"rejected_qty"`
	Remarks     string `json:"remarks"`
}

type grnRequest struct {
	PurchaseOrderID int64            `json:"purchase_order_id" binding:"required"`
	Notes           string           `json:"notes"`
	Items           []grnItemRequest `json:"items" binding:"required"`
}

// CreateGrn records a goods receipt against a purchase order.
func (h *PurchaseOrderHandler) CreateGrn(c *gin.Context) {
	var req grnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one received item is required"})
		return
	}
	for _, item := range req.Items {
		if item.ReceivedQty < 0 || item.AcceptedQty+item.RejectedQty > item.ReceivedQty {
			c.JSON(http.StatusBadRequest, gin.H{"error": "accepted plus rejected cannot exceed received"})
			return
		}
	}

	po, err := h.orders.GetByID(req.PurchaseOrderID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if po == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "purchase order not found"})
		return
	}

	grnNumber, err := h.grns.NextGrnNumber(time.Now().Year())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	claims := auth.ClaimsFrom(c)
	grn := &models.Grn{
		GrnNumber:       grnNumber,
		PurchaseOrderID: po.ID,
		ReceivedBy:      claims.Username,
		Notes:           req.Notes,
	}
	for _, item := range req.Items {
		grn.Items = append(grn.Items, &models.GrnItem{
			ItemName:    item.ItemName,
			OrderedQty:  item.OrderedQty,
			ReceivedQty: item.ReceivedQty,
			AcceptedQty: item.AcceptedQty,
			RejectedQty: item.RejectedQty,
			Remarks:     item.Remarks,
		})
	}

	if err := h.grns.Create(nil, grn); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, grn)
}

// ListGrns returns receipts for a purchase order.
func (h *PurchaseOrderHandler) ListGrns(c *gin.Context) {
	poID, err := strconv.ParseInt(c.Query("po_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "po_id is required"})
		return
	}

	grns, err := h.grns.ListByPurchaseOrder(poID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"grns": grns})
}

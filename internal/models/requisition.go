package models

import "time"

// Requisition represents a purchase requisition moving through the approval chain.
type Requisition struct {
	ID         int64              `json:"id"`
	CreatedBy  string             `json:"created_by"`
	Department string             `json:"department"`
	Status     string             `json:"status"` // PENDING_DEPARTMENT_APPROVAL, PENDING_IT_APPROVAL, PENDING_FINANCE_APPROVAL, SENT_BACK, APPROVED, REJECTED
	Items      []*RequisitionItem `json:"items"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// RequisitionItem is a single line item on a requisition.
type RequisitionItem struct {
	ID            int64   `json:"id"`
	RequisitionID int64   `json:"requisition_id"`
	ItemName      string  `json:"item_name"`
	Quantity      int     `json:"quantity"`
	Price         float64 `json:"price"`
}

// LineTotal returns quantity x unit price for the item.
func (i *RequisitionItem) LineTotal() float64 {
	return float64(i.Quantity) * i.Price
}

// TotalAmount returns the sum of line totals over all items.
func (r *Requisition) TotalAmount() float64 {
	var total float64
	for _, item := range r.Items {
		total += item.LineTotal()
	}
	return total
}

package models

import "time"

// Grn is a goods receipt note recorded against a purchase order.
type Grn struct {
	ID              int64      `json:"id"`
	GrnNumber       string     `json:"grn_number"` // GRN-YYYY-NNNN
	PurchaseOrderID int64      `json:"purchase_order_id"`
	ReceivedBy      string     `json:"received_by"`
	Notes           string     `json:"notes,omitempty"`
	Items           []*GrnItem `json:"items"`
	ReceivedAt      time.Time  `json:"received_at"`
}

// GrnItem records received quantities for one ordered line.
type GrnItem struct {
	ID          int64  `json:"id"`
	GrnID       int64  `json:"grn_id"`
	ItemName    string `json:"item_name"`
	OrderedQty  int    `json:"ordered_qty"`
	ReceivedQty int    `json:"received_qty"`
	AcceptedQty int    `json:"accepted_qty"`
	RejectedQty int    `json:"rejected_qty"`
	Remarks     string `json:"remarks,omitempty"`
}

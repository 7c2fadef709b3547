package models

import "time"

// Purchase order status constants.
const (
	POStatusDraft        = "DRAFT"
	POStatusSent         = "SENT"
	POStatusAcknowledged = "ACKNOWLEDGED"
	POStatusCompleted    = "COMPLETED"
	POStatusCancelled    = "CANCELLED"
)

// ValidPOStatuses lists every purchase order status.
var ValidPOStatuses = []string{
	POStatusDraft,
	POStatusSent,
	POStatusAcknowledged,
	POStatusCompleted,
	POStatusCancelled,
}

// IsValidPOStatus reports whether the status is a known purchase order status.
func IsValidPOStatus(status string) bool {
	for _, s := range ValidPOStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// poTransitions is the forward order life of a purchase order. Cancellation
// is allowed from any non-terminal status.
var poTransitions = map[string]string{
	POStatusDraft:        POStatusSent,
	POStatusSent:         POStatusAcknowledged,
	POStatusAcknowledged: POStatusCompleted,
}

// CanTransitionPO reports whether a purchase order may move between the two
// statuses.
func CanTransitionPO(from, to string) bool {
	if to == POStatusCancelled {
		return from != POStatusCompleted && from != POStatusCancelled
	}
	return poTransitions[from] == to
}

// POLineItem is one line on a purchase order.
type POLineItem struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// PurchaseOrder is issued by finance against an approved requisition.
type PurchaseOrder struct {
	ID             int64        `json:"id"`
	PONumber       string       `json:"po_number"` // PO-YYYY-NNNN
	RequisitionID  *int64       `json:"requisition_id,omitempty"`
	VendorName     string       `json:"vendor_name"`
	VendorAddress  string       `json:"vendor_address,omitempty"`
	VendorContact  string       `json:"vendor_contact,omitempty"`
	ShipToAddress  string       `json:"ship_to_address,omitempty"`
	LineItems      []POLineItem `json:"line_items"`
	Subtotal       float64      `json:"subtotal"`
	FreightCharges float64      `json:"freight_charges"`
	GSTRate        float64      `json:"gst_rate"` // percentage
	GSTAmount      float64      `json:"gst_amount"`
	TotalAmount    float64      `json:"total_amount"`
	PaymentTerms   string       `json:"payment_terms,omitempty"`
	CreatedBy      string       `json:"created_by"`
	Department     string       `json:"department"`
	Status         string       `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

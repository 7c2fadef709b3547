package models

import "time"

// Document approval stage constants. The stage only moves forward; rejection
// is terminal from any stage.
const (
	DocStageDepartment = "DEPARTMENT"
	DocStageIT         = "IT"
	DocStageFinance    = "FINANCE"
	DocStageApproved   = "APPROVED"
)

// VendorDocument is an uploaded vendor PDF moving through its own approval
// chain, independent of any linked requisition.
type VendorDocument struct {
	ID              int64     `json:"id"`
	FileName        string    `json:"file_name"` // stored name on disk
	OriginalName    string    `json:"original_name"`
	UploadedBy      string    `json:"uploaded_by"`
	Description     string    `json:"description"`
	RequisitionID   *int64    `json:"requisition_id,omitempty"` // nullable link
	PageCount       int       `json:"page_count"`
	ApprovalStage   string    `json:"approval_stage"` // DEPARTMENT, IT, FINANCE, APPROVED
	Rejected        bool      `json:"rejected"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	Processed       bool      `json:"processed"` // legacy alias for reaching APPROVED
	UploadedAt      time.Time `json:"uploaded_at"`
}

// Terminal reports whether the document can receive no further decisions.
func (d *VendorDocument) Terminal() bool {
	return d.Rejected || d.ApprovalStage == DocStageApproved
}

package models

import "time"

// Decision outcome constants.
const (
	OutcomeApprove  = "APPROVE"
	OutcomeReject   = "REJECT"
	OutcomeSendBack = "SEND_BACK"
)

// Decision target type constants.
const (
	TargetRequisition = "REQUISITION"
	TargetDocument    = "DOCUMENT"
)

// Decision is one append-only audit record of an approver's action at a stage.
// Records are never mutated or deleted.
type Decision struct {
	ID           int64     `json:"id"`
	TargetType   string    `json:"target_type"` // REQUISITION or DOCUMENT
	TargetID     int64     `json:"target_id"`
	Stage        string    `json:"stage"` // DEPARTMENT, IT, FINANCE
	Approver     string    `json:"approver"`
	ApproverRole string    `json:"approver_role"`
	Outcome      string    `json:"outcome"` // APPROVE, REJECT, SEND_BACK
	Comment      string    `json:"comment,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

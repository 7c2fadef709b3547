package models

import (
	"time"

	wf "github.com/procureflow/backend/internal/domain/workflow"
)

// Department is a master-data record backing both the approval chain
// configuration and the budget pool.
type Department struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	ManagerName     string    `json:"manager_name,omitempty"`
	ManagerUsername string    `json:"manager_username,omitempty"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ApprovalWorkflow is the per-department approval chain configuration. Step N
// corresponds to stage N of the fixed Department -> IT -> Finance order; an
// empty step role means the stage is skipped. Deactivating a workflow does not
// retroactively alter requisitions already mid-chain.
type ApprovalWorkflow struct {
	ID         int64     `json:"id"`
	Department string    `json:"department"`
	Step1Role  string    `json:"step1_role"` // Department stage approver role
	Step2Role  string    `json:"step2_role"` // IT stage approver role
	Step3Role  string    `json:"step3_role"` // Finance stage approver role
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Chain returns the ordered list of configured stages, skipping empty steps.
func (w *ApprovalWorkflow) Chain() []wf.Stage {
	var chain []wf.Stage
	if w.Step1Role != "" {
		chain = append(chain, wf.StageDepartment)
	}
	if w.Step2Role != "" {
		chain = append(chain, wf.StageIT)
	}
	if w.Step3Role != "" {
		chain = append(chain, wf.StageFinance)
	}
	return chain
}

// RoleForStage returns the approver role configured for the stage, or "" if
// the stage is not part of this workflow.
func (w *ApprovalWorkflow) RoleForStage(stage wf.Stage) string {
	switch stage {
	case wf.StageDepartment:
		return w.Step1Role
	case wf.StageIT:
		return w.Step2Role
	case wf.StageFinance:
		return w.Step3Role
	}
	return ""
}

package workflow

import (
	"database/sql"
	"fmt"

	wf "github.com/procureflow/backend/internal/domain/workflow"
	"github.com/procureflow/backend/internal/models"
	"github.com/procureflow/backend/internal/repository"
	"github.com/procureflow/backend/pkg/database"
	"github.com/procureflow/backend/pkg/utils"
	"go.uber.org/zap"
)

// fallbackChain is used when a department has no active workflow: the
// requisition proceeds directly to the IT stage, then Finance.
var fallbackChain = []wf.Stage{wf.StageIT, wf.StageFinance}

// defaultRoleForStage is the approver role required at each stage when the
// department workflow does not name one.
var defaultRoleForStage = map[wf.Stage]string{
	wf.StageDepartment: models.RoleDepartmentManager,
	wf.StageIT:         models.RoleITManager,
	wf.StageFinance:    models.RoleFinanceManager,
}

// RequisitionApprovalEngine validates and applies stage decisions to
// requisitions. Every decision runs in one transaction: the status
// compare-and-set, the audit record, any budget debit, and the creator's
// notification commit or fail together.
type RequisitionApprovalEngine struct {
	db            *database.DB
	requisitions  *repository.RequisitionRepository
	decisions     *repository.DecisionRepository
	workflows     *repository.WorkflowRepository
	budgets       *repository.BudgetRepository
	notifications *repository.NotificationRepository
	notifier      Notifier
	logger        *zap.Logger
}

// NewRequisitionApprovalEngine creates the engine. notifier may be nil.
func NewRequisitionApprovalEngine(
	db *database.DB,
	requisitions *repository.RequisitionRepository,
	decisions *repository.DecisionRepository,
	workflows *repository.WorkflowRepository,
	budgets *repository.BudgetRepository,
	notifications *repository.NotificationRepository,
	notifier Notifier,
	logger *zap.Logger,
) *RequisitionApprovalEngine {
	return &RequisitionApprovalEngine{
		db:            db,
		requisitions:  requisitions,
		decisions:     decisions,
		workflows:     workflows,
		budgets:       budgets,
		notifications: notifications,
		notifier:      notifier,
		logger:        logger,
	}
}

// SubmitInput carries a new requisition.
type SubmitInput struct {
	CreatedBy  string
	Department string
	Items      []*models.RequisitionItem
}

// DecideInput carries one approver decision. Stage is explicit: the caller
// states which stage it is deciding, and the engine verifies that against the
// requisition's current status.
type DecideInput struct {
	RequisitionID int64
	Stage         wf.Stage
	Approver      string
	ApproverRole  string
	Outcome       string
	Comment       string
}

func validateItems(items []*models.RequisitionItem) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: requisition needs at least one line item", ErrValidation)
	}
	for _, item := range items {
		if err := utils.ValidateLineItem(item.ItemName, item.Quantity, item.Price); err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}
	return nil
}

// resolveChain determines the ordered approval stages for a department. A
// department without an active workflow falls back to IT then Finance; an
// active workflow whose every step is empty is a configuration error.
func (e *RequisitionApprovalEngine) resolveChain(department string) ([]wf.Stage, *models.ApprovalWorkflow, error) {
	cfg, err := e.workflows.GetActiveByDepartment(department)
	if err != nil {
		return nil, nil, err
	}
	if cfg == nil {
		return fallbackChain, nil, nil
	}

	chain := cfg.Chain()
	if len(chain) == 0 {
		return nil, nil, fmt.Errorf("%w: workflow for %s has no configured steps", ErrConfiguration, department)
	}
	return chain, cfg, nil
}

// requiredRole returns the approver role for a stage, preferring the
// department workflow's configured role over the default mapping.
func requiredRole(cfg *models.ApprovalWorkflow, stage wf.Stage) string {
	if cfg != nil {
		if role := cfg.RoleForStage(stage); role != "" {
			return role
		}
	}
	return defaultRoleForStage[stage]
}

func triggerForOutcome(outcome string) (wf.Trigger, error) {
	switch outcome {
	case models.OutcomeApprove:
		return wf.TriggerApprove, nil
	case models.OutcomeReject:
		return wf.TriggerReject, nil
	case models.OutcomeSendBack:
		return wf.TriggerSendBack, nil
	}
	return "", fmt.Errorf("%w: unknown outcome %q", ErrValidation, outcome)
}

// Submit creates a requisition in the first pending stage of its department's
// chain.
func (e *RequisitionApprovalEngine) Submit(in SubmitInput) (*models.Requisition, error) {
	if in.CreatedBy == "" || in.Department == "" {
		return nil, fmt.Errorf("%w: creator and department are required", ErrValidation)
	}
	if err := validateItems(in.Items); err != nil {
		return nil, err
	}

	chain, _, err := e.resolveChain(in.Department)
	if err != nil {
		return nil, err
	}

	req := &models.Requisition{
		CreatedBy:  in.CreatedBy,
		Department: in.Department,
		Status:     chain[0].PendingState().String(),
		Items:      in.Items,
	}

	err = e.db.WithTransaction(func(tx *sql.Tx) error {
		return e.requisitions.Create(tx, req)
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Requisition submitted",
		zap.Int64("id", req.ID),
		zap.String("department", req.Department),
		zap.String("status", req.Status),
		zap.Float64("amount", req.TotalAmount()))
	return req, nil
}

// Decide applies one approver decision at the stated stage.
func (e *RequisitionApprovalEngine) Decide(in DecideInput) (*models.Requisition, error) {
	if !in.Stage.IsValid() {
		return nil, fmt.Errorf("%w: unknown stage %q", ErrValidation, in.Stage)
	}
	trigger, err := triggerForOutcome(in.Outcome)
	if err != nil {
		return nil, err
	}

	req, err := e.requisitions.GetByID(in.RequisitionID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("%w: requisition %d", ErrNotFound, in.RequisitionID)
	}

	current := wf.State(req.Status)
	currentStage, pending := wf.StageForState(current)
	if !pending {
		return nil, fmt.Errorf("%w: requisition %d is %s", ErrInvalidState, req.ID, req.Status)
	}
	if in.Stage != currentStage {
		return nil, fmt.Errorf("%w: requisition %d is pending %s, not %s",
			ErrInvalidState, req.ID, currentStage, in.Stage)
	}

	chain, cfg, err := e.resolveChain(req.Department)
	if err != nil {
		return nil, err
	}
	if !stageInChain(chain, currentStage) {
		// Workflow changed under an in-flight requisition. Let it finish on
		// the remainder of the full stage order rather than strand it.
		chain = remainingStages(currentStage)
		cfg = nil
	}

	if in.ApproverRole != models.RoleSuperadmin && in.ApproverRole != requiredRole(cfg, currentStage) {
		return nil, fmt.Errorf("%w: role %s cannot decide the %s stage",
			ErrUnauthorized, in.ApproverRole, currentStage)
	}

	machine, err := wf.BuildRequisitionMachine(chain, current)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if err := machine.Fire(trigger); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	next := machine.State()

	err = e.db.WithTransaction(func(tx *sql.Tx) error {
		moved, err := e.requisitions.UpdateStatus(tx, req.ID, req.Status, next.String())
		if err != nil {
			return err
		}
		if !moved {
			return fmt.Errorf("%w: requisition %d was decided concurrently", ErrInvalidState, req.ID)
		}

		decision := &models.Decision{
			TargetType:   models.TargetRequisition,
			TargetID:     req.ID,
			Stage:        currentStage.String(),
			Approver:     in.Approver,
			ApproverRole: in.ApproverRole,
			Outcome:      in.Outcome,
			Comment:      utils.SanitizeString(in.Comment),
		}
		if err := e.decisions.Create(tx, decision); err != nil {
			return err
		}

		if next == wf.StateApproved {
			debited, err := e.budgets.Debit(tx, req.Department, req.TotalAmount())
			if err != nil {
				return err
			}
			if !debited {
				// Budgets are seeded by admins, never auto-created. An approval
				// must debit, so without a budget row the whole decision fails.
				return fmt.Errorf("%w: no budget for department %s", ErrNotFound, req.Department)
			}
		}

		notification := &models.Notification{
			UserID:  req.CreatedBy,
			Message: decisionMessage(req.ID, currentStage, in.Outcome),
		}
		return e.notifications.Create(tx, notification)
	})
	if err != nil {
		return nil, err
	}

	req.Status = next.String()
	e.logger.Info("Requisition decision applied",
		zap.Int64("id", req.ID),
		zap.String("stage", currentStage.String()),
		zap.String("outcome", in.Outcome),
		zap.String("status", req.Status))

	if e.notifier != nil {
		e.notifier.Notify(req.CreatedBy, decisionMessage(req.ID, currentStage, in.Outcome))
	}
	return req, nil
}

// Resubmit replaces a sent-back requisition's items and re-enters the chain
// at stage 1. Only the creator may resubmit.
func (e *RequisitionApprovalEngine) Resubmit(requisitionID int64, actor string, items []*models.RequisitionItem) (*models.Requisition, error) {
	if err := validateItems(items); err != nil {
		return nil, err
	}

	req, err := e.requisitions.GetByID(requisitionID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("%w: requisition %d", ErrNotFound, requisitionID)
	}
	if req.CreatedBy != actor {
		return nil, fmt.Errorf("%w: only the creator may resubmit", ErrUnauthorized)
	}
	if wf.State(req.Status) != wf.StateSentBack {
		return nil, fmt.Errorf("%w: requisition %d is %s, not %s",
			ErrInvalidState, req.ID, req.Status, wf.StateSentBack)
	}

	chain, _, err := e.resolveChain(req.Department)
	if err != nil {
		return nil, err
	}
	first := chain[0].PendingState()

	err = e.db.WithTransaction(func(tx *sql.Tx) error {
		if err := e.requisitions.ReplaceItems(tx, req.ID, items); err != nil {
			return err
		}
		moved, err := e.requisitions.UpdateStatus(tx, req.ID, req.Status, first.String())
		if err != nil {
			return err
		}
		if !moved {
			return fmt.Errorf("%w: requisition %d changed concurrently", ErrInvalidState, req.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	req.Status = first.String()
	req.Items = items
	e.logger.Info("Requisition resubmitted", zap.Int64("id", req.ID), zap.String("status", req.Status))
	return req, nil
}

// Get retrieves a requisition together with its decision history.
func (e *RequisitionApprovalEngine) Get(id int64) (*models.Requisition, []*models.Decision, error) {
	req, err := e.requisitions.GetByID(id)
	if err != nil {
		return nil, nil, err
	}
	if req == nil {
		return nil, nil, fmt.Errorf("%w: requisition %d", ErrNotFound, id)
	}

	decisions, err := e.decisions.ListByTarget(models.TargetRequisition, id)
	if err != nil {
		return nil, nil, err
	}
	return req, decisions, nil
}

// List retrieves requisitions with optional filters.
func (e *RequisitionApprovalEngine) List(filter repository.ListFilter) ([]*models.Requisition, error) {
	return e.requisitions.List(filter)
}

func stageInChain(chain []wf.Stage, stage wf.Stage) bool {
	for _, s := range chain {
		if s == stage {
			return true
		}
	}
	return false
}

// remainingStages returns the suffix of the full Department -> IT -> Finance
// order starting at the given stage.
func remainingStages(from wf.Stage) []wf.Stage {
	full := []wf.Stage{wf.StageDepartment, wf.StageIT, wf.StageFinance}
	for i, s := range full {
		if s == from {
			return full[i:]
		}
	}
	return full
}

func decisionMessage(requisitionID int64, stage wf.Stage, outcome string) string {
	switch outcome {
	case models.OutcomeApprove:
		return fmt.Sprintf("Requisition #%d was approved at the %s stage", requisitionID, stage)
	case models.OutcomeReject:
		return fmt.Sprintf("Requisition #%d was rejected at the %s stage", requisitionID, stage)
	case models.OutcomeSendBack:
		return fmt.Sprintf("Requisition #%d was sent back for revision", requisitionID)
	}
	return fmt.Sprintf("Requisition #%d was updated", requisitionID)
}

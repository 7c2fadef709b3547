package workflow

import (
	"database/sql"
	"sync"
	"testing"

	wf "github.com/procureflow/backend/internal/domain/workflow"
	"github.com/procureflow/backend/internal/models"
	"github.com/procureflow/backend/internal/repository"
	"github.com/procureflow/backend/migrations"
	"github.com/procureflow/backend/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type harness struct {
	db            *database.DB
	engine        *RequisitionApprovalEngine
	docEngine     *DocumentApprovalEngine
	requisitions  *repository.RequisitionRepository
	decisions     *repository.DecisionRepository
	workflows     *repository.WorkflowRepository
	budgets       *repository.BudgetRepository
	documents     *repository.DocumentRepository
	notifications *repository.NotificationRepository
}

// newHarness builds the engines over a fresh in-memory database with the full
// schema applied. A single connection keeps every query on the same in-memory
// instance.
func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := zap.NewNop()

	db, err := database.NewMemory(logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.NewMigrator(db, logger).Run(migrations.FS))

	h := &harness{
		db:            db,
		requisitions:  repository.NewRequisitionRepository(db.DB, logger),
		decisions:     repository.NewDecisionRepository(db.DB, logger),
		workflows:     repository.NewWorkflowRepository(db.DB, logger),
		budgets:       repository.NewBudgetRepository(db.DB, logger),
		documents:     repository.NewDocumentRepository(db.DB, logger),
		notifications: repository.NewNotificationRepository(db.DB, logger),
	}
	h.engine = NewRequisitionApprovalEngine(
		db, h.requisitions, h.decisions, h.workflows, h.budgets, h.notifications, nil, logger)
	h.docEngine = NewDocumentApprovalEngine(
		db, h.documents, h.decisions, h.notifications, nil, logger)
	return h
}

func (h *harness) seedWorkflow(t *testing.T, department, step1, step2, step3 string) {
	t.Helper()
	require.NoError(t, h.workflows.Create(&models.ApprovalWorkflow{
		Department: department,
		Step1Role:  step1,
		Step2Role:  step2,
		Step3Role:  step3,
		Active:     true,
	}))
}

func (h *harness) seedBudget(t *testing.T, department string, total float64) {
	t.Helper()
	_, err := h.budgets.SetAllocation(department, total)
	require.NoError(t, err)
}

func items(lines ...models.RequisitionItem) []*models.RequisitionItem {
	out := make([]*models.RequisitionItem, len(lines))
	for i := range lines {
		out[i] = &lines[i]
	}
	return out
}

func (h *harness) submit(t *testing.T, creator, department string, lines ...models.RequisitionItem) *models.Requisition {
	t.Helper()
	req, err := h.engine.Submit(SubmitInput{
		CreatedBy:  creator,
		Department: department,
		Items:      items(lines...),
	})
	require.NoError(t, err)
	return req
}

func (h *harness) decide(t *testing.T, id int64, stage wf.Stage, approver, role, outcome string) *models.Requisition {
	t.Helper()
	req, err := h.engine.Decide(DecideInput{
		RequisitionID: id,
		Stage:         stage,
		Approver:      approver,
		ApproverRole:  role,
		Outcome:       outcome,
	})
	require.NoError(t, err)
	return req
}

func TestSubmitEntersFirstConfiguredStage(t *testing.T) {
	h := newHarness(t)
	h.seedWorkflow(t, "Sales", models.RoleDepartmentManager, models.RoleITManager, models.RoleFinanceManager)

	req := h.submit(t, "alice", "Sales", models.RequisitionItem{ItemName: "Laptop", Quantity: 2, Price: 1200})

	assert.Equal(t, wf.StatePendingDepartment.String(), req.Status)
	assert.NotZero(t, req.ID)
}

func TestSubmitSkipsEmptySteps(t *testing.T) {
	h := newHarness(t)
	h.seedWorkflow(t, "Sales", "", models.RoleITManager, models.RoleFinanceManager)

	req := h.submit(t, "alice", "Sales", models.RequisitionItem{ItemName: "Laptop", Quantity: 1, Price: 1000})

	assert.Equal(t, wf.StatePendingIT.String(), req.Status)
}

func TestSubmitFallsBackToITWhenNoWorkflow(t *testing.T) {
	h := newHarness(t)

	req := h.submit(t, "alice", "Marketing", models.RequisitionItem{ItemName: "Banner", Quantity: 5, Price: 40})

	assert.Equal(t, wf.StatePendingIT.String(), req.Status)
}

func TestSubmitRejectsInvalidItems(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name  string
		items []*models.RequisitionItem
	}{
		{"no items", nil},
		{"empty name", items(models.RequisitionItem{ItemName: "  ", Quantity: 1, Price: 10})},
		{"zero quantity", items(models.RequisitionItem{ItemName: "Desk", Quantity: 0, Price: 10})},
		{"negative price", items(models.RequisitionItem{ItemName: "Desk", Quantity: 1, Price: -1})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.engine.Submit(SubmitInput{CreatedBy: "alice", Department: "Sales", Items: tt.items})
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestSubmitWorkflowWithNoStepsIsConfigurationError(t *testing.T) {
	h := newHarness(t)
	h.seedWorkflow(t, "Sales", "", "", "")

	_, err := h.engine.Submit(SubmitInput{
		CreatedBy:  "alice",
		Department: "Sales",
		Items:      items(models.RequisitionItem{ItemName: "Desk", Quantity: 1, Price: 10}),
	})
	assert.ErrorIs(t, err, ErrConfiguration)
}

// Full chain walk-through: a 50000 requisition against a 200000 Sales budget
// passes all three stages, the budget is debited once, and the trail holds one
// decision per stage.
func TestFullApprovalChainDebitsBudgetOnce(t *testing.T) {
	h := newHarness(t)
	h.seedWorkflow(t, "Sales", models.RoleDepartmentManager, models.RoleITManager, models.RoleFinanceManager)
	h.seedBudget(t, "Sales", 200000)

	req := h.submit(t, "alice", "Sales", models.RequisitionItem{ItemName: "Servers", Quantity: 5, Price: 10000})
	require.Equal(t, 50000.0, req.TotalAmount())

	req = h.decide(t, req.ID, wf.StageDepartment, "dave", models.RoleDepartmentManager, models.OutcomeApprove)
	assert.Equal(t, wf.StatePendingIT.String(), req.Status)

	req = h.decide(t, req.ID, wf.StageIT, "ian", models.RoleITManager, models.OutcomeApprove)
	assert.Equal(t, wf.StatePendingFinance.String(), req.Status)

	req = h.decide(t, req.ID, wf.StageFinance, "fred", models.RoleFinanceManager, models.OutcomeApprove)
	assert.Equal(t, wf.StateApproved.String(), req.Status)

	b, err := h.budgets.GetByDepartment("Sales")
	require.NoError(t, err)
	assert.Equal(t, 50000.0, b.Used)
	assert.Equal(t, 150000.0, b.Remaining())

	trail, err := h.decisions.ListByTarget(models.TargetRequisition, req.ID)
	require.NoError(t, err)
	require.Len(t, trail, 3)
	assert.Equal(t, wf.StageDepartment.String(), trail[0].Stage)
	assert.Equal(t, wf.StageIT.String(), trail[1].Stage)
	assert.Equal(t, wf.StageFinance.String(), trail[2].Stage)

	// Terminal: nothing more can be decided, and the debit stays at once.
	_, err = h.engine.Decide(DecideInput{
		RequisitionID: req.ID,
		Stage:         wf.StageFinance,
		Approver:      "fred",
		ApproverRole:  models.RoleFinanceManager,
		Outcome:       models.OutcomeApprove,
	})
	assert.ErrorIs(t, err, ErrInvalidState)

	b, err = h.budgets.GetByDepartment("Sales")
	require.NoError(t, err)
	assert.Equal(t, 50000.0, b.Used)
}

func TestDecideRejectsWrongRole(t *testing.T) {
	h := newHarness(t)
	h.seedWorkflow(t, "Sales", models.RoleDepartmentManager, models.RoleITManager, models.RoleFinanceManager)
	req := h.submit(t, "alice", "Sales", models.RequisitionItem{ItemName: "Desk", Quantity: 1, Price: 500})

	_, err := h.engine.Decide(DecideInput{
		RequisitionID: req.ID,
		Stage:         wf.StageDepartment,
		Approver:      "ian",
		ApproverRole:  models.RoleITManager,
		Outcome:       models.OutcomeApprove,
	})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSuperadminMayDecideAnyStage(t *testing.T) {
	h := newHarness(t)
	h.seedWorkflow(t, "Sales", models.RoleDepartmentManager, models.RoleITManager, models.RoleFinanceManager)
	req := h.submit(t, "alice", "Sales", models.RequisitionItem{ItemName: "Desk", Quantity: 1, Price: 500})

	req = h.decide(t, req.ID, wf.StageDepartment, "root", models.RoleSuperadmin, models.OutcomeApprove)
	assert.Equal(t, wf.StatePendingIT.String(), req.Status)

	req = h.decide(t, req.ID, wf.StageIT, "root", models.RoleSuperadmin, models.OutcomeApprove)
	assert.Equal(t, wf.StatePendingFinance.String(), req.Status)
}

func TestDecideRejectsWrongStage(t *testing.T) {
	h := newHarness(t)
	h.seedWorkflow(t, "Sales", models.RoleDepartmentManager, models.RoleITManager, models.RoleFinanceManager)
	req := h.submit(t, "alice", "Sales", models.RequisitionItem{ItemName: "Desk", Quantity: 1, Price: 500})

	// Finance manager tries to decide the Finance stage while the requisition
	// still waits on Department.
	_, err := h.engine.Decide(DecideInput{
		RequisitionID: req.ID,
		Stage:         wf.StageFinance,
		Approver:      "fred",
		ApproverRole:  models.RoleFinanceManager,
		Outcome:       models.OutcomeApprove,
	})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRejectIsTerminalAndSkipsBudget(t *testing.T) {
	h := newHarness(t)
	h.seedWorkflow(t, "Sales", models.RoleDepartmentManager, models.RoleITManager, models.RoleFinanceManager)
	h.seedBudget(t, "Sales", 100000)
	req := h.submit(t, "alice", "Sales", models.RequisitionItem{ItemName: "Desk", Quantity: 1, Price: 500})

	req = h.decide(t, req.ID, wf.StageDepartment, "dave", models.RoleDepartmentManager, models.OutcomeApprove)
	req = h.decide(t, req.ID, wf.StageIT, "ian", models.RoleITManager, models.OutcomeReject)
	assert.Equal(t, wf.StateRejected.String(), req.Status)

	b, err := h.budgets.GetByDepartment("Sales")
	require.NoError(t, err)
	assert.Zero(t, b.Used)

	_, err = h.engine.Decide(DecideInput{
		RequisitionID: req.ID,
		Stage:         wf.StageIT,
		Approver:      "ian",
		ApproverRole:  models.RoleITManager,
		Outcome:       models.OutcomeApprove,
	})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSendBackOnlyAtChainHead(t *testing.T) {
	h := newHarness(t)
	h.seedWorkflow(t, "Sales", models.RoleDepartmentManager, models.RoleITManager, models.RoleFinanceManager)
	req := h.submit(t, "alice", "Sales", models.RequisitionItem{ItemName: "Desk", Quantity: 1, Price: 500})

	req = h.decide(t, req.ID, wf.StageDepartment, "dave", models.RoleDepartmentManager, models.OutcomeApprove)

	_, err := h.engine.Decide(DecideInput{
		RequisitionID: req.ID,
		Stage:         wf.StageIT,
		Approver:      "ian",
		ApproverRole:  models.RoleITManager,
		Outcome:       models.OutcomeSendBack,
	})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSendBackAndResubmitRestartsChain(t *testing.T) {
	h := newHarness(t)
	h.seedWorkflow(t, "Sales", models.RoleDepartmentManager, models.RoleITManager, models.RoleFinanceManager)
	req := h.submit(t, "alice", "Sales", models.RequisitionItem{ItemName: "Desk", Quantity: 2, Price: 500})

	req = h.decide(t, req.ID, wf.StageDepartment, "dave", models.RoleDepartmentManager, models.OutcomeSendBack)
	assert.Equal(t, wf.StateSentBack.String(), req.Status)

	// While sent back, no approver may act on it.
	_, err := h.engine.Decide(DecideInput{
		RequisitionID: req.ID,
		Stage:         wf.StageDepartment,
		Approver:      "dave",
		ApproverRole:  models.RoleDepartmentManager,
		Outcome:       models.OutcomeApprove,
	})
	assert.ErrorIs(t, err, ErrInvalidState)

	// Only the creator may resubmit.
	_, err = h.engine.Resubmit(req.ID, "mallory",
		items(models.RequisitionItem{ItemName: "Desk", Quantity: 1, Price: 500}))
	assert.ErrorIs(t, err, ErrUnauthorized)

	req, err = h.engine.Resubmit(req.ID, "alice",
		items(models.RequisitionItem{ItemName: "Standing desk", Quantity: 1, Price: 1020}))
	require.NoError(t, err)
	assert.Equal(t, wf.StatePendingDepartment.String(), req.Status)
	assert.Equal(t, 1020.0, req.TotalAmount())

	stored, err := h.requisitions.GetByID(req.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "Standing desk", stored.Items[0].ItemName)
}

func TestResubmitRequiresSentBackStatus(t *testing.T) {
	h := newHarness(t)
	h.seedWorkflow(t, "Sales", models.RoleDepartmentManager, models.RoleITManager, models.RoleFinanceManager)
	req := h.submit(t, "alice", "Sales", models.RequisitionItem{ItemName: "Desk", Quantity: 1, Price: 500})

	_, err := h.engine.Resubmit(req.ID, "alice",
		items(models.RequisitionItem{ItemName: "Desk", Quantity: 1, Price: 400}))
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestDecideUnknownRequisition(t *testing.T) {
	h := newHarness(t)

	_, err := h.engine.Decide(DecideInput{
		RequisitionID: 9999,
		Stage:         wf.StageIT,
		Approver:      "ian",
		ApproverRole:  models.RoleITManager,
		Outcome:       models.OutcomeApprove,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDecideUnknownOutcome(t *testing.T) {
	h := newHarness(t)
	h.seedWorkflow(t, "Sales", models.RoleDepartmentManager, models.RoleITManager, models.RoleFinanceManager)
	req := h.submit(t, "alice", "Sales", models.RequisitionItem{ItemName: "Desk", Quantity: 1, Price: 500})

	_, err := h.engine.Decide(DecideInput{
		RequisitionID: req.ID,
		Stage:         wf.StageDepartment,
		Approver:      "dave",
		ApproverRole:  models.RoleDepartmentManager,
		Outcome:       "ESCALATE",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDecisionNotifiesCreator(t *testing.T) {
	h := newHarness(t)
	h.seedWorkflow(t, "Sales", models.RoleDepartmentManager, models.RoleITManager, models.RoleFinanceManager)
	req := h.submit(t, "alice", "Sales", models.RequisitionItem{ItemName: "Desk", Quantity: 1, Price: 500})

	h.decide(t, req.ID, wf.StageDepartment, "dave", models.RoleDepartmentManager, models.OutcomeApprove)

	feed, err := h.notifications.ListByUser("alice", true)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Contains(t, feed[0].Message, "approved")
}

// A terminal approval must debit; without a budget row the whole decision
// fails and nothing is written.
func TestApproveWithoutBudgetRowFailsWholeDecision(t *testing.T) {
	h := newHarness(t)
	h.seedWorkflow(t, "Sales", models.RoleDepartmentManager, "", "")
	req := h.submit(t, "alice", "Sales", models.RequisitionItem{ItemName: "Plotter", Quantity: 1, Price: 2500})

	_, err := h.engine.Decide(DecideInput{
		RequisitionID: req.ID,
		Stage:         wf.StageDepartment,
		Approver:      "dave",
		ApproverRole:  models.RoleDepartmentManager,
		Outcome:       models.OutcomeApprove,
	})
	assert.ErrorIs(t, err, ErrNotFound)

	stored, err := h.requisitions.GetByID(req.ID)
	require.NoError(t, err)
	assert.Equal(t, wf.StatePendingDepartment.String(), stored.Status)

	trail, err := h.decisions.ListByTarget(models.TargetRequisition, req.ID)
	require.NoError(t, err)
	assert.Empty(t, trail)

	feed, err := h.notifications.ListByUser("alice", false)
	require.NoError(t, err)
	assert.Empty(t, feed)

	// A rejection touches no budget and still goes through.
	req, err = h.engine.Decide(DecideInput{
		RequisitionID: req.ID,
		Stage:         wf.StageDepartment,
		Approver:      "dave",
		ApproverRole:  models.RoleDepartmentManager,
		Outcome:       models.OutcomeReject,
	})
	require.NoError(t, err)
	assert.Equal(t, wf.StateRejected.String(), req.Status)
}

// Two approvers racing the same stage: exactly one decision lands, the other
// observes the already-moved status, and the budget is debited once.
func TestConcurrentDecidesOnlyOneSucceeds(t *testing.T) {
	h := newHarness(t)
	h.seedWorkflow(t, "Sales", models.RoleDepartmentManager, "", "")
	h.seedBudget(t, "Sales", 10000)
	req := h.submit(t, "alice", "Sales", models.RequisitionItem{ItemName: "Desk", Quantity: 1, Price: 500})

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.engine.Decide(DecideInput{
				RequisitionID: req.ID,
				Stage:         wf.StageDepartment,
				Approver:      "dave",
				ApproverRole:  models.RoleDepartmentManager,
				Outcome:       models.OutcomeApprove,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var won, lost int
	for err := range errs {
		if err == nil {
			won++
		} else {
			assert.ErrorIs(t, err, ErrInvalidState)
			lost++
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, lost)

	stored, err := h.requisitions.GetByID(req.ID)
	require.NoError(t, err)
	assert.Equal(t, wf.StateApproved.String(), stored.Status)

	b, err := h.budgets.GetByDepartment("Sales")
	require.NoError(t, err)
	assert.Equal(t, 500.0, b.Used)

	trail, err := h.decisions.ListByTarget(models.TargetRequisition, req.ID)
	require.NoError(t, err)
	assert.Len(t, trail, 1)
}

// The status update is compare-and-set: a stale expected status writes
// nothing, which is how a lost race surfaces as an invalid-state error.
func TestUpdateStatusIsCompareAndSet(t *testing.T) {
	h := newHarness(t)
	h.seedWorkflow(t, "Sales", models.RoleDepartmentManager, models.RoleITManager, models.RoleFinanceManager)
	req := h.submit(t, "alice", "Sales", models.RequisitionItem{ItemName: "Desk", Quantity: 1, Price: 500})

	err := h.db.WithTransaction(func(tx *sql.Tx) error {
		moved, err := h.requisitions.UpdateStatus(tx, req.ID,
			wf.StatePendingFinance.String(), wf.StateApproved.String())
		require.NoError(t, err)
		assert.False(t, moved)
		return nil
	})
	require.NoError(t, err)

	stored, err := h.requisitions.GetByID(req.ID)
	require.NoError(t, err)
	assert.Equal(t, wf.StatePendingDepartment.String(), stored.Status)
}

// Over-approval is allowed: the ledger has no ceiling, so remaining may go
// negative.
func TestApprovalMayOverspendBudget(t *testing.T) {
	h := newHarness(t)
	h.seedWorkflow(t, "Sales", models.RoleDepartmentManager, "", "")
	h.seedBudget(t, "Sales", 1000)
	req := h.submit(t, "alice", "Sales", models.RequisitionItem{ItemName: "Plotter", Quantity: 1, Price: 2500})

	req = h.decide(t, req.ID, wf.StageDepartment, "dave", models.RoleDepartmentManager, models.OutcomeApprove)
	assert.Equal(t, wf.StateApproved.String(), req.Status)

	b, err := h.budgets.GetByDepartment("Sales")
	require.NoError(t, err)
	assert.Equal(t, 2500.0, b.Used)
	assert.Equal(t, -1500.0, b.Remaining())
}

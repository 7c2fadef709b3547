package budget

import (
	"database/sql"
	"fmt"

	"github.com/procureflow/backend/internal/models"
	"github.com/procureflow/backend/internal/repository"
	"go.uber.org/zap"
)

// Status is a budget row with its derived remaining amount and health band.
type Status struct {
	Department string  `json:"department"`
	Total      float64 `json:"total"`
	Used       float64 `json:"used"`
	Remaining  float64 `json:"remaining"`
	Health     Health  `json:"health"`
}

// Ledger tracks per-department allocation and consumption. There is no
// ceiling on used: remaining may go negative when approvals outrun the
// allocation.
type Ledger struct {
	budgets *repository.BudgetRepository
	logger  *zap.Logger
}

// NewLedger creates a budget ledger.
func NewLedger(budgets *repository.BudgetRepository, logger *zap.Logger) *Ledger {
	return &Ledger{
		budgets: budgets,
		logger:  logger,
	}
}

func statusOf(b *models.Budget) *Status {
	return &Status{
		Department: b.Department,
		Total:      b.Total,
		Used:       b.Used,
		Remaining:  b.Remaining(),
		Health:     Classify(b.Total, b.Used),
	}
}

// GetStatus returns the department's budget status. Returns nil when no
// budget is seeded for the department.
func (l *Ledger) GetStatus(department string) (*Status, error) {
	b, err := l.budgets.GetByDepartment(department)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, nil
	}
	return statusOf(b), nil
}

// ListStatuses returns every department's budget status ordered by name.
func (l *Ledger) ListStatuses() ([]*Status, error) {
	budgets, err := l.budgets.List()
	if err != nil {
		return nil, err
	}

	statuses := make([]*Status, 0, len(budgets))
	for _, b := range budgets {
		statuses = append(statuses, statusOf(b))
	}
	return statuses, nil
}

// SetAllocation creates or replaces the department's total allocation.
func (l *Ledger) SetAllocation(department string, total float64) (*Status, error) {
	if total < 0 {
		return nil, fmt.Errorf("allocation must not be negative: %.2f", total)
	}

	b, err := l.budgets.SetAllocation(department, total)
	if err != nil {
		return nil, err
	}
	l.logger.Info("Budget allocation set",
		zap.String("department", department), zap.Float64("total", total))
	return statusOf(b), nil
}

// Debit consumes from the department's budget within the caller's
// transaction. Returns false when the department has no budget row.
func (l *Ledger) Debit(tx *sql.Tx, department string, amount float64) (bool, error) {
	return l.budgets.Debit(tx, department, amount)
}

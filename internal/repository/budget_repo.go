package repository

import (
	"database/sql"
	"fmt"

	"github.com/procureflow/backend/internal/models"
	"go.uber.org/zap"
)

// BudgetRepository handles per-department budget rows.
type BudgetRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewBudgetRepository creates a new budget repository.
func NewBudgetRepository(db *sql.DB, logger *zap.Logger) *BudgetRepository {
	return &BudgetRepository{
		db:     db,
		logger: logger,
	}
}

// GetByDepartment retrieves the budget row for a department. Returns nil when
// no budget has been seeded for it.
func (r *BudgetRepository) GetByDepartment(department string) (*models.Budget, error) {
	var b models.Budget
	err := r.db.QueryRow(
		`SELECT id, department, total, used FROM budgets WHERE department = ?`,
		department,
	).Scan(&b.ID, &b.Department, &b.Total, &b.Used)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get budget", zap.String("department", department), zap.Error(err))
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	return &b, nil
}

// List retrieves all budget rows ordered by department name.
func (r *BudgetRepository) List() ([]*models.Budget, error) {
	rows, err := r.db.Query(`SELECT id, department, total, used FROM budgets ORDER BY department`)
	if err != nil {
		r.logger.Error("Failed to list budgets", zap.Error(err))
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []*models.Budget
	for rows.Next() {
		var b models.Budget
		if err := rows.Scan(&b.ID, &b.Department, &b.Total, &b.Used); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, &b)
	}
	return budgets, rows.Err()
}

// SetAllocation creates or updates the department's total allocation. Used
// does not change; budgets are never auto-created by approvals.
func (r *BudgetRepository) SetAllocation(department string, total float64) (*models.Budget, error) {
	_, err := r.db.Exec(
		`INSERT INTO budgets (department, total, used) VALUES (?, ?, 0)
		 ON CONFLICT(department) DO UPDATE SET total = excluded.total`,
		department, total,
	)
	if err != nil {
		r.logger.Error("Failed to set budget allocation",
			zap.String("department", department), zap.Error(err))
		return nil, fmt.Errorf("failed to set budget allocation: %w", err)
	}
	return r.GetByDepartment(department)
}

// Debit increments the department's used amount. Returns false when no budget
// row exists for the department; there is no ceiling check, so remaining may
// go negative.
func (r *BudgetRepository) Debit(tx *sql.Tx, department string, amount float64) (bool, error) {
	query := `UPDATE budgets SET used = used + ? WHERE department = ?`

	var result sql.Result
	var err error
	if tx != nil {
		result, err = tx.Exec(query, amount, department)
	} else {
		result, err = r.db.Exec(query, amount, department)
	}
	if err != nil {
		r.logger.Error("Failed to debit budget",
			zap.String("department", department), zap.Float64("amount", amount), zap.Error(err))
		return false, fmt.Errorf("failed to debit budget: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected == 1, nil
}

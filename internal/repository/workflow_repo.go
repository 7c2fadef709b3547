package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/procureflow/backend/internal/models"
	"go.uber.org/zap"
)

// WorkflowRepository handles per-department approval workflow configuration.
type WorkflowRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(db *sql.DB, logger *zap.Logger) *WorkflowRepository {
	return &WorkflowRepository{
		db:     db,
		logger: logger,
	}
}

const workflowColumns = `id, department, step1_role, step2_role, step3_role, active, created_at, updated_at`

func scanWorkflow(scanner interface{ Scan(...interface{}) error }) (*models.ApprovalWorkflow, error) {
	var w models.ApprovalWorkflow
	err := scanner.Scan(
		&w.ID,
		&w.Department,
		&w.Step1Role,
		&w.Step2Role,
		&w.Step3Role,
		&w.Active,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// GetActiveByDepartment retrieves the active workflow for a department.
// Returns nil when the department has no active workflow configured.
func (r *WorkflowRepository) GetActiveByDepartment(department string) (*models.ApprovalWorkflow, error) {
	row := r.db.QueryRow(
		`SELECT `+workflowColumns+` FROM approval_workflows WHERE department = ? AND active = 1`,
		department,
	)

	w, err := scanWorkflow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get workflow", zap.String("department", department), zap.Error(err))
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}
	return w, nil
}

// GetByID retrieves a workflow by id. Returns nil when the id does not exist.
func (r *WorkflowRepository) GetByID(id int64) (*models.ApprovalWorkflow, error) {
	row := r.db.QueryRow(`SELECT `+workflowColumns+` FROM approval_workflows WHERE id = ?`, id)

	w, err := scanWorkflow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get workflow", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}
	return w, nil
}

// List retrieves all workflows ordered by department.
func (r *WorkflowRepository) List() ([]*models.ApprovalWorkflow, error) {
	rows, err := r.db.Query(`SELECT ` + workflowColumns + ` FROM approval_workflows ORDER BY department`)
	if err != nil {
		r.logger.Error("Failed to list workflows", zap.Error(err))
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	defer rows.Close()

	var workflows []*models.ApprovalWorkflow
	for rows.Next() {
		w, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}
		workflows = append(workflows, w)
	}
	return workflows, rows.Err()
}

// Create inserts a workflow configuration.
func (r *WorkflowRepository) Create(w *models.ApprovalWorkflow) error {
	result, err := r.db.Exec(
		`INSERT INTO approval_workflows (department, step1_role, step2_role, step3_role, active)
		 VALUES (?, ?, ?, ?, ?)`,
		w.Department, w.Step1Role, w.Step2Role, w.Step3Role, w.Active,
	)
	if err != nil {
		r.logger.Error("Failed to create workflow", zap.String("department", w.Department), zap.Error(err))
		return fmt.Errorf("failed to create workflow: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	w.ID = id
	return nil
}

// Update replaces the workflow's steps and active flag. In-flight
// requisitions are unaffected; their remaining chain was fixed at submit.
func (r *WorkflowRepository) Update(w *models.ApprovalWorkflow) (bool, error) {
	result, err := r.db.Exec(
		`UPDATE approval_workflows
		 SET step1_role = ?, step2_role = ?, step3_role = ?, active = ?, updated_at = ?
		 WHERE id = ?`,
		w.Step1Role, w.Step2Role, w.Step3Role, w.Active, time.Now().UTC(), w.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update workflow", zap.Int64("id", w.ID), zap.Error(err))
		return false, fmt.Errorf("failed to update workflow: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected == 1, nil
}

// Delete removes a workflow configuration. Returns false when the id does
// not exist.
func (r *WorkflowRepository) Delete(id int64) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM approval_workflows WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete workflow", zap.Int64("id", id), zap.Error(err))
		return false, fmt.Errorf("failed to delete workflow: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected == 1, nil
}

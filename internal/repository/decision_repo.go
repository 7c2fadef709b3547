package repository

import (
	"database/sql"
	"fmt"

	"github.com/procureflow/backend/internal/models"
	"go.uber.org/zap"
)

// DecisionRepository handles the append-only decision audit trail. Records
// are only ever inserted and read, never updated or deleted.
type DecisionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDecisionRepository creates a new decision repository.
func NewDecisionRepository(db *sql.DB, logger *zap.Logger) *DecisionRepository {
	return &DecisionRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends a decision record.
func (r *DecisionRepository) Create(tx *sql.Tx, d *models.Decision) error {
	query := `
		INSERT INTO decisions (target_type, target_id, stage, approver, approver_role, outcome, comment)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	var result sql.Result
	var err error
	if tx != nil {
		result, err = tx.Exec(query, d.TargetType, d.TargetID, d.Stage, d.Approver, d.ApproverRole, d.Outcome, d.Comment)
	} else {
		result, err = r.db.Exec(query, d.TargetType, d.TargetID, d.Stage, d.Approver, d.ApproverRole, d.Outcome, d.Comment)
	}
	if err != nil {
		r.logger.Error("Failed to create decision record", zap.Error(err))
		return fmt.Errorf("failed to create decision: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	d.ID = id
	return nil
}

// ListByTarget retrieves all decisions for one requisition or document in
// chronological order.
func (r *DecisionRepository) ListByTarget(targetType string, targetID int64) ([]*models.Decision, error) {
	query := `
		SELECT id, target_type, target_id, stage, approver, approver_role, outcome, comment, created_at
		FROM decisions
		WHERE target_type = ? AND target_id = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.Query(query, targetType, targetID)
	if err != nil {
		r.logger.Error("Failed to list decisions",
			zap.String("target_type", targetType), zap.Int64("target_id", targetID), zap.Error(err))
		return nil, fmt.Errorf("failed to list decisions: %w", err)
	}
	defer rows.Close()

	var decisions []*models.Decision
	for rows.Next() {
		var d models.Decision
		err := rows.Scan(&d.ID, &d.TargetType, &d.TargetID, &d.Stage, &d.Approver, &d.ApproverRole, &d.Outcome, &d.Comment, &d.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		decisions = append(decisions, &d)
	}
	return decisions, rows.Err()
}

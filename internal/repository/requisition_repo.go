package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/procureflow/backend/internal/models"
	"go.uber.org/zap"
)

// RequisitionRepository handles requisition database operations.
type RequisitionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRequisitionRepository creates a new requisition repository.
func NewRequisitionRepository(db *sql.DB, logger *zap.Logger) *RequisitionRepository {
	return &RequisitionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *RequisitionRepository) exec(tx *sql.Tx, query string, args ...interface{}) (sql.Result, error) {
	if tx != nil {
		return tx.Exec(query, args...)
	}
	return r.db.Exec(query, args...)
}

// Create inserts a requisition and its line items.
func (r *RequisitionRepository) Create(tx *sql.Tx, req *models.Requisition) error {
	result, err := r.exec(tx,
		`INSERT INTO requisitions (created_by, department, status) VALUES (?, ?, ?)`,
		req.CreatedBy, req.Department, req.Status,
	)
	if err != nil {
		r.logger.Error("Failed to create requisition", zap.Error(err))
		return fmt.Errorf("failed to create requisition: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	req.ID = id

	for _, item := range req.Items {
		item.RequisitionID = id
		if err := r.insertItem(tx, item); err != nil {
			return err
		}
	}
	return nil
}

func (r *RequisitionRepository) insertItem(tx *sql.Tx, item *models.RequisitionItem) error {
	result, err := r.exec(tx,
		`INSERT INTO requisition_items (requisition_id, item_name, quantity, price) VALUES (?, ?, ?, ?)`,
		item.RequisitionID, item.ItemName, item.Quantity, item.Price,
	)
	if err != nil {
		r.logger.Error("Failed to insert requisition item",
			zap.Int64("requisition_id", item.RequisitionID), zap.Error(err))
		return fmt.Errorf("failed to insert requisition item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	item.ID = id
	return nil
}

// ReplaceItems removes the requisition's line items and inserts the new set.
// Used on resubmission after a send-back.
func (r *RequisitionRepository) ReplaceItems(tx *sql.Tx, requisitionID int64, items []*models.RequisitionItem) error {
	if _, err := r.exec(tx, `DELETE FROM requisition_items WHERE requisition_id = ?`, requisitionID); err != nil {
		r.logger.Error("Failed to clear requisition items",
			zap.Int64("requisition_id", requisitionID), zap.Error(err))
		return fmt.Errorf("failed to clear requisition items: %w", err)
	}

	for _, item := range items {
		item.RequisitionID = requisitionID
		if err := r.insertItem(tx, item); err != nil {
			return err
		}
	}
	return nil
}

// GetByID retrieves a requisition with its line items. Returns nil when the
// id does not exist.
func (r *RequisitionRepository) GetByID(id int64) (*models.Requisition, error) {
	query := `
		SELECT id, created_by, department, status, created_at, updated_at
		FROM requisitions
		WHERE id = ?
	`

	var req models.Requisition
	err := r.db.QueryRow(query, id).Scan(
		&req.ID,
		&req.CreatedBy,
		&req.Department,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get requisition", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get requisition: %w", err)
	}

	items, err := r.itemsFor(id)
	if err != nil {
		return nil, err
	}
	req.Items = items

	return &req, nil
}

func (r *RequisitionRepository) itemsFor(requisitionID int64) ([]*models.RequisitionItem, error) {
	rows, err := r.db.Query(
		`SELECT id, requisition_id, item_name, quantity, price
		 FROM requisition_items WHERE requisition_id = ? ORDER BY id`,
		requisitionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get requisition items: %w", err)
	}
	defer rows.Close()

	var items []*models.RequisitionItem
	for rows.Next() {
		var item models.RequisitionItem
		if err := rows.Scan(&item.ID, &item.RequisitionID, &item.ItemName, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan requisition item: %w", err)
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

// UpdateStatus transitions the requisition's status only if it still holds
// the expected current status. Returns false when another decision got there
// first (compare-and-set semantics).
func (r *RequisitionRepository) UpdateStatus(tx *sql.Tx, id int64, from, to string) (bool, error) {
	result, err := r.exec(tx,
		`UPDATE requisitions SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		to, time.Now().UTC(), id, from,
	)
	if err != nil {
		r.logger.Error("Failed to update requisition status",
			zap.Int64("id", id), zap.String("to", to), zap.Error(err))
		return false, fmt.Errorf("failed to update status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected == 1, nil
}

// ListFilter narrows List results; zero values mean no filtering.
type ListFilter struct {
	Department string
	CreatedBy  string
	Status     string
	Limit      int
	Offset     int
}

// List retrieves requisitions newest first, with optional filters.
func (r *RequisitionRepository) List(filter ListFilter) ([]*models.Requisition, error) {
	query := `SELECT id, created_by, department, status, created_at, updated_at FROM requisitions WHERE 1=1`
	var args []interface{}

	if filter.Department != "" {
		query += ` AND department = ?`
		args = append(args, filter.Department)
	}
	if filter.CreatedBy != "" {
		query += ` AND created_by = ?`
		args = append(args, filter.CreatedBy)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}

	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("Failed to list requisitions", zap.Error(err))
		return nil, fmt.Errorf("failed to list requisitions: %w", err)
	}
	defer rows.Close()

	var reqs []*models.Requisition
	for rows.Next() {
		var req models.Requisition
		err := rows.Scan(&req.ID, &req.CreatedBy, &req.Department, &req.Status, &req.CreatedAt, &req.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan requisition: %w", err)
		}
		reqs = append(reqs, &req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, req := range reqs {
		items, err := r.itemsFor(req.ID)
		if err != nil {
			return nil, err
		}
		req.Items = items
	}
	return reqs, nil
}

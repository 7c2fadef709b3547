package repository

import (
	"database/sql"
	"fmt"

	"github.com/procureflow/backend/internal/models"
	"go.uber.org/zap"
)

// GrnRepository handles goods receipt notes.
type GrnRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewGrnRepository creates a new GRN repository.
func NewGrnRepository(db *sql.DB, logger *zap.Logger) *GrnRepository {
	return &GrnRepository{
		db:     db,
		logger: logger,
	}
}

// NextGrnNumber allocates the next sequential receipt number for the given
// year, formatted GRN-YYYY-NNNN.
func (r *GrnRepository) NextGrnNumber(year int) (string, error) {
	prefix := fmt.Sprintf("GRN-%d-", year)

	var count int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM grns WHERE grn_number LIKE ?`,
		prefix+"%",
	).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count grns", zap.Int("year", year), zap.Error(err))
		return "", fmt.Errorf("failed to allocate grn number: %w", err)
	}
	return fmt.Sprintf("%s%04d", prefix, count+1), nil
}

// Create inserts a receipt note together with its item lines.
func (r *GrnRepository) Create(tx *sql.Tx, grn *models.Grn) error {
	query := `INSERT INTO grns (grn_number, purchase_order_id, received_by, notes) VALUES (?, ?, ?, ?)`

	var result sql.Result
	var err error
	if tx != nil {
		result, err = tx.Exec(query, grn.GrnNumber, grn.PurchaseOrderID, grn.ReceivedBy, grn.Notes)
	} else {
		result, err = r.db.Exec(query, grn.GrnNumber, grn.PurchaseOrderID, grn.ReceivedBy, grn.Notes)
	}
	if err != nil {
		r.logger.Error("Failed to create grn", zap.String("grn_number", grn.GrnNumber), zap.Error(err))
		return fmt.Errorf("failed to create grn: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	grn.ID = id

	for _, item := range grn.Items {
		item.GrnID = id
		if err := r.insertItem(tx, item); err != nil {
			return err
		}
	}
	return nil
}

func (r *GrnRepository) insertItem(tx *sql.Tx, item *models.GrnItem) error {
	query := `INSERT INTO grn_items (grn_id, item_name, ordered_qty, received_qty, accepted_qty, rejected_qty, remarks)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	var result sql.Result
	var err error
	if tx != nil {
		result, err = tx.Exec(query, item.GrnID, item.ItemName,
			item.OrderedQty, item.ReceivedQty, item.AcceptedQty, item.RejectedQty, item.Remarks)
	} else {
		result, err = r.db.Exec(query, item.GrnID, item.ItemName,
			item.OrderedQty, item.ReceivedQty, item.AcceptedQty, item.RejectedQty, item.Remarks)
	}
	if err != nil {
		return fmt.Errorf("failed to create grn item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	item.ID = id
	return nil
}

// GetByID retrieves a receipt note with its items. Returns nil when the id
// does not exist.
func (r *GrnRepository) GetByID(id int64) (*models.Grn, error) {
	var grn models.Grn
	err := r.db.QueryRow(
		`SELECT id, grn_number, purchase_order_id, received_by, notes, received_at FROM grns WHERE id = ?`,
		id,
	).Scan(&grn.ID, &grn.GrnNumber, &grn.PurchaseOrderID, &grn.ReceivedBy, &grn.Notes, &grn.ReceivedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get grn", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get grn: %w", err)
	}

	items, err := r.itemsFor(grn.ID)
	if err != nil {
		return nil, err
	}
	grn.Items = items
	return &grn, nil
}

// ListByPurchaseOrder retrieves every receipt recorded against a purchase
// order, oldest first, items included.
func (r *GrnRepository) ListByPurchaseOrder(purchaseOrderID int64) ([]*models.Grn, error) {
	rows, err := r.db.Query(
		`SELECT id, grn_number, purchase_order_id, received_by, notes, received_at
		 FROM grns WHERE purchase_order_id = ? ORDER BY received_at ASC, id ASC`,
		purchaseOrderID,
	)
	if err != nil {
		r.logger.Error("Failed to list grns", zap.Int64("purchase_order_id", purchaseOrderID), zap.Error(err))
		return nil, fmt.Errorf("failed to list grns: %w", err)
	}
	defer rows.Close()

	var grns []*models.Grn
	for rows.Next() {
		var grn models.Grn
		if err := rows.Scan(&grn.ID, &grn.GrnNumber, &grn.PurchaseOrderID,
			&grn.ReceivedBy, &grn.Notes, &grn.ReceivedAt); err != nil {
			return nil, fmt.Errorf("failed to scan grn: %w", err)
		}
		grns = append(grns, &grn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, grn := range grns {
		items, err := r.itemsFor(grn.ID)
		if err != nil {
			return nil, err
		}
		grn.Items = items
	}
	return grns, nil
}

func (r *GrnRepository) itemsFor(grnID int64) ([]*models.GrnItem, error) {
	rows, err := r.db.Query(
		`SELECT id, grn_id, item_name, ordered_qty, received_qty, accepted_qty, rejected_qty, remarks
		 FROM grn_items WHERE grn_id = ? ORDER BY id`,
		grnID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list grn items: %w", err)
	}
	defer rows.Close()

	var items []*models.GrnItem
	for rows.Next() {
		var item models.GrnItem
		if err := rows.Scan(&item.ID, &item.GrnID, &item.ItemName,
			&item.OrderedQty, &item.ReceivedQty, &item.AcceptedQty, &item.RejectedQty, &item.Remarks); err != nil {
			return nil, fmt.Errorf("failed to scan grn item: %w", err)
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/procureflow/backend/internal/models"
	"go.uber.org/zap"
)

// PurchaseOrderRepository handles purchase order database operations.
type PurchaseOrderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPurchaseOrderRepository creates a new purchase order repository.
func NewPurchaseOrderRepository(db *sql.DB, logger *zap.Logger) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{
		db:     db,
		logger: logger,
	}
}

const purchaseOrderColumns = `id, po_number, requisition_id, vendor_name, vendor_address, vendor_contact,
	ship_to_address, line_items_json, subtotal, freight_charges, gst_rate, gst_amount, total_amount,
	payment_terms, created_by, department, status, created_at, updated_at`

func scanPurchaseOrder(scanner interface{ Scan(...interface{}) error }) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	var requisitionID sql.NullInt64
	var lineItemsJSON string
	err := scanner.Scan(
		&po.ID,
		&po.PONumber,
		&requisitionID,
		&po.VendorName,
		&po.VendorAddress,
		&po.VendorContact,
		&po.ShipToAddress,
		&lineItemsJSON,
		&po.Subtotal,
		&po.FreightCharges,
		&po.GSTRate,
		&po.GSTAmount,
		&po.TotalAmount,
		&po.PaymentTerms,
		&po.CreatedBy,
		&po.Department,
		&po.Status,
		&po.CreatedAt,
		&po.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if requisitionID.Valid {
		po.RequisitionID = &requisitionID.Int64
	}
	if err := json.Unmarshal([]byte(lineItemsJSON), &po.LineItems); err != nil {
		return nil, fmt.Errorf("failed to decode line items: %w", err)
	}
	return &po, nil
}

// NextPONumber allocates the next sequential purchase order number for the
// given year, formatted PO-YYYY-NNNN.
func (r *PurchaseOrderRepository) NextPONumber(year int) (string, error) {
	prefix := fmt.Sprintf("PO-%d-", year)

	var count int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM purchase_orders WHERE po_number LIKE ?`,
		prefix+"%",
	).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count purchase orders", zap.Int("year", year), zap.Error(err))
		return "", fmt.Errorf("failed to allocate po number: %w", err)
	}
	return fmt.Sprintf("%s%04d", prefix, count+1), nil
}

// Create inserts a purchase order.
func (r *PurchaseOrderRepository) Create(po *models.PurchaseOrder) error {
	lineItems := po.LineItems
	if lineItems == nil {
		lineItems = []models.POLineItem{}
	}
	encoded, err := json.Marshal(lineItems)
	if err != nil {
		return fmt.Errorf("failed to encode line items: %w", err)
	}

	result, err := r.db.Exec(
		`INSERT INTO purchase_orders
			(po_number, requisition_id, vendor_name, vendor_address, vendor_contact, ship_to_address,
			 line_items_json, subtotal, freight_charges, gst_rate, gst_amount, total_amount,
			 payment_terms, created_by, department, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		po.PONumber, po.RequisitionID, po.VendorName, po.VendorAddress, po.VendorContact,
		po.ShipToAddress, string(encoded), po.Subtotal, po.FreightCharges, po.GSTRate,
		po.GSTAmount, po.TotalAmount, po.PaymentTerms, po.CreatedBy, po.Department, po.Status,
	)
	if err != nil {
		r.logger.Error("Failed to create purchase order", zap.String("po_number", po.PONumber), zap.Error(err))
		return fmt.Errorf("failed to create purchase order: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	po.ID = id
	return nil
}

// GetByID retrieves a purchase order. Returns nil when the id does not exist.
func (r *PurchaseOrderRepository) GetByID(id int64) (*models.PurchaseOrder, error) {
	row := r.db.QueryRow(`SELECT `+purchaseOrderColumns+` FROM purchase_orders WHERE id = ?`, id)

	po, err := scanPurchaseOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get purchase order", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get purchase order: %w", err)
	}
	return po, nil
}

// List retrieves purchase orders, newest first, optionally filtered by
// department and status.
func (r *PurchaseOrderRepository) List(department, status string) ([]*models.PurchaseOrder, error) {
	query := `SELECT ` + purchaseOrderColumns + ` FROM purchase_orders WHERE 1=1`
	var args []interface{}
	if department != "" {
		query += ` AND department = ?`
		args = append(args, department)
	}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("Failed to list purchase orders", zap.Error(err))
		return nil, fmt.Errorf("failed to list purchase orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.PurchaseOrder
	for rows.Next() {
		po, err := scanPurchaseOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase order: %w", err)
		}
		orders = append(orders, po)
	}
	return orders, rows.Err()
}

// Delete removes a purchase order. Returns false when the id does not exist.
func (r *PurchaseOrderRepository) Delete(id int64) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM purchase_orders WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete purchase order", zap.Int64("id", id), zap.Error(err))
		return false, fmt.Errorf("failed to delete purchase order: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected == 1, nil
}

// UpdateStatus transitions the purchase order between statuses only if it
// still holds the expected current status. Returns false when a concurrent
// update got there first or the id does not exist.
func (r *PurchaseOrderRepository) UpdateStatus(id int64, from, to string) (bool, error) {
	result, err := r.db.Exec(
		`UPDATE purchase_orders SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		to, time.Now().UTC(), id, from,
	)
	if err != nil {
		r.logger.Error("Failed to update purchase order status",
			zap.Int64("id", id), zap.String("to", to), zap.Error(err))
		return false, fmt.Errorf("failed to update purchase order status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected == 1, nil
}

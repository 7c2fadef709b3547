package repository

import (
	"database/sql"
	"fmt"

	"github.com/procureflow/backend/internal/models"
	"go.uber.org/zap"
)

// DocumentRepository handles vendor document database operations.
type DocumentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDocumentRepository creates a new document repository.
func NewDocumentRepository(db *sql.DB, logger *zap.Logger) *DocumentRepository {
	return &DocumentRepository{
		db:     db,
		logger: logger,
	}
}

const documentColumns = `id, file_name, original_name, uploaded_by, description, requisition_id,
	page_count, approval_stage, rejected, rejection_reason, processed, uploaded_at`

func scanDocument(scanner interface{ Scan(...interface{}) error }) (*models.VendorDocument, error) {
	var d models.VendorDocument
	var requisitionID sql.NullInt64
	err := scanner.Scan(
		&d.ID,
		&d.FileName,
		&d.OriginalName,
		&d.UploadedBy,
		&d.Description,
		&requisitionID,
		&d.PageCount,
		&d.ApprovalStage,
		&d.Rejected,
		&d.RejectionReason,
		&d.Processed,
		&d.UploadedAt,
	)
	if err != nil {
		return nil, err
	}
	if requisitionID.Valid {
		d.RequisitionID = &requisitionID.Int64
	}
	return &d, nil
}

// Create inserts a vendor document record.
func (r *DocumentRepository) Create(doc *models.VendorDocument) error {
	result, err := r.db.Exec(
		`INSERT INTO vendor_documents
			(file_name, original_name, uploaded_by, description, requisition_id, page_count, approval_stage)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		doc.FileName, doc.OriginalName, doc.UploadedBy, doc.Description,
		doc.RequisitionID, doc.PageCount, doc.ApprovalStage,
	)
	if err != nil {
		r.logger.Error("Failed to create vendor document", zap.Error(err))
		return fmt.Errorf("failed to create document: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	doc.ID = id
	return nil
}

// GetByID retrieves a vendor document. Returns nil when the id does not exist.
func (r *DocumentRepository) GetByID(id int64) (*models.VendorDocument, error) {
	row := r.db.QueryRow(`SELECT `+documentColumns+` FROM vendor_documents WHERE id = ?`, id)

	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get document", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

// AdvanceStage moves the document from one approval stage to the next, only
// if it still sits at the expected stage and is not rejected. Returns false
// when a concurrent decision got there first.
func (r *DocumentRepository) AdvanceStage(tx *sql.Tx, id int64, from, to string, processed bool) (bool, error) {
	query := `
		UPDATE vendor_documents SET approval_stage = ?, processed = ?
		WHERE id = ? AND approval_stage = ? AND rejected = 0
	`

	var result sql.Result
	var err error
	if tx != nil {
		result, err = tx.Exec(query, to, processed, id, from)
	} else {
		result, err = r.db.Exec(query, to, processed, id, from)
	}
	if err != nil {
		r.logger.Error("Failed to advance document stage",
			zap.Int64("id", id), zap.String("to", to), zap.Error(err))
		return false, fmt.Errorf("failed to advance document stage: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected == 1, nil
}

// Reject marks the document rejected, only if it is not already terminal.
// Returns false when it was already rejected or fully approved.
func (r *DocumentRepository) Reject(tx *sql.Tx, id int64, reason string) (bool, error) {
	query := `
		UPDATE vendor_documents SET rejected = 1, rejection_reason = ?, processed = 0
		WHERE id = ? AND rejected = 0 AND approval_stage != ?
	`

	var result sql.Result
	var err error
	if tx != nil {
		result, err = tx.Exec(query, reason, id, models.DocStageApproved)
	} else {
		result, err = r.db.Exec(query, reason, id, models.DocStageApproved)
	}
	if err != nil {
		r.logger.Error("Failed to reject document", zap.Int64("id", id), zap.Error(err))
		return false, fmt.Errorf("failed to reject document: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected == 1, nil
}

// ListPendingAtStage returns non-rejected documents waiting at the given
// stage, oldest upload first (FIFO review order).
func (r *DocumentRepository) ListPendingAtStage(stage string) ([]*models.VendorDocument, error) {
	return r.list(
		`SELECT `+documentColumns+` FROM vendor_documents
		 WHERE approval_stage = ? AND rejected = 0
		 ORDER BY uploaded_at ASC, id ASC`,
		stage,
	)
}

// ListAtOrPastStage returns documents at the given stage or already approved,
// including rejected ones, oldest first. Approvers use this for historical
// visibility into items they already processed.
func (r *DocumentRepository) ListAtOrPastStage(stages ...string) ([]*models.VendorDocument, error) {
	if len(stages) == 0 {
		return nil, nil
	}

	query := `SELECT ` + documentColumns + ` FROM vendor_documents WHERE approval_stage IN (?`
	args := []interface{}{stages[0]}
	for _, s := range stages[1:] {
		query += `, ?`
		args = append(args, s)
	}
	query += `) ORDER BY uploaded_at ASC, id ASC`

	return r.list(query, args...)
}

// ListByUploader returns all documents uploaded by a user, newest first.
func (r *DocumentRepository) ListByUploader(uploadedBy string) ([]*models.VendorDocument, error) {
	return r.list(
		`SELECT `+documentColumns+` FROM vendor_documents
		 WHERE uploaded_by = ? ORDER BY uploaded_at DESC`,
		uploadedBy,
	)
}

// ListAll returns every document, oldest first.
func (r *DocumentRepository) ListAll() ([]*models.VendorDocument, error) {
	return r.list(`SELECT ` + documentColumns + ` FROM vendor_documents ORDER BY uploaded_at ASC, id ASC`)
}

func (r *DocumentRepository) list(query string, args ...interface{}) ([]*models.VendorDocument, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("Failed to list documents", zap.Error(err))
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.VendorDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Delete removes a document record. Returns false when the id does not exist.
func (r *DocumentRepository) Delete(id int64) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM vendor_documents WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete document", zap.Int64("id", id), zap.Error(err))
		return false, fmt.Errorf("failed to delete document: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected == 1, nil
}

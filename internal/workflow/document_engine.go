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

// stageForRole maps a manager role to the document stage it reviews.
var stageForRole = map[string]wf.Stage{
	models.RoleDepartmentManager: wf.StageDepartment,
	models.RoleITManager:         wf.StageIT,
	models.RoleFinanceManager:    wf.StageFinance,
}

// DocumentApprovalEngine advances vendor documents through their own approval
// chain, independent of any linked requisition. The chain is forward-only:
// there is no send-back for documents, and rejection is terminal from any
// stage.
type DocumentApprovalEngine struct {
	db            *database.DB
	documents     *repository.DocumentRepository
	decisions     *repository.DecisionRepository
	notifications *repository.NotificationRepository
	notifier      Notifier
	logger        *zap.Logger
}

// NewDocumentApprovalEngine creates the engine. notifier may be nil.
func NewDocumentApprovalEngine(
	db *database.DB,
	documents *repository.DocumentRepository,
	decisions *repository.DecisionRepository,
	notifications *repository.NotificationRepository,
	notifier Notifier,
	logger *zap.Logger,
) *DocumentApprovalEngine {
	return &DocumentApprovalEngine{
		db:            db,
		documents:     documents,
		decisions:     decisions,
		notifications: notifications,
		notifier:      notifier,
		logger:        logger,
	}
}

// InitialStage returns the stage a fresh upload enters. Uploads by reviewers
// past the department gate skip straight to IT review.
func InitialStage(uploaderRole string) string {
	switch uploaderRole {
	case models.RoleITManager, models.RoleFinanceManager, models.RoleSuperadmin:
		return models.DocStageIT
	}
	return models.DocStageDepartment
}

// Register records an uploaded document at its initial stage.
func (e *DocumentApprovalEngine) Register(doc *models.VendorDocument, uploaderRole string) error {
	doc.ApprovalStage = InitialStage(uploaderRole)
	if err := e.documents.Create(doc); err != nil {
		return err
	}
	e.logger.Info("Vendor document registered",
		zap.Int64("id", doc.ID),
		zap.String("uploaded_by", doc.UploadedBy),
		zap.String("stage", doc.ApprovalStage))
	return nil
}

// GetByID retrieves a document.
func (e *DocumentApprovalEngine) GetByID(docID int64) (*models.VendorDocument, error) {
	doc, err := e.documents.GetByID(docID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: document %d", ErrNotFound, docID)
	}
	return doc, nil
}

// load fetches the document and checks the actor may decide at its current
// stage.
func (e *DocumentApprovalEngine) load(docID int64, approverRole string) (*models.VendorDocument, error) {
	doc, err := e.documents.GetByID(docID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: document %d", ErrNotFound, docID)
	}
	if doc.Terminal() {
		return nil, fmt.Errorf("%w: document %d is already %s", ErrInvalidState, docID, terminalLabel(doc))
	}

	if approverRole != models.RoleSuperadmin {
		stage, ok := stageForRole[approverRole]
		if !ok || stage.String() != doc.ApprovalStage {
			return nil, fmt.Errorf("%w: role %s cannot decide a document at the %s stage",
				ErrUnauthorized, approverRole, doc.ApprovalStage)
		}
	}
	return doc, nil
}

// Approve advances the document one stage forward.
func (e *DocumentApprovalEngine) Approve(docID int64, approver, approverRole string) (*models.VendorDocument, error) {
	doc, err := e.load(docID, approverRole)
	if err != nil {
		return nil, err
	}

	machine := wf.BuildDocumentMachine(wf.State(doc.ApprovalStage))
	if err := machine.Fire(wf.TriggerApprove); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	next := machine.State().String()
	processed := next == models.DocStageApproved

	err = e.db.WithTransaction(func(tx *sql.Tx) error {
		moved, err := e.documents.AdvanceStage(tx, doc.ID, doc.ApprovalStage, next, processed)
		if err != nil {
			return err
		}
		if !moved {
			return fmt.Errorf("%w: document %d was decided concurrently", ErrInvalidState, doc.ID)
		}

		decision := &models.Decision{
			TargetType:   models.TargetDocument,
			TargetID:     doc.ID,
			Stage:        doc.ApprovalStage,
			Approver:     approver,
			ApproverRole: approverRole,
			Outcome:      models.OutcomeApprove,
		}
		if err := e.decisions.Create(tx, decision); err != nil {
			return err
		}

		notification := &models.Notification{
			UserID:  doc.UploadedBy,
			Message: documentMessage(doc, models.OutcomeApprove, next),
		}
		return e.notifications.Create(tx, notification)
	})
	if err != nil {
		return nil, err
	}

	stage := doc.ApprovalStage
	doc.ApprovalStage = next
	doc.Processed = processed
	e.logger.Info("Document approved",
		zap.Int64("id", doc.ID), zap.String("stage", stage), zap.String("now", next))

	if e.notifier != nil {
		e.notifier.Notify(doc.UploadedBy, documentMessage(doc, models.OutcomeApprove, next))
	}
	return doc, nil
}

// Reject terminally rejects the document. A reason is required.
func (e *DocumentApprovalEngine) Reject(docID int64, approver, approverRole, reason string) (*models.VendorDocument, error) {
	if err := utils.ValidateReason(reason); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	doc, err := e.load(docID, approverRole)
	if err != nil {
		return nil, err
	}
	reason = utils.SanitizeString(reason)

	err = e.db.WithTransaction(func(tx *sql.Tx) error {
		rejected, err := e.documents.Reject(tx, doc.ID, reason)
		if err != nil {
			return err
		}
		if !rejected {
			return fmt.Errorf("%w: document %d was decided concurrently", ErrInvalidState, doc.ID)
		}

		decision := &models.Decision{
			TargetType:   models.TargetDocument,
			TargetID:     doc.ID,
			Stage:        doc.ApprovalStage,
			Approver:     approver,
			ApproverRole: approverRole,
			Outcome:      models.OutcomeReject,
			Comment:      reason,
		}
		if err := e.decisions.Create(tx, decision); err != nil {
			return err
		}

		notification := &models.Notification{
			UserID:  doc.UploadedBy,
			Message: documentMessage(doc, models.OutcomeReject, ""),
		}
		return e.notifications.Create(tx, notification)
	})
	if err != nil {
		return nil, err
	}

	doc.Rejected = true
	doc.RejectionReason = reason
	doc.Processed = false
	e.logger.Info("Document rejected",
		zap.Int64("id", doc.ID), zap.String("stage", doc.ApprovalStage), zap.String("reason", reason))

	if e.notifier != nil {
		e.notifier.Notify(doc.UploadedBy, documentMessage(doc, models.OutcomeReject, ""))
	}
	return doc, nil
}

// ListPendingFor returns the approver's review queue, oldest upload first.
// SUPERADMIN sees every pending document regardless of stage.
func (e *DocumentApprovalEngine) ListPendingFor(role string) ([]*models.VendorDocument, error) {
	if role == models.RoleSuperadmin {
		all, err := e.documents.ListAll()
		if err != nil {
			return nil, err
		}
		var pending []*models.VendorDocument
		for _, doc := range all {
			if !doc.Terminal() {
				pending = append(pending, doc)
			}
		}
		return pending, nil
	}

	stage, ok := stageForRole[role]
	if !ok {
		return nil, fmt.Errorf("%w: role %s has no document review queue", ErrUnauthorized, role)
	}
	return e.documents.ListPendingAtStage(stage.String())
}

// ListFor returns the approver's full historical view: every document at or
// past the role's stage, processed or not.
func (e *DocumentApprovalEngine) ListFor(role string) ([]*models.VendorDocument, error) {
	switch role {
	case models.RoleSuperadmin, models.RoleDepartmentManager:
		return e.documents.ListAll()
	case models.RoleITManager:
		return e.documents.ListAtOrPastStage(models.DocStageIT, models.DocStageFinance, models.DocStageApproved)
	case models.RoleFinanceManager:
		return e.documents.ListAtOrPastStage(models.DocStageFinance, models.DocStageApproved)
	}
	return nil, fmt.Errorf("%w: role %s has no document review queue", ErrUnauthorized, role)
}

// Delete removes the document record. Only the uploader or SUPERADMIN may
// delete.
func (e *DocumentApprovalEngine) Delete(docID int64, actor, actorRole string) (*models.VendorDocument, error) {
	doc, err := e.documents.GetByID(docID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: document %d", ErrNotFound, docID)
	}
	if actorRole != models.RoleSuperadmin && doc.UploadedBy != actor {
		return nil, fmt.Errorf("%w: only the uploader may delete this document", ErrUnauthorized)
	}

	deleted, err := e.documents.Delete(docID)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, fmt.Errorf("%w: document %d", ErrNotFound, docID)
	}
	return doc, nil
}

func terminalLabel(doc *models.VendorDocument) string {
	if doc.Rejected {
		return "rejected"
	}
	return "approved"
}

func documentMessage(doc *models.VendorDocument, outcome, next string) string {
	switch {
	case outcome == models.OutcomeReject:
		return fmt.Sprintf("Document %q was rejected", doc.OriginalName)
	case next == models.DocStageApproved:
		return fmt.Sprintf("Document %q is fully approved", doc.OriginalName)
	}
	return fmt.Sprintf("Document %q moved to %s review", doc.OriginalName, next)
}

package workflow

import (
	"testing"

	"github.com/procureflow/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (h *harness) registerDoc(t *testing.T, name, uploadedBy, uploaderRole string) *models.VendorDocument {
	t.Helper()
	doc := &models.VendorDocument{
		FileName:     name + ".pdf",
		OriginalName: name,
		UploadedBy:   uploadedBy,
		PageCount:    3,
	}
	require.NoError(t, h.docEngine.Register(doc, uploaderRole))
	return doc
}

func TestRegisterSetsInitialStage(t *testing.T) {
	tests := []struct {
		role string
		want string
	}{
		{models.RoleEmployee, models.DocStageDepartment},
		{models.RoleDepartmentManager, models.DocStageDepartment},
		{models.RoleITManager, models.DocStageIT},
		{models.RoleFinanceManager, models.DocStageIT},
		{models.RoleSuperadmin, models.DocStageIT},
	}

	h := newHarness(t)
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			doc := h.registerDoc(t, "quote-"+tt.role, "alice", tt.role)
			assert.Equal(t, tt.want, doc.ApprovalStage)
		})
	}
}

func TestDocumentApprovalChain(t *testing.T) {
	h := newHarness(t)
	doc := h.registerDoc(t, "vendor-quote", "alice", models.RoleEmployee)

	doc, err := h.docEngine.Approve(doc.ID, "dave", models.RoleDepartmentManager)
	require.NoError(t, err)
	assert.Equal(t, models.DocStageIT, doc.ApprovalStage)
	assert.False(t, doc.Processed)

	doc, err = h.docEngine.Approve(doc.ID, "ian", models.RoleITManager)
	require.NoError(t, err)
	assert.Equal(t, models.DocStageFinance, doc.ApprovalStage)

	doc, err = h.docEngine.Approve(doc.ID, "fred", models.RoleFinanceManager)
	require.NoError(t, err)
	assert.Equal(t, models.DocStageApproved, doc.ApprovalStage)
	assert.True(t, doc.Processed)

	// Terminal in both directions.
	_, err = h.docEngine.Approve(doc.ID, "root", models.RoleSuperadmin)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = h.docEngine.Reject(doc.ID, "root", models.RoleSuperadmin, "too late")
	assert.ErrorIs(t, err, ErrInvalidState)

	trail, err := h.decisions.ListByTarget(models.TargetDocument, doc.ID)
	require.NoError(t, err)
	assert.Len(t, trail, 3)
}

func TestDocumentApproveWrongRole(t *testing.T) {
	h := newHarness(t)
	doc := h.registerDoc(t, "vendor-quote", "alice", models.RoleEmployee)

	_, err := h.docEngine.Approve(doc.ID, "fred", models.RoleFinanceManager)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = h.docEngine.Approve(doc.ID, "eve", models.RoleEmployee)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestDocumentRejectRequiresReason(t *testing.T) {
	h := newHarness(t)
	doc := h.registerDoc(t, "vendor-quote", "alice", models.RoleEmployee)

	_, err := h.docEngine.Reject(doc.ID, "dave", models.RoleDepartmentManager, "   ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDocumentRejectIsTerminal(t *testing.T) {
	h := newHarness(t)
	doc := h.registerDoc(t, "vendor-quote", "alice", models.RoleITManager)

	doc, err := h.docEngine.Reject(doc.ID, "ian", models.RoleITManager, "illegible scan")
	require.NoError(t, err)
	assert.True(t, doc.Rejected)
	assert.Equal(t, "illegible scan", doc.RejectionReason)
	assert.False(t, doc.Processed)

	_, err = h.docEngine.Approve(doc.ID, "ian", models.RoleITManager)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestListPendingForIsFIFO(t *testing.T) {
	h := newHarness(t)
	first := h.registerDoc(t, "first", "alice", models.RoleITManager)
	second := h.registerDoc(t, "second", "bob", models.RoleITManager)
	rejected := h.registerDoc(t, "rejected", "carol", models.RoleITManager)
	_, err := h.docEngine.Reject(rejected.ID, "ian", models.RoleITManager, "duplicate")
	require.NoError(t, err)

	queue, err := h.docEngine.ListPendingFor(models.RoleITManager)
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, first.ID, queue[0].ID)
	assert.Equal(t, second.ID, queue[1].ID)
}

func TestListPendingForSuperadminSpansStages(t *testing.T) {
	h := newHarness(t)
	h.registerDoc(t, "dept-stage", "alice", models.RoleEmployee)
	h.registerDoc(t, "it-stage", "bob", models.RoleITManager)

	queue, err := h.docEngine.ListPendingFor(models.RoleSuperadmin)
	require.NoError(t, err)
	assert.Len(t, queue, 2)
}

func TestListForFinanceSeesOnlyItsSlice(t *testing.T) {
	h := newHarness(t)
	h.registerDoc(t, "dept-stage", "alice", models.RoleEmployee)
	itDoc := h.registerDoc(t, "it-stage", "bob", models.RoleITManager)

	_, err := h.docEngine.Approve(itDoc.ID, "ian", models.RoleITManager)
	require.NoError(t, err)

	visible, err := h.docEngine.ListFor(models.RoleFinanceManager)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, itDoc.ID, visible[0].ID)
}

func TestDocumentDeleteOwnership(t *testing.T) {
	h := newHarness(t)
	doc := h.registerDoc(t, "vendor-quote", "alice", models.RoleEmployee)

	_, err := h.docEngine.Delete(doc.ID, "bob", models.RoleEmployee)
	assert.ErrorIs(t, err, ErrUnauthorized)

	deleted, err := h.docEngine.Delete(doc.ID, "alice", models.RoleEmployee)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, deleted.ID)

	_, err = h.docEngine.Delete(doc.ID, "root", models.RoleSuperadmin)
	assert.ErrorIs(t, err, ErrNotFound)
}

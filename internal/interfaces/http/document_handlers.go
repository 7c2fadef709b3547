package http

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/procureflow/backend/internal/auth"
	"github.com/procureflow/backend/internal/docinspect"
	"github.com/procureflow/backend/internal/models"
	"github.com/procureflow/backend/internal/workflow"
	"go.uber.org/zap"
)

// DocumentHandler serves vendor document upload, review, and retrieval.
type DocumentHandler struct {
	engine        *workflow.DocumentApprovalEngine
	inspector     *docinspect.Inspector
	uploadDir     string
	maxUploadSize int64
	logger        *zap.Logger
}

// NewDocumentHandler creates the document handler.
func NewDocumentHandler(
	engine *workflow.DocumentApprovalEngine,
	inspector *docinspect.Inspector,
	uploadDir string,
	maxUploadSize int64,
	logger *zap.Logger,
) *DocumentHandler {
	return &DocumentHandler{
		engine:        engine,
		inspector:     inspector,
		uploadDir:     uploadDir,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// Upload accepts a multipart PDF, inspects it, stores the bytes under a UUID
// name, and registers it at its initial approval stage.
func (h *DocumentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fileHeader.Size > h.maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".pdf") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only PDF files are accepted"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	info, err := h.inspector.Inspect(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("document rejected: %v", err)})
		return
	}

	storedName := uuid.NewString() + ".pdf"
	if err := os.MkdirAll(h.uploadDir, 0755); err != nil {
		respondError(c, h.logger, err)
		return
	}
	if err := os.WriteFile(filepath.Join(h.uploadDir, storedName), data, 0644); err != nil {
		respondError(c, h.logger, err)
		return
	}

	claims := auth.ClaimsFrom(c)
	doc := &models.VendorDocument{
		FileName:     storedName,
		OriginalName: filepath.Base(fileHeader.Filename),
		UploadedBy:   claims.Username,
		Description:  c.PostForm("description"),
		PageCount:    info.PageCount,
	}
	if raw := c.PostForm("requisition_id"); raw != "" {
		reqID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid requisition_id"})
			return
		}
		doc.RequisitionID = &reqID
	}

	if err := h.engine.Register(doc, claims.Role); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// List returns the caller's document view. scope=pending returns the review
// queue; anything else returns the full historical view for the role, or the
// caller's own uploads for employees.
func (h *DocumentHandler) List(c *gin.Context) {
	claims := auth.ClaimsFrom(c)

	var (
		docs []*models.VendorDocument
		err  error
	)
	if c.Query("scope") == "pending" {
		docs, err = h.engine.ListPendingFor(claims.Role)
	} else {
		docs, err = h.engine.ListFor(claims.Role)
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

// Download streams the stored PDF bytes under the original file name.
func (h *DocumentHandler) Download(c *gin.Context) {
	doc, ok := h.lookup(c)
	if !ok {
		return
	}

	path := filepath.Join(h.uploadDir, doc.FileName)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "stored file missing"})
		return
	}
	c.FileAttachment(path, doc.OriginalName)
}

// Approve advances the document one stage.
func (h *DocumentHandler) Approve(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return
	}

	claims := auth.ClaimsFrom(c)
	doc, err := h.engine.Approve(id, claims.Username, claims.Role)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

type rejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Reject terminally rejects the document.
func (h *DocumentHandler) Reject(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return
	}

	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims := auth.ClaimsFrom(c)
	doc, err := h.engine.Reject(id, claims.Username, claims.Role, req.Reason)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Delete removes the document record and its stored file.
func (h *DocumentHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return
	}

	claims := auth.ClaimsFrom(c)
	doc, err := h.engine.Delete(id, claims.Username, claims.Role)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := os.Remove(filepath.Join(h.uploadDir, doc.FileName)); err != nil && !os.IsNotExist(err) {
		h.logger.Warn("Failed to remove stored file",
			zap.String("file", doc.FileName), zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"deleted": doc.ID})
}

func (h *DocumentHandler) lookup(c *gin.Context) (*models.VendorDocument, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return nil, false
	}

	doc, err := h.engine.GetByID(id)
	if err != nil {
		respondError(c, h.logger, err)
		return nil, false
	}
	return doc, true
}

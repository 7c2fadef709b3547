package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/procureflow/backend/internal/auth"
	"github.com/procureflow/backend/internal/models"
	"github.com/procureflow/backend/internal/repository"
	"go.uber.org/zap"
)

// AdminHandler serves SUPERADMIN-only master data: users, departments, and
// approval workflow configuration.
type AdminHandler struct {
	users       *repository.UserRepository
	departments *repository.DepartmentRepository
	workflows   *repository.WorkflowRepository
	logger      *zap.Logger
}

// NewAdminHandler creates the admin handler.
func NewAdminHandler(
	users *repository.UserRepository,
	departments *repository.DepartmentRepository,
	workflows *repository.WorkflowRepository,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		users:       users,
		departments: departments,
		workflows:   workflows,
		logger:      logger,
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// --- users ---

type userRequest struct {
	Username   string `json:"username" binding:"required"`
	Password   string `json:"password"`
	FullName   string `json:"full_name"`
	Role       string `json:"role" binding:"required"`
	Department string `json:"department"`
}

// CreateUser creates a user with a bcrypt-hashed password.
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.IsValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}
	if req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: hash,
		FullName:     req.FullName,
		Role:         req.Role,
		Department:   req.Department,
	}
	if err := h.users.Create(user); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// ListUsers returns all users.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.users.List()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// UpdateUser updates a user's profile, role, and optionally password.
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.IsValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}

	existing, err := h.users.GetByUsername(req.Username)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if existing == nil || existing.ID != id {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	existing.FullName = req.FullName
	existing.Role = req.Role
	existing.Department = req.Department
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		existing.PasswordHash = hash
	}

	updated, err := h.users.Update(existing)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, existing)
}

// DeleteUser removes a user.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	deleted, err := h.users.Delete(id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// --- departments ---

type departmentRequest struct {
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description"`
	ManagerName     string `json:"manager_name"`
	ManagerUsername string `json:"manager_username"`
	Active          *bool  `json:"active"`
}

func (r *departmentRequest) active() bool {
	if r.Active == nil {
		return true
	}
	return *r.Active
}

// CreateDepartment creates a department.
func (h *AdminHandler) CreateDepartment(c *gin.Context) {
	var req departmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dept := &models.Department{
		Name:            req.Name,
		Description:     req.Description,
		ManagerName:     req.ManagerName,
		ManagerUsername: req.ManagerUsername,
		Active:          req.active(),
	}
	if err := h.departments.Create(dept); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, dept)
}

// ListDepartments returns departments; ?active=true filters to active ones.
func (h *AdminHandler) ListDepartments(c *gin.Context) {
	departments, err := h.departments.List(c.Query("active") == "true")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"departments": departments})
}

// UpdateDepartment updates a department's mutable fields.
func (h *AdminHandler) UpdateDepartment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req departmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dept, err := h.departments.GetByID(id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if dept == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "department not found"})
		return
	}

	dept.Description = req.Description
	dept.ManagerName = req.ManagerName
	dept.ManagerUsername = req.ManagerUsername
	dept.Active = req.active()

	if _, err := h.departments.Update(dept); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dept)
}

// DeleteDepartment removes a department.
func (h *AdminHandler) DeleteDepartment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	deleted, err := h.departments.Delete(id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "department not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// --- approval workflows ---

type workflowRequest struct {
	Department string `json:"department" binding:"required"`
	Step1Role  string `json:"step1_role"`
	Step2Role  string `json:"step2_role"`
	Step3Role  string `json:"step3_role"`
	Active     *bool  `json:"active"`
}

func validWorkflowRoles(roles ...string) bool {
	for _, role := range roles {
		if role != "" && !models.IsValidRole(role) {
			return false
		}
	}
	return true
}

// CreateWorkflow creates a department's approval workflow configuration.
func (h *AdminHandler) CreateWorkflow(c *gin.Context) {
	var req workflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validWorkflowRoles(req.Step1Role, req.Step2Role, req.Step3Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown step role"})
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	w := &models.ApprovalWorkflow{
		Department: req.Department,
		Step1Role:  req.Step1Role,
		Step2Role:  req.Step2Role,
		Step3Role:  req.Step3Role,
		Active:     active,
	}
	if err := h.workflows.Create(w); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

// ListWorkflows returns all workflow configurations.
func (h *AdminHandler) ListWorkflows(c *gin.Context) {
	workflows, err := h.workflows.List()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workflows": workflows})
}

// UpdateWorkflow replaces a workflow's steps and active flag.
func (h *AdminHandler) UpdateWorkflow(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req workflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validWorkflowRoles(req.Step1Role, req.Step2Role, req.Step3Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown step role"})
		return
	}

	w, err := h.workflows.GetByID(id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if w == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "workflow not found"})
		return
	}

	w.Step1Role = req.Step1Role
	w.Step2Role = req.Step2Role
	w.Step3Role = req.Step3Role
	if req.Active != nil {
		w.Active = *req.Active
	}

	if _, err := h.workflows.Update(w); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// DeleteWorkflow removes a workflow configuration.
func (h *AdminHandler) DeleteWorkflow(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	deleted, err := h.workflows.Delete(id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "workflow not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/procureflow/backend/internal/auth"
	"github.com/procureflow/backend/internal/models"
	"go.uber.org/zap"
)

// Config holds HTTP server configuration.
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
}

// Handlers bundles every route handler the server mounts.
type Handlers struct {
	Auth          *AuthHandler
	Requisitions  *RequisitionHandler
	Documents     *DocumentHandler
	Budgets       *BudgetHandler
	Notifications *NotificationHandler
	Admin         *AdminHandler
	Orders        *PurchaseOrderHandler
	Reports       *ReportHandler
}

// Server is the HTTP front of the service.
type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

// NewServer builds the router and wires all routes.
func NewServer(cfg Config, issuer *auth.TokenIssuer, h Handlers, logger *zap.Logger) *Server {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))
	router.Use(corsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "procureflow",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	api := router.Group("/api")
	api.POST("/auth/login", h.Auth.Login)

	authed := api.Group("")
	authed.Use(auth.Middleware(issuer))
	{
		authed.GET("/auth/me", h.Auth.Me)

		authed.POST("/requisitions", h.Requisitions.Submit)
		authed.GET("/requisitions", h.Requisitions.List)
		authed.GET("/requisitions/:id", h.Requisitions.Get)
		authed.PUT("/requisitions/:id", h.Requisitions.Resubmit)
		authed.POST("/requisitions/:id/decision", h.Requisitions.Decide)

		authed.POST("/documents", h.Documents.Upload)
		authed.GET("/documents", h.Documents.List)
		authed.GET("/documents/:id/file", h.Documents.Download)
		authed.POST("/documents/:id/approve", h.Documents.Approve)
		authed.POST("/documents/:id/reject", h.Documents.Reject)
		authed.DELETE("/documents/:id", h.Documents.Delete)

		authed.GET("/budgets", h.Budgets.List)
		authed.GET("/budgets/:department", h.Budgets.Get)
		authed.PUT("/budgets/:department", auth.RequireRole(), h.Budgets.SetAllocation)

		authed.GET("/notifications", h.Notifications.List)
		authed.POST("/notifications/:id/read", h.Notifications.MarkRead)

		finance := authed.Group("")
		finance.Use(auth.RequireRole(models.RoleFinanceManager))
		{
			finance.POST("/purchase-orders", h.Orders.Create)
			finance.PUT("/purchase-orders/:id/status", h.Orders.UpdateStatus)
			finance.DELETE("/purchase-orders/:id", h.Orders.Delete)
		}
		authed.GET("/purchase-orders", h.Orders.List)
		authed.GET("/purchase-orders/:id", h.Orders.Get)
		authed.POST("/grns", h.Orders.CreateGrn)
		authed.GET("/grns", h.Orders.ListGrns)

		reports := authed.Group("/reports")
		reports.Use(auth.RequireRole(
			models.RoleDepartmentManager, models.RoleITManager, models.RoleFinanceManager))
		{
			reports.GET("/budgets.xlsx", h.Reports.Budgets)
			reports.GET("/approved.xlsx", h.Reports.Approved)
		}

		admin := authed.Group("/admin")
		admin.Use(auth.RequireRole()) // SUPERADMIN only
		{
			admin.GET("/users", h.Admin.ListUsers)
			admin.POST("/users", h.Admin.CreateUser)
			admin.PUT("/users/:id", h.Admin.UpdateUser)
			admin.DELETE("/users/:id", h.Admin.DeleteUser)

			admin.GET("/departments", h.Admin.ListDepartments)
			admin.POST("/departments", h.Admin.CreateDepartment)
			admin.PUT("/departments/:id", h.Admin.UpdateDepartment)
			admin.DELETE("/departments/:id", h.Admin.DeleteDepartment)

			admin.GET("/workflows", h.Admin.ListWorkflows)
			admin.POST("/workflows", h.Admin.CreateWorkflow)
			admin.PUT("/workflows/:id", h.Admin.UpdateWorkflow)
			admin.DELETE("/workflows/:id", h.Admin.DeleteWorkflow)
		}
	}

	return &Server{
		srv: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		logger: logger,
	}
}

// Run starts listening and blocks until the server stops.
func (s *Server) Run() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

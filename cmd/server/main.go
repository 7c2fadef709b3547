package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/procureflow/backend/internal/auth"
	"github.com/procureflow/backend/internal/budget"
	"github.com/procureflow/backend/internal/config"
	"github.com/procureflow/backend/internal/docinspect"
	httpapi "github.com/procureflow/backend/internal/interfaces/http"
	"github.com/procureflow/backend/internal/notify"
	"github.com/procureflow/backend/internal/report"
	"github.com/procureflow/backend/internal/repository"
	"github.com/procureflow/backend/internal/workflow"
	"github.com/procureflow/backend/migrations"
	"github.com/procureflow/backend/pkg/database"
	"github.com/procureflow/backend/pkg/utils"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env before anything reads the environment.
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting procurement approval service",
		zap.Int("port", cfg.Server.Port))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.Run(migrations.FS); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	if err := os.MkdirAll(cfg.Storage.UploadDir, 0755); err != nil {
		logger.Fatal("Failed to create upload directory", zap.Error(err))
	}

	// Repositories
	requisitionRepo := repository.NewRequisitionRepository(db.DB, logger)
	decisionRepo := repository.NewDecisionRepository(db.DB, logger)
	workflowRepo := repository.NewWorkflowRepository(db.DB, logger)
	budgetRepo := repository.NewBudgetRepository(db.DB, logger)
	documentRepo := repository.NewDocumentRepository(db.DB, logger)
	notificationRepo := repository.NewNotificationRepository(db.DB, logger)
	userRepo := repository.NewUserRepository(db.DB, logger)
	departmentRepo := repository.NewDepartmentRepository(db.DB, logger)
	orderRepo := repository.NewPurchaseOrderRepository(db.DB, logger)
	grnRepo := repository.NewGrnRepository(db.DB, logger)

	// Optional Lark push
	var notifier workflow.Notifier
	if cfg.Lark.Enabled {
		notifier = notify.NewLarkNotifier(notify.Config{
			AppID:         cfg.Lark.AppID,
			AppSecret:     cfg.Lark.AppSecret,
			ReceiveIDType: cfg.Lark.ReceiveIDType,
		}, logger)
		logger.Info("Lark push notifications enabled")
	}

	// Core engines and services
	engine := workflow.NewRequisitionApprovalEngine(
		db, requisitionRepo, decisionRepo, workflowRepo, budgetRepo, notificationRepo, notifier, logger)
	docEngine := workflow.NewDocumentApprovalEngine(
		db, documentRepo, decisionRepo, notificationRepo, notifier, logger)
	ledger := budget.NewLedger(budgetRepo, logger)
	inspector := docinspect.NewInspector(logger)
	exporter := report.NewExporter(ledger, requisitionRepo, cfg.Reports.OutputDir, logger)

	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := auth.NewService(userRepo, issuer, logger)

	// Nightly report schedule
	if cfg.Reports.EnableNightly {
		scheduler, err := report.NewScheduler(exporter, cfg.Reports.NightlyCron, logger)
		if err != nil {
			logger.Fatal("Failed to initialize report scheduler", zap.Error(err))
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	server := httpapi.NewServer(httpapi.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Debug:        cfg.Logger.Level == "debug",
	}, issuer, httpapi.Handlers{
		Auth:          httpapi.NewAuthHandler(authService, logger),
		Requisitions:  httpapi.NewRequisitionHandler(engine, logger),
		Documents:     httpapi.NewDocumentHandler(docEngine, inspector, cfg.Storage.UploadDir, cfg.Storage.MaxUploadSize, logger),
		Budgets:       httpapi.NewBudgetHandler(ledger, logger),
		Notifications: httpapi.NewNotificationHandler(notificationRepo, logger),
		Admin:         httpapi.NewAdminHandler(userRepo, departmentRepo, workflowRepo, logger),
		Orders:        httpapi.NewPurchaseOrderHandler(orderRepo, grnRepo, requisitionRepo, logger),
		Reports:       httpapi.NewReportHandler(exporter, logger),
	}, logger)

	go func() {
		if err := server.Run(); err != nil {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}

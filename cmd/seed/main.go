// Command seed loads demo users, departments, workflows, and budgets into an
// empty database.
package main

import (
	"fmt"
	"os"

	"github.com/procureflow/backend/internal/auth"
	"github.com/procureflow/backend/internal/config"
	"github.com/procureflow/backend/internal/models"
	"github.com/procureflow/backend/internal/repository"
	"github.com/procureflow/backend/migrations"
	"github.com/procureflow/backend/pkg/database"
	"github.com/procureflow/backend/pkg/utils"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
)

type seedUser struct {
	username   string
	password   string
	fullName   string
	role       string
	department string
}

var users = []seedUser{
	{"admin", "admin123", "System Administrator", models.RoleSuperadmin, ""},
	{"dave", "password", "Dave Mercer", models.RoleDepartmentManager, "Sales"},
	{"ian", "password", "Ian Koh", models.RoleITManager, "IT"},
	{"fred", "password", "Freda Lim", models.RoleFinanceManager, "Finance"},
	{"alice", "password", "Alice Tan", models.RoleEmployee, "Sales"},
	{"bob", "password", "Bob Ng", models.RoleEmployee, "Marketing"},
}

var departments = []models.Department{
	{Name: "Sales", Description: "Field and inside sales", ManagerName: "Dave Mercer", ManagerUsername: "dave", Active: true},
	{Name: "Marketing", Description: "Brand and campaigns", Active: true},
	{Name: "IT", Description: "Infrastructure and support", ManagerName: "Ian Koh", ManagerUsername: "ian", Active: true},
	{Name: "Finance", Description: "Accounting and procurement", ManagerName: "Freda Lim", ManagerUsername: "fred", Active: true},
}

var workflows = []models.ApprovalWorkflow{
	{Department: "Sales", Step1Role: models.RoleDepartmentManager, Step2Role: models.RoleITManager, Step3Role: models.RoleFinanceManager, Active: true},
	{Department: "IT", Step1Role: "", Step2Role: models.RoleITManager, Step3Role: models.RoleFinanceManager, Active: true},
	{Department: "Finance", Step1Role: models.RoleDepartmentManager, Step2Role: "", Step3Role: models.RoleFinanceManager, Active: true},
}

var budgets = map[string]float64{
	"Sales":     200000,
	"Marketing": 80000,
	"IT":        150000,
	"Finance":   50000,
}

func main() {
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     "console",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

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

	if err := database.NewMigrator(db, logger).Run(migrations.FS); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db.DB, logger)
	departmentRepo := repository.NewDepartmentRepository(db.DB, logger)
	workflowRepo := repository.NewWorkflowRepository(db.DB, logger)
	budgetRepo := repository.NewBudgetRepository(db.DB, logger)

	for _, u := range users {
		existing, err := userRepo.GetByUsername(u.username)
		if err != nil {
			logger.Fatal("Failed to look up user", zap.Error(err))
		}
		if existing != nil {
			continue
		}

		hash, err := auth.HashPassword(u.password)
		if err != nil {
			logger.Fatal("Failed to hash password", zap.Error(err))
		}
		err = userRepo.Create(&models.User{
			Username:     u.username,
			PasswordHash: hash,
			FullName:     u.fullName,
			Role:         u.role,
			Department:   u.department,
		})
		if err != nil {
			logger.Fatal("Failed to create user", zap.String("username", u.username), zap.Error(err))
		}
		logger.Info("Seeded user", zap.String("username", u.username), zap.String("role", u.role))
	}

	for i := range departments {
		d := departments[i]
		existing, err := departmentRepo.GetByName(d.Name)
		if err != nil {
			logger.Fatal("Failed to look up department", zap.Error(err))
		}
		if existing != nil {
			continue
		}
		if err := departmentRepo.Create(&d); err != nil {
			logger.Fatal("Failed to create department", zap.String("name", d.Name), zap.Error(err))
		}
		logger.Info("Seeded department", zap.String("name", d.Name))
	}

	for i := range workflows {
		w := workflows[i]
		existing, err := workflowRepo.GetActiveByDepartment(w.Department)
		if err != nil {
			logger.Fatal("Failed to look up workflow", zap.Error(err))
		}
		if existing != nil {
			continue
		}
		if err := workflowRepo.Create(&w); err != nil {
			logger.Fatal("Failed to create workflow", zap.String("department", w.Department), zap.Error(err))
		}
		logger.Info("Seeded workflow", zap.String("department", w.Department))
	}

	for department, total := range budgets {
		existing, err := budgetRepo.GetByDepartment(department)
		if err != nil {
			logger.Fatal("Failed to look up budget", zap.Error(err))
		}
		if existing != nil {
			continue
		}
		if _, err := budgetRepo.SetAllocation(department, total); err != nil {
			logger.Fatal("Failed to seed budget", zap.String("department", department), zap.Error(err))
		}
		logger.Info("Seeded budget", zap.String("department", department), zap.Float64("total", total))
	}

	logger.Info("Seeding complete")
}

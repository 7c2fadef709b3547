package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/procureflow/backend/internal/models"
	"go.uber.org/zap"
)

// DepartmentRepository handles department master data.
type DepartmentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDepartmentRepository creates a new department repository.
func NewDepartmentRepository(db *sql.DB, logger *zap.Logger) *DepartmentRepository {
	return &DepartmentRepository{
		db:     db,
		logger: logger,
	}
}

const departmentColumns = `id, name, description, manager_name, manager_username, active, created_at, updated_at`

func scanDepartment(scanner interface{ Scan(...interface{}) error }) (*models.Department, error) {
	var d models.Department
	err := scanner.Scan(
		&d.ID,
		&d.Name,
		&d.Description,
		&d.ManagerName,
		&d.ManagerUsername,
		&d.Active,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a department.
func (r *DepartmentRepository) Create(d *models.Department) error {
	result, err := r.db.Exec(
		`INSERT INTO departments (name, description, manager_name, manager_username, active)
		 VALUES (?, ?, ?, ?, ?)`,
		d.Name, d.Description, d.ManagerName, d.ManagerUsername, d.Active,
	)
	if err != nil {
		r.logger.Error("Failed to create department", zap.String("name", d.Name), zap.Error(err))
		return fmt.Errorf("failed to create department: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	d.ID = id
	return nil
}

// GetByID retrieves a department. Returns nil when the id does not exist.
func (r *DepartmentRepository) GetByID(id int64) (*models.Department, error) {
	row := r.db.QueryRow(`SELECT `+departmentColumns+` FROM departments WHERE id = ?`, id)

	d, err := scanDepartment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get department", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get department: %w", err)
	}
	return d, nil
}

// GetByName retrieves a department by name. Returns nil when the name is
// unknown.
func (r *DepartmentRepository) GetByName(name string) (*models.Department, error) {
	row := r.db.QueryRow(`SELECT `+departmentColumns+` FROM departments WHERE name = ?`, name)

	d, err := scanDepartment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get department", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("failed to get department: %w", err)
	}
	return d, nil
}

// List retrieves departments ordered by name. When activeOnly is set,
// deactivated departments are filtered out.
func (r *DepartmentRepository) List(activeOnly bool) ([]*models.Department, error) {
	query := `SELECT ` + departmentColumns + ` FROM departments`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY name`

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Error("Failed to list departments", zap.Error(err))
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	defer rows.Close()

	var departments []*models.Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

// Update replaces the department's mutable fields. Returns false when the id
// does not exist.
func (r *DepartmentRepository) Update(d *models.Department) (bool, error) {
	result, err := r.db.Exec(
		`UPDATE departments
		 SET description = ?, manager_name = ?, manager_username = ?, active = ?, updated_at = ?
		 WHERE id = ?`,
		d.Description, d.ManagerName, d.ManagerUsername, d.Active, time.Now().UTC(), d.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update department", zap.Int64("id", d.ID), zap.Error(err))
		return false, fmt.Errorf("failed to update department: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected == 1, nil
}

// Delete removes a department. Returns false when the id does not exist.
func (r *DepartmentRepository) Delete(id int64) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM departments WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete department", zap.Int64("id", id), zap.Error(err))
		return false, fmt.Errorf("failed to delete department: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected == 1, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"bhms-data/internal/domain"

	"github.com/shopspring/decimal"
)

type PostgresStaffRepository struct {
	db *sql.DB
}

func NewPostgresStaffRepository(db *sql.DB) *PostgresStaffRepository {
	return &PostgresStaffRepository{db: db}
}

// ============================================
// Owners
// ============================================

func (r *PostgresStaffRepository) ListOwners(ctx context.Context) ([]*domain.Owner, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT owner_id::text, name, COALESCE(phone, ''), COALESCE(email, ''), created_at
		 FROM owners ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list owners: %w", err)
	}
	defer rows.Close()

	out := []*domain.Owner{}
	for rows.Next() {
		var o domain.Owner
		if err := rows.Scan(&o.OwnerID, &o.Name, &o.Phone, &o.Email, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &o)
	}
	return out, rows.Err()
}

func (r *PostgresStaffRepository) CreateOwner(ctx context.Context, owner *domain.Owner) (string, error) {
	if owner == nil || owner.Name == "" {
		return "", fmt.Errorf("name is required")
	}

	var ownerID string
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO owners (name, phone, email)
		 VALUES ($1, $2, $3)
		 RETURNING owner_id::text`,
		owner.Name, nullIfEmpty(owner.Phone), nullIfEmpty(owner.Email),
	).Scan(&ownerID)
	if err != nil {
		return "", fmt.Errorf("failed to create owner: %w", err)
	}
	return ownerID, nil
}

// ============================================
// Caretakers
// ============================================

func (r *PostgresStaffRepository) ListCaretakers(ctx context.Context) ([]*domain.Caretaker, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT caretaker_id::text, COALESCE(owner_id::text, ''), name,
		        COALESCE(phone, ''), COALESCE(email, ''), created_at
		 FROM caretakers ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list caretakers: %w", err)
	}
	defer rows.Close()

	out := []*domain.Caretaker{}
	for rows.Next() {
		var c domain.Caretaker
		if err := rows.Scan(&c.CaretakerID, &c.OwnerID, &c.Name,
			&c.Phone, &c.Email, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (r *PostgresStaffRepository) GetCaretaker(ctx context.Context, caretakerID string) (*domain.Caretaker, error) {
	if caretakerID == "" {
		return nil, fmt.Errorf("caretaker_id is required")
	}

	var c domain.Caretaker
	err := r.db.QueryRowContext(ctx,
		`SELECT caretaker_id::text, COALESCE(owner_id::text, ''), name,
		        COALESCE(phone, ''), COALESCE(email, ''), created_at
		 FROM caretakers WHERE caretaker_id = $1`,
		caretakerID,
	).Scan(&c.CaretakerID, &c.OwnerID, &c.Name, &c.Phone, &c.Email, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("caretaker '%s': %w", caretakerID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get caretaker: %w", err)
	}
	return &c, nil
}

func (r *PostgresStaffRepository) CreateCaretaker(ctx context.Context, caretaker *domain.Caretaker) (string, error) {
	if caretaker == nil || caretaker.Name == "" {
		return "", fmt.Errorf("name is required")
	}

	var ownerIDArg any = nil
	if caretaker.OwnerID != "" {
		ownerIDArg = caretaker.OwnerID
	}

	var caretakerID string
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO caretakers (owner_id, name, phone, email)
		 VALUES ($1, $2, $3, $4)
		 RETURNING caretaker_id::text`,
		ownerIDArg, caretaker.Name,
		nullIfEmpty(caretaker.Phone), nullIfEmpty(caretaker.Email),
	).Scan(&caretakerID)
	if err != nil {
		return "", fmt.Errorf("failed to create caretaker: %w", err)
	}
	return caretakerID, nil
}

// ============================================
// Employees
// ============================================

func (r *PostgresStaffRepository) ListEmployees(ctx context.Context, caretakerID string) ([]*domain.Employee, error) {
	where := "1=1"
	args := []any{}
	if caretakerID != "" {
		where = "caretaker_id = $1"
		args = append(args, caretakerID)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT employee_id::text, COALESCE(caretaker_id::text, ''), name,
		        COALESCE(position, ''), COALESCE(phone, ''), salary, created_at
		 FROM employees WHERE `+where+` ORDER BY name`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	out := []*domain.Employee{}
	for rows.Next() {
		var e domain.Employee
		var salary decimal.NullDecimal
		if err := rows.Scan(&e.EmployeeID, &e.CaretakerID, &e.Name,
			&e.Position, &e.Phone, &salary, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Salary = salary.Decimal
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (r *PostgresStaffRepository) CreateEmployee(ctx context.Context, employee *domain.Employee) (string, error) {
	if employee == nil || employee.Name == "" {
		return "", fmt.Errorf("name is required")
	}

	var caretakerIDArg any = nil
	if employee.CaretakerID != "" {
		caretakerIDArg = employee.CaretakerID
	}
	var salaryArg any = nil
	if !employee.Salary.IsZero() {
		salaryArg = employee.Salary
	}

	var employeeID string
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO employees (caretaker_id, name, position, phone, salary)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING employee_id::text`,
		caretakerIDArg, employee.Name, nullIfEmpty(employee.Position),
		nullIfEmpty(employee.Phone), salaryArg,
	).Scan(&employeeID)
	if err != nil {
		return "", fmt.Errorf("failed to create employee: %w", err)
	}
	return employeeID, nil
}

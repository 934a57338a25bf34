package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"bhms-data/internal/domain"
)

type PostgresGuardiansRepository struct {
	db *sql.DB
}

func NewPostgresGuardiansRepository(db *sql.DB) *PostgresGuardiansRepository {
	return &PostgresGuardiansRepository{db: db}
}

// ListGuardians 查询某 boarder 的监护人
func (r *PostgresGuardiansRepository) ListGuardians(ctx context.Context, boarderID string) ([]*domain.Guardian, error) {
	if boarderID == "" {
		return nil, fmt.Errorf("boarder_id is required")
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT guardian_id::text, boarder_id::text, name,
		        COALESCE(phone, ''), COALESCE(relationship, '')
		 FROM guardians
		 WHERE boarder_id = $1
		 ORDER BY name`,
		boarderID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list guardians: %w", err)
	}
	defer rows.Close()

	out := []*domain.Guardian{}
	for rows.Next() {
		var g domain.Guardian
		if err := rows.Scan(&g.GuardianID, &g.BoarderID, &g.Name,
			&g.Phone, &g.Relationship); err != nil {
			return nil, err
		}
		out = append(out, &g)
	}
	return out, rows.Err()
}

// CreateGuardian 创建监护人
func (r *PostgresGuardiansRepository) CreateGuardian(ctx context.Context, guardian *domain.Guardian) (string, error) {
	if guardian == nil || guardian.BoarderID == "" {
		return "", fmt.Errorf("boarder_id is required")
	}
	if guardian.Name == "" {
		return "", fmt.Errorf("name is required")
	}

	var guardianID string
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO guardians (boarder_id, name, phone, relationship)
		 VALUES ($1, $2, $3, $4)
		 RETURNING guardian_id::text`,
		guardian.BoarderID, guardian.Name,
		nullIfEmpty(guardian.Phone), nullIfEmpty(guardian.Relationship),
	).Scan(&guardianID)
	if err != nil {
		return "", fmt.Errorf("failed to create guardian: %w", err)
	}
	return guardianID, nil
}

// UpdateGuardian 更新监护人
func (r *PostgresGuardiansRepository) UpdateGuardian(ctx context.Context, guardianID string, guardian *domain.Guardian) error {
	if guardianID == "" {
		return fmt.Errorf("guardian_id is required")
	}
	if guardian == nil {
		return fmt.Errorf("guardian is required")
	}

	updates := []string{}
	args := []any{guardianID}
	argIdx := 2

	if guardian.Name != "" {
		updates = append(updates, fmt.Sprintf("name = $%d", argIdx))
		args = append(args, guardian.Name)
		argIdx++
	}
	if guardian.Phone != "" {
		updates = append(updates, fmt.Sprintf("phone = $%d", argIdx))
		args = append(args, guardian.Phone)
		argIdx++
	}
	if guardian.Relationship != "" {
		updates = append(updates, fmt.Sprintf("relationship = $%d", argIdx))
		args = append(args, guardian.Relationship)
		argIdx++
	}
	if len(updates) == 0 {
		return nil
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE guardians SET `+strings.Join(updates, ", ")+` WHERE guardian_id = $1`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to update guardian: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("guardian '%s': %w", guardianID, domain.ErrNotFound)
	}
	return nil
}

// DeleteGuardian 删除监护人
func (r *PostgresGuardiansRepository) DeleteGuardian(ctx context.Context, guardianID string) error {
	if guardianID == "" {
		return fmt.Errorf("guardian_id is required")
	}

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM guardians WHERE guardian_id = $1`, guardianID)
	if err != nil {
		return fmt.Errorf("failed to delete guardian: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("guardian '%s': %w", guardianID, domain.ErrNotFound)
	}
	return nil
}

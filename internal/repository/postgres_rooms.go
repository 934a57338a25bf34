package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"bhms-data/internal/domain"

	"github.com/lib/pq"
)

type PostgresRoomsRepository struct {
	db *sql.DB
}

func NewPostgresRoomsRepository(db *sql.DB) *PostgresRoomsRepository {
	return &PostgresRoomsRepository{db: db}
}

// ListRooms 房间列表
func (r *PostgresRoomsRepository) ListRooms(ctx context.Context, filters RoomFilters) ([]*domain.Room, error) {
	where := []string{"1=1"}
	args := []any{}
	argIdx := 1

	if filters.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, filters.Status)
		argIdx++
	}
	if filters.Floor != "" {
		where = append(where, fmt.Sprintf("floor = $%d", argIdx))
		args = append(args, filters.Floor)
		argIdx++
	}
	if filters.Search != "" {
		where = append(where, fmt.Sprintf("room_number ILIKE $%d", argIdx))
		args = append(args, "%"+filters.Search+"%")
		argIdx++
	}

	q := `
		SELECT room_id::text, room_number, rent, status, COALESCE(floor, ''),
		       created_at, updated_at
		FROM rooms
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY room_number
	`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	out := []*domain.Room{}
	for rows.Next() {
		var room domain.Room
		if err := rows.Scan(&room.RoomID, &room.RoomNumber, &room.Rent,
			&room.Status, &room.Floor, &room.CreatedAt, &room.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &room)
	}
	return out, rows.Err()
}

// GetRoom 获取单个房间
func (r *PostgresRoomsRepository) GetRoom(ctx context.Context, roomID string) (*domain.Room, error) {
	if roomID == "" {
		return nil, fmt.Errorf("room_id is required")
	}

	var room domain.Room
	err := r.db.QueryRowContext(ctx,
		`SELECT room_id::text, room_number, rent, status, COALESCE(floor, ''),
		        created_at, updated_at
		 FROM rooms WHERE room_id = $1`,
		roomID,
	).Scan(&room.RoomID, &room.RoomNumber, &room.Rent, &room.Status,
		&room.Floor, &room.CreatedAt, &room.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("room '%s': %w", roomID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return &room, nil
}

// CreateRoom 创建房间（初始状态 Available，除非显式标记 Maintenance）
func (r *PostgresRoomsRepository) CreateRoom(ctx context.Context, room *domain.Room) (string, error) {
	if room == nil || room.RoomNumber == "" {
		return "", fmt.Errorf("room_number is required")
	}

	status := room.Status
	if status == "" {
		status = domain.RoomStatusAvailable
	}
	// Occupied 不允许手工设置，只能由占用推导写入
	if status == domain.RoomStatusOccupied {
		return "", fmt.Errorf("room status 'Occupied' is derived and cannot be set directly")
	}

	var roomID string
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO rooms (room_number, rent, status, floor)
		 VALUES ($1, $2, $3, $4)
		 RETURNING room_id::text`,
		room.RoomNumber, room.Rent, status, nullIfEmpty(room.Floor),
	).Scan(&roomID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return "", fmt.Errorf("room_number '%s' already exists", room.RoomNumber)
		}
		return "", fmt.Errorf("failed to create room: %w", err)
	}
	return roomID, nil
}

// UpdateRoom 更新房间基础字段（room_number/rent/floor；状态不在此处修改）
func (r *PostgresRoomsRepository) UpdateRoom(ctx context.Context, roomID string, room *domain.Room) error {
	if roomID == "" {
		return fmt.Errorf("room_id is required")
	}
	if room == nil {
		return fmt.Errorf("room is required")
	}

	updates := []string{"updated_at = now()"}
	args := []any{roomID}
	argIdx := 2

	if room.RoomNumber != "" {
		updates = append(updates, fmt.Sprintf("room_number = $%d", argIdx))
		args = append(args, room.RoomNumber)
		argIdx++
	}
	if !room.Rent.IsZero() {
		updates = append(updates, fmt.Sprintf("rent = $%d", argIdx))
		args = append(args, room.Rent)
		argIdx++
	}
	if room.Floor != "" {
		updates = append(updates, fmt.Sprintf("floor = $%d", argIdx))
		args = append(args, room.Floor)
		argIdx++
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE rooms SET `+strings.Join(updates, ", ")+` WHERE room_id = $1`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to update room: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("room '%s': %w", roomID, domain.ErrNotFound)
	}
	return nil
}

// DeleteRoom 删除房间（仍有 boarder 入住时拒绝）
func (r *PostgresRoomsRepository) DeleteRoom(ctx context.Context, roomID string) error {
	if roomID == "" {
		return fmt.Errorf("room_id is required")
	}

	var occupied bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM boarders WHERE room_id = $1)`,
		roomID,
	).Scan(&occupied)
	if err != nil {
		return fmt.Errorf("failed to check room occupancy: %w", err)
	}
	if occupied {
		return fmt.Errorf("room '%s' still has boarders assigned", roomID)
	}

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM rooms WHERE room_id = $1`, roomID)
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("room '%s': %w", roomID, domain.ErrNotFound)
	}
	return nil
}

// SetMaintenance 标记维修（粘性覆盖：占用推导不会改写 Maintenance 状态）
func (r *PostgresRoomsRepository) SetMaintenance(ctx context.Context, roomID string) error {
	if roomID == "" {
		return fmt.Errorf("room_id is required")
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE rooms SET status = 'Maintenance', updated_at = now() WHERE room_id = $1`,
		roomID,
	)
	if err != nil {
		return fmt.Errorf("failed to set maintenance: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("room '%s': %w", roomID, domain.ErrNotFound)
	}
	return nil
}

// ClearMaintenance 解除维修标记：按当前是否有 boarder 入住重算 Available/Occupied
func (r *PostgresRoomsRepository) ClearMaintenance(ctx context.Context, roomID string) error {
	if roomID == "" {
		return fmt.Errorf("room_id is required")
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE rooms
		 SET status = CASE
		         WHEN EXISTS(SELECT 1 FROM boarders WHERE room_id = $1) THEN 'Occupied'
		         ELSE 'Available'
		     END,
		     updated_at = now()
		 WHERE room_id = $1 AND status = 'Maintenance'`,
		roomID,
	)
	if err != nil {
		return fmt.Errorf("failed to clear maintenance: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("room '%s' is not under maintenance: %w", roomID, domain.ErrNotFound)
	}
	return nil
}

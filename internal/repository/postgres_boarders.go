package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"bhms-data/internal/domain"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type PostgresBoardersRepository struct {
	db *sql.DB
}

func NewPostgresBoardersRepository(db *sql.DB) *PostgresBoardersRepository {
	return &PostgresBoardersRepository{db: db}
}

// ============================================
// 查询
// ============================================

// GetBoarder 获取单个住宿人
func (r *PostgresBoardersRepository) GetBoarder(ctx context.Context, boarderID string) (*domain.Boarder, error) {
	if boarderID == "" {
		return nil, fmt.Errorf("boarder_id is required")
	}

	q := `
		SELECT
			boarder_id::text,
			first_name,
			last_name,
			COALESCE(phone, ''),
			email,
			COALESCE(room_id::text, ''),
			COALESCE(caretaker_id::text, ''),
			move_in_date,
			created_at,
			updated_at
		FROM boarders
		WHERE boarder_id = $1
	`
	var b domain.Boarder
	err := r.db.QueryRowContext(ctx, q, boarderID).Scan(
		&b.BoarderID, &b.FirstName, &b.LastName, &b.Phone, &b.Email,
		&b.RoomID, &b.CaretakerID, &b.MoveInDate, &b.CreatedAt, &b.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("boarder '%s': %w", boarderID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get boarder: %w", err)
	}
	return &b, nil
}

// ListBoarders 住宿人列表（带房间投影，展示用只读视图）
func (r *PostgresBoardersRepository) ListBoarders(ctx context.Context, filters BoarderFilters, page, size int) ([]*BoarderWithRoom, int, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}

	where := []string{"1=1"}
	args := []any{}
	argIdx := 1

	if filters.RoomID != "" {
		where = append(where, fmt.Sprintf("b.room_id = $%d", argIdx))
		args = append(args, filters.RoomID)
		argIdx++
	}
	if filters.CaretakerID != "" {
		where = append(where, fmt.Sprintf("b.caretaker_id = $%d", argIdx))
		args = append(args, filters.CaretakerID)
		argIdx++
	}
	if filters.Search != "" {
		where = append(where, fmt.Sprintf(
			"(b.first_name ILIKE $%d OR b.last_name ILIKE $%d OR b.email ILIKE $%d)",
			argIdx, argIdx, argIdx))
		args = append(args, "%"+filters.Search+"%")
		argIdx++
	}
	whereClause := strings.Join(where, " AND ")

	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM boarders b WHERE `+whereClause, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count boarders: %w", err)
	}

	q := `
		SELECT
			b.boarder_id::text,
			b.first_name,
			b.last_name,
			COALESCE(b.phone, ''),
			b.email,
			COALESCE(b.room_id::text, ''),
			COALESCE(b.caretaker_id::text, ''),
			b.move_in_date,
			b.created_at,
			b.updated_at,
			r.room_id::text,
			r.room_number,
			r.rent,
			r.status,
			COALESCE(r.floor, '')
		FROM boarders b
		LEFT JOIN rooms r ON r.room_id = b.room_id
		WHERE ` + whereClause + `
		ORDER BY b.last_name, b.first_name
		LIMIT $` + fmt.Sprintf("%d", argIdx) + ` OFFSET $` + fmt.Sprintf("%d", argIdx+1)
	args = append(args, size, (page-1)*size)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list boarders: %w", err)
	}
	defer rows.Close()

	out := []*BoarderWithRoom{}
	for rows.Next() {
		var b domain.Boarder
		var roomID, roomNumber, roomStatus, roomFloor sql.NullString
		var rent decimal.NullDecimal
		if err := rows.Scan(
			&b.BoarderID, &b.FirstName, &b.LastName, &b.Phone, &b.Email,
			&b.RoomID, &b.CaretakerID, &b.MoveInDate, &b.CreatedAt, &b.UpdatedAt,
			&roomID, &roomNumber, &rent, &roomStatus, &roomFloor,
		); err != nil {
			return nil, 0, err
		}
		item := &BoarderWithRoom{Boarder: &b}
		if roomID.Valid {
			item.Room = &domain.Room{
				RoomID:     roomID.String,
				RoomNumber: roomNumber.String,
				Rent:       rent.Decimal,
				Status:     domain.RoomStatus(roomStatus.String),
				Floor:      roomFloor.String,
			}
		}
		out = append(out, item)
	}
	return out, total, rows.Err()
}

// ============================================
// 写路径（房态推导在同一事务内，替代房间状态触发器）
// ============================================

// CreateBoarder 创建住宿人
// 替代触发器：trg_room_occupied_on_boarder_insert
// 带 room_id 创建时，同一事务内将该房间置为 Occupied
func (r *PostgresBoardersRepository) CreateBoarder(ctx context.Context, boarder *domain.Boarder) (string, error) {
	if boarder == nil {
		return "", fmt.Errorf("boarder is required")
	}
	if boarder.FirstName == "" || boarder.LastName == "" {
		return "", fmt.Errorf("first_name and last_name are required")
	}
	if boarder.Email == "" {
		return "", fmt.Errorf("email is required")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var roomIDArg any = nil
	if boarder.RoomID != "" {
		roomIDArg = boarder.RoomID
	}
	var caretakerIDArg any = nil
	if boarder.CaretakerID != "" {
		caretakerIDArg = boarder.CaretakerID
	}
	var moveInArg any = nil
	if boarder.MoveInDate != nil {
		moveInArg = *boarder.MoveInDate
	}

	var boarderID string
	err = tx.QueryRowContext(ctx,
		`INSERT INTO boarders (first_name, last_name, phone, email, room_id, caretaker_id, move_in_date)
		 VALUES ($1, $2, $3, LOWER($4), $5, $6, $7)
		 RETURNING boarder_id::text`,
		boarder.FirstName, boarder.LastName, nullIfEmpty(boarder.Phone),
		boarder.Email, roomIDArg, caretakerIDArg, moveInArg,
	).Scan(&boarderID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return "", fmt.Errorf("email '%s': %w", boarder.Email, domain.ErrDuplicateEmail)
		}
		return "", fmt.Errorf("failed to create boarder: %w", err)
	}

	if boarder.RoomID != "" {
		if err := occupyRoom(ctx, tx, boarder.RoomID); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return boarderID, nil
}

// UpdateBoarder 更新基础字段（联系方式/负责管理员；不改变房间绑定，换房走 AssignRoom）
func (r *PostgresBoardersRepository) UpdateBoarder(ctx context.Context, boarderID string, boarder *domain.Boarder) error {
	if boarderID == "" {
		return fmt.Errorf("boarder_id is required")
	}
	if boarder == nil {
		return fmt.Errorf("boarder is required")
	}

	updates := []string{"updated_at = now()"}
	args := []any{boarderID}
	argIdx := 2

	if boarder.FirstName != "" {
		updates = append(updates, fmt.Sprintf("first_name = $%d", argIdx))
		args = append(args, boarder.FirstName)
		argIdx++
	}
	if boarder.LastName != "" {
		updates = append(updates, fmt.Sprintf("last_name = $%d", argIdx))
		args = append(args, boarder.LastName)
		argIdx++
	}
	if boarder.Phone != "" {
		updates = append(updates, fmt.Sprintf("phone = $%d", argIdx))
		args = append(args, boarder.Phone)
		argIdx++
	}
	if boarder.Email != "" {
		updates = append(updates, fmt.Sprintf("email = LOWER($%d)", argIdx))
		args = append(args, boarder.Email)
		argIdx++
	}
	if boarder.CaretakerID != "" {
		updates = append(updates, fmt.Sprintf("caretaker_id = $%d", argIdx))
		args = append(args, boarder.CaretakerID)
		argIdx++
	}
	if boarder.MoveInDate != nil {
		updates = append(updates, fmt.Sprintf("move_in_date = $%d", argIdx))
		args = append(args, *boarder.MoveInDate)
		argIdx++
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE boarders SET `+strings.Join(updates, ", ")+` WHERE boarder_id = $1`,
		args...,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return fmt.Errorf("email '%s': %w", boarder.Email, domain.ErrDuplicateEmail)
		}
		return fmt.Errorf("failed to update boarder: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("boarder '%s': %w", boarderID, domain.ErrNotFound)
	}
	return nil
}

// AssignRoom 换房/搬出
// 替代触发器：trg_room_status_on_boarder_update
// 同一事务内：新房间置为 Occupied；原房间（与新房间不同或搬出时）在非
// Maintenance 时释放为 Available。newRoomID 为 nil 或空字符串表示搬出。
func (r *PostgresBoardersRepository) AssignRoom(ctx context.Context, boarderID string, newRoomID *string) error {
	if boarderID == "" {
		return fmt.Errorf("boarder_id is required")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// 锁定 boarder 行，读取旧绑定
	var oldRoomID sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT room_id::text FROM boarders WHERE boarder_id = $1 FOR UPDATE`,
		boarderID,
	).Scan(&oldRoomID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("boarder '%s': %w", boarderID, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to get boarder: %w", err)
	}

	newID := ""
	if newRoomID != nil {
		newID = *newRoomID
	}

	if newID == "" {
		_, err = tx.ExecContext(ctx,
			`UPDATE boarders SET room_id = NULL, updated_at = now() WHERE boarder_id = $1`,
			boarderID,
		)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE boarders SET room_id = $2, updated_at = now() WHERE boarder_id = $1`,
			boarderID, newID,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to update room assignment: %w", err)
	}

	if newID != "" {
		if err := occupyRoom(ctx, tx, newID); err != nil {
			return err
		}
	}
	if oldRoomID.Valid && oldRoomID.String != newID {
		if err := releaseRoom(ctx, tx, oldRoomID.String); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteBoarder 删除住宿人及全部从属记录
// 替代存储过程 sp_delete_boarder + 触发器 trg_room_status_on_boarder_delete
// 单事务内按固定顺序删除：
//  1. guardians
//  2. payments
//  3. charges
//  4. deposit_balances
//  5. bookings（按姓名+电话匹配；原 schema 无外键，已知局限）
//  6. boarder 本身，最后在非 Maintenance 时释放其房间
//
// 任一步失败则整体回滚，不存在可观察的部分删除状态。
func (r *PostgresBoardersRepository) DeleteBoarder(ctx context.Context, boarderID string) error {
	if boarderID == "" {
		return fmt.Errorf("boarder_id is required")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var firstName, lastName string
	var phone sql.NullString
	var roomID sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT first_name, last_name, phone, room_id::text
		 FROM boarders WHERE boarder_id = $1 FOR UPDATE`,
		boarderID,
	).Scan(&firstName, &lastName, &phone, &roomID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("boarder '%s': %w", boarderID, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to get boarder: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM guardians WHERE boarder_id = $1`, boarderID); err != nil {
		return fmt.Errorf("failed to delete guardians: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM payments WHERE boarder_id = $1`, boarderID); err != nil {
		return fmt.Errorf("failed to delete payments: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM charges WHERE boarder_id = $1`, boarderID); err != nil {
		return fmt.Errorf("failed to delete charges: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM deposit_balances WHERE boarder_id = $1`, boarderID); err != nil {
		return fmt.Errorf("failed to delete deposit balance: %w", err)
	}

	// 姓名+电话匹配（无外键可用）。同名同电话的其他客人的预订会被一并删除。
	fullName := strings.TrimSpace(firstName + " " + lastName)
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM bookings
		 WHERE guest_name = $1 AND COALESCE(guest_phone, '') = $2`,
		fullName, phone.String); err != nil {
		return fmt.Errorf("failed to delete bookings: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM boarders WHERE boarder_id = $1`, boarderID); err != nil {
		return fmt.Errorf("failed to delete boarder: %w", err)
	}

	if roomID.Valid {
		if err := releaseRoom(ctx, tx, roomID.String); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ============================================
// 房态推导（事务内部使用）
// ============================================

// occupyRoom 入住：房间置为 Occupied
func occupyRoom(ctx context.Context, tx *sql.Tx, roomID string) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE rooms SET status = 'Occupied', updated_at = now() WHERE room_id = $1`,
		roomID,
	)
	if err != nil {
		return fmt.Errorf("failed to occupy room: %w", err)
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

// releaseRoom 释放：仅在非 Maintenance 时置为 Available（Maintenance 是粘性覆盖）
func releaseRoom(ctx context.Context, tx *sql.Tx, roomID string) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE rooms SET status = 'Available', updated_at = now()
		 WHERE room_id = $1 AND status <> 'Maintenance'`,
		roomID,
	)
	if err != nil {
		return fmt.Errorf("failed to release room: %w", err)
	}
	return nil
}

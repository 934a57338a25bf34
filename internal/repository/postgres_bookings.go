package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"bhms-data/internal/domain"
)

type PostgresBookingsRepository struct {
	db *sql.DB
}

func NewPostgresBookingsRepository(db *sql.DB) *PostgresBookingsRepository {
	return &PostgresBookingsRepository{db: db}
}

// ListBookings 预订列表
func (r *PostgresBookingsRepository) ListBookings(ctx context.Context, filters BookingFilters) ([]*domain.Booking, error) {
	where := []string{"1=1"}
	args := []any{}
	argIdx := 1

	if filters.RoomID != "" {
		where = append(where, fmt.Sprintf("room_id = $%d", argIdx))
		args = append(args, filters.RoomID)
		argIdx++
	}
	if filters.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, filters.Status)
		argIdx++
	}
	if filters.Search != "" {
		where = append(where, fmt.Sprintf(
			"(guest_name ILIKE $%d OR guest_phone ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+filters.Search+"%")
		argIdx++
	}

	q := `
		SELECT booking_id::text, COALESCE(room_id::text, ''), COALESCE(caretaker_id::text, ''),
		       guest_name, COALESCE(guest_phone, ''), booking_date, status,
		       created_at, updated_at
		FROM bookings
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY booking_date DESC, created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	out := []*domain.Booking{}
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.BookingID, &b.RoomID, &b.CaretakerID,
			&b.GuestName, &b.GuestPhone, &b.BookingDate, &b.Status,
			&b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

// GetBooking 获取单个预订
func (r *PostgresBookingsRepository) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, fmt.Errorf("booking_id is required")
	}

	var b domain.Booking
	err := r.db.QueryRowContext(ctx,
		`SELECT booking_id::text, COALESCE(room_id::text, ''), COALESCE(caretaker_id::text, ''),
		        guest_name, COALESCE(guest_phone, ''), booking_date, status,
		        created_at, updated_at
		 FROM bookings WHERE booking_id = $1`,
		bookingID,
	).Scan(&b.BookingID, &b.RoomID, &b.CaretakerID, &b.GuestName,
		&b.GuestPhone, &b.BookingDate, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("booking '%s': %w", bookingID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &b, nil
}

// CreateBooking 创建预订（默认 Pending）
func (r *PostgresBookingsRepository) CreateBooking(ctx context.Context, booking *domain.Booking) (string, error) {
	if booking == nil || booking.GuestName == "" {
		return "", fmt.Errorf("guest_name is required")
	}

	status := booking.Status
	if status == "" {
		status = domain.BookingStatusPending
	}
	bookingDate := booking.BookingDate
	if bookingDate.IsZero() {
		bookingDate = time.Now()
	}

	var roomIDArg any = nil
	if booking.RoomID != "" {
		roomIDArg = booking.RoomID
	}
	var caretakerIDArg any = nil
	if booking.CaretakerID != "" {
		caretakerIDArg = booking.CaretakerID
	}

	var bookingID string
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO bookings (room_id, caretaker_id, guest_name, guest_phone, booking_date, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING booking_id::text`,
		roomIDArg, caretakerIDArg, booking.GuestName,
		nullIfEmpty(booking.GuestPhone), bookingDate, status,
	).Scan(&bookingID)
	if err != nil {
		return "", fmt.Errorf("failed to create booking: %w", err)
	}
	return bookingID, nil
}

// UpdateBookingStatus 更新预订状态（Pending -> Confirmed/Cancelled）
func (r *PostgresBookingsRepository) UpdateBookingStatus(ctx context.Context, bookingID string, status domain.BookingStatus) error {
	if bookingID == "" {
		return fmt.Errorf("booking_id is required")
	}
	switch status {
	case domain.BookingStatusPending, domain.BookingStatusConfirmed, domain.BookingStatusCancelled:
	default:
		return fmt.Errorf("invalid booking status: %s", status)
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = $2, updated_at = now() WHERE booking_id = $1`,
		bookingID, status,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("booking '%s': %w", bookingID, domain.ErrNotFound)
	}
	return nil
}

// DeleteBooking 删除预订
func (r *PostgresBookingsRepository) DeleteBooking(ctx context.Context, bookingID string) error {
	if bookingID == "" {
		return fmt.Errorf("booking_id is required")
	}

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM bookings WHERE booking_id = $1`, bookingID)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("booking '%s': %w", bookingID, domain.ErrNotFound)
	}
	return nil
}

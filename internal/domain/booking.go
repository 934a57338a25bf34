package domain

import (
	"database/sql"
	"time"
)

// BookingStatus 预订状态（bookings.status）
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "Pending"
	BookingStatusConfirmed BookingStatus = "Confirmed"
	BookingStatusCancelled BookingStatus = "Cancelled"
)

// Booking 预订记录（对应 bookings 表）
// 注意：原 schema 中 bookings 与 boarders 没有外键，只能按 guest_name + guest_phone
// 匹配。删除 boarder 时的预订清理沿用这一匹配方式（已知局限，见 DESIGN.md）。
type Booking struct {
	BookingID   string        `db:"booking_id" json:"booking_id"`               // UUID, PRIMARY KEY
	RoomID      string        `db:"room_id" json:"room_id,omitempty"`           // UUID, nullable
	CaretakerID string        `db:"caretaker_id" json:"caretaker_id,omitempty"` // UUID, nullable
	GuestName   string        `db:"guest_name" json:"guest_name"`               // VARCHAR(200), NOT NULL
	GuestPhone  string        `db:"guest_phone" json:"guest_phone,omitempty"`   // VARCHAR(32), nullable
	BookingDate time.Time     `db:"booking_date" json:"booking_date"`           // DATE, NOT NULL
	Status      BookingStatus `db:"status" json:"status"`                       // VARCHAR(20), NOT NULL, DEFAULT 'Pending'
	CreatedAt   sql.NullTime  `db:"created_at" json:"-"`
	UpdatedAt   sql.NullTime  `db:"updated_at" json:"-"`
}

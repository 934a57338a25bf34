package domain

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// RoomStatus 房间状态（rooms.status）
// Maintenance 为管理员手工设置的粘性状态，占用推导不得覆盖它
type RoomStatus string

const (
	RoomStatusAvailable   RoomStatus = "Available"
	RoomStatusOccupied    RoomStatus = "Occupied"
	RoomStatusMaintenance RoomStatus = "Maintenance"
)

// Room 房间领域模型（对应 rooms 表）
type Room struct {
	RoomID     string          `db:"room_id" json:"room_id"`         // UUID, PRIMARY KEY
	RoomNumber string          `db:"room_number" json:"room_number"` // VARCHAR(20), NOT NULL, UNIQUE
	Rent       decimal.Decimal `db:"rent" json:"rent"`               // NUMERIC(12,2), NOT NULL
	Status     RoomStatus      `db:"status" json:"status"`           // VARCHAR(20), NOT NULL, DEFAULT 'Available'
	Floor      string          `db:"floor" json:"floor,omitempty"`   // VARCHAR(20), nullable
	CreatedAt  sql.NullTime    `db:"created_at" json:"-"`
	UpdatedAt  sql.NullTime    `db:"updated_at" json:"-"`
}

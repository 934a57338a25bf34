package domain

import (
	"database/sql"
	"time"
)

// Boarder 住宿人领域模型（对应 boarders 表）
type Boarder struct {
	BoarderID string `db:"boarder_id" json:"boarder_id"` // UUID, PRIMARY KEY

	FirstName string `db:"first_name" json:"first_name"`     // VARCHAR(100), NOT NULL
	LastName  string `db:"last_name" json:"last_name"`       // VARCHAR(100), NOT NULL
	Phone     string `db:"phone" json:"phone,omitempty"`     // VARCHAR(32), nullable
	Email     string `db:"email" json:"email"`               // VARCHAR(255), NOT NULL, UNIQUE

	// 位置绑定：为空表示未入住任何房间（已搬出）
	RoomID string `db:"room_id" json:"room_id,omitempty"` // UUID, nullable

	// 负责的管理员（可选）
	CaretakerID string `db:"caretaker_id" json:"caretaker_id,omitempty"` // UUID, nullable

	MoveInDate *time.Time   `db:"move_in_date" json:"move_in_date,omitempty"` // DATE, nullable
	CreatedAt  sql.NullTime `db:"created_at" json:"-"`
	UpdatedAt  sql.NullTime `db:"updated_at" json:"-"`
}

// FullName 姓名拼接（用于 bookings 的姓名匹配清理）
func (b *Boarder) FullName() string {
	if b.FirstName == "" {
		return b.LastName
	}
	if b.LastName == "" {
		return b.FirstName
	}
	return b.FirstName + " " + b.LastName
}

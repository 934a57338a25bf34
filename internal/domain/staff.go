package domain

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// 管理层级：Owner -> Caretaker -> Employee
// 仅作为被引用的层级关系，不参与核心一致性规则

// Owner 业主（对应 owners 表）
type Owner struct {
	OwnerID   string       `db:"owner_id" json:"owner_id"` // UUID, PRIMARY KEY
	Name      string       `db:"name" json:"name"`         // VARCHAR(100), NOT NULL
	Phone     string       `db:"phone" json:"phone,omitempty"`
	Email     string       `db:"email" json:"email,omitempty"`
	CreatedAt sql.NullTime `db:"created_at" json:"-"`
}

// Caretaker 管理员（对应 caretakers 表）
type Caretaker struct {
	CaretakerID string       `db:"caretaker_id" json:"caretaker_id"`   // UUID, PRIMARY KEY
	OwnerID     string       `db:"owner_id" json:"owner_id,omitempty"` // UUID, nullable
	Name        string       `db:"name" json:"name"`                   // VARCHAR(100), NOT NULL
	Phone       string       `db:"phone" json:"phone,omitempty"`
	Email       string       `db:"email" json:"email,omitempty"`
	CreatedAt   sql.NullTime `db:"created_at" json:"-"`
}

// Employee 雇员（对应 employees 表）
type Employee struct {
	EmployeeID  string          `db:"employee_id" json:"employee_id"`             // UUID, PRIMARY KEY
	CaretakerID string          `db:"caretaker_id" json:"caretaker_id,omitempty"` // UUID, nullable
	Name        string          `db:"name" json:"name"`                           // VARCHAR(100), NOT NULL
	Position    string          `db:"position" json:"position,omitempty"`
	Phone       string          `db:"phone" json:"phone,omitempty"`
	Salary      decimal.Decimal `db:"salary" json:"salary"` // NUMERIC(12,2), nullable（扫描时用 NullDecimal 处理）
	CreatedAt   sql.NullTime    `db:"created_at" json:"-"`
}

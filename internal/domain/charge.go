package domain

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Charge 扣费流水（对应 charges 表，追加型，创建后不可修改）
// 插入前必须校验余额充足，余额不足时整条记录被拒绝（见 postgres_ledger.go）
type Charge struct {
	ChargeID    string          `db:"charge_id" json:"charge_id"`               // UUID, PRIMARY KEY
	BoarderID   string          `db:"boarder_id" json:"boarder_id"`             // UUID, NOT NULL
	Description string          `db:"description" json:"description,omitempty"` // TEXT, nullable
	ChargeType  string          `db:"charge_type" json:"charge_type,omitempty"` // VARCHAR(50), nullable (Damage/Utility/...)
	Amount      decimal.Decimal `db:"amount" json:"amount"`                     // NUMERIC(12,2), NOT NULL, CHECK > 0
	ChargeDate  time.Time       `db:"charge_date" json:"charge_date"`           // DATE, NOT NULL
	CreatedAt   sql.NullTime    `db:"created_at" json:"-"`
}

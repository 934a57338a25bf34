package domain

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Payment 缴费流水（对应 payments 表，追加型，创建后不可修改）
type Payment struct {
	PaymentID   string          `db:"payment_id" json:"payment_id"`               // UUID, PRIMARY KEY
	BoarderID   string          `db:"boarder_id" json:"boarder_id"`               // UUID, NOT NULL
	Amount      decimal.Decimal `db:"amount" json:"amount"`                       // NUMERIC(12,2), NOT NULL, CHECK > 0
	Method      string          `db:"method" json:"method,omitempty"`             // VARCHAR(50), nullable (Cash/GCash/Bank...)
	PaymentType string          `db:"payment_type" json:"payment_type,omitempty"` // VARCHAR(50), nullable (Deposit/Rent/...)
	PaymentDate time.Time       `db:"payment_date" json:"payment_date"`           // DATE, NOT NULL
	CreatedAt   sql.NullTime    `db:"created_at" json:"-"`
}

package domain

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// DepositBalance 押金余额（对应 deposit_balances 表，boarder_id 唯一）
// 不变量：balance = Σ(payments.amount) − Σ(charges.amount) 且 balance >= 0
// 余额仅由 ledger 仓储在与流水写入同一事务内更新
type DepositBalance struct {
	BalanceID string          `db:"balance_id" json:"balance_id"` // UUID, PRIMARY KEY
	BoarderID string          `db:"boarder_id" json:"boarder_id"` // UUID, NOT NULL, UNIQUE
	Balance   decimal.Decimal `db:"balance" json:"balance"`       // NUMERIC(12,2), NOT NULL, DEFAULT 0.00, CHECK >= 0
	UpdatedAt sql.NullTime    `db:"updated_at" json:"-"`
}

package repository

import (
	"context"
	"time"

	"bhms-data/internal/domain"

	"github.com/shopspring/decimal"
)

// LedgerRepository 押金账本Repository接口
//
// 替代原 schema 的余额触发器：
//   - RecordPayment: trg_add_payment_to_balance（缴费插入 + 余额累加，同一事务）
//   - RecordCharge:  trg_check_balance_before_charge（余额校验 + 扣费插入 + 余额扣减，
//     同一事务；余额不足时整条扣费被拒绝，返回 domain.ErrInsufficientBalance）
//
// 并发约定：同一 boarder 的扣费必须串行化（Postgres 实现用余额行
// SELECT ... FOR UPDATE，内存实现用每 boarder 互斥锁），不同 boarder 互不阻塞。
type LedgerRepository interface {
	// 缴费：插入 payments 并 upsert deposit_balances（无账本行时以该金额初始化）
	RecordPayment(ctx context.Context, payment *domain.Payment) (string, error)

	// 扣费：余额充足时插入 charges 并扣减余额，否则整体拒绝
	RecordCharge(ctx context.Context, charge *domain.Charge) (string, error)

	// 余额查询：无账本行时返回 (zero, false, nil)
	GetBalance(ctx context.Context, boarderID string) (decimal.Decimal, bool, error)

	// 流水查询
	ListPayments(ctx context.Context, boarderID string) ([]*domain.Payment, error)
	ListCharges(ctx context.Context, boarderID string) ([]*domain.Charge, error)

	// 收入汇总：闭区间 [start, end] 内缴费合计与扣费合计（无记录时为 0）
	SumIncome(ctx context.Context, start, end time.Time) (payments, charges decimal.Decimal, err error)

	// 区间流水（收入报表导出用）
	ListPaymentsInRange(ctx context.Context, start, end time.Time) ([]*domain.Payment, error)
	ListChargesInRange(ctx context.Context, start, end time.Time) ([]*domain.Charge, error)
}

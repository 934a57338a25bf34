package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bhms-data/internal/domain"

	"github.com/shopspring/decimal"
)

type PostgresLedgerRepository struct {
	db *sql.DB
}

func NewPostgresLedgerRepository(db *sql.DB) *PostgresLedgerRepository {
	return &PostgresLedgerRepository{db: db}
}

// ============================================
// 写路径（替代余额触发器）
// ============================================

// RecordPayment 记录缴费
// 替代触发器：trg_add_payment_to_balance
// 同一事务内：插入 payments + upsert deposit_balances（无账本行时以该金额初始化）。
// 任一步失败则整体回滚，读取方不会看到缴费流水与余额不一致的中间状态。
func (r *PostgresLedgerRepository) RecordPayment(ctx context.Context, payment *domain.Payment) (string, error) {
	if payment == nil || payment.BoarderID == "" {
		return "", fmt.Errorf("boarder_id is required")
	}
	if !payment.Amount.IsPositive() {
		return "", fmt.Errorf("amount %s: %w", payment.Amount, domain.ErrInvalidAmount)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM boarders WHERE boarder_id = $1)`,
		payment.BoarderID,
	).Scan(&exists)
	if err != nil {
		return "", fmt.Errorf("failed to check boarder: %w", err)
	}
	if !exists {
		return "", fmt.Errorf("boarder '%s': %w", payment.BoarderID, domain.ErrNotFound)
	}

	paymentDate := payment.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	var paymentID string
	err = tx.QueryRowContext(ctx,
		`INSERT INTO payments (boarder_id, amount, method, payment_type, payment_date)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING payment_id::text`,
		payment.BoarderID, payment.Amount, nullIfEmpty(payment.Method),
		nullIfEmpty(payment.PaymentType), paymentDate,
	).Scan(&paymentID)
	if err != nil {
		return "", fmt.Errorf("failed to insert payment: %w", err)
	}

	// 余额累加；首笔缴费时惰性创建账本行
	_, err = tx.ExecContext(ctx,
		`INSERT INTO deposit_balances (boarder_id, balance)
		 VALUES ($1, $2)
		 ON CONFLICT (boarder_id)
		 DO UPDATE SET balance = deposit_balances.balance + EXCLUDED.balance,
		               updated_at = now()`,
		payment.BoarderID, payment.Amount,
	)
	if err != nil {
		return "", fmt.Errorf("failed to update balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return paymentID, nil
}

// RecordCharge 记录扣费
// 替代触发器：trg_check_balance_before_charge
// 先用 FOR UPDATE 锁定余额行（串行化同一 boarder 的并发扣费），余额不足时
// 整条扣费被拒绝（不写入 charges），余额充足时插入扣费并扣减余额，同一事务提交。
func (r *PostgresLedgerRepository) RecordCharge(ctx context.Context, charge *domain.Charge) (string, error) {
	if charge == nil || charge.BoarderID == "" {
		return "", fmt.Errorf("boarder_id is required")
	}
	if !charge.Amount.IsPositive() {
		return "", fmt.Errorf("amount %s: %w", charge.Amount, domain.ErrInvalidAmount)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM boarders WHERE boarder_id = $1)`,
		charge.BoarderID,
	).Scan(&exists)
	if err != nil {
		return "", fmt.Errorf("failed to check boarder: %w", err)
	}
	if !exists {
		return "", fmt.Errorf("boarder '%s': %w", charge.BoarderID, domain.ErrNotFound)
	}

	// 行锁：两个并发扣费各自读到充足余额、合计透支的丢失更新在这里被阻止
	var balance decimal.Decimal
	err = tx.QueryRowContext(ctx,
		`SELECT balance FROM deposit_balances WHERE boarder_id = $1 FOR UPDATE`,
		charge.BoarderID,
	).Scan(&balance)
	if err == sql.ErrNoRows {
		// 从未缴费：余额视为 0
		balance = decimal.Zero
	} else if err != nil {
		return "", fmt.Errorf("failed to read balance: %w", err)
	}

	if balance.LessThan(charge.Amount) {
		return "", fmt.Errorf("balance %s < charge %s: %w",
			balance, charge.Amount, domain.ErrInsufficientBalance)
	}

	chargeDate := charge.ChargeDate
	if chargeDate.IsZero() {
		chargeDate = time.Now()
	}

	var chargeID string
	err = tx.QueryRowContext(ctx,
		`INSERT INTO charges (boarder_id, description, charge_type, amount, charge_date)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING charge_id::text`,
		charge.BoarderID, nullIfEmpty(charge.Description),
		nullIfEmpty(charge.ChargeType), charge.Amount, chargeDate,
	).Scan(&chargeID)
	if err != nil {
		return "", fmt.Errorf("failed to insert charge: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE deposit_balances
		 SET balance = balance - $2, updated_at = now()
		 WHERE boarder_id = $1`,
		charge.BoarderID, charge.Amount,
	)
	if err != nil {
		return "", fmt.Errorf("failed to update balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return chargeID, nil
}

// ============================================
// 读路径
// ============================================

// GetBalance 查询当前余额；无账本行时返回 (0, false, nil)
func (r *PostgresLedgerRepository) GetBalance(ctx context.Context, boarderID string) (decimal.Decimal, bool, error) {
	if boarderID == "" {
		return decimal.Zero, false, fmt.Errorf("boarder_id is required")
	}

	var balance decimal.Decimal
	err := r.db.QueryRowContext(ctx,
		`SELECT balance FROM deposit_balances WHERE boarder_id = $1`,
		boarderID,
	).Scan(&balance)
	if err == sql.ErrNoRows {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to read balance: %w", err)
	}
	return balance, true, nil
}

// ListPayments 查询某 boarder 的全部缴费流水（按日期倒序）
func (r *PostgresLedgerRepository) ListPayments(ctx context.Context, boarderID string) ([]*domain.Payment, error) {
	if boarderID == "" {
		return nil, fmt.Errorf("boarder_id is required")
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT payment_id::text, boarder_id::text, amount,
		        COALESCE(method, ''), COALESCE(payment_type, ''),
		        payment_date, created_at
		 FROM payments
		 WHERE boarder_id = $1
		 ORDER BY payment_date DESC, created_at DESC`,
		boarderID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	out := []*domain.Payment{}
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.PaymentID, &p.BoarderID, &p.Amount,
			&p.Method, &p.PaymentType, &p.PaymentDate, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// ListCharges 查询某 boarder 的全部扣费流水（按日期倒序）
func (r *PostgresLedgerRepository) ListCharges(ctx context.Context, boarderID string) ([]*domain.Charge, error) {
	if boarderID == "" {
		return nil, fmt.Errorf("boarder_id is required")
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT charge_id::text, boarder_id::text, COALESCE(description, ''),
		        COALESCE(charge_type, ''), amount, charge_date, created_at
		 FROM charges
		 WHERE boarder_id = $1
		 ORDER BY charge_date DESC, created_at DESC`,
		boarderID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list charges: %w", err)
	}
	defer rows.Close()

	out := []*domain.Charge{}
	for rows.Next() {
		var c domain.Charge
		if err := rows.Scan(&c.ChargeID, &c.BoarderID, &c.Description,
			&c.ChargeType, &c.Amount, &c.ChargeDate, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// SumIncome 收入汇总：闭区间 [start, end] 内缴费合计与扣费合计（无记录时为 0）
func (r *PostgresLedgerRepository) SumIncome(ctx context.Context, start, end time.Time) (decimal.Decimal, decimal.Decimal, error) {
	var payments decimal.Decimal
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payments
		 WHERE payment_date BETWEEN $1 AND $2`,
		start, end,
	).Scan(&payments)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to sum payments: %w", err)
	}

	var charges decimal.Decimal
	err = r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM charges
		 WHERE charge_date BETWEEN $1 AND $2`,
		start, end,
	).Scan(&charges)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to sum charges: %w", err)
	}

	return payments, charges, nil
}

// ListPaymentsInRange 区间缴费流水（收入报表导出用）
func (r *PostgresLedgerRepository) ListPaymentsInRange(ctx context.Context, start, end time.Time) ([]*domain.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT payment_id::text, boarder_id::text, amount,
		        COALESCE(method, ''), COALESCE(payment_type, ''),
		        payment_date, created_at
		 FROM payments
		 WHERE payment_date BETWEEN $1 AND $2
		 ORDER BY payment_date, created_at`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments in range: %w", err)
	}
	defer rows.Close()

	out := []*domain.Payment{}
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.PaymentID, &p.BoarderID, &p.Amount,
			&p.Method, &p.PaymentType, &p.PaymentDate, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// ListChargesInRange 区间扣费流水（收入报表导出用）
func (r *PostgresLedgerRepository) ListChargesInRange(ctx context.Context, start, end time.Time) ([]*domain.Charge, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT charge_id::text, boarder_id::text, COALESCE(description, ''),
		        COALESCE(charge_type, ''), amount, charge_date, created_at
		 FROM charges
		 WHERE charge_date BETWEEN $1 AND $2
		 ORDER BY charge_date, created_at`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list charges in range: %w", err)
	}
	defer rows.Close()

	out := []*domain.Charge{}
	for rows.Next() {
		var c domain.Charge
		if err := rows.Scan(&c.ChargeID, &c.BoarderID, &c.Description,
			&c.ChargeType, &c.Amount, &c.ChargeDate, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// nullIfEmpty 空字符串写入为 NULL
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

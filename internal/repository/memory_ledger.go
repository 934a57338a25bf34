package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"bhms-data/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerRepository 的内存实现
// 扣费的"读余额-条件写"用每 boarder 互斥锁串行化（对应 Postgres 实现的
// SELECT ... FOR UPDATE），不同 boarder 互不阻塞。

func (s *MemoryStore) RecordPayment(_ context.Context, payment *domain.Payment) (string, error) {
	if payment == nil || payment.BoarderID == "" {
		return "", fmt.Errorf("boarder_id is required")
	}
	if !payment.Amount.IsPositive() {
		return "", fmt.Errorf("amount %s: %w", payment.Amount, domain.ErrInvalidAmount)
	}

	lock := s.boarderLock(payment.BoarderID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.boarders[payment.BoarderID]; !ok {
		return "", fmt.Errorf("boarder '%s': %w", payment.BoarderID, domain.ErrNotFound)
	}

	id := uuid.NewString()
	c := *payment
	c.PaymentID = id
	if c.PaymentDate.IsZero() {
		c.PaymentDate = time.Now()
	}
	s.payments[id] = &c

	bal, ok := s.balances[payment.BoarderID]
	if !ok {
		// 首笔缴费：惰性创建账本行
		s.balances[payment.BoarderID] = &domain.DepositBalance{
			BalanceID: uuid.NewString(),
			BoarderID: payment.BoarderID,
			Balance:   payment.Amount,
		}
	} else {
		bal.Balance = bal.Balance.Add(payment.Amount)
	}
	return id, nil
}

func (s *MemoryStore) RecordCharge(_ context.Context, charge *domain.Charge) (string, error) {
	if charge == nil || charge.BoarderID == "" {
		return "", fmt.Errorf("boarder_id is required")
	}
	if !charge.Amount.IsPositive() {
		return "", fmt.Errorf("amount %s: %w", charge.Amount, domain.ErrInvalidAmount)
	}

	lock := s.boarderLock(charge.BoarderID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.boarders[charge.BoarderID]; !ok {
		return "", fmt.Errorf("boarder '%s': %w", charge.BoarderID, domain.ErrNotFound)
	}

	balance := decimal.Zero
	bal, ok := s.balances[charge.BoarderID]
	if ok {
		balance = bal.Balance
	}
	if balance.LessThan(charge.Amount) {
		// 整条扣费被拒绝，不写入 charges
		return "", fmt.Errorf("balance %s < charge %s: %w",
			balance, charge.Amount, domain.ErrInsufficientBalance)
	}

	id := uuid.NewString()
	c := *charge
	c.ChargeID = id
	if c.ChargeDate.IsZero() {
		c.ChargeDate = time.Now()
	}
	s.charges[id] = &c
	bal.Balance = bal.Balance.Sub(charge.Amount)
	return id, nil
}

func (s *MemoryStore) GetBalance(_ context.Context, boarderID string) (decimal.Decimal, bool, error) {
	if boarderID == "" {
		return decimal.Zero, false, fmt.Errorf("boarder_id is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	bal, ok := s.balances[boarderID]
	if !ok {
		return decimal.Zero, false, nil
	}
	return bal.Balance, true, nil
}

func (s *MemoryStore) ListPayments(_ context.Context, boarderID string) ([]*domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*domain.Payment{}
	for _, p := range s.payments {
		if p.BoarderID == boarderID {
			c := *p
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaymentDate.After(out[j].PaymentDate) })
	return out, nil
}

func (s *MemoryStore) ListCharges(_ context.Context, boarderID string) ([]*domain.Charge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*domain.Charge{}
	for _, c := range s.charges {
		if c.BoarderID == boarderID {
			cc := *c
			out = append(out, &cc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChargeDate.After(out[j].ChargeDate) })
	return out, nil
}

func (s *MemoryStore) SumIncome(_ context.Context, start, end time.Time) (decimal.Decimal, decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payments := decimal.Zero
	for _, p := range s.payments {
		if inRange(p.PaymentDate, start, end) {
			payments = payments.Add(p.Amount)
		}
	}
	charges := decimal.Zero
	for _, c := range s.charges {
		if inRange(c.ChargeDate, start, end) {
			charges = charges.Add(c.Amount)
		}
	}
	return payments, charges, nil
}

func (s *MemoryStore) ListPaymentsInRange(_ context.Context, start, end time.Time) ([]*domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*domain.Payment{}
	for _, p := range s.payments {
		if inRange(p.PaymentDate, start, end) {
			c := *p
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaymentDate.Before(out[j].PaymentDate) })
	return out, nil
}

func (s *MemoryStore) ListChargesInRange(_ context.Context, start, end time.Time) ([]*domain.Charge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*domain.Charge{}
	for _, c := range s.charges {
		if inRange(c.ChargeDate, start, end) {
			cc := *c
			out = append(out, &cc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChargeDate.Before(out[j].ChargeDate) })
	return out, nil
}

// inRange 闭区间判断 [start, end]
func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

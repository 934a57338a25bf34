package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bhms-data/internal/domain"
	"bhms-data/internal/repository"
	"bhms-data/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// statementCacheTTL 对账单缓存时长；写路径会主动失效，TTL 只是兜底
const statementCacheTTL = 5 * time.Minute

// LedgerService 押金账本服务接口
type LedgerService interface {
	// 缴费：流水插入 + 余额累加，同一事务（见 repository.LedgerRepository）
	RecordPayment(ctx context.Context, req RecordPaymentRequest) (*RecordPaymentResponse, error)

	// 扣费：余额不足时整条拒绝，返回 domain.ErrInsufficientBalance
	RecordCharge(ctx context.Context, req RecordChargeRequest) (*RecordChargeResponse, error)

	// 余额查询：无账本行时返回 0
	GetBalance(ctx context.Context, boarderID string) (*BalanceResponse, error)

	// 对账单：余额 + 全部缴费/扣费流水（只读投影，带缓存）
	GetStatement(ctx context.Context, boarderID string) (*StatementResponse, error)
}

type ledgerService struct {
	ledgerRepo repository.LedgerRepository
	kv         store.KV       // 可为 nil（未接 Redis 时不缓存）
	receipts   *ReceiptClient // 可为 nil（回执推送未启用）
	logger     *zap.Logger
}

// NewLedgerService 创建 LedgerService 实例
func NewLedgerService(ledgerRepo repository.LedgerRepository, kv store.KV, receipts *ReceiptClient, logger *zap.Logger) LedgerService {
	return &ledgerService{
		ledgerRepo: ledgerRepo,
		kv:         kv,
		receipts:   receipts,
		logger:     logger,
	}
}

// ============================================
// Request/Response DTOs
// ============================================

// RecordPaymentRequest 缴费请求
type RecordPaymentRequest struct {
	BoarderID   string
	Amount      decimal.Decimal
	Method      string // Cash/GCash/Bank...
	PaymentType string // Deposit/Rent/...
	PaymentDate time.Time
}

type RecordPaymentResponse struct {
	PaymentID string          `json:"payment_id"`
	Balance   decimal.Decimal `json:"balance"` // 缴费后余额
}

// RecordChargeRequest 扣费请求
type RecordChargeRequest struct {
	BoarderID   string
	Description string
	ChargeType  string // Damage/Utility/...
	Amount      decimal.Decimal
	ChargeDate  time.Time
}

type RecordChargeResponse struct {
	ChargeID string          `json:"charge_id"`
	Balance  decimal.Decimal `json:"balance"` // 扣费后余额
}

type BalanceResponse struct {
	BoarderID string          `json:"boarder_id"`
	Balance   decimal.Decimal `json:"balance"`
	HasLedger bool            `json:"has_ledger"` // 是否已有账本行（从未缴费时为 false）
}

// StatementResponse 对账单（只读投影）
type StatementResponse struct {
	BoarderID string            `json:"boarder_id"`
	Balance   decimal.Decimal   `json:"balance"`
	Payments  []*domain.Payment `json:"payments"`
	Charges   []*domain.Charge  `json:"charges"`
}

// ============================================
// 实现
// ============================================

func (s *ledgerService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*RecordPaymentResponse, error) {
	if req.BoarderID == "" {
		return nil, fmt.Errorf("boarder_id is required")
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("amount %s: %w", req.Amount, domain.ErrInvalidAmount)
	}

	paymentID, err := s.ledgerRepo.RecordPayment(ctx, &domain.Payment{
		BoarderID:   req.BoarderID,
		Amount:      req.Amount,
		Method:      req.Method,
		PaymentType: req.PaymentType,
		PaymentDate: req.PaymentDate,
	})
	if err != nil {
		return nil, err
	}

	balance, _, err := s.ledgerRepo.GetBalance(ctx, req.BoarderID)
	if err != nil {
		return nil, err
	}

	s.invalidateStatement(ctx, req.BoarderID)

	s.logger.Info("payment recorded",
		zap.String("boarder_id", req.BoarderID),
		zap.String("payment_id", paymentID),
		zap.String("amount", req.Amount.String()),
		zap.String("balance", balance.String()),
	)

	// 回执推送是提交后的旁路动作：失败只记日志，不影响已提交的缴费
	if s.receipts != nil {
		if err := s.receipts.SendPaymentReceipt(ctx, PaymentReceipt{
			PaymentID: paymentID,
			BoarderID: req.BoarderID,
			Amount:    req.Amount,
			Method:    req.Method,
			PaidAt:    req.PaymentDate,
		}); err != nil {
			s.logger.Warn("failed to push payment receipt",
				zap.String("payment_id", paymentID), zap.Error(err))
		}
	}

	return &RecordPaymentResponse{PaymentID: paymentID, Balance: balance}, nil
}

func (s *ledgerService) RecordCharge(ctx context.Context, req RecordChargeRequest) (*RecordChargeResponse, error) {
	if req.BoarderID == "" {
		return nil, fmt.Errorf("boarder_id is required")
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("amount %s: %w", req.Amount, domain.ErrInvalidAmount)
	}

	chargeID, err := s.ledgerRepo.RecordCharge(ctx, &domain.Charge{
		BoarderID:   req.BoarderID,
		Description: req.Description,
		ChargeType:  req.ChargeType,
		Amount:      req.Amount,
		ChargeDate:  req.ChargeDate,
	})
	if err != nil {
		return nil, err
	}

	balance, _, err := s.ledgerRepo.GetBalance(ctx, req.BoarderID)
	if err != nil {
		return nil, err
	}

	s.invalidateStatement(ctx, req.BoarderID)

	s.logger.Info("charge recorded",
		zap.String("boarder_id", req.BoarderID),
		zap.String("charge_id", chargeID),
		zap.String("amount", req.Amount.String()),
		zap.String("balance", balance.String()),
	)

	return &RecordChargeResponse{ChargeID: chargeID, Balance: balance}, nil
}

func (s *ledgerService) GetBalance(ctx context.Context, boarderID string) (*BalanceResponse, error) {
	if boarderID == "" {
		return nil, fmt.Errorf("boarder_id is required")
	}

	balance, found, err := s.ledgerRepo.GetBalance(ctx, boarderID)
	if err != nil {
		return nil, err
	}
	return &BalanceResponse{BoarderID: boarderID, Balance: balance, HasLedger: found}, nil
}

func (s *ledgerService) GetStatement(ctx context.Context, boarderID string) (*StatementResponse, error) {
	if boarderID == "" {
		return nil, fmt.Errorf("boarder_id is required")
	}

	cacheKey := statementCacheKey(boarderID)
	if s.kv != nil {
		if cached, err := s.kv.Get(ctx, cacheKey); err == nil {
			var resp StatementResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return &resp, nil
			}
			// 缓存内容损坏：当作未命中
		}
	}

	balance, _, err := s.ledgerRepo.GetBalance(ctx, boarderID)
	if err != nil {
		return nil, err
	}
	payments, err := s.ledgerRepo.ListPayments(ctx, boarderID)
	if err != nil {
		return nil, err
	}
	charges, err := s.ledgerRepo.ListCharges(ctx, boarderID)
	if err != nil {
		return nil, err
	}

	resp := &StatementResponse{
		BoarderID: boarderID,
		Balance:   balance,
		Payments:  payments,
		Charges:   charges,
	}

	if s.kv != nil {
		if data, err := json.Marshal(resp); err == nil {
			if err := s.kv.Set(ctx, cacheKey, string(data), statementCacheTTL); err != nil {
				s.logger.Warn("failed to cache statement",
					zap.String("boarder_id", boarderID), zap.Error(err))
			}
		}
	}

	return resp, nil
}

func (s *ledgerService) invalidateStatement(ctx context.Context, boarderID string) {
	if s.kv == nil {
		return
	}
	if err := s.kv.Del(ctx, statementCacheKey(boarderID)); err != nil {
		s.logger.Warn("failed to invalidate statement cache",
			zap.String("boarder_id", boarderID), zap.Error(err))
	}
}

func statementCacheKey(boarderID string) string {
	return "bhms:statement:" + boarderID
}

package service

import (
	"context"
	"testing"
	"time"

	"bhms-data/internal/domain"
	"bhms-data/internal/repository"
	"bhms-data/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLedgerService(t *testing.T) (LedgerService, *repository.MemoryStore, *store.MemoryKV) {
	t.Helper()
	mem := repository.NewMemoryStore()
	kv := store.NewMemoryKV()
	svc := NewLedgerService(mem, kv, nil, zap.NewNop())
	return svc, mem, kv
}

func createLedgerTestBoarder(t *testing.T, mem *repository.MemoryStore, email string) string {
	t.Helper()
	boarderID, err := mem.CreateBoarder(context.Background(), &domain.Boarder{
		FirstName: "Ana",
		LastName:  "Reyes",
		Email:     email,
	})
	require.NoError(t, err)
	return boarderID
}

func TestLedgerService_RecordPayment_ReturnsNewBalance(t *testing.T) {
	svc, mem, _ := newTestLedgerService(t)
	ctx := context.Background()
	boarderID := createLedgerTestBoarder(t, mem, "svc-pay@test.local")

	resp, err := svc.RecordPayment(ctx, RecordPaymentRequest{
		BoarderID:   boarderID,
		Amount:      decimal.NewFromInt(2500),
		Method:      "GCash",
		PaymentType: "Deposit",
		PaymentDate: time.Now(),
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.PaymentID)
	require.True(t, resp.Balance.Equal(decimal.NewFromInt(2500)))
}

func TestLedgerService_RecordPayment_ValidationErrors(t *testing.T) {
	svc, _, _ := newTestLedgerService(t)
	ctx := context.Background()

	_, err := svc.RecordPayment(ctx, RecordPaymentRequest{
		Amount: decimal.NewFromInt(100),
	})
	require.Error(t, err)

	_, err = svc.RecordPayment(ctx, RecordPaymentRequest{
		BoarderID: "some-id",
		Amount:    decimal.NewFromInt(-5),
	})
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestLedgerService_RecordCharge_InsufficientBalance(t *testing.T) {
	svc, mem, _ := newTestLedgerService(t)
	ctx := context.Background()
	boarderID := createLedgerTestBoarder(t, mem, "svc-charge@test.local")

	_, err := svc.RecordPayment(ctx, RecordPaymentRequest{
		BoarderID:   boarderID,
		Amount:      decimal.NewFromInt(100),
		PaymentDate: time.Now(),
	})
	require.NoError(t, err)

	_, err = svc.RecordCharge(ctx, RecordChargeRequest{
		BoarderID:  boarderID,
		Amount:     decimal.NewFromInt(250),
		ChargeDate: time.Now(),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	// 拒绝后余额不变
	balance, err := svc.GetBalance(ctx, boarderID)
	require.NoError(t, err)
	require.True(t, balance.Balance.Equal(decimal.NewFromInt(100)))
}

func TestLedgerService_GetBalance_NoLedgerRow(t *testing.T) {
	svc, mem, _ := newTestLedgerService(t)
	ctx := context.Background()
	boarderID := createLedgerTestBoarder(t, mem, "svc-zero@test.local")

	resp, err := svc.GetBalance(ctx, boarderID)
	require.NoError(t, err)
	require.True(t, resp.Balance.IsZero())
	require.False(t, resp.HasLedger)
}

func TestLedgerService_Statement_CacheInvalidatedOnWrite(t *testing.T) {
	svc, mem, _ := newTestLedgerService(t)
	ctx := context.Background()
	boarderID := createLedgerTestBoarder(t, mem, "svc-stmt@test.local")

	_, err := svc.RecordPayment(ctx, RecordPaymentRequest{
		BoarderID:   boarderID,
		Amount:      decimal.NewFromInt(1000),
		PaymentDate: time.Now(),
	})
	require.NoError(t, err)

	// 第一次读填充缓存
	stmt, err := svc.GetStatement(ctx, boarderID)
	require.NoError(t, err)
	require.Len(t, stmt.Payments, 1)
	require.True(t, stmt.Balance.Equal(decimal.NewFromInt(1000)))

	// 写路径失效缓存：再次读必须看到新流水
	_, err = svc.RecordCharge(ctx, RecordChargeRequest{
		BoarderID:  boarderID,
		Amount:     decimal.NewFromInt(400),
		ChargeDate: time.Now(),
	})
	require.NoError(t, err)

	stmt, err = svc.GetStatement(ctx, boarderID)
	require.NoError(t, err)
	require.Len(t, stmt.Payments, 1)
	require.Len(t, stmt.Charges, 1)
	require.True(t, stmt.Balance.Equal(decimal.NewFromInt(600)))
}

func TestLedgerService_Statement_WorksWithoutCache(t *testing.T) {
	mem := repository.NewMemoryStore()
	svc := NewLedgerService(mem, nil, nil, zap.NewNop())
	ctx := context.Background()
	boarderID := createLedgerTestBoarder(t, mem, "svc-nokv@test.local")

	_, err := svc.RecordPayment(ctx, RecordPaymentRequest{
		BoarderID:   boarderID,
		Amount:      decimal.NewFromInt(700),
		PaymentDate: time.Now(),
	})
	require.NoError(t, err)

	stmt, err := svc.GetStatement(ctx, boarderID)
	require.NoError(t, err)
	require.True(t, stmt.Balance.Equal(decimal.NewFromInt(700)))
}

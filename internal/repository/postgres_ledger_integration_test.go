// +build integration

package repository

import (
	"context"
	"database/sql"
	"os"
	"strconv"
	"testing"

	"bhms-data/internal/config"
	"bhms-data/internal/database"
	"bhms-data/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// getTestDB 获取测试数据库连接（不可用时跳过）
func getTestDB(t *testing.T) *sql.DB {
	cfg := &config.DatabaseConfig{
		Host:     getTestEnv("TEST_DB_HOST", "localhost"),
		Port:     getTestEnvInt("TEST_DB_PORT", 5432),
		User:     getTestEnv("TEST_DB_USER", "postgres"),
		Password: getTestEnv("TEST_DB_PASSWORD", "postgres"),
		Database: getTestEnv("TEST_DB_NAME", "bhms"),
		SSLMode:  getTestEnv("TEST_DB_SSLMODE", "disable"),
	}

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		t.Skipf("Skipping integration test: cannot connect to database: %v", err)
		return nil
	}
	return db
}

func getTestEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getTestEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

// createIntegrationBoarder 创建测试 boarder（可选绑定房间）
func createIntegrationBoarder(t *testing.T, db *sql.DB, email, roomID string) string {
	repo := NewPostgresBoardersRepository(db)
	boarderID, err := repo.CreateBoarder(context.Background(), &domain.Boarder{
		FirstName: "Test",
		LastName:  "Boarder",
		Email:     email,
		RoomID:    roomID,
	})
	require.NoError(t, err)
	return boarderID
}

// cleanupIntegrationBoarder 清理测试数据
func cleanupIntegrationBoarder(t *testing.T, db *sql.DB, boarderID string) {
	repo := NewPostgresBoardersRepository(db)
	_ = repo.DeleteBoarder(context.Background(), boarderID)
}

func TestPostgresLedger_PaymentUpsertsBalance(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	boarderID := createIntegrationBoarder(t, db, "it-payment@test.local", "")
	defer cleanupIntegrationBoarder(t, db, boarderID)

	repo := NewPostgresLedgerRepository(db)

	_, err := repo.RecordPayment(ctx, &domain.Payment{
		BoarderID: boarderID,
		Amount:    decimal.NewFromInt(3000),
	})
	require.NoError(t, err)

	balance, found, err := repo.GetBalance(ctx, boarderID)
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, balance.Equal(decimal.NewFromInt(3000)))

	_, err = repo.RecordPayment(ctx, &domain.Payment{
		BoarderID: boarderID,
		Amount:    decimal.NewFromInt(500),
	})
	require.NoError(t, err)

	balance, _, err = repo.GetBalance(ctx, boarderID)
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.NewFromInt(3500)))
}

func TestPostgresLedger_ChargeRejectedWithoutResidue(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	boarderID := createIntegrationBoarder(t, db, "it-charge@test.local", "")
	defer cleanupIntegrationBoarder(t, db, boarderID)

	repo := NewPostgresLedgerRepository(db)

	_, err := repo.RecordPayment(ctx, &domain.Payment{
		BoarderID: boarderID,
		Amount:    decimal.NewFromInt(200),
	})
	require.NoError(t, err)

	_, err = repo.RecordCharge(ctx, &domain.Charge{
		BoarderID: boarderID,
		Amount:    decimal.NewFromInt(999),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	// 事务回滚：charges 无残留，余额不变
	charges, err := repo.ListCharges(ctx, boarderID)
	require.NoError(t, err)
	require.Empty(t, charges)

	balance, _, err := repo.GetBalance(ctx, boarderID)
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.NewFromInt(200)))
}

func TestPostgresLedger_ConcurrentChargesSerialized(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	boarderID := createIntegrationBoarder(t, db, "it-race@test.local", "")
	defer cleanupIntegrationBoarder(t, db, boarderID)

	repo := NewPostgresLedgerRepository(db)

	_, err := repo.RecordPayment(ctx, &domain.Payment{
		BoarderID: boarderID,
		Amount:    decimal.NewFromInt(300),
	})
	require.NoError(t, err)

	// 余额 300，4 个并发扣费各 100：FOR UPDATE 行锁下恰好 3 笔成功
	type result struct{ err error }
	results := make(chan result, 4)
	for i := 0; i < 4; i++ {
		go func() {
			_, err := repo.RecordCharge(ctx, &domain.Charge{
				BoarderID: boarderID,
				Amount:    decimal.NewFromInt(100),
			})
			results <- result{err}
		}()
	}

	okCount := 0
	for i := 0; i < 4; i++ {
		r := <-results
		if r.err == nil {
			okCount++
		} else {
			require.ErrorIs(t, r.err, domain.ErrInsufficientBalance)
		}
	}
	require.Equal(t, 3, okCount)

	balance, _, err := repo.GetBalance(ctx, boarderID)
	require.NoError(t, err)
	require.True(t, balance.IsZero(), "balance = %s", balance)
}

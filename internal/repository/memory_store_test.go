package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bhms-data/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestStore() *MemoryStore {
	return NewMemoryStore()
}

func createTestRoom(t *testing.T, s *MemoryStore, number string) string {
	t.Helper()
	roomID, err := s.CreateRoom(context.Background(), &domain.Room{
		RoomNumber: number,
		Rent:       decimal.NewFromInt(5000),
	})
	require.NoError(t, err)
	return roomID
}

func createTestBoarder(t *testing.T, s *MemoryStore, email, roomID string) string {
	t.Helper()
	boarderID, err := s.CreateBoarder(context.Background(), &domain.Boarder{
		FirstName: "Juan",
		LastName:  "Dela Cruz",
		Phone:     "0917-000-0000",
		Email:     email,
		RoomID:    roomID,
	})
	require.NoError(t, err)
	return boarderID
}

// ============================================
// 押金账本
// ============================================

func TestRecordPayment_CreatesAndAccumulatesBalance(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	boarderID := createTestBoarder(t, s, "pay@test.local", "")

	// 首笔缴费惰性创建账本行
	_, err := s.RecordPayment(ctx, &domain.Payment{
		BoarderID: boarderID,
		Amount:    decimal.NewFromInt(3000),
	})
	require.NoError(t, err)

	balance, found, err := s.GetBalance(ctx, boarderID)
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, balance.Equal(decimal.NewFromInt(3000)))

	// 第二笔累加
	_, err = s.RecordPayment(ctx, &domain.Payment{
		BoarderID: boarderID,
		Amount:    decimal.NewFromInt(1500),
	})
	require.NoError(t, err)

	balance, _, err = s.GetBalance(ctx, boarderID)
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.NewFromInt(4500)))
}

func TestRecordPayment_RejectsNonPositiveAmount(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	boarderID := createTestBoarder(t, s, "neg@test.local", "")

	_, err := s.RecordPayment(ctx, &domain.Payment{
		BoarderID: boarderID,
		Amount:    decimal.NewFromInt(-100),
	})
	require.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = s.RecordPayment(ctx, &domain.Payment{
		BoarderID: boarderID,
		Amount:    decimal.Zero,
	})
	require.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, found, err := s.GetBalance(ctx, boarderID)
	require.NoError(t, err)
	require.False(t, found)
}

func TestRecordCharge_InsufficientBalanceRejected(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	boarderID := createTestBoarder(t, s, "charge@test.local", "")

	_, err := s.RecordPayment(ctx, &domain.Payment{
		BoarderID: boarderID,
		Amount:    decimal.NewFromInt(500),
	})
	require.NoError(t, err)

	// 超额扣费：整条拒绝
	_, err = s.RecordCharge(ctx, &domain.Charge{
		BoarderID:  boarderID,
		ChargeType: "Damage",
		Amount:     decimal.NewFromInt(800),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	// 余额不变，charges 无残留
	balance, _, err := s.GetBalance(ctx, boarderID)
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.NewFromInt(500)))

	charges, err := s.ListCharges(ctx, boarderID)
	require.NoError(t, err)
	require.Empty(t, charges)
}

func TestRecordCharge_NoLedgerRowRejected(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	boarderID := createTestBoarder(t, s, "noledger@test.local", "")

	// 从未缴费：余额视为 0，任何正数扣费被拒
	_, err := s.RecordCharge(ctx, &domain.Charge{
		BoarderID: boarderID,
		Amount:    decimal.NewFromInt(1),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)
}

func TestRecordCharge_ExactBalanceAllowed(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	boarderID := createTestBoarder(t, s, "exact@test.local", "")

	_, err := s.RecordPayment(ctx, &domain.Payment{
		BoarderID: boarderID,
		Amount:    decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	// 扣到零是允许的（余额 >= 金额）
	_, err = s.RecordCharge(ctx, &domain.Charge{
		BoarderID: boarderID,
		Amount:    decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	balance, _, err := s.GetBalance(ctx, boarderID)
	require.NoError(t, err)
	require.True(t, balance.IsZero())
}

func TestConcurrentCharges_NoOverdraft(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	boarderID := createTestBoarder(t, s, "race@test.local", "")

	_, err := s.RecordPayment(ctx, &domain.Payment{
		BoarderID: boarderID,
		Amount:    decimal.NewFromInt(500),
	})
	require.NoError(t, err)

	// 10 个并发扣费各 100：恰好 5 笔成功，余额归零且不为负
	var wg sync.WaitGroup
	var okCount int32
	var mu sync.Mutex
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.RecordCharge(ctx, &domain.Charge{
				BoarderID: boarderID,
				Amount:    decimal.NewFromInt(100),
			})
			if err == nil {
				mu.Lock()
				okCount++
				mu.Unlock()
			} else if !errors.Is(err, domain.ErrInsufficientBalance) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 5, okCount)
	balance, _, err := s.GetBalance(ctx, boarderID)
	require.NoError(t, err)
	require.True(t, balance.IsZero(), "balance = %s", balance)

	charges, err := s.ListCharges(ctx, boarderID)
	require.NoError(t, err)
	require.Len(t, charges, 5)
}

func TestSumIncome_ClosedRange(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	boarderID := createTestBoarder(t, s, "income@test.local", "")

	day := func(d int) time.Time {
		return time.Date(2026, time.August, d, 12, 0, 0, 0, time.UTC)
	}
	for _, p := range []struct {
		amount int64
		date   time.Time
	}{
		{1000, day(1)},
		{2000, day(15)},
		{4000, day(31)},
	} {
		_, err := s.RecordPayment(ctx, &domain.Payment{
			BoarderID:   boarderID,
			Amount:      decimal.NewFromInt(p.amount),
			PaymentDate: p.date,
		})
		require.NoError(t, err)
	}
	_, err := s.RecordCharge(ctx, &domain.Charge{
		BoarderID:  boarderID,
		Amount:     decimal.NewFromInt(500),
		ChargeDate: day(16),
	})
	require.NoError(t, err)

	// 闭区间 [8/1, 8/15]
	payments, charges, err := s.SumIncome(ctx, day(1), day(15))
	require.NoError(t, err)
	require.True(t, payments.Equal(decimal.NewFromInt(3000)))
	require.True(t, charges.IsZero())

	// 全月
	payments, charges, err = s.SumIncome(ctx, day(1), day(31))
	require.NoError(t, err)
	require.True(t, payments.Equal(decimal.NewFromInt(7000)))
	require.True(t, charges.Equal(decimal.NewFromInt(500)))

	// 空区间
	payments, charges, err = s.SumIncome(ctx,
		time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.September, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.True(t, payments.IsZero())
	require.True(t, charges.IsZero())
}

// ============================================
// 房态推导
// ============================================

func TestCreateBoarderWithRoom_MarksOccupied(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	roomID := createTestRoom(t, s, "101")

	createTestBoarder(t, s, "occupy@test.local", roomID)

	room, err := s.GetRoom(ctx, roomID)
	require.NoError(t, err)
	require.Equal(t, domain.RoomStatusOccupied, room.Status)
}

func TestAssignRoom_MoveReleasesOldRoom(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	roomA := createTestRoom(t, s, "101")
	roomB := createTestRoom(t, s, "102")
	boarderID := createTestBoarder(t, s, "move@test.local", roomA)

	err := s.AssignRoom(ctx, boarderID, &roomB)
	require.NoError(t, err)

	a, err := s.GetRoom(ctx, roomA)
	require.NoError(t, err)
	require.Equal(t, domain.RoomStatusAvailable, a.Status)

	b, err := s.GetRoom(ctx, roomB)
	require.NoError(t, err)
	require.Equal(t, domain.RoomStatusOccupied, b.Status)

	boarder, err := s.GetBoarder(ctx, boarderID)
	require.NoError(t, err)
	require.Equal(t, roomB, boarder.RoomID)
}

func TestAssignRoom_MoveOutReleasesRoom(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	roomID := createTestRoom(t, s, "103")
	boarderID := createTestBoarder(t, s, "moveout@test.local", roomID)

	err := s.AssignRoom(ctx, boarderID, nil)
	require.NoError(t, err)

	room, err := s.GetRoom(ctx, roomID)
	require.NoError(t, err)
	require.Equal(t, domain.RoomStatusAvailable, room.Status)

	boarder, err := s.GetBoarder(ctx, boarderID)
	require.NoError(t, err)
	require.Empty(t, boarder.RoomID)
}

func TestMaintenance_StickyOnRelease(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	roomID := createTestRoom(t, s, "201")
	boarderID := createTestBoarder(t, s, "sticky@test.local", roomID)

	require.NoError(t, s.SetMaintenance(ctx, roomID))

	// 搬出不能覆盖维修标记
	require.NoError(t, s.AssignRoom(ctx, boarderID, nil))

	room, err := s.GetRoom(ctx, roomID)
	require.NoError(t, err)
	require.Equal(t, domain.RoomStatusMaintenance, room.Status)

	// 解除维修后按当前占用重算
	require.NoError(t, s.ClearMaintenance(ctx, roomID))
	room, err = s.GetRoom(ctx, roomID)
	require.NoError(t, err)
	require.Equal(t, domain.RoomStatusAvailable, room.Status)
}

func TestClearMaintenance_RecomputesOccupied(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	roomID := createTestRoom(t, s, "202")
	createTestBoarder(t, s, "recompute@test.local", roomID)

	require.NoError(t, s.SetMaintenance(ctx, roomID))
	require.NoError(t, s.ClearMaintenance(ctx, roomID))

	room, err := s.GetRoom(ctx, roomID)
	require.NoError(t, err)
	require.Equal(t, domain.RoomStatusOccupied, room.Status)
}

// ============================================
// 生命周期
// ============================================

func TestCreateBoarder_DuplicateEmailRejected(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	createTestBoarder(t, s, "dup@test.local", "")

	_, err := s.CreateBoarder(ctx, &domain.Boarder{
		FirstName: "Maria",
		LastName:  "Santos",
		Email:     "DUP@test.local", // 大小写不敏感
	})
	require.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestDeleteBoarder_CascadeAndRoomRelease(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	roomID := createTestRoom(t, s, "301")
	boarderID := createTestBoarder(t, s, "cascade@test.local", roomID)

	_, err := s.CreateGuardian(ctx, &domain.Guardian{
		BoarderID: boarderID,
		Name:      "Guardian One",
	})
	require.NoError(t, err)

	_, err = s.RecordPayment(ctx, &domain.Payment{
		BoarderID: boarderID,
		Amount:    decimal.NewFromInt(2000),
	})
	require.NoError(t, err)
	_, err = s.RecordCharge(ctx, &domain.Charge{
		BoarderID: boarderID,
		Amount:    decimal.NewFromInt(300),
	})
	require.NoError(t, err)

	// 姓名+电话匹配的预订会被一并清理
	_, err = s.CreateBooking(ctx, &domain.Booking{
		GuestName:  "Juan Dela Cruz",
		GuestPhone: "0917-000-0000",
	})
	require.NoError(t, err)
	// 不匹配的预订保留
	otherBookingID, err := s.CreateBooking(ctx, &domain.Booking{
		GuestName:  "Somebody Else",
		GuestPhone: "0999-999-9999",
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteBoarder(ctx, boarderID))

	_, err = s.GetBoarder(ctx, boarderID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	guardians, err := s.ListGuardians(ctx, boarderID)
	require.NoError(t, err)
	require.Empty(t, guardians)

	payments, err := s.ListPayments(ctx, boarderID)
	require.NoError(t, err)
	require.Empty(t, payments)

	charges, err := s.ListCharges(ctx, boarderID)
	require.NoError(t, err)
	require.Empty(t, charges)

	_, found, err := s.GetBalance(ctx, boarderID)
	require.NoError(t, err)
	require.False(t, found)

	bookings, err := s.ListBookings(ctx, BookingFilters{})
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	require.Equal(t, otherBookingID, bookings[0].BookingID)

	room, err := s.GetRoom(ctx, roomID)
	require.NoError(t, err)
	require.Equal(t, domain.RoomStatusAvailable, room.Status)
}

func TestDeleteRoom_RejectedWhileOccupied(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	roomID := createTestRoom(t, s, "401")
	boarderID := createTestBoarder(t, s, "delroom@test.local", roomID)

	require.Error(t, s.DeleteRoom(ctx, roomID))

	// 搬出后可删
	require.NoError(t, s.AssignRoom(ctx, boarderID, nil))
	require.NoError(t, s.DeleteRoom(ctx, roomID))
}

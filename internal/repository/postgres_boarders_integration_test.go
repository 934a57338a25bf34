// +build integration

package repository

import (
	"context"
	"testing"

	"bhms-data/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func createIntegrationRoom(t *testing.T, repo *PostgresRoomsRepository, number string) string {
	roomID, err := repo.CreateRoom(context.Background(), &domain.Room{
		RoomNumber: number,
		Rent:       decimal.NewFromInt(4500),
	})
	require.NoError(t, err)
	return roomID
}

func TestPostgresBoarders_OccupancyLifecycle(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	roomsRepo := NewPostgresRoomsRepository(db)
	boardersRepo := NewPostgresBoardersRepository(db)

	roomA := createIntegrationRoom(t, roomsRepo, "IT-101")
	roomB := createIntegrationRoom(t, roomsRepo, "IT-102")
	defer func() {
		_ = roomsRepo.DeleteRoom(ctx, roomA)
		_ = roomsRepo.DeleteRoom(ctx, roomB)
	}()

	boarderID := createIntegrationBoarder(t, db, "it-occupancy@test.local", roomA)
	defer cleanupIntegrationBoarder(t, db, boarderID)

	room, err := roomsRepo.GetRoom(ctx, roomA)
	require.NoError(t, err)
	require.Equal(t, domain.RoomStatusOccupied, room.Status)

	// 换房：旧房释放，新房占用，同一事务
	require.NoError(t, boardersRepo.AssignRoom(ctx, boarderID, &roomB))

	room, err = roomsRepo.GetRoom(ctx, roomA)
	require.NoError(t, err)
	require.Equal(t, domain.RoomStatusAvailable, room.Status)

	room, err = roomsRepo.GetRoom(ctx, roomB)
	require.NoError(t, err)
	require.Equal(t, domain.RoomStatusOccupied, room.Status)

	// 搬出
	require.NoError(t, boardersRepo.AssignRoom(ctx, boarderID, nil))
	room, err = roomsRepo.GetRoom(ctx, roomB)
	require.NoError(t, err)
	require.Equal(t, domain.RoomStatusAvailable, room.Status)
}

func TestPostgresBoarders_DeleteCascade(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	roomsRepo := NewPostgresRoomsRepository(db)
	boardersRepo := NewPostgresBoardersRepository(db)
	guardiansRepo := NewPostgresGuardiansRepository(db)
	ledgerRepo := NewPostgresLedgerRepository(db)

	roomID := createIntegrationRoom(t, roomsRepo, "IT-201")
	defer func() { _ = roomsRepo.DeleteRoom(ctx, roomID) }()

	boarderID := createIntegrationBoarder(t, db, "it-cascade@test.local", roomID)

	_, err := guardiansRepo.CreateGuardian(ctx, &domain.Guardian{
		BoarderID: boarderID,
		Name:      "IT Guardian",
	})
	require.NoError(t, err)

	_, err = ledgerRepo.RecordPayment(ctx, &domain.Payment{
		BoarderID: boarderID,
		Amount:    decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	require.NoError(t, boardersRepo.DeleteBoarder(ctx, boarderID))

	_, err = boardersRepo.GetBoarder(ctx, boarderID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	guardians, err := guardiansRepo.ListGuardians(ctx, boarderID)
	require.NoError(t, err)
	require.Empty(t, guardians)

	_, found, err := ledgerRepo.GetBalance(ctx, boarderID)
	require.NoError(t, err)
	require.False(t, found)

	room, err := roomsRepo.GetRoom(ctx, roomID)
	require.NoError(t, err)
	require.Equal(t, domain.RoomStatusAvailable, room.Status)
}

func TestPostgresBoarders_DuplicateEmail(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	boardersRepo := NewPostgresBoardersRepository(db)

	boarderID := createIntegrationBoarder(t, db, "it-dup@test.local", "")
	defer cleanupIntegrationBoarder(t, db, boarderID)

	_, err := boardersRepo.CreateBoarder(ctx, &domain.Boarder{
		FirstName: "Other",
		LastName:  "Person",
		Email:     "it-dup@test.local",
	})
	require.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

package service

import (
	"context"
	"fmt"

	"bhms-data/internal/domain"
	"bhms-data/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RoomService 房间管理服务接口
//
// Available/Occupied 不由外部直接写入（由 boarder 写入路径推导），
// 对外暴露的状态操作只有维修标记的设置与解除。
type RoomService interface {
	ListRooms(ctx context.Context, req ListRoomsRequest) ([]*domain.Room, error)
	GetRoom(ctx context.Context, roomID string) (*domain.Room, error)
	CreateRoom(ctx context.Context, req CreateRoomRequest) (string, error)
	UpdateRoom(ctx context.Context, roomID string, req UpdateRoomRequest) error
	DeleteRoom(ctx context.Context, roomID string) error

	SetMaintenance(ctx context.Context, roomID string) error
	ClearMaintenance(ctx context.Context, roomID string) error
}

type roomService struct {
	roomsRepo repository.RoomsRepository
	logger    *zap.Logger
}

// NewRoomService 创建 RoomService 实例
func NewRoomService(roomsRepo repository.RoomsRepository, logger *zap.Logger) RoomService {
	return &roomService{roomsRepo: roomsRepo, logger: logger}
}

// ============================================
// Request DTOs
// ============================================

type ListRoomsRequest struct {
	Status string
	Floor  string
	Search string
}

type CreateRoomRequest struct {
	RoomNumber string
	Rent       decimal.Decimal
	Floor      string
	// 初始状态只允许 Available 或 Maintenance；Occupied 只能由入住推导产生
	Status string
}

type UpdateRoomRequest struct {
	RoomNumber string
	Rent       decimal.Decimal
	Floor      string
}

// ============================================
// 实现
// ============================================

func (s *roomService) ListRooms(ctx context.Context, req ListRoomsRequest) ([]*domain.Room, error) {
	return s.roomsRepo.ListRooms(ctx, repository.RoomFilters{
		Status: req.Status,
		Floor:  req.Floor,
		Search: req.Search,
	})
}

func (s *roomService) GetRoom(ctx context.Context, roomID string) (*domain.Room, error) {
	if roomID == "" {
		return nil, fmt.Errorf("room_id is required")
	}
	return s.roomsRepo.GetRoom(ctx, roomID)
}

func (s *roomService) CreateRoom(ctx context.Context, req CreateRoomRequest) (string, error) {
	if req.RoomNumber == "" {
		return "", fmt.Errorf("room_number is required")
	}
	if req.Rent.IsNegative() {
		return "", fmt.Errorf("rent %s: %w", req.Rent, domain.ErrInvalidAmount)
	}

	status := domain.RoomStatus(req.Status)
	if status == "" {
		status = domain.RoomStatusAvailable
	}

	roomID, err := s.roomsRepo.CreateRoom(ctx, &domain.Room{
		RoomNumber: req.RoomNumber,
		Rent:       req.Rent,
		Floor:      req.Floor,
		Status:     status,
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("room created",
		zap.String("room_id", roomID),
		zap.String("room_number", req.RoomNumber),
	)
	return roomID, nil
}

func (s *roomService) UpdateRoom(ctx context.Context, roomID string, req UpdateRoomRequest) error {
	if roomID == "" {
		return fmt.Errorf("room_id is required")
	}
	if req.Rent.IsNegative() {
		return fmt.Errorf("rent %s: %w", req.Rent, domain.ErrInvalidAmount)
	}

	return s.roomsRepo.UpdateRoom(ctx, roomID, &domain.Room{
		RoomNumber: req.RoomNumber,
		Rent:       req.Rent,
		Floor:      req.Floor,
	})
}

func (s *roomService) DeleteRoom(ctx context.Context, roomID string) error {
	if roomID == "" {
		return fmt.Errorf("room_id is required")
	}

	if err := s.roomsRepo.DeleteRoom(ctx, roomID); err != nil {
		return err
	}
	s.logger.Info("room deleted", zap.String("room_id", roomID))
	return nil
}

func (s *roomService) SetMaintenance(ctx context.Context, roomID string) error {
	if roomID == "" {
		return fmt.Errorf("room_id is required")
	}

	if err := s.roomsRepo.SetMaintenance(ctx, roomID); err != nil {
		return err
	}
	s.logger.Info("room marked for maintenance", zap.String("room_id", roomID))
	return nil
}

func (s *roomService) ClearMaintenance(ctx context.Context, roomID string) error {
	if roomID == "" {
		return fmt.Errorf("room_id is required")
	}

	if err := s.roomsRepo.ClearMaintenance(ctx, roomID); err != nil {
		return err
	}
	s.logger.Info("room maintenance cleared", zap.String("room_id", roomID))
	return nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"bhms-data/internal/domain"
	"bhms-data/internal/repository"

	"go.uber.org/zap"
)

// BookingService 预订服务接口
// 预订不参与房态推导；确认预订后的入住走 BoarderService.CreateBoarder
type BookingService interface {
	ListBookings(ctx context.Context, req ListBookingsRequest) ([]*domain.Booking, error)
	GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error)
	CreateBooking(ctx context.Context, req CreateBookingRequest) (string, error)
	UpdateBookingStatus(ctx context.Context, bookingID string, status string) error
	DeleteBooking(ctx context.Context, bookingID string) error
}

type bookingService struct {
	bookingsRepo repository.BookingsRepository
	roomsRepo    repository.RoomsRepository
	logger       *zap.Logger
}

// NewBookingService 创建 BookingService 实例
func NewBookingService(bookingsRepo repository.BookingsRepository, roomsRepo repository.RoomsRepository, logger *zap.Logger) BookingService {
	return &bookingService{
		bookingsRepo: bookingsRepo,
		roomsRepo:    roomsRepo,
		logger:       logger,
	}
}

type ListBookingsRequest struct {
	RoomID string
	Status string
	Search string
}

type CreateBookingRequest struct {
	RoomID      string
	CaretakerID string
	GuestName   string
	GuestPhone  string
	BookingDate time.Time
}

func (s *bookingService) ListBookings(ctx context.Context, req ListBookingsRequest) ([]*domain.Booking, error) {
	return s.bookingsRepo.ListBookings(ctx, repository.BookingFilters{
		RoomID: req.RoomID,
		Status: req.Status,
		Search: req.Search,
	})
}

func (s *bookingService) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, fmt.Errorf("booking_id is required")
	}
	return s.bookingsRepo.GetBooking(ctx, bookingID)
}

func (s *bookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (string, error) {
	if req.GuestName == "" {
		return "", fmt.Errorf("guest_name is required")
	}
	if req.RoomID != "" {
		// 目标房间必须存在；预订不锁定房态
		if _, err := s.roomsRepo.GetRoom(ctx, req.RoomID); err != nil {
			return "", err
		}
	}

	bookingDate := req.BookingDate
	if bookingDate.IsZero() {
		bookingDate = time.Now()
	}

	bookingID, err := s.bookingsRepo.CreateBooking(ctx, &domain.Booking{
		RoomID:      req.RoomID,
		CaretakerID: req.CaretakerID,
		GuestName:   req.GuestName,
		GuestPhone:  req.GuestPhone,
		BookingDate: bookingDate,
		Status:      domain.BookingStatusPending,
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("booking created",
		zap.String("booking_id", bookingID),
		zap.String("guest_name", req.GuestName),
		zap.String("room_id", req.RoomID),
	)
	return bookingID, nil
}

func (s *bookingService) UpdateBookingStatus(ctx context.Context, bookingID string, status string) error {
	if bookingID == "" {
		return fmt.Errorf("booking_id is required")
	}

	st := domain.BookingStatus(status)
	switch st {
	case domain.BookingStatusPending, domain.BookingStatusConfirmed, domain.BookingStatusCancelled:
	default:
		return fmt.Errorf("invalid booking status: %s", status)
	}

	if err := s.bookingsRepo.UpdateBookingStatus(ctx, bookingID, st); err != nil {
		return err
	}
	s.logger.Info("booking status updated",
		zap.String("booking_id", bookingID),
		zap.String("status", status),
	)
	return nil
}

func (s *bookingService) DeleteBooking(ctx context.Context, bookingID string) error {
	if bookingID == "" {
		return fmt.Errorf("booking_id is required")
	}
	return s.bookingsRepo.DeleteBooking(ctx, bookingID)
}

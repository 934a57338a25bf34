package repository

import (
	"context"

	"bhms-data/internal/domain"
)

// BookingsRepository 预订Repository接口
// bookings 与 boarders 无外键关联（沿用原 schema）；核心触发逻辑不涉及本表，
// 仅 DeleteBoarder 会按姓名+电话匹配清理预订记录
type BookingsRepository interface {
	ListBookings(ctx context.Context, filters BookingFilters) ([]*domain.Booking, error)
	GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error)
	CreateBooking(ctx context.Context, booking *domain.Booking) (string, error)
	UpdateBookingStatus(ctx context.Context, bookingID string, status domain.BookingStatus) error
	DeleteBooking(ctx context.Context, bookingID string) error
}

// BookingFilters 预订查询过滤器
type BookingFilters struct {
	RoomID string
	Status string
	Search string // 模糊搜索 guest_name, guest_phone
}

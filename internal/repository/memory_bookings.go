package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"bhms-data/internal/domain"

	"github.com/google/uuid"
)

// GuardiansRepository / BookingsRepository 的内存实现

func (s *MemoryStore) ListGuardians(_ context.Context, boarderID string) ([]*domain.Guardian, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*domain.Guardian{}
	for _, g := range s.guardians {
		if g.BoarderID == boarderID {
			c := *g
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) CreateGuardian(_ context.Context, guardian *domain.Guardian) (string, error) {
	if guardian == nil || guardian.BoarderID == "" {
		return "", fmt.Errorf("boarder_id is required")
	}
	if guardian.Name == "" {
		return "", fmt.Errorf("name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.boarders[guardian.BoarderID]; !ok {
		return "", fmt.Errorf("boarder '%s': %w", guardian.BoarderID, domain.ErrNotFound)
	}

	id := uuid.NewString()
	c := *guardian
	c.GuardianID = id
	s.guardians[id] = &c
	return id, nil
}

func (s *MemoryStore) UpdateGuardian(_ context.Context, guardianID string, guardian *domain.Guardian) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.guardians[guardianID]
	if !ok {
		return fmt.Errorf("guardian '%s': %w", guardianID, domain.ErrNotFound)
	}
	if guardian.Name != "" {
		existing.Name = guardian.Name
	}
	if guardian.Phone != "" {
		existing.Phone = guardian.Phone
	}
	if guardian.Relationship != "" {
		existing.Relationship = guardian.Relationship
	}
	return nil
}

func (s *MemoryStore) DeleteGuardian(_ context.Context, guardianID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.guardians[guardianID]; !ok {
		return fmt.Errorf("guardian '%s': %w", guardianID, domain.ErrNotFound)
	}
	delete(s.guardians, guardianID)
	return nil
}

func (s *MemoryStore) ListBookings(_ context.Context, filters BookingFilters) ([]*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*domain.Booking{}
	for _, b := range s.bookings {
		if filters.RoomID != "" && b.RoomID != filters.RoomID {
			continue
		}
		if filters.Status != "" && string(b.Status) != filters.Status {
			continue
		}
		if filters.Search != "" {
			needle := strings.ToLower(filters.Search)
			if !strings.Contains(strings.ToLower(b.GuestName), needle) &&
				!strings.Contains(strings.ToLower(b.GuestPhone), needle) {
				continue
			}
		}
		c := *b
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookingDate.After(out[j].BookingDate) })
	return out, nil
}

func (s *MemoryStore) GetBooking(_ context.Context, bookingID string) (*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[bookingID]
	if !ok {
		return nil, fmt.Errorf("booking '%s': %w", bookingID, domain.ErrNotFound)
	}
	c := *b
	return &c, nil
}

func (s *MemoryStore) CreateBooking(_ context.Context, booking *domain.Booking) (string, error) {
	if booking == nil || booking.GuestName == "" {
		return "", fmt.Errorf("guest_name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	c := *booking
	c.BookingID = id
	if c.Status == "" {
		c.Status = domain.BookingStatusPending
	}
	if c.BookingDate.IsZero() {
		c.BookingDate = time.Now()
	}
	s.bookings[id] = &c
	return id, nil
}

func (s *MemoryStore) UpdateBookingStatus(_ context.Context, bookingID string, status domain.BookingStatus) error {
	switch status {
	case domain.BookingStatusPending, domain.BookingStatusConfirmed, domain.BookingStatusCancelled:
	default:
		return fmt.Errorf("invalid booking status: %s", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[bookingID]
	if !ok {
		return fmt.Errorf("booking '%s': %w", bookingID, domain.ErrNotFound)
	}
	b.Status = status
	return nil
}

func (s *MemoryStore) DeleteBooking(_ context.Context, bookingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bookings[bookingID]; !ok {
		return fmt.Errorf("booking '%s': %w", bookingID, domain.ErrNotFound)
	}
	delete(s.bookings, bookingID)
	return nil
}

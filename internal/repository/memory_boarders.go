package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"bhms-data/internal/domain"

	"github.com/google/uuid"
)

// BoardersRepository 的内存实现（与 postgres_boarders.go 同一套语义）

func (s *MemoryStore) GetBoarder(_ context.Context, boarderID string) (*domain.Boarder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.boarders[boarderID]
	if !ok {
		return nil, fmt.Errorf("boarder '%s': %w", boarderID, domain.ErrNotFound)
	}
	c := *b
	return &c, nil
}

func (s *MemoryStore) ListBoarders(_ context.Context, filters BoarderFilters, page, size int) ([]*BoarderWithRoom, int, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []*domain.Boarder{}
	for _, b := range s.boarders {
		if filters.RoomID != "" && b.RoomID != filters.RoomID {
			continue
		}
		if filters.CaretakerID != "" && b.CaretakerID != filters.CaretakerID {
			continue
		}
		if filters.Search != "" {
			needle := strings.ToLower(filters.Search)
			if !strings.Contains(strings.ToLower(b.FirstName), needle) &&
				!strings.Contains(strings.ToLower(b.LastName), needle) &&
				!strings.Contains(strings.ToLower(b.Email), needle) {
				continue
			}
		}
		matched = append(matched, b)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].LastName != matched[j].LastName {
			return matched[i].LastName < matched[j].LastName
		}
		return matched[i].FirstName < matched[j].FirstName
	})

	total := len(matched)
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	out := []*BoarderWithRoom{}
	for _, b := range matched[start:end] {
		bc := *b
		item := &BoarderWithRoom{Boarder: &bc}
		if b.RoomID != "" {
			if room, ok := s.rooms[b.RoomID]; ok {
				rc := *room
				item.Room = &rc
			}
		}
		out = append(out, item)
	}
	return out, total, nil
}

func (s *MemoryStore) CreateBoarder(_ context.Context, boarder *domain.Boarder) (string, error) {
	if boarder == nil {
		return "", fmt.Errorf("boarder is required")
	}
	if boarder.FirstName == "" || boarder.LastName == "" {
		return "", fmt.Errorf("first_name and last_name are required")
	}
	if boarder.Email == "" {
		return "", fmt.Errorf("email is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(boarder.Email)
	for _, existing := range s.boarders {
		if existing.Email == email {
			return "", fmt.Errorf("email '%s': %w", email, domain.ErrDuplicateEmail)
		}
	}
	if boarder.RoomID != "" {
		if _, ok := s.rooms[boarder.RoomID]; !ok {
			return "", fmt.Errorf("room '%s': %w", boarder.RoomID, domain.ErrNotFound)
		}
	}

	id := uuid.NewString()
	c := *boarder
	c.BoarderID = id
	c.Email = email
	s.boarders[id] = &c

	if c.RoomID != "" {
		if err := s.occupyLocked(c.RoomID); err != nil {
			delete(s.boarders, id)
			return "", err
		}
	}
	return id, nil
}

func (s *MemoryStore) UpdateBoarder(_ context.Context, boarderID string, boarder *domain.Boarder) error {
	if boarderID == "" {
		return fmt.Errorf("boarder_id is required")
	}
	if boarder == nil {
		return fmt.Errorf("boarder is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.boarders[boarderID]
	if !ok {
		return fmt.Errorf("boarder '%s': %w", boarderID, domain.ErrNotFound)
	}
	if boarder.FirstName != "" {
		existing.FirstName = boarder.FirstName
	}
	if boarder.LastName != "" {
		existing.LastName = boarder.LastName
	}
	if boarder.Phone != "" {
		existing.Phone = boarder.Phone
	}
	if boarder.Email != "" {
		email := strings.ToLower(boarder.Email)
		for id, other := range s.boarders {
			if id != boarderID && other.Email == email {
				return fmt.Errorf("email '%s': %w", email, domain.ErrDuplicateEmail)
			}
		}
		existing.Email = email
	}
	if boarder.CaretakerID != "" {
		existing.CaretakerID = boarder.CaretakerID
	}
	if boarder.MoveInDate != nil {
		existing.MoveInDate = boarder.MoveInDate
	}
	return nil
}

func (s *MemoryStore) AssignRoom(_ context.Context, boarderID string, newRoomID *string) error {
	if boarderID == "" {
		return fmt.Errorf("boarder_id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.boarders[boarderID]
	if !ok {
		return fmt.Errorf("boarder '%s': %w", boarderID, domain.ErrNotFound)
	}

	newID := ""
	if newRoomID != nil {
		newID = *newRoomID
	}
	if newID != "" {
		if _, ok := s.rooms[newID]; !ok {
			return fmt.Errorf("room '%s': %w", newID, domain.ErrNotFound)
		}
	}

	oldID := b.RoomID
	b.RoomID = newID

	if newID != "" {
		if err := s.occupyLocked(newID); err != nil {
			return err
		}
	}
	if oldID != "" && oldID != newID {
		s.releaseLocked(oldID)
	}
	return nil
}

// DeleteBoarder 删除级联（与 postgres 实现同一顺序）：
// guardians -> payments -> charges -> deposit_balances -> 姓名+电话匹配的
// bookings -> boarder 本身，最后释放房间
func (s *MemoryStore) DeleteBoarder(_ context.Context, boarderID string) error {
	if boarderID == "" {
		return fmt.Errorf("boarder_id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.boarders[boarderID]
	if !ok {
		return fmt.Errorf("boarder '%s': %w", boarderID, domain.ErrNotFound)
	}

	for id, g := range s.guardians {
		if g.BoarderID == boarderID {
			delete(s.guardians, id)
		}
	}
	for id, p := range s.payments {
		if p.BoarderID == boarderID {
			delete(s.payments, id)
		}
	}
	for id, c := range s.charges {
		if c.BoarderID == boarderID {
			delete(s.charges, id)
		}
	}
	delete(s.balances, boarderID)

	fullName := b.FullName()
	for id, bk := range s.bookings {
		if bk.GuestName == fullName && bk.GuestPhone == b.Phone {
			delete(s.bookings, id)
		}
	}

	roomID := b.RoomID
	delete(s.boarders, boarderID)
	if roomID != "" {
		s.releaseLocked(roomID)
	}
	return nil
}

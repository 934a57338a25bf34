package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"bhms-data/internal/domain"

	"github.com/google/uuid"
)

// MemoryStore: 用于 DB 未就绪时的联测和单元测试的内存实现
// 一个实例同时实现 Rooms/Boarders/Ledger/Guardians/Bookings/Staff 六个仓储接口，
// 因为房态推导和删除级联需要跨表的一致视图（与 Postgres 实现同一套语义）。
//
// 结构性修改用全局 mu 保护；扣费的"读余额-条件写"用每 boarder 互斥锁串行化
// （对应 Postgres 实现的 SELECT ... FOR UPDATE），不同 boarder 的扣费互不阻塞。
type MemoryStore struct {
	mu sync.RWMutex

	rooms    map[string]*domain.Room
	boarders map[string]*domain.Boarder
	balances map[string]*domain.DepositBalance // keyed by boarderID
	payments map[string]*domain.Payment
	charges  map[string]*domain.Charge

	guardians map[string]*domain.Guardian
	bookings  map[string]*domain.Booking

	owners     map[string]*domain.Owner
	caretakers map[string]*domain.Caretaker
	employees  map[string]*domain.Employee

	balanceLocksMu sync.Mutex
	balanceLocks   map[string]*sync.Mutex // keyed by boarderID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms:        map[string]*domain.Room{},
		boarders:     map[string]*domain.Boarder{},
		balances:     map[string]*domain.DepositBalance{},
		payments:     map[string]*domain.Payment{},
		charges:      map[string]*domain.Charge{},
		guardians:    map[string]*domain.Guardian{},
		bookings:     map[string]*domain.Booking{},
		owners:       map[string]*domain.Owner{},
		caretakers:   map[string]*domain.Caretaker{},
		employees:    map[string]*domain.Employee{},
		balanceLocks: map[string]*sync.Mutex{},
	}
}

// boarderLock 每 boarder 的账本锁（惰性创建）
func (s *MemoryStore) boarderLock(boarderID string) *sync.Mutex {
	s.balanceLocksMu.Lock()
	defer s.balanceLocksMu.Unlock()
	l, ok := s.balanceLocks[boarderID]
	if !ok {
		l = &sync.Mutex{}
		s.balanceLocks[boarderID] = l
	}
	return l
}

// ============================================
// RoomsRepository
// ============================================

func (s *MemoryStore) ListRooms(_ context.Context, filters RoomFilters) ([]*domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*domain.Room{}
	for _, room := range s.rooms {
		if filters.Status != "" && string(room.Status) != filters.Status {
			continue
		}
		if filters.Floor != "" && room.Floor != filters.Floor {
			continue
		}
		if filters.Search != "" &&
			!strings.Contains(strings.ToLower(room.RoomNumber), strings.ToLower(filters.Search)) {
			continue
		}
		c := *room
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomNumber < out[j].RoomNumber })
	return out, nil
}

func (s *MemoryStore) GetRoom(_ context.Context, roomID string) (*domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *room
	return &c, nil
}

func (s *MemoryStore) CreateRoom(_ context.Context, room *domain.Room) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	c := *room
	c.RoomID = id
	if c.Status == "" {
		c.Status = domain.RoomStatusAvailable
	}
	s.rooms[id] = &c
	return id, nil
}

func (s *MemoryStore) UpdateRoom(_ context.Context, roomID string, room *domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.rooms[roomID]
	if !ok {
		return domain.ErrNotFound
	}
	if room.RoomNumber != "" {
		existing.RoomNumber = room.RoomNumber
	}
	if !room.Rent.IsZero() {
		existing.Rent = room.Rent
	}
	if room.Floor != "" {
		existing.Floor = room.Floor
	}
	return nil
}

func (s *MemoryStore) DeleteRoom(_ context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[roomID]; !ok {
		return domain.ErrNotFound
	}
	for _, b := range s.boarders {
		if b.RoomID == roomID {
			return domain.ErrNotFound // still occupied; caller treats as failure
		}
	}
	delete(s.rooms, roomID)
	return nil
}

func (s *MemoryStore) SetMaintenance(_ context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return domain.ErrNotFound
	}
	room.Status = domain.RoomStatusMaintenance
	return nil
}

func (s *MemoryStore) ClearMaintenance(_ context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok || room.Status != domain.RoomStatusMaintenance {
		return domain.ErrNotFound
	}
	room.Status = s.deriveStatusLocked(roomID)
	return nil
}

// deriveStatusLocked 按当前 boarder 绑定推导 Available/Occupied（调用方持有 mu）
func (s *MemoryStore) deriveStatusLocked(roomID string) domain.RoomStatus {
	for _, b := range s.boarders {
		if b.RoomID == roomID {
			return domain.RoomStatusOccupied
		}
	}
	return domain.RoomStatusAvailable
}

// occupyLocked / releaseLocked 房态推导（调用方持有 mu）
// Maintenance 为粘性覆盖：释放时不改写
func (s *MemoryStore) occupyLocked(roomID string) error {
	room, ok := s.rooms[roomID]
	if !ok {
		return domain.ErrNotFound
	}
	room.Status = domain.RoomStatusOccupied
	return nil
}

func (s *MemoryStore) releaseLocked(roomID string) {
	room, ok := s.rooms[roomID]
	if !ok {
		return
	}
	if room.Status != domain.RoomStatusMaintenance {
		room.Status = domain.RoomStatusAvailable
	}
}

// ============================================
// StaffRepository
// ============================================

func (s *MemoryStore) ListOwners(_ context.Context) ([]*domain.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*domain.Owner{}
	for _, o := range s.owners {
		c := *o
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) CreateOwner(_ context.Context, owner *domain.Owner) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	c := *owner
	c.OwnerID = id
	s.owners[id] = &c
	return id, nil
}

func (s *MemoryStore) ListCaretakers(_ context.Context) ([]*domain.Caretaker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*domain.Caretaker{}
	for _, ct := range s.caretakers {
		c := *ct
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) GetCaretaker(_ context.Context, caretakerID string) (*domain.Caretaker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ct, ok := s.caretakers[caretakerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *ct
	return &c, nil
}

func (s *MemoryStore) CreateCaretaker(_ context.Context, caretaker *domain.Caretaker) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	c := *caretaker
	c.CaretakerID = id
	s.caretakers[id] = &c
	return id, nil
}

func (s *MemoryStore) ListEmployees(_ context.Context, caretakerID string) ([]*domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*domain.Employee{}
	for _, e := range s.employees {
		if caretakerID != "" && e.CaretakerID != caretakerID {
			continue
		}
		c := *e
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) CreateEmployee(_ context.Context, employee *domain.Employee) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	c := *employee
	c.EmployeeID = id
	s.employees[id] = &c
	return id, nil
}

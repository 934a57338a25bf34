package repository

import (
	"context"

	"bhms-data/internal/domain"
)

// RoomsRepository 房间Repository接口
// 使用强类型领域模型，不使用map[string]any
//
// 注意：Available/Occupied 状态不由调用方直接写入，由 boarder 写入路径在同一
// 事务内推导维护（见 BoardersRepository）。这里只允许管理动作（维修标记）和
// 基础 CRUD。
type RoomsRepository interface {
	// 查询
	ListRooms(ctx context.Context, filters RoomFilters) ([]*domain.Room, error)
	GetRoom(ctx context.Context, roomID string) (*domain.Room, error)

	// 创建/更新/删除
	CreateRoom(ctx context.Context, room *domain.Room) (string, error)
	UpdateRoom(ctx context.Context, roomID string, room *domain.Room) error
	DeleteRoom(ctx context.Context, roomID string) error

	// 维修标记（粘性覆盖，占用推导不会改写 Maintenance 状态）
	SetMaintenance(ctx context.Context, roomID string) error
	// 解除维修标记：按当前是否有 boarder 入住重算 Available/Occupied
	ClearMaintenance(ctx context.Context, roomID string) error
}

// RoomFilters 房间查询过滤器
type RoomFilters struct {
	Status string // 按 status 过滤（Available/Occupied/Maintenance）
	Floor  string // 按 floor 过滤
	Search string // 模糊搜索 room_number
}

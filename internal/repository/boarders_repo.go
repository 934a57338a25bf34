package repository

import (
	"context"

	"bhms-data/internal/domain"
)

// BoardersRepository 住宿人Repository接口
// 使用强类型领域模型，不使用map[string]any
//
// 房态推导（替代原 schema 的房间状态触发器）在本接口的写路径内完成：
// 创建/换房/搬出/删除 boarder 与对应的 rooms.status 更新始终在同一事务中提交，
// 读取方不会观察到 boarder 指向某房间而该房间不是 Occupied 的中间状态。
type BoardersRepository interface {
	// 查询
	GetBoarder(ctx context.Context, boarderID string) (*domain.Boarder, error)
	ListBoarders(ctx context.Context, filters BoarderFilters, page, size int) ([]*BoarderWithRoom, int, error)

	// 创建（替代触发器：trg_room_occupied_on_boarder_insert）
	// 带 room_id 创建时将该房间置为 Occupied
	CreateBoarder(ctx context.Context, boarder *domain.Boarder) (string, error)

	// 联系方式等基础字段更新（不改变房间绑定）
	UpdateBoarder(ctx context.Context, boarderID string, boarder *domain.Boarder) error

	// 换房/搬出（替代触发器：trg_room_status_on_boarder_update）
	// newRoomID 为 nil 或空字符串表示搬出；原房间在非 Maintenance 时释放为 Available
	AssignRoom(ctx context.Context, boarderID string, newRoomID *string) error

	// 删除（替代存储过程 sp_delete_boarder + trg_room_status_on_boarder_delete）
	// 单事务内按顺序删除 guardians -> payments -> charges -> deposit_balances ->
	// 按姓名+电话匹配的 bookings -> boarder 本身，最后释放房间
	DeleteBoarder(ctx context.Context, boarderID string) error
}

// BoarderFilters 住宿人查询过滤器
type BoarderFilters struct {
	RoomID      string // 按房间过滤
	CaretakerID string // 按负责管理员过滤
	Search      string // 模糊搜索 first_name, last_name, email
}

// BoarderWithRoom 住宿人及其房间投影（展示用只读视图）
type BoarderWithRoom struct {
	Boarder *domain.Boarder `json:"boarder"`
	Room    *domain.Room    `json:"room,omitempty"` // 未入住时为 nil
}

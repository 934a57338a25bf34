package domain

import "errors"

// 核心操作的错误类别。所有仓储/服务操作要求原子失败：
// 返回任一错误时，事务已整体回滚，数据不变量保持不变。
// 存储层故障（连接、超时、约束冲突等）不设哨兵，按 %w 包装原始错误上抛。
var (
	// ErrInsufficientBalance 扣费金额超过当前余额，扣费记录整体被拒绝
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrNotFound 引用的 boarder/room/预订等不存在
	ErrNotFound = errors.New("not found")

	// ErrInvalidAmount 金额必须为正数
	ErrInvalidAmount = errors.New("invalid amount: must be positive")

	// ErrDuplicateEmail boarders.email 唯一约束冲突
	ErrDuplicateEmail = errors.New("email already registered")
)

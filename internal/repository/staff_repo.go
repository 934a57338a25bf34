package repository

import (
	"context"

	"bhms-data/internal/domain"
)

// StaffRepository 管理层级Repository接口（owners -> caretakers -> employees）
// 仅作为被引用的层级，不参与核心一致性规则
type StaffRepository interface {
	ListOwners(ctx context.Context) ([]*domain.Owner, error)
	CreateOwner(ctx context.Context, owner *domain.Owner) (string, error)

	ListCaretakers(ctx context.Context) ([]*domain.Caretaker, error)
	GetCaretaker(ctx context.Context, caretakerID string) (*domain.Caretaker, error)
	CreateCaretaker(ctx context.Context, caretaker *domain.Caretaker) (string, error)

	ListEmployees(ctx context.Context, caretakerID string) ([]*domain.Employee, error)
	CreateEmployee(ctx context.Context, employee *domain.Employee) (string, error)
}

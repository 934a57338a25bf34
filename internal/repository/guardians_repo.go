package repository

import (
	"context"

	"bhms-data/internal/domain"
)

// GuardiansRepository 监护人Repository接口
// 纯从属记录：随 boarder 删除被级联清理（显式清理见 BoardersRepository.DeleteBoarder，
// DB 的 ON DELETE CASCADE 仅作为最后防线）
type GuardiansRepository interface {
	ListGuardians(ctx context.Context, boarderID string) ([]*domain.Guardian, error)
	CreateGuardian(ctx context.Context, guardian *domain.Guardian) (string, error)
	UpdateGuardian(ctx context.Context, guardianID string, guardian *domain.Guardian) error
	DeleteGuardian(ctx context.Context, guardianID string) error
}

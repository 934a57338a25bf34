package service

import (
	"context"
	"fmt"

	"bhms-data/internal/domain"
	"bhms-data/internal/repository"

	"go.uber.org/zap"
)

// StaffService 管理层级服务接口（owners -> caretakers -> employees）
type StaffService interface {
	ListOwners(ctx context.Context) ([]*domain.Owner, error)
	CreateOwner(ctx context.Context, owner *domain.Owner) (string, error)

	ListCaretakers(ctx context.Context) ([]*domain.Caretaker, error)
	GetCaretaker(ctx context.Context, caretakerID string) (*domain.Caretaker, error)
	CreateCaretaker(ctx context.Context, caretaker *domain.Caretaker) (string, error)

	ListEmployees(ctx context.Context, caretakerID string) ([]*domain.Employee, error)
	CreateEmployee(ctx context.Context, employee *domain.Employee) (string, error)
}

type staffService struct {
	staffRepo repository.StaffRepository
	logger    *zap.Logger
}

// NewStaffService 创建 StaffService 实例
func NewStaffService(staffRepo repository.StaffRepository, logger *zap.Logger) StaffService {
	return &staffService{staffRepo: staffRepo, logger: logger}
}

func (s *staffService) ListOwners(ctx context.Context) ([]*domain.Owner, error) {
	return s.staffRepo.ListOwners(ctx)
}

func (s *staffService) CreateOwner(ctx context.Context, owner *domain.Owner) (string, error) {
	if owner == nil || owner.Name == "" {
		return "", fmt.Errorf("name is required")
	}
	id, err := s.staffRepo.CreateOwner(ctx, owner)
	if err != nil {
		return "", err
	}
	s.logger.Info("owner created", zap.String("owner_id", id))
	return id, nil
}

func (s *staffService) ListCaretakers(ctx context.Context) ([]*domain.Caretaker, error) {
	return s.staffRepo.ListCaretakers(ctx)
}

func (s *staffService) GetCaretaker(ctx context.Context, caretakerID string) (*domain.Caretaker, error) {
	if caretakerID == "" {
		return nil, fmt.Errorf("caretaker_id is required")
	}
	return s.staffRepo.GetCaretaker(ctx, caretakerID)
}

func (s *staffService) CreateCaretaker(ctx context.Context, caretaker *domain.Caretaker) (string, error) {
	if caretaker == nil || caretaker.Name == "" {
		return "", fmt.Errorf("name is required")
	}
	id, err := s.staffRepo.CreateCaretaker(ctx, caretaker)
	if err != nil {
		return "", err
	}
	s.logger.Info("caretaker created", zap.String("caretaker_id", id))
	return id, nil
}

func (s *staffService) ListEmployees(ctx context.Context, caretakerID string) ([]*domain.Employee, error) {
	return s.staffRepo.ListEmployees(ctx, caretakerID)
}

func (s *staffService) CreateEmployee(ctx context.Context, employee *domain.Employee) (string, error) {
	if employee == nil || employee.Name == "" {
		return "", fmt.Errorf("name is required")
	}
	id, err := s.staffRepo.CreateEmployee(ctx, employee)
	if err != nil {
		return "", err
	}
	s.logger.Info("employee created", zap.String("employee_id", id))
	return id, nil
}

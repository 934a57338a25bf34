package service

import (
	"context"
	"fmt"
	"time"

	"bhms-data/internal/domain"
	"bhms-data/internal/repository"

	"go.uber.org/zap"
)

// BoarderService 住宿人生命周期服务接口
//
// 入住/换房/搬出/删除与房态维护（替代原 schema 的房间状态触发器）都走这里；
// 房态变更由 repository 在同一事务内完成，本层负责参数校验、日志与缓存失效。
type BoarderService interface {
	GetBoarder(ctx context.Context, boarderID string) (*BoarderDetail, error)
	ListBoarders(ctx context.Context, req ListBoardersRequest) (*ListBoardersResponse, error)
	CreateBoarder(ctx context.Context, req CreateBoarderRequest) (string, error)
	UpdateBoarder(ctx context.Context, boarderID string, req UpdateBoarderRequest) error

	// 换房/搬出：newRoomID 为 nil 表示搬出
	AssignRoom(ctx context.Context, boarderID string, newRoomID *string) error

	// 删除：级联清理监护人、流水、余额、匹配的预订，并释放房间
	DeleteBoarder(ctx context.Context, boarderID string) error

	// 监护人管理
	ListGuardians(ctx context.Context, boarderID string) ([]*domain.Guardian, error)
	AddGuardian(ctx context.Context, req AddGuardianRequest) (string, error)
	UpdateGuardian(ctx context.Context, guardianID string, req UpdateGuardianRequest) error
	RemoveGuardian(ctx context.Context, guardianID string) error
}

type boarderService struct {
	boardersRepo  repository.BoardersRepository
	guardiansRepo repository.GuardiansRepository
	ledger        LedgerService // 详情页带余额
	logger        *zap.Logger
}

// NewBoarderService 创建 BoarderService 实例
func NewBoarderService(
	boardersRepo repository.BoardersRepository,
	guardiansRepo repository.GuardiansRepository,
	ledger LedgerService,
	logger *zap.Logger,
) BoarderService {
	return &boarderService{
		boardersRepo:  boardersRepo,
		guardiansRepo: guardiansRepo,
		ledger:        ledger,
		logger:        logger,
	}
}

// ============================================
// Request/Response DTOs
// ============================================

type CreateBoarderRequest struct {
	FirstName   string
	LastName    string
	Phone       string
	Email       string
	RoomID      string // 可选：带房间创建即直接入住
	CaretakerID string
	MoveInDate  *time.Time
}

type UpdateBoarderRequest struct {
	FirstName   string
	LastName    string
	Phone       string
	Email       string
	CaretakerID string
	MoveInDate  *time.Time
}

type ListBoardersRequest struct {
	RoomID      string
	CaretakerID string
	Search      string
	Page        int
	Size        int
}

type ListBoardersResponse struct {
	Items []*repository.BoarderWithRoom `json:"items"`
	Total int                           `json:"total"`
	Page  int                           `json:"page"`
	Size  int                           `json:"size"`
}

// BoarderDetail 住宿人详情（含监护人与押金余额）
type BoarderDetail struct {
	Boarder   *domain.Boarder    `json:"boarder"`
	Guardians []*domain.Guardian `json:"guardians"`
	Balance   *BalanceResponse   `json:"balance"`
}

type AddGuardianRequest struct {
	BoarderID    string
	Name         string
	Phone        string
	Relationship string
}

type UpdateGuardianRequest struct {
	Name         string
	Phone        string
	Relationship string
}

// ============================================
// 实现
// ============================================

func (s *boarderService) GetBoarder(ctx context.Context, boarderID string) (*BoarderDetail, error) {
	if boarderID == "" {
		return nil, fmt.Errorf("boarder_id is required")
	}

	boarder, err := s.boardersRepo.GetBoarder(ctx, boarderID)
	if err != nil {
		return nil, err
	}
	guardians, err := s.guardiansRepo.ListGuardians(ctx, boarderID)
	if err != nil {
		return nil, err
	}
	balance, err := s.ledger.GetBalance(ctx, boarderID)
	if err != nil {
		return nil, err
	}

	return &BoarderDetail{
		Boarder:   boarder,
		Guardians: guardians,
		Balance:   balance,
	}, nil
}

func (s *boarderService) ListBoarders(ctx context.Context, req ListBoardersRequest) (*ListBoardersResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Size <= 0 {
		req.Size = 20
	}

	items, total, err := s.boardersRepo.ListBoarders(ctx, repository.BoarderFilters{
		RoomID:      req.RoomID,
		CaretakerID: req.CaretakerID,
		Search:      req.Search,
	}, req.Page, req.Size)
	if err != nil {
		return nil, err
	}

	return &ListBoardersResponse{
		Items: items,
		Total: total,
		Page:  req.Page,
		Size:  req.Size,
	}, nil
}

func (s *boarderService) CreateBoarder(ctx context.Context, req CreateBoarderRequest) (string, error) {
	if req.FirstName == "" || req.LastName == "" {
		return "", fmt.Errorf("first_name and last_name are required")
	}
	if req.Email == "" {
		return "", fmt.Errorf("email is required")
	}

	boarderID, err := s.boardersRepo.CreateBoarder(ctx, &domain.Boarder{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Phone:       req.Phone,
		Email:       req.Email,
		RoomID:      req.RoomID,
		CaretakerID: req.CaretakerID,
		MoveInDate:  req.MoveInDate,
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("boarder created",
		zap.String("boarder_id", boarderID),
		zap.String("email", req.Email),
		zap.String("room_id", req.RoomID),
	)
	return boarderID, nil
}

func (s *boarderService) UpdateBoarder(ctx context.Context, boarderID string, req UpdateBoarderRequest) error {
	if boarderID == "" {
		return fmt.Errorf("boarder_id is required")
	}

	return s.boardersRepo.UpdateBoarder(ctx, boarderID, &domain.Boarder{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Phone:       req.Phone,
		Email:       req.Email,
		CaretakerID: req.CaretakerID,
		MoveInDate:  req.MoveInDate,
	})
}

func (s *boarderService) AssignRoom(ctx context.Context, boarderID string, newRoomID *string) error {
	if boarderID == "" {
		return fmt.Errorf("boarder_id is required")
	}

	if err := s.boardersRepo.AssignRoom(ctx, boarderID, newRoomID); err != nil {
		return err
	}

	target := "(moved out)"
	if newRoomID != nil && *newRoomID != "" {
		target = *newRoomID
	}
	s.logger.Info("boarder room assignment changed",
		zap.String("boarder_id", boarderID),
		zap.String("room_id", target),
	)
	return nil
}

func (s *boarderService) DeleteBoarder(ctx context.Context, boarderID string) error {
	if boarderID == "" {
		return fmt.Errorf("boarder_id is required")
	}

	if err := s.boardersRepo.DeleteBoarder(ctx, boarderID); err != nil {
		return err
	}

	s.logger.Info("boarder deleted with cascade", zap.String("boarder_id", boarderID))
	return nil
}

func (s *boarderService) ListGuardians(ctx context.Context, boarderID string) ([]*domain.Guardian, error) {
	if boarderID == "" {
		return nil, fmt.Errorf("boarder_id is required")
	}
	return s.guardiansRepo.ListGuardians(ctx, boarderID)
}

func (s *boarderService) AddGuardian(ctx context.Context, req AddGuardianRequest) (string, error) {
	if req.BoarderID == "" {
		return "", fmt.Errorf("boarder_id is required")
	}
	if req.Name == "" {
		return "", fmt.Errorf("name is required")
	}

	return s.guardiansRepo.CreateGuardian(ctx, &domain.Guardian{
		BoarderID:    req.BoarderID,
		Name:         req.Name,
		Phone:        req.Phone,
		Relationship: req.Relationship,
	})
}

func (s *boarderService) UpdateGuardian(ctx context.Context, guardianID string, req UpdateGuardianRequest) error {
	if guardianID == "" {
		return fmt.Errorf("guardian_id is required")
	}
	return s.guardiansRepo.UpdateGuardian(ctx, guardianID, &domain.Guardian{
		Name:         req.Name,
		Phone:        req.Phone,
		Relationship: req.Relationship,
	})
}

func (s *boarderService) RemoveGuardian(ctx context.Context, guardianID string) error {
	if guardianID == "" {
		return fmt.Errorf("guardian_id is required")
	}
	return s.guardiansRepo.DeleteGuardian(ctx, guardianID)
}

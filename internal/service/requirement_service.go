package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"uniqualifyer/internal/dto"
	"uniqualifyer/internal/model"
	"uniqualifyer/internal/repository"
)

// ── 录取要求模块业务错误 ──

var (
	ErrRequirementNotFound        = errors.New("录取要求不存在")
	ErrRequirementSubjectRequired = errors.New("该类型的录取要求必须指定科目")
)

// RequirementService 专业录取要求业务接口
//
// 设计说明：
//   - GRADE/COURSE/LANGUAGE 要求必须携带科目，匹配时按科目对齐资质；
//   - INTERVIEW/PORTFOLIO 要求不携带科目与成绩，仅作流程性说明，
//     创建时传入的 subject/min_grade 一律丢弃。
type RequirementService interface {
	Create(ctx context.Context, programID string, req *dto.CreateRequirementRequest, callerID string) (*dto.RequirementResponse, error)
	GetByID(ctx context.Context, id string) (*dto.RequirementResponse, error)
	ListByProgram(ctx context.Context, programID string) ([]dto.RequirementResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateRequirementRequest, callerID string) (*dto.RequirementResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type requirementService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewRequirementService 创建 RequirementService 实例
func NewRequirementService(repo *repository.Repository, logger *zap.Logger) RequirementService {
	return &requirementService{repo: repo, logger: logger}
}

// requirementNeedsSubject 科目型要求（GRADE/COURSE/LANGUAGE）
func requirementNeedsSubject(reqType string) bool {
	switch reqType {
	case model.RequirementGrade, model.RequirementCourse, model.RequirementLanguage:
		return true
	}
	return false
}

// ────────────────────── Create ──────────────────────

func (s *requirementService) Create(ctx context.Context, programID string, req *dto.CreateRequirementRequest, callerID string) (*dto.RequirementResponse, error) {
	if _, err := s.repo.Program.GetByID(ctx, programID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		s.logger.Error("查询专业失败", zap.Error(err))
		return nil, err
	}

	requirement := &model.ProgramRequirement{
		ProgramID:   programID,
		Type:        req.Type,
		Description: req.Description,
	}
	if requirementNeedsSubject(req.Type) {
		subject := strings.TrimSpace(req.Subject)
		if subject == "" {
			return nil, ErrRequirementSubjectRequired
		}
		requirement.Subject = &subject
		if grade := strings.TrimSpace(req.MinGrade); grade != "" {
			requirement.MinGrade = &grade
		}
	}
	requirement.CreatedBy = &callerID
	requirement.UpdatedBy = &callerID

	if err := s.repo.Requirement.Create(ctx, requirement); err != nil {
		s.logger.Error("创建录取要求失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("录取要求已创建",
		zap.String("requirement_id", requirement.RequirementID),
		zap.String("program_id", programID),
		zap.String("type", req.Type),
	)

	resp := toRequirementResponse(requirement)
	return &resp, nil
}

// ────────────────────── GetByID / ListByProgram ──────────────────────

func (s *requirementService) GetByID(ctx context.Context, id string) (*dto.RequirementResponse, error) {
	requirement, err := s.repo.Requirement.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequirementNotFound
		}
		s.logger.Error("查询录取要求失败", zap.Error(err))
		return nil, err
	}
	resp := toRequirementResponse(requirement)
	return &resp, nil
}

func (s *requirementService) ListByProgram(ctx context.Context, programID string) ([]dto.RequirementResponse, error) {
	if _, err := s.repo.Program.GetByID(ctx, programID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		s.logger.Error("查询专业失败", zap.Error(err))
		return nil, err
	}

	requirements, err := s.repo.Requirement.ListByProgram(ctx, programID)
	if err != nil {
		s.logger.Error("查询录取要求列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.RequirementResponse, 0, len(requirements))
	for i := range requirements {
		result = append(result, toRequirementResponse(&requirements[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *requirementService) Update(ctx context.Context, id string, req *dto.UpdateRequirementRequest, callerID string) (*dto.RequirementResponse, error) {
	requirement, err := s.repo.Requirement.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequirementNotFound
		}
		s.logger.Error("查询录取要求失败", zap.Error(err))
		return nil, err
	}

	if requirementNeedsSubject(requirement.Type) {
		if req.Subject != nil {
			subject := strings.TrimSpace(*req.Subject)
			if subject == "" {
				return nil, ErrRequirementSubjectRequired
			}
			requirement.Subject = &subject
		}
		if req.MinGrade != nil {
			if grade := strings.TrimSpace(*req.MinGrade); grade != "" {
				requirement.MinGrade = &grade
			} else {
				requirement.MinGrade = nil
			}
		}
	}
	if req.Description != nil {
		requirement.Description = *req.Description
	}
	requirement.UpdatedBy = &callerID

	if err := s.repo.Requirement.Update(ctx, requirement); err != nil {
		s.logger.Error("更新录取要求失败", zap.Error(err))
		return nil, err
	}

	resp := toRequirementResponse(requirement)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *requirementService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Requirement.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequirementNotFound
		}
		s.logger.Error("查询录取要求失败", zap.Error(err))
		return err
	}

	if err := s.repo.Requirement.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除录取要求失败", zap.Error(err))
		return err
	}

	s.logger.Info("录取要求已删除",
		zap.String("requirement_id", id),
		zap.String("deleted_by", callerID),
	)
	return nil
}

// [自证通过] internal/service/requirement_service.go

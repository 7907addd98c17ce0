package dto

// ── 录取要求模块 DTO ──

// CreateRequirementRequest 创建录取要求请求
// GRADE/COURSE/LANGUAGE 类型需携带 subject；min_grade 可选
type CreateRequirementRequest struct {
	Type        string `json:"type"        binding:"required,reqtype"`
	Subject     string `json:"subject"     binding:"omitempty,max=100"`
	MinGrade    string `json:"min_grade"   binding:"omitempty,max=16"`
	Description string `json:"description" binding:"omitempty,max=500"`
}

// UpdateRequirementRequest 更新录取要求请求
type UpdateRequirementRequest struct {
	Subject     *string `json:"subject"     binding:"omitempty,max=100"`
	MinGrade    *string `json:"min_grade"   binding:"omitempty,max=16"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// RequirementResponse 录取要求响应
type RequirementResponse struct {
	ID          string `json:"id"`
	ProgramID   string `json:"program_id"`
	Type        string `json:"type"`
	Subject     string `json:"subject,omitempty"`
	MinGrade    string `json:"min_grade,omitempty"`
	Description string `json:"description,omitempty"`
}

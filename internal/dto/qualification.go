package dto

// ── 学历资质模块 DTO ──

// CreateQualificationRequest 学生录入资质请求
type CreateQualificationRequest struct {
	Type    string `json:"type"    binding:"required,qualtype"`
	Subject string `json:"subject" binding:"required,min=1,max=100"`
	Grade   string `json:"grade"   binding:"required,min=1,max=16"`
}

// UpdateQualificationRequest 更新资质请求（已核验的资质不可修改）
type UpdateQualificationRequest struct {
	Subject *string `json:"subject" binding:"omitempty,min=1,max=100"`
	Grade   *string `json:"grade"   binding:"omitempty,min=1,max=16"`
}

// QualificationListRequest 资质列表查询参数
type QualificationListRequest struct {
	PaginationRequest
	Type     string `form:"type"     binding:"omitempty,qualtype"`
	Verified *bool  `form:"verified"`
}

// QualificationResponse 资质信息响应
type QualificationResponse struct {
	ID         string `json:"id"`
	StudentID  string `json:"student_id"`
	Type       string `json:"type"`
	Subject    string `json:"subject"`
	Grade      string `json:"grade"`
	Verified   bool   `json:"verified"`
	VerifiedAt string `json:"verified_at,omitempty"`
	CreatedAt  string `json:"created_at"`
}

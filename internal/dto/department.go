package dto

// ── 院系模块 DTO ──

// CreateDepartmentRequest 创建院系请求
type CreateDepartmentRequest struct {
	UniversityID string `json:"university_id" binding:"required,uuid"`
	Name         string `json:"name"          binding:"required,min=2,max=200"`
	Code         string `json:"code"          binding:"omitempty,max=32"`
}

// UpdateDepartmentRequest 更新院系请求
type UpdateDepartmentRequest struct {
	Name *string `json:"name" binding:"omitempty,min=2,max=200"`
	Code *string `json:"code" binding:"omitempty,max=32"`
}

// DepartmentListRequest 院系列表查询参数
type DepartmentListRequest struct {
	PaginationRequest
	UniversityID string `form:"university_id" binding:"omitempty,uuid"`
	Keyword      string `form:"keyword"       binding:"omitempty,max=50"`
}

// DepartmentDetailResponse 院系详细信息响应
type DepartmentDetailResponse struct {
	ID             string `json:"id"`
	UniversityID   string `json:"university_id"`
	UniversityName string `json:"university_name,omitempty"`
	Name           string `json:"name"`
	Code           string `json:"code,omitempty"`
	ProgramCount   int64  `json:"program_count"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

package dto

// ── 专业模块 DTO ──

// CreateProgramRequest 创建专业请求
type CreateProgramRequest struct {
	DepartmentID string `json:"department_id" binding:"required,uuid"`
	Name         string `json:"name"          binding:"required,min=2,max=200"`
	Degree       string `json:"degree"        binding:"omitempty,oneof=bachelor master phd"`
	Capacity     int    `json:"capacity"      binding:"omitempty,min=0"`
	Description  string `json:"description"   binding:"omitempty,max=2000"`
}

// UpdateProgramRequest 更新专业请求
type UpdateProgramRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=2,max=200"`
	Degree      *string `json:"degree"      binding:"omitempty,oneof=bachelor master phd"`
	Capacity    *int    `json:"capacity"    binding:"omitempty,min=0"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
}

// ProgramListRequest 专业列表查询参数
type ProgramListRequest struct {
	PaginationRequest
	DepartmentID string `form:"department_id" binding:"omitempty,uuid"`
	Degree       string `form:"degree"        binding:"omitempty,oneof=bachelor master phd"`
	Keyword      string `form:"keyword"       binding:"omitempty,max=50"`
}

// ProgramResponse 专业信息响应
type ProgramResponse struct {
	ID             string `json:"id"`
	DepartmentID   string `json:"department_id"`
	DepartmentName string `json:"department_name,omitempty"`
	UniversityName string `json:"university_name,omitempty"`
	Name           string `json:"name"`
	Degree         string `json:"degree"`
	Capacity       int    `json:"capacity"`
	Description    string `json:"description,omitempty"`
	CreatedAt      string `json:"created_at"`
}

// ProgramDetailResponse 专业详细信息（含录取要求）
type ProgramDetailResponse struct {
	ProgramResponse
	Requirements []RequirementResponse `json:"requirements"`
}

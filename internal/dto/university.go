package dto

// ── 大学模块 DTO ──

// CreateUniversityRequest 创建大学请求
type CreateUniversityRequest struct {
	Name    string `json:"name"    binding:"required,min=2,max=200"`
	Country string `json:"country" binding:"omitempty,max=100"`
	City    string `json:"city"    binding:"omitempty,max=100"`
	Website string `json:"website" binding:"omitempty,url,max=255"`
}

// UpdateUniversityRequest 更新大学请求
type UpdateUniversityRequest struct {
	Name    *string `json:"name"    binding:"omitempty,min=2,max=200"`
	Country *string `json:"country" binding:"omitempty,max=100"`
	City    *string `json:"city"    binding:"omitempty,max=100"`
	Website *string `json:"website" binding:"omitempty,url,max=255"`
}

// UniversityListRequest 大学列表查询参数
type UniversityListRequest struct {
	PaginationRequest
	Country string `form:"country" binding:"omitempty,max=100"`
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// UniversityResponse 大学信息响应
type UniversityResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Country         string `json:"country"`
	City            string `json:"city"`
	Website         string `json:"website,omitempty"`
	DepartmentCount int64  `json:"department_count"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

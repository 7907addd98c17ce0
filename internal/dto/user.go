package dto

// ── 用户模块 DTO ──

// CreateUserRequest 创建用户请求（超管创建院系管理员等）
type CreateUserRequest struct {
	Name         string `json:"name"          binding:"required,min=2,max=50"`
	Email        string `json:"email"         binding:"required,email"`
	Role         string `json:"role"          binding:"required,oneof=student department_admin superadmin"`
	DepartmentID string `json:"department_id" binding:"omitempty,uuid"`
}

// CreateUserResponse 创建用户响应（携带初始密码）
type CreateUserResponse struct {
	User         UserResponse `json:"user"`
	TempPassword string       `json:"temp_password"`
}

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	DepartmentID string `form:"department_id" binding:"omitempty,uuid"`
	Role         string `form:"role"          binding:"omitempty,oneof=student department_admin superadmin"`
	Keyword      string `form:"keyword"       binding:"omitempty,max=50"`
}

// UpdateUserRequest 更新用户信息请求
type UpdateUserRequest struct {
	Name         *string `json:"name"          binding:"omitempty,min=2,max=50"`
	Email        *string `json:"email"         binding:"omitempty,email"`
	DepartmentID *string `json:"department_id" binding:"omitempty,uuid"`
}

// AssignRoleRequest 分配角色请求
type AssignRoleRequest struct {
	Role         string `json:"role"          binding:"required,oneof=student department_admin superadmin"`
	DepartmentID string `json:"department_id" binding:"omitempty,uuid"`
}

// ResetPasswordResponse 重置密码响应
type ResetPasswordResponse struct {
	TempPassword string `json:"temp_password"`
}

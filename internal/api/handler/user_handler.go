package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"uniqualifyer/internal/authz"
	"uniqualifyer/internal/dto"
	"uniqualifyer/internal/service"
	"uniqualifyer/pkg/response"
)

// UserHandler 用户模块 HTTP 处理器
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// CreateUser 管理员创建账号（院系管理员等），返回一次性初始密码
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	p, ok := MustGetPolicy(c)
	if !ok {
		return
	}
	if !p.CanManage(authz.ResourceUsers, authz.ActionCreate, authz.Scope{}) {
		response.Forbidden(c, 10003, "无权限访问")
		return
	}

	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.userSvc.CreateUser(c.Request.Context(), &req, p.UserID())
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.Created(c, result)
}

// ListUsers 用户列表（院系管理员仅见本院系）
// GET /api/v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	p, ok := MustGetPolicy(c)
	if !ok {
		return
	}
	if p.IsStudent() {
		response.Forbidden(c, 10003, "无权限访问")
		return
	}

	var req dto.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	users, total, err := h.userSvc.List(c.Request.Context(), &req, p.Role(), p.DepartmentID())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, users, total, req.GetPage(), req.GetPageSize())
}

// GetUser 获取用户详情（管理员或本人）
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id := c.Param("id")
	p, ok := MustGetPolicy(c)
	if !ok {
		return
	}
	if p.IsStudent() && !p.Owns(id) {
		response.Forbidden(c, 10003, "无权限访问")
		return
	}

	user, err := h.userSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// UpdateUser 更新用户信息（超管或本人，本人不可改院系绑定）
// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id := c.Param("id")
	p, ok := MustGetPolicy(c)
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	user, err := h.userSvc.Update(c.Request.Context(), id, &req, p.UserID(), p.Role())
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// DeleteUser 删除用户
// DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	p, ok := MustGetPolicy(c)
	if !ok {
		return
	}
	if !p.CanManage(authz.ResourceUsers, authz.ActionDelete, authz.Scope{}) {
		response.Forbidden(c, 10003, "无权限访问")
		return
	}

	if err := h.userSvc.Delete(c.Request.Context(), id, p.UserID()); err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, nil)
}

// AssignRole 调整用户角色与院系绑定
// PUT /api/v1/users/:id/role
func (h *UserHandler) AssignRole(c *gin.Context) {
	id := c.Param("id")
	p, ok := MustGetPolicy(c)
	if !ok {
		return
	}
	if !p.CanManage(authz.ResourceUsers, authz.ActionUpdate, authz.Scope{}) {
		response.Forbidden(c, 10003, "无权限访问")
		return
	}

	var req dto.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.userSvc.AssignRole(c.Request.Context(), id, &req, p.UserID()); err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, nil)
}

// ResetPassword 重置用户密码，返回一次性临时密码
// POST /api/v1/users/:id/reset-password
func (h *UserHandler) ResetPassword(c *gin.Context) {
	id := c.Param("id")
	p, ok := MustGetPolicy(c)
	if !ok {
		return
	}
	if !p.CanManage(authz.ResourceUsers, authz.ActionUpdate, authz.Scope{}) {
		response.Forbidden(c, 10003, "无权限访问")
		return
	}

	result, err := h.userSvc.ResetPassword(c.Request.Context(), id, p.UserID())
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, result)
}

// handleUserError 统一处理用户模块业务错误
func (h *UserHandler) handleUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, "用户不存在")
	case errors.Is(err, service.ErrEmailTaken):
		response.BadRequest(c, 12002, "该邮箱已被注册")
	case errors.Is(err, service.ErrUserSelfDelete):
		response.BadRequest(c, 12003, "不能删除自己")
	case errors.Is(err, service.ErrUserSelfRoleChange):
		response.BadRequest(c, 12004, "不能修改自己的角色")
	case errors.Is(err, service.ErrLastSuperadmin):
		response.BadRequest(c, 12005, "系统至少保留一名平台管理员")
	case errors.Is(err, service.ErrDepartmentRequired):
		response.BadRequest(c, 12006, "院系管理员必须绑定院系")
	case errors.Is(err, service.ErrDepartmentNotFound):
		response.NotFound(c, 13101, "院系不存在")
	case errors.Is(err, service.ErrNoPermission):
		response.Forbidden(c, 10003, "无权限访问")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/user_handler.go

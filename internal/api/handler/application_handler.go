package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"uniqualifyer/internal/authz"
	"uniqualifyer/internal/dto"
	"uniqualifyer/internal/service"
	pkgerrors "uniqualifyer/pkg/errors"
	"uniqualifyer/pkg/response"
)

// ApplicationHandler 申请模块 HTTP 处理器
type ApplicationHandler struct {
	appSvc    service.ApplicationService
	inviteSvc service.InviteService
	progSvc   service.ProgramService
}

// NewApplicationHandler 创建 ApplicationHandler
func NewApplicationHandler(
	appSvc service.ApplicationService,
	inviteSvc service.InviteService,
	progSvc service.ProgramService,
) *ApplicationHandler {
	return &ApplicationHandler{appSvc: appSvc, inviteSvc: inviteSvc, progSvc: progSvc}
}

// CreateApplication 学生创建申请（草稿或直接提交）
// POST /api/v1/applications
func (h *ApplicationHandler) CreateApplication(c *gin.Context) {
	p, ok := MustGetPolicy(c)
	if !ok {
		return
	}
	if !p.CanManage(authz.ResourceApplications, authz.ActionCreate, authz.Scope{}) {
		response.Forbidden(c, 10003, "无权限访问")
		return
	}

	var req dto.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	app, err := h.appSvc.Create(c.Request.Context(), p.UserID(), &req)
	if err != nil {
		h.handleApplicationError(c, err)
		return
	}

	response.Created(c, app)
}

// ListMyApplications 学生查看本人申请列表
// GET /api/v1/applications/me
func (h *ApplicationHandler) ListMyApplications(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ApplicationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	apps, total, err := h.appSvc.ListByStudent(c.Request.Context(), userID, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, apps, total, req.GetPage(), req.GetPageSize())
}

// CanApply 申请资格预检（纯读，不改变任何状态）
// GET /api/v1/applications/can-apply?program_id=xxx
func (h *ApplicationHandler) CanApply(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	programID := c.Query("program_id")
	if programID == "" {
		response.BadRequest(c, 10001, "program_id 不能为空")
		return
	}

	result, err := h.appSvc.CanApply(c.Request.Context(), userID, programID)
	if err != nil {
		h.handleApplicationError(c, err)
		return
	}

	response.OK(c, result)
}

// GetApplication 获取申请详情（本人、本院系管理员或超管）
// GET /api/v1/applications/:id
func (h *ApplicationHandler) GetApplication(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "申请ID不能为空")
		return
	}

	p, ok := MustGetPolicy(c)
	if !ok {
		return
	}

	app, err := h.appSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleApplicationError(c, err)
		return
	}
	scope := authz.Scope{OwnerID: app.StudentID, DepartmentID: app.DepartmentID}
	if !p.CanManage(authz.ResourceApplications, authz.ActionRead, scope) {
		response.Forbidden(c, 10003, "无权限访问")
		return
	}

	response.OK(c, app)
}

// SubmitApplication 提交草稿为待审核
// POST /api/v1/applications/:id/submit
func (h *ApplicationHandler) SubmitApplication(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "申请ID不能为空")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	app, err := h.appSvc.Submit(c.Request.Context(), id, userID)
	if err != nil {
		h.handleApplicationError(c, err)
		return
	}

	response.OK(c, app)
}

// WithdrawApplication 撤回进行中的申请（仅草稿或待审核）
// POST /api/v1/applications/:id/withdraw
func (h *ApplicationHandler) WithdrawApplication(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "申请ID不能为空")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.appSvc.Withdraw(c.Request.Context(), id, userID); err != nil {
		h.handleApplicationError(c, err)
		return
	}

	response.OK(c, nil)
}

// DeleteApplication 删除草稿申请
// DELETE /api/v1/applications/:id
func (h *ApplicationHandler) DeleteApplication(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "申请ID不能为空")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.appSvc.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleApplicationError(c, err)
		return
	}

	response.OK(c, nil)
}

// ReviewApplication 审核人员推进申请状态
// PUT /api/v1/applications/:id/review
func (h *ApplicationHandler) ReviewApplication(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "申请ID不能为空")
		return
	}

	p, ok := MustGetPolicy(c)
	if !ok {
		return
	}
	if ok := h.authorizeReview(c, p, id); !ok {
		return
	}

	var req dto.ReviewApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	app, err := h.appSvc.Review(c.Request.Context(), id, &req, p.UserID())
	if err != nil {
		h.handleApplicationError(c, err)
		return
	}

	response.OK(c, app)
}

// ListProgramApplications 专业的申请列表（审核视角）
// GET /api/v1/programs/:id/applications
func (h *ApplicationHandler) ListProgramApplications(c *gin.Context) {
	programID := c.Param("id")
	if programID == "" {
		response.BadRequest(c, 10001, "专业ID不能为空")
		return
	}

	p, ok := MustGetPolicy(c)
	if !ok {
		return
	}
	program, err := h.progSvc.GetByID(c.Request.Context(), programID)
	if err != nil {
		if errors.Is(err, service.ErrProgramNotFound) {
			response.NotFound(c, 14001, "专业不存在")
			return
		}
		response.InternalError(c)
		return
	}
	if !p.CanManage(authz.ResourceApplications, authz.ActionRead, authz.Scope{DepartmentID: program.DepartmentID}) {
		response.Forbidden(c, 10003, "无权限访问")
		return
	}

	var req dto.ApplicationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	apps, total, err := h.appSvc.ListByProgram(c.Request.Context(), programID, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, apps, total, req.GetPage(), req.GetPageSize())
}

// AddNote 审核人员添加备注
// POST /api/v1/applications/:id/notes
func (h *ApplicationHandler) AddNote(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "申请ID不能为空")
		return
	}

	p, ok := MustGetPolicy(c)
	if !ok {
		return
	}
	if ok := h.authorizeReview(c, p, id); !ok {
		return
	}

	var req dto.AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	note, err := h.appSvc.AddNote(c.Request.Context(), id, &req, p.UserID())
	if err != nil {
		h.handleApplicationError(c, err)
		return
	}

	response.Created(c, note)
}

// ListNotes 查看申请备注（学生视角过滤内部备注）
// GET /api/v1/applications/:id/notes
func (h *ApplicationHandler) ListNotes(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "申请ID不能为空")
		return
	}

	p, ok := MustGetPolicy(c)
	if !ok {
		return
	}

	app, err := h.appSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleApplicationError(c, err)
		return
	}
	scope := authz.Scope{OwnerID: app.StudentID, DepartmentID: app.DepartmentID}
	if !p.CanManage(authz.ResourceApplications, authz.ActionRead, scope) {
		response.Forbidden(c, 10003, "无权限访问")
		return
	}

	// 学生只能看到非内部备注
	includeInternal := !p.IsStudent()
	notes, err := h.appSvc.ListNotes(c.Request.Context(), id, includeInternal)
	if err != nil {
		h.handleApplicationError(c, err)
		return
	}

	response.OK(c, gin.H{"list": notes})
}

// GenerateInvite 为审核中的申请生成面试邀请（.ics 下载）
// POST /api/v1/applications/:id/invite
func (h *ApplicationHandler) GenerateInvite(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "申请ID不能为空")
		return
	}

	p, ok := MustGetPolicy(c)
	if !ok {
		return
	}
	if ok := h.authorizeReview(c, p, id); !ok {
		return
	}

	var req dto.InterviewInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	buf, filename, err := h.inviteSvc.GenerateInterviewInvite(c.Request.Context(), id, &req, p.UserID())
	if err != nil {
		h.handleApplicationError(c, err)
		return
	}

	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}

// authorizeReview 审核类操作的授权：取申请定位院系后检查策略
func (h *ApplicationHandler) authorizeReview(c *gin.Context, p authz.Policy, applicationID string) bool {
	app, err := h.appSvc.GetByID(c.Request.Context(), applicationID)
	if err != nil {
		h.handleApplicationError(c, err)
		return false
	}
	if !p.CanManage(authz.ResourceApplications, authz.ActionReview, authz.Scope{DepartmentID: app.DepartmentID}) {
		response.Forbidden(c, 10003, "无权限访问")
		return false
	}
	return true
}

// handleApplicationError 统一处理申请模块业务错误
func (h *ApplicationHandler) handleApplicationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrApplicationNotFound):
		response.NotFound(c, 16001, "申请不存在")
	case errors.Is(err, service.ErrApplicationProgramNotFound):
		response.NotFound(c, 16002, "目标专业不存在")
	case errors.Is(err, service.ErrApplicationDuplicate):
		response.BadRequest(c, 16003, "已存在针对该专业的进行中申请")
	case errors.Is(err, service.ErrApplicationNotOwner):
		response.Forbidden(c, 16004, "无权操作他人的申请")
	case errors.Is(err, service.ErrApplicationNotDraft):
		response.BadRequest(c, 16005, "仅草稿状态的申请可以提交")
	case errors.Is(err, service.ErrApplicationNotWithdrawable):
		response.BadRequest(c, 16006, "仅草稿或待审核状态的申请可以撤回")
	case errors.Is(err, service.ErrApplicationNotDeletable):
		response.BadRequest(c, 16007, "仅草稿状态的申请可以删除")
	case errors.Is(err, service.ErrApplicationBadTransition):
		response.BadRequest(c, 16008, "申请当前状态不允许该流转")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Error(c, http.StatusConflict, 16009, "申请已被他人修改，请刷新后重试")
	case errors.Is(err, service.ErrInviteNotUnderReview):
		response.BadRequest(c, 16101, "仅审核中的申请可以发送面试邀请")
	case errors.Is(err, service.ErrInviteNoInterviewReq):
		response.BadRequest(c, 16102, "该专业未设置面试要求")
	case errors.Is(err, service.ErrInviteBadScheduleTime):
		response.BadRequest(c, 16103, "面试时间格式无效或早于当前时间")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, "用户不存在")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/application_handler.go

package dto

// ── 申请模块 DTO ──

// CreateApplicationRequest 创建申请请求
// submit_now 为 true 时跳过草稿直接提交为 PENDING
type CreateApplicationRequest struct {
	ProgramID string `json:"program_id" binding:"required,uuid"`
	SubmitNow bool   `json:"submit_now"`
}

// ApplicationListRequest 申请列表查询参数
type ApplicationListRequest struct {
	PaginationRequest
	ProgramID string `form:"program_id" binding:"omitempty,uuid"`
	Status    string `form:"status"     binding:"omitempty,appstatus"`
}

// ReviewApplicationRequest 审核状态流转请求
type ReviewApplicationRequest struct {
	Status string `json:"status" binding:"required,oneof=UNDER_REVIEW APPROVED REJECTED CONDITIONAL"`
	Note   string `json:"note"   binding:"omitempty,max=2000"`
}

// AddNoteRequest 添加审核备注请求
type AddNoteRequest struct {
	Body     string `json:"body"     binding:"required,min=1,max=2000"`
	Internal *bool  `json:"internal"`
}

// InterviewInviteRequest 生成面试邀请（.ics 日历）请求
type InterviewInviteRequest struct {
	ScheduledAt     string `json:"scheduled_at"     binding:"required"` // RFC3339
	DurationMinutes int    `json:"duration_minutes" binding:"omitempty,min=15,max=480"`
	Location        string `json:"location"         binding:"omitempty,max=200"`
}

// ApplicationResponse 申请信息响应
type ApplicationResponse struct {
	ID             string `json:"id"`
	StudentID      string `json:"student_id"`
	StudentName    string `json:"student_name,omitempty"`
	ProgramID      string `json:"program_id"`
	ProgramName    string `json:"program_name,omitempty"`
	DepartmentID   string `json:"department_id,omitempty"`
	UniversityName string `json:"university_name,omitempty"`
	Status         string `json:"status"`
	SubmittedAt    string `json:"submitted_at,omitempty"`
	DecidedAt      string `json:"decided_at,omitempty"`
	CreatedAt      string `json:"created_at"`
}

// ApplicationNoteResponse 审核备注响应
type ApplicationNoteResponse struct {
	ID            string `json:"id"`
	ApplicationID string `json:"application_id"`
	AuthorID      string `json:"author_id"`
	AuthorName    string `json:"author_name,omitempty"`
	Body          string `json:"body"`
	Internal      bool   `json:"internal"`
	CreatedAt     string `json:"created_at"`
}

// CanApplyResponse 申请资格预检响应
type CanApplyResponse struct {
	CanApply bool   `json:"can_apply"`
	Reason   string `json:"reason,omitempty"`
}

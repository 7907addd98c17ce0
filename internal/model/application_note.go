package model

// ApplicationNote 申请审核备注表 — 对应 application_notes
// internal 为 true 的备注仅审核人员可见
type ApplicationNote struct {
	NoteID        string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"note_id"`
	ApplicationID string `gorm:"type:uuid;not null"                             json:"application_id"`
	AuthorID      string `gorm:"type:uuid;not null"                             json:"author_id"`
	Body          string `gorm:"type:text;not null"                             json:"body"`
	Internal      bool   `gorm:"not null;default:true"                          json:"internal"`
	BaseModel

	// 关联
	Author *User `gorm:"foreignKey:AuthorID;references:UserID" json:"author,omitempty"`
}

// TableName 指定表名
func (ApplicationNote) TableName() string { return "application_notes" }

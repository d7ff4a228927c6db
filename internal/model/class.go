package model

// Class table classes
type Class struct {
	ClassID      string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"class_id"`
	SchoolYearID string `gorm:"type:uuid;not null"                             json:"school_year_id"`
	Name         string `gorm:"type:varchar(50);not null"                      json:"name"`
	Grade        int    `gorm:"not null"                                       json:"grade"` // 10 | 11 | 12
	Status       string `gorm:"type:varchar(20);not null;default:'active'"     json:"status"`
	BaseModel
}

// TableName table name
func (Class) TableName() string { return "classes" }

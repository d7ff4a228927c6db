package model

// Subject table subjects
type Subject struct {
	SubjectID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"subject_id"`
	SchoolYearID string `gorm:"type:uuid;not null"                             json:"school_year_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	Status       string `gorm:"type:varchar(20);not null;default:'active'"     json:"status"`
	BaseModel
}

// TableName table name
func (Subject) TableName() string { return "subjects" }

package model

import "time"

// SchoolYear academic year, label "2024-2025", table school_years
type SchoolYear struct {
	SchoolYearID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"school_year_id"`
	Label        string     `gorm:"type:varchar(9);not null;uniqueIndex"           json:"label"`
	Status       string     `gorm:"type:varchar(20);not null;default:'active'"     json:"status"` // active | archived
	EndedAt      *time.Time `json:"ended_at,omitempty"`
	BaseModel
}

// TableName table name
func (SchoolYear) TableName() string { return "school_years" }

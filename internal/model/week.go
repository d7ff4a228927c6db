package model

import "time"

// Week one school week, table weeks
type Week struct {
	WeekID       string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"week_id"`
	SchoolYearID string    `gorm:"type:uuid;not null"                             json:"school_year_id"`
	WeekNumber   int       `gorm:"not null"                                       json:"week_number"` // dense, 1-based per year
	StartDate    time.Time `gorm:"type:date;not null"                             json:"start_date"`
	EndDate      time.Time `gorm:"type:date;not null"                             json:"end_date"`
	Status       string    `gorm:"type:varchar(20);not null;default:'active'"     json:"status"`
	BaseModel
}

// TableName table name
func (Week) TableName() string { return "weeks" }

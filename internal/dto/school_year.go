package dto

// ── school years ──

// CreateSchoolYearRequest create
type CreateSchoolYearRequest struct {
	Label string `json:"label" binding:"required,school_year_label"`
}

// RolloverRequest archive the active year and open the next one
type RolloverRequest struct {
	CopyClasses  bool `json:"copy_classes"`
	CopySubjects bool `json:"copy_subjects"`
	CopyTeachers bool `json:"copy_teachers"`
}

// SchoolYearResponse school year
type SchoolYearResponse struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Status    string `json:"status"`
	EndedAt   string `json:"ended_at,omitempty"`
	CreatedAt string `json:"created_at"`
}

// RolloverResponse result of a rollover
type RolloverResponse struct {
	Archived SchoolYearResponse `json:"archived"`
	Created  SchoolYearResponse `json:"created"`
	Classes  int                `json:"classes"`
	Subjects int                `json:"subjects"`
	Teachers int                `json:"teachers"`
}

// SchoolYearQuery optional explicit year; the active year is used when empty
type SchoolYearQuery struct {
	SchoolYearID string `form:"school_year_id" binding:"omitempty,uuid"`
}

package dto

// ── classes ──

// CreateClassRequest create; grade is derived from the name when omitted
type CreateClassRequest struct {
	SchoolYearID string `json:"school_year_id" binding:"omitempty,uuid"`
	Name         string `json:"name"           binding:"required,min=1,max=50"`
	Grade        int    `json:"grade"          binding:"omitempty,oneof=10 11 12"`
}

// UpdateClassRequest update
type UpdateClassRequest struct {
	Name   *string `json:"name"   binding:"omitempty,min=1,max=50"`
	Grade  *int    `json:"grade"  binding:"omitempty,oneof=10 11 12"`
	Status *string `json:"status" binding:"omitempty,oneof=active archived"`
}

// ClassListRequest list filters
type ClassListRequest struct {
	SchoolYearQuery
	Grade int `form:"grade" binding:"omitempty,oneof=10 11 12"`
}

// ClassResponse class
type ClassResponse struct {
	ID           string `json:"id"`
	SchoolYearID string `json:"school_year_id"`
	Name         string `json:"name"`
	Grade        int    `json:"grade"`
	Status       string `json:"status"`
}

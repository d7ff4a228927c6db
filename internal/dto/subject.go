package dto

// ── subjects ──

// CreateSubjectRequest create
type CreateSubjectRequest struct {
	SchoolYearID string `json:"school_year_id" binding:"omitempty,uuid"`
	Name         string `json:"name"           binding:"required,min=1,max=100"`
}

// UpdateSubjectRequest update
type UpdateSubjectRequest struct {
	Name   *string `json:"name"   binding:"omitempty,min=1,max=100"`
	Status *string `json:"status" binding:"omitempty,oneof=active archived"`
}

// SubjectResponse subject
type SubjectResponse struct {
	ID           string `json:"id"`
	SchoolYearID string `json:"school_year_id"`
	Name         string `json:"name"`
	Status       string `json:"status"`
}

package dto

// ── teachers ──

// CreateTeacherRequest create
type CreateTeacherRequest struct {
	SchoolYearID    string   `json:"school_year_id"    binding:"omitempty,uuid"`
	Name            string   `json:"name"              binding:"required,min=2,max=100"`
	Phone           string   `json:"phone"             binding:"omitempty,min=8,max=20,numeric"`
	UserID          string   `json:"user_id"           binding:"omitempty,uuid"`
	HomeroomClassID string   `json:"homeroom_class_id" binding:"required,uuid"`
	SubjectIDs      []string `json:"subject_ids"       binding:"required,min=1,dive,uuid"`
}

// UpdateTeacherRequest update
type UpdateTeacherRequest struct {
	Name            *string  `json:"name"              binding:"omitempty,min=2,max=100"`
	Phone           *string  `json:"phone"             binding:"omitempty,max=20"`
	UserID          *string  `json:"user_id"           binding:"omitempty,max=36"`
	HomeroomClassID *string  `json:"homeroom_class_id" binding:"omitempty,uuid"`
	SubjectIDs      []string `json:"subject_ids"       binding:"omitempty,min=1,dive,uuid"`
	Status          *string  `json:"status"            binding:"omitempty,oneof=active archived"`
}

// TeacherListRequest list filters
type TeacherListRequest struct {
	PaginationRequest
	SchoolYearQuery
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// TeacherResponse teacher
type TeacherResponse struct {
	ID            string            `json:"id"`
	SchoolYearID  string            `json:"school_year_id"`
	Name          string            `json:"name"`
	Phone         string            `json:"phone,omitempty"`
	UserID        string            `json:"user_id,omitempty"`
	HomeroomClass *ClassResponse    `json:"homeroom_class,omitempty"`
	Subjects      []SubjectResponse `json:"subjects"`
	Status        string            `json:"status"`
}

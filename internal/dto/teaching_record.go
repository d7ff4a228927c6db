package dto

// ── teaching records ──

// CreateTeachingRecordRequest create
type CreateTeachingRecordRequest struct {
	TeacherID  string `json:"teacher_id"  binding:"required,uuid"`
	WeekID     string `json:"week_id"     binding:"required,uuid"`
	SubjectID  string `json:"subject_id"  binding:"required,uuid"`
	ClassID    string `json:"class_id"    binding:"required,uuid"`
	Periods    int    `json:"periods"     binding:"required,min=1,max=20"`
	RecordType string `json:"record_type" binding:"omitempty,record_type"`
	Notes      string `json:"notes"       binding:"omitempty,max=500"`
}

// BatchCreateTeachingRecordRequest several rows of the weekly entry form
type BatchCreateTeachingRecordRequest struct {
	Records []CreateTeachingRecordRequest `json:"records" binding:"required,min=1,max=100,dive"`
}

// UpdateTeachingRecordRequest only these fields change after creation
type UpdateTeachingRecordRequest struct {
	Periods    *int    `json:"periods"     binding:"omitempty,min=1,max=20"`
	RecordType *string `json:"record_type" binding:"omitempty,record_type"`
	Notes      *string `json:"notes"       binding:"omitempty,max=500"`
}

// TeachingRecordListRequest list filters
type TeachingRecordListRequest struct {
	PaginationRequest
	SchoolYearQuery
	TeacherID  string `form:"teacher_id"  binding:"omitempty,uuid"`
	WeekID     string `form:"week_id"     binding:"omitempty,uuid"`
	RecordType string `form:"record_type" binding:"omitempty,record_type"`
}

// TeachingRecordResponse record with resolved names
type TeachingRecordResponse struct {
	ID           string `json:"id"`
	TeacherID    string `json:"teacher_id"`
	TeacherName  string `json:"teacher_name,omitempty"`
	WeekID       string `json:"week_id"`
	WeekNumber   int    `json:"week_number,omitempty"`
	SubjectID    string `json:"subject_id"`
	SubjectName  string `json:"subject_name,omitempty"`
	ClassID      string `json:"class_id"`
	ClassName    string `json:"class_name,omitempty"`
	SchoolYearID string `json:"school_year_id"`
	Periods      int    `json:"periods"`
	RecordType   string `json:"record_type"`
	Notes        string `json:"notes"`
	CreatedBy    string `json:"created_by,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// BatchCreateResult per-row outcome of a batch create
type BatchCreateResult struct {
	Created []TeachingRecordResponse `json:"created"`
	Errors  []ImportError            `json:"errors,omitempty"`
}

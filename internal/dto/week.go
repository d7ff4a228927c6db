package dto

// ── weeks ──

// CreateWeekRequest create one week
type CreateWeekRequest struct {
	SchoolYearID string `json:"school_year_id" binding:"omitempty,uuid"`
	StartDate    string `json:"start_date"     binding:"required"` // "2024-09-02"
	EndDate      string `json:"end_date"       binding:"required"`
}

// GenerateWeeksRequest count consecutive 7-day weeks from start_date
type GenerateWeeksRequest struct {
	SchoolYearID string `json:"school_year_id" binding:"omitempty,uuid"`
	StartDate    string `json:"start_date"     binding:"required"`
	Count        int    `json:"count"          binding:"required,min=1,max=53"`
}

// UpdateWeekRequest update
type UpdateWeekRequest struct {
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Status    *string `json:"status" binding:"omitempty,oneof=active archived"`
}

// WeekListRequest list filters
type WeekListRequest struct {
	SchoolYearQuery
	Status string `form:"status" binding:"omitempty,oneof=active archived"`
}

// WeekResponse week
type WeekResponse struct {
	ID           string `json:"id"`
	SchoolYearID string `json:"school_year_id"`
	WeekNumber   int    `json:"week_number"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Status       string `json:"status"`
}

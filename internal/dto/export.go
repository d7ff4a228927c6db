package dto

// Export types
const (
	ExportTypeBC       = "bc"
	ExportTypeWeek     = "week"
	ExportTypeSemester = "semester"
	ExportTypeYear     = "year"
)

// ExportRequest report export parameters. TeacherID and TeacherIDs may be combined.
type ExportRequest struct {
	SchoolYearID string   `json:"school_year_id" form:"school_year_id" binding:"omitempty,uuid"`
	TeacherID    string   `json:"teacher_id"     form:"teacher_id"     binding:"omitempty,uuid"`
	TeacherIDs   []string `json:"teacher_ids"    form:"teacher_ids"    binding:"omitempty,dive,uuid"`
	Type         string   `json:"type"           form:"type"           binding:"required,oneof=bc week semester year"`
	BCNumber     int      `json:"bc_number"      form:"bc_number"      binding:"omitempty,min=1,max=12"`
	WeekID       string   `json:"week_id"        form:"week_id"        binding:"omitempty,uuid"`
	WeekIDs      []string `json:"week_ids"       form:"week_ids"       binding:"omitempty,dive,uuid"`
	Semester     int      `json:"semester"       form:"semester"       binding:"omitempty,oneof=1 2"`
}

// AllTeacherIDs TeacherID followed by TeacherIDs, duplicates removed
func (r *ExportRequest) AllTeacherIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, id := range append([]string{r.TeacherID}, r.TeacherIDs...) {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// AllWeekIDs WeekID followed by WeekIDs, duplicates removed
func (r *ExportRequest) AllWeekIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, id := range append([]string{r.WeekID}, r.WeekIDs...) {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

package model

import "strings"

// Teacher teacher profile of one school year, table teachers
type Teacher struct {
	TeacherID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"teacher_id"`
	SchoolYearID    string  `gorm:"type:uuid;not null"                             json:"school_year_id"`
	Name            string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Phone           *string `gorm:"type:varchar(20)"                               json:"phone,omitempty"`
	UserID          *string `gorm:"type:uuid"                                      json:"user_id,omitempty"`
	HomeroomClassID string  `gorm:"type:uuid;not null"                             json:"homeroom_class_id"`
	Status          string  `gorm:"type:varchar(20);not null;default:'active'"     json:"status"`
	BaseModel

	// associations
	HomeroomClass *Class    `gorm:"foreignKey:HomeroomClassID;references:ClassID"                                                         json:"homeroom_class,omitempty"`
	Subjects      []Subject `gorm:"many2many:teacher_subjects;foreignKey:TeacherID;joinForeignKey:TeacherID;references:SubjectID;joinReferences:SubjectID" json:"subjects,omitempty"`
}

// TableName table name
func (Teacher) TableName() string { return "teachers" }

// SubjectNames names of the teacher's subjects, comma separated
func (t *Teacher) SubjectNames() string {
	names := make([]string, len(t.Subjects))
	for i, s := range t.Subjects {
		names[i] = s.Name
	}
	return strings.Join(names, ", ")
}

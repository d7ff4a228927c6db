package model

// Record types
const (
	RecordTypeTeaching       = "teaching"
	RecordTypeVocational1    = "vocational_1"
	RecordTypeVocational2    = "vocational_2"
	RecordTypeVocational3    = "vocational_3"
	RecordTypeExtraDuty      = "extra_duty"
	RecordTypeExamProctoring = "exam_proctoring"
)

// TeachingRecord periods taught by one teacher in one week for a (subject, class), table teaching_records
type TeachingRecord struct {
	RecordID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"record_id"`
	TeacherID    string `gorm:"type:uuid;not null"                             json:"teacher_id"`
	WeekID       string `gorm:"type:uuid;not null"                             json:"week_id"`
	SubjectID    string `gorm:"type:uuid;not null"                             json:"subject_id"`
	ClassID      string `gorm:"type:uuid;not null"                             json:"class_id"`
	SchoolYearID string `gorm:"type:uuid;not null"                             json:"school_year_id"`
	Periods      int    `gorm:"not null"                                       json:"periods"` // 1-20
	RecordType   string `gorm:"type:varchar(30);not null;default:'teaching'"   json:"record_type"`
	Notes        string `gorm:"type:text;not null;default:''"                  json:"notes"`
	BaseModel

	// associations
	Teacher *Teacher `gorm:"foreignKey:TeacherID;references:TeacherID" json:"teacher,omitempty"`
	Week    *Week    `gorm:"foreignKey:WeekID;references:WeekID"       json:"week,omitempty"`
	Subject *Subject `gorm:"foreignKey:SubjectID;references:SubjectID" json:"subject,omitempty"`
	Class   *Class   `gorm:"foreignKey:ClassID;references:ClassID"     json:"class,omitempty"`
}

// TableName table name
func (TeachingRecord) TableName() string { return "teaching_records" }

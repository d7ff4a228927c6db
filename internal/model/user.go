package model

// Roles
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
)

// User login account, table users
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Username     string `gorm:"type:varchar(50);not null;uniqueIndex"          json:"username"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'teacher'"    json:"role"` // admin | teacher
	BaseModel
}

// TableName table name
func (User) TableName() string { return "users" }

package dto

// ── users ──

// CreateUserRequest admin creates an account
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Name     string `json:"name"     binding:"required,min=2,max=100"`
	Password string `json:"password" binding:"required,min=8,max=64"`
	Role     string `json:"role"     binding:"required,oneof=admin teacher"`
}

// UserListRequest user list filters
type UserListRequest struct {
	PaginationRequest
	Role    string `form:"role"    binding:"omitempty,oneof=admin teacher"`
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// UserResponse user without secrets
type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	TeacherID string `json:"teacher_id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

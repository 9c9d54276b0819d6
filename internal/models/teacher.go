package models

// Role enumerates directory roles.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
)

// BootstrapAdminEmail is always present in the directory and cannot be removed or locked.
const BootstrapAdminEmail = "admin@hdu.com"

// Default display names assigned by the directory.
const (
	BootstrapAdminName = "Quản trị viên"
	DefaultTeacherName = "Giáo viên mới"
)

// Teacher is an entry of the global authorized-teacher directory.
type Teacher struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         Role   `json:"role"`
	PasswordHash string `json:"passwordHash,omitempty"`
	IsLocked     bool   `json:"isLocked"`
}

// Session returns the identity to bind to a workspace.
func (t Teacher) Session() SessionTeacher {
	return SessionTeacher{Email: t.Email, Name: t.Name, Role: t.Role}
}

// AddTeacherRequest registers a new directory member.
type AddTeacherRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"omitempty,max=120"`
}

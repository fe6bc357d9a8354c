package models

// Role is the moderation privilege level of a profile.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// Level maps roles onto their total order: user < admin < superadmin.
// Unknown values are treated as plain users.
func (r Role) Level() int {
	switch r {
	case RoleAdmin:
		return 1
	case RoleSuperAdmin:
		return 2
	default:
		return 0
	}
}

// IsModerator reports whether the role carries admin privileges.
func (r Role) IsModerator() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// UserProfile is the per-user record stored at users/{uid}. It is created
// lazily on first sign-in when absent.
type UserProfile struct {
	Role              Role   `json:"role"`
	Username          string `json:"username"`
	ProfilePictureURL string `json:"profilePictureUrl,omitempty"`
}

// UpdateProfileRequest defines the request body for editing the caller's own
// profile. Both fields are optional; absent fields are left untouched.
type UpdateProfileRequest struct {
	Username          string `json:"username" validate:"omitempty,min=1,max=50"`
	ProfilePictureURL string `json:"profilePictureUrl" validate:"omitempty,url"`
}

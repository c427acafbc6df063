package domain

import "time"

// User roles recognized by the storefront.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// User is the profile view model decoded from the upstream API.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Level     int       `json:"level"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// IsAdmin reports whether the user may access admin-gated endpoints, such
// as looking up other members' profiles.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Session is the signed-in session returned by the upstream auth endpoint.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Package models holds the data transfer shapes exchanged with the
// NewsKoo backend. All fields mirror the JSON the API serves.
package models

import "time"

// Role is the access level attached to a user account.
// Roles are ordered: user < editor < admin.
type Role string

const (
	RoleUser   Role = "user"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

var roleRank = map[Role]int{
	RoleUser:   0,
	RoleEditor: 1,
	RoleAdmin:  2,
}

// AtLeast reports whether r grants everything required grants.
// Unknown roles rank no higher than user.
func (r Role) AtLeast(required Role) bool {
	return roleRank[r] >= roleRank[required]
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse is the body of a successful login or register call.
type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	User         *User  `json:"user"`
}

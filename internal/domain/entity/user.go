package entity

import "time"

// User role constants.
const (
	RoleEmployee = "EMPLOYEE"
	RoleAdmin    = "ADMIN"
)

// User represents a portal account. Only employees own aid requests; the
// administrator role is reached through the shared access code.
type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	PasswordHash   string    `json:"-"`
	ResetRequested bool      `json:"reset_requested"`
	CreatedAt      time.Time `json:"created_at"`
}

// IsAdmin returns true for administrator accounts.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

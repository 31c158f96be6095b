package domain

import "time"

// Roles recognised by the API.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User represents a salon operator able to sign in to the dashboard.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email,omitempty"`
	Name         string    `json:"name,omitempty"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) IsActive() bool {
	return u != nil && u.Status == "active"
}

// Caller is the authenticated principal behind a request.
type Caller struct {
	UserID string
	Role   string
}

// IsStaff reports whether the caller may manage appointments.
func (c Caller) IsStaff() bool {
	return c.UserID != "" && (c.Role == RoleStaff || c.Role == RoleAdmin)
}

package user

import "github.com/google/uuid"

// User represents a marketplace account as the API reports it
type User struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	IsActive    bool      `json:"is_active"`
	IsSuperuser bool      `json:"is_superuser"`
}

// DisplayName is the name shown next to a user's plants. Accounts created
// without a full name fall back to their email.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}

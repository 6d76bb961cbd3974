package model

import "time"

// User is a registered account. Admins receive a copy of every
// document-expiration notification in addition to the document owner.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// HasEmail reports whether the user has an address an email can be sent to.
func (u *User) HasEmail() bool {
	return u.Email != ""
}

package models

import "time"

// User is the stored credential record. HashedPassword never leaves the
// service layer: handlers only ever see PublicIdentity.
type User struct {
	Username       string
	HashedPassword string
	FullName       string
	CreatedAt      time.Time
}

// PublicIdentity is the secret-free projection of a User.
type PublicIdentity struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

// Public strips secret fields.
func (u *User) Public() *PublicIdentity {
	if u == nil {
		return nil
	}
	return &PublicIdentity{
		Username: u.Username,
		FullName: u.FullName,
	}
}

// RegisterRequest is the raw registration input. Password is plaintext and must not be logged.
type RegisterRequest struct {
	Username string
	Password string
	FullName string
}

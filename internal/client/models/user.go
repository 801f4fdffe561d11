package models

import (
	"errors"
	"strings"
)

// User is the public user record returned by registration and profile calls.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Role     string `json:"role"`
}

// FullName joins name and surname, skipping empty parts.
func (u User) FullName() string {
	return strings.TrimSpace(u.Name + " " + u.Surname)
}

// Registration is the body of the register endpoint.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Role     string `json:"role"`
}

var (
	ErrMissingUsername = errors.New("username is required")
	ErrMissingPassword = errors.New("password is required")
	ErrInvalidEmail    = errors.New("invalid email")
)

// Validate checks the fields the form marks as required.
func (r Registration) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return ErrMissingUsername
	}
	if r.Password == "" {
		return ErrMissingPassword
	}
	at := strings.Index(r.Email, "@")
	if at <= 0 || at == len(r.Email)-1 {
		return ErrInvalidEmail
	}
	return nil
}

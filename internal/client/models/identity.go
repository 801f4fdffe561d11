// Package models holds the data shapes exchanged with the gym API.
package models

// Identity is the answer of the token verification endpoint.
type Identity struct {
	Message string `json:"message"`
	Role    string `json:"role"`
	UserID  int64  `json:"user_id"`
}

// TokenResponse is returned by the login endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

package session

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/gymkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Payload is the part of the bearer token readable without the signing key.
type Payload struct {
	Subject   string
	Role      string
	ExpiresAt time.Time // zero when the token has no exp claim
}

type payloadClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// DecodePayload reads the token's claims without verifying the signature.
// It is used for display and local expiry only; the backend stays the
// authority on validity.
func DecodePayload(token string) (Payload, error) {
	claims := &payloadClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Payload{}, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}

	p := Payload{Subject: claims.Subject, Role: claims.Role}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}

package session

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gymkeeper/internal/client/models"
)

type Role string

const (
	RoleMember  Role = "member"
	RoleTrainer Role = "trainer"
	RoleAdmin   Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleMember, RoleTrainer, RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Session is the current authentication state. The zero value is the
// logged-out session.
type Session struct {
	Token    string
	Role     Role
	UserID   int64
	Username string
}

// LoggedIn reports whether the session holds a verified token.
func (s Session) LoggedIn() bool {
	return s.Token != "" && s.Role != ""
}

// Pending reports whether a token is held but not verified yet.
func (s Session) Pending() bool {
	return s.Token != "" && s.Role == ""
}

type Listener func(Session)

// Verifier exchanges a token for the identity of its owner.
type Verifier interface {
	VerifyToken(ctx context.Context, token string) (*models.Identity, error)
}

// TokenStore is the durable token slot.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

type VerifyOutcome string

const (
	OutcomeVerified    VerifyOutcome = "verified"
	OutcomeRejected    VerifyOutcome = "rejected"
	OutcomeUnavailable VerifyOutcome = "unavailable"
	OutcomeMalformed   VerifyOutcome = "malformed"
	// OutcomeStale marks an answer that arrived after the token changed.
	OutcomeStale VerifyOutcome = "stale"
)

type EndReason string

const (
	ReasonLogout             EndReason = "logout"
	ReasonExpired            EndReason = "expired"
	ReasonVerificationFailed EndReason = "verification_failed"
)

// Metrics receives session lifecycle events.
type Metrics interface {
	VerificationFinished(outcome VerifyOutcome)
	SessionEnded(reason EndReason)
	SessionActive(active bool)
}

type nopMetrics struct{}

func (nopMetrics) VerificationFinished(VerifyOutcome) {}
func (nopMetrics) SessionEnded(EndReason)             {}
func (nopMetrics) SessionActive(bool)                 {}

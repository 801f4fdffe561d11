// Package services contains application services for the gymkeeper client.
// This file defines the authentication service: login, registration, logout,
// profile lookup and liveness probe, all on top of the session manager.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gymkeeper/internal/client/client"
	"github.com/dmitrijs2005/gymkeeper/internal/client/models"
	"github.com/dmitrijs2005/gymkeeper/internal/client/session"
	"github.com/dmitrijs2005/gymkeeper/internal/common"
)

// ErrLoginRejected is returned when the backend issued a token but the
// token did not survive verification.
var ErrLoginRejected = errors.New("login rejected: token could not be verified")

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: exchange credentials for a token and hand it to the session.
//   - Register: create an account, then log in with the same credentials.
//   - Logout: drop the session and the persisted token.
//   - Profile: fetch the profile of the logged-in user.
//   - Ping: check server liveness.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Login(ctx context.Context, username string, password []byte) (session.Session, error)
	Register(ctx context.Context, reg models.Registration) (session.Session, error)
	Logout(ctx context.Context)
	Profile(ctx context.Context) (*models.User, error)
	Ping(ctx context.Context) error
}

// Sessions is the part of session.Manager the service drives.
type Sessions interface {
	Get() session.Session
	SetToken(ctx context.Context, token string)
	Logout(ctx context.Context)
}

type authService struct {
	client   client.Client
	sessions Sessions
}

// NewAuthService constructs an AuthService bound to the given API client and
// session manager.
func NewAuthService(client client.Client, sessions Sessions) AuthService {
	return &authService{client: client, sessions: sessions}
}

// Login posts the credentials and installs the returned token. The password
// slice is wiped before returning.
func (a *authService) Login(ctx context.Context, username string, password []byte) (session.Session, error) {
	defer common.WipeByteArray(password)

	username = strings.TrimSpace(username)
	if username == "" {
		return session.Session{}, models.ErrMissingUsername
	}
	if len(password) == 0 {
		return session.Session{}, models.ErrMissingPassword
	}

	token, err := a.client.Login(ctx, username, password)
	if err != nil {
		return session.Session{}, fmt.Errorf("login error: %w", err)
	}

	a.sessions.SetToken(ctx, token)

	s := a.sessions.Get()
	if !s.LoggedIn() || s.Token != token {
		return session.Session{}, ErrLoginRejected
	}
	return s, nil
}

// Register creates the account and logs straight into it. An empty role
// defaults to member.
func (a *authService) Register(ctx context.Context, reg models.Registration) (session.Session, error) {
	if reg.Role == "" {
		reg.Role = string(session.RoleMember)
	}
	if _, err := session.ParseRole(reg.Role); err != nil {
		return session.Session{}, err
	}
	if err := reg.Validate(); err != nil {
		return session.Session{}, err
	}

	if _, err := a.client.Register(ctx, reg); err != nil {
		return session.Session{}, fmt.Errorf("register error: %w", err)
	}

	return a.Login(ctx, reg.Username, []byte(reg.Password))
}

func (a *authService) Logout(ctx context.Context) {
	a.sessions.Logout(ctx)
}

// Profile returns client.ErrUnauthorized without a network call when no
// verified session is held.
func (a *authService) Profile(ctx context.Context) (*models.User, error) {
	s := a.sessions.Get()
	if !s.LoggedIn() {
		return nil, fmt.Errorf("%w: %w", client.ErrUnauthorized, common.ErrNotLoggedIn)
	}

	u, err := a.client.Profile(ctx, s.Token)
	if err != nil {
		return nil, fmt.Errorf("profile error: %w", err)
	}
	return u, nil
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

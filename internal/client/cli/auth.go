package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gymkeeper/internal/client/client"
	"github.com/dmitrijs2005/gymkeeper/internal/client/models"
	"github.com/dmitrijs2005/gymkeeper/internal/client/services"
	"github.com/dmitrijs2005/gymkeeper/internal/client/session"
	"github.com/dmitrijs2005/gymkeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for the registration form and creates the account. On
// success the new user is logged in right away.
func (a *App) Register(ctx context.Context) error {
	var reg models.Registration

	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Enter username", &reg.Username},
		{"Enter email", &reg.Email},
		{"Enter first name", &reg.Name},
		{"Enter surname", &reg.Surname},
		{"Enter role (member, trainer, admin) [member]", &reg.Role},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	reg.Password = string(password)
	common.WipeByteArray(password)

	s, err := a.authService.Register(ctx, reg)
	if err != nil {
		return err
	}

	a.println(fmt.Sprintf("Account created. Logged in as %s (%s).", displayName(s), s.Role))
	return nil
}

// Login prompts the user for credentials and installs the new session. The
// password is wiped by the auth service.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}

	s, err := a.authService.Login(ctx, username, password)
	if err != nil {
		return err
	}

	a.println(fmt.Sprintf("Logged in as %s (%s).", displayName(s), s.Role))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.loggingOut.Store(true)
	defer a.loggingOut.Store(false)

	a.authService.Logout(ctx)
	a.println("Logged out.")
	return nil
}

// WhoAmI prints the session as the client currently holds it, without a
// network call.
func (a *App) WhoAmI(ctx context.Context) error {
	s := a.sessions.Get()
	switch {
	case s.Pending():
		a.println("Token is being verified...")
		return nil
	case !s.LoggedIn():
		a.println("Not logged in.")
		return nil
	}

	a.println("User:   ", displayName(s))
	a.println("Role:   ", s.Role)
	a.println("User ID:", s.UserID)
	if d, ok := a.sessions.Remaining(); ok {
		a.println("Expires:", "in "+formatRemaining(d))
	} else {
		a.println("Expires:", "unknown")
	}
	return nil
}

func (a *App) Profile(ctx context.Context) error {
	u, err := a.authService.Profile(ctx)
	if err != nil {
		return err
	}

	a.println("Username:", u.Username)
	a.println("Name:    ", u.FullName())
	a.println("Email:   ", u.Email)
	a.println("Role:    ", u.Role)
	return nil
}

// Status probes the server and reports connectivity and session state.
func (a *App) Status(ctx context.Context) error {
	if err := a.authService.Ping(ctx); err != nil {
		a.setMode(ctx, ModeOffline)
		a.println("Server:  unreachable")
	} else {
		a.setMode(ctx, ModeOnline)
		a.println("Server:  reachable")
	}

	s := a.sessions.Get()
	switch {
	case s.LoggedIn():
		a.println("Session: logged in as", displayName(s))
	case s.Pending():
		a.println("Session: verifying")
	default:
		a.println("Session: logged out")
	}
	return nil
}

func displayName(s session.Session) string {
	if s.Username != "" {
		return s.Username
	}
	return fmt.Sprintf("user#%d", s.UserID)
}

// describe turns service errors into messages for the terminal.
func describe(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, services.ErrLoginRejected):
		return "the server issued a token that could not be verified"
	case errors.Is(err, common.ErrNotLoggedIn):
		return "not logged in"
	case errors.As(err, &apiErr) && apiErr.Detail != "":
		return apiErr.Detail
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable, try again later"
	}
	return err.Error()
}

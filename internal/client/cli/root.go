package cli

import (
	"context"
	"strings"
	"time"
)

// getStatus renders the prompt status: "(bob trainer 29m59s online)".
func (a *App) getStatus() string {
	s := a.sessions.Get()

	var parts []string
	switch {
	case s.LoggedIn():
		parts = append(parts, displayName(s), string(s.Role))
		if d, ok := a.sessions.Remaining(); ok {
			parts = append(parts, formatRemaining(d))
		}
	case s.Pending():
		parts = append(parts, "verifying")
	}

	if m := a.Mode(); m != "" {
		parts = append(parts, string(m))
	}

	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func formatRemaining(d time.Duration) string {
	if d < time.Second {
		return "0s"
	}
	return d.Truncate(time.Second).String()
}

// Root runs the interactive loop until the user exits or input ends.
func (a *App) Root(ctx context.Context) {
	a.println("Welcome to gymkeeper (type 'help' for commands)")

	unsubscribe := a.watchSession()
	defer unsubscribe()

	if !a.isLoggedIn() {
		a.println("You are not logged in. Use 'login' or 'register'.")
	}

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}

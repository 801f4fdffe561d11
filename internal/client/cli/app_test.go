package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gymkeeper/internal/client/session"
	"github.com/dmitrijs2005/gymkeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(input string) (*App, *fakeAuth, *fakeSessions, *bytes.Buffer) {
	fs := &fakeSessions{}
	fa := &fakeAuth{sessions: fs}
	var out bytes.Buffer
	return NewApp(fa, fs, logging.Nop(), strings.NewReader(input), &out), fa, fs, &out
}

var bob = session.Session{Token: "t", Role: session.RoleTrainer, UserID: 7, Username: "bob"}

// ---- getStatus ----

func TestGetStatus(t *testing.T) {
	tests := []struct {
		name      string
		s         session.Session
		remaining time.Duration
		known     bool
		mode      Mode
		want      string
	}{
		{name: "empty", want: ""},
		{name: "offline only", mode: ModeOffline, want: "(offline)"},
		{name: "verifying", s: session.Session{Token: "t"}, want: "(verifying)"},
		{name: "logged in with countdown", s: bob, remaining: 29*time.Minute + 59*time.Second + 300*time.Millisecond, known: true, mode: ModeOnline, want: "(bob trainer 29m59s online)"},
		{name: "unknown expiry", s: bob, want: "(bob trainer)"},
		{name: "no username", s: session.Session{Token: "t", Role: session.RoleAdmin, UserID: 3}, want: "(user#3 admin)"},
		{name: "under a second", s: bob, remaining: 200 * time.Millisecond, known: true, want: "(bob trainer 0s)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _, fs, _ := newTestApp("")
			fs.s, fs.remaining, fs.known = tt.s, tt.remaining, tt.known
			a.mode = tt.mode

			assert.Equal(t, tt.want, a.getStatus())
		})
	}
}

// ---- mode ----

func TestSetMode(t *testing.T) {
	a, _, _, _ := newTestApp("")

	a.setMode(context.Background(), ModeOnline)
	assert.Equal(t, ModeOnline, a.Mode())

	a.setMode(context.Background(), ModeOnline)
	assert.Equal(t, ModeOnline, a.Mode())

	a.setMode(context.Background(), ModeOffline)
	assert.Equal(t, ModeOffline, a.Mode())
}

func TestStartOnlineStatusWatcher_FollowsPing(t *testing.T) {
	a, fa, _, _ := newTestApp("")
	fa.setPingErr(errors.New("down"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		a.StartOnlineStatusWatcher(ctx, 5*time.Millisecond)
	}()

	require.Eventually(t, func() bool { return a.Mode() == ModeOffline }, time.Second, 2*time.Millisecond)

	fa.setPingErr(nil)
	require.Eventually(t, func() bool { return a.Mode() == ModeOnline }, time.Second, 2*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

// ---- session notices ----

func TestWatchSession_NoticeOnlyForUnrequestedTeardown(t *testing.T) {
	a, _, fs, out := newTestApp("")
	unsubscribe := a.watchSession()
	defer unsubscribe()

	// pending token rejected during login: no notice
	fs.set(session.Session{Token: "t"})
	fs.set(session.Session{})
	assert.NotContains(t, out.String(), "session has ended")

	// verified session expires: notice
	fs.set(bob)
	fs.set(session.Session{})
	assert.Contains(t, out.String(), "Your session has ended")

	// user logout: no notice
	out.Reset()
	fs.set(bob)
	require.NoError(t, a.Logout(context.Background()))
	assert.NotContains(t, out.String(), "session has ended")
	assert.Contains(t, out.String(), "Logged out.")
}

func TestRoot_ExitsOnEOF(t *testing.T) {
	a, _, _, out := newTestApp("help\n")

	a.Root(context.Background())

	assert.Contains(t, out.String(), "Welcome to gymkeeper")
	assert.Contains(t, out.String(), "You are not logged in")
	assert.Contains(t, out.String(), "Available commands: register, login, status, exit")
}

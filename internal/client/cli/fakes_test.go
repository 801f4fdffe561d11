package cli

import (
	"bufio"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gymkeeper/internal/client/models"
	"github.com/dmitrijs2005/gymkeeper/internal/client/session"
)

// ---- sessions ----

type fakeSessions struct {
	mu        sync.Mutex
	s         session.Session
	remaining time.Duration
	known     bool
	listeners []session.Listener
}

func (f *fakeSessions) Get() session.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.s
}

func (f *fakeSessions) Remaining() (time.Duration, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.remaining, f.known
}

func (f *fakeSessions) OnChange(l session.Listener) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, l)
	idx := len(f.listeners) - 1
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.listeners[idx] = nil
	}
}

// set changes the session and notifies listeners like the manager does.
func (f *fakeSessions) set(s session.Session) {
	f.mu.Lock()
	f.s = s
	ls := append([]session.Listener(nil), f.listeners...)
	f.mu.Unlock()
	for _, l := range ls {
		if l != nil {
			l(s)
		}
	}
}

// ---- auth service ----

type fakeAuth struct {
	sessions *fakeSessions

	loginUser string
	loginPass string
	loginRet  session.Session
	loginErr  error

	reg       models.Registration
	regRet    session.Session
	regErr    error
	regCalled bool

	logoutCalled bool

	profileRet *models.User
	profileErr error

	pingErr   error
	pingCalls int
	pingMu    sync.Mutex
}

func (f *fakeAuth) Login(_ context.Context, user string, pass []byte) (session.Session, error) {
	f.loginUser, f.loginPass = user, string(pass)
	if f.loginErr == nil && f.sessions != nil {
		f.sessions.set(f.loginRet)
	}
	return f.loginRet, f.loginErr
}

func (f *fakeAuth) Register(_ context.Context, reg models.Registration) (session.Session, error) {
	f.regCalled = true
	f.reg = reg
	return f.regRet, f.regErr
}

func (f *fakeAuth) Logout(context.Context) {
	f.logoutCalled = true
	if f.sessions != nil {
		f.sessions.set(session.Session{})
	}
}

func (f *fakeAuth) Profile(context.Context) (*models.User, error) {
	return f.profileRet, f.profileErr
}

func (f *fakeAuth) Ping(context.Context) error {
	f.pingMu.Lock()
	defer f.pingMu.Unlock()
	f.pingCalls++
	return f.pingErr
}

func (f *fakeAuth) setPingErr(err error) {
	f.pingMu.Lock()
	defer f.pingMu.Unlock()
	f.pingErr = err
}

// ---- input stubs ----

func stubInputs(t *testing.T, answers []string, password string) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})

	i := 0
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if i >= len(answers) {
			return "", io.EOF
		}
		v := answers[i]
		i++
		return v, nil
	}
	getPassword = func(_ *bufio.Reader, _ io.Writer) ([]byte, error) { return []byte(password), nil }
}

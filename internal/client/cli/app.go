package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/gymkeeper/internal/client/services"
	"github.com/dmitrijs2005/gymkeeper/internal/client/session"
	"github.com/dmitrijs2005/gymkeeper/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// Sessions is the read side of session.Manager the CLI displays.
type Sessions interface {
	Get() session.Session
	Remaining() (time.Duration, bool)
	OnChange(l session.Listener) (unsubscribe func())
}

type App struct {
	authService services.AuthService
	sessions    Sessions
	log         logging.Logger
	reader      *bufio.Reader
	out         io.Writer

	mu   sync.Mutex
	mode Mode

	// loggingOut is set while the user's own logout runs, so the teardown
	// notice is not shown for it.
	loggingOut atomic.Bool
}

func NewApp(auth services.AuthService, sessions Sessions, log logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		authService: auth,
		sessions:    sessions,
		log:         log,
		reader:      bufio.NewReader(in),
		out:         &syncWriter{w: out},
	}
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(ctx, "connectivity changed", "mode", mode)
	}
}

func (a *App) isLoggedIn() bool {
	return a.sessions.Get().LoggedIn()
}

// StartOnlineStatusWatcher pings the backend every interval and flips the
// mode between online and offline. It returns when ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	check := func() {
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := a.authService.Ping(pctx)
		cancel()

		if err != nil {
			a.setMode(ctx, ModeOffline)
		} else {
			a.setMode(ctx, ModeOnline)
		}
	}

	check()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			check()
		case <-ctx.Done():
			return
		}
	}
}

// watchSession prints a notice whenever a verified session ends without the
// user asking for it.
func (a *App) watchSession() (unsubscribe func()) {
	var prev session.Session
	return a.sessions.OnChange(func(s session.Session) {
		wasIn := prev.LoggedIn()
		prev = s
		if wasIn && s == (session.Session{}) && !a.loggingOut.Load() {
			a.println()
			a.println("Your session has ended (token expired or rejected by the server). Please log in again.")
		}
	})
}

func (a *App) println(args ...any) {
	_, _ = fmt.Fprintln(a.out, args...)
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

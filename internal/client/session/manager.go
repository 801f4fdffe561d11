package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gymkeeper/internal/client/client"
	"github.com/dmitrijs2005/gymkeeper/internal/client/models"
	"github.com/dmitrijs2005/gymkeeper/internal/common"
	"github.com/dmitrijs2005/gymkeeper/internal/logging"
)

type listenerEntry struct {
	id uint64
	fn Listener
}

type Manager struct {
	verifier Verifier
	store    TokenStore
	log      logging.Logger
	metrics  Metrics
	now      func() time.Time
	interval time.Duration

	root       context.Context
	rootCancel context.CancelFunc

	mu     sync.Mutex
	state  Session
	expiry time.Time
	gen    uint64
	// cancel ends the current generation: its watcher and verification.
	cancel context.CancelFunc
	closed bool

	// published counts state snapshots handed to listeners (guarded by mu);
	// delivered counts those already delivered (guarded by notifyMu). A
	// snapshot waits for its turn so listeners see changes in mutation order.
	published  uint64
	notifyMu   sync.Mutex
	notifyCond *sync.Cond
	delivered  uint64

	lmu       sync.Mutex
	listeners []listenerEntry
	nextID    uint64

	wg sync.WaitGroup
}

func NewManager(verifier Verifier, store TokenStore, opts ...Option) *Manager {
	m := &Manager{
		verifier: verifier,
		store:    store,
		log:      logging.Nop(),
		metrics:  nopMetrics{},
		now:      time.Now,
		interval: DefaultCheckInterval,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With("component", "session")
	m.notifyCond = sync.NewCond(&m.notifyMu)
	m.root, m.rootCancel = context.WithCancel(context.Background())
	return m
}

// Get returns the current session.
func (m *Manager) Get() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Remaining returns the time left before the held token expires. ok is false
// when logged out or when the token's expiry could not be decoded.
func (m *Manager) Remaining() (d time.Duration, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Token == "" || m.expiry.IsZero() {
		return 0, false
	}
	d = m.expiry.Sub(m.now())
	if d < 0 {
		d = 0
	}
	return d, true
}

// OnChange registers l and returns a function that removes it.
func (m *Manager) OnChange(l Listener) (unsubscribe func()) {
	m.lmu.Lock()
	m.nextID++
	id := m.nextID
	m.listeners = append(m.listeners, listenerEntry{id: id, fn: l})
	m.lmu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.lmu.Lock()
			defer m.lmu.Unlock()
			for i, e := range m.listeners {
				if e.id == id {
					m.listeners = append(m.listeners[:i:i], m.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Restore seeds the session from the persisted token, if any.
func (m *Manager) Restore(ctx context.Context) error {
	token, err := m.store.Load(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		m.log.Debug(ctx, "no persisted token")
		return nil
	}

	m.log.Info(ctx, "restoring persisted session")
	m.SetToken(ctx, token)
	return nil
}

// Logout clears the session and the persisted token.
func (m *Manager) Logout(ctx context.Context) {
	m.SetToken(ctx, "")
}

// SetToken replaces the session token. An empty token logs out synchronously.
// For a non-empty token SetToken returns once the backend verification for
// this call has been applied, or discarded because a newer SetToken won.
func (m *Manager) SetToken(ctx context.Context, token string) {
	token = strings.TrimSpace(token)
	if token == "" {
		m.end(ctx, 0, ReasonLogout)
		return
	}

	payload, perr := DecodePayload(token)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		m.log.Warn(ctx, "token change after close ignored")
		return
	}

	m.endGenerationLocked()
	gen := m.gen
	genCtx, cancel := context.WithCancel(m.root)
	m.cancel = cancel
	m.state = Session{Token: token}
	m.expiry = payload.ExpiresAt

	if perr != nil {
		m.log.Warn(ctx, "token payload not decodable, expiry unknown", "error", perr)
	} else if payload.ExpiresAt.IsZero() {
		m.log.Warn(ctx, "token has no expiry claim")
	}

	m.wg.Add(1)
	defer m.wg.Done()

	if !m.expiry.IsZero() && !m.now().Before(m.expiry) {
		m.mu.Unlock()
		m.log.Info(ctx, "token already expired", "error", common.ErrTokenExpired, "expired_at", payload.ExpiresAt)
		m.end(ctx, gen, ReasonExpired)
		// The backend is still asked; its answer belongs to an ended
		// generation and is discarded.
		m.verify(ctx, m.root, gen, token, payload)
		return
	}

	if !m.expiry.IsZero() {
		m.wg.Add(1)
		go m.watchExpiry(genCtx, gen, m.expiry)
	}

	m.unlockAndPublish(m.state)
	m.verify(ctx, genCtx, gen, token, payload)
}

// Close stops the expiry watcher and any in-flight verification and waits
// for them to finish. The session keeps its last state; later SetToken calls
// with a non-empty token are ignored.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	m.endGenerationLocked()
	m.mu.Unlock()

	m.rootCancel()
	m.wg.Wait()
}

func (m *Manager) verify(ctx, genCtx context.Context, gen uint64, token string, payload Payload) {
	vctx, stop := context.WithCancel(ctx)
	defer stop()
	unhook := context.AfterFunc(genCtx, stop)
	defer unhook()

	id, err := m.verifier.VerifyToken(vctx, token)

	var role Role
	if err == nil {
		role, err = identityRole(id)
	}

	m.mu.Lock()
	if m.gen != gen || m.closed {
		m.mu.Unlock()
		m.metrics.VerificationFinished(OutcomeStale)
		m.log.Debug(ctx, "stale verification discarded")
		return
	}

	if err != nil {
		m.mu.Unlock()
		outcome := classify(err)
		m.metrics.VerificationFinished(outcome)
		m.log.Warn(ctx, "token verification failed", "outcome", outcome, "error", err)
		m.end(ctx, gen, ReasonVerificationFailed)
		return
	}

	m.state = Session{Token: token, Role: role, UserID: id.UserID, Username: payload.Subject}
	m.metrics.VerificationFinished(OutcomeVerified)

	if err := m.store.Save(context.WithoutCancel(ctx), token); err != nil {
		m.log.Error(ctx, "persist token", "error", err)
	}

	m.log.Info(ctx, "session verified", "user_id", id.UserID, "role", role)
	m.unlockAndPublish(m.state)
}

func (m *Manager) watchExpiry(ctx context.Context, gen uint64, expiry time.Time) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if m.now().Before(expiry) {
				continue
			}
			m.log.Info(ctx, "session expired", "error", common.ErrTokenExpired, "expired_at", expiry)
			m.end(context.Background(), gen, ReasonExpired)
			return
		}
	}
}

// end tears the session down. gen 0 ends whatever is current; any other
// value only ends that generation.
func (m *Manager) end(ctx context.Context, gen uint64, reason EndReason) {
	m.mu.Lock()
	if gen != 0 && gen != m.gen {
		m.mu.Unlock()
		return
	}

	changed := m.state != (Session{})

	m.endGenerationLocked()
	m.state = Session{}
	m.expiry = time.Time{}

	if err := m.store.Clear(context.WithoutCancel(ctx)); err != nil {
		m.log.Error(ctx, "clear persisted token", "error", err)
	}

	if !changed {
		m.mu.Unlock()
		return
	}

	m.metrics.SessionEnded(reason)
	m.log.Info(ctx, "session ended", "reason", reason)
	m.unlockAndPublish(m.state)
}

// endGenerationLocked cancels the current generation and starts a new one.
func (m *Manager) endGenerationLocked() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.gen++
}

// unlockAndPublish releases mu and delivers s to the listeners. It must be
// called with mu held.
func (m *Manager) unlockAndPublish(s Session) {
	m.metrics.SessionActive(s.LoggedIn())
	m.published++
	ticket := m.published
	m.mu.Unlock()

	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()
	for m.delivered+1 != ticket {
		m.notifyCond.Wait()
	}
	defer func() {
		m.delivered = ticket
		m.notifyCond.Broadcast()
	}()

	m.lmu.Lock()
	ls := make([]Listener, 0, len(m.listeners))
	for _, e := range m.listeners {
		ls = append(ls, e.fn)
	}
	m.lmu.Unlock()

	for _, l := range ls {
		m.notify(l, s)
	}
}

// notify runs one listener. A panicking listener is logged and skipped so
// the others still see s.
func (m *Manager) notify(l Listener, s Session) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error(context.Background(), "session listener panicked", "panic", r)
		}
	}()
	l(s)
}

var errMalformedIdentity = errors.New("malformed identity")

func identityRole(id *models.Identity) (Role, error) {
	if id == nil {
		return "", errMalformedIdentity
	}
	role, err := ParseRole(id.Role)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errMalformedIdentity, err)
	}
	if id.UserID <= 0 {
		return "", fmt.Errorf("%w: user id %d", errMalformedIdentity, id.UserID)
	}
	return role, nil
}

func classify(err error) VerifyOutcome {
	switch {
	case errors.Is(err, client.ErrUnavailable), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeUnavailable
	case errors.Is(err, client.ErrMalformedResponse), errors.Is(err, errMalformedIdentity):
		return OutcomeMalformed
	default:
		return OutcomeRejected
	}
}

package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gymkeeper/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// ---- fake verifier ----

type verifyFunc func(ctx context.Context) (*models.Identity, error)

type fakeVerifier struct {
	mu      sync.Mutex
	answers map[string]verifyFunc
	calls   []string
	called  chan string
}

func newFakeVerifier() *fakeVerifier {
	return &fakeVerifier{answers: map[string]verifyFunc{}, called: make(chan string, 16)}
}

func (f *fakeVerifier) on(token string, fn verifyFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers[token] = fn
}

func (f *fakeVerifier) ok(token string, role string, userID int64) {
	f.on(token, func(context.Context) (*models.Identity, error) {
		return &models.Identity{Role: role, UserID: userID}, nil
	})
}

func (f *fakeVerifier) fail(token string, err error) {
	f.on(token, func(context.Context) (*models.Identity, error) { return nil, err })
}

func (f *fakeVerifier) VerifyToken(ctx context.Context, token string) (*models.Identity, error) {
	f.mu.Lock()
	f.calls = append(f.calls, token)
	fn, ok := f.answers[token]
	f.mu.Unlock()

	select {
	case f.called <- token:
	default:
	}

	if !ok {
		return nil, &unknownTokenError{token: token}
	}
	return fn(ctx)
}

func (f *fakeVerifier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type unknownTokenError struct{ token string }

func (e *unknownTokenError) Error() string { return "unknown token " + e.token }

// ---- in-memory token store ----

type memStore struct {
	mu      sync.Mutex
	token   string
	saves   int
	clears  int
	loadErr error
}

func (s *memStore) Load(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.loadErr
}

func (s *memStore) Save(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.saves++
	return nil
}

func (s *memStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.clears++
	return nil
}

func (s *memStore) get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// ---- clock ----

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// ---- metrics ----

type fakeMetrics struct {
	mu       sync.Mutex
	outcomes []VerifyOutcome
	reasons  []EndReason
	active   bool
}

func (f *fakeMetrics) VerificationFinished(o VerifyOutcome) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes = append(f.outcomes, o)
}

func (f *fakeMetrics) SessionEnded(r EndReason) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reasons = append(f.reasons, r)
}

func (f *fakeMetrics) SessionActive(a bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = a
}

func (f *fakeMetrics) snapshot() ([]VerifyOutcome, []EndReason, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]VerifyOutcome(nil), f.outcomes...), append([]EndReason(nil), f.reasons...), f.active
}

// ---- tokens ----

// mintToken signs a token the way the backend does: sub + role + exp.
// A zero exp leaves the claim out.
func mintToken(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	claims := payloadClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: sub},
		Role:             "member",
	}
	if !exp.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(exp)
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return tok
}

type harness struct {
	m        *Manager
	verifier *fakeVerifier
	store    *memStore
	clock    *fakeClock
	metrics  *fakeMetrics
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		verifier: newFakeVerifier(),
		store:    &memStore{},
		clock:    newFakeClock(),
		metrics:  &fakeMetrics{},
	}
	h.m = NewManager(h.verifier, h.store,
		WithClock(h.clock.Now),
		WithCheckInterval(5*time.Millisecond),
		WithMetrics(h.metrics),
	)
	t.Cleanup(h.m.Close)
	return h
}

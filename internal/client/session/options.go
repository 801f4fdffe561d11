package session

import (
	"time"

	"github.com/dmitrijs2005/gymkeeper/internal/logging"
)

const DefaultCheckInterval = time.Second

type Option func(*Manager)

func WithLogger(l logging.Logger) Option {
	return func(m *Manager) {
		m.log = l
	}
}

func WithMetrics(mt Metrics) Option {
	return func(m *Manager) {
		m.metrics = mt
	}
}

// WithCheckInterval sets how often the expiry of the held token is
// re-evaluated. Non-positive values keep the default.
func WithCheckInterval(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithClock replaces time.Now for expiry decisions.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

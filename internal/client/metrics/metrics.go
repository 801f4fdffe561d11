// Package metrics exposes session lifecycle counters in Prometheus format.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gymkeeper/internal/client/session"
	"github.com/dmitrijs2005/gymkeeper/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gymkeeper"

// Session implements session.Metrics on its own registry.
type Session struct {
	registry      *prometheus.Registry
	verifications *prometheus.CounterVec
	teardowns     *prometheus.CounterVec
	active        prometheus.Gauge
}

func NewSession() *Session {
	m := &Session{
		registry: prometheus.NewRegistry(),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "verifications_total",
			Help:      "Token verifications by outcome.",
		}, []string{"outcome"}),
		teardowns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "teardowns_total",
			Help:      "Sessions ended, by reason.",
		}, []string{"reason"}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "active",
			Help:      "1 while a verified session is held.",
		}),
	}
	m.registry.MustRegister(m.verifications, m.teardowns, m.active)
	return m
}

func (m *Session) VerificationFinished(outcome session.VerifyOutcome) {
	m.verifications.WithLabelValues(string(outcome)).Inc()
}

func (m *Session) SessionEnded(reason session.EndReason) {
	m.teardowns.WithLabelValues(string(reason)).Inc()
}

func (m *Session) SessionActive(active bool) {
	if active {
		m.active.Set(1)
		return
	}
	m.active.Set(0)
}

func (m *Session) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Session) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is canceled.
func (m *Session) Serve(ctx context.Context, addr string, log logging.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "metrics server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

var _ session.Metrics = (*Session)(nil)

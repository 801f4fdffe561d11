package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gymkeeper/internal/client/client"
	"github.com/dmitrijs2005/gymkeeper/internal/client/config"
	"github.com/dmitrijs2005/gymkeeper/internal/client/metrics"
	"github.com/dmitrijs2005/gymkeeper/internal/client/services"
	"github.com/dmitrijs2005/gymkeeper/internal/client/session"
	"github.com/dmitrijs2005/gymkeeper/internal/client/tokenstore"
	"github.com/dmitrijs2005/gymkeeper/internal/filex"
	"github.com/dmitrijs2005/gymkeeper/internal/logging"
)

// deps is everything a command needs, built from one Config.
type deps struct {
	cfg      *config.Config
	log      logging.Logger
	db       *sql.DB
	sessions *session.Manager
	auth     services.AuthService
	metrics  *metrics.Session
}

func bootstrap(ctx context.Context, cfg *config.Config, log logging.Logger) (*deps, error) {
	path, err := filex.EnsureParentDir(cfg.StoragePath)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	api, err := client.NewHTTPClient(cfg.APIBaseURL,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithLogger(log.With("component", "api")),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	m := metrics.NewSession()
	sessions := session.NewManager(api, tokenstore.NewSQLiteStore(db),
		session.WithLogger(log),
		session.WithMetrics(m),
		session.WithCheckInterval(cfg.ExpiryCheckInterval),
	)

	return &deps{
		cfg:      cfg,
		log:      log,
		db:       db,
		sessions: sessions,
		auth:     services.NewAuthService(api, sessions),
		metrics:  m,
	}, nil
}

// restore brings back the session persisted by an earlier run. A storage
// failure is logged and the client starts logged out.
func (d *deps) restore(ctx context.Context) {
	if err := d.sessions.Restore(ctx); err != nil {
		d.log.Warn(ctx, "could not restore session", "error", err)
	}
}

func (d *deps) Close() {
	d.sessions.Close()
	if err := d.db.Close(); err != nil {
		d.log.Error(context.Background(), "close database", "error", err)
	}
}

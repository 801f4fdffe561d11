package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gymkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/gymkeeper/internal/client/config"
	"github.com/dmitrijs2005/gymkeeper/internal/logging"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewRootCommand builds the gymkeeper command tree. Without a subcommand the
// interactive REPL starts.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "gymkeeper",
		Short: "Terminal client for the gym membership service",
		Long: `gymkeeper keeps you logged in to the gym membership service.

The session token is stored locally and verified against the server on
every start; it is dropped as soon as it expires or the server rejects it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd)
		},
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		&cobra.Command{
			Use:   "repl",
			Short: "Start the interactive shell (default)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runInteractive(cmd)
			},
		},
		&cobra.Command{
			Use:   "login",
			Short: "Log in and keep the session for later runs",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, false, func(ctx context.Context, a *App) error { return a.Login(ctx) })
			},
		},
		&cobra.Command{
			Use:   "register",
			Short: "Create an account and log in",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, false, func(ctx context.Context, a *App) error { return a.Register(ctx) })
			},
		},
		&cobra.Command{
			Use:   "logout",
			Short: "Forget the stored session",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, false, func(ctx context.Context, a *App) error { return a.Logout(ctx) })
			},
		},
		&cobra.Command{
			Use:   "whoami",
			Short: "Verify the stored session and print it",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, true, func(ctx context.Context, a *App) error { return a.WhoAmI(ctx) })
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				buildinfo.PrintBuildData(cmd.OutOrStdout())
			},
		},
	)

	return root
}

func withDeps(cmd *cobra.Command, restore bool, fn func(ctx context.Context, d *deps) error) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	log := logging.Setup(cfg.LogLevel)

	d, err := bootstrap(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer d.Close()

	if restore {
		d.restore(ctx)
	}
	return fn(ctx, d)
}

func withApp(cmd *cobra.Command, restore bool, fn func(ctx context.Context, a *App) error) error {
	return withDeps(cmd, restore, func(ctx context.Context, d *deps) error {
		a := NewApp(d.auth, d.sessions, d.log, cmd.InOrStdin(), cmd.OutOrStdout())
		return fn(ctx, a)
	})
}

// runInteractive runs the REPL next to the connectivity watcher and, when
// configured, the metrics endpoint. Leaving the REPL stops the others.
func runInteractive(cmd *cobra.Command) error {
	return withDeps(cmd, true, func(ctx context.Context, d *deps) error {
		a := NewApp(d.auth, d.sessions, d.log, cmd.InOrStdin(), cmd.OutOrStdout())

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			a.StartOnlineStatusWatcher(gctx, d.cfg.OnlineCheckInterval)
			return nil
		})

		if d.cfg.MetricsAddr != "" {
			g.Go(func() error {
				if err := d.metrics.Serve(gctx, d.cfg.MetricsAddr, d.log); err != nil {
					d.log.Error(gctx, "metrics endpoint stopped", "addr", d.cfg.MetricsAddr, "error", err)
					return fmt.Errorf("metrics endpoint: %w", err)
				}
				return nil
			})
		}

		g.Go(func() error {
			defer cancel()
			a.Root(gctx)
			return nil
		})

		return g.Wait()
	})
}

// Describe renders an error returned by a command for the terminal.
func Describe(err error) string {
	return describe(err)
}

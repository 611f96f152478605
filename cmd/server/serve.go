package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sakif/course-registration/internal/auth"
	"github.com/sakif/course-registration/internal/catalog"
	"github.com/sakif/course-registration/internal/repository/sqldb"
	"github.com/sakif/course-registration/internal/server"
	"github.com/sakif/course-registration/internal/service"
	"github.com/sakif/course-registration/internal/tracing"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Runs pending migrations, seeds the catalog if it is empty and
catalog.seed_on_start is set, then serves HTTP until SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd, true); err != nil {
				return err
			}
			if err := a.serve(cmd.Context()); err != nil {
				return a.report(err)
			}
			return nil
		},
	}
	cmd.Flags().Int("port", 8080, "HTTP port (overrides server.port)")
	return cmd
}

// serve is the composition root: every dependency is built here and handed
// down.
//
//	DB → Repository → Service → Handler → Router
func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg

	tp, err := tracing.NewProvider(ctx, cfg.Tracing)
	if err != nil {
		return err
	}

	db, err := a.openDB(ctx)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return err
	}
	closeAll := func() {
		_ = db.Close()
		_ = tp.Shutdown(context.Background())
	}

	if err := db.Migrate(ctx); err != nil {
		closeAll()
		return fmt.Errorf("migrating database: %w", err)
	}
	if cfg.Catalog.SeedOnStart {
		if err := a.seedIfEmpty(ctx, db); err != nil {
			closeAll()
			return err
		}
	}

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		closeAll()
		return err
	}
	passwords, err := auth.NewPasswordService(cfg.Auth.BcryptCost)
	if err != nil {
		closeAll()
		return err
	}

	catalogs := catalog.NewCached(db, cfg.Catalog.CacheTTL, a.logger)

	srv := server.New(server.Config{
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		CookieSecure:    cfg.Auth.CookieSecure,
	}, server.Deps{
		Auth:          service.NewAuthService(db, tokens, passwords, a.logger),
		Registrations: service.NewRegistrationService(db, catalogs, a.logger),
		Tokens:        tokens,
		DB:            db,
	}, a.logger)

	// spans are flushed before the database goes away
	srv.OnShutdown(tp.Shutdown)
	srv.OnShutdown(func(context.Context) error { return db.Close() })

	a.logger.Info("starting",
		slog.String("version", version),
		slog.String("driver", cfg.Database.Driver),
		slog.Bool("tracing", tp.Enabled()),
	)

	return srv.Start(ctx)
}

// seedIfEmpty installs the configured catalog when the store has none.
func (a *app) seedIfEmpty(ctx context.Context, db *sqldb.DB) error {
	current, err := db.LoadCatalog(ctx)
	if err != nil {
		return fmt.Errorf("checking catalog: %w", err)
	}
	if !current.Empty() {
		return nil
	}

	cat, err := a.catalogSource("")
	if err != nil {
		return fmt.Errorf("loading seed catalog: %w", err)
	}
	if err := db.ReplaceCatalog(ctx, cat); err != nil {
		return fmt.Errorf("seeding catalog: %w", err)
	}

	a.logger.Info("catalog seeded on start",
		slog.Int("courses", len(cat.Courses)),
		slog.Int("lecturers", len(cat.Lecturers)),
	)
	return nil
}

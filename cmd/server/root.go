package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/course-registration/internal/catalog"
	"github.com/sakif/course-registration/internal/config"
	"github.com/sakif/course-registration/internal/model"
	"github.com/sakif/course-registration/internal/repository/sqldb"
)

var version = "dev"

// app carries what every subcommand shares: the --config flag and the
// values derived from it.
type app struct {
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "server",
		Short:         "Student course registration API",
		Long:          `Serves the course registration API: accounts, the course catalog and per-student course selections.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "",
		"config file (YAML); REGISTRAR_* environment variables override it")
	root.PersistentFlags().String("db-dsn", "", "database DSN (overrides database.dsn)")

	serve := newServeCmd(a)
	root.AddCommand(serve, newMigrateCmd(a), newSeedCmd(a))

	// running the binary with no subcommand serves
	root.Flags().AddFlagSet(serve.Flags())
	root.RunE = serve.RunE

	return root
}

// load reads the configuration and builds the root logger. Commands that
// only touch the database pass full=false so they run without a JWT secret.
func (a *app) load(cmd *cobra.Command, full bool) error {
	cfg, err := config.Load(a.cfgFile, cmd.Flags())
	if err != nil {
		return a.report(err)
	}

	validate := cfg.ValidateStorage
	if full {
		validate = cfg.Validate
	}
	if err := validate(); err != nil {
		return a.report(err)
	}

	logger, err := cfg.Log.NewLogger(os.Stdout)
	if err != nil {
		return a.report(err)
	}

	a.cfg = cfg
	a.logger = logger
	slog.SetDefault(logger)
	return nil
}

// openDB connects to the configured database.
func (a *app) openDB(ctx context.Context) (*sqldb.DB, error) {
	db, err := sqldb.Open(ctx, a.cfg.Database.Driver, a.cfg.Database.DSN, a.logger)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

// catalogSource returns the catalog seeding should install: the file when
// one is named, otherwise the built-in catalog.
func (a *app) catalogSource(file string) (*model.Catalog, error) {
	if file == "" {
		file = a.cfg.Catalog.File
	}
	if file == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(file)
}

// report logs err before returning it; the root command silences cobra's
// own error printing.
func (a *app) report(err error) error {
	logger := a.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error("command failed", slog.String("error", err.Error()))
	return err
}

package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sakif/course-registration/internal/repository/sqldb"
)

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(
		a.migrateSubcommand("up", "Apply all pending migrations", (*sqldb.DB).Migrate),
		a.migrateSubcommand("down", "Roll back the most recent migration", (*sqldb.DB).MigrateDown),
		a.migrateSubcommand("status", "Print the state of every migration", (*sqldb.DB).MigrationStatus),
	)
	return cmd
}

func (a *app) migrateSubcommand(use, short string, run func(*sqldb.DB, context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd, false); err != nil {
				return err
			}
			ctx := cmd.Context()

			db, err := a.openDB(ctx)
			if err != nil {
				return a.report(err)
			}
			defer db.Close()

			if err := run(db, ctx); err != nil {
				return a.report(err)
			}

			version, err := db.SchemaVersion(ctx)
			if err != nil {
				return a.report(err)
			}
			a.logger.Info("migrate "+use+" done", slog.Int64("version", version))
			return nil
		},
	}
}

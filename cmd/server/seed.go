package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

func newSeedCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace the course catalog",
		Long: `Replaces every course, lecturer and eligibility row with the catalog in
--file, or with the built-in catalog when no file is given. Students' saved
registrations are left as they are.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd, false); err != nil {
				return err
			}
			ctx := cmd.Context()

			cat, err := a.catalogSource(file)
			if err != nil {
				return a.report(fmt.Errorf("loading catalog: %w", err))
			}

			db, err := a.openDB(ctx)
			if err != nil {
				return a.report(err)
			}
			defer db.Close()

			if err := db.Migrate(ctx); err != nil {
				return a.report(fmt.Errorf("migrating database: %w", err))
			}
			if err := db.ReplaceCatalog(ctx, cat); err != nil {
				return a.report(err)
			}

			a.logger.Info("catalog seeded",
				slog.Int("courses", len(cat.Courses)),
				slog.Int("lecturers", len(cat.Lecturers)),
			)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML catalog to load (default: built-in catalog)")
	return cmd
}

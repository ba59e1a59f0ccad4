package main

import (
	"context"

	"github.com/dmitrijs2005/filepond/internal/app"
	"github.com/dmitrijs2005/filepond/internal/logging"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the upload table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App, logger logging.Logger) error {
				if err := a.Migrate(ctx); err != nil {
					return err
				}
				logger.Info(ctx, "migrations applied")
				return nil
			})
		},
	}
}

package main

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/filepond/internal/app"
	"github.com/dmitrijs2005/filepond/internal/logging"
	"github.com/spf13/cobra"
)

func clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Purge expired temporary uploads",
		Long: `Purge every temporary upload whose expiry has passed, soft-deleted ones
included: the stored bytes and the record.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App, _ logging.Logger) error {
				n, err := a.Clear(ctx)
				fmt.Fprintf(cmd.OutOrStdout(), "purged %d upload(s)\n", n)
				return err
			})
		},
	}
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/filepond/internal/app"
	"github.com/dmitrijs2005/filepond/internal/logging"
	"github.com/spf13/cobra"
)

func putCmd() *cobra.Command {
	var actorToken string

	cmd := &cobra.Command{
		Use:   "put <file>...",
		Short: "Store files as temporary uploads and print their field tokens",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App, _ logging.Logger) error {
				ctx, err := a.Context(ctx, actorToken)
				if err != nil {
					return err
				}

				for _, name := range args {
					if err := putFile(ctx, cmd, a, name); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&actorToken, "token", "", "JWT naming the owner of the uploads")

	return cmd
}

func putFile(ctx context.Context, cmd *cobra.Command, a *app.App, name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	u, token, err := a.Put(ctx, name, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", u.ID, u.Filename, token)
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/filepond/internal/app"
	"github.com/dmitrijs2005/filepond/internal/config"
	"github.com/dmitrijs2005/filepond/internal/logging"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	rootCmd := newRootCmd()
	rootCmd.SetArgs(config.CommandArgs(os.Args[1:]))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "filepond",
		Short: "Manage temporary uploads referenced by encrypted form field values",
		Long: `filepond resolves the encrypted upload references a form submits into
their stored upload records, and maintains the temporary upload store.

Configuration comes from defaults, then the JSON file named by -c/-config,
then short flags (-d dsn, -s secret, -t disk, -o=bool, -x=bool, ...).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		migrateCmd(),
		clearCmd(),
		putCmd(),
		resolveCmd(),
	)

	return rootCmd
}

// withApp loads the configuration, builds the app and runs fn with it.
func withApp(ctx context.Context, fn func(ctx context.Context, a *app.App, logger logging.Logger) error) error {
	cfg := config.LoadConfig()
	logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel)

	a, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn(ctx, "close failed", "err", err)
		}
	}()

	return fn(ctx, a, logger)
}

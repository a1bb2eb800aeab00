// Package commands implements the pennywise command line.
package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/pennywise/internal/app"
)

// Version is set via ldflags during build.
var Version = "dev"

// Loader builds the application for a single command invocation.
type Loader func(ctx context.Context) (*app.App, error)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand(load Loader) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "pennywise",
		Short:   "Planned payments and ledger maintenance",
		Version: Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("user", "", "user id (defaults to the configured demo user)")
	rootCmd.PersistentFlags().Duration("timeout", 30*time.Second, "abort the command after this long (0 disables)")

	rootCmd.AddCommand(
		newListCommand(load),
		newDueCommand(load),
		newUpcomingCommand(load),
		newImportCommand(load),
		newExportCommand(load),
		newMigrateCommand(load),
	)

	return rootCmd
}

// withApp loads the application, resolves the target user and closes the
// application once fn returns.
func withApp(cmd *cobra.Command, load Loader, fn func(a *app.App, userID uuid.UUID) error) error {
	cancel := applyTimeout(cmd)
	defer cancel()

	a, err := load(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	userID, err := resolveUser(cmd, a)
	if err != nil {
		return err
	}

	return fn(a, userID)
}

func resolveUser(cmd *cobra.Command, a *app.App) (uuid.UUID, error) {
	raw, _ := cmd.Flags().GetString("user")
	if raw == "" {
		return a.Config.DemoUser()
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parsing --user: %w", err)
	}

	return id, nil
}

// applyTimeout bounds the command context by the --timeout flag.
func applyTimeout(cmd *cobra.Command) context.CancelFunc {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout <= 0 {
		return func() {}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	cmd.SetContext(ctx)

	return cancel
}

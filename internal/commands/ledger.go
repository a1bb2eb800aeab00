package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/pennywise/internal/app"
	"github.com/MrJamesThe3rd/pennywise/internal/export"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

func newImportCommand(load Loader) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import transactions from a CSV export or bank statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()

			return withApp(cmd, load, func(a *app.App, userID uuid.UUID) error {
				parsed, err := a.Importer.Import(f)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "detected %s layout (%s), %d rows\n", parsed.Profile, parsed.Charset, len(parsed.Params))

				if force {
					txs, err := a.Transactions.CreateBatch(cmd.Context(), userID, parsed.Params)
					if err != nil {
						return err
					}

					fmt.Fprintf(out, "imported %d transactions\n", len(txs))

					return nil
				}

				result, err := a.Transactions.ImportBatch(cmd.Context(), userID, parsed.Params)
				if err != nil {
					return err
				}

				if len(result.Conflicts) > 0 {
					for _, c := range result.Conflicts {
						fmt.Fprintf(out, "conflict: %s %s %s matches %s\n",
							c.Incoming.Date.Format(time.DateOnly), c.Incoming.Amount.StringFixed(2), c.Incoming.Payee, c.Existing.ID)
					}

					return fmt.Errorf("%d rows already exist, nothing imported (use --force to import anyway)", len(result.Conflicts))
				}

				fmt.Fprintf(out, "imported %d transactions\n", len(result.Imported))

				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "import rows even if they look like duplicates")

	return cmd
}

func newExportCommand(load Loader) *cobra.Command {
	var (
		start, end string
		output     string
		summary    bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export transactions as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, load, func(a *app.App, userID uuid.UUID) error {
				filter := transaction.ListFilter{UserID: userID}

				if start != "" {
					t, err := time.Parse(time.DateOnly, start)
					if err != nil {
						return fmt.Errorf("parsing --from: %w", err)
					}

					filter.StartDate = &t
				}

				if end != "" {
					t, err := time.Parse(time.DateOnly, end)
					if err != nil {
						return fmt.Errorf("parsing --to: %w", err)
					}

					filter.EndDate = &t
				}

				if summary {
					txs, err := a.Transactions.List(cmd.Context(), filter)
					if err != nil {
						return err
					}

					_, err = io.WriteString(cmd.OutOrStdout(), export.FormatSummary(txs))

					return err
				}

				var w io.Writer = cmd.OutOrStdout()

				if output != "" && output != "-" {
					f, err := os.Create(output)
					if err != nil {
						return fmt.Errorf("creating %s: %w", output, err)
					}
					defer f.Close()

					w = f
				}

				s, err := a.Export.Export(cmd.Context(), filter, w)
				if err != nil {
					return err
				}

				if output != "" && output != "-" {
					fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d transactions to %s (net %s)\n", s.Count, output, s.Net().StringFixed(2))
				}

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&start, "from", "", "first date to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "to", "", "last date to include (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file")
	cmd.Flags().BoolVar(&summary, "summary", false, "print a readable summary instead of CSV")

	return cmd
}

func newMigrateCommand(load Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cancel := applyTimeout(cmd)
			defer cancel()

			a, err := load(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			version, err := a.Migrate()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "database at version %d\n", version)

			return nil
		},
	}
}

package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/pennywise/internal/app"
	"github.com/MrJamesThe3rd/pennywise/internal/planned"
)

func newListCommand(load Loader) *cobra.Command {
	var activeOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List planned payments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, load, func(a *app.App, userID uuid.UUID) error {
				svc, err := a.Planned(cmd.Context(), userID)
				if err != nil {
					return err
				}

				payments := svc.List()
				if activeOnly {
					payments = svc.Active()
				}

				return writePayments(cmd.OutOrStdout(), payments)
			})
		},
	}

	cmd.Flags().BoolVar(&activeOnly, "active", false, "only show active payments")

	return cmd
}

func newDueCommand(load Loader) *cobra.Command {
	dueCmd := &cobra.Command{
		Use:   "due",
		Short: "Planned payments whose execution date has arrived",
	}

	dueCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Show due payments without executing them",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(cmd, load, func(a *app.App, userID uuid.UUID) error {
					svc, err := a.Planned(cmd.Context(), userID)
					if err != nil {
						return err
					}

					return writePayments(cmd.OutOrStdout(), svc.Due())
				})
			},
		},
		&cobra.Command{
			Use:   "run",
			Short: "Record a transaction for every due payment",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(cmd, load, func(a *app.App, userID uuid.UUID) error {
					svc, err := a.Planned(cmd.Context(), userID)
					if err != nil {
						return err
					}

					report, err := a.RunDueCheck(cmd.Context(), svc, userID)
					if err != nil {
						return err
					}

					return writeReport(cmd.OutOrStdout(), report)
				})
			},
		},
	)

	return dueCmd
}

func newUpcomingCommand(load Loader) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "List payments scheduled within the next days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if days < 0 {
				return fmt.Errorf("--days must not be negative")
			}

			return withApp(cmd, load, func(a *app.App, userID uuid.UUID) error {
				svc, err := a.Planned(cmd.Context(), userID)
				if err != nil {
					return err
				}

				return writePayments(cmd.OutOrStdout(), svc.Upcoming(days))
			})
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "look-ahead window in days")

	return cmd
}

func writePayments(w io.Writer, payments []*planned.PlannedPayment) error {
	if len(payments) == 0 {
		_, err := fmt.Fprintln(w, "No planned payments.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tAMOUNT\tSCHEDULE\tNEXT\tACTIVE")

	for _, p := range payments {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%t\n",
			p.ID, p.Name, p.Type, p.Amount.StringFixed(2), schedule(p), formatDate(p.NextExecutionDate), p.IsActive)
	}

	return tw.Flush()
}

func writeReport(w io.Writer, report *planned.ExecutionReport) error {
	for _, e := range report.Executed {
		fmt.Fprintf(w, "executed %s: %s %s on %s (transaction %s), next %s\n",
			e.Payment.Name, e.Transaction.Type, e.Transaction.Amount.StringFixed(2),
			e.ExecutedOn.Format(time.DateOnly), e.Transaction.ID, formatDate(e.Payment.NextExecutionDate))
	}

	for _, f := range report.Failed {
		line := fmt.Sprintf("failed %s: %v", f.Name, f.Err)
		if f.TransactionID != nil {
			line += fmt.Sprintf(" (transaction %s was recorded)", f.TransactionID)
		}

		fmt.Fprintln(w, line)
	}

	if len(report.Executed) == 0 && len(report.Failed) == 0 {
		fmt.Fprintln(w, "Nothing due.")
	}

	if len(report.Failed) > 0 {
		return fmt.Errorf("%d of %d due payments failed", len(report.Failed), len(report.Failed)+len(report.Executed))
	}

	return nil
}

func schedule(p *planned.PlannedPayment) string {
	if p.Frequency == planned.FrequencyOneTime {
		return "once " + formatDate(p.ScheduledDate)
	}

	if p.RecurrenceType == planned.RecurrenceMonthly && p.MonthlyInterval > 1 {
		return fmt.Sprintf("every %d months", p.MonthlyInterval)
	}

	return string(p.RecurrenceType)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}

	return t.Format(time.DateOnly)
}

package view

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/planned"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

// paymentDraft holds the form bindings for a new planned payment. It lives
// behind a pointer so the bindings survive model copies.
type paymentDraft struct {
	Name       string
	Type       string
	Amount     string
	Payee      string
	Note       string
	Frequency  string
	Date       string
	Recurrence string
	Interval   string
	Weekdays   string
	EndDate    string
}

func newPaymentDraft(today time.Time) *paymentDraft {
	return &paymentDraft{
		Type:       string(transaction.TypeExpense),
		Frequency:  string(planned.FrequencyRecurrent),
		Recurrence: string(planned.RecurrenceMonthly),
		Date:       FormatDate(today),
		Interval:   "1",
	}
}

func (d *paymentDraft) form() *huh.Form {
	oneTime := func() bool { return d.Frequency != string(planned.FrequencyRecurrent) }

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&d.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name cannot be empty")
					}

					return nil
				}),
			huh.NewSelect[string]().
				Title("Type").
				Options(
					huh.NewOption("Expense", string(transaction.TypeExpense)),
					huh.NewOption("Income", string(transaction.TypeIncome)),
				).
				Value(&d.Type),
			huh.NewInput().
				Title("Amount").
				Placeholder("0.00").
				Value(&d.Amount).
				Validate(func(s string) error {
					_, err := parseAmount(s)
					return err
				}),
			huh.NewInput().Title("Payee").Value(&d.Payee),
			huh.NewInput().Title("Note").Value(&d.Note),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Frequency").
				Options(
					huh.NewOption("Recurrent", string(planned.FrequencyRecurrent)),
					huh.NewOption("One time", string(planned.FrequencyOneTime)),
				).
				Value(&d.Frequency),
			huh.NewInput().
				Title("Date").
				Description("Scheduled date, or first occurrence for recurrent payments").
				Placeholder("YYYY-MM-DD").
				Value(&d.Date).
				Validate(validDate),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Repeats").
				Options(
					huh.NewOption("Monthly", string(planned.RecurrenceMonthly)),
					huh.NewOption("Weekly", string(planned.RecurrenceWeekly)),
					huh.NewOption("Daily", string(planned.RecurrenceDaily)),
					huh.NewOption("Yearly", string(planned.RecurrenceYearly)),
				).
				Value(&d.Recurrence),
			huh.NewInput().
				Title("Every N months").
				Value(&d.Interval).
				Validate(func(s string) error {
					if _, err := strconv.Atoi(strings.TrimSpace(s)); err != nil && s != "" {
						return errors.New("must be a whole number")
					}

					return nil
				}),
			huh.NewInput().
				Title("Weekdays").
				Description("Only for weekly payments, e.g. mon,thu").
				Value(&d.Weekdays).
				Validate(func(s string) error {
					_, err := parseWeekdays(s)
					return err
				}),
			huh.NewInput().
				Title("End date").
				Placeholder("optional, YYYY-MM-DD").
				Value(&d.EndDate).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}

					return validDate(s)
				}),
		).WithHideFunc(oneTime),
	).WithWidth(45).WithShowHelp(false)
}

func (d *paymentDraft) params(userID uuid.UUID) (planned.CreateParams, error) {
	amount, err := parseAmount(d.Amount)
	if err != nil {
		return planned.CreateParams{}, err
	}

	date, err := time.Parse(time.DateOnly, strings.TrimSpace(d.Date))
	if err != nil {
		return planned.CreateParams{}, fmt.Errorf("invalid date: %w", err)
	}

	params := planned.CreateParams{
		UserID:    userID,
		Type:      transaction.Type(d.Type),
		Name:      d.Name,
		Payee:     strings.TrimSpace(d.Payee),
		Note:      strings.TrimSpace(d.Note),
		Amount:    amount,
		Frequency: planned.Frequency(d.Frequency),
	}

	if params.Frequency == planned.FrequencyOneTime {
		params.ScheduledDate = &date
		return params, nil
	}

	params.StartDate = &date
	params.RecurrenceType = planned.RecurrenceType(d.Recurrence)

	switch params.RecurrenceType {
	case planned.RecurrenceMonthly:
		if s := strings.TrimSpace(d.Interval); s != "" {
			params.MonthlyInterval, _ = strconv.Atoi(s)
		}
	case planned.RecurrenceWeekly:
		params.WeeklyDays, err = parseWeekdays(d.Weekdays)
		if err != nil {
			return planned.CreateParams{}, err
		}
	}

	if s := strings.TrimSpace(d.EndDate); s != "" {
		end, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return planned.CreateParams{}, fmt.Errorf("invalid end date: %w", err)
		}

		params.EndDate = &end
	}

	return params, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
	if err != nil {
		return decimal.Zero, errors.New("not a number")
	}

	if !amount.IsPositive() {
		return decimal.Zero, errors.New("must be positive")
	}

	return amount, nil
}

func validDate(s string) error {
	if _, err := time.Parse(time.DateOnly, strings.TrimSpace(s)); err != nil {
		return errors.New("use YYYY-MM-DD")
	}

	return nil
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

func parseWeekdays(s string) ([]time.Weekday, error) {
	var days []time.Weekday

	for part := range strings.SplitSeq(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}

		if len(part) > 3 {
			part = part[:3]
		}

		d, ok := weekdayNames[part]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", part)
		}

		days = append(days, d)
	}

	return days, nil
}

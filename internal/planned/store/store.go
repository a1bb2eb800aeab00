package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/planned"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectPlannedColumns = `
	p.id, p.user_id, p.type, p.name, p.category_id,
	p.payee, p.payment_method, p.note,
	p.account_id, p.destination_account_id, p.amount,
	p.frequency, p.scheduled_date, p.start_date, p.end_date,
	p.recurrence_type, p.weekly_days, p.monthly_interval,
	p.is_active, p.last_executed_at, p.next_execution_date,
	p.created_at, p.updated_at
`

func scanPlanned(s scanner) (*planned.PlannedPayment, error) {
	var p planned.PlannedPayment

	var typ, frequency string

	var payee, method, note, recurrence, weekly sql.NullString

	var interval sql.NullInt32

	if err := s.Scan(
		&p.ID, &p.UserID, &typ, &p.Name, &p.CategoryID,
		&payee, &method, &note,
		&p.AccountID, &p.DestinationAccountID, &p.Amount,
		&frequency, &p.ScheduledDate, &p.StartDate, &p.EndDate,
		&recurrence, &weekly, &interval,
		&p.IsActive, &p.LastExecutedAt, &p.NextExecutionDate,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	days, err := parseWeekdays(weekly.String)
	if err != nil {
		return nil, err
	}

	p.Type = transaction.Type(typ)
	p.Frequency = planned.Frequency(frequency)
	p.RecurrenceType = planned.RecurrenceType(recurrence.String)
	p.Payee = payee.String
	p.PaymentMethod = method.String
	p.Note = note.String
	p.WeeklyDays = days
	p.MonthlyInterval = int(interval.Int32)

	normalizeDates(&p)

	return &p, nil
}

// normalizeDates strips the driver's zone from DATE columns so they compare
// equal to dates built in memory.
func normalizeDates(p *planned.PlannedPayment) {
	for _, d := range []*time.Time{p.ScheduledDate, p.StartDate, p.EndDate, p.LastExecutedAt, p.NextExecutionDate} {
		if d != nil {
			y, m, day := d.Date()
			*d = time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
		}
	}
}

// formatWeekdays encodes days as a comma separated list, "1,4" for Monday and Thursday.
func formatWeekdays(days []time.Weekday) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(int(d))
	}

	return strings.Join(parts, ",")
}

func parseWeekdays(s string) ([]time.Weekday, error) {
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	days := make([]time.Weekday, 0, len(parts))

	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("parsing weekly days %q: %w", s, err)
		}

		days = append(days, time.Weekday(n))
	}

	return days, nil
}

func nullInterval(p *planned.PlannedPayment) sql.NullInt32 {
	if p.RecurrenceType != planned.RecurrenceMonthly {
		return sql.NullInt32{}
	}

	return sql.NullInt32{Int32: int32(p.MonthlyInterval), Valid: true}
}

func (s *Store) Load(ctx context.Context, userID uuid.UUID) ([]*planned.PlannedPayment, error) {
	query := `SELECT ` + selectPlannedColumns + `
		FROM planned_payments p
		WHERE p.user_id = $1
		ORDER BY p.created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("loading planned payments: %w", err)
	}
	defer rows.Close()

	var payments []*planned.PlannedPayment

	for rows.Next() {
		p, err := scanPlanned(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning planned payment: %w", err)
		}

		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating planned payment rows: %w", err)
	}

	return payments, nil
}

func (s *Store) Create(ctx context.Context, p *planned.PlannedPayment) error {
	query := `
		INSERT INTO planned_payments (
			user_id, type, name, category_id, payee, payment_method, note,
			account_id, destination_account_id, amount,
			frequency, scheduled_date, start_date, end_date,
			recurrence_type, weekly_days, monthly_interval,
			is_active, last_executed_at, next_execution_date,
			created_at, updated_at
		)
		VALUES (
			$1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''),
			$8, $9, $10,
			$11, $12, $13, $14,
			NULLIF($15, ''), NULLIF($16, ''), $17,
			$18, $19, $20,
			NOW(), NOW()
		)
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		p.UserID,
		p.Type,
		p.Name,
		p.CategoryID,
		p.Payee,
		p.PaymentMethod,
		p.Note,
		p.AccountID,
		p.DestinationAccountID,
		p.Amount,
		p.Frequency,
		p.ScheduledDate,
		p.StartDate,
		p.EndDate,
		string(p.RecurrenceType),
		formatWeekdays(p.WeeklyDays),
		nullInterval(p),
		p.IsActive,
		p.LastExecutedAt,
		p.NextExecutionDate,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting planned payment: %w", err)
	}

	return nil
}

func (s *Store) Update(ctx context.Context, p *planned.PlannedPayment) error {
	query := `
		UPDATE planned_payments
		SET type = $1, name = $2, category_id = $3,
			payee = NULLIF($4, ''), payment_method = NULLIF($5, ''), note = NULLIF($6, ''),
			account_id = $7, destination_account_id = $8, amount = $9,
			frequency = $10, scheduled_date = $11, start_date = $12, end_date = $13,
			recurrence_type = NULLIF($14, ''), weekly_days = NULLIF($15, ''), monthly_interval = $16,
			is_active = $17, last_executed_at = $18, next_execution_date = $19,
			updated_at = NOW()
		WHERE id = $20
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		p.Type,
		p.Name,
		p.CategoryID,
		p.Payee,
		p.PaymentMethod,
		p.Note,
		p.AccountID,
		p.DestinationAccountID,
		p.Amount,
		p.Frequency,
		p.ScheduledDate,
		p.StartDate,
		p.EndDate,
		string(p.RecurrenceType),
		formatWeekdays(p.WeeklyDays),
		nullInterval(p),
		p.IsActive,
		p.LastExecutedAt,
		p.NextExecutionDate,
		p.ID,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return planned.ErrNotFound
		}

		return fmt.Errorf("updating planned payment: %w", err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM planned_payments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting planned payment: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return planned.ErrNotFound
	}

	return nil
}

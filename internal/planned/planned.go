// Package planned holds planned payments: templates for transactions that
// occur once or recur, and the engine that turns due occurrences into ledger
// transactions.
package planned

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

var (
	ErrNotFound   = errors.New("planned payment not found")
	ErrNotLoaded  = errors.New("planned payments not loaded")
	ErrValidation = errors.New("invalid planned payment")
)

// Frequency tells whether a payment happens once or repeats.
type Frequency string

const (
	FrequencyOneTime   Frequency = "one_time"
	FrequencyRecurrent Frequency = "recurrent"
)

func (f Frequency) Valid() bool {
	return f == FrequencyOneTime || f == FrequencyRecurrent
}

// RecurrenceType is the step between two occurrences of a recurrent payment.
type RecurrenceType string

const (
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
	RecurrenceYearly  RecurrenceType = "yearly"
)

func (r RecurrenceType) Valid() bool {
	switch r {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
		return true
	}

	return false
}

// PlannedPayment describes a transaction that should occur once or recur.
// All dates are calendar dates stored at midnight UTC.
type PlannedPayment struct {
	ID     uuid.UUID
	UserID uuid.UUID

	Type          transaction.Type
	Name          string
	CategoryID    *uuid.UUID
	Payee         string
	PaymentMethod string
	Note          string

	// AccountID is the source for expenses and transfers and the destination for income.
	AccountID            *uuid.UUID
	DestinationAccountID *uuid.UUID // transfers only

	Amount decimal.Decimal

	Frequency     Frequency
	ScheduledDate *time.Time // one_time only

	StartDate       *time.Time // recurrent only
	EndDate         *time.Time
	RecurrenceType  RecurrenceType
	WeeklyDays      []time.Weekday
	MonthlyInterval int

	IsActive          bool
	LastExecutedAt    *time.Time
	NextExecutionDate *time.Time

	CreatedAt time.Time
	UpdatedAt *time.Time
}

// Clone returns a deep copy so callers never share state with the service.
func (p *PlannedPayment) Clone() *PlannedPayment {
	c := *p
	c.CategoryID = cloneID(p.CategoryID)
	c.AccountID = cloneID(p.AccountID)
	c.DestinationAccountID = cloneID(p.DestinationAccountID)
	c.ScheduledDate = cloneTime(p.ScheduledDate)
	c.StartDate = cloneTime(p.StartDate)
	c.EndDate = cloneTime(p.EndDate)
	c.LastExecutedAt = cloneTime(p.LastExecutedAt)
	c.NextExecutionDate = cloneTime(p.NextExecutionDate)
	c.UpdatedAt = cloneTime(p.UpdatedAt)
	c.WeeklyDays = slices.Clone(p.WeeklyDays)

	return &c
}

func (p *PlannedPayment) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}

	if !p.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	if !p.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrValidation, p.Type)
	}

	if !p.Frequency.Valid() {
		return fmt.Errorf("%w: unknown frequency %q", ErrValidation, p.Frequency)
	}

	switch p.Frequency {
	case FrequencyOneTime:
		if p.ScheduledDate == nil {
			return fmt.Errorf("%w: one-time payment requires a scheduled date", ErrValidation)
		}
	case FrequencyRecurrent:
		if !p.RecurrenceType.Valid() {
			return fmt.Errorf("%w: unknown recurrence type %q", ErrValidation, p.RecurrenceType)
		}
	}

	if p.Type == transaction.TypeTransfer {
		if p.AccountID == nil || p.DestinationAccountID == nil {
			return fmt.Errorf("%w: transfer requires source and destination accounts", ErrValidation)
		}

		if *p.AccountID == *p.DestinationAccountID {
			return fmt.Errorf("%w: transfer accounts must differ", ErrValidation)
		}
	}

	for _, d := range p.WeeklyDays {
		if d < time.Sunday || d > time.Saturday {
			return fmt.Errorf("%w: weekday %d out of range", ErrValidation, d)
		}
	}

	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return fmt.Errorf("%w: end date before start date", ErrValidation)
	}

	return nil
}

type CreateParams struct {
	UserID               uuid.UUID
	Type                 transaction.Type
	Name                 string
	CategoryID           *uuid.UUID
	Payee                string
	PaymentMethod        string
	Note                 string
	AccountID            *uuid.UUID
	DestinationAccountID *uuid.UUID
	Amount               decimal.Decimal
	Frequency            Frequency
	ScheduledDate        *time.Time
	StartDate            *time.Time
	EndDate              *time.Time
	RecurrenceType       RecurrenceType
	WeeklyDays           []time.Weekday
	MonthlyInterval      int
}

func (c CreateParams) toPayment() *PlannedPayment {
	return &PlannedPayment{
		UserID:               c.UserID,
		Type:                 c.Type,
		Name:                 strings.TrimSpace(c.Name),
		CategoryID:           c.CategoryID,
		Payee:                c.Payee,
		PaymentMethod:        c.PaymentMethod,
		Note:                 c.Note,
		AccountID:            c.AccountID,
		DestinationAccountID: c.DestinationAccountID,
		Amount:               c.Amount,
		Frequency:            c.Frequency,
		ScheduledDate:        dateOrNil(c.ScheduledDate),
		StartDate:            dateOrNil(c.StartDate),
		EndDate:              dateOrNil(c.EndDate),
		RecurrenceType:       c.RecurrenceType,
		WeeklyDays:           slices.Clone(c.WeeklyDays),
		MonthlyInterval:      c.MonthlyInterval,
		IsActive:             true,
	}
}

// UpdateParams is a partial update; nil fields are left as they are.
type UpdateParams struct {
	Type                 *transaction.Type
	Name                 *string
	CategoryID           *uuid.UUID
	Payee                *string
	PaymentMethod        *string
	Note                 *string
	AccountID            *uuid.UUID
	DestinationAccountID *uuid.UUID
	Amount               *decimal.Decimal
	Frequency            *Frequency
	ScheduledDate        *time.Time
	StartDate            *time.Time
	EndDate              *time.Time
	RecurrenceType       *RecurrenceType
	WeeklyDays           *[]time.Weekday
	MonthlyInterval      *int
	IsActive             *bool

	// Clear flags remove an optional value. They win over the matching field.
	ClearCategory           bool
	ClearAccount            bool
	ClearDestinationAccount bool
	ClearEndDate            bool
}

// TouchesSchedule reports whether the update changes any field the next
// execution date is derived from.
func (u UpdateParams) TouchesSchedule() bool {
	return u.Frequency != nil ||
		u.RecurrenceType != nil ||
		u.WeeklyDays != nil ||
		u.MonthlyInterval != nil ||
		u.StartDate != nil ||
		u.ScheduledDate != nil ||
		u.EndDate != nil ||
		u.ClearEndDate
}

func (u UpdateParams) apply(p *PlannedPayment) {
	if u.Type != nil {
		p.Type = *u.Type
	}

	if u.Name != nil {
		p.Name = strings.TrimSpace(*u.Name)
	}

	if u.CategoryID != nil {
		p.CategoryID = cloneID(u.CategoryID)
	}

	if u.ClearCategory {
		p.CategoryID = nil
	}

	if u.Payee != nil {
		p.Payee = *u.Payee
	}

	if u.PaymentMethod != nil {
		p.PaymentMethod = *u.PaymentMethod
	}

	if u.Note != nil {
		p.Note = *u.Note
	}

	if u.AccountID != nil {
		p.AccountID = cloneID(u.AccountID)
	}

	if u.ClearAccount {
		p.AccountID = nil
	}

	if u.DestinationAccountID != nil {
		p.DestinationAccountID = cloneID(u.DestinationAccountID)
	}

	if u.ClearDestinationAccount {
		p.DestinationAccountID = nil
	}

	if u.Amount != nil {
		p.Amount = *u.Amount
	}

	if u.Frequency != nil {
		p.Frequency = *u.Frequency
	}

	if u.ScheduledDate != nil {
		p.ScheduledDate = dateOrNil(u.ScheduledDate)
	}

	if u.StartDate != nil {
		p.StartDate = dateOrNil(u.StartDate)
	}

	if u.EndDate != nil {
		p.EndDate = dateOrNil(u.EndDate)
	}

	if u.ClearEndDate {
		p.EndDate = nil
	}

	if u.RecurrenceType != nil {
		p.RecurrenceType = *u.RecurrenceType
	}

	if u.WeeklyDays != nil {
		p.WeeklyDays = slices.Clone(*u.WeeklyDays)
	}

	if u.MonthlyInterval != nil {
		p.MonthlyInterval = *u.MonthlyInterval
	}

	if u.IsActive != nil {
		p.IsActive = *u.IsActive
	}
}

func cloneID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}

	c := *id

	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	c := *t

	return &c
}

package planned

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/planned"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

// date is a calendar date carried as "2006-01-02" in JSON.
type date struct {
	time.Time
}

func (d *date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}

	d.Time = t

	return nil
}

func (d *date) ptr() *time.Time {
	if d == nil {
		return nil
	}

	return &d.Time
}

type createRequest struct {
	Type                 transaction.Type       `json:"type"`
	Name                 string                 `json:"name"`
	CategoryID           *uuid.UUID             `json:"category_id,omitempty"`
	Payee                string                 `json:"payee"`
	PaymentMethod        string                 `json:"payment_method"`
	Note                 string                 `json:"note"`
	AccountID            *uuid.UUID             `json:"account_id,omitempty"`
	DestinationAccountID *uuid.UUID             `json:"destination_account_id,omitempty"`
	Amount               decimal.Decimal        `json:"amount"`
	Frequency            planned.Frequency      `json:"frequency"`
	ScheduledDate        *date                  `json:"scheduled_date,omitempty"`
	StartDate            *date                  `json:"start_date,omitempty"`
	EndDate              *date                  `json:"end_date,omitempty"`
	RecurrenceType       planned.RecurrenceType `json:"recurrence_type,omitempty"`
	WeeklyDays           []time.Weekday         `json:"weekly_days,omitempty"`
	MonthlyInterval      int                    `json:"monthly_interval,omitempty"`
}

func (r createRequest) params() planned.CreateParams {
	return planned.CreateParams{
		Type:                 r.Type,
		Name:                 r.Name,
		CategoryID:           r.CategoryID,
		Payee:                r.Payee,
		PaymentMethod:        r.PaymentMethod,
		Note:                 r.Note,
		AccountID:            r.AccountID,
		DestinationAccountID: r.DestinationAccountID,
		Amount:               r.Amount,
		Frequency:            r.Frequency,
		ScheduledDate:        r.ScheduledDate.ptr(),
		StartDate:            r.StartDate.ptr(),
		EndDate:              r.EndDate.ptr(),
		RecurrenceType:       r.RecurrenceType,
		WeeklyDays:           r.WeeklyDays,
		MonthlyInterval:      r.MonthlyInterval,
	}
}

// nullable tells an absent JSON field from an explicit null.
type nullable[T any] struct {
	Set   bool
	Value *T
}

func (n *nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true

	if string(b) == "null" {
		n.Value = nil
		return nil
	}

	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	n.Value = &v

	return nil
}

// cleared reports an explicit null.
func (n nullable[T]) cleared() bool {
	return n.Set && n.Value == nil
}

type updateRequest struct {
	Type                 *transaction.Type       `json:"type,omitempty"`
	Name                 *string                 `json:"name,omitempty"`
	CategoryID           nullable[uuid.UUID]     `json:"category_id"`
	Payee                *string                 `json:"payee,omitempty"`
	PaymentMethod        *string                 `json:"payment_method,omitempty"`
	Note                 *string                 `json:"note,omitempty"`
	AccountID            nullable[uuid.UUID]     `json:"account_id"`
	DestinationAccountID nullable[uuid.UUID]     `json:"destination_account_id"`
	Amount               *decimal.Decimal        `json:"amount,omitempty"`
	Frequency            *planned.Frequency      `json:"frequency,omitempty"`
	ScheduledDate        *date                   `json:"scheduled_date,omitempty"`
	StartDate            *date                   `json:"start_date,omitempty"`
	EndDate              nullable[date]          `json:"end_date"`
	RecurrenceType       *planned.RecurrenceType `json:"recurrence_type,omitempty"`
	WeeklyDays           *[]time.Weekday         `json:"weekly_days,omitempty"`
	MonthlyInterval      *int                    `json:"monthly_interval,omitempty"`
	IsActive             *bool                   `json:"is_active,omitempty"`
}

func (r updateRequest) params() planned.UpdateParams {
	var endDate *time.Time
	if r.EndDate.Value != nil {
		endDate = r.EndDate.Value.ptr()
	}

	return planned.UpdateParams{
		Type:                    r.Type,
		Name:                    r.Name,
		CategoryID:              r.CategoryID.Value,
		Payee:                   r.Payee,
		PaymentMethod:           r.PaymentMethod,
		Note:                    r.Note,
		AccountID:               r.AccountID.Value,
		DestinationAccountID:    r.DestinationAccountID.Value,
		Amount:                  r.Amount,
		Frequency:               r.Frequency,
		ScheduledDate:           r.ScheduledDate.ptr(),
		StartDate:               r.StartDate.ptr(),
		EndDate:                 endDate,
		RecurrenceType:          r.RecurrenceType,
		WeeklyDays:              r.WeeklyDays,
		MonthlyInterval:         r.MonthlyInterval,
		IsActive:                r.IsActive,
		ClearCategory:           r.CategoryID.cleared(),
		ClearAccount:            r.AccountID.cleared(),
		ClearDestinationAccount: r.DestinationAccountID.cleared(),
		ClearEndDate:            r.EndDate.cleared(),
	}
}

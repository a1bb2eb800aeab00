package planned

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/planned"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

type plannedResponse struct {
	ID                   uuid.UUID              `json:"id"`
	Type                 transaction.Type       `json:"type"`
	Name                 string                 `json:"name"`
	CategoryID           *uuid.UUID             `json:"category_id,omitempty"`
	Payee                string                 `json:"payee,omitempty"`
	PaymentMethod        string                 `json:"payment_method,omitempty"`
	Note                 string                 `json:"note,omitempty"`
	AccountID            *uuid.UUID             `json:"account_id,omitempty"`
	DestinationAccountID *uuid.UUID             `json:"destination_account_id,omitempty"`
	Amount               decimal.Decimal        `json:"amount"`
	Frequency            planned.Frequency      `json:"frequency"`
	ScheduledDate        *string                `json:"scheduled_date,omitempty"`
	StartDate            *string                `json:"start_date,omitempty"`
	EndDate              *string                `json:"end_date,omitempty"`
	RecurrenceType       planned.RecurrenceType `json:"recurrence_type,omitempty"`
	WeeklyDays           []time.Weekday         `json:"weekly_days,omitempty"`
	MonthlyInterval      int                    `json:"monthly_interval,omitempty"`
	IsActive             bool                   `json:"is_active"`
	LastExecutedAt       *string                `json:"last_executed_at"`
	NextExecutionDate    *string                `json:"next_execution_date"`
	CreatedAt            time.Time              `json:"created_at"`
	UpdatedAt            *time.Time             `json:"updated_at,omitempty"`
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}

	s := t.Format(time.DateOnly)

	return &s
}

func toResponse(p *planned.PlannedPayment) plannedResponse {
	return plannedResponse{
		ID:                   p.ID,
		Type:                 p.Type,
		Name:                 p.Name,
		CategoryID:           p.CategoryID,
		Payee:                p.Payee,
		PaymentMethod:        p.PaymentMethod,
		Note:                 p.Note,
		AccountID:            p.AccountID,
		DestinationAccountID: p.DestinationAccountID,
		Amount:               p.Amount,
		Frequency:            p.Frequency,
		ScheduledDate:        formatDate(p.ScheduledDate),
		StartDate:            formatDate(p.StartDate),
		EndDate:              formatDate(p.EndDate),
		RecurrenceType:       p.RecurrenceType,
		WeeklyDays:           p.WeeklyDays,
		MonthlyInterval:      p.MonthlyInterval,
		IsActive:             p.IsActive,
		LastExecutedAt:       formatDate(p.LastExecutedAt),
		NextExecutionDate:    formatDate(p.NextExecutionDate),
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

func toResponseList(ps []*planned.PlannedPayment) []plannedResponse {
	resp := make([]plannedResponse, len(ps))
	for i, p := range ps {
		resp[i] = toResponse(p)
	}

	return resp
}

type executedResponse struct {
	PlannedPaymentID  uuid.UUID       `json:"planned_payment_id"`
	TransactionID     uuid.UUID       `json:"transaction_id"`
	Name              string          `json:"name"`
	Amount            decimal.Decimal `json:"amount"`
	ExecutedOn        string          `json:"executed_on"`
	NextExecutionDate *string         `json:"next_execution_date"`
}

type failedResponse struct {
	PlannedPaymentID uuid.UUID  `json:"planned_payment_id"`
	Name             string     `json:"name"`
	TransactionID    *uuid.UUID `json:"transaction_id,omitempty"`
	Error            string     `json:"error"`
}

type reportResponse struct {
	Executed []executedResponse `json:"executed"`
	Failed   []failedResponse   `json:"failed"`
}

func toReportResponse(r *planned.ExecutionReport) reportResponse {
	resp := reportResponse{
		Executed: make([]executedResponse, 0, len(r.Executed)),
		Failed:   make([]failedResponse, 0, len(r.Failed)),
	}

	for _, e := range r.Executed {
		resp.Executed = append(resp.Executed, executedResponse{
			PlannedPaymentID:  e.Payment.ID,
			TransactionID:     e.Transaction.ID,
			Name:              e.Payment.Name,
			Amount:            e.Payment.Amount,
			ExecutedOn:        e.ExecutedOn.Format(time.DateOnly),
			NextExecutionDate: formatDate(e.Payment.NextExecutionDate),
		})
	}

	for _, f := range r.Failed {
		resp.Failed = append(resp.Failed, failedResponse{
			PlannedPaymentID: f.PaymentID,
			Name:             f.Name,
			TransactionID:    f.TransactionID,
			Error:            f.Err.Error(),
		})
	}

	return resp
}

package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

type transactionResponse struct {
	ID                   uuid.UUID        `json:"id"`
	Type                 transaction.Type `json:"type"`
	Amount               decimal.Decimal  `json:"amount"`
	SourceAccountID      *uuid.UUID       `json:"source_account_id,omitempty"`
	DestinationAccountID *uuid.UUID       `json:"destination_account_id,omitempty"`
	CategoryID           *uuid.UUID       `json:"category_id,omitempty"`
	Payee                string           `json:"payee,omitempty"`
	PaymentMethod        string           `json:"payment_method,omitempty"`
	Note                 string           `json:"note,omitempty"`
	Date                 string           `json:"date"`
	PlannedPaymentID     *uuid.UUID       `json:"planned_payment_id,omitempty"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            *time.Time       `json:"updated_at,omitempty"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:                   tx.ID,
		Type:                 tx.Type,
		Amount:               tx.Amount,
		SourceAccountID:      tx.SourceAccountID,
		DestinationAccountID: tx.DestinationAccountID,
		CategoryID:           tx.CategoryID,
		Payee:                tx.Payee,
		PaymentMethod:        tx.PaymentMethod,
		Note:                 tx.Note,
		Date:                 tx.Date.Format(time.DateOnly),
		PlannedPaymentID:     tx.PlannedPaymentID,
		CreatedAt:            tx.CreatedAt,
		UpdatedAt:            tx.UpdatedAt,
	}
}

func toResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}

package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/planned"
)

// ExecutedMessage announces that a planned payment produced a transaction.
type ExecutedMessage struct {
	PlannedPaymentID  uuid.UUID       `json:"planned_payment_id"`
	TransactionID     uuid.UUID       `json:"transaction_id"`
	UserID            uuid.UUID       `json:"user_id"`
	ExecutedOn        string          `json:"executed_on"`
	NextExecutionDate *string         `json:"next_execution_date"`
	Amount            decimal.Decimal `json:"amount"`
}

func NewExecutedMessage(e planned.Execution) ExecutedMessage {
	msg := ExecutedMessage{
		PlannedPaymentID: e.Payment.ID,
		UserID:           e.Payment.UserID,
		ExecutedOn:       e.ExecutedOn.Format(time.DateOnly),
		Amount:           e.Payment.Amount,
	}

	if e.Transaction != nil {
		msg.TransactionID = e.Transaction.ID
		msg.UserID = e.Transaction.UserID
	}

	if e.Payment.NextExecutionDate != nil {
		next := e.Payment.NextExecutionDate.Format(time.DateOnly)
		msg.NextExecutionDate = &next
	}

	return msg
}

func (m ExecutedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExecutedMessageFromJSON(data []byte) (*ExecutedMessage, error) {
	var msg ExecutedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("decoding executed message: %w", err)
	}

	return &msg, nil
}

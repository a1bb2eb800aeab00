package transaction

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("transaction not found")

// Type represents the direction of money movement.
type Type string

const (
	TypeIncome   Type = "income"
	TypeExpense  Type = "expense"
	TypeTransfer Type = "transfer"
)

func (t Type) Valid() bool {
	switch t {
	case TypeIncome, TypeExpense, TypeTransfer:
		return true
	}

	return false
}

// Transaction is a single ledger entry.
type Transaction struct {
	ID                   uuid.UUID
	UserID               uuid.UUID
	Type                 Type
	Amount               decimal.Decimal
	SourceAccountID      *uuid.UUID
	DestinationAccountID *uuid.UUID
	CategoryID           *uuid.UUID
	Payee                string
	PaymentMethod        string
	Note                 string
	Date                 time.Time
	PlannedPaymentID     *uuid.UUID // Set when materialized from a planned payment
	CreatedAt            time.Time
	UpdatedAt            *time.Time
	DeletedAt            *time.Time
}

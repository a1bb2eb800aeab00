package view

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const dbTimeout = 5 * time.Second

// FormatAmount renders an amount with two decimals and a euro sign.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2) + " €"
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// FormatDatePtr is FormatDate for optional dates.
func FormatDatePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}

	return FormatDate(*t)
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}

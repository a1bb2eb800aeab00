package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/importer"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

// Summary totals an exported period.
type Summary struct {
	Count     int
	Income    decimal.Decimal
	Expense   decimal.Decimal
	Transfers decimal.Decimal
	// Planned counts the rows generated from planned payments.
	Planned int
}

// Net is income minus expenses; transfers move money between own accounts.
func (s Summary) Net() decimal.Decimal {
	return s.Income.Sub(s.Expense)
}

// Service writes transactions as CSV in the layout the importer reads back.
type Service struct {
	transactions *transaction.Service
}

func NewService(txService *transaction.Service) *Service {
	return &Service{transactions: txService}
}

// Export writes every transaction matching filter to w and returns their totals.
func (s *Service) Export(ctx context.Context, filter transaction.ListFilter, w io.Writer) (*Summary, error) {
	txs, err := s.transactions.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	if err := WriteCSV(w, txs); err != nil {
		return nil, err
	}

	summary := Summarize(txs)

	return &summary, nil
}

// Totals summarizes the transactions matching filter without writing them.
func (s *Service) Totals(ctx context.Context, filter transaction.ListFilter) (*Summary, error) {
	txs, err := s.transactions.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	summary := Summarize(txs)

	return &summary, nil
}

func WriteCSV(w io.Writer, txs []*transaction.Transaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(importer.LedgerHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, tx := range txs {
		record := []string{
			tx.Date.Format("2006-01-02"),
			string(tx.Type),
			tx.Amount.StringFixed(2),
			tx.Payee,
			tx.PaymentMethod,
			tx.Note,
			idString(tx.CategoryID),
			idString(tx.SourceAccountID),
			idString(tx.DestinationAccountID),
			idString(tx.PlannedPaymentID),
		}

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing transaction %s: %w", tx.ID, err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}

	return nil
}

func Summarize(txs []*transaction.Transaction) Summary {
	var s Summary

	for _, tx := range txs {
		s.Count++

		switch tx.Type {
		case transaction.TypeIncome:
			s.Income = s.Income.Add(tx.Amount)
		case transaction.TypeExpense:
			s.Expense = s.Expense.Add(tx.Amount)
		case transaction.TypeTransfer:
			s.Transfers = s.Transfers.Add(tx.Amount)
		}

		if tx.PlannedPaymentID != nil {
			s.Planned++
		}
	}

	return s
}

// FormatSummary renders one line per transaction followed by the totals.
func FormatSummary(txs []*transaction.Transaction) string {
	var sb strings.Builder

	for _, tx := range txs {
		sign := "-"

		switch tx.Type {
		case transaction.TypeIncome:
			sign = "+"
		case transaction.TypeTransfer:
			sign = "="
		}

		label := tx.Payee
		if label == "" {
			label = tx.Note
		}

		fmt.Fprintf(&sb, "* %s | %s | %s%s €\n", tx.Date.Format("2006-01-02"), label, sign, tx.Amount.StringFixed(2))
	}

	s := Summarize(txs)
	fmt.Fprintf(&sb, "\n%d transactions (%d planned) | income %s € | expenses %s € | net %s €\n",
		s.Count, s.Planned, s.Income.StringFixed(2), s.Expense.StringFixed(2), s.Net().StringFixed(2))

	return sb.String()
}

func idString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}

	return id.String()
}

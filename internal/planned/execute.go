package planned

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

var errNoTransaction = errors.New("ledger returned no transaction")

// Execution is a payment that was turned into a ledger transaction.
type Execution struct {
	Payment     *PlannedPayment
	Transaction *transaction.Transaction
	ExecutedOn  time.Time
}

// ExecutionFailure is a due payment that was left due.
// TransactionID is set when the ledger accepted the transaction but the
// payment could not be advanced afterwards.
type ExecutionFailure struct {
	PaymentID     uuid.UUID
	Name          string
	TransactionID *uuid.UUID
	Err           error
}

type ExecutionReport struct {
	Executed []Execution
	Failed   []ExecutionFailure
}

// CheckAndExecuteDue turns every due payment of userID into a ledger
// transaction dated today, one payment at a time.
//
// A payment is advanced only after the ledger confirmed the transaction. When
// the ledger fails the payment stays due and will be picked up by the next
// check. Payments are reloaded from the store before every check.
func (s *Service) CheckAndExecuteDue(ctx context.Context, userID uuid.UUID, ledger Ledger) (*ExecutionReport, error) {
	s.execMu.Lock()
	defer s.execMu.Unlock()

	if err := s.Load(ctx, userID); err != nil {
		return nil, err
	}

	today := s.Today()
	due := s.Due()

	s.logger.InfoContext(ctx, "checking planned payments",
		"user_id", userID,
		"due", len(due),
		"date", today.Format(time.DateOnly))

	report := &ExecutionReport{}

	for _, p := range due {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		exec, failure := s.execute(ctx, userID, p, today, ledger)
		if failure != nil {
			report.Failed = append(report.Failed, *failure)
			continue
		}

		report.Executed = append(report.Executed, *exec)
	}

	s.logger.InfoContext(ctx, "planned payment check complete",
		"user_id", userID,
		"executed", len(report.Executed),
		"failed", len(report.Failed))

	return report, nil
}

func (s *Service) execute(ctx context.Context, userID uuid.UUID, p *PlannedPayment, today time.Time, ledger Ledger) (*Execution, *ExecutionFailure) {
	tx, err := ledger.Create(ctx, s.transactionFor(userID, p, today))
	if err == nil && tx == nil {
		err = errNoTransaction
	}

	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create transaction for planned payment",
			"planned_payment_id", p.ID,
			"name", p.Name,
			"error", err)

		return nil, &ExecutionFailure{PaymentID: p.ID, Name: p.Name, Err: fmt.Errorf("creating transaction: %w", err)}
	}

	updated := p.Clone()
	executedOn := today
	updated.LastExecutedAt = &executedOn
	updated.NextExecutionDate = NextExecutionDate(updated, &executedOn, today)

	if updated.Frequency == FrequencyOneTime {
		updated.IsActive = false
	}

	if err := s.store.Update(ctx, updated); err != nil {
		s.logger.ErrorContext(ctx, "transaction created but planned payment not advanced",
			"planned_payment_id", p.ID,
			"transaction_id", tx.ID,
			"error", err)

		return nil, &ExecutionFailure{
			PaymentID:     p.ID,
			Name:          p.Name,
			TransactionID: &tx.ID,
			Err:           fmt.Errorf("updating planned payment: %w", err),
		}
	}

	s.replace(updated)

	exec := Execution{Payment: updated.Clone(), Transaction: tx, ExecutedOn: today}

	s.logger.InfoContext(ctx, "executed planned payment",
		"planned_payment_id", p.ID,
		"transaction_id", tx.ID,
		"amount", p.Amount.String(),
		"frequency", p.Frequency)

	if s.notifier != nil {
		if err := s.notifier.PaymentExecuted(ctx, exec); err != nil {
			s.logger.WarnContext(ctx, "failed to publish executed planned payment",
				"planned_payment_id", p.ID,
				"error", err)
		}
	}

	return &exec, nil
}

func (s *Service) transactionFor(userID uuid.UUID, p *PlannedPayment, today time.Time) transaction.CreateParams {
	params := transaction.CreateParams{
		UserID:           userID,
		Type:             p.Type,
		Amount:           p.Amount,
		CategoryID:       cloneID(p.CategoryID),
		Payee:            p.Payee,
		PaymentMethod:    p.PaymentMethod,
		Note:             autoNote(s.marker, p),
		Date:             today,
		PlannedPaymentID: &p.ID,
	}

	switch p.Type {
	case transaction.TypeExpense:
		params.SourceAccountID = cloneID(p.AccountID)
	case transaction.TypeIncome:
		params.DestinationAccountID = cloneID(p.AccountID)
	case transaction.TypeTransfer:
		params.SourceAccountID = cloneID(p.AccountID)
		params.DestinationAccountID = cloneID(p.DestinationAccountID)
	}

	return params
}

func autoNote(marker string, p *PlannedPayment) string {
	text := strings.TrimSpace(p.Note)
	if text == "" {
		text = p.Name
	}

	if marker == "" {
		return text
	}

	return marker + " " + text
}

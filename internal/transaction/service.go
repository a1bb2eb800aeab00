package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrMissingAccounts = errors.New("transfer requires source and destination accounts")
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	UpdateTransaction(ctx context.Context, tx *Transaction) error

	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)
	DeleteTransaction(ctx context.Context, id uuid.UUID) error

	BeginImport(ctx context.Context, userID uuid.UUID, minDate, maxDate time.Time) (ImportTx, error)
}

type ImportTx interface {
	FindDuplicates(ctx context.Context, params []CreateParams) ([]*Transaction, error)
	CreateTransactions(ctx context.Context, txs []*Transaction) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
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
	PlannedPaymentID     *uuid.UUID
}

func (p CreateParams) Validate() error {
	if !p.Amount.IsPositive() {
		return ErrInvalidAmount
	}

	if !p.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, p.Type)
	}

	if p.Type == TypeTransfer && (p.SourceAccountID == nil || p.DestinationAccountID == nil) {
		return ErrMissingAccounts
	}

	return nil
}

type ListFilter struct {
	UserID           uuid.UUID
	Type             *Type
	StartDate        *time.Time
	EndDate          *time.Time
	PlannedPaymentID *uuid.UUID
}

// Create stores a single transaction. It is the ledger entry point used by
// planned payment execution.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	tx := paramsToTransaction(params)
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, filter)
}

func (s *Service) Update(ctx context.Context, tx *Transaction) error {
	if !tx.Amount.IsPositive() {
		return ErrInvalidAmount
	}

	if !tx.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, tx.Type)
	}

	return s.repo.UpdateTransaction(ctx, tx)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteTransaction(ctx, id)
}

type ImportResult struct {
	Imported  []*Transaction
	New       []CreateParams
	Conflicts []Conflict
}

type Conflict struct {
	Incoming CreateParams
	Existing *Transaction
}

// DuplicateKey identifies rows that are considered the same ledger entry on import.
type DuplicateKey struct {
	Date   string
	Amount string
	Type   Type
	Payee  string
	Note   string
}

func KeyOf(date time.Time, amount decimal.Decimal, typ Type, payee, note string) DuplicateKey {
	return DuplicateKey{
		Date:   date.Format(time.DateOnly),
		Amount: amount.StringFixed(2),
		Type:   typ,
		Payee:  payee,
		Note:   note,
	}
}

// ImportBatch stores params for a single user unless any of them collide with
// existing rows, in which case nothing is written and the conflicts are returned.
func (s *Service) ImportBatch(ctx context.Context, userID uuid.UUID, params []CreateParams) (*ImportResult, error) {
	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	for i := range params {
		params[i].UserID = userID
		if err := params[i].Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	minDate, maxDate := dateRange(params)

	itx, err := s.repo.BeginImport(ctx, userID, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	duplicates, err := itx.FindDuplicates(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}

	lookup := make(map[DuplicateKey]*Transaction, len(duplicates))
	for _, d := range duplicates {
		lookup[KeyOf(d.Date, d.Amount, d.Type, d.Payee, d.Note)] = d
	}

	var newParams []CreateParams

	var conflicts []Conflict

	for _, p := range params {
		existing, found := lookup[KeyOf(p.Date, p.Amount, p.Type, p.Payee, p.Note)]
		if found {
			conflicts = append(conflicts, Conflict{Incoming: p, Existing: existing})
			continue
		}

		newParams = append(newParams, p)
	}

	if len(conflicts) > 0 {
		return &ImportResult{New: newParams, Conflicts: conflicts}, nil
	}

	txs := paramsToTransactions(newParams)
	if err := itx.CreateTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return &ImportResult{Imported: txs}, nil
}

// CreateBatch stores params without duplicate detection, typically after the
// user confirmed an import that had conflicts.
func (s *Service) CreateBatch(ctx context.Context, userID uuid.UUID, params []CreateParams) ([]*Transaction, error) {
	if len(params) == 0 {
		return nil, nil
	}

	for i := range params {
		params[i].UserID = userID
		if err := params[i].Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	minDate, maxDate := dateRange(params)

	itx, err := s.repo.BeginImport(ctx, userID, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	txs := paramsToTransactions(params)
	if err := itx.CreateTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return txs, nil
}

func dateRange(params []CreateParams) (time.Time, time.Time) {
	minDate := params[0].Date
	maxDate := params[0].Date

	for _, p := range params[1:] {
		if p.Date.Before(minDate) {
			minDate = p.Date
		}

		if p.Date.After(maxDate) {
			maxDate = p.Date
		}
	}

	return minDate, maxDate
}

func paramsToTransaction(p CreateParams) *Transaction {
	return &Transaction{
		UserID:               p.UserID,
		Type:                 p.Type,
		Amount:               p.Amount,
		SourceAccountID:      p.SourceAccountID,
		DestinationAccountID: p.DestinationAccountID,
		CategoryID:           p.CategoryID,
		Payee:                p.Payee,
		PaymentMethod:        p.PaymentMethod,
		Note:                 p.Note,
		Date:                 p.Date,
		PlannedPaymentID:     p.PlannedPaymentID,
	}
}

func paramsToTransactions(params []CreateParams) []*Transaction {
	txs := make([]*Transaction, len(params))
	for i, p := range params {
		txs[i] = paramsToTransaction(p)
	}

	return txs
}

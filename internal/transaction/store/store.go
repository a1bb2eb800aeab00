package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTransaction reads a transaction row in selectTransactionColumns order.
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction

	var typeStr string

	var payee, method, note sql.NullString

	if err := s.Scan(
		&tx.ID, &tx.UserID, &typeStr, &tx.Amount,
		&tx.SourceAccountID, &tx.DestinationAccountID, &tx.CategoryID,
		&payee, &method, &note, &tx.Date, &tx.PlannedPaymentID,
		&tx.CreatedAt, &tx.UpdatedAt, &tx.DeletedAt,
	); err != nil {
		return nil, err
	}

	tx.Type = transaction.Type(typeStr)
	tx.Payee = payee.String
	tx.PaymentMethod = method.String
	tx.Note = note.String

	return &tx, nil
}

const selectTransactionColumns = `
	t.id, t.user_id, t.type, t.amount,
	t.source_account_id, t.destination_account_id, t.category_id,
	t.payee, t.payment_method, t.note, t.date, t.planned_payment_id,
	t.created_at, t.updated_at, t.deleted_at
`

const insertTransaction = `
	INSERT INTO transactions (
		user_id, type, amount, source_account_id, destination_account_id, category_id,
		payee, payment_method, note, date, planned_payment_id, created_at, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), $10, $11, NOW(), NOW())
	RETURNING id, created_at, updated_at
`

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insert(ctx context.Context, q queryRower, tx *transaction.Transaction) error {
	return q.QueryRowContext(ctx, insertTransaction,
		tx.UserID,
		tx.Type,
		tx.Amount,
		tx.SourceAccountID,
		tx.DestinationAccountID,
		tx.CategoryID,
		tx.Payee,
		tx.PaymentMethod,
		tx.Note,
		tx.Date,
		tx.PlannedPaymentID,
	).Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
}

func (s *Store) CreateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	if err := insert(ctx, s.db, tx); err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.id = $1 AND t.deleted_at IS NULL`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.deleted_at IS NULL AND t.user_id = $1`

	args := []any{filter.UserID}
	argIdx := 2

	if filter.Type != nil {
		query += fmt.Sprintf(" AND t.type = $%d", argIdx)

		args = append(args, *filter.Type)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND t.date >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND t.date <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	if filter.PlannedPaymentID != nil {
		query += fmt.Sprintf(" AND t.planned_payment_id = $%d", argIdx)

		args = append(args, *filter.PlannedPaymentID)
	}

	query += " ORDER BY t.date ASC, t.created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transaction rows: %w", err)
	}

	return txs, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		UPDATE transactions
		SET type = $1, amount = $2, source_account_id = $3, destination_account_id = $4,
			category_id = $5, payee = NULLIF($6, ''), payment_method = NULLIF($7, ''),
			note = NULLIF($8, ''), date = $9, updated_at = NOW()
		WHERE id = $10 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query,
		tx.Type,
		tx.Amount,
		tx.SourceAccountID,
		tx.DestinationAccountID,
		tx.CategoryID,
		tx.Payee,
		tx.PaymentMethod,
		tx.Note,
		tx.Date,
		tx.ID,
	)
	if err != nil {
		return fmt.Errorf("updating transaction: %w", err)
	}

	return requireRow(res)
}

func (s *Store) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE transactions
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return transaction.ErrNotFound
	}

	return nil
}

func importLockKey(userID uuid.UUID, minDate, maxDate time.Time) int64 {
	h := fnv.New64a()
	h.Write(userID[:])
	h.Write([]byte(minDate.Format(time.DateOnly)))
	h.Write([]byte{0})
	h.Write([]byte(maxDate.Format(time.DateOnly)))

	return int64(h.Sum64())
}

type importTx struct {
	tx     *sql.Tx
	userID uuid.UUID
}

func (s *Store) BeginImport(ctx context.Context, userID uuid.UUID, minDate, maxDate time.Time) (transaction.ImportTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import tx: %w", err)
	}

	lockKey := importLockKey(userID, minDate, maxDate)
	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", lockKey); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring import lock: %w", err)
	}

	return &importTx{tx: dbTx, userID: userID}, nil
}

func (itx *importTx) Commit() error   { return itx.tx.Commit() }
func (itx *importTx) Rollback() error { return itx.tx.Rollback() }

func (itx *importTx) FindDuplicates(ctx context.Context, params []transaction.CreateParams) ([]*transaction.Transaction, error) {
	if len(params) == 0 {
		return nil, nil
	}

	minDate := params[0].Date
	maxDate := params[0].Date
	keySet := make(map[transaction.DuplicateKey]struct{}, len(params))

	for _, p := range params {
		if p.Date.Before(minDate) {
			minDate = p.Date
		}

		if p.Date.After(maxDate) {
			maxDate = p.Date
		}

		keySet[transaction.KeyOf(p.Date, p.Amount, p.Type, p.Payee, p.Note)] = struct{}{}
	}

	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.deleted_at IS NULL AND t.user_id = $1 AND t.date >= $2 AND t.date <= $3
		ORDER BY t.date ASC`

	rows, err := itx.tx.QueryContext(ctx, query, itx.userID, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("finding duplicates: %w", err)
	}
	defer rows.Close()

	var duplicates []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		if _, found := keySet[transaction.KeyOf(tx.Date, tx.Amount, tx.Type, tx.Payee, tx.Note)]; !found {
			continue
		}

		duplicates = append(duplicates, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating duplicate rows: %w", err)
	}

	return duplicates, nil
}

func (itx *importTx) CreateTransactions(ctx context.Context, txs []*transaction.Transaction) error {
	for _, tx := range txs {
		if err := insert(ctx, itx.tx, tx); err != nil {
			return fmt.Errorf("creating transaction: %w", err)
		}
	}

	return nil
}

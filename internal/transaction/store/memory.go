package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

// Memory keeps transactions in process. It backs the demo mode used when no
// database is configured.
type Memory struct {
	mu  sync.Mutex
	txs map[uuid.UUID]*transaction.Transaction
	now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		txs: make(map[uuid.UUID]*transaction.Transaction),
		now: time.Now,
	}
}

func (m *Memory) CreateTransaction(_ context.Context, tx *transaction.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.insertLocked(tx)

	return nil
}

func (m *Memory) insertLocked(tx *transaction.Transaction) {
	now := m.now()
	tx.ID = uuid.New()
	tx.CreatedAt = now
	tx.UpdatedAt = &now

	stored := *tx
	m.txs[tx.ID] = &stored
}

func (m *Memory) GetTransaction(_ context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx, ok := m.txs[id]
	if !ok || tx.DeletedAt != nil {
		return nil, transaction.ErrNotFound
	}

	out := *tx

	return &out, nil
}

func (m *Memory) ListTransactions(_ context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var txs []*transaction.Transaction

	for _, tx := range m.txs {
		if !matches(tx, filter) {
			continue
		}

		out := *tx
		txs = append(txs, &out)
	}

	sort.SliceStable(txs, func(i, j int) bool {
		if txs[i].Date.Equal(txs[j].Date) {
			return txs[i].CreatedAt.Before(txs[j].CreatedAt)
		}

		return txs[i].Date.Before(txs[j].Date)
	})

	return txs, nil
}

func matches(tx *transaction.Transaction, f transaction.ListFilter) bool {
	if tx.DeletedAt != nil || tx.UserID != f.UserID {
		return false
	}

	if f.Type != nil && tx.Type != *f.Type {
		return false
	}

	if f.StartDate != nil && tx.Date.Before(*f.StartDate) {
		return false
	}

	if f.EndDate != nil && tx.Date.After(*f.EndDate) {
		return false
	}

	if f.PlannedPaymentID != nil && (tx.PlannedPaymentID == nil || *tx.PlannedPaymentID != *f.PlannedPaymentID) {
		return false
	}

	return true
}

func (m *Memory) UpdateTransaction(_ context.Context, tx *transaction.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.txs[tx.ID]
	if !ok || existing.DeletedAt != nil {
		return transaction.ErrNotFound
	}

	now := m.now()
	updated := *tx
	updated.UserID = existing.UserID
	updated.CreatedAt = existing.CreatedAt
	updated.PlannedPaymentID = existing.PlannedPaymentID
	updated.UpdatedAt = &now
	m.txs[tx.ID] = &updated

	return nil
}

func (m *Memory) DeleteTransaction(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx, ok := m.txs[id]
	if !ok || tx.DeletedAt != nil {
		return transaction.ErrNotFound
	}

	now := m.now()
	tx.DeletedAt = &now

	return nil
}

// BeginImport holds the store lock until the import is committed or rolled
// back, mirroring the advisory lock taken by the Postgres store.
func (m *Memory) BeginImport(_ context.Context, userID uuid.UUID, _, _ time.Time) (transaction.ImportTx, error) {
	m.mu.Lock()

	return &memoryImport{m: m, userID: userID}, nil
}

type memoryImport struct {
	m       *Memory
	userID  uuid.UUID
	pending []*transaction.Transaction
	done    bool
}

func (mi *memoryImport) FindDuplicates(_ context.Context, params []transaction.CreateParams) ([]*transaction.Transaction, error) {
	keySet := make(map[transaction.DuplicateKey]struct{}, len(params))
	for _, p := range params {
		keySet[transaction.KeyOf(p.Date, p.Amount, p.Type, p.Payee, p.Note)] = struct{}{}
	}

	var duplicates []*transaction.Transaction

	for _, tx := range mi.m.txs {
		if tx.DeletedAt != nil || tx.UserID != mi.userID {
			continue
		}

		if _, found := keySet[transaction.KeyOf(tx.Date, tx.Amount, tx.Type, tx.Payee, tx.Note)]; found {
			out := *tx
			duplicates = append(duplicates, &out)
		}
	}

	return duplicates, nil
}

func (mi *memoryImport) CreateTransactions(_ context.Context, txs []*transaction.Transaction) error {
	mi.pending = append(mi.pending, txs...)
	return nil
}

func (mi *memoryImport) Commit() error {
	if mi.done {
		return nil
	}

	for _, tx := range mi.pending {
		mi.m.insertLocked(tx)
	}

	mi.done = true
	mi.m.mu.Unlock()

	return nil
}

func (mi *memoryImport) Rollback() error {
	if mi.done {
		return nil
	}

	mi.done = true
	mi.m.mu.Unlock()

	return nil
}

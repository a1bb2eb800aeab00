package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/planned"
)

// Memory keeps planned payments in process for the demo backend.
type Memory struct {
	mu       sync.Mutex
	payments []*planned.PlannedPayment
	now      func() time.Time
}

func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

func (m *Memory) Load(_ context.Context, userID uuid.UUID) ([]*planned.PlannedPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*planned.PlannedPayment

	for _, p := range m.payments {
		if p.UserID == userID {
			out = append(out, p.Clone())
		}
	}

	return out, nil
}

func (m *Memory) Create(_ context.Context, p *planned.PlannedPayment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	p.ID = uuid.New()
	p.CreatedAt = now
	p.UpdatedAt = &now

	m.payments = append(m.payments, p.Clone())

	return nil
}

func (m *Memory) Update(_ context.Context, p *planned.PlannedPayment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexLocked(p.ID)
	if i < 0 {
		return planned.ErrNotFound
	}

	now := m.now()
	p.UpdatedAt = &now

	stored := p.Clone()
	stored.UserID = m.payments[i].UserID
	stored.CreatedAt = m.payments[i].CreatedAt
	m.payments[i] = stored

	return nil
}

func (m *Memory) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexLocked(id)
	if i < 0 {
		return planned.ErrNotFound
	}

	m.payments = slices.Delete(m.payments, i, i+1)

	return nil
}

func (m *Memory) indexLocked(id uuid.UUID) int {
	return slices.IndexFunc(m.payments, func(p *planned.PlannedPayment) bool { return p.ID == id })
}

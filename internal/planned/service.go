package planned

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=planned
type Store interface {
	Load(ctx context.Context, userID uuid.UUID) ([]*PlannedPayment, error)
	Create(ctx context.Context, p *PlannedPayment) error
	Update(ctx context.Context, p *PlannedPayment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Ledger records the transactions produced by executed payments.
type Ledger interface {
	Create(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error)
}

// Notifier is told about every payment that executed successfully.
type Notifier interface {
	PaymentExecuted(ctx context.Context, e Execution) error
}

// LedgerFunc adapts a plain function to the Ledger interface.
type LedgerFunc func(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error)

func (f LedgerFunc) Create(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
	return f(ctx, params)
}

const DefaultNoteMarker = "[Auto]"

type Option func(*Service)

// WithClock overrides the source of "now", used to derive today's date.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the time zone that decides which calendar day "today" is.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithNoteMarker sets the prefix written in front of the note of generated transactions.
func WithNoteMarker(marker string) Option {
	return func(s *Service) { s.marker = marker }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// Service owns the planned payments of one user for the duration of a session.
// It is the only way to mutate them: every change goes to the store first and
// is applied in memory only when the store accepted it.
type Service struct {
	store    Store
	now      func() time.Time
	loc      *time.Location
	notifier Notifier
	marker   string
	logger   *slog.Logger

	mu       sync.RWMutex
	userID   uuid.UUID
	loaded   bool
	payments []*PlannedPayment

	execMu sync.Mutex
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		now:    time.Now,
		loc:    time.UTC,
		marker: DefaultNoteMarker,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Today is the current calendar date in the service's location.
func (s *Service) Today() time.Time {
	return DateOf(s.now(), s.loc)
}

// UserID returns the user whose payments are loaded.
func (s *Service) UserID() uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.userID
}

// Load replaces the in-memory collection with the user's stored payments.
func (s *Service) Load(ctx context.Context, userID uuid.UUID) error {
	payments, err := s.store.Load(ctx, userID)
	if err != nil {
		return fmt.Errorf("loading planned payments: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.userID = userID
	s.loaded = true
	s.payments = payments

	return nil
}

func (s *Service) Add(ctx context.Context, params CreateParams) (*PlannedPayment, error) {
	p := params.toPayment()
	if p.UserID == uuid.Nil {
		p.UserID = s.UserID()
	}

	if p.UserID == uuid.Nil {
		return nil, ErrNotLoaded
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	p.NextExecutionDate = NextExecutionDate(p, nil, s.Today())

	if err := s.store.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("creating planned payment: %w", err)
	}

	s.mu.Lock()
	if s.loaded && p.UserID == s.userID {
		s.payments = append(s.payments, p.Clone())
	}
	s.mu.Unlock()

	return p, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*PlannedPayment, error) {
	current, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	updated := current.Clone()
	params.apply(updated)

	if err := updated.Validate(); err != nil {
		return nil, err
	}

	if params.TouchesSchedule() {
		updated.NextExecutionDate = NextExecutionDate(updated, updated.LastExecutedAt, s.Today())
	}

	if err := s.store.Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("updating planned payment: %w", err)
	}

	s.replace(updated)

	return updated.Clone(), nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.lookup(id); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting planned payment: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.payments = slices.DeleteFunc(s.payments, func(p *PlannedPayment) bool { return p.ID == id })

	return nil
}

// ToggleActive pauses an active payment or resumes a paused one. Scheduling
// fields are left alone.
func (s *Service) ToggleActive(ctx context.Context, id uuid.UUID) (*PlannedPayment, error) {
	current, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	updated := current.Clone()
	updated.IsActive = !updated.IsActive

	if err := s.store.Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("toggling planned payment: %w", err)
	}

	s.replace(updated)

	return updated.Clone(), nil
}

func (s *Service) Get(id uuid.UUID) (*PlannedPayment, bool) {
	p, err := s.lookup(id)
	if err != nil {
		return nil, false
	}

	return p, true
}

// List returns every loaded payment in store order.
func (s *Service) List() []*PlannedPayment {
	return s.filter(func(*PlannedPayment) bool { return true })
}

func (s *Service) Active() []*PlannedPayment {
	return s.filter(func(p *PlannedPayment) bool { return p.IsActive })
}

// Due returns the active payments whose next execution date is today or earlier.
func (s *Service) Due() []*PlannedPayment {
	today := s.Today()

	return s.filter(func(p *PlannedPayment) bool {
		return isDue(p, today)
	})
}

// Upcoming returns the active payments scheduled between today and today+days
// inclusive, earliest first.
func (s *Service) Upcoming(days int) []*PlannedPayment {
	today := s.Today()
	until := today.AddDate(0, 0, max(days, 0))

	upcoming := s.filter(func(p *PlannedPayment) bool {
		if !p.IsActive || p.NextExecutionDate == nil {
			return false
		}

		next := *p.NextExecutionDate

		return !next.Before(today) && !next.After(until)
	})

	slices.SortStableFunc(upcoming, func(a, b *PlannedPayment) int {
		return cmp.Compare(a.NextExecutionDate.Unix(), b.NextExecutionDate.Unix())
	})

	return upcoming
}

func isDue(p *PlannedPayment, today time.Time) bool {
	return p.IsActive && p.NextExecutionDate != nil && !p.NextExecutionDate.After(today)
}

func (s *Service) filter(keep func(*PlannedPayment) bool) []*PlannedPayment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*PlannedPayment, 0, len(s.payments))

	for _, p := range s.payments {
		if keep(p) {
			out = append(out, p.Clone())
		}
	}

	return out
}

func (s *Service) lookup(id uuid.UUID) (*PlannedPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.payments {
		if p.ID == id {
			return p.Clone(), nil
		}
	}

	return nil, ErrNotFound
}

func (s *Service) replace(updated *PlannedPayment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.payments {
		if p.ID == updated.ID {
			s.payments[i] = updated.Clone()
			return
		}
	}
}

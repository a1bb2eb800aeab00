package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pennywise/internal/planned"
	"github.com/MrJamesThe3rd/pennywise/internal/planned/store"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
	txstore "github.com/MrJamesThe3rd/pennywise/internal/transaction/store"
)

func weekly(userID uuid.UUID) *planned.PlannedPayment {
	return &planned.PlannedPayment{
		UserID:         userID,
		Type:           transaction.TypeExpense,
		Name:           "Cleaning",
		Amount:         decimal.NewFromInt(40),
		Frequency:      planned.FrequencyRecurrent,
		RecurrenceType: planned.RecurrenceWeekly,
		WeeklyDays:     []time.Weekday{time.Monday, time.Thursday},
		IsActive:       true,
	}
}

func TestMemory_LoadScopesByUser(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	alice, bob := uuid.New(), uuid.New()

	require.NoError(t, mem.Create(ctx, weekly(alice)))
	require.NoError(t, mem.Create(ctx, weekly(alice)))
	require.NoError(t, mem.Create(ctx, weekly(bob)))

	got, err := mem.Load(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	for _, p := range got {
		assert.NotEqual(t, uuid.Nil, p.ID)
		assert.Equal(t, alice, p.UserID)
	}
}

func TestMemory_StoresCopies(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	userID := uuid.New()

	p := weekly(userID)
	require.NoError(t, mem.Create(ctx, p))

	p.Name = "changed"
	p.WeeklyDays[0] = time.Sunday

	got, err := mem.Load(ctx, userID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Cleaning", got[0].Name)
	assert.Equal(t, []time.Weekday{time.Monday, time.Thursday}, got[0].WeeklyDays)
}

func TestMemory_UpdateAndDelete(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	userID := uuid.New()

	p := weekly(userID)
	require.NoError(t, mem.Create(ctx, p))

	p.IsActive = false
	require.NoError(t, mem.Update(ctx, p))

	got, err := mem.Load(ctx, userID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].IsActive)

	require.NoError(t, mem.Delete(ctx, p.ID))
	assert.ErrorIs(t, mem.Delete(ctx, p.ID), planned.ErrNotFound)
	assert.ErrorIs(t, mem.Update(ctx, p), planned.ErrNotFound)

	got, err = mem.Load(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

// A full session against the in-memory backends: the executed transaction
// lands in the ledger and the advanced schedule survives a reload.
func TestMemory_ExecuteSurvivesReload(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	account := uuid.New()
	now := func() time.Time { return time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC) }

	payments := store.NewMemory()
	ledger := transaction.NewService(txstore.NewMemory())

	svc := planned.NewService(payments, planned.WithClock(now))
	require.NoError(t, svc.Load(ctx, userID))

	start := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	rent, err := svc.Add(ctx, planned.CreateParams{
		Type:            transaction.TypeExpense,
		Name:            "Rent",
		AccountID:       &account,
		Amount:          decimal.NewFromInt(21000),
		Frequency:       planned.FrequencyRecurrent,
		StartDate:       &start,
		RecurrenceType:  planned.RecurrenceMonthly,
		MonthlyInterval: 1,
	})
	require.NoError(t, err)

	report, err := svc.CheckAndExecuteDue(ctx, userID, ledger)
	require.NoError(t, err)
	require.Len(t, report.Executed, 1)

	txs, err := ledger.List(ctx, transaction.ListFilter{UserID: userID, PlannedPaymentID: &rent.ID})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "[Auto] Rent", txs[0].Note)
	assert.Equal(t, &account, txs[0].SourceAccountID)

	reloaded := planned.NewService(payments, planned.WithClock(now))
	require.NoError(t, reloaded.Load(ctx, userID))

	got, ok := reloaded.Get(rent.ID)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC), *got.NextExecutionDate)
	assert.Empty(t, reloaded.Due())
}

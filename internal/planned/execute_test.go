package planned_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/pennywise/internal/planned"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

func ledgerTx(params transaction.CreateParams) *transaction.Transaction {
	return &transaction.Transaction{
		ID:               uuid.New(),
		UserID:           params.UserID,
		Type:             params.Type,
		Amount:           params.Amount,
		Note:             params.Note,
		Date:             params.Date,
		PlannedPaymentID: params.PlannedPaymentID,
	}
}

// checkingService returns a service whose next check loads payments from store.
func checkingService(t *testing.T, store *planned.MockStore, payments []*planned.PlannedPayment, opts ...planned.Option) *planned.Service {
	t.Helper()

	store.EXPECT().Load(gomock.Any(), testUser).Return(payments, nil)

	return newTestService(t, store, opts...)
}

func TestService_CheckAndExecuteDue(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := planned.NewMockStore(ctrl)
	ledger := planned.NewMockLedger(ctrl)

	rent := monthlyRent()
	svc := checkingService(t, store, []*planned.PlannedPayment{rent})

	var created transaction.CreateParams

	ledger.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
			created = params
			return ledgerTx(params), nil
		})

	var stored *planned.PlannedPayment

	store.EXPECT().
		Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p *planned.PlannedPayment) error {
			stored = p
			return nil
		})

	report, err := svc.CheckAndExecuteDue(context.Background(), testUser, ledger)
	require.NoError(t, err)
	require.Len(t, report.Executed, 1)
	assert.Empty(t, report.Failed)

	assert.Equal(t, transaction.TypeExpense, created.Type)
	assert.True(t, decimal.NewFromInt(21000).Equal(created.Amount))
	assert.Equal(t, date(2024, 1, 5), created.Date)
	assert.Equal(t, rent.AccountID, created.SourceAccountID)
	assert.Nil(t, created.DestinationAccountID)
	assert.Equal(t, "[Auto] Rent", created.Note)
	require.NotNil(t, created.PlannedPaymentID)
	assert.Equal(t, rent.ID, *created.PlannedPaymentID)

	require.NotNil(t, stored)
	assert.Equal(t, date(2024, 1, 5), *stored.LastExecutedAt)
	assert.Equal(t, date(2024, 2, 5), *stored.NextExecutionDate)
	assert.True(t, stored.IsActive)

	got, ok := svc.Get(rent.ID)
	require.True(t, ok)
	assert.Equal(t, date(2024, 2, 5), *got.NextExecutionDate)
	assert.Empty(t, svc.Due())

	// A second check the same day reloads the advanced payment and finds nothing to do.
	store.EXPECT().Load(gomock.Any(), testUser).Return([]*planned.PlannedPayment{stored}, nil)

	report, err = svc.CheckAndExecuteDue(context.Background(), testUser, ledger)
	require.NoError(t, err)
	assert.Empty(t, report.Executed)
	assert.Empty(t, report.Failed)
}

func TestService_CheckAndExecuteDue_OneTime(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := planned.NewMockStore(ctrl)
	ledger := planned.NewMockLedger(ctrl)

	account := uuid.New()
	refund := &planned.PlannedPayment{
		ID:                uuid.New(),
		UserID:            testUser,
		Type:              transaction.TypeIncome,
		Name:              "Tax refund",
		Note:              "IRS 2023",
		AccountID:         &account,
		Amount:            decimal.RequireFromString("312.40"),
		Frequency:         planned.FrequencyOneTime,
		ScheduledDate:     datePtr(2024, 1, 3),
		IsActive:          true,
		NextExecutionDate: datePtr(2024, 1, 3),
	}

	svc := checkingService(t, store, []*planned.PlannedPayment{refund}, planned.WithNoteMarker("[Planned]"))

	ledger.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
			assert.Nil(t, params.SourceAccountID)
			assert.Equal(t, &account, params.DestinationAccountID)
			assert.Equal(t, "[Planned] IRS 2023", params.Note)
			assert.Equal(t, date(2024, 1, 5), params.Date)

			return ledgerTx(params), nil
		})
	store.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

	report, err := svc.CheckAndExecuteDue(context.Background(), testUser, ledger)
	require.NoError(t, err)
	require.Len(t, report.Executed, 1)

	got, ok := svc.Get(refund.ID)
	require.True(t, ok)
	assert.False(t, got.IsActive)
	assert.Nil(t, got.NextExecutionDate)
	assert.Equal(t, date(2024, 1, 5), *got.LastExecutedAt)
}

func TestService_CheckAndExecuteDue_Transfer(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := planned.NewMockStore(ctrl)

	from, to := uuid.New(), uuid.New()
	savings := monthlyRent()
	savings.Type = transaction.TypeTransfer
	savings.Name = "Savings"
	savings.AccountID = &from
	savings.DestinationAccountID = &to

	svc := checkingService(t, store, []*planned.PlannedPayment{savings})
	store.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

	ledger := planned.LedgerFunc(func(_ context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
		assert.Equal(t, &from, params.SourceAccountID)
		assert.Equal(t, &to, params.DestinationAccountID)

		return ledgerTx(params), nil
	})

	report, err := svc.CheckAndExecuteDue(context.Background(), testUser, ledger)
	require.NoError(t, err)
	assert.Len(t, report.Executed, 1)
}

func TestService_CheckAndExecuteDue_LedgerFailure(t *testing.T) {
	type testCase struct {
		name   string
		result func(params transaction.CreateParams) (*transaction.Transaction, error)
	}

	tests := []testCase{
		{
			name: "LedgerError",
			result: func(transaction.CreateParams) (*transaction.Transaction, error) {
				return nil, errors.New("ledger offline")
			},
		},
		{
			name: "NoTransaction",
			result: func(transaction.CreateParams) (*transaction.Transaction, error) {
				return nil, nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := planned.NewMockStore(ctrl)
			ledger := planned.NewMockLedger(ctrl)

			rent := monthlyRent()
			svc := checkingService(t, store, []*planned.PlannedPayment{rent})

			ledger.EXPECT().
				Create(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
					return tt.result(params)
				})

			report, err := svc.CheckAndExecuteDue(context.Background(), testUser, ledger)
			require.NoError(t, err)
			assert.Empty(t, report.Executed)
			require.Len(t, report.Failed, 1)
			assert.Equal(t, rent.ID, report.Failed[0].PaymentID)
			assert.Nil(t, report.Failed[0].TransactionID)

			got, ok := svc.Get(rent.ID)
			require.True(t, ok)
			assert.Nil(t, got.LastExecutedAt)
			assert.Equal(t, date(2024, 1, 5), *got.NextExecutionDate)
			assert.Len(t, svc.Due(), 1)
		})
	}
}

func TestService_CheckAndExecuteDue_StoreFailureAfterLedger(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := planned.NewMockStore(ctrl)
	ledger := planned.NewMockLedger(ctrl)

	rent := monthlyRent()
	svc := checkingService(t, store, []*planned.PlannedPayment{rent})

	txID := uuid.New()

	ledger.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(&transaction.Transaction{ID: txID}, nil)
	store.EXPECT().Update(gomock.Any(), gomock.Any()).Return(errors.New("db error"))

	report, err := svc.CheckAndExecuteDue(context.Background(), testUser, ledger)
	require.NoError(t, err)
	require.Len(t, report.Failed, 1)
	require.NotNil(t, report.Failed[0].TransactionID)
	assert.Equal(t, txID, *report.Failed[0].TransactionID)

	got, ok := svc.Get(rent.ID)
	require.True(t, ok)
	assert.Equal(t, date(2024, 1, 5), *got.NextExecutionDate)
}

func TestService_CheckAndExecuteDue_ContinuesAfterFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := planned.NewMockStore(ctrl)

	broken := monthlyRent()
	broken.Name = "Broken"

	gym := monthlyRent()
	gym.Name = "Gym"
	gym.Amount = decimal.NewFromInt(35)

	svc := checkingService(t, store, []*planned.PlannedPayment{broken, gym})
	store.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

	ledger := planned.LedgerFunc(func(_ context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
		if *params.PlannedPaymentID == broken.ID {
			return nil, errors.New("rejected")
		}

		return ledgerTx(params), nil
	})

	report, err := svc.CheckAndExecuteDue(context.Background(), testUser, ledger)
	require.NoError(t, err)
	require.Len(t, report.Executed, 1)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, gym.ID, report.Executed[0].Payment.ID)
	assert.Equal(t, broken.ID, report.Failed[0].PaymentID)
}

func TestService_CheckAndExecuteDue_LoadsOtherUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := planned.NewMockStore(ctrl)
	ledger := planned.NewMockLedger(ctrl)

	svc := loadedService(t, store, nil)

	other := uuid.New()
	store.EXPECT().Load(gomock.Any(), other).Return(nil, nil)

	report, err := svc.CheckAndExecuteDue(context.Background(), other, ledger)
	require.NoError(t, err)
	assert.Empty(t, report.Executed)
	assert.Equal(t, other, svc.UserID())

	store.EXPECT().Load(gomock.Any(), testUser).Return(nil, errors.New("db down"))

	_, err = svc.CheckAndExecuteDue(context.Background(), testUser, ledger)
	assert.Error(t, err)
}

func TestService_CheckAndExecuteDue_Notifies(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := planned.NewMockStore(ctrl)
	notifier := planned.NewMockNotifier(ctrl)

	rent := monthlyRent()
	svc := checkingService(t, store, []*planned.PlannedPayment{rent}, planned.WithNotifier(notifier))

	store.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
	notifier.EXPECT().
		PaymentExecuted(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e planned.Execution) error {
			assert.Equal(t, rent.ID, e.Payment.ID)
			assert.Equal(t, date(2024, 2, 5), *e.Payment.NextExecutionDate)
			assert.Equal(t, date(2024, 1, 5), e.ExecutedOn)

			return errors.New("broker unreachable")
		})

	ledger := planned.LedgerFunc(func(_ context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
		return ledgerTx(params), nil
	})

	report, err := svc.CheckAndExecuteDue(context.Background(), testUser, ledger)
	require.NoError(t, err)
	assert.Len(t, report.Executed, 1)
	assert.Empty(t, report.Failed)
}

func TestService_CheckAndExecuteDue_Cancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := planned.NewMockStore(ctrl)
	ledger := planned.NewMockLedger(ctrl)

	svc := checkingService(t, store, []*planned.PlannedPayment{monthlyRent()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := svc.CheckAndExecuteDue(ctx, testUser, ledger)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, report.Executed)
	assert.Len(t, svc.Due(), 1)
}

// Rent of 21000 starting 2024-01-05, checked on 2024-01-05, executes once
// and moves to 2024-02-05.
func TestService_EndToEndMonthly(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := planned.NewMockStore(ctrl)

	svc := loadedService(t, store, nil)

	account := uuid.New()

	var persisted *planned.PlannedPayment

	store.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p *planned.PlannedPayment) error {
			p.ID = uuid.New()
			persisted = p.Clone()

			return nil
		})
	store.EXPECT().
		Load(gomock.Any(), testUser).
		DoAndReturn(func(context.Context, uuid.UUID) ([]*planned.PlannedPayment, error) {
			return []*planned.PlannedPayment{persisted}, nil
		})
	store.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

	rent, err := svc.Add(context.Background(), planned.CreateParams{
		Type:            transaction.TypeExpense,
		Name:            "Rent",
		AccountID:       &account,
		Amount:          decimal.NewFromInt(21000),
		Frequency:       planned.FrequencyRecurrent,
		StartDate:       datePtr(2024, 1, 5),
		RecurrenceType:  planned.RecurrenceMonthly,
		MonthlyInterval: 1,
	})
	require.NoError(t, err)
	assert.Len(t, svc.Due(), 1)

	var txs []*transaction.Transaction

	ledger := planned.LedgerFunc(func(_ context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
		tx := ledgerTx(params)
		txs = append(txs, tx)

		return tx, nil
	})

	_, err = svc.CheckAndExecuteDue(context.Background(), testUser, ledger)
	require.NoError(t, err)

	require.Len(t, txs, 1)
	assert.True(t, decimal.NewFromInt(21000).Equal(txs[0].Amount))
	assert.Equal(t, date(2024, 1, 5), txs[0].Date)
	assert.Equal(t, rent.ID, *txs[0].PlannedPaymentID)

	got, ok := svc.Get(rent.ID)
	require.True(t, ok)
	assert.Equal(t, date(2024, 1, 5), *got.LastExecutedAt)
	assert.Equal(t, date(2024, 2, 5), *got.NextExecutionDate)
	assert.Empty(t, svc.Due())

	upcoming := svc.Upcoming(31)
	require.Len(t, upcoming, 1)
	assert.Equal(t, time.February, upcoming[0].NextExecutionDate.Month())
}

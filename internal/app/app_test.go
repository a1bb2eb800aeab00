package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pennywise/internal/app"
	"github.com/MrJamesThe3rd/pennywise/internal/config"
	"github.com/MrJamesThe3rd/pennywise/internal/planned"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

const demoUser = "00000000-0000-0000-0000-000000000001"

func memoryConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Backend = config.BackendMemory
	cfg.App.Timezone = "UTC"
	cfg.App.Port = 8080
	cfg.Auth.DemoUserID = demoUser
	cfg.Planned.NoteMarker = "[Auto]"
	cfg.Server.Timeout = 5 * time.Second

	return cfg
}

func TestApp_MemoryBackendRunsDueCheck(t *testing.T) {
	ctx := context.Background()

	a, err := app.New(ctx, memoryConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	user := uuid.MustParse(demoUser)

	svc, err := a.Planned(ctx, user)
	require.NoError(t, err)

	yesterday := svc.Today().AddDate(0, 0, -1)
	_, err = svc.Add(ctx, planned.CreateParams{
		UserID:        user,
		Type:          transaction.TypeExpense,
		Name:          "Dentist",
		Amount:        decimal.NewFromInt(80),
		Frequency:     planned.FrequencyOneTime,
		ScheduledDate: &yesterday,
	})
	require.NoError(t, err)

	report, err := a.RunDueCheck(ctx, svc, user)
	require.NoError(t, err)
	require.Len(t, report.Executed, 1)
	assert.Empty(t, report.Failed)

	txs, err := a.Transactions.List(ctx, transaction.ListFilter{UserID: user})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "[Auto] Dentist", txs[0].Note)

	report, err = a.RunDueCheck(ctx, svc, user)
	require.NoError(t, err)
	assert.Empty(t, report.Executed)
}

func TestApp_ServerUsesDemoUser(t *testing.T) {
	ctx := context.Background()

	a, err := app.New(ctx, memoryConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	srv, err := a.Server()
	require.NoError(t, err)
	assert.Equal(t, ":8080", srv.Addr)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/planned-payments/due", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestApp_MigrateNeedsPostgres(t *testing.T) {
	a, err := app.New(context.Background(), memoryConfig(), nil)
	require.NoError(t, err)

	_, err = a.Migrate()
	assert.Error(t, err)
	assert.NoError(t, a.Close())
}

package transaction_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pennywise/internal/http/auth"
	httptx "github.com/MrJamesThe3rd/pennywise/internal/http/transaction"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction/store"
)

type txBody struct {
	ID     uuid.UUID `json:"id"`
	Type   string    `json:"type"`
	Amount string    `json:"amount"`
	Payee  string    `json:"payee"`
	Note   string    `json:"note"`
	Date   string    `json:"date"`
}

func routerFor(svc *transaction.Service, user uuid.UUID) http.Handler {
	r := chi.NewRouter()
	r.Use(auth.New("", user).Middleware)
	r.Route("/transactions", httptx.NewHandler(svc).Routes)

	return r
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))

	return rec
}

func TestHandler_CRUD(t *testing.T) {
	svc := transaction.NewService(store.NewMemory())
	h := routerFor(svc, uuid.New())

	rec := do(t, h, http.MethodPost, "/transactions/", map[string]any{
		"type":   "expense",
		"amount": "12.50",
		"payee":  "Bakery",
		"date":   "2024-01-05T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created txBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, "12.5", created.Amount)
	assert.Equal(t, "2024-01-05", created.Date)

	rec = do(t, h, http.MethodPatch, "/transactions/"+created.ID.String(), map[string]any{"note": "bread"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/transactions/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got txBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "bread", got.Note)
	assert.Equal(t, "Bakery", got.Payee)

	rec = do(t, h, http.MethodGet, "/transactions/?type=expense&start_date=2024-01-01&end_date=2024-01-31", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []txBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Len(t, list, 1)

	rec = do(t, h, http.MethodGet, "/transactions/?type=income", nil)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Empty(t, list)

	rec = do(t, h, http.MethodDelete, "/transactions/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/transactions/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_ScopesByUser(t *testing.T) {
	svc := transaction.NewService(store.NewMemory())
	alice := routerFor(svc, uuid.New())
	bob := routerFor(svc, uuid.New())

	rec := do(t, alice, http.MethodPost, "/transactions/", map[string]any{
		"type":   "income",
		"amount": "100",
		"date":   "2024-01-05T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created txBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))

	path := "/transactions/" + created.ID.String()

	assert.Equal(t, http.StatusNotFound, do(t, bob, http.MethodGet, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, bob, http.MethodDelete, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, bob, http.MethodPatch, path, map[string]any{"note": "x"}).Code)

	var list []txBody
	require.NoError(t, json.NewDecoder(do(t, bob, http.MethodGet, "/transactions/", nil).Body).Decode(&list))
	assert.Empty(t, list)
}

func TestHandler_Validation(t *testing.T) {
	svc := transaction.NewService(store.NewMemory())
	h := routerFor(svc, uuid.New())

	tests := []struct {
		name string
		body any
	}{
		{name: "zero amount", body: map[string]any{"type": "expense", "amount": "0"}},
		{name: "unknown type", body: map[string]any{"type": "gift", "amount": "5"}},
		{name: "transfer without accounts", body: map[string]any{"type": "transfer", "amount": "5"}},
		{name: "malformed", body: "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/transactions/", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/transactions/not-a-uuid", nil).Code)
}

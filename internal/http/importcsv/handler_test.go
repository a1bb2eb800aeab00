package importcsv_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pennywise/internal/http/auth"
	"github.com/MrJamesThe3rd/pennywise/internal/http/importcsv"
	"github.com/MrJamesThe3rd/pennywise/internal/importer"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction/store"
)

const statement = "Date;Description;Amount\n" +
	"05/01/2024;Landlord;-21000,00\n" +
	"09/01/2024;Employer;8608,52\n"

func newRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(auth.New("", uuid.New()).Middleware)
	r.Route("/import", importcsv.NewHandler(importer.NewService(), transaction.NewService(store.NewMemory())).Routes)

	return r
}

func upload(t *testing.T, h http.Handler, content string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer

	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "statement.csv")
	require.NoError(t, err)

	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/import/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestHandler_ImportThenConflict(t *testing.T) {
	h := newRouter()

	rec := upload(t, h, statement)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var ok struct {
		Profile  string `json:"profile"`
		Imported int    `json:"imported"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&ok))
	assert.Equal(t, "statement", ok.Profile)
	assert.Equal(t, 2, ok.Imported)

	rec = upload(t, h, statement)
	require.Equal(t, http.StatusConflict, rec.Code)

	var conflict struct {
		New       []json.RawMessage `json:"new"`
		Conflicts []struct {
			Incoming struct {
				Payee string `json:"payee"`
			} `json:"incoming"`
		} `json:"conflicts"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&conflict))
	assert.Empty(t, conflict.New)
	require.Len(t, conflict.Conflicts, 2)
	assert.Equal(t, "Landlord", conflict.Conflicts[0].Incoming.Payee)
}

func TestHandler_Confirm(t *testing.T) {
	h := newRouter()

	body := `{"params":[{"type":"expense","amount":"21000","payee":"Landlord","date":"2024-01-05T00:00:00Z"}]}`

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/import/confirm", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var ok struct {
		Imported int `json:"imported"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&ok))
	assert.Equal(t, 1, ok.Imported)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/import/confirm", strings.NewReader(`{"params":[{"type":"expense","amount":"0"}]}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_BadUpload(t *testing.T) {
	h := newRouter()

	rec := upload(t, h, "foo,bar\n1,2\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/import/", strings.NewReader("")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

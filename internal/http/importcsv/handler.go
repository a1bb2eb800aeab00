package importcsv

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/http/auth"
	"github.com/MrJamesThe3rd/pennywise/internal/importer"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

type Handler struct {
	importSvc *importer.Service
	txSvc     *transaction.Service
}

func NewHandler(importSvc *importer.Service, txSvc *transaction.Service) *Handler {
	return &Handler{
		importSvc: importSvc,
		txSvc:     txSvc,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
	r.Post("/confirm", h.confirmImport)
}

type transactionResponse struct {
	ID            uuid.UUID        `json:"id"`
	Type          transaction.Type `json:"type"`
	Amount        decimal.Decimal  `json:"amount"`
	Payee         string           `json:"payee,omitempty"`
	PaymentMethod string           `json:"payment_method,omitempty"`
	Note          string           `json:"note,omitempty"`
	Date          time.Time        `json:"date"`
	CreatedAt     time.Time        `json:"created_at"`
}

type importSuccessResponse struct {
	Profile      string                `json:"profile,omitempty"`
	Charset      string                `json:"charset,omitempty"`
	Imported     int                   `json:"imported"`
	Transactions []transactionResponse `json:"transactions"`
}

type createParamsDTO struct {
	Type                 transaction.Type `json:"type"`
	Amount               decimal.Decimal  `json:"amount"`
	SourceAccountID      *uuid.UUID       `json:"source_account_id,omitempty"`
	DestinationAccountID *uuid.UUID       `json:"destination_account_id,omitempty"`
	CategoryID           *uuid.UUID       `json:"category_id,omitempty"`
	Payee                string           `json:"payee"`
	PaymentMethod        string           `json:"payment_method"`
	Note                 string           `json:"note"`
	Date                 time.Time        `json:"date"`
}

type conflictDTO struct {
	Incoming createParamsDTO     `json:"incoming"`
	Existing transactionResponse `json:"existing"`
}

type importConflictResponse struct {
	Profile   string            `json:"profile"`
	Charset   string            `json:"charset"`
	New       []createParamsDTO `json:"new"`
	Conflicts []conflictDTO     `json:"conflicts"`
}

type confirmRequest struct {
	Params []createParamsDTO `json:"params"`
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserFrom(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	parsed, err := h.importSvc.Import(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.txSvc.ImportBatch(r.Context(), userID, parsed.Params)
	if err != nil {
		if isValidation(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		slog.Error("failed to import transactions", "error", err, "profile", parsed.Profile)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	if len(result.Conflicts) > 0 {
		resp := importConflictResponse{
			Profile:   parsed.Profile,
			Charset:   string(parsed.Charset),
			New:       make([]createParamsDTO, 0, len(result.New)),
			Conflicts: make([]conflictDTO, 0, len(result.Conflicts)),
		}
		for _, p := range result.New {
			resp.New = append(resp.New, toParamsDTO(p))
		}

		for _, c := range result.Conflicts {
			resp.Conflicts = append(resp.Conflicts, conflictDTO{
				Incoming: toParamsDTO(c.Incoming),
				Existing: toTxResponse(c.Existing),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)

		if err := json.NewEncoder(w).Encode(resp); err != nil {
			slog.Error("failed to encode response", "error", err)
		}

		return
	}

	resp := toSuccessResponse(result.Imported)
	resp.Profile = parsed.Profile
	resp.Charset = string(parsed.Charset)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) confirmImport(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserFrom(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	params := make([]transaction.CreateParams, 0, len(req.Params))
	for _, p := range req.Params {
		params = append(params, transaction.CreateParams{
			Type:                 p.Type,
			Amount:               p.Amount,
			SourceAccountID:      p.SourceAccountID,
			DestinationAccountID: p.DestinationAccountID,
			CategoryID:           p.CategoryID,
			Payee:                p.Payee,
			PaymentMethod:        p.PaymentMethod,
			Note:                 p.Note,
			Date:                 p.Date,
		})
	}

	txs, err := h.txSvc.CreateBatch(r.Context(), userID, params)
	if err != nil {
		if isValidation(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toSuccessResponse(txs)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func isValidation(err error) bool {
	return errors.Is(err, transaction.ErrInvalidAmount) ||
		errors.Is(err, transaction.ErrInvalidType) ||
		errors.Is(err, transaction.ErrMissingAccounts)
}

func toSuccessResponse(txs []*transaction.Transaction) importSuccessResponse {
	responses := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		responses = append(responses, toTxResponse(tx))
	}

	return importSuccessResponse{
		Imported:     len(txs),
		Transactions: responses,
	}
}

func toTxResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:            tx.ID,
		Type:          tx.Type,
		Amount:        tx.Amount,
		Payee:         tx.Payee,
		PaymentMethod: tx.PaymentMethod,
		Note:          tx.Note,
		Date:          tx.Date,
		CreatedAt:     tx.CreatedAt,
	}
}

func toParamsDTO(p transaction.CreateParams) createParamsDTO {
	return createParamsDTO{
		Type:                 p.Type,
		Amount:               p.Amount,
		SourceAccountID:      p.SourceAccountID,
		DestinationAccountID: p.DestinationAccountID,
		CategoryID:           p.CategoryID,
		Payee:                p.Payee,
		PaymentMethod:        p.PaymentMethod,
		Note:                 p.Note,
		Date:                 p.Date,
	}
}

package transaction

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
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

type Handler struct {
	svc *transaction.Service
}

func NewHandler(svc *transaction.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Patch("/{id}", h.update)
}

type createTransactionRequest struct {
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

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserFrom(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx, err := h.svc.Create(r.Context(), transaction.CreateParams{
		UserID:               userID,
		Type:                 req.Type,
		Amount:               req.Amount,
		SourceAccountID:      req.SourceAccountID,
		DestinationAccountID: req.DestinationAccountID,
		CategoryID:           req.CategoryID,
		Payee:                req.Payee,
		PaymentMethod:        req.PaymentMethod,
		Note:                 req.Note,
		Date:                 req.Date,
	})
	if err != nil {
		if isValidation(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		slog.Error("failed to create transaction", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(tx)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserFrom(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	filter := transaction.ListFilter{UserID: userID}

	if s := r.URL.Query().Get("type"); s != "" {
		filter.Type = new(transaction.Type(s))
	}

	if s := r.URL.Query().Get("start_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.StartDate = new(t)
		}
	}

	if s := r.URL.Query().Get("end_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.EndDate = new(t)
		}
	}

	if s := r.URL.Query().Get("planned_payment_id"); s != "" {
		if id, err := uuid.Parse(s); err == nil {
			filter.PlannedPaymentID = new(id)
		}
	}

	txs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(txs)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// owned fetches the transaction named in the URL, answering 404 for rows of
// other users.
func (h *Handler) owned(w http.ResponseWriter, r *http.Request) (*transaction.Transaction, bool) {
	userID, err := auth.UserFrom(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return nil, false
	}

	tx, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			http.Error(w, "transaction not found", http.StatusNotFound)
			return nil, false
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return nil, false
	}

	if tx.UserID != userID {
		http.Error(w, "transaction not found", http.StatusNotFound)
		return nil, false
	}

	return tx, true
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	tx, ok := h.owned(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(tx)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	tx, ok := h.owned(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), tx.ID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type updateTransactionRequest struct {
	Type          *transaction.Type `json:"type,omitempty"`
	Amount        *decimal.Decimal  `json:"amount,omitempty"`
	Payee         *string           `json:"payee,omitempty"`
	PaymentMethod *string           `json:"payment_method,omitempty"`
	Note          *string           `json:"note,omitempty"`
	CategoryID    *uuid.UUID        `json:"category_id,omitempty"`
	Date          *time.Time        `json:"date,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	tx, ok := h.owned(w, r)
	if !ok {
		return
	}

	var req updateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Type != nil {
		tx.Type = *req.Type
	}

	if req.Amount != nil {
		tx.Amount = *req.Amount
	}

	if req.Payee != nil {
		tx.Payee = *req.Payee
	}

	if req.PaymentMethod != nil {
		tx.PaymentMethod = *req.PaymentMethod
	}

	if req.Note != nil {
		tx.Note = *req.Note
	}

	if req.CategoryID != nil {
		tx.CategoryID = req.CategoryID
	}

	if req.Date != nil {
		tx.Date = *req.Date
	}

	if err := h.svc.Update(r.Context(), tx); err != nil {
		if isValidation(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(tx)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func isValidation(err error) bool {
	return errors.Is(err, transaction.ErrInvalidAmount) ||
		errors.Is(err, transaction.ErrInvalidType) ||
		errors.Is(err, transaction.ErrMissingAccounts)
}

package planned

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/http/auth"
	"github.com/MrJamesThe3rd/pennywise/internal/planned"
)

const defaultUpcomingDays = 30

type Handler struct {
	sessions *planned.Sessions
	ledger   planned.Ledger
}

func NewHandler(sessions *planned.Sessions, ledger planned.Ledger) *Handler {
	return &Handler{sessions: sessions, ledger: ledger}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/upcoming", h.upcoming)
	r.Get("/due", h.due)
	r.Post("/execute", h.execute)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/toggle", h.toggle)
}

// session returns the caller's planned payment service, writing the error
// response itself when there is none.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*planned.Service, uuid.UUID, bool) {
	userID, err := auth.UserFrom(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return nil, uuid.Nil, false
	}

	svc, err := h.sessions.For(r.Context(), userID)
	if err != nil {
		slog.Error("failed to load planned payments", "user_id", userID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return nil, uuid.Nil, false
	}

	return svc, userID, true
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	svc, _, ok := h.session(w, r)
	if !ok {
		return
	}

	payments := svc.List()
	if active, _ := strconv.ParseBool(r.URL.Query().Get("active")); active {
		payments = svc.Active()
	}

	writeJSON(w, http.StatusOK, toResponseList(payments))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	svc, userID, ok := h.session(w, r)
	if !ok {
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := svc.Add(r.Context(), req.params())
	if err != nil {
		h.fail(w, userID, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(p))
}

func (h *Handler) upcoming(w http.ResponseWriter, r *http.Request) {
	svc, _, ok := h.session(w, r)
	if !ok {
		return
	}

	days := defaultUpcomingDays

	if s := r.URL.Query().Get("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			http.Error(w, "days must be a non-negative integer", http.StatusBadRequest)
			return
		}

		days = n
	}

	writeJSON(w, http.StatusOK, toResponseList(svc.Upcoming(days)))
}

func (h *Handler) due(w http.ResponseWriter, r *http.Request) {
	svc, _, ok := h.session(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, toResponseList(svc.Due()))
}

func (h *Handler) execute(w http.ResponseWriter, r *http.Request) {
	svc, userID, ok := h.session(w, r)
	if !ok {
		return
	}

	report, err := svc.CheckAndExecuteDue(r.Context(), userID, h.ledger)
	if err != nil {
		h.fail(w, userID, err)
		return
	}

	writeJSON(w, http.StatusOK, toReportResponse(report))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	svc, _, ok := h.session(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	p, found := svc.Get(id)
	if !found {
		http.Error(w, "planned payment not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(p))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	svc, userID, ok := h.session(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := svc.Update(r.Context(), id, req.params())
	if err != nil {
		h.fail(w, userID, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(p))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	svc, userID, ok := h.session(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := svc.Delete(r.Context(), id); err != nil {
		h.fail(w, userID, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request) {
	svc, userID, ok := h.session(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	p, err := svc.ToggleActive(r.Context(), id)
	if err != nil {
		h.fail(w, userID, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(p))
}

// fail writes the error response. A store failure also drops the caller's
// session so the next request starts from what the store holds.
func (h *Handler) fail(w http.ResponseWriter, userID uuid.UUID, err error) {
	if !errors.Is(err, planned.ErrValidation) && !errors.Is(err, planned.ErrNotFound) {
		h.sessions.Forget(userID)
	}

	writeError(w, err)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, planned.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, planned.ErrNotFound):
		http.Error(w, "planned payment not found", http.StatusNotFound)
	default:
		slog.Error("planned payment request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/export"
	"github.com/MrJamesThe3rd/pennywise/internal/http/auth"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

type Handler struct {
	svc *export.Service
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.download)
	r.Get("/summary", h.summary)
}

type summaryResponse struct {
	Count     int             `json:"count"`
	Income    decimal.Decimal `json:"income"`
	Expense   decimal.Decimal `json:"expense"`
	Transfers decimal.Decimal `json:"transfers"`
	Net       decimal.Decimal `json:"net"`
	Planned   int             `json:"planned"`
}

func (h *Handler) filter(w http.ResponseWriter, r *http.Request) (transaction.ListFilter, bool) {
	userID, err := auth.UserFrom(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return transaction.ListFilter{}, false
	}

	filter := transaction.ListFilter{UserID: userID}

	for key, dst := range map[string]**time.Time{"start_date": &filter.StartDate, "end_date": &filter.EndDate} {
		s := r.URL.Query().Get(key)
		if s == "" {
			continue
		}

		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			http.Error(w, "invalid "+key, http.StatusBadRequest)
			return transaction.ListFilter{}, false
		}

		*dst = &t
	}

	return filter, true
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.filter(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer

	summary, err := h.svc.Export(r.Context(), filter, &buf)
	if err != nil {
		slog.Error("failed to export transactions", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	filename := fmt.Sprintf("pennywise_export_%s.csv", time.Now().Format("2006-01-02"))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("X-Export-Count", fmt.Sprint(summary.Count))

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write export", "error", err)
	}
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.filter(w, r)
	if !ok {
		return
	}

	s, err := h.svc.Totals(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(summaryResponse{
		Count:     s.Count,
		Income:    s.Income,
		Expense:   s.Expense,
		Transfers: s.Transfers,
		Net:       s.Net(),
		Planned:   s.Planned,
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/pennywise/internal/http/auth"
	"github.com/MrJamesThe3rd/pennywise/internal/http/export"
	"github.com/MrJamesThe3rd/pennywise/internal/http/importcsv"
	"github.com/MrJamesThe3rd/pennywise/internal/http/planned"
	"github.com/MrJamesThe3rd/pennywise/internal/http/transaction"
)

type Handlers struct {
	Planned      *planned.Handler
	Transactions *transaction.Handler
	Import       *importcsv.Handler
	Export       *export.Handler
}

func New(allowedOrigins []string, authn *auth.Authenticator, h Handlers) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition", "X-Export-Count"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(authn.Middleware)

		r.Route("/planned-payments", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Planned.Routes(r)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Transactions.Routes(r)
		})

		r.Route("/import", h.Import.Routes)
		r.Route("/export", h.Export.Routes)
	})

	return router
}

// Package app assembles services from configuration. The API server, the CLI
// and the TUI share it so they see the same data and the same planned payment
// rules.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/config"
	"github.com/MrJamesThe3rd/pennywise/internal/database"
	"github.com/MrJamesThe3rd/pennywise/internal/export"
	pwhttp "github.com/MrJamesThe3rd/pennywise/internal/http"
	"github.com/MrJamesThe3rd/pennywise/internal/http/auth"
	exportHandler "github.com/MrJamesThe3rd/pennywise/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/pennywise/internal/http/importcsv"
	plannedHandler "github.com/MrJamesThe3rd/pennywise/internal/http/planned"
	txHandler "github.com/MrJamesThe3rd/pennywise/internal/http/transaction"
	"github.com/MrJamesThe3rd/pennywise/internal/importer"
	"github.com/MrJamesThe3rd/pennywise/internal/notify"
	"github.com/MrJamesThe3rd/pennywise/internal/planned"
	plannedStore "github.com/MrJamesThe3rd/pennywise/internal/planned/store"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
	txStore "github.com/MrJamesThe3rd/pennywise/internal/transaction/store"
)

type App struct {
	Config       *config.Config
	Transactions *transaction.Service
	Sessions     *planned.Sessions
	Importer     *importer.Service
	Export       *export.Service

	db           *sql.DB
	plannedStore planned.Store
	plannedOpts  []planned.Option
	closers      []func() error
	logger       *slog.Logger
}

// New connects the configured backend. The caller must Close the result.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{Config: cfg, logger: logger}

	var txRepo transaction.Repository

	switch cfg.App.Backend {
	case config.BackendMemory:
		txRepo = txStore.NewMemory()
		a.plannedStore = plannedStore.NewMemory()

		logger.Info("using in-memory backend, data is lost on exit")
	case config.BackendPostgres:
		db, err := database.New(ctx, cfg.ConnectionString(), database.Pool{
			MaxOpen:     cfg.DB.MaxOpenConns,
			MaxIdle:     cfg.DB.MaxIdleConns,
			MaxLifetime: cfg.DB.ConnMaxLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}

		a.db = db
		a.closers = append(a.closers, db.Close)

		if cfg.DB.AutoMigrate {
			version, err := database.Migrate(db)
			if err != nil {
				a.Close()
				return nil, fmt.Errorf("migrating database: %w", err)
			}

			logger.Info("database migrated", "version", version)
		}

		txRepo = txStore.New(db)
		a.plannedStore = plannedStore.New(db)
	default:
		return nil, fmt.Errorf("unsupported backend %q", cfg.App.Backend)
	}

	loc, err := cfg.Location()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.plannedOpts = []planned.Option{
		planned.WithLocation(loc),
		planned.WithNoteMarker(cfg.Planned.NoteMarker),
		planned.WithLogger(logger),
	}

	if cfg.AMQP.URL != "" {
		pub, err := notify.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue)
		if err != nil {
			logger.Warn("failed to initialize AMQP publisher, continuing without notifications", "error", err)
		} else {
			a.plannedOpts = append(a.plannedOpts, planned.WithNotifier(pub))
			a.closers = append(a.closers, pub.Close)

			logger.Info("publishing executions", "exchange", cfg.AMQP.Exchange, "queue", cfg.AMQP.Queue)
		}
	}

	a.Transactions = transaction.NewService(txRepo)
	a.Sessions = planned.NewSessions(a.plannedStore, a.plannedOpts...)
	a.Importer = importer.NewService()
	a.Export = export.NewService(a.Transactions)

	return a, nil
}

// Planned returns a fresh service loaded for userID. Unlike Sessions it is
// not shared, which suits one-shot commands.
func (a *App) Planned(ctx context.Context, userID uuid.UUID) (*planned.Service, error) {
	svc := planned.NewService(a.plannedStore, a.plannedOpts...)
	if err := svc.Load(ctx, userID); err != nil {
		return nil, err
	}

	return svc, nil
}

// RunDueCheck executes everything due for userID against the ledger and logs
// the outcome.
func (a *App) RunDueCheck(ctx context.Context, svc *planned.Service, userID uuid.UUID) (*planned.ExecutionReport, error) {
	report, err := svc.CheckAndExecuteDue(ctx, userID, a.Transactions)
	if err != nil {
		return nil, err
	}

	a.logger.Info("due check finished",
		"user_id", userID,
		"executed", len(report.Executed),
		"failed", len(report.Failed))

	return report, nil
}

func (a *App) Router() (http.Handler, error) {
	demoUser, err := a.Config.DemoUser()
	if err != nil {
		return nil, err
	}

	authn := auth.New(a.Config.Auth.JWTSecret, demoUser)
	if a.Config.Auth.JWTSecret == "" {
		a.logger.Warn("no JWT secret configured, all requests run as the demo user", "user_id", demoUser)
	}

	return pwhttp.New(a.Config.CORS.AllowedOrigins, authn, pwhttp.Handlers{
		Planned:      plannedHandler.NewHandler(a.Sessions, a.Transactions),
		Transactions: txHandler.NewHandler(a.Transactions),
		Import:       importHandler.NewHandler(a.Importer, a.Transactions),
		Export:       exportHandler.NewHandler(a.Export),
	}), nil
}

// Server wraps the router with the configured port and timeouts.
func (a *App) Server() (*http.Server, error) {
	router, err := a.Router()
	if err != nil {
		return nil, err
	}

	timeout := a.Config.Server.Timeout

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", a.Config.App.Port),
		Handler:           http.TimeoutHandler(router, timeout, "request timed out"),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout + 5*time.Second,
	}, nil
}

// Migrate applies pending migrations. It fails for the memory backend.
func (a *App) Migrate() (uint, error) {
	if a.db == nil {
		return 0, errors.New("migrations need the postgres backend")
	}

	return database.Migrate(a.db)
}

func (a *App) Close() error {
	var errs []error

	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}

	a.closers = nil

	return errors.Join(errs...)
}

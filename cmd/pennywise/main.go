package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/pennywise/internal/app"
	"github.com/MrJamesThe3rd/pennywise/internal/commands"
	"github.com/MrJamesThe3rd/pennywise/internal/config"
)

func main() {
	_ = godotenv.Load()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	load := func(ctx context.Context) (*app.App, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}

		return app.New(ctx, cfg, slog.Default())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := commands.NewRootCommand(load).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

package config_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pennywise/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "Pennywise", cfg.App.Name)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, config.BackendPostgres, cfg.App.Backend)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
	assert.Equal(t, "[Auto]", cfg.Planned.NoteMarker)
	assert.Equal(t, 25, cfg.DB.MaxOpenConns)
	assert.Equal(t, 5*time.Minute, cfg.DB.ConnMaxLifetime)
	assert.Equal(t, "postgres://postgres:@localhost:5432/pennywise?sslmode=disable", cfg.ConnectionString())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoad_FromEnv(t *testing.T) {
	user := uuid.New()

	t.Setenv("DATA_BACKEND", "Memory")
	t.Setenv("APP_TIMEZONE", "Europe/Lisbon")
	t.Setenv("AUTH_DEMO_USER_ID", user.String())
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("PLANNED_NOTE_MARKER", "[Planned]")
	t.Setenv("SERVER_TIMEOUT", "5s")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.BackendMemory, cfg.App.Backend)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "[Planned]", cfg.Planned.NoteMarker)
	assert.Equal(t, 5*time.Second, cfg.Server.Timeout)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Lisbon", loc.String())

	got, err := cfg.DemoUser()
	require.NoError(t, err)
	assert.Equal(t, user, got)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "UnknownBackend", key: "DATA_BACKEND", val: "sqlite"},
		{name: "UnknownTimezone", key: "APP_TIMEZONE", val: "Mars/Olympus"},
		{name: "BadDemoUser", key: "AUTH_DEMO_USER_ID", val: "not-a-uuid"},
		{name: "BadPort", key: "PORT", val: "eighty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

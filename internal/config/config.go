package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	App struct {
		Name     string `envconfig:"APP_NAME" default:"Pennywise"`
		Port     int    `envconfig:"PORT" default:"8080"`
		Timezone string `envconfig:"APP_TIMEZONE" default:"UTC"`
		// Backend selects where data lives: "postgres" or "memory" for demo mode.
		Backend string `envconfig:"DATA_BACKEND" default:"postgres"`
	}

	DB struct {
		Host        string `envconfig:"DB_HOST" default:"localhost"`
		Port        int    `envconfig:"DB_PORT" default:"5432"`
		User        string `envconfig:"DB_USER" default:"postgres"`
		Password    string `envconfig:"DB_PASSWORD" default:""`
		Name        string `envconfig:"DB_NAME" default:"pennywise"`
		AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"true"`

		MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
		MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
		ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Auth struct {
		JWTSecret string `envconfig:"AUTH_JWT_SECRET"`
		// DemoUserID is used when no JWT secret is configured.
		DemoUserID string `envconfig:"AUTH_DEMO_USER_ID" default:"00000000-0000-0000-0000-000000000001"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	}

	Planned struct {
		NoteMarker string `envconfig:"PLANNED_NOTE_MARKER" default:"[Auto]"`
	}

	AMQP struct {
		URL      string `envconfig:"AMQP_URL"`
		Exchange string `envconfig:"AMQP_EXCHANGE" default:"pennywise.planned"`
		Queue    string `envconfig:"AMQP_QUEUE" default:"planned.executed"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// Location is the time zone that decides which calendar day "today" is.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.App.Timezone, err)
	}

	return loc, nil
}

func (c *Config) DemoUser() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Auth.DemoUserID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parsing demo user id: %w", err)
	}

	return id, nil
}

func (c *Config) validate() error {
	c.App.Backend = strings.ToLower(strings.TrimSpace(c.App.Backend))

	switch c.App.Backend {
	case BackendPostgres, BackendMemory:
	default:
		return fmt.Errorf("unknown data backend %q", c.App.Backend)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if _, err := c.DemoUser(); err != nil {
		return err
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

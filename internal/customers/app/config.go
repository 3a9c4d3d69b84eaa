package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env                 string        `env:"ENV" env-default:"dev" validate:"required"`
	LogLevel            string        `env:"LOG_LEVEL" env-default:"info" validate:"oneof=debug info warn warning error"`
	LogFormat           string        `env:"LOG_FORMAT" env-default:"json" validate:"oneof=json text"`
	Port                int           `env:"PORT" env-default:"8080" validate:"min=1,max=65535"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" env-default:"10s" validate:"gt=0"`

	// DatabaseDriver selects the store: sqlite (DatabaseFile) or postgres (DatabaseURL).
	DatabaseDriver string `env:"DATABASE_DRIVER" env-default:"sqlite" validate:"oneof=sqlite postgres"`
	DatabaseFile   string `env:"DATABASE_FILE" env-default:"customers.db" validate:"required_if=DatabaseDriver sqlite"`
	DatabaseURL    string `env:"DATABASE_URL" validate:"required_if=DatabaseDriver postgres"`

	IDPBaseURL  string        `env:"IDP_BASE_URL" env-default:"http://localhost:8180" validate:"required,url"`
	IDPRealm    string        `env:"IDP_REALM" env-default:"customer-service" validate:"required"`
	IDPClientID string        `env:"IDP_CLIENT_ID" env-default:"customer-service-cli" validate:"required"`
	IDPTimeout  time.Duration `env:"IDP_TIMEOUT" env-default:"10s" validate:"gt=0"`

	// AuthEnabled turns bearer verification and role checks on the client
	// endpoints on or off. Off is meant for local use only.
	AuthEnabled bool `env:"AUTH_ENABLED" env-default:"true"`

	// AuthIssuer defaults to the realm URL of the identity provider.
	AuthIssuer             string        `env:"AUTH_ISSUER"`
	AuthAudience           []string      `env:"AUTH_AUDIENCE" env-separator:","`
	JWKSMinRefreshInterval time.Duration `env:"JWKS_MIN_REFRESH_INTERVAL" env-default:"1m" validate:"gte=0"`
}

// LoadConfig exports the optional secrets manager payload and .env file into
// the environment, then reads and validates Config from it.
func LoadConfig() (Config, error) {
	LoadEnv(".env", slog.Default())
	return ReadConfig()
}

// ReadConfig reads Config from the current environment without touching any
// external source.
func ReadConfig() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

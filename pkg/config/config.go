package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	Terminal     TerminalConfig
	DB           DBConfig
	JWT          JWTConfig
	Security     SecurityConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Terminal.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"AVPOS_APP_ENV" default:"dev"`
	Port         string `envconfig:"AVPOS_APP_PORT" default:"8741"`
	LogLevel     string `envconfig:"AVPOS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AVPOS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// TerminalConfig identifies this device within the multi-terminal fleet.
// A salesman terminal carries its short alphabetic salesman ID; the admin
// station runs with role "admin" and no salesman ID.
type TerminalConfig struct {
	Role       string `envconfig:"AVPOS_TERMINAL_ROLE" default:"salesman"`
	SalesmanID string `envconfig:"AVPOS_SALESMAN_ID"`
}

func (t TerminalConfig) IsAdmin() bool {
	return strings.EqualFold(t.Role, "admin")
}

func (t TerminalConfig) validate() error {
	switch strings.ToLower(t.Role) {
	case "admin":
		return nil
	case "salesman":
		if strings.TrimSpace(t.SalesmanID) == "" {
			return fmt.Errorf("AVPOS_SALESMAN_ID is required for salesman terminals")
		}
		return nil
	default:
		return fmt.Errorf("invalid terminal role %q (want admin or salesman)", t.Role)
	}
}

type DBConfig struct {
	Path string `envconfig:"AVPOS_DB_PATH" default:"avpos.db"`

	MaxOpenConns    int           `envconfig:"AVPOS_DB_MAX_OPEN_CONNS" default:"1"`
	MaxIdleConns    int           `envconfig:"AVPOS_DB_MAX_IDLE_CONNS" default:"1"`
	ConnMaxLifetime time.Duration `envconfig:"AVPOS_DB_CONN_MAX_LIFETIME" default:"0"`
	BusyTimeout     time.Duration `envconfig:"AVPOS_DB_BUSY_TIMEOUT" default:"5s"`
}

// DSN renders the sqlite connection string for the configured database file.
func (d DBConfig) DSN() string {
	dsn := d.Path
	if d.BusyTimeout > 0 {
		dsn = fmt.Sprintf("%s?_busy_timeout=%d", dsn, d.BusyTimeout.Milliseconds())
	}
	return dsn
}

type JWTConfig struct {
	Secret            string `envconfig:"AVPOS_JWT_SECRET" default:"local-terminal-secret"`
	Issuer            string `envconfig:"AVPOS_JWT_ISSUER" default:"avpos"`
	ExpirationMinutes int    `envconfig:"AVPOS_JWT_EXPIRATION_MINUTES" default:"720"`
}

// SecurityConfig holds the login-gate shared secrets. These gate the local
// UI only; nothing here is a real auth system and the sync files carry no
// credentials.
type SecurityConfig struct {
	AdminSecret    string `envconfig:"AVPOS_ADMIN_SECRET" default:"ADMIN"`
	MaintenanceKey string `envconfig:"AVPOS_MAINTENANCE_KEY" default:"AV999"`
	BcryptCost     int    `envconfig:"AVPOS_BCRYPT_COST" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"AVPOS_FEATURE_AUTO_MIGRATE" default:"true"`
}

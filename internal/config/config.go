package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type DatabaseOptions struct {
	Driver string `env:"DB_DRIVER" envDefault:"sqlite"` // sqlite or pgx
	DSN    string `env:"DB_DSN"`
}

type RedisOptions struct {
	Addr      string        `env:"REDIS_ADDR"`
	Password  string        `env:"REDIS_PASSWORD"`
	DB        int           `env:"REDIS_DB" envDefault:"0"`
	AgendaTTL time.Duration `env:"AGENDA_CACHE_TTL" envDefault:"60s"`
}

func (r RedisOptions) Enabled() bool { return r.Addr != "" }

type UpstreamOptions struct {
	BaseURL      string        `env:"UPSTREAM_BASE_URL"`
	APIToken     string        `env:"UPSTREAM_API_TOKEN"`
	SyncInterval time.Duration `env:"SYNC_INTERVAL" envDefault:"120s"`
}

func (u UpstreamOptions) Enabled() bool { return u.BaseURL != "" }

type OIDCOptions struct {
	IssuerURL    string `env:"OIDC_ISSUER"`
	ClientID     string `env:"OIDC_CLIENT_ID"`
	ClientSecret string `env:"OIDC_CLIENT_SECRET"`
	RedirectURI  string `env:"OIDC_REDIRECT_URI"`
	LogoutURL    string `env:"OIDC_LOGOUT_URL"`
}

// Missing reports whether any OIDC setting is absent; OIDC is then disabled.
func (o OIDCOptions) Missing() bool {
	return o.IssuerURL == "" || o.ClientID == "" || o.ClientSecret == "" || o.RedirectURI == "" || o.LogoutURL == ""
}

// EnvParams is the full runtime configuration.
type EnvParams struct {
	JWTToken        string `env:"JWT_TOKEN"`
	ApiPort         string `env:"API_PORT" envDefault:"9080"`
	WebUiUrl        string `env:"WEB_UI_BASE_URL" envDefault:"http://localhost:5173"`
	DataPath        string `env:"DATA_STORAGE_PATH" envDefault:"./data"`
	CertFilePath    string `env:"CERT_FILE_PATH"`
	KeyFilePath     string `env:"KEY_FILE_PATH"`
	LogLevel        string `env:"LOG_LEVEL" envDefault:"info"`
	AgencyAccountID int    `env:"AGENCY_ACCOUNT_ID" envDefault:"1"`

	Database DatabaseOptions
	Redis    RedisOptions
	Upstream UpstreamOptions
	OIDC     OIDCOptions
}

// DbPath is the SQLite file used when no DSN is configured.
func (p EnvParams) DbPath() string {
	return filepath.Join(p.DataPath, "database", "leadawaker.db")
}

// SessionPath is the BuntDB file holding OIDC tokens and app context.
func (p EnvParams) SessionPath() string {
	return filepath.Join(p.DataPath, "database", "sessions.db")
}

// DSN resolves the connection string for the configured driver.
func (p EnvParams) DSN() string {
	if p.Database.DSN != "" {
		return p.Database.DSN
	}
	return p.DbPath()
}

// TLSEnabled is true when both certificate paths are set.
func (p EnvParams) TLSEnabled() bool {
	return p.CertFilePath != "" && p.KeyFilePath != ""
}

// Validate joins every configuration problem into one error.
func (p EnvParams) Validate() error {
	var errs []error
	if p.JWTToken == "" {
		errs = append(errs, errors.New("JWT_TOKEN environment variable must be set"))
	}
	switch p.Database.Driver {
	case "sqlite":
	case "pgx":
		if p.Database.DSN == "" {
			errs = append(errs, errors.New("DB_DSN is required when DB_DRIVER is pgx"))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be 'sqlite' or 'pgx', got %q", p.Database.Driver))
	}
	if p.AgencyAccountID <= 0 {
		errs = append(errs, fmt.Errorf("AGENCY_ACCOUNT_ID must be positive, got %d", p.AgencyAccountID))
	}
	if p.Upstream.Enabled() && p.Upstream.SyncInterval <= 0 {
		errs = append(errs, errors.New("SYNC_INTERVAL must be > 0"))
	}
	if p.Redis.Enabled() && p.Redis.AgendaTTL <= 0 {
		errs = append(errs, errors.New("AGENDA_CACHE_TTL must be > 0"))
	}
	if p.TLSEnabled() {
		if _, err := os.Stat(p.CertFilePath); err != nil {
			errs = append(errs, fmt.Errorf("cert file: %w", err))
		}
		if _, err := os.Stat(p.KeyFilePath); err != nil {
			errs = append(errs, fmt.Errorf("key file: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Load reads .env files when present, then the process environment.
func Load(envFiles ...string) (EnvParams, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				return EnvParams{}, fmt.Errorf("load %s: %w", f, err)
			}
		}
	}

	var p EnvParams
	if err := env.Parse(&p); err != nil {
		return EnvParams{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := p.Validate(); err != nil {
		return EnvParams{}, err
	}
	return p, nil
}

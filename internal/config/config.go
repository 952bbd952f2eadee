package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DefaultAdminPassword is the bootstrap password used when ADMIN_PASSWORD is unset.
const DefaultAdminPassword = "admin123"

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port     int    `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Version  string `envconfig:"VERSION" default:"dev"`

	DatabaseURL   string `envconfig:"DATABASE_URL" default:""`
	SQLitePath    string `envconfig:"SQLITE_PATH" default:""`
	MockDBPath    string `envconfig:"MOCKDB_PATH" default:".mockdb.json"`
	FormsSeedPath string `envconfig:"FORMS_SEED_PATH" default:""`

	BasePath    string `envconfig:"BASE_PATH" default:""`
	EmailDomain string `envconfig:"EMAIL_DOMAIN" default:"@unidas.com.br"`
	UIDir       string `envconfig:"UI_DIR" default:""`

	AdminID       string `envconfig:"ADMIN_ID" default:"admin-001-unidas"`
	AdminEmail    string `envconfig:"ADMIN_EMAIL" default:"admin@unidas.com.br"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:"admin123"`
	AdminName     string `envconfig:"ADMIN_NAME" default:"Administrador"`

	SessionTTL     time.Duration `envconfig:"SESSION_TTL" default:"168h"`
	SessionSecret  string        `envconfig:"SESSION_SECRET" default:""`
	CookieSecure   bool          `envconfig:"COOKIE_SECURE" default:"false"`
	PasswordScheme string        `envconfig:"PASSWORD_SCHEME" default:"sha256"`
	BcryptCost     int           `envconfig:"BCRYPT_COST" default:"12"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS"`
}

// Load reads configuration from environment variables into a Config struct.
// A .env file in the working directory is applied first when present; it
// never overrides variables already set in the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	cfg.BasePath = NormalizeBasePath(cfg.BasePath)
	cfg.EmailDomain = strings.TrimSpace(cfg.EmailDomain)

	switch cfg.PasswordScheme {
	case "sha256", "bcrypt":
	default:
		return nil, fmt.Errorf("PASSWORD_SCHEME must be sha256 or bcrypt, got %q", cfg.PasswordScheme)
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}

	return &cfg, nil
}

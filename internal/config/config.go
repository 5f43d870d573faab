package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/osse101/pointshop/internal/domain"
)

// Config holds the application configuration
type Config struct {
	Port        int    `envconfig:"PORT" default:"8080" validate:"gte=0,lte=65535"`
	APIKey      string `envconfig:"API_KEY" validate:"required"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn warning error DEBUG INFO WARN ERROR"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"text" validate:"oneof=text json"`
	ServiceName string `envconfig:"SERVICE_NAME" default:"pointshop"`
	Version     string `envconfig:"VERSION" default:"dev"`
	Environment string `envconfig:"ENVIRONMENT" default:"dev"`
	LogDir      string `envconfig:"LOG_DIR"`

	TrustedProxies []string      `envconfig:"TRUSTED_PROXIES"`
	RequestLimit   int           `envconfig:"REQUEST_LIMIT" default:"1000" validate:"gte=1"`
	RateWindow     time.Duration `envconfig:"RATE_WINDOW" default:"5m" validate:"gt=0"`

	DBUser      string        `envconfig:"DB_USER" default:"postgres"`
	DBPassword  string        `envconfig:"DB_PASSWORD" default:"postgres"`
	DBHost      string        `envconfig:"DB_HOST" default:"localhost"`
	DBPort      string        `envconfig:"DB_PORT" default:"5432"`
	DBName      string        `envconfig:"DB_NAME" default:"pointshop"`
	DBMaxConns  int           `envconfig:"DB_MAX_CONNS" default:"10" validate:"gte=1"`
	DBMaxIdle   time.Duration `envconfig:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
	DBMaxLife   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"1h"`
	AutoMigrate bool          `envconfig:"AUTO_MIGRATE" default:"true"`

	// STORE_BACKEND=memory serializes all purchases and gate checks and is
	// for tests and local development only
	StoreBackend string `envconfig:"STORE_BACKEND" default:"postgres" validate:"oneof=postgres memory"`

	// Ledger adapter
	LedgerBackend       string        `envconfig:"LEDGER_BACKEND" default:"postgres" validate:"oneof=postgres http redis memory"`
	LedgerURL           string        `envconfig:"LEDGER_URL" validate:"required_if=LedgerBackend http"`
	RedisURL            string        `envconfig:"REDIS_URL" validate:"required_if=LedgerBackend redis"`
	LedgerFailOpen      bool          `envconfig:"LEDGER_FAIL_OPEN" default:"false"`
	DefaultBalance      int64         `envconfig:"DEFAULT_BALANCE" default:"1000" validate:"gte=0"`
	ExternalCallTimeout time.Duration `envconfig:"EXTERNAL_CALL_TIMEOUT" default:"3s" validate:"gt=0"`

	// Catalog defaults
	DefaultMaxUses         int `envconfig:"DEFAULT_MAX_USES" default:"10" validate:"gte=1"`
	DefaultCooldownMinutes int `envconfig:"DEFAULT_COOLDOWN_MINUTES" default:"5" validate:"gte=0"`
	DefaultRoleLevel       int `envconfig:"DEFAULT_ROLE_LEVEL" default:"1" validate:"gte=0,lte=5"`

	// CatalogSeedFile is applied at startup when set
	CatalogSeedFile string `envconfig:"CATALOG_SEED_FILE"`

	// Event publishing
	EventMaxRetries     int           `envconfig:"EVENT_MAX_RETRIES" default:"5" validate:"gte=0"`
	EventRetryDelay     time.Duration `envconfig:"EVENT_RETRY_DELAY" default:"2s"`
	EventDeadLetterPath string        `envconfig:"EVENT_DEADLETTER_PATH" default:"logs/event_deadletter.jsonl"`

	// Gate
	GateCacheSize int           `envconfig:"GATE_CACHE_SIZE" default:"256" validate:"gte=1"`
	GateCacheTTL  time.Duration `envconfig:"GATE_CACHE_TTL" default:"30s"`
	ElevationTTL  time.Duration `envconfig:"ELEVATION_TTL" default:"1m" validate:"gt=0"`

	// AdminUsers holds "platform:userId" entries; Admins is the parsed form
	AdminUsers []string `envconfig:"ADMIN_USERS"`
	Admins     []domain.Identity `ignored:"true"`
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf(ErrMsgProcessEnvFailed, err)
	}

	if cfg.APIKey == "" {
		return nil, errors.New(ErrMsgAPIKeyRequired)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf(ErrMsgInvalidConfig, err)
	}

	admins, err := parseAdmins(cfg.AdminUsers)
	if err != nil {
		return nil, err
	}
	cfg.Admins = admins

	return &cfg, nil
}

func parseAdmins(entries []string) ([]domain.Identity, error) {
	admins := make([]domain.Identity, 0, len(entries))
	for _, entry := range entries {
		if entry == "" {
			continue
		}
		id, err := domain.ParseIdentity(entry)
		if err != nil {
			return nil, fmt.Errorf(ErrMsgInvalidAdminEntry, entry, err)
		}
		admins = append(admins, id)
	}
	return admins, nil
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}

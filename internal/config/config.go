package config

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverCRDB   = "crdb"
	DriverMemory = "memory"
)

type Config struct {
	HTTPAddr      string `envconfig:"HTTP_ADDR" default:":8080"`
	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"crdb"`
	CRDBDSN       string `envconfig:"CRDB_DSN"`
	MongoURI      string `envconfig:"MONGO_URI"`
	MongoDB       string `envconfig:"MONGO_DB" default:"bootcamps"`
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RabbitURL     string `envconfig:"RABBIT_URL"`
	OTLPEndpoint  string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	Djamo Djamo `envconfig:"DJAMO"`

	PublicBaseURL string        `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:3000"`
	JWTSecret     string        `envconfig:"JWT_SECRET"`
	JWTTTL        time.Duration `envconfig:"JWT_TTL" default:"24h"`

	IdempotencyTTL  time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"1h"`
	CatalogCacheTTL time.Duration `envconfig:"CATALOG_CACHE_TTL" default:"5m"`
	ChargeLockTTL   time.Duration `envconfig:"CHARGE_LOCK_TTL" default:"30s"`

	ReconcileInterval time.Duration `envconfig:"RECONCILE_INTERVAL" default:"1m"`
	ReconcileAfter    time.Duration `envconfig:"RECONCILE_AFTER" default:"2m"`
	PollMaxAttempts   int           `envconfig:"POLL_MAX_ATTEMPTS" default:"10"`
	PollInterval      time.Duration `envconfig:"POLL_INTERVAL" default:"3s"`

	SendGridAPIKey string `envconfig:"SENDGRID_API_KEY"`
	MailFrom       string `envconfig:"MAIL_FROM" default:"no-reply@bigfive.ci"`
	MailFromName   string `envconfig:"MAIL_FROM_NAME" default:"Big Five"`
}

// Djamo holds the payment gateway settings. The API path is used only when
// both the key and the company id are set.
type Djamo struct {
	BaseURL          string        `envconfig:"BASE_URL" default:"https://api.djamo.com"`
	APIKey           string        `envconfig:"API_KEY"`
	CompanyID        string        `envconfig:"COMPANY_ID"`
	WebhookSecret    string        `envconfig:"WEBHOOK_SECRET"`
	StaticPaymentURL string        `envconfig:"STATIC_PAYMENT_URL" default:"https://pay.djamo.com/2bqug"`
	Timeout          time.Duration `envconfig:"TIMEOUT" default:"15s"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "process env")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case DriverMemory:
	case DriverCRDB:
		if c.CRDBDSN == "" {
			return errors.New("CRDB_DSN is required with the crdb storage driver")
		}
	default:
		return errors.Newf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.PollMaxAttempts < 1 {
		return errors.New("POLL_MAX_ATTEMPTS must be positive")
	}
	return nil
}

func (c *Config) Memory() bool {
	return c.StorageDriver == DriverMemory
}

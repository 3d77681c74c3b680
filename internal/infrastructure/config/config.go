package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// EnvPrefix namespaces every variable the service reads.
const EnvPrefix = "FOODCART"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Config holds environment-driven configuration.
type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Checkout CheckoutConfig
	Square   SquareConfig
	Kafka    KafkaConfig
	Metrics  MetricsConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Checkout.validate(); err != nil {
		return nil, err
	}
	cfg.Checkout.Currency = strings.ToUpper(cfg.Checkout.Currency)
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FOODCART_APP_ENV" default:"dev"`
	Addr         string `envconfig:"FOODCART_APP_ADDR" default:":8080"`
	LogLevel     string `envconfig:"FOODCART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FOODCART_LOG_WARN_STACK" default:"false"`
	CORSOrigins  string `envconfig:"FOODCART_CORS_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

type DBConfig struct {
	URL             string        `envconfig:"FOODCART_DATABASE_URL"`
	AutoMigrate     bool          `envconfig:"FOODCART_DB_AUTO_MIGRATE" default:"true"`
	MaxOpenConns    int           `envconfig:"FOODCART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FOODCART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FOODCART_DB_CONN_MAX_LIFETIME" default:"1h"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FOODCART_REDIS_URL"`
	Address      string        `envconfig:"FOODCART_REDIS_ADDR"`
	Password     string        `envconfig:"FOODCART_REDIS_PASSWORD"`
	DB           int           `envconfig:"FOODCART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FOODCART_REDIS_POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"FOODCART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FOODCART_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"FOODCART_REDIS_WRITE_TIMEOUT" default:"3s"`
	SessionTTL   time.Duration `envconfig:"FOODCART_SESSION_TTL" default:"2h"`
}

// Enabled reports whether a Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	Secret string        `envconfig:"FOODCART_JWT_SECRET" required:"true"`
	TTL    time.Duration `envconfig:"FOODCART_JWT_TTL" default:"72h"`
}

// CheckoutConfig carries the flat surcharges and the delivery-fee policy
// applied by the checkout aggregator.
type CheckoutConfig struct {
	Tax            decimal.Decimal `envconfig:"FOODCART_CHECKOUT_TAX" default:"15"`
	PlatformFee    decimal.Decimal `envconfig:"FOODCART_CHECKOUT_PLATFORM_FEE" default:"7"`
	Currency       string          `envconfig:"FOODCART_CHECKOUT_CURRENCY" default:"INR"`
	FeePolicy      string          `envconfig:"FOODCART_CHECKOUT_FEE_POLICY" default:"max"`
	RedirectDelay  time.Duration   `envconfig:"FOODCART_CHECKOUT_REDIRECT_DELAY" default:"3s"`
	IdempotencyTTL time.Duration   `envconfig:"FOODCART_CHECKOUT_IDEMPOTENCY_TTL" default:"24h"`
}

func (c CheckoutConfig) validate() error {
	if c.Tax.IsNegative() {
		return fmt.Errorf("checkout tax must not be negative")
	}
	if c.PlatformFee.IsNegative() {
		return fmt.Errorf("checkout platform fee must not be negative")
	}
	if !isCurrencyCode(c.Currency) {
		return fmt.Errorf("checkout currency must be a three-letter ISO 4217 code, got %q", c.Currency)
	}
	return nil
}

func isCurrencyCode(v string) bool {
	if len(v) != 3 {
		return false
	}
	for _, r := range strings.ToUpper(v) {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

type SquareConfig struct {
	AccessToken string `envconfig:"FOODCART_SQUARE_ACCESS_TOKEN"`
	Env         string `envconfig:"FOODCART_SQUARE_ENV" default:"sandbox"`
	LocationID  string `envconfig:"FOODCART_SQUARE_LOCATION_ID"`
}

// Enabled reports whether server-side charging through Square is configured.
func (s SquareConfig) Enabled() bool {
	return strings.TrimSpace(s.AccessToken) != ""
}

type KafkaConfig struct {
	Brokers    []string `envconfig:"FOODCART_KAFKA_BROKERS"`
	OrderTopic string   `envconfig:"FOODCART_KAFKA_ORDER_TOPIC" default:"orders.placed"`
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"FOODCART_METRICS_ENABLED" default:"true"`
	Path    string `envconfig:"FOODCART_METRICS_PATH" default:"/metrics"`
}

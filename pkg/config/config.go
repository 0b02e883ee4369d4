package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	EnvPrefix = "eventshop"

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Checkout CheckoutConfig
	Points   PointsConfig
	Shipping ShippingConfig
	Orders   OrdersConfig
	Cron     CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"EVENTSHOP_APP_ENV" required:"true"`
	Port         string `envconfig:"EVENTSHOP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"EVENTSHOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"EVENTSHOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"EVENTSHOP_DB_DSN"`
	Driver string `envconfig:"EVENTSHOP_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"EVENTSHOP_DB_HOST"`
	Port     int    `envconfig:"EVENTSHOP_DB_PORT" default:"5432"`
	User     string `envconfig:"EVENTSHOP_DB_USER"`
	Password string `envconfig:"EVENTSHOP_DB_PASSWORD"`
	Name     string `envconfig:"EVENTSHOP_DB_NAME"`
	SSLMode  string `envconfig:"EVENTSHOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"EVENTSHOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"EVENTSHOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"EVENTSHOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"EVENTSHOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"EVENTSHOP_DB_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"EVENTSHOP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"EVENTSHOP_REDIS_ADDR"`
	Password     string        `envconfig:"EVENTSHOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"EVENTSHOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"EVENTSHOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"EVENTSHOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"EVENTSHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"EVENTSHOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"EVENTSHOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"EVENTSHOP_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"EVENTSHOP_JWT_ISSUER" required:"true"`
}

// CheckoutConfig drives the total assembly stage. Tax is applied to the
// pre-discount subtotal.
type CheckoutConfig struct {
	TaxRate   decimal.Decimal `envconfig:"EVENTSHOP_CHECKOUT_TAX_RATE" default:"0.07"`
	Currency  string          `envconfig:"EVENTSHOP_CHECKOUT_CURRENCY" default:"THB"`
	StoreName string          `envconfig:"EVENTSHOP_CHECKOUT_STORE_NAME" required:"true"`
}

// PointsConfig bounds loyalty point redemption. MaxRedeem of zero means no
// upper bound.
type PointsConfig struct {
	ExchangeRate decimal.Decimal `envconfig:"EVENTSHOP_POINTS_EXCHANGE_RATE" default:"0.1"`
	MinRedeem    int             `envconfig:"EVENTSHOP_POINTS_MIN_REDEEM" default:"0"`
	MaxRedeem    int             `envconfig:"EVENTSHOP_POINTS_MAX_REDEEM" default:"0"`
}

type ShippingConfig struct {
	BaseURL     string        `envconfig:"EVENTSHOP_SHIPPING_BASE_URL" required:"true"`
	Timeout     time.Duration `envconfig:"EVENTSHOP_SHIPPING_TIMEOUT" default:"5s"`
	MaxAttempts int           `envconfig:"EVENTSHOP_SHIPPING_MAX_ATTEMPTS" default:"3"`
}

type OrdersConfig struct {
	RPCBaseURL string        `envconfig:"EVENTSHOP_ORDERS_RPC_BASE_URL" required:"true"`
	Timeout    time.Duration `envconfig:"EVENTSHOP_ORDERS_TIMEOUT" default:"15s"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"EVENTSHOP_CRON_INTERVAL" default:"1h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		"EVENTSHOP_DB_HOST": db.Host,
		"EVENTSHOP_DB_USER": db.User,
		"EVENTSHOP_DB_NAME": db.Name,
	}
	for _, key := range []string{"EVENTSHOP_DB_HOST", "EVENTSHOP_DB_USER", "EVENTSHOP_DB_NAME"} {
		if values[key] == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either EVENTSHOP_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

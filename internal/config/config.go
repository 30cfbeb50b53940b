package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/text/currency"
)

const (
	EnvLocal = "local"
	EnvProd  = "prod"

	devSessionSecret = "local-dev-session-secret"
)

type Config struct {
	AppEnv      string
	ServiceName string
	ServerPort  int
	LogLevel    string

	DBDriver    string
	DatabaseURL string

	SessionSecret []byte
	SessionTTL    time.Duration
	CookieSecure  bool
	CSRFEnabled   bool

	RedisAddr string
	CacheTTL  time.Duration

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	SeedUsername string
	SeedPassword string

	Currency currency.Unit
}

func defaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", EnvLocal)
	v.SetDefault("SERVICE_NAME", "shopapi")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_URL", "ecommerce.db")
	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("CSRF_ENABLED", false)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("CACHE_TTL", "10m")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("ES_URL", "")
	v.SetDefault("ES_USER", "")
	v.SetDefault("ES_PASSWORD", "")
	v.SetDefault("ES_INDEX", "products")
	v.SetDefault("SEED_USERNAME", "")
	v.SetDefault("SEED_PASSWORD", "")
	v.SetDefault("CURRENCY", "USD")
}

// Load reads .env (if present) into the process environment and then resolves
// every setting from the environment, falling back to defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found: %v. Using system environment variables", err)
	}
	return FromViper(NewViper())
}

func NewViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	defaults(v)
	return v
}

func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppEnv:      strings.ToLower(v.GetString("APP_ENV")),
		ServiceName: v.GetString("SERVICE_NAME"),
		ServerPort:  v.GetInt("SERVER_PORT"),
		LogLevel:    v.GetString("LOG_LEVEL"),

		DBDriver:    strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseURL: v.GetString("DATABASE_URL"),

		SessionSecret: []byte(v.GetString("SESSION_SECRET")),
		SessionTTL:    v.GetDuration("SESSION_TTL"),
		CookieSecure:  v.GetBool("COOKIE_SECURE"),
		CSRFEnabled:   v.GetBool("CSRF_ENABLED"),

		RedisAddr: v.GetString("REDIS_ADDR"),
		CacheTTL:  v.GetDuration("CACHE_TTL"),

		KafkaBrokers: CSV(v.GetString("KAFKA_BROKERS")),

		ESURL:      v.GetString("ES_URL"),
		ESUser:     v.GetString("ES_USER"),
		ESPassword: v.GetString("ES_PASSWORD"),
		ESIndex:    v.GetString("ES_INDEX"),

		SeedUsername: v.GetString("SEED_USERNAME"),
		SeedPassword: v.GetString("SEED_PASSWORD"),
	}

	unit, err := currency.ParseISO(v.GetString("CURRENCY"))
	if err != nil {
		return nil, fmt.Errorf("invalid CURRENCY %q: %w", v.GetString("CURRENCY"), err)
	}
	cfg.Currency = unit

	if len(cfg.SessionSecret) == 0 && cfg.AppEnv == EnvLocal {
		cfg.SessionSecret = []byte(devSessionSecret)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if len(c.SessionSecret) == 0 {
		errs = append(errs, errors.New("missing required env SESSION_SECRET"))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("missing required env DATABASE_URL"))
	}
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver))
	}
	if c.ServerPort <= 0 {
		errs = append(errs, fmt.Errorf("invalid SERVER_PORT %d", c.ServerPort))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("invalid SESSION_TTL %s", c.SessionTTL))
	}
	return errors.Join(errs...)
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

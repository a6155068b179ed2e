package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration for the server and CLI.
type Config struct {
	Server         Server         `yaml:"server"`
	Database       DatabaseConfig `yaml:"database"`
	Redis          RedisConfig    `yaml:"redis"`
	Kafka          KafkaConfig    `yaml:"kafka"`
	Pricing        PricingConfig  `yaml:"pricing"`
	Classification CacheConfig    `yaml:"classification"`
	Log            LogConfig      `yaml:"log"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string `yaml:"addr"`
	JWTSigningKey string `yaml:"-"`
	Currency      string `yaml:"currency"`

	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig configures the PostgreSQL pool. An empty URL selects the
// in-memory backend.
type DatabaseConfig struct {
	URL             string        `yaml:"-"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	TxTimeout       time.Duration `yaml:"tx_timeout"`
}

// RedisConfig configures the classification cache. An empty URL disables it.
type RedisConfig struct {
	URL          string        `yaml:"-"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// KafkaConfig configures the audit outbox relay. No brokers disables it.
type KafkaConfig struct {
	Brokers      []string      `yaml:"brokers"`
	AuditTopic   string        `yaml:"audit_topic"`
	Partitions   int32         `yaml:"partitions"`
	Replication  int16         `yaml:"replication"`
	PollInterval time.Duration `yaml:"poll_interval"`
	BatchSize    int           `yaml:"batch_size"`
}

// PricingConfig holds discount rates as fractions in [0,1].
type PricingConfig struct {
	SeasonalRate       float64 `yaml:"seasonal_rate"`
	FrequentClientRate float64 `yaml:"frequent_client_rate"`
	MaxCombinedRate    float64 `yaml:"max_combined_rate"`
}

// CacheConfig configures the classification read-through cache.
type CacheConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

type LogConfig struct {
	Format string `yaml:"format"`
	Level  string `yaml:"level"`
}

// Default returns the development defaults.
func Default() Config {
	return Config{
		Server: Server{
			Addr:          ":8080",
			JWTSigningKey: "dev-secret-key-change-in-production",
			Currency:      "USD",

			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			TxTimeout:       5 * time.Second,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		},
		Kafka: KafkaConfig{
			AuditTopic:   "dealer.audit",
			Partitions:   3,
			Replication:  1,
			PollInterval: time.Second,
			BatchSize:    100,
		},
		Pricing: PricingConfig{
			SeasonalRate:       0.10,
			FrequentClientRate: 0.05,
			MaxCombinedRate:    0.15,
		},
		Classification: CacheConfig{TTL: 30 * time.Second},
		Log:            LogConfig{Format: "json", Level: "info"},
	}
}

// Load builds the configuration: defaults, then the YAML file named by
// DEALER_CONFIG_FILE (if any), then environment variables.
func Load() (Config, error) {
	cfg := Default()
	if path := os.Getenv("DEALER_CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv is Load without error handling for tools that must start anyway;
// invalid values fall back to defaults.
func FromEnv() Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

func (c *Config) mergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	var errs []error
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v := getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	rate := func(key string, dst *float64) {
		if v := getenv(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = f
		}
	}

	str("DEALER_ADDR", &c.Server.Addr)
	str("JWT_SIGNING_KEY", &c.Server.JWTSigningKey)
	str("CURRENCY", &c.Server.Currency)
	dur("SHUTDOWN_TIMEOUT", &c.Server.ShutdownTimeout)
	str("DATABASE_URL", &c.Database.URL)
	dur("TX_TIMEOUT", &c.Database.TxTimeout)
	str("REDIS_URL", &c.Redis.URL)
	dur("CLASSIFICATION_CACHE_TTL", &c.Classification.TTL)
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	str("AUDIT_TOPIC", &c.Kafka.AuditTopic)
	str("LOG_FORMAT", &c.Log.Format)
	str("LOG_LEVEL", &c.Log.Level)
	rate("DISCOUNT_SEASONAL_RATE", &c.Pricing.SeasonalRate)
	rate("DISCOUNT_FREQUENT_RATE", &c.Pricing.FrequentClientRate)
	rate("DISCOUNT_MAX_COMBINED_RATE", &c.Pricing.MaxCombinedRate)

	return errors.Join(errs...)
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server address is required"))
	}
	if c.Server.JWTSigningKey == "" {
		errs = append(errs, errors.New("JWT signing key is required"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown timeout must be positive"))
	}
	if c.Database.TxTimeout <= 0 {
		errs = append(errs, errors.New("transaction timeout must be positive"))
	}
	for name, r := range map[string]float64{
		"seasonal_rate":        c.Pricing.SeasonalRate,
		"frequent_client_rate": c.Pricing.FrequentClientRate,
		"max_combined_rate":    c.Pricing.MaxCombinedRate,
	} {
		if r < 0 || r > 1 {
			errs = append(errs, fmt.Errorf("pricing %s must be within [0,1], got %v", name, r))
		}
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.AuditTopic == "" {
		errs = append(errs, errors.New("audit topic is required when kafka brokers are set"))
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log format must be json or text, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

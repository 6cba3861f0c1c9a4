package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

const (
	StorageSQLite   = "sqlite"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"

	SourceStatic     = "static"
	SourceCheapShark = "cheapshark"
)

type Config struct {
	ServerPort string
	LogLevel   string
	LogFile    string

	StorageDriver string
	DBPath        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	PostgresURL   string

	DealsSource   string
	DealsAPIURL   string
	DefaultRegion string
	PricingFile   string

	KafkaBrokers []string
	KafkaTopic   string

	AlertCheckInterval time.Duration
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFile:       getEnv("LOG_FILE", ""),
		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", StorageSQLite)),
		DBPath:        getEnv("DB_PATH", "gamedeals.db"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		PostgresURL:   getEnv("POSTGRES_URL", ""),
		DealsSource:   strings.ToLower(getEnv("DEALS_SOURCE", SourceStatic)),
		DealsAPIURL:   strings.TrimRight(getEnv("DEALS_API_URL", "https://www.cheapshark.com/api/1.0"), "/"),
		DefaultRegion: strings.ToUpper(getEnv("DEFAULT_REGION", "US")),
		PricingFile:   getEnv("PRICING_FILE", ""),
		KafkaTopic:    getEnv("KAFKA_TOPIC", "gamedeals-price-alerts"),
	}

	var err error
	if cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("REDIS_DB must be an integer: %w", err)
	}
	if cfg.AlertCheckInterval, err = time.ParseDuration(getEnv("ALERT_CHECK_INTERVAL", "0s")); err != nil {
		return nil, fmt.Errorf("ALERT_CHECK_INTERVAL must be a duration: %w", err)
	}
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger.Info().
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("storage_driver", cfg.StorageDriver).
		Str("deals_source", cfg.DealsSource).
		Str("default_region", cfg.DefaultRegion).
		Bool("kafka_alerts", len(cfg.KafkaBrokers) > 0).
		Dur("alert_check_interval", cfg.AlertCheckInterval).
		Msg("configuration loaded")

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case StorageSQLite, StorageRedis, StorageMemory:
	case StoragePostgres:
		if c.PostgresURL == "" {
			return fmt.Errorf("POSTGRES_URL is required for the postgres storage driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	switch c.DealsSource {
	case SourceStatic, SourceCheapShark:
	default:
		return fmt.Errorf("unknown DEALS_SOURCE %q", c.DealsSource)
	}

	if c.AlertCheckInterval < 0 {
		return fmt.Errorf("ALERT_CHECK_INTERVAL must not be negative")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)

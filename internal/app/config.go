package app

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config описывает настройки запуска приложения.
type Config struct {
	HTTPAddr    string
	MetricsAddr string

	// DatabaseURL — DSN PostgreSQL; пустое значение включает in-memory
	// хранилище.
	DatabaseURL string
	// AutoMigrate применяет миграции при старте (только для postgres).
	AutoMigrate bool

	// KafkaBrokers — список брокеров через запятую; пустое значение
	// отключает публикацию событий наружу.
	KafkaBrokers string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	OutboxRetryDelay   time.Duration
}

// DefaultConfig возвращает конфигурацию по умолчанию: HTTP API на :8080,
// метрики на :9090, in-memory хранилище, без Kafka.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:           ":8080",
		MetricsAddr:        ":9090",
		AutoMigrate:        true,
		OutboxPollInterval: time.Second,
		OutboxBatchSize:    100,
		OutboxMaxAttempts:  3,
		OutboxRetryDelay:   50 * time.Millisecond,
	}
}

// LoadConfig читает конфигурацию из окружения, подхватывая .env при наличии.
func LoadConfig() Config {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if v := os.Getenv("BACKOFFICE_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("BACKOFFICE_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("BACKOFFICE_AUTO_MIGRATE"); v != "" {
		cfg.AutoMigrate = envBool(v, cfg.AutoMigrate)
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = v
	}
	if v := os.Getenv("BACKOFFICE_OUTBOX_POLL_INTERVAL"); v != "" {
		cfg.OutboxPollInterval = envDuration(v, cfg.OutboxPollInterval)
	}
	if v := os.Getenv("BACKOFFICE_OUTBOX_BATCH_SIZE"); v != "" {
		cfg.OutboxBatchSize = envInt(v, cfg.OutboxBatchSize)
	}
	if v := os.Getenv("BACKOFFICE_OUTBOX_MAX_ATTEMPTS"); v != "" {
		cfg.OutboxMaxAttempts = envInt(v, cfg.OutboxMaxAttempts)
	}
	if v := os.Getenv("BACKOFFICE_OUTBOX_RETRY_DELAY"); v != "" {
		cfg.OutboxRetryDelay = envDuration(v, cfg.OutboxRetryDelay)
	}

	return cfg
}

func envBool(raw string, fallback bool) bool {
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func envInt(raw string, fallback int) int {
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func envDuration(raw string, fallback time.Duration) time.Duration {
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

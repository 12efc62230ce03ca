package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	Env         string
	DatabaseURL string
	ServerPort  int
	MetricsPort int
	AutoMigrate bool

	CORSAllowedOrigins []string

	// Кэш ростера. Пустой RedisURL отключает кэш.
	RedisURL       string
	RosterCacheTTL time.Duration

	// Публикация событий. Пустой KafkaBrokers отключает публикацию.
	KafkaBrokers      []string
	KafkaEntriesTopic string

	Export ExportConfig
}

// ExportConfig описывает выгрузку снимков в S3-совместимое хранилище.
type ExportConfig struct {
	Bucket          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
	Schedule        string
}

// Enabled сообщает, настроена ли выгрузка.
func (e ExportConfig) Enabled() bool {
	return e.Bucket != ""
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	port, err := portFromEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	metricsPort, err := portFromEnv("METRICS_PORT", 9095)
	if err != nil {
		return nil, err
	}
	if metricsPort == port {
		return nil, fmt.Errorf("METRICS_PORT must differ from SERVER_PORT (both %d)", port)
	}

	autoMigrate := true
	if v := os.Getenv("AUTO_MIGRATE"); v != "" {
		autoMigrate, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid AUTO_MIGRATE environment variable: %w", err)
		}
	}

	cacheTTL := 5 * time.Minute
	if v := os.Getenv("ROSTER_CACHE_TTL"); v != "" {
		cacheTTL, err = time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid ROSTER_CACHE_TTL environment variable: %w", err)
		}
		if cacheTTL <= 0 {
			return nil, fmt.Errorf("ROSTER_CACHE_TTL must be positive, got %s", cacheTTL)
		}
	}

	cfg := &Config{
		Env:                getEnvOrDefault("APP_ENV", "local"),
		DatabaseURL:        dbURL,
		ServerPort:         port,
		MetricsPort:        metricsPort,
		AutoMigrate:        autoMigrate,
		CORSAllowedOrigins: splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
		RedisURL:           os.Getenv("REDIS_URL"),
		RosterCacheTTL:     cacheTTL,
		KafkaBrokers:       splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaEntriesTopic:  getEnvOrDefault("KAFKA_TOPIC_ENTRIES", "entries.submitted"),
		Export: ExportConfig{
			Bucket:          os.Getenv("EXPORT_BUCKET"),
			Endpoint:        os.Getenv("EXPORT_ENDPOINT"),
			Region:          getEnvOrDefault("EXPORT_REGION", "auto"),
			AccessKeyID:     os.Getenv("EXPORT_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("EXPORT_SECRET_ACCESS_KEY"),
			Prefix:          getEnvOrDefault("EXPORT_PREFIX", "snapshots/"),
			Schedule:        getEnvOrDefault("EXPORT_SCHEDULE", "@every 15m"),
		},
	}

	if cfg.Export.Enabled() && (cfg.Export.AccessKeyID == "") != (cfg.Export.SecretAccessKey == "") {
		return nil, fmt.Errorf("EXPORT_ACCESS_KEY_ID and EXPORT_SECRET_ACCESS_KEY must be set together")
	}

	return cfg, nil
}

func portFromEnv(key string, def int) (int, error) {
	portStr := os.Getenv(key)
	if portStr == "" {
		return def, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	if port <= 0 || port > 65535 {
		return 0, fmt.Errorf("%s must be between 1 and 65535, got %d", key, port)
	}
	return port, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package config

import (
	"os"
	"strconv"
	"strings"

	"order-engine/pkg/database"

	"go.uber.org/zap"
)

type Config struct {
	Port     string
	AdminKey string
	DB       DB
	Redis    Redis
	Kafka    Kafka
	Catalog  Catalog
	Loyalty  Loyalty
}

type DB struct {
	database.Config
}

type Redis struct {
	Enabled    bool
	Addr       string
	Password   string
	DB         int
	TTLSeconds int
}

type Kafka struct {
	Enabled bool
	Brokers []string
	Topic   string
}

type Catalog struct {
	URL string
}

type Loyalty struct {
	// TiersFile пустой — используется встроенная таблица уровней.
	TiersFile string
}

func Load(log *zap.Logger) *Config {
	return &Config{
		Port:     getEnv("APP_PORT", log),
		AdminKey: getEnv("ADMIN_API_KEY", log),
		DB: DB{
			Config: database.Config{
				Host:     getEnv("DB_HOST", log),
				Port:     getEnv("DB_PORT", log),
				User:     getEnv("DB_USER", log),
				Password: getEnv("DB_PASSWORD", log),
				Name:     getEnv("DB_NAME", log),
				SSLMode:  getEnv("DB_SSLMODE", log),
			},
		},
		Redis: Redis{
			Enabled:    getEnv("REDIS_ENABLED", log) == "true",
			Addr:       getEnv("REDIS_ADDR", log),
			Password:   getEnv("REDIS_PASSWORD", log),
			DB:         atoiDefault(getEnv("REDIS_DB", log), 0),
			TTLSeconds: atoiDefault(getEnv("CACHE_TTL_SECONDS", log), 60),
		},
		Kafka: Kafka{
			Enabled: getEnv("KAFKA_ENABLED", log) == "true",
			Brokers: splitAndTrim(getEnv("KAFKA_BROKERS", log)),
			Topic:   getEnv("KAFKA_ORDER_TOPIC", log),
		},
		Catalog: Catalog{
			URL: getEnv("CATALOG_URL", log),
		},
		Loyalty: Loyalty{
			TiersFile: os.Getenv("LOYALTY_TIERS_FILE"),
		},
	}
}

func getEnv(key string, log *zap.Logger) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	log.Error("Обязательная переменная окружения не установлена", zap.String("key", key))
	panic("missing required environment variable: " + key)
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package app

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config описывает настройки запуска сервиса корзины.
// Все значения читаются из переменных окружения.
type Config struct {
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`

	// Драйвер хранилища корзин: memory или redis.
	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"memory"`
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// TTL корзины в key-value хранилище; 0 — без истечения.
	CartTTL time.Duration `envconfig:"CART_TTL" default:"24h"`

	// Драйвер архива заказов: memory или postgres.
	ArchiveDriver string `envconfig:"ARCHIVE_DRIVER" default:"memory"`
	PostgresDSN   string `envconfig:"POSTGRES_DSN" default:""`

	// Базовый URL внешнего сервиса заказов. Пустой URL включает мок.
	OrderServiceURL string `envconfig:"ORDER_SERVICE_URL" default:""`

	// Список Kafka-брокеров через запятую; пустой отключает события.
	KafkaBrokers string `envconfig:"KAFKA_BROKERS" default:""`

	// Секрет для проверки bearer-токенов; пустой оставляет только
	// legacy-заголовки идентичности.
	JWTSecret string `envconfig:"JWT_SECRET" default:""`
}

// LoadConfig читает конфигурацию из окружения.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultConfig возвращает конфигурацию по умолчанию (без чтения окружения).
func DefaultConfig() Config {
	return Config{
		HTTPAddr:      ":8080",
		MetricsAddr:   ":9090",
		StorageDriver: "memory",
		RedisAddr:     "localhost:6379",
		CartTTL:       24 * time.Hour,
		ArchiveDriver: "memory",
	}
}

package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/restaurant-platform/cart-service/internal/domain"
	"github.com/restaurant-platform/cart-service/internal/health"
	"github.com/restaurant-platform/cart-service/internal/storage/memory"
	"github.com/restaurant-platform/cart-service/internal/storage/postgres"
	"github.com/restaurant-platform/cart-service/internal/storage/redis"
)

// Dependencies содержит хранилища сервиса и их ресурсы.
type Dependencies struct {
	CartStore domain.CartStore
	Archive   domain.OrderArchive
	Idem      domain.IdempotencyRepository

	redisStore    *redis.Store
	postgresStore *postgres.Store
}

// NewDependencies собирает хранилища по конфигурации. Memory-драйверы не
// требуют внешних сервисов и используются по умолчанию.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	deps := &Dependencies{
		Idem: memory.NewIdempotencyRepository(),
	}

	switch cfg.StorageDriver {
	case "", "memory":
		deps.CartStore = memory.NewCartStore()
		logger.Info("хранилище корзин: memory")
	case "redis":
		store, err := redis.Open(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		deps.redisStore = store
		deps.CartStore = redis.NewCartStore(store, cfg.CartTTL)
		logger.WithField("addr", cfg.RedisAddr).Info("хранилище корзин: redis")
	default:
		return nil, fmt.Errorf("неизвестный STORAGE_DRIVER: %q", cfg.StorageDriver)
	}

	switch cfg.ArchiveDriver {
	case "", "memory":
		deps.Archive = memory.NewOrderArchive()
		logger.Info("архив заказов: memory")
	case "postgres":
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			deps.Close(logger)
			return nil, fmt.Errorf("postgres: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			deps.Close(logger)
			return nil, fmt.Errorf("postgres schema: %w", err)
		}
		deps.postgresStore = store
		deps.Archive = postgres.NewOrderArchive(store)
		logger.Info("архив заказов: postgres")
	default:
		deps.Close(logger)
		return nil, fmt.Errorf("неизвестный ARCHIVE_DRIVER: %q", cfg.ArchiveDriver)
	}

	return deps, nil
}

// RegisterHealthChecks добавляет проверки живости подключённых хранилищ.
func (d *Dependencies) RegisterHealthChecks(handler *health.Handler) {
	if d.redisStore != nil {
		handler.Register("redis", health.CheckerFunc(d.redisStore.Ping))
	}
	if d.postgresStore != nil {
		handler.Register("postgres", health.CheckerFunc(d.postgresStore.Ping))
	}
}

// Close освобождает внешние подключения.
func (d *Dependencies) Close(logger *log.Entry) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}
	if d.redisStore != nil {
		if err := d.redisStore.Close(); err != nil {
			logger.WithError(err).Warn("ошибка закрытия redis")
		}
	}
	if d.postgresStore != nil {
		if err := d.postgresStore.Close(); err != nil {
			logger.WithError(err).Warn("ошибка закрытия postgres")
		}
	}
}

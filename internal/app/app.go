package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/restaurant-platform/cart-service/internal/domain"
	healthcheck "github.com/restaurant-platform/cart-service/internal/health"
	"github.com/restaurant-platform/cart-service/internal/metrics"
	"github.com/restaurant-platform/cart-service/internal/service/cart"
	"github.com/restaurant-platform/cart-service/internal/service/checkout"
	"github.com/restaurant-platform/cart-service/internal/service/order"
	httptransport "github.com/restaurant-platform/cart-service/internal/transport/http"
	"github.com/restaurant-platform/cart-service/internal/version"
)

// Run собирает сервис корзины из конфигурации и держит его до отмены ctx.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close(logger)

	// Kafka опционален: без брокеров сервис работает, но не публикует события.
	kafkaProducer, _ := initKafkaProducer(cfg.KafkaBrokers, logger)

	var orderClient domain.OrderClient
	if cfg.OrderServiceURL != "" {
		client, err := order.NewClient(cfg.OrderServiceURL)
		if err != nil {
			return err
		}
		orderClient = client
	} else {
		logger.Warn("ORDER_SERVICE_URL не задан, используем мок сервиса заказов")
		orderClient = order.NewMockClient()
	}

	cartMetrics := metrics.NewCartMetrics()
	engineLogger := logger.WithField("layer", "engine")

	var engine *cart.Engine
	var coordinator *checkout.Coordinator
	if kafkaProducer != nil {
		engine = cart.NewEngineWithPublisher(deps.CartStore, cartMetrics, kafkaProducer, engineLogger)
		coordinator = checkout.NewCoordinatorWithPublisher(
			deps.CartStore, orderClient, deps.Archive, deps.Idem, kafkaProducer,
			logger.WithField("layer", "checkout"))
	} else {
		engine = cart.NewEngine(deps.CartStore, cartMetrics, engineLogger)
		coordinator = checkout.NewCoordinator(
			deps.CartStore, orderClient, deps.Archive, deps.Idem,
			logger.WithField("layer", "checkout"))
	}

	handler := httptransport.NewCartHandler(engine, coordinator, deps.CartStore, logger.WithField("layer", "http"))
	router := httptransport.NewRouter(handler, cfg.JWTSecret)

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	deps.RegisterHealthChecks(healthHandler)

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	go runIdempotencyJanitor(ctx, deps.Idem, logger)

	apiSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP сервер слушает %s", cfg.HTTPAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP сервер")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)
		closeKafka(kafkaProducer, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		closeKafka(kafkaProducer, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// runIdempotencyJanitor периодически удаляет истёкшие idempotency-записи.
func runIdempotencyJanitor(ctx context.Context, idem domain.IdempotencyRepository, logger *log.Entry) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := idem.DeleteExpired(time.Now().UTC(), 1000)
			if err != nil {
				logger.WithError(err).Warn("очистка idempotency-записей завершилась с ошибкой")
				continue
			}
			if removed > 0 {
				logger.WithField("removed", removed).Debug("удалены истёкшие idempotency-записи")
			}
		}
	}
}

// startMetricsServer запускает HTTP-обработчик /metrics для Prometheus.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez", addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}

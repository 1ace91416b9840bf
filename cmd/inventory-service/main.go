package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/inventory-dashboard/internal/auth"
	"github.com/iyhunko/inventory-dashboard/internal/cache"
	"github.com/iyhunko/inventory-dashboard/internal/config"
	"github.com/iyhunko/inventory-dashboard/internal/exchange"
	httpAPI "github.com/iyhunko/inventory-dashboard/internal/http"
	"github.com/iyhunko/inventory-dashboard/internal/http/controller"
	"github.com/iyhunko/inventory-dashboard/internal/http/middleware"
	"github.com/iyhunko/inventory-dashboard/internal/kafka"
	"github.com/iyhunko/inventory-dashboard/internal/live"
	"github.com/iyhunko/inventory-dashboard/internal/logger"
	"github.com/iyhunko/inventory-dashboard/internal/metrics"
	"github.com/iyhunko/inventory-dashboard/internal/repository/sql"
	"github.com/iyhunko/inventory-dashboard/internal/service"
	sqspkg "github.com/iyhunko/inventory-dashboard/internal/sqs"
)

const shutdownTimeout = 10 * time.Second

type closablePublisher interface {
	service.Publisher
	Close() error
}

func main() {
	conf, err := config.LoadFromEnv()
	handleErr("loading config", err)
	logger.InitJSONLogger(conf.DebugMode)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := sql.StartDB(ctx, conf.Database)
	handleErr("starting database", err)
	defer db.Close()

	// Create repositories
	userRepository := sql.NewUserRepository(db)
	productRepository := sql.NewProductRepository(db)
	saleRepository := sql.NewSaleRepository(db)
	dashboardRepository := sql.NewDashboardRepository(db)
	historyRepository := sql.NewHistoryRepository(db)
	eventRepository := sql.NewEventRepository(db)
	reportRepository := sql.NewReportRepository(db, "pgx")
	transactionalRepository := sql.NewTransactionalRepository(db)

	responseCache := newCache(ctx, conf.Redis)
	rates := exchange.NewProvider(conf.ExchangeRate, &http.Client{Timeout: 5 * time.Second})
	registry := live.NewRegistry()
	tokens := auth.NewTokens(conf.Auth.Secret, conf.Auth.TokenTTL)

	// Create services
	authService := service.NewAuthService(userRepository, tokens)
	productService := service.NewProductService(transactionalRepository, productRepository, historyRepository, rates, responseCache)
	purchaseService := service.NewPurchaseService(transactionalRepository, historyRepository, registry, responseCache)
	salesService := service.NewSalesService(saleRepository, reportRepository, responseCache)
	dashboardService := service.NewDashboardService(dashboardRepository, responseCache)
	historyService := service.NewHistoryService(historyRepository)
	rateService := service.NewRateService(transactionalRepository, rates, registry, responseCache)

	if conf.SeedDemoData {
		if err := service.SeedDemoData(ctx, authService, productService); err != nil {
			slog.Error("failed to seed demo data", slog.Any("err", err))
		}
	}

	publisher, err := newPublisher(ctx, conf)
	handleErr("creating event publisher", err)
	defer func() {
		if err := publisher.Close(); err != nil {
			slog.Error("failed to close event publisher", slog.Any("err", err))
		}
	}()

	// Start outbox worker to publish pending events
	outboxWorker := service.NewOutboxWorker(eventRepository, publisher, conf.Outbox.Interval)
	go outboxWorker.Start(ctx)

	metrics.StartMetricsServer(ctx, conf)

	// Start HTTP server
	if !conf.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpAPI.InitRouter(gin.New(), middleware.New(authService), httpAPI.Controllers{
		Base:      controller.New(),
		Auth:      controller.NewAuthController(authService),
		Product:   controller.NewProductController(productService),
		Purchase:  controller.NewPurchaseController(purchaseService),
		Sales:     controller.NewSalesController(salesService),
		Dashboard: controller.NewDashboardController(dashboardService),
		History:   controller.NewHistoryController(historyService),
		Rate:      controller.NewRateController(rateService),
		Live:      controller.NewLiveController(registry, authService),
	})
	httpServer := &http.Server{
		Addr:              ":" + conf.HTTPServer.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("HTTP server starting", slog.String("port", conf.HTTPServer.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("error while listening to HTTP requests", slog.Any("err", err))
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	// Hijacked websocket connections are not tracked by the server.
	registry.CloseAll()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shut down HTTP server", slog.Any("err", err))
	}
	outboxWorker.Stop()
}

func newCache(ctx context.Context, conf config.Redis) cache.Cache {
	if conf.Addr == "" {
		slog.Info("REDIS_ADDR not set, response cache disabled")
		return cache.Noop{}
	}
	redisCache := cache.NewRedis(conf.Addr, conf.Password, conf.DB, conf.TTL)
	if err := redisCache.Ping(ctx); err != nil {
		slog.Warn("redis unreachable, cache errors will be ignored", slog.Any("err", err))
	}
	return redisCache
}

func newPublisher(ctx context.Context, conf *config.Config) (closablePublisher, error) {
	switch conf.Outbox.Broker {
	case config.BrokerSQS:
		client, err := sqspkg.NewClient(ctx, conf.AWS)
		if err != nil {
			return nil, err
		}
		return sqspkg.NewPublisher(client, conf.AWS.SQSQueueURL), nil
	case config.BrokerKafka:
		return kafka.NewPublisher(conf.Kafka.Brokers, conf.Kafka.Topic), nil
	default:
		return nopCloser{service.LogPublisher{}}, nil
	}
}

type nopCloser struct {
	service.Publisher
}

func (nopCloser) Close() error { return nil }

func handleErr(msg string, err error) {
	if err != nil {
		slog.Error("fatal error", slog.String("while", msg), slog.Any("err", err))
		os.Exit(1)
	}
}

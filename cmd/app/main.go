// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"ielts-payme-billing/internal/config"
	"ielts-payme-billing/internal/domain/ports/adapter"
	"ielts-payme-billing/internal/domain/ports/repository"
	payAdapters "ielts-payme-billing/internal/infra/adapters/payment"
	"ielts-payme-billing/internal/infra/api"
	"ielts-payme-billing/internal/infra/api/apiv1"
	pg "ielts-payme-billing/internal/infra/db/postgres"
	"ielts-payme-billing/internal/infra/events"
	"ielts-payme-billing/internal/infra/logging"
	"ielts-payme-billing/internal/infra/metrics"
	red "ielts-payme-billing/internal/infra/redis"
	"ielts-payme-billing/internal/infra/sched"
	"ielts-payme-billing/internal/infra/security"
	"ielts-payme-billing/internal/infra/worker"
	"ielts-payme-billing/internal/usecase"
)

// set via -ldflags "-X main.version=... -X main.commit=..."
var (
	version = "dev"
	commit  = "none"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		l := zerolog.New(os.Stderr).With().Timestamp().Logger()
		l.Fatal().Err(err).Msg("config")
	}
	cfg.Runtime.Version, cfg.Runtime.Commit = version, commit

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Postgres ----
	pool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	tm := pg.NewTxManager(pool)

	// ---- Redis (optional) ----
	var (
		limiter apiv1.Limiter
		locker  sched.Locker
		cache   red.RedisClient
	)
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		cache = redisClient
		limiter = red.NewRateLimiter(redisClient)
		locker = red.NewLocker(redisClient)
	} else {
		logger.Warn().Msg("redis not configured: rate limiting, plan cache and job locks disabled")
	}

	// ---- Repositories ----
	orderRepo := pg.NewOrderRepo(pool)
	txRepo := pg.NewTransactionRepo(pool)
	var planRepo repository.PlanRepository = pg.NewPostgresPlanRepo(pool)
	if cache != nil {
		planRepo = pg.NewPlanRepoCacheDecorator(planRepo, cache, cfg.Redis.TTL, logger)
	}
	userPlanRepo := pg.NewUserPlanRepo(pool)
	historyRepo := pg.NewPaymentHistoryRepo(pool)

	// ---- Payment events ----
	var eventPool *worker.Pool
	var publisher adapter.PaymentEventPublisher = events.NewNoopPublisher(logger)
	if cfg.Kafka.Enabled() {
		producer, err := events.NewSyncProducer(cfg.Kafka)
		if err != nil {
			logger.Fatal().Err(err).Msg("kafka")
		}
		eventPool = worker.NewPool(cfg.Kafka.Workers, cfg.Kafka.QueueSize, logger)
		eventPool.Start(ctx)
		publisher = events.NewAsyncPublisher(events.NewKafkaPublisher(producer, cfg.Kafka.Topic, logger), eventPool, 0, logger)
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("payment events enabled")
	}

	// ---- Use cases ----
	activationUC := usecase.NewActivationUseCase(planRepo, userPlanRepo, historyRepo, orderRepo, tm, cfg.Subscription.FreePlanID, logger)
	paymeUC := usecase.NewPaymeUseCase(orderRepo, txRepo, tm, activationUC, publisher, usecase.PaymeOptions{
		MinAmount:          cfg.Payme.MinAmount,
		MaxAmount:          cfg.Payme.MaxAmount,
		InvalidOrderIDs:    cfg.Payme.InvalidOrderIDs,
		ActivationTimeout:  cfg.Subscription.ActivationTimeout,
		ReceiptCode:        cfg.Payme.Receipt.Code,
		ReceiptPackageCode: cfg.Payme.Receipt.PackageCode,
		ReceiptVatPercent:  cfg.Payme.Receipt.VatPercent,
	}, logger)

	checkout, err := payAdapters.NewPaymeCheckout(cfg.Payme)
	if err != nil {
		logger.Fatal().Err(err).Msg("payme checkout")
	}
	orderUC := usecase.NewOrderUseCase(orderRepo, planRepo, tm, checkout, cfg.Payme.DefaultReturnURL(), logger)
	ledgerUC := usecase.NewLedgerUseCase(txRepo, logger)

	// ---- HTTP ----
	v1 := apiv1.NewServer(apiv1.Deps{
		Payme:      paymeUC,
		Orders:     orderUC,
		Activation: activationUC,
		Ledger:     ledgerUC,
		Guard:      security.NewPaymeGuard(cfg.Payme),
		Tokens:     security.NewTokenManager(cfg.Security.JWTSecret, cfg.Security.JWTIssuer),
		Limiter:    limiter,
	}, apiv1.Options{
		PaymePath:       cfg.Payme.CallbackPath,
		MaxBodyBytes:    cfg.HTTP.MaxBodyBytes,
		OrdersPerMinute: cfg.RateLimit.OrdersPerMinute,
		Dev:             cfg.Runtime.Dev,
	}, logger)

	health := func(ctx context.Context) error { return pool.Ping(ctx) }
	server := api.NewHTTPServer(cfg.HTTP, api.NewRouter(v1, health, cfg.HTTP.RequestTimeout, logger))
	go func() {
		logger.Info().Str("addr", server.Addr).Str("payme_path", cfg.Payme.CallbackPath).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
			stop()
		}
	}()

	// ---- Background jobs ----
	if cfg.Reconciler.Enabled {
		w := sched.NewActivationReconciler(activationUC, locker, cfg.Reconciler.Interval, cfg.Reconciler.StaleAfter, cfg.Reconciler.BatchSize, logger)
		go func() { _ = w.Run(ctx) }()
	}
	if cfg.Cleanup.Enabled {
		w := sched.NewLedgerCleanup(ledgerUC, locker, cfg.Cleanup.Interval, cfg.Cleanup.Retention, logger)
		go func() { _ = w.Run(ctx) }()
	}
	go func() { _ = sched.ReportDBStats(ctx, pool, 15*time.Second) }()
	go func() { _ = sched.ReportOrderStats(ctx, orderRepo, time.Minute, logger) }()

	// ---- Graceful shutdown ----
	<-ctx.Done()
	logger.Info().Msg("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	if eventPool != nil {
		eventPool.Stop()
	}
	if err := publisher.Close(); err != nil {
		logger.Error().Err(err).Msg("close event publisher")
	}
	logger.Info().Msg("bye")
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"webshop/internal/adapter/api"
	"webshop/internal/adapter/api/handler"
	apimiddleware "webshop/internal/adapter/api/middleware"
	"webshop/internal/adapter/api/router"
	"webshop/internal/adapter/repository"
	"webshop/internal/domain/session"
	"webshop/internal/domain/store"
	"webshop/internal/infrastructure/httpclient"
	"webshop/internal/infrastructure/imaging"
	"webshop/internal/infrastructure/metrics"
	"webshop/internal/infrastructure/ratelimit"
	"webshop/internal/infrastructure/storage"
	"webshop/internal/infrastructure/websocket"
	"webshop/internal/usecase"
	"webshop/pkg/config"
	"webshop/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsManager := metrics.NewMetricsManager("webshop")

	executor := httpclient.NewExecutor(
		cfg.APIBaseURL,
		httpclient.WithDeploymentMode(cfg.DeploymentMode),
		httpclient.WithDefaultTimeout(cfg.Timeouts.Default),
		httpclient.WithMetrics(metricsManager),
	)
	logger.With("backend", cfg.APIBaseURL, "mode", cfg.DeploymentMode).Info("backend configured")

	boltStore, err := storage.NewBoltStore(cfg.DataPath)
	if err != nil {
		logger.Fatal("Failed to open local store %s: %v", cfg.DataPath, err)
	}
	defer boltStore.Close()

	authRepo := repository.NewHTTPAuthRepository(executor, cfg.Timeouts)
	listingRepo := repository.NewHTTPListingRepository(executor, cfg.Timeouts)
	favoriteRepo := repository.NewHTTPFavoriteRepository(executor, cfg.Timeouts)
	messageRepo := repository.NewHTTPMessageRepository(executor, cfg.Timeouts)
	orderRepo := repository.NewHTTPOrderRepository(executor, cfg.Timeouts)
	reviewRepo := repository.NewHTTPReviewRepository(executor, cfg.Timeouts)
	vipRepo := repository.NewHTTPVipRepository(executor, cfg.Timeouts)
	warmupRepo := repository.NewHTTPWarmupRepository(executor, cfg.Timeouts)

	sess := session.New(boltStore)
	viewStore := store.NewViewStore(metricsManager)

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)
	viewStore.Subscribe(func(topic store.Topic) {
		wsManager.Publish(websocket.Event{Type: websocket.EventStoreChanged, Topic: string(topic)})
	})

	pushClient, err := websocket.NewPushClient(
		cfg.APIBaseURL,
		websocket.WithHeartBeat(cfg.Live.HeartBeat),
		websocket.WithReconnectBackoff(cfg.Live.ReconnectMin, cfg.Live.ReconnectMax),
	)
	if err != nil {
		logger.Fatal("Invalid push endpoint for %s: %v", cfg.APIBaseURL, err)
	}

	compressor := imaging.NewCompressor(
		imaging.WithMaxDimension(cfg.Images.MaxDimension),
		imaging.WithHardCap(cfg.Images.HardCap),
		imaging.WithMaxPixels(cfg.Images.MaxPixels),
		imaging.WithMetrics(metricsManager),
	)

	limiter := ratelimit.NewRateLimiter()
	limiter.SetPolicy(ratelimit.ActionWarmup, ratelimit.Policy{Every: cfg.Live.WarmupMinInterval, Burst: 1})
	limiter.StartCleanupRoutine(ctx)

	authUseCase := usecase.NewAuthUseCase(authRepo, sess, viewStore)
	vipUseCase := usecase.NewVipUseCase(vipRepo, listingRepo, viewStore, sess, metricsManager)
	listingUseCase := usecase.NewListingUseCase(listingRepo, viewStore, sess, compressor, boltStore, vipUseCase, cfg.Images)
	favoriteUseCase := usecase.NewFavoriteUseCase(favoriteRepo, listingRepo, viewStore, sess)
	messageUseCase := usecase.NewMessageUseCase(messageRepo, viewStore, sess, limiter)
	orderUseCase := usecase.NewOrderUseCase(orderRepo, viewStore, sess)
	reviewUseCase := usecase.NewReviewUseCase(reviewRepo, viewStore, sess)
	warmupUseCase := usecase.NewWarmupUseCase(warmupRepo, limiter)

	liveUpdates := usecase.NewLiveUpdateChannel(messageUseCase, pushClient, cfg.Live.PollInterval, metricsManager)
	defer liveUpdates.Stop()
	sess.Subscribe(liveUpdates.SetUser)
	liveUpdates.SetUser(sess.Email())

	handler.Setup(authUseCase, listingUseCase, reviewUseCase, messageUseCase, liveUpdates, favoriteUseCase, orderUseCase, vipUseCase)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	sessionMiddleware := apimiddleware.NewSessionMiddleware(sess)

	router.Setup(e, sessionMiddleware)
	router.SetupStateRouter(e, handler.NewStateHandler(viewStore, sess, warmupUseCase))
	router.SetupHealthRouter(e, handler.NewHealthHandler(wsManager, cfg.APIBaseURL), metricsManager.Handler())
	router.SetupWebSocketRouter(e, handler.NewWebSocketHandler(wsManager))

	// Wake a sleeping backend before the first real request needs it.
	go warmupUseCase.Warmup(ctx)

	go func() {
		logger.Info("Starting server on port %s...", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server stopped: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
}

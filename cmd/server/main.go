package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resto-server/internal/config"
	"resto-server/internal/database"
	"resto-server/internal/handler"
	"resto-server/internal/logger"
	"resto-server/internal/messaging"
	appMiddleware "resto-server/internal/middleware"
	"resto-server/internal/realtime"
	"resto-server/internal/repository"
	"resto-server/internal/service"
	"resto-server/migrations"

	rateli "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Setup ---
	log, err := logger.New(logger.Config{
		Level:    cfg.LogLevel,
		Encoding: "json",
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	zap.ReplaceGlobals(log)
	zap.L().Info("Logger initialized successfully", zap.String("logLevel", cfg.LogLevel))

	// --- External Connections ---
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pgPool, err := database.NewPostgresPool(ctx, cfg.PostgresDSN(), log)
	if err != nil {
		zap.L().Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pgPool.Close()
	zap.L().Info("Connected to PostgreSQL")

	migrator := database.NewMigrator(database.MigratorConfig{
		MigrationsPath: ".",
		MigrationsFS:   migrations.FS,
	}, pgPool, log)
	if err := migrator.Up(ctx); err != nil {
		zap.L().Fatal("Failed to apply migrations", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		zap.L().Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	zap.L().Info("Connected to Redis")

	mqConn, err := messaging.Connect(cfg.RabbitMQURL, log)
	if err != nil {
		zap.L().Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer mqConn.Close()
	zap.L().Info("Connected to RabbitMQ")

	// --- Dependency Injection ---
	userRepo := repository.NewPgUserRepository(pgPool, log.Named("PgUserRepo"))
	tokenRepo := repository.NewRedisTokenRepository(redisClient, log.Named("RedisTokenRepo"))
	deviceTokenRepo := repository.NewDeviceTokenRepository(pgPool, log.Named("PgDeviceTokenRepo"))
	menuRepo := repository.NewPgMenuRepository(pgPool, log.Named("PgMenuRepo"))
	inventoryRepo := repository.NewPgInventoryRepository(pgPool, log.Named("PgInventoryRepo"))
	orderRepo := repository.NewPgOrderRepository(pgPool, log.Named("PgOrderRepo"))

	recipientProvider := repository.NewCachedRecipientProvider(
		deviceTokenRepo, redisClient, cfg.RecipientCacheTTL, log.Named("RecipientCache"))

	authSvc := service.NewAuthService(userRepo, tokenRepo, cfg, log.Named("AuthService"))
	deviceTokenSvc := service.NewDeviceTokenService(deviceTokenRepo, log.Named("DeviceTokenService"))
	menuSvc := service.NewMenuService(menuRepo, log.Named("MenuService"))
	inventorySvc := service.NewInventoryService(inventoryRepo, log.Named("InventoryService"))

	imageSvc, err := service.NewImageService(cfg.ImageDir, log.Named("ImageService"))
	if err != nil {
		zap.L().Fatal("Failed to init image storage", zap.Error(err))
	}

	pushGateway := service.NewExpoPushGateway(cfg.PushGatewayURL, cfg.PushGatewayToken, cfg.PushTimeout, log)
	dispatcher := service.NewNotificationDispatcher(orderRepo, recipientProvider, pushGateway, log)

	publisher, err := messaging.NewRabbitOrderEventPublisher(mqConn, cfg.OrderEventQueue, log)
	if err != nil {
		zap.L().Fatal("Failed to create order event publisher", zap.Error(err))
	}

	zlog := zerolog.New(os.Stdout).With().Timestamp().Logger()
	hub := realtime.NewHub(zlog)
	wsHandler := realtime.NewWebSocketHandler(hub, authSvc, zlog)

	orderSvc := service.NewOrderService(pgPool, orderRepo, menuRepo, inventoryRepo, publisher, hub, log.Named("OrderService"))

	processor := messaging.NewProcessor(log, dispatcher)
	consumer, err := messaging.NewConsumer(mqConn, log, cfg.OrderEventQueue, cfg.WorkerCount, processor)
	if err != nil {
		zap.L().Fatal("Failed to create order event consumer", zap.Error(err))
	}

	// --- Rate Limiter Middleware Setup ---
	rateLimitStore := rateli.RedisStore(&rateli.RedisOptions{
		RedisClient: redisClient,
		Rate:        time.Minute,
		Limit:       10,
	})
	rateLimitMiddleware := rateli.RateLimiter(rateLimitStore, &rateli.Options{
		ErrorHandler: func(c *gin.Context, info rateli.Info) {
			zap.L().Warn("Rate limit exceeded",
				zap.String("clientIP", c.ClientIP()),
				zap.Time("resetTime", info.ResetTime),
				zap.String("path", c.Request.URL.Path),
			)
			c.String(http.StatusTooManyRequests, "Too many requests. Try again in "+time.Until(info.ResetTime).String())
		},
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	})

	h := handler.NewHandler(authSvc, userRepo, deviceTokenSvc, menuSvc, inventorySvc, orderSvc, imageSvc, dispatcher, wsHandler, cfg)

	// --- HTTP Server Setup (Gin) ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.RedirectTrailingSlash = true
	router.Use(appMiddleware.GinZapLogger(log))
	router.Use(gin.Recovery())

	p := ginprometheus.NewPrometheus("gin")

	corsConfig := cors.DefaultConfig()
	allowedOrigins := cfg.GetAllowedOrigins()
	if len(allowedOrigins) > 0 {
		corsConfig.AllowOrigins = allowedOrigins
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
		zap.L().Info("CORSAllowedOrigins not set, allowing default", zap.String("origin", "http://localhost:3000"))
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Internal-Service-Token"}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	h.RegisterRoutes(router, rateLimitMiddleware)

	// Prometheus middleware применяется после регистрации роутов.
	p.Use(router)

	// --- Start Background Workers ---
	go func() {
		zap.L().Info("Starting order event consumer...")
		if err := consumer.Start(); err != nil {
			zap.L().Error("Order event consumer stopped with error", zap.Error(err))
		} else {
			zap.L().Info("Order event consumer stopped gracefully.")
		}
	}()

	// --- Start HTTP Server ---
	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	zap.L().Info("Starting HTTP server", zap.String("port", cfg.ServerPort))

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("HTTP Server listen error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutdown signal received")

	consumer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("HTTP server shutdown error", zap.Error(err))
	}

	zap.L().Info("Server stopped")
}

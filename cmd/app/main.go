package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "promo-roulette-backend/docs"
	"promo-roulette-backend/internal/common/config"
	"promo-roulette-backend/internal/common/logger"
	"promo-roulette-backend/internal/common/middleware"
	bothttp "promo-roulette-backend/internal/features/bot/delivery/http"
	botredis "promo-roulette-backend/internal/features/bot/repository/redis"
	botservice "promo-roulette-backend/internal/features/bot/service"
	channelredis "promo-roulette-backend/internal/features/channel/repository/redis"
	channelservice "promo-roulette-backend/internal/features/channel/service"
	miniapphttp "promo-roulette-backend/internal/features/miniapp/delivery/http"
	prizeredis "promo-roulette-backend/internal/features/prize/repository/redis"
	"promo-roulette-backend/internal/features/subscription"
	userredis "promo-roulette-backend/internal/features/user/repository/redis"
	userservice "promo-roulette-backend/internal/features/user/service"
	redisplatform "promo-roulette-backend/internal/platform/redis"
	"promo-roulette-backend/internal/platform/telegram"
)

// @title           Promo Roulette API
// @version         1.0
// @description     Backend for the Telegram Mini App promo roulette. Mini app endpoints authenticate with signed initData in the request body.

// @host      localhost:8080
// @BasePath  /

// @tag.name miniapp
// @tag.description Roulette mini app endpoints

func main() {
	// Создаем cancellable root context для graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger.Init("promo-roulette-backend", cfg.Debug)

	log.Info().Bool("debug", cfg.Debug).Msg("Starting Promo Roulette Backend")

	// Инициализируем Redis
	redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	redisClient, err := redisplatform.Open(ctx, redisAddr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	log.Info().Str("addr", redisAddr).Msg("Redis connection established")

	// Клиент Bot API
	tgClient := telegram.NewClient(cfg.Telegram.BotToken)

	// Инициализируем репозитории
	userRepository := userredis.NewUserRepository(redisClient.Client)
	channelRepository := channelredis.NewChannelRepository(redisClient.Client)
	prizeRepository := prizeredis.NewPrizeRepository(redisClient.Client)
	sessionRepository := botredis.NewSessionRepository(redisClient.Client)

	// Инициализируем сервисы
	channelSvc := channelservice.NewChannelService(channelRepository, tgClient)
	checker := subscription.NewChecker(tgClient)
	userSvc := userservice.NewUserService(userRepository, channelSvc, checker)
	console := botservice.NewConsole(
		tgClient, userSvc, channelSvc, prizeRepository, sessionRepository,
		cfg.Telegram.AdminID, cfg.Telegram.WebAppURL,
	)

	log.Info().Msg("Services initialized")

	// Настраиваем Gin
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	// Настраиваем CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))

	// Настраиваем роуты
	miniapphttp.NewMiniAppHandler(userSvc, channelSvc, prizeRepository, cfg.Telegram.BotToken).RegisterRoutes(router)
	bothttp.NewWebhookHandler(console).RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "promo-roulette-backend",
		})
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	log.Info().Msg("Routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	stop()

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("Server exited")
}

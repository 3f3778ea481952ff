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

	_ "giveaway-engine-backend/docs"
	"giveaway-engine-backend/internal/common/config"
	"giveaway-engine-backend/internal/common/logger"
	"giveaway-engine-backend/internal/common/middleware"
	giveawayhttp "giveaway-engine-backend/internal/features/giveaway/delivery/http"
	giveawayredis "giveaway-engine-backend/internal/features/giveaway/repository/redis"
	giveawayservice "giveaway-engine-backend/internal/features/giveaway/service"
	invitehttp "giveaway-engine-backend/internal/features/invite/delivery/http"
	inviteservice "giveaway-engine-backend/internal/features/invite/service"
	participanthttp "giveaway-engine-backend/internal/features/participant/delivery/http"
	participantredis "giveaway-engine-backend/internal/features/participant/repository/redis"
	participantservice "giveaway-engine-backend/internal/features/participant/service"
	shippinghttp "giveaway-engine-backend/internal/features/shipping/delivery/http"
	shippingredis "giveaway-engine-backend/internal/features/shipping/repository/redis"
	shippingservice "giveaway-engine-backend/internal/features/shipping/service"
	supporthttp "giveaway-engine-backend/internal/features/support/delivery/http"
	supportredis "giveaway-engine-backend/internal/features/support/repository/redis"
	supportservice "giveaway-engine-backend/internal/features/support/service"
	taskhttp "giveaway-engine-backend/internal/features/task/delivery/http"
	taskredis "giveaway-engine-backend/internal/features/task/repository/redis"
	taskservice "giveaway-engine-backend/internal/features/task/service"
	"giveaway-engine-backend/internal/platform/audit"
	"giveaway-engine-backend/internal/platform/notify"
	"giveaway-engine-backend/internal/platform/redis"
	"giveaway-engine-backend/internal/workers"
)

// @title           Giveaway Engine API
// @version         1.0
// @description     Participation and reward engine for prize giveaways run inside a Telegram Mini App.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey TelegramInitData
// @in header
// @name init_data
// @description Telegram Mini App init_data string for authentication

// @tag.name giveaways
// @tag.description Giveaway lifecycle and winner selection

// @tag.name participants
// @tag.description Participation records and eligibility

// @tag.name tasks
// @tag.description Point-earning tasks and completions

// @tag.name invites
// @tag.description Referral codes and credits

// @tag.name support
// @tag.description Prize pool contributions

// @tag.name shipping
// @tag.description Winner delivery addresses

func main() {
	cfg := config.Load()
	logger.Init("giveaway-engine-backend", cfg.Debug)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	redisClient, err := redis.Open(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()

	auditLogger := audit.NewZerologAudit()

	var dispatcher notify.Dispatcher = notify.NewNoop()
	if cfg.Telegram.BotToken != "" && !cfg.Telegram.Debug {
		dispatcher = notify.NewTelegram(cfg.Telegram.BotToken)
	}

	giveawayRepo := giveawayredis.NewRedisGiveawayRepository(redisClient.Client)
	participantRepo := participantredis.NewRedisParticipantRepository(redisClient.Client)
	taskRepo := taskredis.NewRedisTaskRepository(redisClient.Client)
	supportRepo := supportredis.NewRedisSupportRepository(redisClient.Client)
	shippingRepo := shippingredis.NewRedisShippingRepository(redisClient.Client)

	giveawaySvc := giveawayservice.NewGiveawayService(giveawayRepo, participantRepo, nil, auditLogger)
	taskSvc := taskservice.NewTaskService(taskRepo, participantRepo, giveawaySvc, cfg, auditLogger)
	giveawaySvc.SetRequiredTaskLister(taskSvc)
	participantSvc := participantservice.NewParticipantService(participantRepo, giveawaySvc, taskSvc)
	inviteSvc := inviteservice.NewInviteService(participantRepo, giveawaySvc, cfg, auditLogger)
	supportSvc := supportservice.NewSupportService(supportRepo, giveawaySvc, auditLogger)
	shippingSvc := shippingservice.NewShippingService(shippingRepo, participantRepo, giveawaySvc, auditLogger)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept", "init_data"}
	router.Use(cors.New(corsConfig))

	v1 := router.Group("/api/v1")
	v1.Use(middleware.TelegramAuth(cfg))
	giveawayhttp.NewGiveawayHandler(giveawaySvc, dispatcher).RegisterRoutes(v1)
	participanthttp.NewParticipantHandler(participantSvc).RegisterRoutes(v1)
	taskhttp.NewTaskHandler(taskSvc).RegisterRoutes(v1)
	invitehttp.NewInviteHandler(inviteSvc).RegisterRoutes(v1)
	supporthttp.NewSupportHandler(supportSvc).RegisterRoutes(v1)
	shippinghttp.NewShippingHandler(shippingSvc).RegisterRoutes(v1)

	registerProbes(router, redisClient)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	sweeperCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go workers.NewStatusSweeper(giveawaySvc).Start(sweeperCtx)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

func registerProbes(router *gin.Engine, redisClient *redis.Client) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "giveaway-engine-backend",
		})
	})

	router.GET("/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unready",
				"error":   "redis unavailable",
				"details": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
		})
	})
}

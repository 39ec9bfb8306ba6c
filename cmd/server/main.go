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
	"gorm.io/gorm"

	rcache "exchange-backend/internal/cache/redis"
	"exchange-backend/internal/common/config"
	"exchange-backend/internal/common/logger"
	"exchange-backend/internal/common/middleware"
	authhttp "exchange-backend/internal/features/auth/delivery/http"
	authredis "exchange-backend/internal/features/auth/repository/redis"
	authservice "exchange-backend/internal/features/auth/service"
	purchasehttp "exchange-backend/internal/features/purchase/delivery/http"
	purchaserepo "exchange-backend/internal/features/purchase/repository/postgres"
	purchaseservice "exchange-backend/internal/features/purchase/service"
	tokenhttp "exchange-backend/internal/features/token/delivery/http"
	tokenrepo "exchange-backend/internal/features/token/repository/postgres"
	tokenservice "exchange-backend/internal/features/token/service"
	userhttp "exchange-backend/internal/features/user/delivery/http"
	userrepo "exchange-backend/internal/features/user/repository/postgres"
	userservice "exchange-backend/internal/features/user/service"
	wallethttp "exchange-backend/internal/features/wallet/delivery/http"
	walletservice "exchange-backend/internal/features/wallet/service"
	"exchange-backend/internal/mailer"
	"exchange-backend/internal/platform/db"
	redisplatform "exchange-backend/internal/platform/redis"
)

// @title           Exchange Backend API
// @version         1.0
// @description     API server for the exchange web application. All endpoints except register/login require a bearer session.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerSession
// @in header
// @name Authorization
// @description Bearer session token issued by /auth/login

// @tag.name auth
// @tag.description Registration, login and session management

// @tag.name users
// @tag.description Account records and profiles

// @tag.name wallet
// @tag.description Deposits, withdrawals and bonus claims

// @tag.name purchase
// @tag.description Transactional purchase operations

// @tag.name tokens
// @tag.description Deposit tokens, bot activation and listings

func main() {
	cfg := config.Load()
	logger.Init("exchange-backend", cfg.Debug)

	database, err := db.Open(cfg.Database.DSN, cfg.Debug)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if cfg.Database.AutoMigrate {
		if err := db.Migrate(database); err != nil {
			logger.Fatal().Err(err).Msg("Failed to migrate database")
		}
	}
	logger.Info().Msg("Database connection established")

	ctx := context.Background()
	redisClient, err := redisplatform.Open(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	userCache := rcache.NewUserCache(redisClient, time.Duration(cfg.Cache.UserTTLSec)*time.Second)

	userRepository := userrepo.NewUserRepository(database)
	purchaseRepository := purchaserepo.NewPurchaseRepository(database)
	tokenRepository := tokenrepo.NewTokenRepository(database)
	sessionRepository := authredis.NewSessionRepository(redisClient)

	mailClient := mailer.NewClient(cfg.Mail.BaseURL, cfg.Mail.APIKey, cfg.Mail.SenderAddr)

	userSvc := userservice.NewUserService(userRepository, userCache)
	authSvc := authservice.NewAuthService(sessionRepository, userRepository, time.Duration(cfg.Session.TTLSec)*time.Second)
	walletSvc := walletservice.NewWalletService(userRepository, userCache)
	purchaseSvc := purchaseservice.NewPurchaseService(purchaseRepository, mailClient, userCache)
	tokenSvc := tokenservice.NewTokenService(tokenRepository, userCache)

	logger.Info().Msg("Services initialized")

	worker := tokenservice.NewMaturationWorker(tokenSvc, time.Duration(cfg.Worker.MaturationIntervalSec)*time.Second)
	worker.Start(ctx)
	defer worker.Stop()

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.ErrorHandler())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept", "X-Request-ID"}
	router.Use(cors.New(corsConfig))

	v1 := router.Group("/api/v1")
	authhttp.NewAuthHandler(authSvc, userSvc).RegisterRoutes(v1)
	userhttp.NewUserHandler(userSvc, authSvc).RegisterRoutes(v1)
	wallethttp.NewWalletHandler(walletSvc, authSvc).RegisterRoutes(v1)
	purchasehttp.NewPurchaseHandler(purchaseSvc, authSvc).RegisterRoutes(v1)
	tokenhttp.NewTokenHandler(tokenSvc, authSvc).RegisterRoutes(v1)

	registerProbes(router, database, redisClient)

	logger.Info().Msg("Routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}

func registerProbes(router *gin.Engine, database *gorm.DB, redisClient *redisplatform.Client) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "exchange-backend",
		})
	})

	router.GET("/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(database); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unready",
				"error":   "postgres unavailable",
				"details": err.Error(),
			})
			return
		}

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
			"service":   "exchange-backend",
		})
	})
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"exchange-backend/internal/common/config"
	"exchange-backend/internal/common/logger"
	"exchange-backend/internal/common/middleware"
	"exchange-backend/internal/mailer"
)

func main() {
	cfg := config.Load()
	logger.Init("mail-relay", cfg.Debug)

	if cfg.Mail.APIKey == "" || cfg.Mail.SenderAddr == "" {
		logger.Fatal().Msg("MAIL_API_KEY and MAIL_SENDER_ADDRESS must be configured")
	}

	client := mailer.NewClient(cfg.Mail.BaseURL, cfg.Mail.APIKey, cfg.Mail.SenderAddr)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(gin.Recovery())

	mailer.NewHandler(client).RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "mail-relay"})
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Mail.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Mail.Port).Msg("Starting mail relay")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start mail relay")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down mail relay...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Mail relay forced to shutdown")
	}
}

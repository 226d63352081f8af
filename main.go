package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"dataportal/internal"
	"dataportal/internal/config"
	"dataportal/internal/container"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.LogLevel))
	internal.DefaultLogger = logger
	gin.SetMode(appConfig.Server.GinMode)

	appContainer, err := container.New(appConfig, logger, nil)
	if err != nil {
		logger.Error("[Main] failed to create application container: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := appContainer.Run(ctx); err != nil {
		logger.Error("[Main] server error: %v", err)
		os.Exit(1)
	}
	logger.Info("[Main] stopped")
}

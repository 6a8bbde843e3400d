package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/apaarauth/backend/src/app"
	"github.com/joho/godotenv"
)

// Command worker purges expired challenges on PURGE_SCHEDULE.
func main() {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Overload(".env"); err != nil {
			log.Fatalf("Error loading .env file: %v", err)
		}
	}

	config := app.NewAppConfig()

	logger := app.InitLogger(*config.LogLevel, *config.Environment).With().
		Str("service", "retention-worker").
		Logger()

	rootCtx, rootCancel := context.WithCancel(context.Background())
	rootCtx = logger.WithContext(rootCtx)

	logger.Info().
		Str("schedule", *config.PurgeSchedule).
		Dur("retention", *config.OTPRetention).
		Msg("Starting retention worker")

	application, err := app.NewRetentionApplication(rootCtx, *config)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize application")
		rootCancel()
		os.Exit(1)
	}

	wg := sync.WaitGroup{}
	wg.Add(1)
	go application.RunRetentionWorker(rootCtx, &wg)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	rootCancel()

	waitChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitChan)
	}()

	select {
	case <-waitChan:
		logger.Info().Msg("Retention worker shut down gracefully")
	case <-time.After(15 * time.Second):
		logger.Error().Msg("Timeout waiting for retention worker to shut down")
	}

	application.Shutdown(rootCtx)
}

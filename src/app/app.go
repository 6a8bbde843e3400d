package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/apaarauth/backend/src/database"
	"github.com/apaarauth/backend/src/handler"
	"github.com/apaarauth/backend/src/repository"
	"github.com/apaarauth/backend/src/repository/memory"
	"github.com/apaarauth/backend/src/service"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const rateLimitPrefix = "otp:issue"

type Application struct {
	config           AppConfig
	database         *gorm.DB
	redis            *redis.Client
	OTPService       *service.OTPService
	RetentionService *service.RetentionService
}

func NewApplication(ctx context.Context, config AppConfig) (*Application, error) {
	logger := zerolog.Ctx(ctx).With().Str("function", "NewApplication").Logger()

	// SMS gateway
	gateway, err := newGateway(config)
	if err != nil {
		return nil, err
	}
	if gateway.TestMode() {
		logger.Warn().Msg("Twilio is not configured, OTP codes are written to the log")
	}

	db, err := openDatabase(ctx, config)
	if err != nil {
		return nil, err
	}

	app := &Application{
		config:   config,
		database: db,
	}

	var limiter service.RateLimiter
	if *config.RedisAddr != "" {
		rdb, err := connectRedis(ctx, *config.RedisAddr)
		if err != nil {
			app.Shutdown(ctx)
			return nil, err
		}
		logger.Info().Msg("Redis connection established")
		app.redis = rdb
		limiter = repository.NewRateLimitRepository(rdb, rateLimitPrefix, *config.OTPRateLimit, *config.OTPRateWindow)
	} else {
		logger.Warn().Msg("REDIS_URL not set, using in-process rate limiting")
		limiter = memory.NewRateLimiter(*config.OTPRateLimit, *config.OTPRateWindow)
	}

	challengeRepo := repository.NewChallengeRepository(db)
	identityRepo := repository.NewIdentityRepository(db)

	app.OTPService = service.NewOTPService(identityRepo, challengeRepo, gateway, limiter, service.OTPConfig{
		TTL:         *config.OTPTTL,
		SingleUse:   *config.OTPSingleUse,
		CountryCode: *config.SMSCountryCode,
	})
	app.RetentionService = service.NewRetentionService(challengeRepo, *config.OTPRetention)

	return app, nil
}

// NewRetentionApplication wires only what the retention worker needs: the
// database and the purge service.
func NewRetentionApplication(ctx context.Context, config AppConfig) (*Application, error) {
	db, err := openDatabase(ctx, config)
	if err != nil {
		return nil, err
	}

	return &Application{
		config:           config,
		database:         db,
		RetentionService: service.NewRetentionService(repository.NewChallengeRepository(db), *config.OTPRetention),
	}, nil
}

// openDatabase connects to Postgres and applies pending migrations.
func openDatabase(ctx context.Context, config AppConfig) (*gorm.DB, error) {
	db, err := database.Open(ctx, *config.DSN)
	if err != nil {
		return nil, fmt.Errorf("connection to database failed: %w", err)
	}
	zerolog.Ctx(ctx).Info().Msg("Database connection established")

	if err := MigrationUp(*config.DSN, *config.MigrationPath); err != nil {
		_ = database.Close(db)
		return nil, err
	}
	return db, nil
}

// newGateway selects Twilio when configured. Test mode is refused in
// production unless explicitly allowed.
func newGateway(config AppConfig) (service.Gateway, error) {
	twilioConfig := service.TwilioConfig{
		AccountSID: *config.TwilioAccountSID,
		AuthToken:  *config.TwilioAuthToken,
		From:       *config.TwilioFrom,
		Timeout:    *config.SMSTimeout,
	}
	if !twilioConfig.Configured() && config.IsProduction() && !*config.AllowTestMode {
		return nil, errors.New("twilio credentials are required in production (set ALLOW_TEST_MODE=true to override)")
	}
	return service.NewGateway(twilioConfig)
}

func connectRedis(ctx context.Context, url string) (*redis.Client, error) {
	redisOpts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connection to redis failed: %w", err)
	}
	return rdb, nil
}

func (app *Application) Shutdown(ctx context.Context) {
	logger := zerolog.Ctx(ctx).With().Str("function", "Shutdown").Logger()

	// Close database connection
	if app.database != nil {
		if err := database.Close(app.database); err != nil {
			logger.Error().Err(err).Msg("Failed to close database connection")
		} else {
			logger.Info().Msg("Database connection closed")
		}
	}

	// Close Redis connection
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close redis connection")
		} else {
			logger.Info().Msg("Redis connection closed")
		}
	}
}

func (app *Application) RunHTTPServer(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	logger := zerolog.Ctx(ctx).With().Str("function", "RunHTTPServer").Logger()

	// Set to release mode to disable Gin logger
	gin.SetMode(gin.ReleaseMode)

	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery())

	// Register routes
	handler.RegisterRoutes(ctx, ginRouter, app.OTPService, *app.config.AllowOrigins)

	// Build HTTP server
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", *app.config.Port),
		Handler:           ginRouter,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().Msgf("HTTP server is on http://localhost:%s/health", *app.config.Port)
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			logger.Panic().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	// Wait for context cancellation
	<-ctx.Done()

	logger.Info().Msg("Gracefully shutting down HTTP server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Shutdown server
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Failed to shutdown HTTP server gracefully")
	} else {
		logger.Info().Msg("HTTP server shutdown complete")
	}
}

// RunRetentionWorker purges expired challenges on the configured schedule
// until ctx is canceled.
func (app *Application) RunRetentionWorker(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	logger := zerolog.Ctx(ctx).With().Str("function", "RunRetentionWorker").Logger()

	scheduler, err := service.NewRetentionScheduler(ctx, app.RetentionService, *app.config.PurgeSchedule)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create retention scheduler")
		return
	}

	logger.Info().Msg("Starting retention worker")
	scheduler.Start()

	<-ctx.Done()
	logger.Info().Msg("Stopping retention worker...")

	scheduler.Stop()

	logger.Info().Msg("Retention worker stopped")
}

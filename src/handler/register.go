package handler

import (
	"context"

	"github.com/apaarauth/backend/src/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes mounts the API on router. The OTP routes are served both at
// the root and under /api/v1.
func RegisterRoutes(ctx context.Context, router *gin.Engine, otpService *service.OTPService, allowOrigins []string) {
	if err := RegisterValidators(); err != nil {
		zerolog.Ctx(ctx).Panic().Err(err).Msg("failed to register binding validators")
	}

	// Configure CORS
	config := cors.DefaultConfig()
	config.AllowOrigins = allowOrigins
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", RequestIDHeader}
	config.ExposeHeaders = []string{RequestIDHeader}
	router.Use(cors.New(config))

	SetMiddlewares(ctx, router)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	otpHandler := NewOTPHandler(otpService)

	router.GET("/health", handleHealthCheck)
	router.POST("/send-otp", otpHandler.SendOTP)
	router.POST("/verify-otp", otpHandler.VerifyOTP)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handleHealthCheck)
		v1.POST("/send-otp", otpHandler.SendOTP)
		v1.POST("/verify-otp", otpHandler.VerifyOTP)
	}
}

package handler

import (
	"errors"
	"net/http"

	"github.com/apaarauth/backend/src/domain"
	"github.com/apaarauth/backend/src/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// StandardResponse is the body of every API response.
type StandardResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func respondWithSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Message: message,
	})
}

// respondWithError writes err as {success:false}. Business failures keep HTTP
// 200, server faults never expose their cause.
func respondWithError(c *gin.Context, err error) {
	domainErr := parseDomainError(err)
	status := domainErr.HTTPStatus()

	message := domainErr.ClientMsg()
	if message == "" || status >= http.StatusInternalServerError {
		message = service.MsgServerError
	}

	logger := zerolog.Ctx(c.Request.Context())
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	} else if domainErr.IsBusinessFailure() {
		event = logger.Info()
	}
	event.
		Err(err).
		Str("function", "respondWithError").
		Str("error_code", domainErr.Name()).
		Int("status", status).
		Fields(domainErr.Detail()).
		Msg(message)

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, StandardResponse{
		Success: false,
		Message: message,
	})
}

// parseDomainError extracts domain error information
func parseDomainError(err error) domain.DomainError {
	var domainError domain.DomainError
	// An empty domain.DomainError reports INTERNAL_PROCESS, so the result of
	// errors.As is not checked.
	_ = errors.As(err, &domainError)
	return domainError
}

package handler

import (
	"context"

	"github.com/apaarauth/backend/src/domain"
	"github.com/apaarauth/backend/src/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const msgInvalidPayload = "Invalid request payload"

type OTPHandler struct {
	otpService *service.OTPService
}

func NewOTPHandler(otpService *service.OTPService) *OTPHandler {
	return &OTPHandler{
		otpService: otpService,
	}
}

func (h *OTPHandler) logger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx).With().Str("handler", "otp").Logger()
	return &l
}

// SendOTPRequest represents the request payload for OTP issuance
type SendOTPRequest struct {
	AparID string        `json:"apar_id" binding:"aparid" example:"123456789012"`
	Phone  string        `json:"phone" binding:"phone10" example:"9876543210"`
	DOB    string        `json:"dob,omitempty" example:"2008-04-15"`
	Action domain.Intent `json:"action" binding:"intent" enums:"signup,login"`
}

// VerifyOTPRequest represents the request payload for OTP verification
type VerifyOTPRequest struct {
	AparID string        `json:"apar_id" binding:"required,aparid" example:"123456789012"`
	Phone  string        `json:"phone" binding:"required,phone10" example:"9876543210"`
	OTP    string        `json:"otp" binding:"required,otpcode" example:"4821"`
	DOB    string        `json:"dob,omitempty" example:"2008-04-15"`
	Action domain.Intent `json:"action" binding:"intent" enums:"signup,login"`
}

// SendOTP godoc
// @Summary Issue an OTP
// @Description Checks signup or login eligibility for the APAAR ID and phone pair, stores a new code and sends it by SMS.
// @Tags otp
// @Accept json
// @Produce json
// @Param request body SendOTPRequest true "Identity pair and action"
// @Success 200 {object} StandardResponse "success=true when sent, success=false for rule failures"
// @Failure 400 {object} StandardResponse
// @Failure 429 {object} StandardResponse
// @Failure 500 {object} StandardResponse
// @Router /send-otp [post]
func (h *OTPHandler) SendOTP(c *gin.Context) {
	logger := h.logger(c.Request.Context()).With().Str("func", "SendOTP").Logger()

	var req SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		msg := bindingErrorMessage(err)
		logger.Debug().Err(err).Msg("invalid request payload")
		respondWithError(c, domain.NewError(domain.ErrorCodeParameterInvalid, err, domain.WithMsg(msg)))
		return
	}

	err := h.otpService.RequestChallenge(c.Request.Context(), service.ChallengeRequest{
		AparID: req.AparID,
		Phone:  req.Phone,
		DOB:    req.DOB,
		Intent: req.Action,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondWithSuccess(c, service.MsgOTPSent)
}

// VerifyOTP godoc
// @Summary Verify an OTP
// @Description Matches the code against the latest OTP for the pair and completes signup or login.
// @Tags otp
// @Accept json
// @Produce json
// @Param request body VerifyOTPRequest true "Identity pair, code and action"
// @Success 200 {object} StandardResponse "success=true on signup or login, success=false for rule failures"
// @Failure 400 {object} StandardResponse
// @Failure 500 {object} StandardResponse
// @Router /verify-otp [post]
func (h *OTPHandler) VerifyOTP(c *gin.Context) {
	logger := h.logger(c.Request.Context()).With().Str("func", "VerifyOTP").Logger()

	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		msg := bindingErrorMessage(err)
		logger.Debug().Err(err).Msg("invalid request payload")
		respondWithError(c, domain.NewError(domain.ErrorCodeParameterInvalid, err, domain.WithMsg(msg)))
		return
	}

	result, err := h.otpService.VerifyChallenge(c.Request.Context(), service.VerificationRequest{
		AparID: req.AparID,
		Phone:  req.Phone,
		Code:   req.OTP,
		DOB:    req.DOB,
		Intent: req.Action,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondWithSuccess(c, result.Message)
}

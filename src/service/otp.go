package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apaarauth/backend/src/domain"
	"github.com/apaarauth/backend/src/utils"
	"github.com/rs/zerolog"
)

const (
	DefaultChallengeTTL = 5 * time.Minute
	DefaultCountryCode  = "+91"
)

// Client-facing messages
const (
	MsgAparIDInvalid    = "APAAR ID must be 12 digits"
	MsgPhoneInvalid     = "Phone number must be 10 digits"
	MsgIntentInvalid    = "Action must be signup or login"
	MsgDOBInvalid       = "Date of birth must be in YYYY-MM-DD format"
	MsgCodeInvalid      = "OTP must be 4 digits"
	MsgFieldsRequired   = "All fields required"
	MsgAgeRequirement   = "Age must be at least 15 years"
	MsgAparIDExists     = "APAAR ID already exists. Please login."
	MsgPhoneExists      = "Phone number already exists. Please login."
	MsgUserExists       = "User already exists. Please login."
	MsgNoAccount        = "No account found. Please signup."
	MsgTooManyRequests  = "Too many OTP requests. Please try again later."
	MsgOTPSent          = "OTP sent successfully"
	MsgNoOTP            = "No OTP found"
	MsgOTPExpired       = "OTP expired"
	MsgOTPMismatch      = "OTP doesn't match"
	MsgOTPUsed          = "OTP already used"
	MsgSignupSuccessful = "Signup successful!"
	MsgLoginSuccessful  = "Login successful!"
	MsgServerError      = "Server error"
)

const (
	codeDigits         = 4
	rateLimitKeyPrefix = "phone:"
)

// IdentityStore is the minimal identity persistence needed by OTPService.
type IdentityStore interface {
	ExistsByAparID(ctx context.Context, aparID string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	ExistsByAparIDOrPhone(ctx context.Context, aparID, phone string) (bool, error)
	// CreateIdentity must fail with domain.ErrDuplicateIdentity on a unique
	// constraint violation.
	CreateIdentity(ctx context.Context, identity *domain.Identity) error
}

// ChallengeStore is the minimal challenge persistence needed by OTPService.
type ChallengeStore interface {
	CreateChallenge(ctx context.Context, challenge *domain.Challenge) error
	FindLatest(ctx context.Context, aparID, phone string) (*domain.Challenge, error)
	Consume(ctx context.Context, id int64, at time.Time) (bool, error)
}

// RateLimiter counts issuance attempts per key.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type OTPConfig struct {
	// TTL is the validity window of an issued challenge
	TTL time.Duration
	// SingleUse consumes a challenge on its first successful verification
	SingleUse bool
	// CountryCode is prefixed to the 10-digit phone for delivery
	CountryCode string
}

// ChallengeRequest is the input of RequestChallenge.
type ChallengeRequest struct {
	AparID string
	Phone  string
	DOB    string
	Intent domain.Intent
}

// VerificationRequest is the input of VerifyChallenge.
type VerificationRequest struct {
	AparID string
	Phone  string
	Code   string
	DOB    string
	Intent domain.Intent
}

type VerificationResult struct {
	Outcome domain.Outcome
	Message string
}

type OTPService struct {
	identities IdentityStore
	challenges ChallengeStore
	gateway    Gateway
	limiter    RateLimiter
	config     OTPConfig

	nowF     func() time.Time
	generate func() (string, error)
}

// NewOTPService wires the engine. limiter may be nil to disable rate limiting.
func NewOTPService(identities IdentityStore, challenges ChallengeStore, gateway Gateway, limiter RateLimiter, config OTPConfig) *OTPService {
	if config.TTL <= 0 {
		config.TTL = DefaultChallengeTTL
	}
	if config.CountryCode == "" {
		config.CountryCode = DefaultCountryCode
	}
	if gateway == nil {
		gateway = NewLogGateway()
	}

	return &OTPService{
		identities: identities,
		challenges: challenges,
		gateway:    gateway,
		limiter:    limiter,
		config:     config,
		nowF:       func() time.Time { return time.Now().UTC() },
		generate:   GenerateCode,
	}
}

// logger wraps the execution context with component info
func (s *OTPService) logger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx).With().Str("component", "otp-service").Logger()
	return &l
}

// RequestChallenge checks eligibility for the intent, stores a new challenge
// and delivers its code. The code is never returned.
func (s *OTPService) RequestChallenge(ctx context.Context, req ChallengeRequest) error {
	logger := s.logger(ctx).With().
		Str("func", "RequestChallenge").
		Str("intent", string(req.Intent)).
		Str("phone", utils.MaskPhone(req.Phone)).
		Logger()

	if err := validatePair(req.AparID, req.Phone); err != nil {
		return err
	}
	if !req.Intent.Valid() {
		return invalidParameter(MsgIntentInvalid)
	}

	now := s.nowF()

	switch req.Intent {
	case domain.IntentSignup:
		if _, err := s.checkAge(req.DOB, now); err != nil {
			return err
		}
		if err := s.checkSignupAvailable(ctx, req.AparID, req.Phone); err != nil {
			return err
		}
	case domain.IntentLogin:
		exists, err := s.identities.ExistsByAparIDOrPhone(ctx, req.AparID, req.Phone)
		if err != nil {
			return internalError(err)
		}
		if !exists {
			return domain.NewError(domain.ErrorCodeNoSuchIdentity, errors.New("no identity for apar_id or phone"), domain.WithMsg(MsgNoAccount))
		}
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, rateLimitKeyPrefix+req.Phone)
		if err != nil {
			// fail open
			logger.Error().Err(err).Msg("rate limiter unavailable")
		} else if !allowed {
			return domain.NewError(domain.ErrorCodeTooManyRequests, errors.New("issuance rate limit exceeded"), domain.WithMsg(MsgTooManyRequests))
		}
	}

	code, err := s.generate()
	if err != nil {
		return internalError(fmt.Errorf("failed to generate code: %w", err))
	}

	challenge := &domain.Challenge{
		AparID:    req.AparID,
		Phone:     req.Phone,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(s.config.TTL),
	}
	if err := s.challenges.CreateChallenge(ctx, challenge); err != nil {
		return internalError(err)
	}

	// The challenge stays stored if delivery fails.
	if err := s.gateway.Send(ctx, s.config.CountryCode+req.Phone, "Your OTP is "+code); err != nil {
		return domain.NewError(domain.ErrorCodeRemoteProcess, err, domain.WithMsg(MsgServerError))
	}

	logger.Info().
		Int64("challenge_id", challenge.ID).
		Time("expires_at", challenge.ExpiresAt).
		Bool("test_mode", s.gateway.TestMode()).
		Msg("challenge issued")

	return nil
}

// VerifyChallenge matches code against the latest challenge for the pair and,
// on success, completes signup or login.
func (s *OTPService) VerifyChallenge(ctx context.Context, req VerificationRequest) (*VerificationResult, error) {
	logger := s.logger(ctx).With().
		Str("func", "VerifyChallenge").
		Str("intent", string(req.Intent)).
		Str("phone", utils.MaskPhone(req.Phone)).
		Logger()

	if req.AparID == "" || req.Phone == "" || req.Code == "" {
		return nil, invalidParameter(MsgFieldsRequired)
	}
	if err := validatePair(req.AparID, req.Phone); err != nil {
		return nil, err
	}
	if !IsCode(req.Code) {
		return nil, invalidParameter(MsgCodeInvalid)
	}
	if !req.Intent.Valid() {
		return nil, invalidParameter(MsgIntentInvalid)
	}

	challenge, err := s.challenges.FindLatest(ctx, req.AparID, req.Phone)
	if err != nil {
		return nil, internalError(err)
	}
	if challenge == nil {
		return nil, domain.NewError(domain.ErrorCodeNoChallengeFound, errors.New("no challenge for pair"), domain.WithMsg(MsgNoOTP))
	}

	now := s.nowF()
	if challenge.ExpiredAt(now) {
		return nil, domain.NewError(domain.ErrorCodeChallengeExpired, fmt.Errorf("challenge %d expired at %s", challenge.ID, challenge.ExpiresAt), domain.WithMsg(MsgOTPExpired))
	}
	if !CodeEqual(req.Code, challenge.Code) {
		return nil, domain.NewError(domain.ErrorCodeCodeMismatch, fmt.Errorf("challenge %d code mismatch", challenge.ID), domain.WithMsg(MsgOTPMismatch))
	}

	var dob time.Time
	if req.Intent == domain.IntentSignup {
		if dob, err = s.checkAge(req.DOB, now); err != nil {
			return nil, err
		}
		// Another signup may have completed since issuance
		exists, err := s.identities.ExistsByAparIDOrPhone(ctx, req.AparID, req.Phone)
		if err != nil {
			return nil, internalError(err)
		}
		if exists {
			return nil, domain.NewError(domain.ErrorCodeIdentityConflict, errors.New("identity created after issuance"), domain.WithMsg(MsgUserExists))
		}
	}

	if s.config.SingleUse {
		if challenge.Consumed() {
			return nil, consumedError(challenge.ID)
		}
		ok, err := s.challenges.Consume(ctx, challenge.ID, now)
		if err != nil {
			return nil, internalError(err)
		}
		if !ok {
			return nil, consumedError(challenge.ID)
		}
	}

	if req.Intent == domain.IntentLogin {
		logger.Info().Int64("challenge_id", challenge.ID).Msg("login verified")
		return &VerificationResult{Outcome: domain.OutcomeLoginComplete, Message: MsgLoginSuccessful}, nil
	}

	identity := &domain.Identity{
		AparID:    req.AparID,
		Phone:     req.Phone,
		DOB:       dob,
		CreatedAt: now,
	}
	if err := s.identities.CreateIdentity(ctx, identity); err != nil {
		if errors.Is(err, domain.ErrDuplicateIdentity) {
			return nil, domain.NewError(domain.ErrorCodeIdentityConflict, err, domain.WithMsg(MsgUserExists))
		}
		return nil, internalError(err)
	}

	logger.Info().Int64("challenge_id", challenge.ID).Int64("identity_id", identity.ID).Msg("signup verified")
	return &VerificationResult{Outcome: domain.OutcomeSignupComplete, Message: MsgSignupSuccessful}, nil
}

// checkSignupAvailable rejects a signup when the ID or phone is taken. The ID
// is checked first.
func (s *OTPService) checkSignupAvailable(ctx context.Context, aparID, phone string) error {
	idTaken, err := s.identities.ExistsByAparID(ctx, aparID)
	if err != nil {
		return internalError(err)
	}
	if idTaken {
		return domain.NewError(domain.ErrorCodeIdentityConflict, errors.New("apar_id registered"), domain.WithMsg(MsgAparIDExists))
	}

	phoneTaken, err := s.identities.ExistsByPhone(ctx, phone)
	if err != nil {
		return internalError(err)
	}
	if phoneTaken {
		return domain.NewError(domain.ErrorCodeIdentityConflict, errors.New("phone registered"), domain.WithMsg(MsgPhoneExists))
	}
	return nil
}

// checkAge parses dob and enforces the minimum signup age. A missing dob is
// an age failure, a malformed one is a parameter error.
func (s *OTPService) checkAge(dob string, now time.Time) (time.Time, error) {
	if dob == "" {
		return time.Time{}, domain.NewError(domain.ErrorCodeAgeRequirement, errors.New("dob missing"), domain.WithMsg(MsgAgeRequirement))
	}
	birth, err := domain.ParseBirthDate(dob)
	if err != nil {
		return time.Time{}, domain.NewError(domain.ErrorCodeParameterInvalid, err, domain.WithMsg(MsgDOBInvalid))
	}
	if domain.AgeOn(birth, now) < domain.MinimumSignupAge {
		return time.Time{}, domain.NewError(domain.ErrorCodeAgeRequirement, fmt.Errorf("age below %d", domain.MinimumSignupAge), domain.WithMsg(MsgAgeRequirement))
	}
	return birth, nil
}

func validatePair(aparID, phone string) error {
	if !domain.IsValidAparID(aparID) {
		return invalidParameter(MsgAparIDInvalid)
	}
	if !domain.IsValidPhone(phone) {
		return invalidParameter(MsgPhoneInvalid)
	}
	return nil
}

// IsCode reports whether code has the shape of an issued code.
func IsCode(code string) bool {
	if len(code) != codeDigits {
		return false
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func invalidParameter(msg string) error {
	return domain.NewError(domain.ErrorCodeParameterInvalid, errors.New(msg), domain.WithMsg(msg))
}

func internalError(err error) error {
	return domain.NewError(domain.ErrorCodeInternalProcess, err, domain.WithMsg(MsgServerError))
}

func consumedError(id int64) error {
	return domain.NewError(domain.ErrorCodeChallengeConsumed, fmt.Errorf("challenge %d already consumed", id), domain.WithMsg(MsgOTPUsed))
}

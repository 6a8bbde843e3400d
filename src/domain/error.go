package domain

import (
	"errors"
	"net/http"
)

// ErrorCode identifies a class of failure and the HTTP status it maps to.
type ErrorCode struct {
	Name       string
	StatusCode int
}

// Input shape
var ErrorCodeParameterInvalid = ErrorCode{Name: "PARAMETER_INVALID", StatusCode: http.StatusBadRequest}

// Business rule failures are reported with HTTP 200 and success=false.
var (
	ErrorCodeAgeRequirement    = ErrorCode{Name: "AGE_REQUIREMENT", StatusCode: http.StatusOK}
	ErrorCodeIdentityConflict  = ErrorCode{Name: "IDENTITY_CONFLICT", StatusCode: http.StatusOK}
	ErrorCodeNoSuchIdentity    = ErrorCode{Name: "NO_SUCH_IDENTITY", StatusCode: http.StatusOK}
	ErrorCodeNoChallengeFound  = ErrorCode{Name: "NO_CHALLENGE_FOUND", StatusCode: http.StatusOK}
	ErrorCodeChallengeExpired  = ErrorCode{Name: "CHALLENGE_EXPIRED", StatusCode: http.StatusOK}
	ErrorCodeCodeMismatch      = ErrorCode{Name: "CODE_MISMATCH", StatusCode: http.StatusOK}
	ErrorCodeChallengeConsumed = ErrorCode{Name: "CHALLENGE_CONSUMED", StatusCode: http.StatusOK}
)

var ErrorCodeTooManyRequests = ErrorCode{Name: "TOO_MANY_REQUESTS", StatusCode: http.StatusTooManyRequests}

// Infrastructure
var (
	ErrorCodeInternalProcess = ErrorCode{Name: "INTERNAL_PROCESS", StatusCode: http.StatusInternalServerError}
	ErrorCodeRemoteProcess   = ErrorCode{Name: "REMOTE_PROCESS_ERROR", StatusCode: http.StatusInternalServerError}
)

// ErrDuplicateIdentity is returned by identity stores when an insert violates
// the apar_id or phone unique constraint.
var ErrDuplicateIdentity = errors.New("identity already exists")

// DomainError carries an error code, the underlying cause (server side only)
// and the message that may be shown to the client.
type DomainError struct {
	code      ErrorCode
	err       error
	clientMsg string
	detail    map[string]interface{}
}

type ErrorOption func(*DomainError)

// WithMsg sets the client-facing message.
func WithMsg(msg string) ErrorOption {
	return func(e *DomainError) {
		e.clientMsg = msg
	}
}

// WithDetail attaches structured detail, logged next to the error.
func WithDetail(detail map[string]interface{}) ErrorOption {
	return func(e *DomainError) {
		e.detail = detail
	}
}

func NewError(code ErrorCode, err error, opts ...ErrorOption) error {
	if err == nil {
		err = errors.New(code.Name)
	}
	e := DomainError{code: code, err: err}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

func (e DomainError) Error() string {
	if e.err == nil {
		return e.Name()
	}
	return e.Name() + ": " + e.err.Error()
}

func (e DomainError) Unwrap() error {
	return e.err
}

// Name returns the code name. A zero DomainError reports INTERNAL_PROCESS so
// unknown errors collapse to a generic server failure.
func (e DomainError) Name() string {
	if e.code.Name == "" {
		return ErrorCodeInternalProcess.Name
	}
	return e.code.Name
}

func (e DomainError) Code() ErrorCode {
	if e.code.Name == "" {
		return ErrorCodeInternalProcess
	}
	return e.code
}

func (e DomainError) HTTPStatus() int {
	return e.Code().StatusCode
}

func (e DomainError) ClientMsg() string {
	return e.clientMsg
}

func (e DomainError) Detail() map[string]interface{} {
	return e.detail
}

// IsBusinessFailure reports whether the error is an expected rule outcome
// rather than a fault.
func (e DomainError) IsBusinessFailure() bool {
	return e.HTTPStatus() == http.StatusOK
}

// HasCode reports whether err wraps a DomainError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var domainErr DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	return domainErr.Code() == code
}

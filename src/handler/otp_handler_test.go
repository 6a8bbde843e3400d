package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/apaarauth/backend/src/domain"
	"github.com/apaarauth/backend/src/repository/memory"
	"github.com/apaarauth/backend/src/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var smsCode = regexp.MustCompile(`\d{4}$`)

// inboxGateway keeps the last code sent to each destination.
type inboxGateway struct {
	mu    sync.Mutex
	codes map[string]string
	err   error
}

func (g *inboxGateway) Send(_ context.Context, to, body string) error {
	if g.err != nil {
		return g.err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.codes[to] = smsCode.FindString(body)
	return nil
}

func (g *inboxGateway) TestMode() bool { return true }

func (g *inboxGateway) last(to string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.codes[to]
}

type testServer struct {
	router     *gin.Engine
	gateway    *inboxGateway
	identities *memory.IdentityStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gateway := &inboxGateway{codes: make(map[string]string)}
	identities := memory.NewIdentityStore()
	otpService := service.NewOTPService(identities, memory.NewChallengeStore(), gateway, nil, service.OTPConfig{
		TTL:       5 * time.Minute,
		SingleUse: true,
	})

	router := gin.New()
	RegisterRoutes(context.Background(), router, otpService, []string{"http://localhost:5173"})

	return &testServer{router: router, gateway: gateway, identities: identities}
}

func (s *testServer) post(t *testing.T, path string, body interface{}) (int, StandardResponse) {
	t.Helper()

	var payload []byte
	switch b := body.(type) {
	case string:
		payload = []byte(b)
	default:
		var err error
		payload, err = json.Marshal(b)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp StandardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func birthDate(years int) string {
	return time.Now().UTC().AddDate(-years, 0, -1).Format(time.DateOnly)
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/health", "/api/v1/health"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"message":"ok"}`, w.Body.String())
	}
}

func TestLoggerMiddleware_RequestID(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestSendOTP_Validation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body interface{}
		msg  string
	}{
		{"short apar id", gin.H{"apar_id": "1234", "phone": "9876543210", "action": "login"}, service.MsgAparIDInvalid},
		{"missing apar id", gin.H{"phone": "9876543210", "action": "login"}, service.MsgAparIDInvalid},
		{"bad phone", gin.H{"apar_id": "123456789012", "phone": "98765", "action": "login"}, service.MsgPhoneInvalid},
		{"bad action", gin.H{"apar_id": "123456789012", "phone": "9876543210", "action": "delete"}, service.MsgIntentInvalid},
		{"malformed dob", gin.H{"apar_id": "123456789012", "phone": "9876543210", "dob": "15-04-2008", "action": "signup"}, service.MsgDOBInvalid},
		{"not json", `{"apar_id":`, msgInvalidPayload},
		{"wrong type", `{"apar_id":123456789012,"phone":"9876543210","action":"login"}`, msgInvalidPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := s.post(t, "/send-otp", tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.msg, resp.Message)
		})
	}
}

func TestVerifyOTP_Validation(t *testing.T) {
	s := newTestServer(t)

	status, resp := s.post(t, "/verify-otp", gin.H{"apar_id": "123456789012", "phone": "9876543210", "action": "login"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, service.MsgFieldsRequired, resp.Message)

	status, resp = s.post(t, "/verify-otp", gin.H{"apar_id": "123456789012", "phone": "9876543210", "otp": "12345", "action": "login"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, service.MsgCodeInvalid, resp.Message)
}

func TestSignupAndLoginFlow(t *testing.T) {
	s := newTestServer(t)
	dob := birthDate(16)
	to := "+919876543210"

	status, resp := s.post(t, "/send-otp", gin.H{"apar_id": "123456789012", "phone": "9876543210", "dob": dob, "action": "signup"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, StandardResponse{Success: true, Message: service.MsgOTPSent}, resp)
	code := s.gateway.last(to)
	require.Len(t, code, 4)

	status, resp = s.post(t, "/verify-otp", gin.H{"apar_id": "123456789012", "phone": "9876543210", "otp": code, "dob": dob, "action": "signup"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, StandardResponse{Success: true, Message: service.MsgSignupSuccessful}, resp)
	assert.Equal(t, 1, s.identities.Count())

	// repeat signup is a business failure reported with 200
	status, resp = s.post(t, "/send-otp", gin.H{"apar_id": "123456789012", "phone": "9876543210", "dob": dob, "action": "signup"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, StandardResponse{Success: false, Message: service.MsgAparIDExists}, resp)

	status, resp = s.post(t, "/api/v1/send-otp", gin.H{"apar_id": "123456789012", "phone": "9876543210", "action": "login"})
	require.Equal(t, http.StatusOK, status)
	require.True(t, resp.Success)
	code = s.gateway.last(to)

	status, resp = s.post(t, "/api/v1/verify-otp", gin.H{"apar_id": "123456789012", "phone": "9876543210", "otp": code, "action": "login"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, StandardResponse{Success: true, Message: service.MsgLoginSuccessful}, resp)

	status, resp = s.post(t, "/api/v1/verify-otp", gin.H{"apar_id": "123456789012", "phone": "9876543210", "otp": code, "action": "login"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, StandardResponse{Success: false, Message: service.MsgOTPUsed}, resp)
}

func TestBusinessFailures(t *testing.T) {
	s := newTestServer(t)

	status, resp := s.post(t, "/send-otp", gin.H{"apar_id": "123456789012", "phone": "9876543210", "action": "login"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, StandardResponse{Success: false, Message: service.MsgNoAccount}, resp)

	status, resp = s.post(t, "/send-otp", gin.H{"apar_id": "123456789012", "phone": "9876543210", "dob": birthDate(14), "action": "signup"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, StandardResponse{Success: false, Message: service.MsgAgeRequirement}, resp)

	status, resp = s.post(t, "/verify-otp", gin.H{"apar_id": "123456789012", "phone": "9876543210", "otp": "1234", "action": "login"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, StandardResponse{Success: false, Message: service.MsgNoOTP}, resp)
}

func TestSendOTP_GatewayFailure(t *testing.T) {
	s := newTestServer(t)
	s.gateway.err = errors.New("twilio: 20003 authenticate")

	status, resp := s.post(t, "/send-otp", gin.H{"apar_id": "123456789012", "phone": "9876543210", "dob": birthDate(30), "action": "signup"})
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, StandardResponse{Success: false, Message: service.MsgServerError}, resp)
}

// brokenChallengeStore fails every lookup the way a dropped database
// connection would.
type brokenChallengeStore struct {
	*memory.ChallengeStore
	err error
}

func (s brokenChallengeStore) FindLatest(context.Context, string, string) (*domain.Challenge, error) {
	return nil, s.err
}

func TestVerifyOTP_StoreFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)

	challenges := brokenChallengeStore{
		ChallengeStore: memory.NewChallengeStore(),
		err:            errors.New("pq: password authentication failed for user \"otp\""),
	}
	otpService := service.NewOTPService(memory.NewIdentityStore(), challenges, &inboxGateway{codes: make(map[string]string)}, nil, service.OTPConfig{SingleUse: true})

	router := gin.New()
	RegisterRoutes(context.Background(), router, otpService, []string{"http://localhost:5173"})
	s := &testServer{router: router}

	for _, path := range []string{"/verify-otp", "/api/v1/verify-otp"} {
		status, resp := s.post(t, path, gin.H{"apar_id": "123456789012", "phone": "9876543210", "otp": "1234", "action": "login"})
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, StandardResponse{Success: false, Message: service.MsgServerError}, resp)
	}

	req := httptest.NewRequest(http.MethodPost, "/verify-otp", bytes.NewReader([]byte(`{"apar_id":"123456789012","phone":"9876543210","otp":"1234","action":"login"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.NotContains(t, w.Body.String(), "pq:")
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRespondWithError_UnknownError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/send-otp", nil)

	respondWithError(c, errors.New("pq: connection reset"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Server error"}`, w.Body.String())
}

func TestRespondWithError_RateLimited(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/send-otp", nil)

	respondWithError(c, domain.NewError(domain.ErrorCodeTooManyRequests, nil, domain.WithMsg(service.MsgTooManyRequests)))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Too many OTP requests. Please try again later."}`, w.Body.String())
}

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/placereviews/internal/httputil"
	"github.com/redmonkez12/placereviews/internal/logging"
)

type stubLimiter struct {
	exceeded bool
	err      error
	recorded []string
}

func (s *stubLimiter) CheckIPRateLimitWithPurpose(_ context.Context, _, _ string) (bool, error) {
	return s.exceeded, s.err
}

func (s *stubLimiter) RecordIPRequestWithPurpose(_ context.Context, ip, purpose string) error {
	s.recorded = append(s.recorded, purpose+"@"+ip)
	return nil
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	req = req.WithContext(logging.WithLogger(req.Context(), logging.Discard()))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func formRequest(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httputil.ErrorResponse {
	t.Helper()
	var body httputil.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestHandler_Register(t *testing.T) {
	env := newTestEnv(t)
	h := NewHandler(env.service, nil, logging.Discard())

	rec := serve(h.Register, jsonRequest(http.MethodPost, "/register", `{"email":"a@x.com","password":"pw1"}`))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"message":"registration successful"}`, rec.Body.String())

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"duplicate", `{"email":"a@x.com","password":"pw2"}`, http.StatusConflict, httputil.CodeEmailAlreadyExists},
		{"invalid email", `{"email":"nope","password":"pw"}`, http.StatusBadRequest, httputil.CodeInvalidEmailFormat},
		{"missing password", `{"email":"b@x.com"}`, http.StatusBadRequest, httputil.CodePasswordRequired},
		{"not json", `email=a@x.com`, http.StatusBadRequest, httputil.CodeInvalidRequestBody},
		{"empty body", ``, http.StatusBadRequest, httputil.CodeInvalidRequestBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h.Register, jsonRequest(http.MethodPost, "/register", tt.body))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}

func TestHandler_RegisterStoreFailure(t *testing.T) {
	env := newTestEnv(t)
	svc := NewService(brokenRepo{}, fastHasher(), env.tokens, env.verifier, nil, logging.Discard())
	h := NewHandler(svc, nil, logging.Discard())

	rec := serve(h.Register, jsonRequest(http.MethodPost, "/register", `{"email":"a@x.com","password":"pw1"}`))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), errStoreDown.Error())
}

func TestHandler_Login(t *testing.T) {
	env := newTestEnv(t)
	h := NewHandler(env.service, nil, logging.Discard())
	_, err := env.service.Register(context.Background(), "a@x.com", "pw1")
	require.NoError(t, err)

	rec := serve(h.Login, formRequest(url.Values{"username": {"a@x.com"}, "password": {"pw1"}}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var tokens AuthTokens
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&tokens))
	assert.Equal(t, "bearer", tokens.TokenType)
	assert.Equal(t, int64(3600), tokens.ExpiresIn)

	identity, err := env.service.ResolveCurrentUser(context.Background(), tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", identity.Email)

	wrong := serve(h.Login, formRequest(url.Values{"username": {"a@x.com"}, "password": {"bad"}}))
	unknown := serve(h.Login, formRequest(url.Values{"username": {"ghost@x.com"}, "password": {"pw1"}}))
	assert.Equal(t, http.StatusBadRequest, wrong.Code)
	assert.Equal(t, http.StatusBadRequest, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String(), "unknown email and wrong password are indistinguishable")
	assert.Equal(t, httputil.CodeInvalidCredentials, decodeError(t, wrong).Code)

	missing := serve(h.Login, formRequest(url.Values{"username": {"a@x.com"}}))
	assert.Equal(t, http.StatusBadRequest, missing.Code)
	assert.Equal(t, httputil.CodeInvalidRequestBody, decodeError(t, missing).Code)

	grant := serve(h.Login, formRequest(url.Values{"grant_type": {"client_credentials"}, "username": {"a@x.com"}, "password": {"pw1"}}))
	assert.Equal(t, http.StatusBadRequest, grant.Code)
}

func TestHandler_GoogleLogin(t *testing.T) {
	env := newTestEnv(t)
	env.verifier.emails["good"] = "g@x.com"
	h := NewHandler(env.service, nil, logging.Discard())

	rec := serve(h.GoogleLogin, jsonRequest(http.MethodPost, "/google-login", `{"token":"good"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	var tokens AuthTokens
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&tokens))
	assert.Equal(t, "bearer", tokens.TokenType)

	bad := serve(h.GoogleLogin, jsonRequest(http.MethodPost, "/google-login", `{"token":"forged"}`))
	assert.Equal(t, http.StatusUnauthorized, bad.Code)
	assert.Equal(t, httputil.CodeInvalidFederatedToken, decodeError(t, bad).Code)

	malformed := serve(h.GoogleLogin, jsonRequest(http.MethodPost, "/google-login", `{"token":`))
	assert.Equal(t, http.StatusBadRequest, malformed.Code)
}

func TestHandler_Me(t *testing.T) {
	env := newTestEnv(t)
	h := NewHandler(env.service, nil, logging.Discard())

	rec := serve(h.Me, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req = req.WithContext(WithIdentity(req.Context(), &Identity{Email: "a@x.com"}))
	rec = serve(h.Me, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var identity Identity
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&identity))
	assert.Equal(t, "a@x.com", identity.Email)
}

func TestHandler_RateLimit(t *testing.T) {
	env := newTestEnv(t)

	limiter := &stubLimiter{exceeded: true}
	h := NewHandler(env.service, limiter, logging.Discard())

	rec := serve(h.Register, jsonRequest(http.MethodPost, "/register", `{"email":"a@x.com","password":"pw1"}`))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Empty(t, limiter.recorded)

	rec = serve(h.Login, formRequest(url.Values{"username": {"a@x.com"}, "password": {"pw1"}}))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	limiter.exceeded = false
	req := formRequest(url.Values{"username": {"a@x.com"}, "password": {"pw1"}})
	req.RemoteAddr = "203.0.113.7:5555"
	serve(h.Login, req)
	assert.Equal(t, []string{"login@203.0.113.7"}, limiter.recorded)

	// Limiter outages fail open.
	limiter.err = errors.New("redis down")
	rec = serve(h.Register, jsonRequest(http.MethodPost, "/register", `{"email":"a@x.com","password":"pw1"}`))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

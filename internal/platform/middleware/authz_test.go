// Copyright (c) 2026 Schemely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/schemely/internal/platform/ctxutil"
	"github.com/taibuivan/schemely/internal/platform/middleware"
	"github.com/taibuivan/schemely/internal/platform/ratelimit"
	"github.com/taibuivan/schemely/internal/platform/sec"
)

type stubVerifier map[string]*sec.SessionClaims

func (verifier stubVerifier) VerifyToken(token string) (*sec.SessionClaims, error) {
	if claims, ok := verifier[token]; ok {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

func TestAuthenticate(t *testing.T) {
	alice := &sec.SessionClaims{UserID: "alice"}
	bob := &sec.SessionClaims{UserID: "bob"}
	verifier := stubVerifier{"alice-token": alice, "bob-token": bob}

	tests := []struct {
		name   string
		cookie string
		header string
		want   *sec.SessionClaims
	}{
		{"anonymous", "", "", nil},
		{"cookie", "alice-token", "", alice},
		{"bearer", "", "Bearer bob-token", bob},
		{"bearer_case_insensitive", "", "bearer bob-token", bob},
		{"cookie_wins_over_header", "alice-token", "Bearer bob-token", alice},
		{"invalid_cookie_is_anonymous", "garbage", "", nil},
		{"stale_cookie_falls_back_to_bearer", "expired-token", "Bearer bob-token", bob},
		{"stale_cookie_and_bad_bearer_is_anonymous", "expired-token", "Bearer garbage", nil},
		{"wrong_scheme_is_anonymous", "", "Basic bob-token", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *sec.SessionClaims
			reached := false
			handler := middleware.Authenticate(verifier)(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				reached = true
				got = ctxutil.GetSession(request.Context())
			}))

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				request.AddCookie(&http.Cookie{Name: "token", Value: tt.cookie})
			}
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}

			handler.ServeHTTP(httptest.NewRecorder(), request)

			assert.True(t, reached)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequireAuth(t *testing.T) {
	handler := middleware.RequireAuth(okHandler)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request = request.WithContext(ctxutil.WithSession(request.Context(), &sec.SessionClaims{UserID: "alice"}))
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestLoginThrottle(t *testing.T) {
	limiter := ratelimit.NewMemory()
	defer limiter.Close()

	handler := middleware.LoginThrottle(limiter, 2, time.Minute)(okHandler)

	send := func(ip string) *httptest.ResponseRecorder {
		request := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		request.RemoteAddr = ip + ":4000"
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		return recorder
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)

	throttled := send("10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, throttled.Code)

	retryAfter, err := strconv.Atoi(throttled.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.Positive(t, retryAfter)
	assert.LessOrEqual(t, retryAfter, 60)

	assert.Equal(t, http.StatusOK, send("10.0.0.2").Code)
}

/*
TestLoginThrottle_IgnoresForwardingHeaders verifies that rotating X-Forwarded-For
or X-Real-IP from one socket does not earn fresh attempts.
*/
func TestLoginThrottle_IgnoresForwardingHeaders(t *testing.T) {
	limiter := ratelimit.NewMemory()
	defer limiter.Close()

	handler := middleware.LoginThrottle(limiter, 3, time.Minute)(okHandler)

	passed := 0
	for attempt := range 50 {
		request := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		request.RemoteAddr = "203.0.113.7:5000"
		request.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", attempt))
		request.Header.Set("X-Real-IP", fmt.Sprintf("192.0.2.%d", attempt))

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		if recorder.Code == http.StatusOK {
			passed++
		}
	}

	assert.Equal(t, 3, passed)
}

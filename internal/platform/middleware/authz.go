// Copyright (c) 2026 Schemely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/taibuivan/schemely/internal/platform/apperr"
	"github.com/taibuivan/schemely/internal/platform/constants"
	"github.com/taibuivan/schemely/internal/platform/ctxutil"
	"github.com/taibuivan/schemely/internal/platform/ratelimit"
	"github.com/taibuivan/schemely/internal/platform/respond"
	"github.com/taibuivan/schemely/internal/platform/sec"
)

// TokenVerifier verifies a session token and returns its claims.
type TokenVerifier interface {
	VerifyToken(tokenString string) (*sec.SessionClaims, error)
}

// Authenticate resolves the caller's session.
//
// # Flow
//  1. Collect candidate tokens: the session cookie, then 'Authorization: Bearer <token>'.
//  2. The first candidate that verifies wins; a stale cookie falls through to the header.
//  3. No valid candidate: the request proceeds as anonymous.
//  4. Inject [*sec.SessionClaims] into the request context.
//
// Anonymous fallthrough keeps a stale cookie from blocking the login route.
// Protected routes add [RequireAuth].
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			for _, token := range sessionTokens(request) {
				claims, err := verifier.VerifyToken(token)
				if err != nil {
					ctxutil.GetLogger(request.Context()).DebugContext(request.Context(), "session_token_rejected",
						slog.Any("error", err),
					)
					continue
				}

				ctx := ctxutil.WithSession(request.Context(), claims)
				next.ServeHTTP(writer, request.WithContext(ctx))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

func sessionTokens(request *http.Request) []string {
	var tokens []string

	if cookie, err := request.Cookie(constants.SessionCookieName); err == nil && cookie.Value != "" {
		tokens = append(tokens, cookie.Value)
	}

	scheme, token, found := strings.Cut(request.Header.Get(constants.HeaderAuthorization), " ")
	if found && strings.EqualFold(scheme, constants.AuthorizationSchema) {
		if token = strings.TrimSpace(token); token != "" {
			tokens = append(tokens, token)
		}
	}

	return tokens
}

// RequireAuth blocks anonymous requests with 401.
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetSession(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// LoginThrottle caps credential attempts per client IP within a fixed window.
//
// Rejected attempts get 429 with a Retry-After header and never reach the handler.
func LoginThrottle(limiter ratelimit.Limiter, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			clientIP := ClientIP(request)

			decision := limiter.Allow(request.Context(), "ip:"+clientIP, limit, window)
			if !decision.Allowed {
				retryAfter := int(decision.RetryAfter(time.Now()).Seconds())

				ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "login_throttled",
					slog.String("ip", clientIP),
					slog.Int("attempts", decision.Count),
				)

				writer.Header().Set(constants.HeaderRetryAfter, strconv.Itoa(retryAfter))
				respond.Error(writer, request, apperr.RateLimited(retryAfter))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

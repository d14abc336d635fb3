package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"buildingportal/internal/auth"
	"buildingportal/internal/models"
	"buildingportal/internal/rate"
	"buildingportal/internal/service"
	"buildingportal/internal/util"
)

func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if rid == "" || len(rid) > 64 {
			rid = uuid.NewString()
		}
		r = r.WithContext(WithRequestID(r.Context(), rid))
		w.Header().Set("X-Request-ID", rid)
		next.ServeHTTP(w, r)
	})
}

// Authenticator verifies a raw bearer token.
type Authenticator interface {
	Authenticate(rawToken string) (auth.Claims, error)
}

// Authn requires an "Authorization: Bearer <token>" header and stores the
// verified claims in the request context.
func Authn(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := BearerToken(r)
			if !ok {
				util.WriteError(w, http.StatusUnauthorized, "unauthenticated", "authentication required", RequestID(r.Context()))
				return
			}
			claims, err := a.Authenticate(raw)
			if err != nil {
				if errors.Is(err, service.ErrExpired) {
					util.WriteError(w, http.StatusUnauthorized, "token_expired", "session expired", RequestID(r.Context()))
					return
				}
				util.WriteError(w, http.StatusUnauthorized, "unauthenticated", "invalid token", RequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// AdminGuard confirms the caller holds the admin role in the store.
type AdminGuard interface {
	RequireAdmin(ctx context.Context, claims auth.Claims) (models.User, error)
}

// AdminOnly must run after Authn. It rejects non-admins before any handler
// reads the request body.
func AdminOnly(g AdminGuard, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := RequestID(r.Context())
			claims, ok := Claims(r.Context())
			if !ok {
				util.WriteError(w, http.StatusUnauthorized, "unauthenticated", "authentication required", rid)
				return
			}
			_, err := g.RequireAdmin(r.Context(), claims)
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, service.ErrUnauthenticated):
				util.WriteError(w, http.StatusUnauthorized, "unauthenticated", "authentication required", rid)
			case errors.Is(err, service.ErrForbidden):
				util.WriteError(w, http.StatusForbidden, "forbidden", "admin role required", rid)
			default:
				logger.Error("admin check failed", zap.Error(err), zap.String("request_id", rid))
				util.WriteError(w, http.StatusInternalServerError, "internal_error", "internal server error", rid)
			}
		})
	}
}

func BearerToken(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func RateLimit(l *rate.Limiter, route string, limit int, window time.Duration, trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := route + ":" + ClientIP(r, trustProxy)
			ok, retryAfter := l.Allow(key, limit, window)
			if !ok {
				secs := int(retryAfter.Round(time.Second) / time.Second)
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				util.WriteError(w, http.StatusTooManyRequests, "rate_limited", "too many requests", RequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			parts := strings.Split(xff, ",")
			return strings.TrimSpace(parts[0])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func RequestLogger(logger *zap.Logger, trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sr, r)
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", sr.status),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.String("request_id", RequestID(r.Context())),
				zap.String("remote_ip", ClientIP(r, trustProxy)),
			}
			switch {
			case sr.status >= 500:
				logger.Error("request", fields...)
			case sr.status >= 400:
				logger.Warn("request", fields...)
			default:
				logger.Info("request", fields...)
			}
		})
	}
}

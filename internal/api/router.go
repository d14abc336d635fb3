package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"buildingportal/internal/auth"
	"buildingportal/internal/captcha"
	"buildingportal/internal/config"
	"buildingportal/internal/middleware"
	"buildingportal/internal/rate"
	"buildingportal/internal/service"
	"buildingportal/internal/util"
	"buildingportal/internal/version"
)

type Handlers struct {
	cfg             config.Config
	svc             *service.Service
	logger          *zap.Logger
	limiter         *rate.Limiter
	captchaVerifier captcha.Verifier
}

func NewRouter(cfg config.Config, svc *service.Service, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handlers{
		cfg:             cfg,
		svc:             svc,
		logger:          logger,
		limiter:         rate.NewLimiter(),
		captchaVerifier: captcha.NewVerifier(cfg),
	}
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RequestLogger(logger, cfg.TrustProxy))
	r.Use(middleware.SecurityHeaders)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID", "Retry-After"},
			MaxAge:         300,
		}))
	}

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		util.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok", "build": version.Current()})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		ready := map[string]any{"checked_at": time.Now().UTC().Format(time.RFC3339)}
		if err := h.svc.Store().Ping(r.Context()); err != nil {
			h.logger.Warn("readiness check failed", zap.Error(err))
			ready["status"] = "degraded"
			ready["components"] = map[string]any{"sqlite": map[string]any{"ok": false, "error": err.Error()}}
			util.WriteJSON(w, http.StatusServiceUnavailable, ready)
			return
		}
		ready["status"] = "ready"
		ready["components"] = map[string]any{"sqlite": map[string]any{"ok": true}}
		util.WriteJSON(w, http.StatusOK, ready)
	})

	authn := middleware.Authn(h.svc)

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.RateLimit(h.limiter, "signup", 10, time.Minute, h.cfg.TrustProxy)).Post("/auth/signup", h.Signup)
		r.With(middleware.RateLimit(h.limiter, "login", 20, time.Minute, h.cfg.TrustProxy)).Post("/auth/login", h.Login)

		r.Get("/complaints", h.ListComplaints)
		r.Get("/complaints/{id}", h.GetComplaint)
		r.Get("/notices", h.ListNotices)
		r.Get("/notices/{id}", h.GetNotice)
		r.Get("/building-status", h.BuildingStatus)

		r.Group(func(r chi.Router) {
			r.Use(authn)
			r.Get("/auth/me", h.Me)
			r.Post("/complaints", h.CreateComplaint)
			r.Put("/complaints/{id}", h.UpdateComplaint)
			r.Post("/access-card", h.SubmitMoveInCard)
			r.Post("/users/photo", h.UpdateProfileImage)
			r.Get("/users/{id}", h.GetUser)

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.AdminOnly(h.svc, h.logger))
				r.Patch("/complaints/{id}/status", h.AdminSetComplaintStatus)
				r.Delete("/complaints/{id}", h.AdminDeleteComplaint)

				r.Get("/move-in-cards", h.AdminListMoveInCards)
				r.Patch("/move-in-cards/{id}/status", h.AdminSetMoveInCardStatus)
				r.Delete("/move-in-cards/{id}", h.AdminDeleteMoveInCard)

				r.Get("/users", h.AdminListUsers)
				r.Patch("/users/{id}", h.AdminSetUserVerified)
				r.Delete("/users/{id}", h.AdminDeleteUser)

				r.Post("/notices", h.AdminCreateNotice)
				r.Put("/notices/{id}", h.AdminUpdateNotice)
				r.Delete("/notices/{id}", h.AdminDeleteNotice)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		util.WriteError(w, http.StatusNotFound, "not_found", "route not found", middleware.RequestID(r.Context()))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		util.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed", middleware.RequestID(r.Context()))
	})

	return r
}

// claims returns the verified caller. Authn guarantees presence on protected routes.
func claims(r *http.Request) auth.Claims {
	c, _ := middleware.Claims(r.Context())
	return c
}

func (h *Handlers) badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	util.WriteError(w, http.StatusBadRequest, "bad_request", msg, middleware.RequestID(r.Context()))
}

// writeServiceError maps service errors onto the HTTP taxonomy. Anything
// unrecognised is logged and reported as a generic 500.
func (h *Handlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	rid := middleware.RequestID(r.Context())
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		util.WriteError(w, http.StatusUnauthorized, "unauthenticated", "authentication required", rid)
	case errors.Is(err, service.ErrExpired):
		util.WriteError(w, http.StatusUnauthorized, "token_expired", "session expired", rid)
	case errors.Is(err, service.ErrForbidden):
		util.WriteError(w, http.StatusForbidden, "forbidden", "not allowed", rid)
	case errors.Is(err, service.ErrNotFound):
		util.WriteError(w, http.StatusNotFound, "not_found", "record not found", rid)
	case errors.Is(err, service.ErrInvalidCredentials):
		util.WriteError(w, http.StatusBadRequest, "invalid_credentials", "invalid username or password", rid)
	case errors.Is(err, service.ErrInvalidInput):
		util.WriteError(w, http.StatusBadRequest, "invalid_input", strings.TrimPrefix(err.Error(), service.ErrInvalidInput.Error()+": "), rid)
	default:
		h.logger.Error("request failed",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", rid),
		)
		util.WriteError(w, http.StatusInternalServerError, "internal_error", "internal server error", rid)
	}
}

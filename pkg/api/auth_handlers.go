package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/vortex-bridge/pkg/httputil"
	"github.com/platinummonkey/vortex-bridge/pkg/middleware"
	"github.com/platinummonkey/vortex-bridge/pkg/observability"
	"github.com/platinummonkey/vortex-bridge/pkg/session"
)

// AuthHandlers handles login, logout and identity requests
type AuthHandlers struct {
	sessions SessionService
	users    UserLister
	cookie   middleware.CookieConfig
	metrics  *observability.Metrics
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(sessions SessionService, users UserLister, cookie middleware.CookieConfig, metrics *observability.Metrics) *AuthHandlers {
	return &AuthHandlers{
		sessions: sessions,
		users:    users,
		cookie:   cookie,
		metrics:  metrics,
	}
}

// RegisterRoutes registers authentication routes
func (h *AuthHandlers) RegisterRoutes(router *mux.Router, sessions *middleware.SessionMiddleware, limiter *middleware.RateLimiter, devEndpoints bool) {
	router.Handle("/auth/login", limiter.Handler(http.HandlerFunc(h.login))).Methods(http.MethodPost)
	router.HandleFunc("/auth/logout", h.logout).Methods(http.MethodPost)
	router.Handle("/auth/me", sessions.Handler(http.HandlerFunc(h.me))).Methods(http.MethodGet)

	if devEndpoints && h.users != nil {
		router.HandleFunc("/auth/users", h.listUsers).Methods(http.MethodGet)
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Secret   string `json:"secret"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool               `json:"success"`
	User    *session.Principal `json:"user"`
}

// login handles POST /auth/login
func (h *AuthHandlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	secret := req.Secret
	if secret == "" {
		secret = req.Password
	}
	if strings.TrimSpace(req.Email) == "" || secret == "" {
		httputil.WriteBadRequest(w, "email and secret are required")
		return
	}

	principal, token, err := h.sessions.Login(r.Context(), req.Email, secret)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			h.countLogin("invalid_credentials")
			observability.FromContext(r.Context()).Info("Login rejected")
		} else {
			h.countLogin("error")
		}
		writeDomainError(w, r, err)
		return
	}

	h.countLogin("success")
	observability.FromContext(r.Context()).WithField("user_id", principal.SubjectID).Info("User logged in")

	h.cookie.SetSessionCookie(w, token, principal.ExpiresAt)
	_ = httputil.WriteSuccess(w, loginResponse{Success: true, User: principal})
}

// logout handles POST /auth/logout. It succeeds with or without a live session.
func (h *AuthHandlers) logout(w http.ResponseWriter, r *http.Request) {
	if token := h.cookie.SessionToken(r); token != "" {
		if err := h.sessions.Logout(r.Context(), token); err != nil {
			writeDomainError(w, r, err)
			return
		}
	}

	h.cookie.ClearSessionCookie(w)
	_ = httputil.WriteSuccess(w, map[string]bool{"success": true})
}

// me handles GET /auth/me
func (h *AuthHandlers) me(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r)
	if principal == nil {
		httputil.WriteUnauthorized(w, "unauthorized")
		return
	}
	_ = httputil.WriteSuccess(w, principal)
}

// listUsers handles GET /auth/users. Only emails are exposed.
func (h *AuthHandlers) listUsers(w http.ResponseWriter, r *http.Request) {
	_ = httputil.WriteSuccess(w, h.users.ListPublic())
}

func (h *AuthHandlers) countLogin(result string) {
	if h.metrics != nil {
		h.metrics.LoginsTotal.WithLabelValues(result).Inc()
	}
}

package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/vortex-bridge/pkg/claims"
	"github.com/platinummonkey/vortex-bridge/pkg/directory"
	"github.com/platinummonkey/vortex-bridge/pkg/httputil"
	"github.com/platinummonkey/vortex-bridge/pkg/invitations"
	"github.com/platinummonkey/vortex-bridge/pkg/middleware"
	"github.com/platinummonkey/vortex-bridge/pkg/observability"
	"github.com/platinummonkey/vortex-bridge/pkg/session"
	"github.com/platinummonkey/vortex-bridge/pkg/vortex"
)

// DefaultPrefix is where routes are mounted when no prefix is configured
const DefaultPrefix = "/api"

// maxBodyBytes bounds request bodies; login and accept payloads are small
const maxBodyBytes = 1 << 20

// SessionService opens, resolves and closes sessions
type SessionService interface {
	Login(ctx context.Context, email, secret string) (*session.Principal, string, error)
	Resolve(ctx context.Context, token string) (*session.Principal, error)
	Logout(ctx context.Context, token string) error
}

// UserLister lists the public view of the directory
type UserLister interface {
	ListPublic() []directory.PublicUser
}

// AssertionIssuer issues signed assertions for principals
type AssertionIssuer interface {
	Issue(ctx context.Context, p *session.Principal) (*claims.Assertion, error)
}

// InvitationService manages invitations on behalf of the caller
type InvitationService interface {
	ListByTarget(ctx context.Context, target invitations.Target) ([]vortex.Invitation, error)
	ListByGroup(ctx context.Context, group invitations.Target) ([]vortex.Invitation, error)
	Get(ctx context.Context, id string) (*vortex.Invitation, error)
	Revoke(ctx context.Context, id string) error
	AcceptMany(ctx context.Context, ids []string, target invitations.Target) (*invitations.AcceptResult, error)
	DeleteByGroup(ctx context.Context, group invitations.Target) error
	Reinvite(ctx context.Context, id string) (*vortex.Invitation, error)
}

// Config controls routing and HTTP behavior
type Config struct {
	// Prefix is prepended to every route (default /api)
	Prefix string
	// Cookie controls the session cookie
	Cookie middleware.CookieConfig
	// DevEndpoints registers GET /auth/users
	DevEndpoints bool
	// EnforceGroupAccess restricts by-group routes to members of the group
	EnforceGroupAccess bool
	// LoginRateLimit throttles login attempts per client address
	LoginRateLimit middleware.RateLimitConfig
	// CORSOrigins lists browser origins allowed to call the API
	CORSOrigins []string
}

// Dependencies are the services the handlers delegate to
type Dependencies struct {
	Sessions    SessionService
	Users       UserLister
	Issuer      AssertionIssuer
	Invitations InvitationService
	Logger      *observability.Logger
	// Metrics is optional
	Metrics *observability.Metrics
}

// Server represents our API server
type Server struct {
	config         Config
	router         *mux.Router
	handler        http.Handler
	logger         *observability.Logger
	metrics        *observability.Metrics
	loginLimiter   *middleware.RateLimiter
	authHandlers   *AuthHandlers
	vortexHandlers *VortexHandlers
}

// NewServer creates a new API server
func NewServer(cfg Config, deps Dependencies) *Server {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	cfg.Prefix = "/" + strings.Trim(cfg.Prefix, "/")
	if cfg.LoginRateLimit.RequestsPerSecond <= 0 || cfg.LoginRateLimit.Burst <= 0 {
		cfg.LoginRateLimit = middleware.DefaultLoginRateLimitConfig()
	}

	logger := deps.Logger
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}

	s := &Server{
		config:       cfg,
		router:       mux.NewRouter(),
		logger:       logger,
		metrics:      deps.Metrics,
		loginLimiter: middleware.NewRateLimiter(cfg.LoginRateLimit),
	}

	s.authHandlers = NewAuthHandlers(deps.Sessions, deps.Users, cfg.Cookie, deps.Metrics)
	s.vortexHandlers = NewVortexHandlers(deps.Issuer, deps.Invitations, deps.Metrics)

	s.setupRoutes()

	s.handler = httputil.Chain(
		httputil.RequestIDMiddleware(logger),
		httputil.RecoveryMiddleware,
		httputil.LoggingMiddleware,
		middleware.CORS(cfg.CORSOrigins),
	)(s.router)

	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteErrorMessage(w, http.StatusNotFound, "not found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteErrorMessage(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	if s.metrics != nil {
		s.router.Use(observability.HTTPMetricsMiddleware(s.metrics))
	}

	api := s.router.PathPrefix(s.config.Prefix).Subrouter()
	api.Use(httputil.MaxBytesMiddleware(maxBodyBytes), httputil.ContentTypeMiddleware)

	sessions := middleware.NewSessionMiddleware(s.authHandlers.sessions, s.config.Cookie)
	access := middleware.NewGroupAccess(s.config.EnforceGroupAccess, "type", "id")

	s.authHandlers.RegisterRoutes(api, sessions, s.loginLimiter, s.config.DevEndpoints)
	s.vortexHandlers.RegisterRoutes(api.PathPrefix("/vortex").Subrouter(), sessions, access)
}

// StartBackground starts periodic maintenance until ctx is done
func (s *Server) StartBackground(ctx context.Context) {
	s.loginLimiter.StartCleanup(ctx)
}

// Router exposes the route table, mainly for tests
func (s *Server) Router() *mux.Router {
	return s.router
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

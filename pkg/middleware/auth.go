package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/platinummonkey/vortex-bridge/pkg/contextkeys"
	"github.com/platinummonkey/vortex-bridge/pkg/httputil"
	"github.com/platinummonkey/vortex-bridge/pkg/observability"
	"github.com/platinummonkey/vortex-bridge/pkg/session"
)

// DefaultCookieName is the session cookie name used when none is configured
const DefaultCookieName = "session"

// SessionResolver resolves a raw session token into its principal
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*session.Principal, error)
}

// CookieConfig controls how the session cookie is written
type CookieConfig struct {
	Name   string
	Secure bool
}

func (c CookieConfig) name() string {
	if c.Name == "" {
		return DefaultCookieName
	}
	return c.Name
}

// SetSessionCookie writes the session cookie expiring at expires
func (c CookieConfig) SetSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name(),
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie tells the client to drop the session cookie
func (c CookieConfig) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name(),
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionToken returns the raw session token carried by the request, if any
func (c CookieConfig) SessionToken(r *http.Request) string {
	cookie, err := r.Cookie(c.name())
	if err != nil {
		return ""
	}
	return cookie.Value
}

// SessionMiddleware authenticates requests by their session cookie
type SessionMiddleware struct {
	resolver SessionResolver
	cookie   CookieConfig
}

// NewSessionMiddleware creates a new session middleware
func NewSessionMiddleware(resolver SessionResolver, cookie CookieConfig) *SessionMiddleware {
	return &SessionMiddleware{
		resolver: resolver,
		cookie:   cookie,
	}
}

// Handler wraps an HTTP handler with session authentication.
// A resolved session is renewed and its cookie re-issued with the new expiry.
func (m *SessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.cookie.SessionToken(r)
		if token == "" {
			httputil.WriteUnauthorized(w, "unauthorized")
			return
		}

		principal, err := m.resolver.Resolve(r.Context(), token)
		if err != nil {
			if errors.Is(err, session.ErrUnauthenticated) {
				m.cookie.ClearSessionCookie(w)
				httputil.WriteUnauthorized(w, "unauthorized")
				return
			}
			observability.FromContext(r.Context()).WithError(err).Error("Session lookup failed")
			httputil.WriteErrorMessage(w, http.StatusInternalServerError, "session lookup failed")
			return
		}

		m.cookie.SetSessionCookie(w, token, principal.ExpiresAt)

		ctx := contextkeys.WithPrincipal(r.Context(), principal)
		ctx = observability.WithUserID(ctx, principal.SubjectID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetPrincipal extracts the session principal from the request
func GetPrincipal(r *http.Request) *session.Principal {
	p, ok := contextkeys.GetPrincipal(r.Context())
	if !ok {
		return nil
	}
	return p
}

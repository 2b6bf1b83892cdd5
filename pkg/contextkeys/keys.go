// Package contextkeys provides centralized context key definitions
//
// IMPORTANT: All request-scoped values set by bridge middleware are keyed here.
// This prevents typos, documents dependencies, and makes key usage discoverable.
//
// USAGE PATTERN:
//
//	import "github.com/platinummonkey/vortex-bridge/pkg/contextkeys"
//	ctx = contextkeys.WithPrincipal(ctx, principal)
//	principal, ok := contextkeys.GetPrincipal(ctx)
package contextkeys

import (
	"context"

	"github.com/platinummonkey/vortex-bridge/pkg/session"
)

// Key is the type for context keys to prevent collisions
type Key string

const (
	// PrincipalKey contains *session.Principal
	// Set by: middleware.SessionMiddleware (pkg/middleware/auth.go)
	// Required by: every authenticated route
	// Type: *session.Principal
	PrincipalKey Key = "principal"
)

// WithPrincipal adds the resolved principal to the context
func WithPrincipal(ctx context.Context, p *session.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// GetPrincipal retrieves the principal from the context
func GetPrincipal(ctx context.Context) (*session.Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(*session.Principal)
	return p, ok && p != nil
}

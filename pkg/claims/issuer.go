package claims

import (
	"context"
	"fmt"
	"time"

	"github.com/platinummonkey/vortex-bridge/pkg/directory"
	"github.com/platinummonkey/vortex-bridge/pkg/session"
	"github.com/platinummonkey/vortex-bridge/pkg/vortex"
)

// DefaultTTL is how long an assertion stays valid
const DefaultTTL = time.Hour

// IdentifierTypeEmail marks an email identifier
const IdentifierTypeEmail = "email"

// Signer produces the signed token for an assertion
type Signer interface {
	GenerateJWT(ctx context.Context, p vortex.JWTParams) (string, error)
}

// Assertion is a signed, time-scoped statement of who a principal is
type Assertion struct {
	Token       string              `json:"jwt"`
	SubjectID   string              `json:"userId"`
	Identifiers []vortex.Identifier `json:"identifiers"`
	Groups      []vortex.Group      `json:"groups"`
	Role        directory.Role      `json:"role"`
	ExpiresAt   time.Time           `json:"expiresAt"`
}

// Issuer builds assertions and has them signed. It keeps no copy of what it issues.
type Issuer struct {
	signer Signer
	ttl    time.Duration
	now    func() time.Time
}

// Option configures an Issuer
type Option func(*Issuer)

// WithTTL sets the assertion lifetime
func WithTTL(ttl time.Duration) Option {
	return func(i *Issuer) {
		if ttl > 0 {
			i.ttl = ttl
		}
	}
}

// WithClock replaces the time source
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		i.now = now
	}
}

// NewIssuer creates an issuer that signs with signer
func NewIssuer(signer Signer, opts ...Option) *Issuer {
	i := &Issuer{
		signer: signer,
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue builds and signs an assertion for p.
// Signing errors are returned as KindSigningFailure and are not retried.
func (i *Issuer) Issue(ctx context.Context, p *session.Principal) (*Assertion, error) {
	if p == nil || p.SubjectID == "" {
		return nil, &Error{Kind: KindInvalidPrincipal, Message: "principal has no subject"}
	}
	if !p.Role.Valid() {
		return nil, &Error{Kind: KindInvalidPrincipal, Message: fmt.Sprintf("unrecognized role %q", p.Role)}
	}

	a := &Assertion{
		SubjectID:   p.SubjectID,
		Identifiers: identifiers(p),
		Groups:      groups(p.Groups),
		Role:        p.Role,
		ExpiresAt:   i.now().Add(i.ttl).Truncate(time.Second),
	}

	token, err := i.signer.GenerateJWT(ctx, vortex.JWTParams{
		UserID:      a.SubjectID,
		Identifiers: a.Identifiers,
		Groups:      a.Groups,
		Role:        string(a.Role),
		ExpiresAt:   a.ExpiresAt,
	})
	if err != nil {
		return nil, &Error{Kind: KindSigningFailure, Message: err.Error(), Cause: err}
	}

	a.Token = token
	return a, nil
}

// identifiers returns the verified handles for p. Only the email is verified today.
func identifiers(p *session.Principal) []vortex.Identifier {
	if p.Email == "" {
		return []vortex.Identifier{}
	}
	return []vortex.Identifier{{Type: IdentifierTypeEmail, Value: p.Email}}
}

func groups(in []directory.Membership) []vortex.Group {
	out := make([]vortex.Group, 0, len(in))
	for _, g := range in {
		out = append(out, vortex.Group{Type: string(g.Type), ID: g.ID, Name: g.Name})
	}
	return out
}

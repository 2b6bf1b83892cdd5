package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/platinummonkey/vortex-bridge/pkg/directory"
)

// DefaultTTL is the sliding session window
const DefaultTTL = 24 * time.Hour

// Directory is the subset of directory.Directory the manager depends on
type Directory interface {
	FindByCredentials(email, secret string) (*directory.User, bool)
	FindByID(id string) (*directory.User, bool)
}

// Principal is the authenticated identity behind a session
type Principal struct {
	SubjectID   string                 `json:"id"`
	Email       string                 `json:"email"`
	DisplayName string                 `json:"name"`
	Role        directory.Role         `json:"role"`
	Groups      []directory.Membership `json:"groups"`
	IssuedAt    time.Time              `json:"issuedAt"`
	ExpiresAt   time.Time              `json:"expiresAt"`
}

// Manager turns credentials into sessions and sessions back into principals
type Manager struct {
	dir   Directory
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// Option configures a Manager
type Option func(*Manager)

// WithTTL sets the sliding session window
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithClock replaces the time source, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a session manager over the given directory and store
func NewManager(dir Directory, store Store, opts ...Option) *Manager {
	m := &Manager{
		dir:   dir,
		store: store,
		ttl:   DefaultTTL,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TTL returns the configured sliding window
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Login verifies the credentials and opens a new session.
// No session is created when the credentials do not match.
func (m *Manager) Login(ctx context.Context, email, secret string) (*Principal, string, error) {
	user, ok := m.dir.FindByCredentials(email, secret)
	if !ok {
		return nil, "", ErrInvalidCredentials
	}

	token, hash, err := NewToken()
	if err != nil {
		return nil, "", err
	}

	now := m.now()
	s := &Session{
		TokenHash: hash,
		SubjectID: user.ID,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Create(ctx, s); err != nil {
		return nil, "", fmt.Errorf("failed to create session: %w", err)
	}

	return newPrincipal(user, s), token, nil
}

// Resolve returns the principal for token and extends its window.
// A session whose subject has left the directory is deleted.
func (m *Manager) Resolve(ctx context.Context, token string) (*Principal, error) {
	if token == "" || !wellFormed(token) {
		return nil, ErrUnauthenticated
	}

	hash := HashToken(token)
	s, err := m.store.Touch(ctx, hash, m.now(), m.ttl)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, ErrUnauthenticated
	} else if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	user, ok := m.dir.FindByID(s.SubjectID)
	if !ok {
		if err := m.store.Delete(ctx, hash); err != nil {
			return nil, fmt.Errorf("failed to delete orphaned session: %w", err)
		}
		return nil, ErrUnauthenticated
	}

	return newPrincipal(user, s), nil
}

// Logout destroys the session. Unknown or empty tokens are ignored.
func (m *Manager) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := m.store.Delete(ctx, HashToken(token)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func newPrincipal(u *directory.User, s *Session) *Principal {
	return &Principal{
		SubjectID:   u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		Groups:      u.Groups,
		IssuedAt:    s.IssuedAt,
		ExpiresAt:   s.ExpiresAt,
	}
}

// MemberOf reports whether the principal belongs to the given group
func (p *Principal) MemberOf(groupType directory.GroupType, groupID string) bool {
	for _, g := range p.Groups {
		if g.Type == groupType && g.ID == groupID {
			return true
		}
	}
	return false
}

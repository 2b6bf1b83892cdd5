package session

import (
	"context"
	"time"
)

// Session is the stored record behind a session token
type Session struct {
	TokenHash string    `json:"-"`
	SubjectID string    `json:"subject_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session has expired at now
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store persists sessions keyed by token hash.
// Implementations must serialize operations on the same hash and must not
// block operations on different hashes behind one another.
type Store interface {
	// Create stores a new session
	Create(ctx context.Context, s *Session) error

	// Touch atomically checks that the session exists and has not expired at
	// now, then moves its expiry to now+ttl. Returns ErrSessionNotFound otherwise.
	Touch(ctx context.Context, hash string, now time.Time, ttl time.Duration) (*Session, error)

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, hash string) error

	// Sweep removes sessions expired at now and returns how many were removed
	Sweep(ctx context.Context, now time.Time) (int, error)
}

package session

import (
	"context"
	"hash/fnv"
	"sync"
	"time"
)

const shardCount = 32

type shard struct {
	mu       sync.Mutex
	sessions map[string]Session
}

// MemoryStore is an in-process Store split into independently locked shards
type MemoryStore struct {
	shards [shardCount]*shard
}

// NewMemoryStore creates an empty in-memory session store
func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{}
	for i := range m.shards {
		m.shards[i] = &shard{sessions: make(map[string]Session)}
	}
	return m
}

func (m *MemoryStore) shardFor(hash string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(hash))
	return m.shards[h.Sum32()%shardCount]
}

// Create stores a new session
func (m *MemoryStore) Create(_ context.Context, s *Session) error {
	sh := m.shardFor(s.TokenHash)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sh.sessions[s.TokenHash] = *s
	return nil
}

// Touch checks expiry and extends the session under its shard lock
func (m *MemoryStore) Touch(_ context.Context, hash string, now time.Time, ttl time.Duration) (*Session, error) {
	sh := m.shardFor(hash)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	s, ok := sh.sessions[hash]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.Expired(now) {
		delete(sh.sessions, hash)
		return nil, ErrSessionNotFound
	}

	s.ExpiresAt = now.Add(ttl)
	sh.sessions[hash] = s
	return &s, nil
}

// Delete removes a session if present
func (m *MemoryStore) Delete(_ context.Context, hash string) error {
	sh := m.shardFor(hash)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	delete(sh.sessions, hash)
	return nil
}

// Sweep removes every session expired at now, one shard at a time
func (m *MemoryStore) Sweep(ctx context.Context, now time.Time) (int, error) {
	removed := 0
	for _, sh := range m.shards {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		sh.mu.Lock()
		for hash, s := range sh.sessions {
			if s.Expired(now) {
				delete(sh.sessions, hash)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed, nil
}

// Len returns the number of stored sessions, expired or not
func (m *MemoryStore) Len() int {
	n := 0
	for _, sh := range m.shards {
		sh.mu.Lock()
		n += len(sh.sessions)
		sh.mu.Unlock()
	}
	return n
}

// Package session issues and resolves bridge sessions.
//
// # Overview
//
// Login checks credentials against the directory and opens a session identified
// by an opaque token. The token is returned to the caller exactly once; stores only
// ever see its SHA-256 hash.
//
// Every successful Resolve moves the session's expiry to now+TTL (24h by default),
// so a session stays alive for as long as it is used at least once per window.
// Resolve also re-reads the subject from the directory, and a session whose subject
// has disappeared is deleted and treated as unauthenticated.
//
// # Stores
//
// MemoryStore spreads sessions over independently locked shards. Operations on one
// token are serialized by its shard lock, which keeps renewal and logout from losing
// each other's updates. RedisStore gets the same guarantee from single atomic
// commands (SET, GETEX, DEL) and lets key TTLs expire sessions.
//
// A Sweeper drops expired sessions from a MemoryStore on a cron schedule.
package session

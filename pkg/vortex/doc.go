// Package vortex is the boundary with the Vortex invitation service.
//
// # Overview
//
// A Client does two unrelated jobs with the same API key:
//
//   - GenerateJWT signs user JWTs locally. The key has the form VRTX.<id>.<secret>,
//     where <id> is a base64url-encoded UUID. Tokens are HS256 with a signing key of
//     HMAC-SHA256(secret, id) and carry the key id in the "kid" header.
//   - The invitation methods call the HTTP API with the key in the x-api-key header.
//
// Non-2xx responses are returned as *APIError. IsNotFound reports upstream 404s.
//
// The outbound transport is instrumented with otelhttp, and WithObserver can hook
// every call for metrics.
package vortex

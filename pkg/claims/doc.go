// Package claims mints signed identity assertions for session principals.
//
// An assertion carries the subject id, its verified identifiers, its group
// memberships in directory order and its role. The Issuer validates the principal,
// then hands signing to a Signer (in production the Vortex client). Nothing is
// cached; two calls for the same principal produce equivalent assertions that
// differ only in their timestamps.
package claims

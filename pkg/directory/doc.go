// Package directory provides the fixed user table the gateway authenticates against.
//
// # Overview
//
// A Directory is built once at startup, either from the built-in demo table or from a
// YAML file, and is never mutated afterwards. Every lookup returns a copy, so the table
// can be shared by any number of concurrent requests without locking.
//
// # Usage
//
//	dir, err := directory.LoadFile("users.yaml", directory.WithCaseInsensitiveEmail())
//	if err != nil {
//		return err
//	}
//	user, ok := dir.FindByCredentials("bob@example.com", secret)
//
// Roles and group types are closed enumerations. A table containing an unknown role or
// group type is rejected by New rather than passed through.
//
// Email matching is case-sensitive unless WithCaseInsensitiveEmail is given.
//
// # Related Packages
//
//   - pkg/session: turns verified credentials into sessions
//   - pkg/claims: turns session principals into signed assertions
package directory

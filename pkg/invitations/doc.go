// Package invitations manages group-scoped invitations held by the Vortex service.
//
// # Overview
//
// The Manager's job is parameter shaping and target validation. A target is a
// (group type, value) pair; the type must be a directory group type and the value
// must be non-empty. Invalid input is rejected with KindInvalidArgument before any
// upstream call is made.
//
// Upstream 404s become KindNotFound and every other upstream failure becomes
// KindUpstreamFailure carrying the upstream message. There is no retry and no
// compensation when a request is cancelled mid-flight.
//
// # Bulk accept
//
// AcceptMany fans out one upstream call per distinct id with bounded concurrency
// and reports an Outcome per id in request order:
//
//	res, err := mgr.AcceptMany(ctx, []string{"inv-1", "inv-2"}, invitations.Target{
//		Type:  directory.GroupTypeWorkspace,
//		Value: "ws-1",
//	})
//	// err is only set for invalid input; res.Failed counts per-id failures
package invitations

// Package async provides safe goroutine launching for long-running tasks.
//
// # Overview
//
// Go starts a task with panic recovery and reports its outcome on a channel,
// so a failing listener surfaces as an error instead of crashing the process.
// Merge combines the channels of several tasks.
//
//	errc := async.Merge(
//		async.Go(ctx, logger, "api server", serveAPI),
//		async.Go(ctx, logger, "health server", serveHealth),
//	)
//	if err := <-errc; err != nil {
//		return err
//	}
//
// # Related Packages
//
//   - pkg/observability: logging and panic recovery used by Go
package async

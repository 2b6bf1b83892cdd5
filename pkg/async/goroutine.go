package async

import (
	"context"
	"fmt"
	"sync"

	"github.com/platinummonkey/vortex-bridge/pkg/observability"
)

// Go runs fn in its own goroutine with panic recovery.
// The returned channel yields fn's error, or an error describing a panic,
// and is closed once fn has returned. A nil logger logs to stdout.
//
// Example:
//
//	errc := async.Go(ctx, logger, "api server", func(ctx context.Context) error {
//	    return srv.ListenAndServe()
//	})
func Go(ctx context.Context, logger *observability.Logger, task string, fn func(context.Context) error) <-chan error {
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}

	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		defer observability.RecoverPanicWithCallback(logger, task, func() {
			errc <- fmt.Errorf("%s panicked", task)
		})

		if err := fn(ctx); err != nil {
			logger.WithField("task", task).WithError(err).Error("Background task failed")
			errc <- fmt.Errorf("%s: %w", task, err)
		}
	}()
	return errc
}

// Merge fans several error channels into one.
// The result is closed after every input is closed.
func Merge(chans ...<-chan error) <-chan error {
	out := make(chan error, len(chans))

	var wg sync.WaitGroup
	wg.Add(len(chans))
	for _, c := range chans {
		go func(c <-chan error) {
			defer wg.Done()
			for err := range c {
				out <- err
			}
		}(c)
	}

	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

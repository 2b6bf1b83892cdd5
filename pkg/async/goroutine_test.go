package async

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/platinummonkey/vortex-bridge/pkg/observability"
)

func testLogger(buf *bytes.Buffer) *observability.Logger {
	return observability.NewLogger(observability.DebugLevel, buf)
}

func wait(t *testing.T, errc <-chan error) (error, bool) {
	t.Helper()
	select {
	case err, ok := <-errc:
		return err, ok
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for task")
		return nil, false
	}
}

func TestGo_Success(t *testing.T) {
	var buf bytes.Buffer
	ran := make(chan struct{})

	errc := Go(context.Background(), testLogger(&buf), "test task", func(ctx context.Context) error {
		close(ran)
		return nil
	})

	err, ok := wait(t, errc)
	if ok || err != nil {
		t.Errorf("expected closed channel with no error, got %v (open=%v)", err, ok)
	}
	select {
	case <-ran:
	default:
		t.Error("Go did not execute function")
	}
}

func TestGo_WithError(t *testing.T) {
	var buf bytes.Buffer
	boom := errors.New("test error")

	errc := Go(context.Background(), testLogger(&buf), "test task", func(ctx context.Context) error {
		return boom
	})

	err, ok := wait(t, errc)
	if !ok {
		t.Fatal("expected an error before the channel closed")
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped test error, got %v", err)
	}
	if !strings.Contains(err.Error(), "test task") {
		t.Errorf("expected task name in error, got %q", err.Error())
	}
	if !strings.Contains(buf.String(), "Background task failed") {
		t.Errorf("expected error to be logged, got %q", buf.String())
	}
}

func TestGo_PanicRecovery(t *testing.T) {
	var buf bytes.Buffer

	errc := Go(context.Background(), testLogger(&buf), "test task", func(ctx context.Context) error {
		panic("test panic")
	})

	err, ok := wait(t, errc)
	if !ok || err == nil {
		t.Fatal("expected a panic error")
	}
	if !strings.Contains(err.Error(), "panicked") {
		t.Errorf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "PANIC recovered") {
		t.Errorf("expected panic to be logged, got %q", buf.String())
	}

	if _, ok := wait(t, errc); ok {
		t.Error("channel should be closed after the panic")
	}
}

func TestGo_ContextPassedThrough(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	errc := Go(ctx, nil, "blocking task", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	cancel()

	err, _ := wait(t, errc)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestMerge(t *testing.T) {
	var buf bytes.Buffer
	logger := testLogger(&buf)

	first := errors.New("first")
	merged := Merge(
		Go(context.Background(), logger, "ok", func(context.Context) error { return nil }),
		Go(context.Background(), logger, "fails", func(context.Context) error { return first }),
	)

	var got []error
	for err := range merged {
		got = append(got, err)
	}

	if len(got) != 1 {
		t.Fatalf("expected exactly one error, got %v", got)
	}
	if !errors.Is(got[0], first) {
		t.Errorf("expected first error, got %v", got[0])
	}
}

func TestMerge_Empty(t *testing.T) {
	if _, ok := <-Merge(); ok {
		t.Error("merge of nothing should be closed")
	}
}

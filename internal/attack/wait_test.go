package attack

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wifibear/wifiaudit/internal/testutil"
	"github.com/wifibear/wifiaudit/internal/tools"
	"github.com/wifibear/wifiaudit/ui"
)

func startShell(t *testing.T, args ...string) *tools.Process {
	t.Helper()
	testutil.NewBin(t)
	p, err := tools.StartProcess(context.Background(), "sh", args...)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { _ = p.Stop() })
	return p
}

func waitForCtx(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestAwaitWindowElapses(t *testing.T) {
	p := startShell(t, "-c", "exec sleep 30")

	start := time.Now()
	if err := Await(context.Background(), p, 100*time.Millisecond, waitForCtx); err != nil {
		t.Fatalf("returned error: %v", err)
	}
	if time.Since(start) < 90*time.Millisecond {
		t.Fatalf("returned before the window closed")
	}
}

func TestAwaitProcessExits(t *testing.T) {
	p := startShell(t, "-c", "exit 0")

	if err := Await(context.Background(), p, 0, waitForCtx); err != nil {
		t.Fatalf("returned error: %v", err)
	}
}

func TestAwaitOperatorStops(t *testing.T) {
	p := startShell(t, "-c", "exec sleep 30")

	err := Await(context.Background(), p, time.Minute, func(ctx context.Context) error { return nil })
	if err != nil {
		t.Fatalf("returned error: %v", err)
	}
}

func TestAwaitCancelled(t *testing.T) {
	p := startShell(t, "-c", "exec sleep 30")

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	if err := Await(ctx, p, time.Minute, waitForCtx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestAwaitAbort(t *testing.T) {
	p := startShell(t, "-c", "exec sleep 30")

	err := Await(context.Background(), p, time.Minute, func(ctx context.Context) error { return ui.ErrInterrupted })
	if !errors.Is(err, ui.ErrInterrupted) {
		t.Fatalf("expected ErrInterrupted, got %v", err)
	}
}

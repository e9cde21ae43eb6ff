package attack

import (
	"context"
	"errors"
	"time"

	"github.com/wifibear/wifiaudit/internal/tools"
)

// Tracker keeps the set of background tools that cleanup must stop.
type Tracker interface {
	Track(p *tools.Process)
	Untrack(p *tools.Process)
}

// Await blocks while a background tool runs. It returns nil when the
// window elapses, the tool exits on its own, or stop returns nil. It
// returns an error only when ctx ends or stop reports an abort.
// A zero window waits for the operator alone.
func Await(ctx context.Context, proc *tools.Process, window time.Duration, stop func(ctx context.Context) error) error {
	var (
		waitCtx context.Context
		cancel  context.CancelFunc
	)
	if window > 0 {
		waitCtx, cancel = context.WithTimeout(ctx, window)
	} else {
		waitCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	go func() {
		select {
		case <-proc.Done():
			cancel()
		case <-waitCtx.Done():
		}
	}()

	err := stop(waitCtx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// sleep waits for d or until ctx ends.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

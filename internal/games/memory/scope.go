package memory

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// scope is a cancellable lifetime for in-flight continuations. Replacing it
// invalidates everything captured under the old one.
type scope struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func newScope(parent context.Context) scope {
	ctx, cancel := context.WithCancel(parent)
	return scope{ctx: ctx, cancel: cancel}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// join runs every fn concurrently and waits for all of them. A failing fn
// does not cut the others short; only ctx does. The first error is returned
// after the rest finish.
func join(ctx context.Context, fns ...func(context.Context) error) error {
	var g errgroup.Group
	for _, fn := range fns {
		g.Go(func() error {
			return fn(ctx)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

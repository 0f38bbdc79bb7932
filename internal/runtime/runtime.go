// Package runtime supervises the controller's cooperative threads: one
// for the interpreter loop, one for reading kernel/debuggee messages,
// and short-lived workers for symbol downloads. An errgroup.Group owns
// their lifetimes, and the debuggee-message reader is throttled by a
// rate.Limiter standing in for a configurable per-poll read delay.
package runtime

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// MessageReader pulls one pending host<->debuggee packet; io.EOF (or
// any sentinel the caller recognizes as "nothing ready") should be
// returned as a nil error with ok=false rather than blocking forever,
// so the poll loop stays responsive to ctx cancellation.
type MessageReader interface {
	ReadMessage(ctx context.Context) (ok bool, err error)
}

// SymbolJob is one short-lived symbol-download/parse task dispatched to
// a worker inside the supervising errgroup.
type SymbolJob func(ctx context.Context) error

// Controller supervises the interpreter loop, the debuggee-message
// poll loop, and on-demand symbol-download workers as one errgroup, so
// a failure in any of them cancels the others via the shared context.
type Controller struct {
	group   *errgroup.Group
	ctx     context.Context
	cancel  context.CancelFunc
	limiter *rate.Limiter
}

// New builds a Controller whose message-poll loop is throttled to at
// most one read every pollInterval.
func New(parent context.Context, pollInterval time.Duration) *Controller {
	ctx, cancel := context.WithCancel(parent)
	group, gctx := errgroup.WithContext(ctx)
	return &Controller{
		group:   group,
		ctx:     gctx,
		cancel:  cancel,
		limiter: rate.NewLimiter(rate.Every(pollInterval), 1),
	}
}

// RunInterpreterLoop starts the interpreter's read-dispatch loop as a
// supervised goroutine; fn should return when ctx is done.
func (c *Controller) RunInterpreterLoop(fn func(ctx context.Context) error) {
	c.group.Go(func() error { return fn(c.ctx) })
}

// RunMessagePoll starts reader's poll loop, pacing calls to
// reader.ReadMessage through the controller's rate.Limiter instead of
// a bare time.Sleep between iterations.
func (c *Controller) RunMessagePoll(reader MessageReader) {
	c.group.Go(func() error {
		for {
			if err := c.limiter.Wait(c.ctx); err != nil {
				return err
			}
			ok, err := reader.ReadMessage(c.ctx)
			if err != nil {
				return err
			}
			if !ok {
				select {
				case <-c.ctx.Done():
					return c.ctx.Err()
				default:
				}
			}
		}
	})
}

// SpawnSymbolJob dispatches a short-lived symbol-download/parse worker
// under the same supervision as the two long-lived loops.
func (c *Controller) SpawnSymbolJob(job SymbolJob) {
	c.group.Go(func() error { return job(c.ctx) })
}

// Shutdown cancels every supervised goroutine and waits for them to
// return, reporting the first non-nil error (if any).
func (c *Controller) Shutdown() error {
	c.cancel()
	return c.group.Wait()
}

// Wait blocks until every supervised goroutine has returned, without
// itself requesting cancellation (used when the loops are expected to
// run to natural completion, e.g. in tests).
func (c *Controller) Wait() error {
	return c.group.Wait()
}

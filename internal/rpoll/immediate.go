package rpoll

import (
	"context"
	"time"
)

// immediateScheduler fires a one-shot ping at each configured delay
// after a step, stopping early the moment any ping produces a
// callStackFormed. Scheduling a new batch cancels any batch still in
// flight, since only the most recent step's schedule is meaningful.
type immediateScheduler struct {
	delays []time.Duration
	fire   func(ctx context.Context)

	cancel context.CancelFunc
}

func newImmediateScheduler(delays []time.Duration, fire func(ctx context.Context)) *immediateScheduler {
	return &immediateScheduler{delays: delays, fire: fire}
}

// Schedule cancels any pending batch and starts a new one against ctx.
func (s *immediateScheduler) Schedule(ctx context.Context) {
	s.Cancel()
	batchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for _, d := range s.delays {
		d := d
		go func() {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-batchCtx.Done():
				return
			case <-t.C:
				s.fire(batchCtx)
			}
		}()
	}
}

// Cancel stops any pings still pending in the current batch. Safe to
// call when no batch is scheduled.
func (s *immediateScheduler) Cancel() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

package flow

import (
	"context"
	"sync/atomic"
	"time"

	"taxly/models"

	"go.uber.org/zap"
)

// Watcher owns the two timers that run while a flow sits on the
// email-verification step: a poll ticker asking whether the address was
// verified, and a one-second cooldown tick for resend countdown display.
// Both are cancelled together the moment the step changes, the flow is
// verified, or the watcher is stopped, so no orphaned timer can mutate
// state after the user has navigated away.
type Watcher struct {
	flowID string
	cancel context.CancelFunc
	done   chan struct{}
	result chan *models.FlowSnapshot

	cooldownSecs atomic.Int64
}

// WatchVerification starts a watcher for a flow currently awaiting email
// verification. The watcher stops itself once the poll observes a step
// change; callers cancel it early via Stop or the parent context.
func (c *DefaultFlowController) WatchVerification(ctx context.Context, flowID string) (*Watcher, error) {
	snap, err := c.Get(ctx, flowID)
	if err != nil {
		return nil, err
	}
	if snap.CurrentStep != models.StepEmailVerification {
		return nil, ErrNotAwaitingVerification
	}

	wctx, cancel := context.WithCancel(ctx)
	w := &Watcher{
		flowID: flowID,
		cancel: cancel,
		done:   make(chan struct{}),
		result: make(chan *models.FlowSnapshot, 1),
	}
	w.cooldownSecs.Store(int64(snap.CooldownRemaining(time.Now(), c.Cooldown).Round(time.Second).Seconds()))

	go w.run(wctx, c)
	return w, nil
}

func (w *Watcher) run(ctx context.Context, c *DefaultFlowController) {
	defer close(w.done)

	poll := time.NewTicker(c.PollInterval)
	defer poll.Stop()
	tick := time.NewTicker(time.Second)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			if remaining := w.cooldownSecs.Load(); remaining > 0 {
				w.cooldownSecs.Store(remaining - 1)
			}
		case <-poll.C:
			snap, err := c.PollVerificationStatus(ctx, w.flowID)
			if err != nil {
				c.Logger.Debug("verification watch poll failed",
					zap.String("flowId", w.flowID), zap.Error(err))
				continue
			}
			if snap.CurrentStep != models.StepEmailVerification {
				select {
				case w.result <- snap:
				default:
				}
				return
			}
		}
	}
}

// Result delivers the snapshot observed when the flow left the verification
// step. The channel is never closed; use Done to detect plain cancellation.
func (w *Watcher) Result() <-chan *models.FlowSnapshot {
	return w.result
}

// Done is closed once both timers have been torn down.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

// Stop cancels both timers and waits for the watcher goroutine to exit.
func (w *Watcher) Stop() {
	w.cancel()
	<-w.done
}

// CooldownRemaining reports the ticking resend countdown.
func (w *Watcher) CooldownRemaining() time.Duration {
	return time.Duration(w.cooldownSecs.Load()) * time.Second
}

package service

import (
	"context"
	"time"

	"github.com/yndnr/tracklink-go/internal/telemetry/logger"
)

// hangupTimeout bounds the hangup issued after cancellation.
const hangupTimeout = 5 * time.Second

// CallTask keeps a voice call to one number up.
//
// It dials, then checks the call state every retry delay and redials
// while no call is connected. On cancellation it hangs up.
type CallTask struct {
	dialer Dialer
	number string
	retry  time.Duration
	logger logger.Logger

	// onDial is invoked before every dial attempt (blink code).
	onDial func(ctx context.Context)
}

// NewCallTask creates a call task. onDial may be nil.
func NewCallTask(dialer Dialer, number string, retry time.Duration, onDial func(ctx context.Context), l logger.Logger) *CallTask {
	if l == nil {
		l = logger.Default()
	}
	return &CallTask{
		dialer: dialer,
		number: number,
		retry:  retry,
		logger: l.With("task", "call"),
		onDial: onDial,
	}
}

// Run keeps the call up until ctx ends.
func (c *CallTask) Run(ctx context.Context) error {
	for {
		if !c.dialer.CallActive(ctx) {
			if c.onDial != nil {
				c.onDial(ctx)
			}
			c.logger.Info("dialing", "number", c.number)
			if err := c.dialer.Dial(ctx, c.number); err != nil {
				c.logger.Warn("dial failed", "error", err)
			}
		}

		if err := sleep(ctx, c.retry); err != nil {
			c.hangup(ctx)
			return err
		}
	}
}

func (c *CallTask) hangup(ctx context.Context) {
	hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), hangupTimeout)
	defer cancel()
	if err := c.dialer.Hangup(hctx); err != nil {
		c.logger.Warn("hangup failed", "error", err)
		return
	}
	c.logger.Info("call ended")
}

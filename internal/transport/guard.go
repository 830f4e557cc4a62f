package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/yndnr/tracklink-go/internal/core/domain"
	"github.com/yndnr/tracklink-go/internal/telemetry/metric"
)

var errNoSendSlot = errors.New("transport: send rate limit cannot admit a message")

// GuardConfig configures a Guard.
type GuardConfig struct {
	// SMSInterval is the minimum spacing between outbound SMS once the
	// burst is spent. Zero disables spacing.
	SMSInterval time.Duration
	// SMSBurst is how many SMS may leave back to back.
	SMSBurst int
}

// Guard makes a Modem safe to share between the supervisor and its tasks.
//
// At most one SMS send and one dial or hangup are in flight at a time, and
// outbound SMS are spaced by a token bucket. Read-only capabilities pass
// through unchanged. Failures are returned as domain transport errors.
type Guard struct {
	Modem

	sendMu  sync.Mutex
	callMu  sync.Mutex
	limiter *rate.Limiter
	metrics *metric.Registry
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithGuardMetrics counts rate-limited sends and dial attempts.
func WithGuardMetrics(m *metric.Registry) GuardOption {
	return func(g *Guard) {
		g.metrics = m
	}
}

// NewGuard wraps m.
func NewGuard(m Modem, cfg GuardConfig, opts ...GuardOption) *Guard {
	limit := rate.Inf
	if cfg.SMSInterval > 0 {
		limit = rate.Every(cfg.SMSInterval)
	}
	burst := cfg.SMSBurst
	if burst < 1 {
		burst = 1
	}

	g := &Guard{
		Modem:   m,
		limiter: rate.NewLimiter(limit, burst),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SendSMS waits for a send slot, then sends under the send lock.
func (g *Guard) SendSMS(ctx context.Context, number, text string) error {
	g.sendMu.Lock()
	defer g.sendMu.Unlock()

	if err := g.wait(ctx); err != nil {
		return fmt.Errorf("transport: wait for send slot: %w", err)
	}
	if err := g.Modem.SendSMS(ctx, number, text); err != nil {
		return domain.ErrSendFailed.WithCause(err)
	}
	return nil
}

// Dial places a call under the call lock.
func (g *Guard) Dial(ctx context.Context, number string) error {
	g.callMu.Lock()
	defer g.callMu.Unlock()

	if g.metrics != nil {
		g.metrics.DialAttempts.Inc()
	}
	if err := g.Modem.Dial(ctx, number); err != nil {
		return domain.ErrDialFailed.WithCause(err)
	}
	return nil
}

// Hangup ends the call under the call lock.
func (g *Guard) Hangup(ctx context.Context) error {
	g.callMu.Lock()
	defer g.callMu.Unlock()

	if err := g.Modem.Hangup(ctx); err != nil {
		return domain.ErrTransportFault.WithDetails("hangup").WithCause(err)
	}
	return nil
}

// Battery reads the battery and records the reading.
func (g *Guard) Battery(ctx context.Context) (domain.Reading, error) {
	r, err := g.Modem.Battery(ctx)
	if err != nil {
		return domain.Reading{}, domain.ErrSensorRead.WithDetails("battery").WithCause(err)
	}
	if g.metrics != nil {
		g.metrics.BatteryPercent.Set(r.Percent)
		g.metrics.BatteryVoltage.Set(r.Voltage)
	}
	return r, nil
}

// Fix reads the GPS fix.
func (g *Guard) Fix(ctx context.Context) (domain.Fix, error) {
	f, err := g.Modem.Fix(ctx)
	if err != nil {
		return domain.Fix{}, domain.ErrSensorRead.WithDetails("gps").WithCause(err)
	}
	return f, nil
}

func (g *Guard) wait(ctx context.Context) error {
	r := g.limiter.Reserve()
	if !r.OK() {
		return errNoSendSlot
	}
	delay := r.Delay()
	if delay == 0 {
		return nil
	}
	if g.metrics != nil {
		g.metrics.SMSRateWaits.Inc()
	}

	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}

package indicator

import (
	"context"

	"github.com/yndnr/tracklink-go/internal/telemetry/logger"
	"github.com/yndnr/tracklink-go/internal/telemetry/metric"
)

// Code names a fault shown on the status LED.
type Code string

// Blink codes.
const (
	CodeBattery Code = "battery"
	CodeCall    Code = "call"
	CodeAuth    Code = "auth"
	CodeNetwork Code = "network"
	CodeSIM     Code = "sim"
	CodeSMS     Code = "sms"
	CodeOn      Code = "on"
)

var blinks = map[Code]int{
	CodeBattery: 1,
	CodeCall:    2,
	CodeAuth:    3,
	CodeNetwork: 4,
	CodeSIM:     5,
	CodeSMS:     6,
	CodeOn:      6,
}

// Blinks returns how many times the LED flashes for c, or 0 for an
// unknown code.
func (c Code) Blinks() int {
	return blinks[c]
}

// Signaler shows a blink code.
type Signaler interface {
	Signal(ctx context.Context, c Code)
}

// Switch reports the position of the on/off switch.
type Switch interface {
	SwitchOn(ctx context.Context) bool
}

// LogSignaler logs blink codes and counts them.
type LogSignaler struct {
	logger  logger.Logger
	metrics *metric.Registry
}

// NewLogSignaler creates a LogSignaler. metrics may be nil.
func NewLogSignaler(l logger.Logger, metrics *metric.Registry) *LogSignaler {
	if l == nil {
		l = logger.Default()
	}
	return &LogSignaler{logger: l, metrics: metrics}
}

// Signal implements Signaler.
func (s *LogSignaler) Signal(_ context.Context, c Code) {
	s.logger.Debug("indicator", "code", string(c), "blinks", c.Blinks())
	if s.metrics != nil {
		s.metrics.Signals.WithLabelValues(string(c)).Inc()
	}
}

// Nop discards every signal.
type Nop struct{}

// Signal implements Signaler.
func (Nop) Signal(context.Context, Code) {}

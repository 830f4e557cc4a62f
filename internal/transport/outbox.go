package transport

import (
	"context"
	"time"

	"github.com/yndnr/tracklink-go/internal/core/domain"
	"github.com/yndnr/tracklink-go/internal/telemetry/logger"
	"github.com/yndnr/tracklink-go/internal/telemetry/metric"
	"github.com/yndnr/tracklink-go/pkg/protocol"
)

// Journal records outbound messages.
type Journal interface {
	Append(ctx context.Context, msg domain.SentMessage) error
}

// Outbox encodes protocol messages and sends them through a Modem.
type Outbox struct {
	modem   Modem
	journal Journal
	metrics *metric.Registry
	logger  logger.Logger
	now     func() time.Time
}

// OutboxOption configures an Outbox.
type OutboxOption func(*Outbox)

// WithJournal records every send attempt in j.
func WithJournal(j Journal) OutboxOption {
	return func(o *Outbox) {
		o.journal = j
	}
}

// WithOutboxMetrics counts sends and failures per message kind.
func WithOutboxMetrics(m *metric.Registry) OutboxOption {
	return func(o *Outbox) {
		o.metrics = m
	}
}

// WithOutboxLogger sets the logger.
func WithOutboxLogger(l logger.Logger) OutboxOption {
	return func(o *Outbox) {
		o.logger = l
	}
}

// NewOutbox creates an outbox sending through m, normally a Guard.
func NewOutbox(m Modem, opts ...OutboxOption) *Outbox {
	o := &Outbox{
		modem:  m,
		logger: logger.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Send encodes kind and fields and sends the text to number.
//
// A journal failure is logged and does not fail the send.
func (o *Outbox) Send(ctx context.Context, number, kind string, fields ...protocol.Field) error {
	if number == "" {
		return domain.ErrInvalidConfig.WithDetails("no recipient number for " + kind)
	}

	text := protocol.Encode(kind, fields...)
	err := o.modem.SendSMS(ctx, number, text)

	if o.metrics != nil {
		if err != nil {
			o.metrics.SMSSendErrors.WithLabelValues(kind).Inc()
		} else {
			o.metrics.SMSSent.WithLabelValues(kind).Inc()
		}
	}

	if err != nil {
		o.logger.Warn("sms send failed", "kind", kind, "number", number, "error", err)
	} else {
		o.logger.Debug("sms sent", "kind", kind, "number", number, "text", text)
	}

	if o.journal != nil {
		entry := domain.SentMessage{
			At:     o.now(),
			Number: number,
			Kind:   kind,
			Text:   logger.ScrubSMS(text),
		}
		if err != nil {
			entry.Error = err.Error()
		}
		if jerr := o.journal.Append(ctx, entry); jerr != nil {
			o.logger.Warn("journal append failed", "kind", kind, "error", jerr)
		}
	}
	return err
}

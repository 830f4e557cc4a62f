package transport

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/spaolacci/murmur3"

	"github.com/yndnr/tracklink-go/internal/core/domain"
	"github.com/yndnr/tracklink-go/internal/telemetry/logger"
	"github.com/yndnr/tracklink-go/internal/telemetry/metric"
	"github.com/yndnr/tracklink-go/pkg/protocol"
)

// numberMatchDigits is how many trailing digits two phone numbers must
// share to be the same subscriber. It absorbs "+33 6..." vs "06..." forms.
const numberMatchDigits = 9

// InboxConfig configures an Inbox.
type InboxConfig struct {
	// Counterpart restricts accepted messages to one sender. Empty
	// accepts every sender.
	Counterpart string
	// DedupWindow drops a message identical to one seen within the window.
	// Zero disables deduplication.
	DedupWindow time.Duration
}

// Inbox collects inbound SMS from both the modem's store and its push
// events, and hands them out decoded.
type Inbox struct {
	modem   Modem
	cfg     InboxConfig
	metrics *metric.Registry
	logger  logger.Logger
	now     func() time.Time

	mu      sync.Mutex
	pending []SmsReceived
	seen    map[uint32]time.Time
}

// InboxOption configures an Inbox.
type InboxOption func(*Inbox)

// WithInboxMetrics counts received and duplicate messages.
func WithInboxMetrics(m *metric.Registry) InboxOption {
	return func(i *Inbox) {
		i.metrics = m
	}
}

// WithInboxLogger sets the logger.
func WithInboxLogger(l logger.Logger) InboxOption {
	return func(i *Inbox) {
		i.logger = l
	}
}

// NewInbox creates an inbox and subscribes it to m's SMS events.
func NewInbox(m Modem, cfg InboxConfig, opts ...InboxOption) *Inbox {
	i := &Inbox{
		modem:  m,
		cfg:    cfg,
		logger: logger.Default(),
		now:    time.Now,
		seen:   make(map[uint32]time.Time),
	}
	for _, opt := range opts {
		opt(i)
	}
	m.OnSMS(i.handle)
	return i
}

func (i *Inbox) handle(ev SmsEvent) {
	switch e := ev.(type) {
	case SmsReceived:
		i.mu.Lock()
		i.pending = append(i.pending, e)
		i.mu.Unlock()
	case SmsSent:
		i.logger.Debug("modem confirmed send", "number", e.Number)
	case SmsNone:
	}
}

// Drain reads and deletes every stored message, merges pushed ones, and
// returns the accepted messages decoded, oldest first.
//
// Messages from other senders and duplicate deliveries are dropped. A
// modem read failure is returned together with whatever was pushed.
func (i *Inbox) Drain(ctx context.Context) ([]protocol.Message, error) {
	stored, err := i.modem.Inbox(ctx)
	if err != nil {
		err = domain.ErrTransportFault.WithDetails("read inbox").WithCause(err)
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	raw := append(i.pending, stored...)
	i.pending = nil
	i.prune()

	msgs := make([]protocol.Message, 0, len(raw))
	for _, sms := range raw {
		if i.metrics != nil {
			i.metrics.SMSReceived.Inc()
		}
		if !i.accept(sms) {
			i.logger.Debug("sms from unknown sender dropped", "sender", sms.Sender)
			continue
		}
		if i.duplicate(sms) {
			if i.metrics != nil {
				i.metrics.SMSDuplicates.Inc()
			}
			i.logger.Debug("duplicate sms dropped", "sender", sms.Sender)
			continue
		}
		msgs = append(msgs, protocol.Decode(sms.Body))
	}
	return msgs, err
}

// Next drains the inbox and returns the last actionable message, or nil
// when none arrived. Earlier messages in the same batch are superseded.
func (i *Inbox) Next(ctx context.Context) (*protocol.Message, error) {
	msgs, err := i.Drain(ctx)
	for j := len(msgs) - 1; j >= 0; j-- {
		if Actionable(msgs[j]) {
			m := msgs[j]
			return &m, err
		}
	}
	return nil, err
}

// Actionable reports whether m carries the fields pairing acts on.
func Actionable(m protocol.Message) bool {
	return m.Has(protocol.FieldCode) && m.Has(protocol.FieldID)
}

func (i *Inbox) accept(sms SmsReceived) bool {
	if i.cfg.Counterpart == "" {
		return true
	}
	return SameNumber(sms.Sender, i.cfg.Counterpart)
}

// duplicate must be called with mu held.
func (i *Inbox) duplicate(sms SmsReceived) bool {
	if i.cfg.DedupWindow <= 0 {
		return false
	}
	key := murmur3.Sum32([]byte(sms.Sender + "\x00" + sms.Body))
	now := i.now()
	if at, ok := i.seen[key]; ok && now.Sub(at) < i.cfg.DedupWindow {
		return true
	}
	i.seen[key] = now
	return false
}

// prune must be called with mu held.
func (i *Inbox) prune() {
	if i.cfg.DedupWindow <= 0 {
		return
	}
	now := i.now()
	for k, at := range i.seen {
		if now.Sub(at) >= i.cfg.DedupWindow {
			delete(i.seen, k)
		}
	}
}

// SameNumber reports whether a and b are the same phone number, comparing
// their trailing digits.
func SameNumber(a, b string) bool {
	da, db := digits(a), digits(b)
	if da == "" || db == "" {
		return false
	}
	n := numberMatchDigits
	if len(da) < n || len(db) < n {
		return da == db
	}
	return da[len(da)-n:] == db[len(db)-n:]
}

func digits(s string) string {
	var b strings.Builder
	for _, c := range s {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}

package transport

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yndnr/tracklink-go/internal/core/domain"
	"github.com/yndnr/tracklink-go/pkg/identity"
	"github.com/yndnr/tracklink-go/pkg/protocol"
)

// ErrSimulated is the default failure injected by Simulator.FailSends.
var ErrSimulated = errors.New("transport: simulated modem failure")

// Responder produces the replies a simulated counterpart sends back for an
// outbound message.
type Responder func(sent SmsSent) []SmsReceived

// Simulator is an in-memory Modem.
//
// Battery readings follow a script: each Battery call consumes the next
// reading and the last one repeats. Inbound messages are either stored
// (returned by Inbox) or pushed to OnSMS handlers.
type Simulator struct {
	mu sync.Mutex

	imei     string
	sim      bool
	network  bool
	switchOn bool

	battery    []domain.Reading
	batteryErr error
	fix        domain.Fix

	stored   []SmsReceived
	sent     []SmsSent
	sendErr  error
	handlers []func(SmsEvent)
	respond  Responder

	callActive   bool
	callConnects bool
	dialed       []string
	hangups      int
}

// NewSimulator creates a simulator with SIM present, network registered,
// the switch on and a full battery.
func NewSimulator(imei string) *Simulator {
	return &Simulator{
		imei:         imei,
		sim:          true,
		network:      true,
		switchOn:     true,
		battery:      []domain.Reading{ReadingFor(100)},
		callConnects: true,
	}
}

// ReadingFor builds a reading for percent with a plausible Li-ion voltage.
func ReadingFor(percent float64) domain.Reading {
	return domain.Reading{
		Voltage: 3.3 + 0.9*percent/100,
		Percent: percent,
	}
}

// SetSIM sets SIM presence.
func (s *Simulator) SetSIM(present bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sim = present
}

// SetNetwork sets network registration.
func (s *Simulator) SetNetwork(registered bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.network = registered
}

// SetSwitch sets the on/off switch position.
func (s *Simulator) SetSwitch(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.switchOn = on
}

// SetBattery replaces the battery script with the given percentages.
func (s *Simulator) SetBattery(percents ...float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.battery = s.battery[:0]
	for _, p := range percents {
		s.battery = append(s.battery, ReadingFor(p))
	}
}

// FailBattery makes battery reads fail with err until cleared with nil.
func (s *Simulator) FailBattery(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batteryErr = err
}

// SetFix sets the GPS fix.
func (s *Simulator) SetFix(f domain.Fix) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fix = f
}

// FailSends makes SendSMS fail with err until cleared with nil.
func (s *Simulator) FailSends(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendErr = err
}

// SetCallConnects controls whether a dialed call becomes active.
func (s *Simulator) SetCallConnects(connects bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callConnects = connects
}

// SetResponder installs a simulated counterpart.
func (s *Simulator) SetResponder(r Responder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.respond = r
}

// Store puts a message in the modem's inbox store.
func (s *Simulator) Store(sender, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stored = append(s.stored, SmsReceived{Sender: sender, Body: body, At: time.Now()})
}

// Push delivers a message to the OnSMS handlers.
func (s *Simulator) Push(sender, body string) {
	s.emit(SmsReceived{Sender: sender, Body: body, At: time.Now()})
}

// Sent returns every message sent so far.
func (s *Simulator) Sent() []SmsSent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SmsSent, len(s.sent))
	copy(out, s.sent)
	return out
}

// SentKinds returns the decoded kind of every sent message.
func (s *Simulator) SentKinds() []string {
	sent := s.Sent()
	kinds := make([]string, len(sent))
	for i, m := range sent {
		kinds[i] = protocol.Decode(m.Text).Kind
	}
	return kinds
}

// LastSent returns the most recent sent message decoded.
func (s *Simulator) LastSent() (protocol.Message, bool) {
	sent := s.Sent()
	if len(sent) == 0 {
		return protocol.Message{}, false
	}
	return protocol.Decode(sent[len(sent)-1].Text), true
}

// ResetSent forgets sent messages.
func (s *Simulator) ResetSent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = nil
}

// Dialed returns the numbers dialed so far.
func (s *Simulator) Dialed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.dialed))
	copy(out, s.dialed)
	return out
}

// Hangups returns how many times Hangup was called.
func (s *Simulator) Hangups() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hangups
}

// SimPresent implements Modem.
func (s *Simulator) SimPresent(context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim
}

// NetworkRegistered implements Modem.
func (s *Simulator) NetworkRegistered(context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim && s.network
}

// SwitchOn reports the on/off switch position.
func (s *Simulator) SwitchOn(context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.switchOn
}

// SendSMS implements Modem.
func (s *Simulator) SendSMS(ctx context.Context, number, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.sendErr != nil {
		err := s.sendErr
		s.mu.Unlock()
		return err
	}
	sent := SmsSent{Number: number, Text: text}
	s.sent = append(s.sent, sent)
	respond := s.respond
	s.mu.Unlock()

	s.emit(sent)
	if respond != nil {
		replies := respond(sent)
		s.mu.Lock()
		s.stored = append(s.stored, replies...)
		s.mu.Unlock()
	}
	return nil
}

// Inbox implements Modem. Messages are removed once read.
func (s *Simulator) Inbox(ctx context.Context) ([]SmsReceived, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.stored
	s.stored = nil
	return out, nil
}

// OnSMS implements Modem.
func (s *Simulator) OnSMS(handler func(SmsEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, handler)
}

// Dial implements Modem.
func (s *Simulator) Dial(_ context.Context, number string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialed = append(s.dialed, number)
	s.callActive = s.callConnects
	return nil
}

// Hangup implements Modem.
func (s *Simulator) Hangup(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hangups++
	s.callActive = false
	return nil
}

// CallActive implements Modem.
func (s *Simulator) CallActive(context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.callActive
}

// Battery implements Modem.
func (s *Simulator) Battery(context.Context) (domain.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.batteryErr != nil {
		return domain.Reading{}, s.batteryErr
	}
	if len(s.battery) == 0 {
		return ReadingFor(100), nil
	}
	r := s.battery[0]
	if len(s.battery) > 1 {
		s.battery = s.battery[1:]
	}
	return r, nil
}

// Fix implements Modem.
func (s *Simulator) Fix(context.Context) (domain.Fix, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fix, nil
}

// IMEI implements Modem.
func (s *Simulator) IMEI(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.imei, nil
}

func (s *Simulator) emit(ev SmsEvent) {
	s.mu.Lock()
	handlers := make([]func(SmsEvent), len(s.handlers))
	copy(handlers, s.handlers)
	s.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}

// ControllerResponder simulates the controller side of pairing: it answers
// every AUTH request carrying an IMEI with the CODE and ID the controller
// would send for secret.
func ControllerResponder(controller, secret string) Responder {
	return func(sent SmsSent) []SmsReceived {
		msg := protocol.Decode(sent.Text)
		imei, ok := msg.Get(protocol.FieldIMEI)
		if msg.Kind != protocol.KindAuth || !ok {
			return nil
		}
		reply := protocol.Encode(protocol.KindAuth,
			protocol.F(protocol.FieldID, identity.ComputeID(imei, secret)),
			protocol.F(protocol.FieldCode, secret),
		)
		return []SmsReceived{{Sender: controller, Body: reply, At: time.Now()}}
	}
}

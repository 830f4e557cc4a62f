package service

import (
	"context"
	"errors"
	"sync"

	"github.com/yndnr/tracklink-go/internal/core/domain"
	"github.com/yndnr/tracklink-go/internal/telemetry/logger"
	"github.com/yndnr/tracklink-go/internal/telemetry/metric"
	"github.com/yndnr/tracklink-go/pkg/identity"
	"github.com/yndnr/tracklink-go/pkg/protocol"
)

// Outcome reports what a pairing step did.
type Outcome int

const (
	// OutcomeIgnored means the step changed nothing: the inbound message
	// carried no pairing data, or the session is already authenticated.
	OutcomeIgnored Outcome = iota
	// OutcomeRequested means a pairing request was sent.
	OutcomeRequested
	// OutcomePaired means the claimed id matched and the device is paired.
	OutcomePaired
	// OutcomeRejected means the claimed id did not match.
	OutcomeRejected
)

// String returns the outcome name used in logs and metrics.
func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeRequested:
		return "requested"
	case OutcomePaired:
		return "paired"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// PairingConfig holds the parameters of a pairing session.
type PairingConfig struct {
	// Serial is the device IMEI.
	Serial string
	// Controller is the number the pairing exchange talks to.
	Controller string
	// Notify receives the boot notice.
	Notify string
}

// PairingSession runs the device side of the SMS pairing exchange.
//
// The session starts Unauthenticated, moves to PendingServerReply once a
// request is sent, and to Authenticated when the controller's CODE hashes
// with the serial to the claimed ID. Authentication is never revoked by
// the session itself.
//
// All methods are safe for concurrent use; Step calls are serialized.
type PairingSession struct {
	cfg     PairingConfig
	sender  Sender
	repo    PairingRepository
	battery BatteryReader
	fixes   *FixCache
	logger  logger.Logger
	metrics *metric.Registry

	mu      sync.Mutex
	state   domain.AuthState
	keyless bool

	// ack holds the acknowledgement still to be sent, nil when none.
	ack []protocol.Field
	// unsaved is set while the authenticated record is not yet persisted.
	unsaved bool
}

// PairingOption configures a PairingSession.
type PairingOption func(*PairingSession)

// WithPairingLogger sets the session logger.
func WithPairingLogger(l logger.Logger) PairingOption {
	return func(s *PairingSession) {
		s.logger = l
	}
}

// WithPairingMetrics exports the session phase and step outcomes.
func WithPairingMetrics(m *metric.Registry) PairingOption {
	return func(s *PairingSession) {
		s.metrics = m
	}
}

// WithFixCache shares a fix cache with the monitors.
func WithFixCache(c *FixCache) PairingOption {
	return func(s *PairingSession) {
		s.fixes = c
	}
}

// NewPairingSession restores a session from the boot-time record.
//
// A record holding a secret restores an authenticated session. A keyless
// record (paired flag without secret) starts unauthenticated and is
// reported by Keyless.
func NewPairingSession(cfg PairingConfig, rec domain.PairingRecord, sender Sender, repo PairingRepository, sensors Sensors, opts ...PairingOption) *PairingSession {
	s := &PairingSession{
		cfg:     cfg,
		sender:  sender,
		repo:    repo,
		battery: sensors,
		state:   rec.State(),
		keyless: rec.Keyless(),
		logger:  logger.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fixes == nil {
		s.fixes = NewFixCache(sensors, s.logger)
	}
	s.logger = s.logger.With("component", "pairing")
	s.exportPhase()
	return s
}

// State returns a copy of the current state.
func (s *PairingSession) State() domain.AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Keyless reports whether the session was restored from a keyless record.
func (s *PairingSession) Keyless() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keyless
}

// Serial returns the device serial.
func (s *PairingSession) Serial() string {
	return s.cfg.Serial
}

// DeviceID returns the device id derived from the paired secret, or ""
// while unauthenticated.
func (s *PairingSession) DeviceID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Authenticated() {
		return ""
	}
	return identity.ComputeID(s.cfg.Serial, s.state.Secret)
}

// Settled reports whether the session has nothing left to send or persist.
func (s *PairingSession) Settled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Authenticated() && s.ack == nil && !s.unsaved
}

// Begin sends the boot notice of an unpaired device: DEVICE
// INITIALISATION, or DEVICE RESTART for a keyless record. An
// authenticated session sends nothing.
func (s *PairingSession) Begin(ctx context.Context) error {
	s.mu.Lock()
	authenticated := s.state.Authenticated()
	keyless := s.keyless
	s.mu.Unlock()

	if authenticated {
		return nil
	}

	kind := protocol.KindDeviceInit
	if keyless {
		kind = protocol.KindDeviceRestart
	}
	err := s.sender.Send(ctx, s.cfg.Notify, kind, protocol.F(protocol.FieldIMEI, s.cfg.Serial))
	if err != nil {
		s.logger.Warn("boot notice not sent", "kind", kind, "error", err)
		return err
	}
	s.logger.Info("boot notice sent", "kind", kind)
	return nil
}

// Step advances the exchange with the latest inbound message, nil when
// there is none.
//
//   - Authenticated: the message is ignored; a pending acknowledgement or
//     record write is retried.
//   - nil message: a pairing request (IMEI, Voltage, Location,
//     Satellites) is sent and the session waits for the reply.
//   - message without CODE or ID: nothing happens and ErrNotActionable
//     is returned.
//   - CODE and ID: the ID is checked against the serial and CODE. On a
//     match the device acknowledges, persists the pairing and becomes
//     authenticated. Otherwise it answers WRONG ID and starts over.
//
// Any other returned error is retryable and never moves the state
// backwards.
func (s *PairingSession) Step(ctx context.Context, inbound *protocol.Message) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Authenticated() {
		return OutcomeIgnored, s.flush(ctx)
	}

	if inbound == nil {
		return s.request(ctx)
	}

	code, _ := inbound.Get(protocol.FieldCode)
	claimed, _ := inbound.Get(protocol.FieldID)
	if code == "" || claimed == "" {
		s.count(OutcomeIgnored)
		s.logger.Debug("inbound message carries no pairing data", "kind", inbound.Kind)
		return OutcomeIgnored, domain.ErrNotActionable.WithDetails("kind " + inbound.Kind)
	}

	if !identity.Verify(s.cfg.Serial, code, claimed) {
		return s.reject(ctx, code, claimed)
	}
	return s.accept(ctx, code)
}

func (s *PairingSession) request(ctx context.Context) (Outcome, error) {
	fields := []protocol.Field{protocol.F(protocol.FieldIMEI, s.cfg.Serial)}
	if r, err := s.battery.Battery(ctx); err == nil {
		fields = append(fields, voltageField(r))
	} else {
		s.logger.Warn("battery read failed, request sent without voltage", "error", err)
	}
	fields = append(fields, s.fixes.Get(ctx).Fields()...)

	if err := s.sender.Send(ctx, s.cfg.Controller, protocol.KindAuth, fields...); err != nil {
		s.count(OutcomeIgnored)
		return OutcomeIgnored, err
	}

	if s.state.Phase != domain.PhasePendingServerReply {
		s.setState(domain.Pending())
	}
	s.count(OutcomeRequested)
	return OutcomeRequested, nil
}

func (s *PairingSession) reject(ctx context.Context, code, claimed string) (Outcome, error) {
	s.logger.Warn("pairing rejected",
		"error_code", domain.ErrIdentityMismatch.Code,
		"claimed_id", claimed)

	err := s.sender.Send(ctx, s.cfg.Controller, protocol.KindWrongID,
		protocol.F(protocol.FieldID, claimed),
		protocol.F(protocol.FieldCode, code))

	s.setState(domain.Unauthenticated())
	s.count(OutcomeRejected)
	return OutcomeRejected, err
}

func (s *PairingSession) accept(ctx context.Context, code string) (Outcome, error) {
	id := identity.ComputeID(s.cfg.Serial, code)

	s.setState(domain.AuthenticatedWith(code))
	s.keyless = false
	s.ack = []protocol.Field{
		protocol.F(protocol.FieldCode, code),
		protocol.F(protocol.FieldID, id),
	}
	s.unsaved = true
	s.count(OutcomePaired)
	s.logger.Info("device paired", "device_id", id)

	return OutcomePaired, s.flush(ctx)
}

// flush sends a pending acknowledgement and persists an unsaved record.
// Both are attempted; their errors are joined.
func (s *PairingSession) flush(ctx context.Context) error {
	var errs []error

	if s.ack != nil {
		if err := s.sender.Send(ctx, s.cfg.Controller, protocol.KindAuth, s.ack...); err != nil {
			s.logger.Warn("pairing acknowledgement not sent, will retry", "error", err)
			errs = append(errs, err)
		} else {
			s.ack = nil
		}
	}

	if s.unsaved {
		if err := s.repo.Save(domain.RecordFor(s.state)); err != nil {
			s.logger.Error("pairing record not saved, will retry", "error", err)
			errs = append(errs, err)
		} else {
			s.unsaved = false
		}
	}
	return errors.Join(errs...)
}

func (s *PairingSession) setState(next domain.AuthState) {
	if s.state.Phase != next.Phase {
		s.logger.Info("pairing phase changed", "from", s.state.Phase.String(), "to", next.Phase.String())
	}
	s.state = next
	s.exportPhase()
}

func (s *PairingSession) exportPhase() {
	if s.metrics != nil {
		s.metrics.AuthPhase.Set(float64(s.state.Phase))
	}
}

func (s *PairingSession) count(o Outcome) {
	if s.metrics != nil {
		s.metrics.PairingAttempts.WithLabelValues(o.String()).Inc()
	}
}

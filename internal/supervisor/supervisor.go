package supervisor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yndnr/tracklink-go/internal/core/domain"
	"github.com/yndnr/tracklink-go/internal/core/service"
	"github.com/yndnr/tracklink-go/internal/device/config"
	"github.com/yndnr/tracklink-go/internal/device/indicator"
	"github.com/yndnr/tracklink-go/internal/telemetry/logger"
	"github.com/yndnr/tracklink-go/internal/telemetry/metric"
	"github.com/yndnr/tracklink-go/internal/transport"
	"github.com/yndnr/tracklink-go/pkg/protocol"
)

// Supervisor phases.
const (
	PhaseSIM         = "sim"
	PhaseNetwork     = "network"
	PhaseAuth        = "auth"
	PhaseSwitch      = "switch"
	PhaseOperational = "operational"
	PhasePaused      = "paused"
	PhaseStopped     = "stopped"
)

// Phases lists every phase, for metrics.
var Phases = []string{
	PhaseSIM, PhaseNetwork, PhaseAuth, PhaseSwitch, PhaseOperational, PhasePaused, PhaseStopped,
}

// Task names.
const (
	TaskThreshold = "threshold"
	TaskDelta     = "delta"
	TaskBeacon    = "beacon"
	TaskCall      = "call"
)

// pausedTasks are cancelled on a critical battery and restarted on
// recovery. The threshold monitor keeps running throughout.
var pausedTasks = []string{TaskCall, TaskDelta, TaskBeacon}

var (
	errConnectivityLost = errors.New("supervisor: sim or network lost")
	errSwitchOff        = errors.New("supervisor: switch turned off")
)

// Inbox yields inbound protocol messages. transport.Inbox implements it.
type Inbox interface {
	Next(ctx context.Context) (*protocol.Message, error)
	Drain(ctx context.Context) ([]protocol.Message, error)
}

// Deps are the collaborators of a Supervisor.
type Deps struct {
	Modem   transport.Modem
	Sender  service.Sender
	Inbox   Inbox
	Session *service.PairingSession

	// Fixes is shared with the session; created when nil.
	Fixes *service.FixCache
	// Signaler shows blink codes; indicator.Nop when nil.
	Signaler indicator.Signaler
	// Switch gates the operational phase when device.require_switch is set.
	Switch indicator.Switch
}

// Supervisor drives the device through its phases:
//
//	sim -> network -> auth -> [switch] -> operational <-> paused
//
// Losing the SIM or the network from any later phase cancels every task
// and starts over at the SIM phase. Pairing survives the restart.
type Supervisor struct {
	cfg      *config.Config
	deps     Deps
	registry *Registry
	logger   logger.Logger
	metrics  *metric.Registry

	mu    sync.Mutex
	phase string

	drained   bool
	begun     bool
	announced bool
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithLogger sets the supervisor logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Supervisor) {
		s.logger = l
	}
}

// WithMetrics exports phases and task activity.
func WithMetrics(m *metric.Registry) Option {
	return func(s *Supervisor) {
		s.metrics = m
	}
}

// New creates a supervisor.
func New(cfg *config.Config, deps Deps, opts ...Option) *Supervisor {
	s := &Supervisor{
		cfg:    cfg,
		deps:   deps,
		logger: logger.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "supervisor")
	if s.deps.Signaler == nil {
		s.deps.Signaler = indicator.Nop{}
	}
	if s.deps.Fixes == nil {
		s.deps.Fixes = service.NewFixCache(deps.Modem, s.logger)
	}
	s.registry = NewRegistry(s.logger, s.metrics)
	return s
}

// Phase returns the current phase.
func (s *Supervisor) Phase() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Running returns the names of the running tasks.
func (s *Supervisor) Running() []string {
	return s.registry.Names()
}

// Run supervises the device until ctx ends. Every task is stopped before
// it returns. Faults are logged and retried; Run returns only ctx.Err().
func (s *Supervisor) Run(ctx context.Context) error {
	defer func() {
		s.registry.CancelAll()
		s.setPhase(PhaseStopped)
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := s.cycle(ctx)
		switch {
		case errors.Is(err, errConnectivityLost):
			s.logger.Warn("connectivity lost, restarting from sim check")
		case errors.Is(err, errSwitchOff):
			s.logger.Info("switch turned off, tasks stopped")
		case domain.Retryable(err) && ctx.Err() == nil:
			s.logger.Error("supervisor cycle failed, retrying",
				"error_code", domain.GetErrorCode(err),
				"error", err)
		}
	}
}

// cycle runs the phases once, returning when the operational phase ends.
func (s *Supervisor) cycle(ctx context.Context) error {
	if err := s.await(ctx, PhaseSIM, indicator.CodeSIM, domain.ErrNoSIM, s.deps.Modem.SimPresent); err != nil {
		return err
	}
	if err := s.await(ctx, PhaseNetwork, indicator.CodeNetwork, domain.ErrNoNetwork, s.deps.Modem.NetworkRegistered); err != nil {
		return err
	}
	if err := s.authenticate(ctx); err != nil {
		return err
	}
	return s.operate(ctx)
}

// await blocks in phase until check passes, signalling code and logging
// cause on every failed check.
func (s *Supervisor) await(ctx context.Context, phase string, code indicator.Code, cause *domain.DomainError, check func(context.Context) bool) error {
	s.setPhase(phase)
	for !check(ctx) {
		s.deps.Signaler.Signal(ctx, code)
		s.logger.Warn("waiting",
			"phase", phase,
			"error_code", cause.Code,
			"error", cause,
			"retry_in", s.cfg.Supervisor.RetryDelay)
		if err := sleep(ctx, s.cfg.Supervisor.RetryDelay); err != nil {
			return err
		}
	}
	return nil
}

func (s *Supervisor) connected(ctx context.Context) bool {
	return s.deps.Modem.SimPresent(ctx) && s.deps.Modem.NetworkRegistered(ctx)
}

// ============================================================================
// Authentication Phase
// ============================================================================

func (s *Supervisor) authenticate(ctx context.Context) error {
	session := s.deps.Session
	if session.State().Authenticated() {
		return nil
	}
	s.setPhase(PhaseAuth)

	if !s.drained {
		if stale, err := s.deps.Inbox.Drain(ctx); err != nil {
			s.logger.Warn("inbox read failed", "error", err)
		} else if len(stale) > 0 {
			s.logger.Info("discarded messages received before boot", "count", len(stale))
		}
		s.drained = true
	}

	for {
		// The boot notice is retried until it goes out.
		if !s.begun && session.Begin(ctx) == nil {
			s.begun = true
		}

		msg, err := s.deps.Inbox.Next(ctx)
		if err != nil {
			s.logger.Warn("inbox read failed", "error", err)
		}

		outcome, err := session.Step(ctx, msg)
		switch {
		case domain.IsDomainError(err, domain.ErrNotActionable.Code):
			s.logger.Debug("pairing step", "outcome", outcome.String(), "reason", err)
		case err != nil:
			s.logger.Warn("pairing step failed",
				"outcome", outcome.String(),
				"error_code", domain.GetErrorCode(err),
				"error", err)
		default:
			s.logger.Debug("pairing step", "outcome", outcome.String())
		}
		if session.State().Authenticated() {
			return nil
		}

		s.deps.Signaler.Signal(ctx, indicator.CodeAuth)
		if err := sleep(ctx, s.cfg.Pairing.RetryInterval); err != nil {
			return err
		}
		if !s.connected(ctx) {
			return errConnectivityLost
		}
	}
}

// ============================================================================
// Operational Phase
// ============================================================================

func (s *Supervisor) operate(ctx context.Context) error {
	id := s.deps.Session.DeviceID()
	s.announce(ctx, id)

	if err := s.awaitSwitch(ctx); err != nil {
		return err
	}

	defer s.registry.CancelAll()

	s.setPhase(PhaseOperational)
	s.deps.Signaler.Signal(ctx, indicator.CodeOn)

	mon := s.cfg.Monitor
	threshold := service.NewThresholdMonitor(service.ThresholdConfig{
		Report:    s.report(id),
		Threshold: mon.Threshold,
		ResumeAt:  mon.ResumeAt(),
		Interval:  mon.ThresholdInterval,
	}, s.deps.Modem, s.deps.Fixes, s.deps.Sender, s.logger)

	s.registry.Start(ctx, TaskThreshold, threshold.Run)
	s.startWork(ctx, id)

	health := time.NewTicker(s.cfg.Supervisor.HealthInterval)
	defer health.Stop()

	paused := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev := <-threshold.Events():
			switch {
			case ev == service.BatteryCritical && !paused:
				s.deescalate(ctx)
				paused = true
			case ev == service.BatteryRecovered && paused:
				s.resume(ctx, id)
				paused = false
			}

		case <-health.C:
			if !s.connected(ctx) {
				return errConnectivityLost
			}
			if !s.switchOn(ctx) {
				return errSwitchOff
			}
			s.announce(ctx, id)
			s.settle(ctx)
		}
	}
}

// announce sends DEVICE AUTHENTICATED once per boot, retried on every
// health tick until it goes out.
func (s *Supervisor) announce(ctx context.Context, id string) {
	if s.announced {
		return
	}
	err := s.deps.Sender.Send(ctx, s.cfg.Device.UserNumber, protocol.KindDeviceAuthenticated,
		protocol.F(protocol.FieldID, id))
	if err != nil {
		s.logger.Warn("authenticated notice not sent, will retry", "error", err)
		return
	}
	s.announced = true
}

// settle retries a pending pairing acknowledgement or record write and
// clears the inbox, whose messages no longer matter.
func (s *Supervisor) settle(ctx context.Context) {
	if !s.deps.Session.Settled() {
		if _, err := s.deps.Session.Step(ctx, nil); err != nil {
			s.logger.Warn("pairing still unsettled", "error", err)
		}
	}
	if msgs, err := s.deps.Inbox.Drain(ctx); err != nil {
		s.logger.Warn("inbox read failed", "error", err)
	} else if len(msgs) > 0 {
		s.logger.Debug("ignored inbound messages while authenticated", "count", len(msgs))
	}
}

func (s *Supervisor) awaitSwitch(ctx context.Context) error {
	if s.switchOn(ctx) {
		return nil
	}
	s.setPhase(PhaseSwitch)
	for !s.switchOn(ctx) {
		s.logger.Info("waiting for switch")
		if err := sleep(ctx, s.cfg.Supervisor.RetryDelay); err != nil {
			return err
		}
		if !s.connected(ctx) {
			return errConnectivityLost
		}
	}
	return nil
}

func (s *Supervisor) switchOn(ctx context.Context) bool {
	if !s.cfg.Device.RequireSwitch || s.deps.Switch == nil {
		return true
	}
	return s.deps.Switch.SwitchOn(ctx)
}

// startWork starts the tasks that pause on a critical battery. Monitors
// are built fresh so a resumed delta monitor primes again.
func (s *Supervisor) startWork(ctx context.Context, id string) {
	mon := s.cfg.Monitor

	delta := service.NewDeltaMonitor(service.DeltaConfig{
		Report:   s.report(id),
		Drop:     mon.DeltaDrop(),
		Interval: mon.DeltaInterval,
	}, s.deps.Modem, s.deps.Fixes, s.deps.Sender, s.logger)
	s.registry.Start(ctx, TaskDelta, delta.Run)

	beacon := service.NewBeaconMonitor(service.BeaconConfig{
		Report:   s.report(id),
		Interval: mon.BeaconInterval,
	}, s.deps.Modem, s.deps.Fixes, s.deps.Sender, s.logger)
	if beacon.Enabled() {
		s.registry.Start(ctx, TaskBeacon, beacon.Run)
	}

	if s.cfg.Call.Enabled {
		signal := func(ctx context.Context) { s.deps.Signaler.Signal(ctx, indicator.CodeCall) }
		call := service.NewCallTask(s.deps.Modem, s.cfg.Device.CallNumber, s.cfg.Call.RetryDelay, signal, s.logger)
		s.registry.Start(ctx, TaskCall, call.Run)
	}
}

// deescalate stops the paused tasks and tells the user. Pairing is kept.
// The notice carries the IMEI in its ID field.
func (s *Supervisor) deescalate(ctx context.Context) {
	s.registry.Cancel(pausedTasks...)
	s.setPhase(PhasePaused)
	s.deps.Signaler.Signal(ctx, indicator.CodeBattery)
	if s.metrics != nil {
		s.metrics.Deescalations.Inc()
	}

	err := s.deps.Sender.Send(ctx, s.cfg.Device.UserNumber, protocol.KindLowVoltageDevice,
		protocol.F(protocol.FieldID, s.deps.Session.Serial()))
	if err != nil {
		s.logger.Warn("low voltage notice not sent", "error", err)
	}
}

func (s *Supervisor) resume(ctx context.Context, id string) {
	if s.metrics != nil {
		s.metrics.Recoveries.Inc()
	}
	s.startWork(ctx, id)
	s.setPhase(PhaseOperational)
}

func (s *Supervisor) report(id string) service.Report {
	return service.Report{DeviceID: id, Number: s.cfg.Device.ControllerNumber()}
}

func (s *Supervisor) setPhase(phase string) {
	s.mu.Lock()
	prev := s.phase
	s.phase = phase
	s.mu.Unlock()

	if prev == phase {
		return
	}
	s.logger.Info("phase changed", "from", prev, "to", phase)
	if s.metrics != nil {
		s.metrics.SetPhase(phase, Phases)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

package service

import (
	"context"
	"time"

	"github.com/yndnr/tracklink-go/internal/telemetry/logger"
	"github.com/yndnr/tracklink-go/pkg/protocol"
)

// BatteryEvent is reported by the threshold monitor to the supervisor.
type BatteryEvent int

const (
	// BatteryCritical is reported once when the charge falls to the threshold.
	BatteryCritical BatteryEvent = iota + 1
	// BatteryRecovered is reported once when the charge rises back above
	// the resume level after a critical episode.
	BatteryRecovered
)

// String returns the event name.
func (e BatteryEvent) String() string {
	switch e {
	case BatteryCritical:
		return "critical"
	case BatteryRecovered:
		return "recovered"
	default:
		return "none"
	}
}

// Report identifies the device and the destination of monitor reports.
type Report struct {
	// DeviceID is the ID field of every report.
	DeviceID string
	// Number receives the reports.
	Number string
}

// sleep waits for d or until ctx ends.
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

// ============================================================================
// Threshold Monitor
// ============================================================================

// ThresholdConfig configures a ThresholdMonitor.
type ThresholdConfig struct {
	Report
	// Threshold is the critical charge percentage (inclusive).
	Threshold float64
	// ResumeAt is the charge above which a critical episode ends.
	ResumeAt float64
	Interval time.Duration
}

// ThresholdMonitor watches for a critical battery.
//
// Every reading at or below the threshold sends LOW BAT. The first such
// reading of an episode also reports BatteryCritical; the episode ends,
// with BatteryRecovered, when the charge rises above ResumeAt.
type ThresholdMonitor struct {
	cfg     ThresholdConfig
	battery BatteryReader
	fixes   *FixCache
	sender  Sender
	logger  logger.Logger

	events chan BatteryEvent
	low    bool
}

// NewThresholdMonitor creates a threshold monitor.
func NewThresholdMonitor(cfg ThresholdConfig, battery BatteryReader, fixes *FixCache, sender Sender, l logger.Logger) *ThresholdMonitor {
	if l == nil {
		l = logger.Default()
	}
	return &ThresholdMonitor{
		cfg:     cfg,
		battery: battery,
		fixes:   fixes,
		sender:  sender,
		logger:  l.With("task", "threshold"),
		events:  make(chan BatteryEvent, 1),
	}
}

// Events delivers critical and recovered transitions.
func (m *ThresholdMonitor) Events() <-chan BatteryEvent {
	return m.events
}

// Check takes one reading. It returns the transition the reading caused,
// 0 if none.
func (m *ThresholdMonitor) Check(ctx context.Context) (BatteryEvent, error) {
	r, err := m.battery.Battery(ctx)
	if err != nil {
		return 0, err
	}

	if r.Low(m.cfg.Threshold) {
		fields := statusFields(m.cfg.DeviceID, r, m.fixes.Get(ctx))
		if err := m.sender.Send(ctx, m.cfg.Number, protocol.KindLowBattery, fields...); err != nil {
			m.logger.Warn("low battery report not sent", "error", err)
		}
		if !m.low {
			m.low = true
			m.logger.Warn("battery critical", "percent", r.Percent, "threshold", m.cfg.Threshold)
			return BatteryCritical, nil
		}
		return 0, nil
	}

	if m.low && r.Percent > m.cfg.ResumeAt {
		m.low = false
		m.logger.Info("battery recovered", "percent", r.Percent)
		return BatteryRecovered, nil
	}
	return 0, nil
}

// Run checks immediately and then every interval until ctx ends.
func (m *ThresholdMonitor) Run(ctx context.Context) error {
	for {
		ev, err := m.Check(ctx)
		if err != nil {
			m.logger.Warn("battery read failed", "error", err)
		}
		if ev != 0 {
			select {
			case m.events <- ev:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := sleep(ctx, m.cfg.Interval); err != nil {
			return err
		}
	}
}

// ============================================================================
// Delta Monitor
// ============================================================================

// DeltaConfig configures a DeltaMonitor.
type DeltaConfig struct {
	Report
	// Drop is the fall in percentage points between two readings that
	// fires a VOLT report.
	Drop     float64
	Interval time.Duration
}

// DeltaMonitor reports sudden battery drops.
type DeltaMonitor struct {
	cfg     DeltaConfig
	battery BatteryReader
	fixes   *FixCache
	sender  Sender
	logger  logger.Logger

	previous float64
	primed   bool
}

// NewDeltaMonitor creates a delta monitor.
func NewDeltaMonitor(cfg DeltaConfig, battery BatteryReader, fixes *FixCache, sender Sender, l logger.Logger) *DeltaMonitor {
	if l == nil {
		l = logger.Default()
	}
	return &DeltaMonitor{
		cfg:     cfg,
		battery: battery,
		fixes:   fixes,
		sender:  sender,
		logger:  l.With("task", "delta"),
	}
}

// Check takes one reading and reports whether it fired. The first
// reading only primes the monitor; every reading becomes the new
// reference.
func (m *DeltaMonitor) Check(ctx context.Context) (bool, error) {
	r, err := m.battery.Battery(ctx)
	if err != nil {
		return false, err
	}

	fired := m.primed && m.previous-r.Percent >= m.cfg.Drop
	drop := m.previous - r.Percent
	m.previous = r.Percent
	m.primed = true

	if !fired {
		return false, nil
	}
	m.logger.Info("battery dropped", "drop", drop, "percent", r.Percent)
	fields := statusFields(m.cfg.DeviceID, r, m.fixes.Get(ctx))
	return true, m.sender.Send(ctx, m.cfg.Number, protocol.KindVolt, fields...)
}

// Run checks immediately and then every interval until ctx ends.
func (m *DeltaMonitor) Run(ctx context.Context) error {
	for {
		if _, err := m.Check(ctx); err != nil {
			m.logger.Warn("delta check failed", "error", err)
		}
		if err := sleep(ctx, m.cfg.Interval); err != nil {
			return err
		}
	}
}

// ============================================================================
// Beacon Monitor
// ============================================================================

// BeaconConfig configures a BeaconMonitor.
type BeaconConfig struct {
	Report
	// Interval spaces beacons; 0 disables the monitor.
	Interval time.Duration
}

// BeaconMonitor periodically reports the device position.
type BeaconMonitor struct {
	cfg     BeaconConfig
	battery BatteryReader
	fixes   *FixCache
	sender  Sender
	logger  logger.Logger
}

// NewBeaconMonitor creates a beacon monitor.
func NewBeaconMonitor(cfg BeaconConfig, battery BatteryReader, fixes *FixCache, sender Sender, l logger.Logger) *BeaconMonitor {
	if l == nil {
		l = logger.Default()
	}
	return &BeaconMonitor{
		cfg:     cfg,
		battery: battery,
		fixes:   fixes,
		sender:  sender,
		logger:  l.With("task", "beacon"),
	}
}

// Enabled reports whether beacons are configured.
func (m *BeaconMonitor) Enabled() bool {
	return m.cfg.Interval > 0
}

// Beacon sends one INIT report: ID, Voltage, Location, Satellites, Time.
// A failed battery read leaves the Voltage field out.
func (m *BeaconMonitor) Beacon(ctx context.Context) error {
	fix := m.fixes.Get(ctx)
	fields := []protocol.Field{protocol.F(protocol.FieldID, m.cfg.DeviceID)}
	if r, err := m.battery.Battery(ctx); err == nil {
		fields = append(fields, voltageField(r))
	} else {
		m.logger.Warn("battery read failed", "error", err)
	}
	fields = append(fields, fix.Fields()...)
	fields = append(fields, protocol.F(protocol.FieldTime, fix.Timestamp()))
	return m.sender.Send(ctx, m.cfg.Number, protocol.KindInit, fields...)
}

// Run sends a beacon every interval until ctx ends. It returns at once
// when disabled.
func (m *BeaconMonitor) Run(ctx context.Context) error {
	if !m.Enabled() {
		return nil
	}
	for {
		if err := sleep(ctx, m.cfg.Interval); err != nil {
			return err
		}
		if err := m.Beacon(ctx); err != nil {
			m.logger.Warn("beacon not sent", "error", err)
		}
	}
}

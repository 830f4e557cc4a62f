package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/yndnr/tracklink-go/internal/core/domain"
	"github.com/yndnr/tracklink-go/internal/telemetry/logger"
)

// Verify validates the configuration. The first problem found is
// returned as domain.ErrInvalidConfig with the offending key in Details.
func Verify(cfg *Config) error {
	verifiers := []func(*Config) error{
		verifyDevice,
		verifyPairing,
		verifyMonitor,
		verifyCall,
		verifySupervisor,
		verifyTransport,
		verifyStorage,
		verifyMetrics,
		verifyLog,
	}
	for _, verify := range verifiers {
		if err := verify(cfg); err != nil {
			return err
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return domain.ErrInvalidConfig.WithDetails(fmt.Sprintf(format, args...))
}

func verifyDevice(cfg *Config) error {
	d := cfg.Device
	if d.UserNumber == "" {
		return invalid("device.user_number is required")
	}
	numbers := []struct {
		key   string
		value string
	}{
		{"device.user_number", d.UserNumber},
		{"device.sms_number", d.SMSNumber},
		{"device.call_number", d.CallNumber},
	}
	for _, n := range numbers {
		if n.value != "" && !validNumber(n.value) {
			return invalid("%s %q is not a phone number", n.key, n.value)
		}
	}
	if d.StateFile == "" {
		return invalid("device.state_file is required")
	}
	return nil
}

func verifyPairing(cfg *Config) error {
	return positive("pairing.retry_interval", cfg.Pairing.RetryInterval)
}

func verifyMonitor(cfg *Config) error {
	m := cfg.Monitor
	if m.Threshold <= 0 || m.Threshold >= 100 {
		return invalid("monitor.threshold must be between 0 and 100, got %v", m.Threshold)
	}
	if m.DeltaMultiplier <= 0 {
		return invalid("monitor.delta_multiplier must be positive, got %v", m.DeltaMultiplier)
	}
	if m.RecoveryMargin < 0 {
		return invalid("monitor.recovery_margin must not be negative, got %v", m.RecoveryMargin)
	}
	if err := positive("monitor.threshold_interval", m.ThresholdInterval); err != nil {
		return err
	}
	if err := positive("monitor.delta_interval", m.DeltaInterval); err != nil {
		return err
	}
	if m.BeaconInterval < 0 {
		return invalid("monitor.beacon_interval must not be negative")
	}
	return nil
}

func verifyCall(cfg *Config) error {
	if !cfg.Call.Enabled {
		return nil
	}
	if cfg.Device.CallNumber == "" {
		return invalid("device.call_number is required when call.enabled is set")
	}
	return positive("call.retry_delay", cfg.Call.RetryDelay)
}

func verifySupervisor(cfg *Config) error {
	if err := positive("supervisor.retry_delay", cfg.Supervisor.RetryDelay); err != nil {
		return err
	}
	return positive("supervisor.health_interval", cfg.Supervisor.HealthInterval)
}

func verifyTransport(cfg *Config) error {
	t := cfg.Transport
	if t.SMSInterval < 0 {
		return invalid("transport.sms_interval must not be negative")
	}
	if t.SMSBurst < 1 {
		return invalid("transport.sms_burst must be at least 1")
	}
	if t.DedupWindow < 0 {
		return invalid("transport.dedup_window must not be negative")
	}
	return nil
}

func verifyStorage(cfg *Config) error {
	if cfg.Storage.JournalDir != "" && cfg.Storage.JournalLimit < 1 {
		return invalid("storage.journal_limit must be at least 1")
	}
	return nil
}

func verifyMetrics(cfg *Config) error {
	if cfg.Metrics.Textfile == "" {
		return nil
	}
	if !strings.HasSuffix(cfg.Metrics.Textfile, ".prom") {
		return invalid("metrics.textfile must end in .prom")
	}
	return positive("metrics.interval", cfg.Metrics.Interval)
}

func verifyLog(cfg *Config) error {
	if !logger.ValidLevel(cfg.Log.Level) {
		return invalid("log.level %q is not one of debug, info, warn, error", cfg.Log.Level)
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "json", "text":
		return nil
	}
	return invalid("log.format %q is not json or text", cfg.Log.Format)
}

func positive(key string, d time.Duration) error {
	if d <= 0 {
		return invalid("%s must be positive", key)
	}
	return nil
}

// validNumber accepts digits with an optional leading '+', ignoring
// spaces and dashes.
func validNumber(s string) bool {
	s = strings.TrimPrefix(strings.TrimSpace(s), "+")
	digits := 0
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == ' ' || c == '-':
		default:
			return false
		}
	}
	return digits >= 3
}

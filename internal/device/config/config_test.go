package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/tracklink-go/internal/core/domain"
	"github.com/yndnr/tracklink-go/internal/infra/confloader"
)

const testPrefix = "TLTEST_"

func validConfig() *Config {
	cfg := Default()
	cfg.Device.UserNumber = "+33600000001"
	cfg.Device.CallNumber = "+33600000003"
	return cfg
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Monitor.Threshold != DefaultThreshold {
		t.Errorf("Threshold = %v, want %v", cfg.Monitor.Threshold, DefaultThreshold)
	}
	if cfg.Monitor.DeltaMultiplier != DefaultDeltaMultiplier {
		t.Errorf("DeltaMultiplier = %v, want %v", cfg.Monitor.DeltaMultiplier, DefaultDeltaMultiplier)
	}
	if cfg.Pairing.RetryInterval != DefaultPairingRetry {
		t.Errorf("RetryInterval = %v, want %v", cfg.Pairing.RetryInterval, DefaultPairingRetry)
	}
	if cfg.Monitor.BeaconInterval != 0 {
		t.Errorf("BeaconInterval = %v, want disabled", cfg.Monitor.BeaconInterval)
	}
	if cfg.Device.StateFile != DefaultStateFile {
		t.Errorf("StateFile = %q, want %q", cfg.Device.StateFile, DefaultStateFile)
	}
	if cfg.Log.Level != DefaultLogLevel || cfg.Log.Format != DefaultLogFormat {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestDerivedValues(t *testing.T) {
	cfg := Default()
	if got := cfg.Monitor.DeltaDrop(); got != 40 {
		t.Errorf("DeltaDrop() = %v, want 40", got)
	}
	if got := cfg.Monitor.ResumeAt(); got != 25 {
		t.Errorf("ResumeAt() = %v, want 25", got)
	}

	cfg.Device.UserNumber = "+1"
	if got := cfg.Device.ControllerNumber(); got != "+1" {
		t.Errorf("ControllerNumber() = %q, want user number fallback", got)
	}
	cfg.Device.SMSNumber = "+2"
	if got := cfg.Device.ControllerNumber(); got != "+2" {
		t.Errorf("ControllerNumber() = %q, want sms number", got)
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantKey string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing user number", mutate: func(c *Config) { c.Device.UserNumber = "" }, wantKey: "device.user_number"},
		{name: "bad sms number", mutate: func(c *Config) { c.Device.SMSNumber = "abc" }, wantKey: "device.sms_number"},
		{name: "missing state file", mutate: func(c *Config) { c.Device.StateFile = "" }, wantKey: "device.state_file"},
		{name: "zero threshold", mutate: func(c *Config) { c.Monitor.Threshold = 0 }, wantKey: "monitor.threshold"},
		{name: "threshold too high", mutate: func(c *Config) { c.Monitor.Threshold = 100 }, wantKey: "monitor.threshold"},
		{name: "zero multiplier", mutate: func(c *Config) { c.Monitor.DeltaMultiplier = 0 }, wantKey: "monitor.delta_multiplier"},
		{name: "negative margin", mutate: func(c *Config) { c.Monitor.RecoveryMargin = -1 }, wantKey: "monitor.recovery_margin"},
		{name: "zero monitor interval", mutate: func(c *Config) { c.Monitor.ThresholdInterval = 0 }, wantKey: "monitor.threshold_interval"},
		{name: "negative beacon", mutate: func(c *Config) { c.Monitor.BeaconInterval = -time.Second }, wantKey: "monitor.beacon_interval"},
		{name: "call without number", mutate: func(c *Config) { c.Device.CallNumber = "" }, wantKey: "device.call_number"},
		{name: "call disabled without number", mutate: func(c *Config) { c.Call.Enabled = false; c.Device.CallNumber = "" }},
		{name: "zero pairing retry", mutate: func(c *Config) { c.Pairing.RetryInterval = 0 }, wantKey: "pairing.retry_interval"},
		{name: "zero supervisor retry", mutate: func(c *Config) { c.Supervisor.RetryDelay = 0 }, wantKey: "supervisor.retry_delay"},
		{name: "zero burst", mutate: func(c *Config) { c.Transport.SMSBurst = 0 }, wantKey: "transport.sms_burst"},
		{name: "zero journal limit", mutate: func(c *Config) { c.Storage.JournalLimit = 0 }, wantKey: "storage.journal_limit"},
		{name: "journal disabled", mutate: func(c *Config) { c.Storage.JournalDir = ""; c.Storage.JournalLimit = 0 }},
		{name: "textfile suffix", mutate: func(c *Config) { c.Metrics.Textfile = "/tmp/tracklink.txt" }, wantKey: "metrics.textfile"},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "verbose" }, wantKey: "log.level"},
		{name: "bad log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantKey: "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := Verify(cfg)
			if tt.wantKey == "" {
				if err != nil {
					t.Fatalf("Verify() error = %v", err)
				}
				return
			}
			if !errors.Is(err, domain.ErrInvalidConfig) {
				t.Fatalf("Verify() error = %v, want ErrInvalidConfig", err)
			}
			if !strings.Contains(err.Error(), tt.wantKey) {
				t.Errorf("Verify() error = %v, want mention of %s", err, tt.wantKey)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	cfg := validConfig()
	cfg.Device.SMSNumber = "+33600000002"

	sanitized := Sanitize(cfg)

	if cfg.Device.UserNumber != "+33600000001" {
		t.Error("Sanitize() modified the original")
	}
	if sanitized.Device.UserNumber != "********0001" {
		t.Errorf("UserNumber = %q", sanitized.Device.UserNumber)
	}
	if strings.Contains(sanitized.Device.SMSNumber, "336") {
		t.Errorf("SMSNumber not masked: %q", sanitized.Device.SMSNumber)
	}
	if sanitized.Monitor != cfg.Monitor {
		t.Error("Sanitize() changed non-sensitive sections")
	}
}

func TestLegacyDefaults(t *testing.T) {
	doc := map[string]any{
		"USER_PHONE_NUMBER": "+33600000001",
		"SMS_PHONE_NUMBER":  "",
		"CALL_PHONE_NUMBER": nil,
		"THRESHOLD_VALUE":   15.0,
		"AUTHENTICATION":    true,
		"LED_1":             2,
	}

	got := LegacyDefaults(doc)

	if len(got) != 2 {
		t.Fatalf("LegacyDefaults() = %v, want 2 keys", got)
	}
	if got["device.user_number"] != "+33600000001" {
		t.Errorf("device.user_number = %v", got["device.user_number"])
	}
	if got["monitor.threshold"] != 15.0 {
		t.Errorf("monitor.threshold = %v", got["monitor.threshold"])
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	state := filepath.Join(dir, "config.json")
	writeFile(t, state, `{
  "USER_PHONE_NUMBER": "+33600000001",
  "CALL_PHONE_NUMBER": "+33600000003",
  "THRESHOLD_VALUE": 15,
  "AUTHENTICATION": 1,
  "USER_PASSWORD": "hunter2"
}`)

	path := filepath.Join(dir, "tracklink.yaml")
	writeFile(t, path, `
device:
  state_file: `+state+`
  sms_number: "+33600000002"
pairing:
  retry_interval: 5s
monitor:
  delta_multiplier: 3
`)

	t.Setenv(testPrefix+"LOG__LEVEL", "debug")
	t.Setenv(testPrefix+"MONITOR__BEACON_INTERVAL", "10m")

	cfg, loader, err := Load(path, confloader.WithEnvPrefix(testPrefix))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Device.UserNumber != "+33600000001" {
		t.Errorf("UserNumber = %q, want value from state document", cfg.Device.UserNumber)
	}
	if cfg.Device.SMSNumber != "+33600000002" {
		t.Errorf("SMSNumber = %q, want value from file", cfg.Device.SMSNumber)
	}
	if cfg.Monitor.Threshold != 15 {
		t.Errorf("Threshold = %v, want 15", cfg.Monitor.Threshold)
	}
	if cfg.Monitor.DeltaMultiplier != 3 {
		t.Errorf("DeltaMultiplier = %v, want 3", cfg.Monitor.DeltaMultiplier)
	}
	if cfg.Pairing.RetryInterval != 5*time.Second {
		t.Errorf("RetryInterval = %v, want 5s", cfg.Pairing.RetryInterval)
	}
	if cfg.Monitor.BeaconInterval != 10*time.Minute {
		t.Errorf("BeaconInterval = %v, want 10m", cfg.Monitor.BeaconInterval)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want env override", cfg.Log.Level)
	}
	if cfg.Monitor.ThresholdInterval != DefaultThresholdInterval {
		t.Errorf("ThresholdInterval = %v, want default", cfg.Monitor.ThresholdInterval)
	}
	if loader.FilePath() != path {
		t.Errorf("FilePath() = %q, want %q", loader.FilePath(), path)
	}
}

func TestLoad_FileOverridesLegacy(t *testing.T) {
	dir := t.TempDir()
	state := filepath.Join(dir, "config.json")
	writeFile(t, state, `{"USER_PHONE_NUMBER": "+33600000001", "THRESHOLD_VALUE": "15"}`)

	path := filepath.Join(dir, "tracklink.yaml")
	writeFile(t, path, `
device:
  state_file: `+state+`
monitor:
  threshold: 30
call:
  enabled: false
`)

	cfg, _, err := Load(path, confloader.WithEnvPrefix(testPrefix))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Monitor.Threshold != 30 {
		t.Errorf("Threshold = %v, want file value 30", cfg.Monitor.Threshold)
	}
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tracklink.yaml")
	writeFile(t, path, `
device:
  state_file: `+filepath.Join(dir, "missing.json")+`
`)

	_, _, err := Load(path, confloader.WithEnvPrefix(testPrefix))
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("Load() error = %v, want ErrInvalidConfig", err)
	}
}

func TestReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tracklink.yaml")
	body := `
device:
  user_number: "+33600000001"
  state_file: ` + filepath.Join(dir, "state.json") + `
call:
  enabled: false
log:
  level: %s
`
	writeFile(t, path, strings.Replace(body, "%s", "info", 1))

	cfg, loader, err := Load(path, confloader.WithEnvPrefix(testPrefix))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("Log.Level = %q", cfg.Log.Level)
	}

	writeFile(t, path, strings.Replace(body, "%s", "warn", 1))
	cfg, err = Reload(loader)
	if err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}

	writeFile(t, path, strings.Replace(body, "%s", "loud", 1))
	if _, err := Reload(loader); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("Reload() error = %v, want ErrInvalidConfig", err)
	}
}

package config

import "time"

// Config is the root configuration of the tracklink daemon.
type Config struct {
	Device     DeviceSection     `koanf:"device" yaml:"device"`
	Pairing    PairingSection    `koanf:"pairing" yaml:"pairing"`
	Monitor    MonitorSection    `koanf:"monitor" yaml:"monitor"`
	Call       CallSection       `koanf:"call" yaml:"call"`
	Supervisor SupervisorSection `koanf:"supervisor" yaml:"supervisor"`
	Transport  TransportSection  `koanf:"transport" yaml:"transport"`
	Storage    StorageSection    `koanf:"storage" yaml:"storage"`
	Metrics    MetricsSection    `koanf:"metrics" yaml:"metrics"`
	Log        LogSection        `koanf:"log" yaml:"log"`
}

// DeviceSection holds the phone numbers and the pairing state location.
type DeviceSection struct {
	// UserNumber receives status notices (boot, authenticated, low voltage).
	UserNumber string `koanf:"user_number" yaml:"user_number"`

	// SMSNumber is the controller the pairing protocol talks to.
	// Defaults to UserNumber when empty.
	SMSNumber string `koanf:"sms_number" yaml:"sms_number"`

	// CallNumber is dialled by the call task.
	CallNumber string `koanf:"call_number" yaml:"call_number"`

	// StateFile is the JSON document holding the pairing record.
	StateFile string `koanf:"state_file" yaml:"state_file"`

	// RequireSwitch makes the operational phase wait for the on/off switch.
	RequireSwitch bool `koanf:"require_switch" yaml:"require_switch"`

	// Serial overrides the modem IMEI. Only the simulator honours it.
	Serial string `koanf:"serial" yaml:"serial"`
}

// PairingSection configures the authentication exchange.
type PairingSection struct {
	RetryInterval time.Duration `koanf:"retry_interval" yaml:"retry_interval"`
}

// MonitorSection configures the battery and location monitors.
type MonitorSection struct {
	// Threshold is the critical battery percentage.
	Threshold float64 `koanf:"threshold" yaml:"threshold"`

	// DeltaMultiplier scales Threshold into the drop that fires a VOLT report.
	DeltaMultiplier float64 `koanf:"delta_multiplier" yaml:"delta_multiplier"`

	// RecoveryMargin is added to Threshold before paused tasks restart.
	RecoveryMargin float64 `koanf:"recovery_margin" yaml:"recovery_margin"`

	ThresholdInterval time.Duration `koanf:"threshold_interval" yaml:"threshold_interval"`
	DeltaInterval     time.Duration `koanf:"delta_interval" yaml:"delta_interval"`

	// BeaconInterval spaces periodic location reports; 0 disables them.
	BeaconInterval time.Duration `koanf:"beacon_interval" yaml:"beacon_interval"`
}

// CallSection configures the voice call task.
type CallSection struct {
	Enabled    bool          `koanf:"enabled" yaml:"enabled"`
	RetryDelay time.Duration `koanf:"retry_delay" yaml:"retry_delay"`
}

// SupervisorSection configures the supervision loop.
type SupervisorSection struct {
	// RetryDelay spaces SIM and network checks while they fail.
	RetryDelay time.Duration `koanf:"retry_delay" yaml:"retry_delay"`

	// HealthInterval spaces SIM and network checks in the operational phase.
	HealthInterval time.Duration `koanf:"health_interval" yaml:"health_interval"`
}

// TransportSection configures the modem guard and inbox.
type TransportSection struct {
	// SMSInterval is the minimum spacing between outbound messages.
	SMSInterval time.Duration `koanf:"sms_interval" yaml:"sms_interval"`
	SMSBurst    int           `koanf:"sms_burst" yaml:"sms_burst"`

	// DedupWindow drops repeated deliveries of the same message.
	DedupWindow time.Duration `koanf:"dedup_window" yaml:"dedup_window"`
}

// StorageSection configures the outbound journal.
type StorageSection struct {
	// JournalDir is the Badger directory. Empty disables the journal.
	JournalDir   string `koanf:"journal_dir" yaml:"journal_dir"`
	JournalLimit int    `koanf:"journal_limit" yaml:"journal_limit"`
}

// MetricsSection configures the node-exporter textfile.
type MetricsSection struct {
	// Textfile is the .prom output path. Empty disables export.
	Textfile string        `koanf:"textfile" yaml:"textfile"`
	Interval time.Duration `koanf:"interval" yaml:"interval"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// ControllerNumber returns the number the pairing protocol talks to.
func (d DeviceSection) ControllerNumber() string {
	if d.SMSNumber != "" {
		return d.SMSNumber
	}
	return d.UserNumber
}

// ResumeAt returns the battery percentage above which paused tasks restart.
func (m MonitorSection) ResumeAt() float64 {
	return m.Threshold + m.RecoveryMargin
}

// DeltaDrop returns the percentage drop between two readings that fires
// a VOLT report.
func (m MonitorSection) DeltaDrop() float64 {
	return m.DeltaMultiplier * m.Threshold
}

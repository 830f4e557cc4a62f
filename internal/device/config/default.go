package config

import "time"

// Default configuration values.
const (
	DefaultStateFile  = "/var/lib/tracklink/config.json"
	DefaultJournalDir = "/var/lib/tracklink/journal"

	DefaultPairingRetry = 30 * time.Second

	DefaultThreshold         = 20.0
	DefaultDeltaMultiplier   = 2.0
	DefaultRecoveryMargin    = 5.0
	DefaultThresholdInterval = 30 * time.Second
	DefaultDeltaInterval     = 30 * time.Second

	DefaultCallRetry = 10 * time.Second

	DefaultSupervisorRetry = 3 * time.Second
	DefaultHealthInterval  = 30 * time.Second

	DefaultSMSInterval = 2 * time.Second
	DefaultSMSBurst    = 1
	DefaultDedupWindow = 10 * time.Minute

	DefaultJournalLimit = 1000

	DefaultMetricsInterval = time.Minute

	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Default returns the default device configuration.
func Default() *Config {
	return &Config{
		Device: DeviceSection{
			StateFile: DefaultStateFile,
		},
		Pairing: PairingSection{
			RetryInterval: DefaultPairingRetry,
		},
		Monitor: MonitorSection{
			Threshold:         DefaultThreshold,
			DeltaMultiplier:   DefaultDeltaMultiplier,
			RecoveryMargin:    DefaultRecoveryMargin,
			ThresholdInterval: DefaultThresholdInterval,
			DeltaInterval:     DefaultDeltaInterval,
		},
		Call: CallSection{
			Enabled:    true,
			RetryDelay: DefaultCallRetry,
		},
		Supervisor: SupervisorSection{
			RetryDelay:     DefaultSupervisorRetry,
			HealthInterval: DefaultHealthInterval,
		},
		Transport: TransportSection{
			SMSInterval: DefaultSMSInterval,
			SMSBurst:    DefaultSMSBurst,
			DedupWindow: DefaultDedupWindow,
		},
		Storage: StorageSection{
			JournalDir:   DefaultJournalDir,
			JournalLimit: DefaultJournalLimit,
		},
		Metrics: MetricsSection{
			Interval: DefaultMetricsInterval,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

package config

import "github.com/yndnr/tracklink-go/internal/telemetry/logger"

// Sanitize returns a copy of the config with phone numbers masked.
//
// This is used for logging configuration without exposing the
// deployment's contacts.
func Sanitize(cfg *Config) *Config {
	sanitized := *cfg

	sanitized.Device.UserNumber = logger.MaskNumber(cfg.Device.UserNumber)
	sanitized.Device.SMSNumber = logger.MaskNumber(cfg.Device.SMSNumber)
	sanitized.Device.CallNumber = logger.MaskNumber(cfg.Device.CallNumber)

	return &sanitized
}

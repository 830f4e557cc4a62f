// Package logger provides structured logging for tracklink.
//
// It wraps log/slog with a small Logger interface:
//
//   - logger.go: handler setup, runtime level, default logger
//   - context.go: per-boot id propagation
//   - redact.go: pairing secret and phone number redaction
//
// The shared pairing secret must never reach a log line. Attributes whose
// key names a secret are replaced before the handler sees them, and phone
// numbers keep only their last digits.
package logger

// Package domain defines the core domain models for tracklink.
//
// Domain models are pure values without IO dependencies. This package
// contains:
//
//   - AuthState: the pairing state owned by the pairing session
//   - PairingRecord: the two persisted pairing fields
//   - Reading and Fix: battery and location samples from the modem
//   - Errors: device-side error definitions
package domain

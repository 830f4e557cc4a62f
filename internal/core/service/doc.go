// Package service implements the device-side behaviour of tracklink.
//
// This package contains:
//
//   - PairingSession: the SMS pairing exchange with the controller
//   - ThresholdMonitor: LOW BAT reports and critical battery detection
//   - DeltaMonitor: VOLT reports on sudden battery drops
//   - BeaconMonitor: periodic INIT position reports
//   - CallTask: keeps a voice call to the configured number up
//   - FixCache: last valid GPS fix shared by the reports
//
// Services depend on the narrow interfaces in ports.go; the transport
// package provides the production implementations and a simulator.
// Monitors never read or change the pairing state. They are started and
// cancelled by the supervisor, and every wait observes the context.
package service

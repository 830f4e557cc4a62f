// Package main provides the entry point for tracklink-cli.
//
// The CLI is the controller's side of the tracker:
//
//   - Device ids and the AUTH reply that pairs a device
//   - Encoding and decoding protocol messages
//   - Device profiles (serial, secret, number) kept in a private file
//   - The pairing record and the sent-message journal on the tracker
//   - Daemon configuration checks
//
// Usage:
//
//	tracklink-cli [global flags] command [flags] [args]
//	tracklink-cli reply --secret hunter2 'AUTH | IMEI: 356938035643809; Voltage: 80'
//	tracklink-cli -o json --config /etc/tracklink/tracklink.yaml journal list --failed
package main

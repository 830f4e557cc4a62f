// Package main provides the entry point for tracklink.
//
// tracklink runs on the tracker. It waits for a SIM and a network, pairs
// with the controller over SMS, then keeps a voice call to the call number
// up while watching the battery:
//
//   - a reading at or below the threshold sends LOW BAT, pauses the call
//     and the reports, and tells the user number
//   - a sudden drop between two readings sends VOLT
//   - an optional beacon sends INIT with the last fix
//
// Usage:
//
//	tracklink [flags]
//	tracklink --config /etc/tracklink/tracklink.yaml
//	tracklink --simulate --simulate-secret hunter2
//
// The configuration file changes log.level at runtime; everything else
// is read at startup.
package main

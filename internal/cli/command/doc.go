// Package command provides the tracklink-cli commands.
//
// tracklink-cli is the controller side of the pairing protocol and a
// maintenance tool for a device's local state:
//
//   - id, verify, reply: derive and check device ids, answer pairing requests
//   - encode, decode: build and parse wire messages
//   - device: manage the controller's paired-device profiles
//   - pairing: show or reset the device's stored pairing record
//   - journal: list the outbound message journal
//   - config: show or check the daemon configuration
//   - status: the daemon's phase and counters from its metrics textfile
//   - shell: run the commands above interactively
//
// Commands build a value and print it through internal/cli/output, so
// every result is available as table, json or yaml.
package command

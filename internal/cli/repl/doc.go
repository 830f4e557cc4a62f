// Package repl provides the interactive shell of tracklink-cli.
//
//   - repl.go: read, split and dispatch loop
//   - completer.go: command name lookup and suggestions
//   - history.go: history kept in a private file
//
// Lines are split with shell quoting rules, so wire text can be passed
// as one argument: decode 'AUTH | IMEI: 356938035643809'.
package repl

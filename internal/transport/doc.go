// Package transport is the device's only link to the outside world: the
// cellular modem carrying SMS and voice calls, plus the battery and GPS
// readings it exposes.
//
// The Modem interface is the narrow capability the rest of the daemon
// consumes. Guard wraps a Modem with mutual exclusion and send spacing,
// Outbox encodes and journals outbound protocol messages, and Inbox drains
// and deduplicates inbound ones. Simulator is an in-memory Modem for the
// daemon's simulate mode and for tests.
package transport

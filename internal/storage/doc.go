// Package storage persists device state.
//
// Two stores live here:
//
//   - PairingStore: the JSON pairing document (AUTHENTICATION and
//     USER_PASSWORD), shared with deployment parameters it must not touch
//   - Journal: an append-only record of outbound SMS on an embedded
//     Badger KV engine, keyed by ULID so iteration is chronological
package storage

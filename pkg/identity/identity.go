// Package identity derives the 10-digit device id used as the pairing
// token between a tracking device and its controller.
//
// The id is the first 40 bits of SHA-256(serial || secret), read as a
// big-endian unsigned integer and printed in decimal, zero-padded to at
// least 10 digits. A 40-bit value can need up to 13 digits; those ids are
// printed in full so both sides stay byte-identical.
// Both sides compute it independently; equality is the only
// authentication predicate.
package identity

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
)

// Bounds on the number of decimal digits in a device id.
const (
	MinIDLength = 10
	MaxIDLength = 13
)

// idBytes is the number of digest bytes folded into the id.
const idBytes = 5

// ComputeID returns the device id for serial and secret.
//
// It is deterministic and performs no I/O.
func ComputeID(serial, secret string) string {
	h := sha256.New()
	h.Write([]byte(serial))
	h.Write([]byte(secret))
	sum := h.Sum(nil)

	var n uint64
	for _, b := range sum[:idBytes] {
		n = n<<8 | uint64(b)
	}
	return fmt.Sprintf("%0*d", MinIDLength, n)
}

// Verify reports whether claimed is the id for serial and secret.
//
// Uses constant-time comparison.
func Verify(serial, secret, claimed string) bool {
	expected := ComputeID(serial, secret)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(claimed)) == 1
}

// Valid reports whether s has the shape of a device id.
func Valid(s string) bool {
	if len(s) < MinIDLength || len(s) > MaxIDLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Identity is the device serial together with the current shared secret.
//
// The id is derived on demand; WithSecret returns a new value rather than
// mutating the receiver.
type Identity struct {
	Serial string
	Secret string
}

// New returns an identity without a secret.
func New(serial string) Identity {
	return Identity{Serial: serial}
}

// WithSecret returns a copy of the identity carrying secret.
func (i Identity) WithSecret(secret string) Identity {
	return Identity{Serial: i.Serial, Secret: secret}
}

// HasSecret reports whether a non-empty secret is set.
func (i Identity) HasSecret() bool {
	return i.Secret != ""
}

// ID returns the device id for the current serial and secret.
func (i Identity) ID() string {
	return ComputeID(i.Serial, i.Secret)
}

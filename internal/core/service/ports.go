package service

import (
	"context"

	"github.com/yndnr/tracklink-go/internal/core/domain"
	"github.com/yndnr/tracklink-go/pkg/protocol"
)

// Sender sends one protocol message. transport.Outbox implements it.
type Sender interface {
	Send(ctx context.Context, number, kind string, fields ...protocol.Field) error
}

// PairingRepository persists the pairing record.
type PairingRepository interface {
	// Load returns the stored record; a device never paired yields the
	// zero record.
	Load() (domain.PairingRecord, error)

	// Save replaces the stored record.
	Save(rec domain.PairingRecord) error
}

// BatteryReader reads the battery.
type BatteryReader interface {
	Battery(ctx context.Context) (domain.Reading, error)
}

// Locator reads the GPS fix.
type Locator interface {
	Fix(ctx context.Context) (domain.Fix, error)
}

// Sensors is the read side of the modem the monitors use.
type Sensors interface {
	BatteryReader
	Locator
}

// Dialer places and ends voice calls.
type Dialer interface {
	Dial(ctx context.Context, number string) error
	Hangup(ctx context.Context) error
	CallActive(ctx context.Context) bool
}

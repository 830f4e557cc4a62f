package domain

import (
	"time"

	"github.com/yndnr/tracklink-go/pkg/protocol"
)

// Reading is a battery sample.
type Reading struct {
	Voltage float64 // Volts
	Percent float64 // 0-100
}

// Low reports whether the charge is at or below threshold percent.
func (r Reading) Low(threshold float64) bool {
	return r.Percent <= threshold
}

// Fix is the last known GPS position.
//
// A Fix with Valid false still encodes (as zeros) so status messages keep
// a stable field set.
type Fix struct {
	Location   protocol.Pair // latitude, longitude
	Satellites protocol.Pair // tracked, visible
	Time       time.Time
	Valid      bool
}

// Fields returns the Location and Satellites fields of a status message.
func (f Fix) Fields() []protocol.Field {
	return []protocol.Field{
		protocol.F(protocol.FieldLocation, f.Location.String()),
		protocol.F(protocol.FieldSatellites, f.Satellites.String()),
	}
}

// Timestamp renders the fix time as unix seconds, or "0" when unknown.
func (f Fix) Timestamp() string {
	if f.Time.IsZero() {
		return "0"
	}
	return protocol.FormatNumber(float64(f.Time.Unix()))
}

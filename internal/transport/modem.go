package transport

import (
	"context"

	"github.com/yndnr/tracklink-go/internal/core/domain"
)

// Modem is the capability set of the cellular module.
//
// Implementations must be safe for concurrent use only to the extent Guard
// requires: Guard serializes sends, and dial/hangup, itself.
type Modem interface {
	// SimPresent reports whether a SIM card is inserted and readable.
	SimPresent(ctx context.Context) bool
	// NetworkRegistered reports whether the modem is registered on a network.
	NetworkRegistered(ctx context.Context) bool
	// SendSMS sends text to number.
	SendSMS(ctx context.Context, number, text string) error
	// Inbox reads and deletes every stored inbound SMS, oldest first.
	Inbox(ctx context.Context) ([]SmsReceived, error)
	// OnSMS registers a handler for asynchronous SMS events.
	OnSMS(handler func(SmsEvent))
	// Dial places a voice call to number.
	Dial(ctx context.Context, number string) error
	// Hangup ends the current voice call, if any.
	Hangup(ctx context.Context) error
	// CallActive reports whether a voice call is connected.
	CallActive(ctx context.Context) bool
	// Battery reads the battery.
	Battery(ctx context.Context) (domain.Reading, error)
	// Fix returns the last GPS fix.
	Fix(ctx context.Context) (domain.Fix, error)
	// IMEI returns the modem serial.
	IMEI(ctx context.Context) (string, error)
}

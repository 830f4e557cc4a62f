package transport

import "time"

// SmsEvent is an asynchronous notification from the modem. It is one of
// SmsSent, SmsReceived or SmsNone; dispatch with a type switch.
type SmsEvent interface {
	isSmsEvent()
}

// SmsSent reports that an outbound message left the modem.
type SmsSent struct {
	Number string
	Text   string
}

// SmsReceived carries an inbound message.
type SmsReceived struct {
	Sender string
	Body   string
	At     time.Time
}

// SmsNone is delivered when the modem signalled activity but had no
// message to hand over.
type SmsNone struct{}

func (SmsSent) isSmsEvent()     {}
func (SmsReceived) isSmsEvent() {}
func (SmsNone) isSmsEvent()     {}

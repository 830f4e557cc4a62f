package domain

import "time"

// SentMessage is a journal entry for one outbound SMS attempt.
//
// Text never carries the pairing secret: CODE values are scrubbed before
// the entry is built.
type SentMessage struct {
	ID     string    `json:"id"`
	At     time.Time `json:"at"`
	Number string    `json:"number"`
	Kind   string    `json:"kind"`
	Text   string    `json:"text"`
	Error  string    `json:"error,omitempty"`
}

// Delivered reports whether the send succeeded.
func (m SentMessage) Delivered() bool {
	return m.Error == ""
}

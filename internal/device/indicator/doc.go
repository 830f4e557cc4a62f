// Package indicator reports device faults as blink codes and gates the
// operational phase on the on/off switch.
//
// The device has a single status LED; each fault blinks a fixed number of
// times:
//
//	battery  1
//	call     2
//	auth     3
//	network  4
//	sim      5
//	sms, on  6
//
// Driving the LED is left to the hardware layer. LogSignaler records the
// codes in the log and in metrics, which is what the daemon and the
// simulator use.
package indicator

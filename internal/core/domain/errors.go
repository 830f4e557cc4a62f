package domain

import (
	"context"
	"errors"
	"fmt"
)

// DomainError is a device-side error carrying a stable error code.
//
// Codes have the form TL-<AREA>-<NNNN>. None of them is fatal: the
// supervisor logs the error and retries on its next tick.
type DomainError struct {
	Code    string // Error code (e.g., "TL-TRAN-5030")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches on the error code only.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// Wrap wraps an error with this domain error as the cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	return e.WithCause(cause)
}

// IsDomainError checks if an error is a DomainError with the given code.
// An empty code matches any DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Retryable reports whether err should be retried on the next tick.
// Every domain error is; only context cancellation is not.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// ============================================================================
// Transport Errors (TRAN)
// ============================================================================

var (
	// ErrTransportFault indicates a send, dial or hardware read failed.
	ErrTransportFault = NewDomainError("TL-TRAN-5030", "transport fault")

	// ErrSendFailed indicates an outbound SMS could not be sent.
	ErrSendFailed = NewDomainError("TL-TRAN-5031", "sms send failed")

	// ErrDialFailed indicates a voice call could not be placed.
	ErrDialFailed = NewDomainError("TL-TRAN-5032", "dial failed")

	// ErrSensorRead indicates a battery or GPS read failed.
	ErrSensorRead = NewDomainError("TL-TRAN-5033", "sensor read failed")

	// ErrNoSIM indicates the SIM card is absent.
	ErrNoSIM = NewDomainError("TL-TRAN-5034", "sim card not present")

	// ErrNoNetwork indicates the modem is not registered on a network.
	ErrNoNetwork = NewDomainError("TL-TRAN-5035", "network not registered")
)

// ============================================================================
// Protocol Errors (PROT)
// ============================================================================

var (
	// ErrNotActionable indicates an inbound message lacks CODE or ID.
	ErrNotActionable = NewDomainError("TL-PROT-4001", "message carries no pairing data")
)

// ============================================================================
// Authentication Errors (AUTH)
// ============================================================================

var (
	// ErrIdentityMismatch marks the WRONG ID branch of pairing.
	ErrIdentityMismatch = NewDomainError("TL-AUTH-4010", "device id mismatch")
)

// ============================================================================
// Storage Errors (STOR)
// ============================================================================

var (
	// ErrStorage indicates the pairing record or journal could not be accessed.
	ErrStorage = NewDomainError("TL-STOR-5001", "storage error")

	// ErrCorruptRecord indicates the pairing record could not be parsed.
	ErrCorruptRecord = NewDomainError("TL-STOR-5002", "corrupt pairing record")
)

// ============================================================================
// Configuration Errors (CONF)
// ============================================================================

var (
	// ErrInvalidConfig indicates an invalid configuration value.
	ErrInvalidConfig = NewDomainError("TL-CONF-4000", "invalid configuration")
)

package domain

// AuthPhase is the pairing phase of the device.
type AuthPhase int

const (
	// PhaseUnauthenticated means no pairing exists or the last attempt failed.
	PhaseUnauthenticated AuthPhase = iota
	// PhasePendingServerReply means a pairing request was sent and the
	// device waits for the counterpart's CODE and ID.
	PhasePendingServerReply
	// PhaseAuthenticated means the device holds a verified secret.
	PhaseAuthenticated
)

// String returns the phase name used in logs and metrics.
func (p AuthPhase) String() string {
	switch p {
	case PhaseUnauthenticated:
		return "unauthenticated"
	case PhasePendingServerReply:
		return "pending_server_reply"
	case PhaseAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// AuthState is the pairing state. Secret is set only when Phase is
// PhaseAuthenticated.
type AuthState struct {
	Phase  AuthPhase
	Secret string
}

// Authenticated reports whether the state holds a verified secret.
func (s AuthState) Authenticated() bool {
	return s.Phase == PhaseAuthenticated
}

// Unauthenticated returns the initial state.
func Unauthenticated() AuthState {
	return AuthState{Phase: PhaseUnauthenticated}
}

// Pending returns the state after a pairing request was sent.
func Pending() AuthState {
	return AuthState{Phase: PhasePendingServerReply}
}

// AuthenticatedWith returns the paired state holding secret.
func AuthenticatedWith(secret string) AuthState {
	return AuthState{Phase: PhaseAuthenticated, Secret: secret}
}

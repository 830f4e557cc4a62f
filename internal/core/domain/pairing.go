package domain

// PairingRecord is the persisted pairing state: whether the device was
// paired, and with which secret.
type PairingRecord struct {
	Authenticated bool
	Secret        string
}

// Keyless reports whether the record claims a pairing but carries no
// secret. Such a device restarts pairing and announces a restart.
func (r PairingRecord) Keyless() bool {
	return r.Authenticated && r.Secret == ""
}

// Paired reports whether the record restores an authenticated session.
func (r PairingRecord) Paired() bool {
	return r.Authenticated && r.Secret != ""
}

// State returns the AuthState a session restored from r starts in.
func (r PairingRecord) State() AuthState {
	if r.Paired() {
		return AuthenticatedWith(r.Secret)
	}
	return Unauthenticated()
}

// RecordFor returns the record persisted for state s.
func RecordFor(s AuthState) PairingRecord {
	if !s.Authenticated() {
		return PairingRecord{}
	}
	return PairingRecord{Authenticated: true, Secret: s.Secret}
}

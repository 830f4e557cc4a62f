package domain

import (
	"testing"
	"time"

	"github.com/yndnr/tracklink-go/pkg/protocol"
)

func TestPairingRecord_State(t *testing.T) {
	tests := []struct {
		name        string
		record      PairingRecord
		wantPhase   AuthPhase
		wantSecret  string
		wantKeyless bool
	}{
		{
			name:      "fresh device",
			record:    PairingRecord{},
			wantPhase: PhaseUnauthenticated,
		},
		{
			name:       "paired device",
			record:     PairingRecord{Authenticated: true, Secret: "hunter2"},
			wantPhase:  PhaseAuthenticated,
			wantSecret: "hunter2",
		},
		{
			name:        "keyless record",
			record:      PairingRecord{Authenticated: true},
			wantPhase:   PhaseUnauthenticated,
			wantKeyless: true,
		},
		{
			name:      "stale secret without flag",
			record:    PairingRecord{Secret: "old"},
			wantPhase: PhaseUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.record.State()
			if s.Phase != tt.wantPhase {
				t.Errorf("Phase = %v, want %v", s.Phase, tt.wantPhase)
			}
			if s.Secret != tt.wantSecret {
				t.Errorf("Secret = %q, want %q", s.Secret, tt.wantSecret)
			}
			if got := tt.record.Keyless(); got != tt.wantKeyless {
				t.Errorf("Keyless() = %v, want %v", got, tt.wantKeyless)
			}
		})
	}
}

func TestRecordFor(t *testing.T) {
	if got := RecordFor(AuthenticatedWith("c")); got != (PairingRecord{Authenticated: true, Secret: "c"}) {
		t.Errorf("RecordFor(authenticated) = %+v", got)
	}
	if got := RecordFor(Pending()); got != (PairingRecord{}) {
		t.Errorf("RecordFor(pending) = %+v", got)
	}
}

func TestAuthPhase_String(t *testing.T) {
	tests := map[AuthPhase]string{
		PhaseUnauthenticated:    "unauthenticated",
		PhasePendingServerReply: "pending_server_reply",
		PhaseAuthenticated:      "authenticated",
		AuthPhase(42):           "unknown",
	}
	for phase, want := range tests {
		if got := phase.String(); got != want {
			t.Errorf("AuthPhase(%d).String() = %q, want %q", int(phase), got, want)
		}
	}
}

func TestReading_Low(t *testing.T) {
	r := Reading{Voltage: 3.5, Percent: 20}
	if !r.Low(20) {
		t.Error("Low(20) should be true at exactly 20%")
	}
	if r.Low(19.9) {
		t.Error("Low(19.9) should be false at 20%")
	}
}

func TestFix_Fields(t *testing.T) {
	fix := Fix{
		Location:   protocol.Pair{A: 48.85, B: 2.35},
		Satellites: protocol.Pair{A: 7, B: 12},
		Time:       time.Unix(1700000000, 0),
		Valid:      true,
	}
	got := protocol.Encode(protocol.KindVolt, fix.Fields()...)
	want := "VOLT | Location: (48.85,2.35); Satellites: (7,12)"
	if got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
	if ts := fix.Timestamp(); ts != "1700000000" {
		t.Errorf("Timestamp() = %q", ts)
	}
	if ts := (Fix{}).Timestamp(); ts != "0" {
		t.Errorf("zero Timestamp() = %q", ts)
	}
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/tracklink-go/internal/core/domain"
	"github.com/yndnr/tracklink-go/internal/transport"
	"github.com/yndnr/tracklink-go/pkg/protocol"
)

func TestPairingSession_Pairs(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, domain.PairingRecord{})

	if err := h.session.Begin(ctx); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	notice, msg := lastSent(t, h.sim)
	if notice.Number != testUser || msg.Kind != protocol.KindDeviceInit {
		t.Fatalf("boot notice = %+v", notice)
	}
	if imei, _ := msg.Get(protocol.FieldIMEI); imei != testSerial {
		t.Errorf("boot notice IMEI = %q", imei)
	}

	outcome, err := h.session.Step(ctx, nil)
	if err != nil || outcome != OutcomeRequested {
		t.Fatalf("Step(nil) = %v, %v; want requested", outcome, err)
	}
	if got := h.session.State().Phase; got != domain.PhasePendingServerReply {
		t.Fatalf("phase = %v, want pending_server_reply", got)
	}
	request, msg := lastSent(t, h.sim)
	if request.Number != testController {
		t.Errorf("request sent to %q, want controller", request.Number)
	}
	wantNames := []string{protocol.FieldIMEI, protocol.FieldVoltage, protocol.FieldLocation, protocol.FieldSatellites}
	if got := msg.Names(); len(got) != len(wantNames) {
		t.Fatalf("request fields = %v, want %v", got, wantNames)
	}
	if v, _ := msg.Get(protocol.FieldVoltage); v != "100" {
		t.Errorf("request Voltage = %q, want battery percent", v)
	}

	outcome, err = h.session.Step(ctx, reply(testID, testSecret))
	if err != nil || outcome != OutcomePaired {
		t.Fatalf("Step(reply) = %v, %v; want paired", outcome, err)
	}

	state := h.session.State()
	if !state.Authenticated() || state.Secret != testSecret {
		t.Errorf("State() = %+v, want authenticated with secret", state)
	}
	ack, _ := lastSent(t, h.sim)
	if ack.Text != "AUTH | CODE: hunter2; ID: "+testID {
		t.Errorf("acknowledgement = %q", ack.Text)
	}
	if rec, _ := h.repo.record(); rec != (domain.PairingRecord{Authenticated: true, Secret: testSecret}) {
		t.Errorf("persisted record = %+v", rec)
	}
	if got := h.session.DeviceID(); got != testID {
		t.Errorf("DeviceID() = %q, want %q", got, testID)
	}
	if !h.session.Settled() {
		t.Error("Settled() = false after a clean pairing")
	}
	if got := testutil.ToFloat64(h.reg.AuthPhase); got != float64(domain.PhaseAuthenticated) {
		t.Errorf("auth phase gauge = %v", got)
	}
	if got := testutil.ToFloat64(h.reg.PairingAttempts.WithLabelValues("paired")); got != 1 {
		t.Errorf("paired attempts = %v, want 1", got)
	}
}

func TestPairingSession_WrongID(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, domain.PairingRecord{})

	if _, err := h.session.Step(ctx, nil); err != nil {
		t.Fatalf("Step(nil) error = %v", err)
	}

	outcome, err := h.session.Step(ctx, reply("0000000000", testSecret))
	if err != nil || outcome != OutcomeRejected {
		t.Fatalf("Step() = %v, %v; want rejected", outcome, err)
	}

	sent, _ := lastSent(t, h.sim)
	if sent.Text != "WRONG ID | ID: 0000000000; CODE: hunter2" || sent.Number != testController {
		t.Errorf("rejection = %+v", sent)
	}
	if got := h.session.State(); got != domain.Unauthenticated() {
		t.Errorf("State() = %+v, want unauthenticated", got)
	}
	if _, saves := h.repo.record(); saves != 0 {
		t.Errorf("record saved %d times on mismatch", saves)
	}
	if h.session.DeviceID() != "" {
		t.Error("DeviceID() set while unauthenticated")
	}
}

func TestPairingSession_Restore(t *testing.T) {
	ctx := context.Background()

	t.Run("paired record", func(t *testing.T) {
		h := newHarness(t, domain.PairingRecord{Authenticated: true, Secret: testSecret})

		if got := h.session.State(); got != domain.AuthenticatedWith(testSecret) {
			t.Fatalf("State() = %+v", got)
		}
		if err := h.session.Begin(ctx); err != nil {
			t.Fatalf("Begin() error = %v", err)
		}
		outcome, err := h.session.Step(ctx, reply("0000000000", "other"))
		if err != nil || outcome != OutcomeIgnored {
			t.Errorf("Step() = %v, %v; want ignored", outcome, err)
		}
		if n := len(h.sim.Sent()); n != 0 {
			t.Errorf("restored session sent %d messages", n)
		}
		if h.session.State().Secret != testSecret {
			t.Error("inbound message changed an authenticated session")
		}
	})

	t.Run("keyless record", func(t *testing.T) {
		h := newHarness(t, domain.PairingRecord{Authenticated: true})

		if got := h.session.State().Phase; got != domain.PhaseUnauthenticated {
			t.Fatalf("phase = %v, want unauthenticated", got)
		}
		if !h.session.Keyless() {
			t.Error("Keyless() = false")
		}
		if err := h.session.Begin(ctx); err != nil {
			t.Fatalf("Begin() error = %v", err)
		}
		if _, msg := lastSent(t, h.sim); msg.Kind != protocol.KindDeviceRestart {
			t.Errorf("boot notice kind = %q, want DEVICE RESTART", msg.Kind)
		}
	})
}

func TestPairingSession_NotActionable(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, domain.PairingRecord{})

	inputs := []*protocol.Message{
		protocol.NewMessage(protocol.KindVolt).Set(protocol.FieldVoltage, "3.9"),
		protocol.NewMessage(protocol.KindAuth).Set(protocol.FieldCode, testSecret),
		protocol.NewMessage(protocol.KindAuth).Set(protocol.FieldID, testID),
		reply("", testSecret),
	}
	for _, in := range inputs {
		outcome, err := h.session.Step(ctx, in)
		if !errors.Is(err, domain.ErrNotActionable) || outcome != OutcomeIgnored {
			t.Errorf("Step(%v) = %v, %v; want ignored with ErrNotActionable", in, outcome, err)
		}
		if !domain.IsDomainError(err, "TL-PROT-4001") {
			t.Errorf("error code = %q, want TL-PROT-4001", domain.GetErrorCode(err))
		}
	}
	if n := len(h.sim.Sent()); n != 0 {
		t.Errorf("sent %d messages for non-actionable input", n)
	}
	if got := h.session.State(); got != domain.Unauthenticated() {
		t.Errorf("State() = %+v", got)
	}
}

func TestPairingSession_AckRetried(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, domain.PairingRecord{})

	h.sim.FailSends(transport.ErrSimulated)
	outcome, err := h.session.Step(ctx, reply(testID, testSecret))
	if outcome != OutcomePaired || !errors.Is(err, transport.ErrSimulated) {
		t.Fatalf("Step() = %v, %v; want paired with send error", outcome, err)
	}
	if !domain.Retryable(err) {
		t.Error("ack failure not retryable")
	}
	if !h.session.State().Authenticated() {
		t.Fatal("failed acknowledgement moved the state backwards")
	}
	if rec, _ := h.repo.record(); !rec.Paired() {
		t.Error("record not persisted when the acknowledgement failed")
	}
	if h.session.Settled() {
		t.Error("Settled() = true with an unsent acknowledgement")
	}

	h.sim.FailSends(nil)
	outcome, err = h.session.Step(ctx, nil)
	if err != nil || outcome != OutcomeIgnored {
		t.Fatalf("retry Step() = %v, %v", outcome, err)
	}
	if sent, _ := lastSent(t, h.sim); sent.Text != "AUTH | CODE: hunter2; ID: "+testID {
		t.Errorf("re-sent acknowledgement = %q", sent.Text)
	}
	if !h.session.Settled() {
		t.Error("Settled() = false after retry")
	}

	before := len(h.sim.Sent())
	if _, err := h.session.Step(ctx, nil); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if len(h.sim.Sent()) != before {
		t.Error("acknowledgement sent twice")
	}
}

func TestPairingSession_PersistRetried(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, domain.PairingRecord{})

	h.repo.failWith(errRepo)
	outcome, err := h.session.Step(ctx, reply(testID, testSecret))
	if outcome != OutcomePaired || !errors.Is(err, errRepo) {
		t.Fatalf("Step() = %v, %v; want paired with storage error", outcome, err)
	}
	if !h.session.State().Authenticated() {
		t.Fatal("state not authenticated in memory")
	}

	h.repo.failWith(nil)
	if _, err := h.session.Step(ctx, nil); err != nil {
		t.Fatalf("retry Step() error = %v", err)
	}
	if rec, saves := h.repo.record(); !rec.Paired() || saves != 1 {
		t.Errorf("record = %+v after %d saves", rec, saves)
	}
}

func TestPairingSession_RequestFailure(t *testing.T) {
	h := newHarness(t, domain.PairingRecord{})
	h.sim.FailSends(transport.ErrSimulated)

	if _, err := h.session.Step(context.Background(), nil); err == nil {
		t.Fatal("Step() error = nil, want send error")
	}
	if got := h.session.State().Phase; got != domain.PhaseUnauthenticated {
		t.Errorf("phase = %v, want unauthenticated after failed request", got)
	}
}

func TestPairingSession_RequestWithoutBattery(t *testing.T) {
	h := newHarness(t, domain.PairingRecord{})
	h.sim.FailBattery(transport.ErrSimulated)

	if _, err := h.session.Step(context.Background(), nil); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	_, msg := lastSent(t, h.sim)
	if msg.Has(protocol.FieldVoltage) {
		t.Error("request carries Voltage although the battery read failed")
	}
	if !msg.Has(protocol.FieldIMEI) || !msg.Has(protocol.FieldLocation) {
		t.Errorf("request fields = %v", msg.Names())
	}
}

// TestPairingSession_StateMatrix drives every phase with every kind of
// input and checks the resulting phase and the record invariants.
func TestPairingSession_StateMatrix(t *testing.T) {
	type input struct {
		name string
		msg  *protocol.Message
	}
	inputs := []input{
		{"none", nil},
		{"not actionable", protocol.NewMessage(protocol.KindVolt)},
		{"match", reply(testID, testSecret)},
		{"mismatch", reply("0000000000", testSecret)},
	}

	setups := []struct {
		name  string
		setup func(t *testing.T) *harness
		want  map[string]domain.AuthPhase
	}{
		{
			name:  "unauthenticated",
			setup: func(t *testing.T) *harness { return newHarness(t, domain.PairingRecord{}) },
			want: map[string]domain.AuthPhase{
				"none":           domain.PhasePendingServerReply,
				"not actionable": domain.PhaseUnauthenticated,
				"match":          domain.PhaseAuthenticated,
				"mismatch":       domain.PhaseUnauthenticated,
			},
		},
		{
			name: "pending",
			setup: func(t *testing.T) *harness {
				h := newHarness(t, domain.PairingRecord{})
				if _, err := h.session.Step(context.Background(), nil); err != nil {
					t.Fatalf("Step(nil) error = %v", err)
				}
				return h
			},
			want: map[string]domain.AuthPhase{
				"none":           domain.PhasePendingServerReply,
				"not actionable": domain.PhasePendingServerReply,
				"match":          domain.PhaseAuthenticated,
				"mismatch":       domain.PhaseUnauthenticated,
			},
		},
		{
			name: "authenticated",
			setup: func(t *testing.T) *harness {
				return newHarness(t, domain.PairingRecord{Authenticated: true, Secret: testSecret})
			},
			want: map[string]domain.AuthPhase{
				"none":           domain.PhaseAuthenticated,
				"not actionable": domain.PhaseAuthenticated,
				"match":          domain.PhaseAuthenticated,
				"mismatch":       domain.PhaseAuthenticated,
			},
		},
	}

	for _, s := range setups {
		for _, in := range inputs {
			t.Run(s.name+"/"+in.name, func(t *testing.T) {
				h := s.setup(t)
				if _, err := h.session.Step(context.Background(), in.msg); err != nil {
					t.Fatalf("Step() error = %v", err)
				}

				state := h.session.State()
				if state.Phase != s.want[in.name] {
					t.Errorf("phase = %v, want %v", state.Phase, s.want[in.name])
				}
				if state.Authenticated() != (state.Secret != "") {
					t.Errorf("state %+v: secret present iff authenticated", state)
				}
				rec, _ := h.repo.record()
				if state.Authenticated() && rec.Secret != state.Secret {
					t.Errorf("authenticated with %q but persisted %+v", state.Secret, rec)
				}
			})
		}
	}
}

func TestOutcome_String(t *testing.T) {
	for o, want := range map[Outcome]string{
		OutcomeIgnored:   "ignored",
		OutcomeRequested: "requested",
		OutcomePaired:    "paired",
		OutcomeRejected:  "rejected",
		Outcome(42):      "unknown",
	} {
		if got := o.String(); got != want {
			t.Errorf("Outcome(%d).String() = %q, want %q", int(o), got, want)
		}
	}
}

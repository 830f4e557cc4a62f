package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yndnr/tracklink-go/internal/core/domain"
	"github.com/yndnr/tracklink-go/internal/telemetry/logger"
	"github.com/yndnr/tracklink-go/internal/transport"
	"github.com/yndnr/tracklink-go/pkg/protocol"
)

func newMonitorDeps() (*transport.Simulator, *transport.Outbox, *FixCache) {
	sim := transport.NewSimulator(testSerial)
	outbox := transport.NewOutbox(sim, transport.WithOutboxLogger(logger.Discard()))
	return sim, outbox, NewFixCache(sim, logger.Discard())
}

func testReport() Report {
	return Report{DeviceID: testID, Number: testController}
}

func TestDeltaMonitor(t *testing.T) {
	tests := []struct {
		name     string
		readings []float64
		want     []bool
	}{
		{name: "large drop fires", readings: []float64{90, 40}, want: []bool{false, true}},
		{name: "gradual drop does not fire", readings: []float64{90, 85, 48}, want: []bool{false, false, false}},
		{name: "first reading only primes", readings: []float64{10}, want: []bool{false}},
		{name: "exact drop fires", readings: []float64{80, 40}, want: []bool{false, true}},
		{name: "reference follows every reading", readings: []float64{40, 90, 50}, want: []bool{false, false, true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim, outbox, fixes := newMonitorDeps()
			sim.SetBattery(tt.readings...)

			// threshold 20, multiplier 2
			m := NewDeltaMonitor(DeltaConfig{Report: testReport(), Drop: 40, Interval: time.Hour},
				sim, fixes, outbox, logger.Discard())

			for i, want := range tt.want {
				fired, err := m.Check(context.Background())
				if err != nil {
					t.Fatalf("tick %d: Check() error = %v", i+1, err)
				}
				if fired != want {
					t.Errorf("tick %d: fired = %v, want %v", i+1, fired, want)
				}
			}
		})
	}
}

func TestDeltaMonitor_Report(t *testing.T) {
	sim, outbox, fixes := newMonitorDeps()
	sim.SetBattery(90, 40)
	sim.SetFix(domain.Fix{
		Location:   protocol.Pair{A: 48.85, B: 2.35},
		Satellites: protocol.Pair{A: 7, B: 12},
		Valid:      true,
	})

	m := NewDeltaMonitor(DeltaConfig{Report: testReport(), Drop: 40, Interval: time.Hour},
		sim, fixes, outbox, logger.Discard())
	for i := 0; i < 2; i++ {
		if _, err := m.Check(context.Background()); err != nil {
			t.Fatalf("Check() error = %v", err)
		}
	}

	sent, _ := lastSent(t, sim)
	want := "VOLT | ID: " + testID + "; Voltage: 40; Location: (48.85,2.35); Satellites: (7,12)"
	if sent.Text != want {
		t.Errorf("report = %q, want %q", sent.Text, want)
	}
}

func TestThresholdMonitor_Episodes(t *testing.T) {
	sim, outbox, fixes := newMonitorDeps()
	sim.SetBattery(50, 20, 15, 22, 26, 10)

	m := NewThresholdMonitor(ThresholdConfig{
		Report:    testReport(),
		Threshold: 20,
		ResumeAt:  25,
		Interval:  time.Hour,
	}, sim, fixes, outbox, logger.Discard())

	want := []BatteryEvent{0, BatteryCritical, 0, 0, BatteryRecovered, BatteryCritical}
	for i, w := range want {
		ev, err := m.Check(context.Background())
		if err != nil {
			t.Fatalf("tick %d: Check() error = %v", i+1, err)
		}
		if ev != w {
			t.Errorf("tick %d: event = %v, want %v", i+1, ev, w)
		}
	}

	// 20, 15 and 10 are at or below the threshold.
	if low := countKind(sim, protocol.KindLowBattery); low != 3 {
		t.Errorf("LOW BAT sent %d times, want one per low reading (3)", low)
	}
}

func TestThresholdMonitor_ReportsEveryLowTick(t *testing.T) {
	sim, outbox, fixes := newMonitorDeps()
	sim.SetBattery(15, 15, 15)

	m := NewThresholdMonitor(ThresholdConfig{
		Report:    testReport(),
		Threshold: 20,
		ResumeAt:  25,
		Interval:  time.Hour,
	}, sim, fixes, outbox, logger.Discard())

	want := []BatteryEvent{BatteryCritical, 0, 0}
	for i, w := range want {
		ev, err := m.Check(context.Background())
		if err != nil {
			t.Fatalf("tick %d: Check() error = %v", i+1, err)
		}
		if ev != w {
			t.Errorf("tick %d: event = %v, want %v", i+1, ev, w)
		}
		if got := countKind(sim, protocol.KindLowBattery); got != i+1 {
			t.Errorf("tick %d: LOW BAT sent %d times, want %d", i+1, got, i+1)
		}
	}
}

func countKind(sim *transport.Simulator, kind string) int {
	n := 0
	for _, k := range sim.SentKinds() {
		if k == kind {
			n++
		}
	}
	return n
}

func TestThresholdMonitor_RunSignals(t *testing.T) {
	sim, outbox, fixes := newMonitorDeps()
	sim.SetBattery(10)

	m := NewThresholdMonitor(ThresholdConfig{
		Report:    testReport(),
		Threshold: 20,
		ResumeAt:  25,
		Interval:  time.Hour,
	}, sim, fixes, outbox, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	select {
	case ev := <-m.Events():
		if ev != BatteryCritical {
			t.Errorf("event = %v, want critical", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no critical event")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}

	_, msg := lastSent(t, sim)
	if msg.Kind != protocol.KindLowBattery {
		t.Errorf("last sent kind = %q, want LOW BAT", msg.Kind)
	}
}

func TestThresholdMonitor_ReadFailure(t *testing.T) {
	sim, outbox, fixes := newMonitorDeps()
	sim.FailBattery(transport.ErrSimulated)

	m := NewThresholdMonitor(ThresholdConfig{Report: testReport(), Threshold: 20, Interval: time.Hour},
		sim, fixes, outbox, logger.Discard())

	ev, err := m.Check(context.Background())
	if ev != 0 || !errors.Is(err, transport.ErrSimulated) {
		t.Errorf("Check() = %v, %v", ev, err)
	}
}

func TestBeaconMonitor(t *testing.T) {
	sim, outbox, fixes := newMonitorDeps()
	sim.SetBattery(73.456)
	sim.SetFix(domain.Fix{
		Location:   protocol.Pair{A: 1.5, B: -2},
		Satellites: protocol.Pair{A: 5, B: 9},
		Time:       time.Unix(1700000000, 0),
		Valid:      true,
	})

	m := NewBeaconMonitor(BeaconConfig{Report: testReport(), Interval: time.Minute},
		sim, fixes, outbox, logger.Discard())
	if !m.Enabled() {
		t.Fatal("Enabled() = false")
	}
	if err := m.Beacon(context.Background()); err != nil {
		t.Fatalf("Beacon() error = %v", err)
	}

	sent, _ := lastSent(t, sim)
	want := "INIT | ID: " + testID + "; Voltage: 73.46; Location: (1.5,-2); Satellites: (5,9); Time: 1700000000"
	if sent.Text != want {
		t.Errorf("beacon = %q, want %q", sent.Text, want)
	}
}

func TestBeaconMonitor_Disabled(t *testing.T) {
	sim, outbox, fixes := newMonitorDeps()
	m := NewBeaconMonitor(BeaconConfig{Report: testReport()}, sim, fixes, outbox, logger.Discard())

	if m.Enabled() {
		t.Error("Enabled() = true with zero interval")
	}
	if err := m.Run(context.Background()); err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

func TestFixCache(t *testing.T) {
	valid := domain.Fix{Location: protocol.Pair{A: 1, B: 2}, Valid: true}
	loc := &scriptedLocator{
		fixes: []domain.Fix{{}, valid, {Location: protocol.Pair{A: 9, B: 9}}, {}},
		errs:  []error{nil, nil, nil, errors.New("no receiver")},
	}
	c := NewFixCache(loc, logger.Discard())
	ctx := context.Background()

	if got := c.Get(ctx); got.Valid {
		t.Errorf("Get() = %+v before any valid fix", got)
	}
	if got := c.Get(ctx); got != valid {
		t.Errorf("Get() = %+v, want the valid fix", got)
	}
	if got := c.Get(ctx); got != valid {
		t.Errorf("Get() = %+v, want last valid fix for an invalid read", got)
	}
	if got := c.Get(ctx); got != valid {
		t.Errorf("Get() = %+v, want last valid fix for a failed read", got)
	}
	if c.Last() != valid {
		t.Error("Last() lost the valid fix")
	}
}

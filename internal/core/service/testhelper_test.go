package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/yndnr/tracklink-go/internal/core/domain"
	"github.com/yndnr/tracklink-go/internal/telemetry/logger"
	"github.com/yndnr/tracklink-go/internal/telemetry/metric"
	"github.com/yndnr/tracklink-go/internal/transport"
	"github.com/yndnr/tracklink-go/pkg/protocol"
)

const (
	testSerial     = "IMEI123456789"
	testSecret     = "hunter2"
	testID         = "991462421015"
	testUser       = "+33600000001"
	testController = "+33600000002"
)

var errRepo = errors.New("disk full")

// memRepo is an in-memory PairingRepository.
type memRepo struct {
	mu    sync.Mutex
	rec   domain.PairingRecord
	saves int
	err   error
}

func (r *memRepo) Load() (domain.PairingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rec, r.err
}

func (r *memRepo) Save(rec domain.PairingRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.rec = rec
	r.saves++
	return nil
}

func (r *memRepo) failWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *memRepo) record() (domain.PairingRecord, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rec, r.saves
}

type harness struct {
	sim     *transport.Simulator
	outbox  *transport.Outbox
	repo    *memRepo
	reg     *metric.Registry
	session *PairingSession
}

func newHarness(t *testing.T, rec domain.PairingRecord) *harness {
	t.Helper()
	h := &harness{
		sim:  transport.NewSimulator(testSerial),
		repo: &memRepo{rec: rec},
		reg:  metric.NewRegistry(),
	}
	h.outbox = transport.NewOutbox(h.sim, transport.WithOutboxLogger(logger.Discard()))
	h.session = NewPairingSession(
		PairingConfig{Serial: testSerial, Controller: testController, Notify: testUser},
		rec, h.outbox, h.repo, h.sim,
		WithPairingLogger(logger.Discard()),
		WithPairingMetrics(h.reg),
	)
	return h
}

func reply(id, code string) *protocol.Message {
	return protocol.NewMessage(protocol.KindAuth).
		Set(protocol.FieldID, id).
		Set(protocol.FieldCode, code)
}

func lastSent(t *testing.T, sim *transport.Simulator) (transport.SmsSent, protocol.Message) {
	t.Helper()
	sent := sim.Sent()
	if len(sent) == 0 {
		t.Fatal("nothing sent")
	}
	last := sent[len(sent)-1]
	return last, protocol.Decode(last.Text)
}

// scriptedLocator returns the queued results in order, then repeats the
// last one.
type scriptedLocator struct {
	mu    sync.Mutex
	fixes []domain.Fix
	errs  []error
}

func (l *scriptedLocator) Fix(context.Context) (domain.Fix, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := l.fixes[0], l.errs[0]
	if len(l.fixes) > 1 {
		l.fixes, l.errs = l.fixes[1:], l.errs[1:]
	}
	return f, err
}

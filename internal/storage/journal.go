package storage

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/tracklink-go/internal/core/domain"
	"github.com/yndnr/tracklink-go/internal/telemetry/logger"
)

// journalPrefix namespaces journal keys inside the KV engine.
var journalPrefix = []byte("sent/")

// DefaultJournalLimit bounds the number of entries kept.
const DefaultJournalLimit = 1000

// Journal is an append-only log of outbound SMS attempts.
//
// Keys are "sent/" followed by a monotonic ULID, so a prefix scan yields
// entries in send order. Once more than limit entries exist the oldest are
// removed.
type Journal struct {
	kv    KVEngine
	limit int

	mu      sync.Mutex
	entropy io.Reader
	count   int
}

// NewJournal creates a journal over kv keeping at most limit entries
// (DefaultJournalLimit when limit <= 0).
func NewJournal(ctx context.Context, kv KVEngine, limit int) (*Journal, error) {
	if limit <= 0 {
		limit = DefaultJournalLimit
	}
	j := &Journal{
		kv:      kv,
		limit:   limit,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}

	err := kv.Scan(ctx, journalPrefix, func(_, _ []byte) bool {
		j.count++
		return true
	})
	if err != nil {
		return nil, domain.ErrStorage.WithDetails("count journal entries").WithCause(err)
	}
	return j, nil
}

// OpenJournal opens a Badger engine for cfg and a journal over it. The
// caller owns the returned engine; on error it has already been closed.
func OpenJournal(ctx context.Context, cfg BadgerConfig, limit int, log logger.Logger) (*Journal, *BadgerEngine, error) {
	if log == nil {
		log = logger.Default()
	}
	kv, err := NewBadgerEngine(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	j, err := NewJournal(ctx, kv, limit)
	if err != nil {
		if cerr := kv.Close(); cerr != nil {
			log.Warn("close journal engine", "error", cerr)
		}
		return nil, nil, err
	}
	return j, kv, nil
}

// Append stores msg, assigning its ID, and trims the oldest entries.
func (j *Journal) Append(ctx context.Context, msg domain.SentMessage) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if msg.At.IsZero() {
		msg.At = time.Now()
	}
	id, err := ulid.New(ulid.Timestamp(msg.At), j.entropy)
	if err != nil {
		return domain.ErrStorage.WithDetails("generate journal id").WithCause(err)
	}
	msg.ID = id.String()

	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("journal: marshal entry: %w", err)
	}
	if err := j.kv.Set(ctx, journalKey(msg.ID), value); err != nil {
		return domain.ErrStorage.WithDetails("append journal entry").WithCause(err)
	}
	j.count++

	if j.count > j.limit {
		return j.trim(ctx, j.count-j.limit)
	}
	return nil
}

// List returns up to limit entries, oldest first. When more exist, the
// newest limit are returned. limit <= 0 returns everything.
func (j *Journal) List(ctx context.Context, limit int) ([]domain.SentMessage, error) {
	var (
		out     []domain.SentMessage
		scanErr error
	)
	err := j.kv.Scan(ctx, journalPrefix, func(_, value []byte) bool {
		var m domain.SentMessage
		if err := json.Unmarshal(value, &m); err != nil {
			scanErr = domain.ErrCorruptRecord.WithDetails("journal entry").WithCause(err)
			return false
		}
		out = append(out, m)
		return true
	})
	if err != nil {
		return nil, domain.ErrStorage.WithDetails("list journal").WithCause(err)
	}
	if scanErr != nil {
		return nil, scanErr
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// Len returns the number of entries.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.count
}

// trim removes the n oldest entries. Must be called with mu held.
func (j *Journal) trim(ctx context.Context, n int) error {
	keys := make([][]byte, 0, n)
	err := j.kv.Scan(ctx, journalPrefix, func(key, _ []byte) bool {
		keys = append(keys, key)
		return len(keys) < n
	})
	if err != nil {
		return domain.ErrStorage.WithDetails("scan journal for trim").WithCause(err)
	}
	if err := j.kv.Delete(ctx, keys...); err != nil {
		return domain.ErrStorage.WithDetails("trim journal").WithCause(err)
	}
	j.count -= len(keys)
	return nil
}

func journalKey(id string) []byte {
	key := make([]byte, 0, len(journalPrefix)+len(id))
	key = append(key, journalPrefix...)
	return append(key, id...)
}

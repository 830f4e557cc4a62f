package storage

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrKeyNotFound = errors.New("storage: key not found")
	ErrClosed      = errors.New("storage: kv engine closed")
)

// KVEngine is the embedded key-value store behind the journal.
//
// Implementations must be safe for concurrent use and durable across
// restarts.
type KVEngine interface {
	// Get retrieves a value by key.
	// Returns ErrKeyNotFound if key doesn't exist.
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Set stores a key-value pair.
	Set(ctx context.Context, key, value []byte) error

	// Delete removes keys in one transaction.
	Delete(ctx context.Context, keys ...[]byte) error

	// Scan iterates over keys with a given prefix in key order.
	// Callback returns false to stop iteration.
	Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) bool) error

	// GC reclaims space from stale values. Returns the number of value
	// log files rewritten.
	GC(ctx context.Context) (int, error)

	// Stats returns storage statistics.
	Stats(ctx context.Context) (*KVStats, error)

	// Close gracefully shuts down the KV engine.
	Close() error
}

// KVStats contains storage engine statistics.
type KVStats struct {
	// TotalSize is the total disk usage in bytes.
	TotalSize uint64

	// LSMSize is the LSM tree size.
	LSMSize uint64

	// ValueLogSize is the value log size.
	ValueLogSize uint64

	// LastGCTime is the last GC run timestamp (Unix milliseconds).
	LastGCTime int64

	// GCRewrites is the number of value log rewrites since start.
	GCRewrites uint64
}

// BadgerConfig contains Badger tuning parameters.
//
// Defaults are sized for a small device: the journal holds at most a few
// thousand short entries.
type BadgerConfig struct {
	// Dir is the storage directory.
	Dir string

	// GCInterval is the interval between automatic GC runs.
	// Default: 30m
	GCInterval string

	// GCThreshold is the discard ratio at which a value log file is
	// rewritten (0.0-1.0).
	// Default: 0.5
	GCThreshold float64

	// CacheSize is the block cache size in bytes.
	// Default: 4MB
	CacheSize int64

	// ValueLogFileSize is the max value log file size in bytes.
	// Default: 16MB
	ValueLogFileSize int64

	// MemTableSize is the size of each memtable in bytes.
	// Default: 4MB
	MemTableSize int64

	// SyncWrites enables fsync after each write. A device may lose power
	// at any moment, so this defaults to true.
	SyncWrites bool

	// ReadOnly opens the database without writing to it and disables GC.
	// Used by the CLI to inspect the journal.
	ReadOnly bool
}

// DefaultBadgerConfig returns the default Badger configuration for dir.
func DefaultBadgerConfig(dir string) BadgerConfig {
	return BadgerConfig{
		Dir:              dir,
		GCInterval:       "30m",
		GCThreshold:      0.5,
		CacheSize:        4 << 20,
		ValueLogFileSize: 16 << 20,
		MemTableSize:     4 << 20,
		SyncWrites:       true,
	}
}

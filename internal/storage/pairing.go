package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/yndnr/tracklink-go/internal/core/domain"
)

// Keys of the pairing fields in the state document.
const (
	KeyAuthenticated = "AUTHENTICATION"
	KeyPassword      = "USER_PASSWORD"
)

// PairingStore persists the pairing record in a JSON document.
//
// The document also carries deployment parameters (phone numbers,
// thresholds, pin assignments). Save rewrites only the two pairing keys;
// every other key keeps its value.
type PairingStore struct {
	path string
	mu   sync.Mutex
}

// NewPairingStore creates a store for the document at path.
func NewPairingStore(path string) *PairingStore {
	return &PairingStore{path: path}
}

// Path returns the document path.
func (s *PairingStore) Path() string {
	return s.path
}

// Load reads the pairing record. A missing document is an unpaired device,
// not an error.
func (s *PairingStore) Load() (domain.PairingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return domain.PairingRecord{}, err
	}
	return decodeRecord(doc)
}

// Save writes rec, preserving the rest of the document.
func (s *PairingStore) Save(rec domain.PairingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}

	auth, _ := json.Marshal(rec.Authenticated)
	secret, _ := json.Marshal(rec.Secret)
	doc[KeyAuthenticated] = auth
	doc[KeyPassword] = secret

	return s.write(doc)
}

// Reset clears the pairing so the device pairs again on next boot.
func (s *PairingStore) Reset() error {
	return s.Save(domain.PairingRecord{})
}

// Document returns every key of the document except the pairing secret.
func (s *PairingStore) Document() (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(doc))
	for k, raw := range doc {
		if k == KeyPassword {
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, domain.ErrCorruptRecord.WithDetails(k).WithCause(err)
		}
		out[k] = v
	}
	return out, nil
}

func (s *PairingStore) read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]json.RawMessage), nil
	}
	if err != nil {
		return nil, domain.ErrStorage.WithDetails("read " + s.path).WithCause(err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return make(map[string]json.RawMessage), nil
	}

	doc := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, domain.ErrCorruptRecord.WithDetails(s.path).WithCause(err)
	}
	return doc, nil
}

// write replaces the document atomically: temp file, fsync, rename.
func (s *PairingStore) write(doc map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("pairing: marshal document: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.ErrStorage.WithDetails("create " + dir).WithCause(err)
	}
	tmp, err := os.CreateTemp(dir, ".pairing-*.tmp")
	if err != nil {
		return domain.ErrStorage.WithDetails("create temp file").WithCause(err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return domain.ErrStorage.WithDetails("write temp file").WithCause(err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return domain.ErrStorage.WithDetails("sync temp file").WithCause(err)
	}
	if err := tmp.Close(); err != nil {
		return domain.ErrStorage.WithDetails("close temp file").WithCause(err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return domain.ErrStorage.WithDetails("replace " + s.path).WithCause(err)
	}
	return nil
}

func decodeRecord(doc map[string]json.RawMessage) (domain.PairingRecord, error) {
	var rec domain.PairingRecord

	if raw, ok := doc[KeyAuthenticated]; ok {
		auth, err := parseFlag(raw)
		if err != nil {
			return domain.PairingRecord{}, domain.ErrCorruptRecord.WithDetails(KeyAuthenticated).WithCause(err)
		}
		rec.Authenticated = auth
	}

	if raw, ok := doc[KeyPassword]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, &rec.Secret); err != nil {
			return domain.PairingRecord{}, domain.ErrCorruptRecord.WithDetails(KeyPassword).WithCause(err)
		}
	}
	return rec, nil
}

// parseFlag accepts true/false, 0/1 and their string forms.
func parseFlag(raw json.RawMessage) (bool, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, err
	}
	switch t := v.(type) {
	case nil:
		return false, nil
	case bool:
		return t, nil
	case float64:
		switch t {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
	case string:
		return strconv.ParseBool(strings.TrimSpace(t))
	}
	return false, fmt.Errorf("unsupported flag value %s", raw)
}

// Package blobstore implements the durable collection persistence used by
// the question and exam book stores: whole-collection JSON blobs wrapped in
// a versioned envelope, with a backup slot snapshot before every overwrite
// and backup recovery on a corrupt primary.
package blobstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// EnvelopeVersion is the current on-disk envelope format version.
const EnvelopeVersion = 2

// Envelope wraps a persisted collection. Legacy blobs written before the
// envelope was introduced are bare JSON arrays and are still accepted on
// load.
type Envelope struct {
	Version   int             `json:"version"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// StorageError reports a persistence failure. Load failures carry
// Recovered=true when the backup slot supplied usable data.
type StorageError struct {
	Op        string // "save" or "load"
	Namespace string
	Err       error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("blobstore %s failed for %s: %v", e.Op, e.Namespace, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Store persists one collection under a namespace. It owns three keys:
// the primary blob, the backup blob, and a version marker.
type Store struct {
	kv        KV
	namespace string
	logger    *slog.Logger
}

func NewStore(kv KV, namespace string, logger *slog.Logger) *Store {
	return &Store{kv: kv, namespace: namespace, logger: logger}
}

func (s *Store) primaryKey() string { return s.namespace }
func (s *Store) backupKey() string  { return s.namespace + ":backup" }
func (s *Store) versionKey() string { return s.namespace + ":version" }

// Save persists the full collection. The previous primary blob is
// snapshotted into the backup slot before it is overwritten. If the write
// fails, auxiliary keys are purged once and the write retried exactly once
// before the failure is reported.
func (s *Store) Save(collection interface{}) error {
	data, err := json.Marshal(collection)
	if err != nil {
		return &StorageError{Op: "save", Namespace: s.namespace, Err: err}
	}
	blob, err := json.Marshal(Envelope{
		Version:   EnvelopeVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
	if err != nil {
		return &StorageError{Op: "save", Namespace: s.namespace, Err: err}
	}

	// Snapshot the current primary into the backup slot. A failed snapshot
	// is logged but does not block the save.
	if current, ok, err := s.kv.Get(s.primaryKey()); err == nil && ok {
		if err := s.kv.Set(s.backupKey(), current); err != nil {
			s.logger.Warn("failed to snapshot backup blob", "namespace", s.namespace, "error", err)
		}
	}

	if err := s.kv.Set(s.primaryKey(), blob); err != nil {
		// Out of space or similar: purge auxiliary keys once and retry once.
		s.logger.Warn("primary blob write failed, purging auxiliary keys and retrying",
			"namespace", s.namespace, "error", err)
		_ = s.kv.Delete(s.backupKey())
		_ = s.kv.Delete(s.versionKey())
		if err := s.kv.Set(s.primaryKey(), blob); err != nil {
			return &StorageError{Op: "save", Namespace: s.namespace, Err: err}
		}
	}

	if err := s.kv.Set(s.versionKey(), []byte(fmt.Sprintf("%d", EnvelopeVersion))); err != nil {
		s.logger.Warn("failed to write version marker", "namespace", s.namespace, "error", err)
	}
	return nil
}

// Load reads the collection into dest. It accepts both the versioned
// envelope and the legacy bare-array form. A corrupt primary falls back to
// the backup slot; if both are unusable, dest is left untouched (callers
// start from an empty collection) and a StorageError is returned so the
// caller can decide whether to seed defaults. The returned bool reports
// whether the backup slot was used.
func (s *Store) Load(dest interface{}) (bool, error) {
	blob, ok, err := s.kv.Get(s.primaryKey())
	if err == nil && !ok {
		// Nothing persisted yet.
		return false, nil
	}
	if err == nil {
		if uerr := s.unwrap(blob, dest); uerr == nil {
			return false, nil
		} else {
			err = uerr
		}
	}

	s.logger.Warn("primary blob unusable, falling back to backup",
		"namespace", s.namespace, "error", err)

	backup, ok, berr := s.kv.Get(s.backupKey())
	if berr == nil && ok {
		if uerr := s.unwrap(backup, dest); uerr == nil {
			return true, nil
		} else {
			berr = uerr
		}
	}
	if berr == nil && !ok {
		berr = fmt.Errorf("backup slot empty")
	}

	return false, &StorageError{
		Op:        "load",
		Namespace: s.namespace,
		Err:       fmt.Errorf("primary: %v; backup: %v", err, berr),
	}
}

// unwrap decodes either envelope form into dest.
func (s *Store) unwrap(blob []byte, dest interface{}) error {
	var env Envelope
	if err := json.Unmarshal(blob, &env); err == nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, dest)
	}
	// Legacy form: the blob is the collection itself.
	return json.Unmarshal(blob, dest)
}

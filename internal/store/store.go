package store

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

var (
	// Bucket names
	runsBucket   = []byte("runs")
	valuesBucket = []byte("values")
)

// ErrRunNotFound is returned when a run ID is not in the store.
var ErrRunNotFound = errors.New("store: run not found")

// Run describes one batch of generated fixtures.
type Run struct {
	ID        string    `json:"id"`
	Schema    string    `json:"schema"` // label of the source schema, usually its file name
	Seed      *uint64   `json:"seed,omitempty"`
	Count     int       `json:"count"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists generated fixture batches in a bbolt database.
type Store struct {
	db   *bbolt.DB
	path string
}

// Open opens (or creates) the database at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{runsBucket, valuesBucket} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}
	return &Store{db: db, path: dbPath}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// SaveRun stores values under a new run. Missing ID and CreatedAt are filled
// in; the stored Run is returned.
func (s *Store) SaveRun(run Run, values []any) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	run.Count = len(values)
	meta, err := json.Marshal(run)
	if err != nil {
		return Run{}, fmt.Errorf("encode run: %w", err)
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(runsBucket).Put([]byte(run.ID), meta); err != nil {
			return err
		}
		vb, err := tx.Bucket(valuesBucket).CreateBucketIfNotExists([]byte(run.ID))
		if err != nil {
			return err
		}
		for i, v := range values {
			encoded, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("encode value %d: %w", i, err)
			}
			if err := vb.Put(indexKey(i), encoded); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// LoadRun returns a run and its values in generation order. Numbers decode as
// json.Number.
func (s *Store) LoadRun(id string) (Run, []any, error) {
	var (
		run    Run
		values []any
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(runsBucket).Get([]byte(id))
		if meta == nil {
			return ErrRunNotFound
		}
		if err := json.Unmarshal(meta, &run); err != nil {
			return fmt.Errorf("decode run %s: %w", id, err)
		}
		vb := tx.Bucket(valuesBucket).Bucket([]byte(id))
		if vb == nil {
			return nil
		}
		return vb.ForEach(func(k, v []byte) error {
			dec := json.NewDecoder(bytes.NewReader(v))
			dec.UseNumber()
			var val any
			if err := dec.Decode(&val); err != nil {
				return fmt.Errorf("decode value %d of run %s: %w", binary.BigEndian.Uint64(k), id, err)
			}
			values = append(values, val)
			return nil
		})
	})
	if err != nil {
		return Run{}, nil, err
	}
	return run, values, nil
}

// ListRuns returns all runs, oldest first.
func (s *Store) ListRuns() ([]Run, error) {
	var runs []Run
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(runsBucket).ForEach(func(k, v []byte) error {
			var run Run
			if err := json.Unmarshal(v, &run); err != nil {
				log.Printf("[STORE] Warning: Failed to decode run %s: %v", k, err)
				return nil // Skip corrupted runs
			}
			runs = append(runs, run)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].CreatedAt.Before(runs[j].CreatedAt) })
	return runs, nil
}

// DeleteRun removes a run and its values.
func (s *Store) DeleteRun(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		rb := tx.Bucket(runsBucket)
		if rb.Get([]byte(id)) == nil {
			return ErrRunNotFound
		}
		if err := rb.Delete([]byte(id)); err != nil {
			return err
		}
		err := tx.Bucket(valuesBucket).DeleteBucket([]byte(id))
		if errors.Is(err, bbolt.ErrBucketNotFound) {
			return nil // Idempotent
		}
		return err
	})
}

// indexKey encodes i big-endian so cursor order matches generation order.
func indexKey(i int) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(i))
	return k
}

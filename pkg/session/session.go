// pkg/session/session.go
// Incremental restore sessions: raw payloads accreted across several
// restore invocations, so a stack of sheets can be scanned a few pages
// at a time. Payloads are stored keyed by content hash, making re-adds
// idempotent.
package session

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
	bolt "go.etcd.io/bbolt"
)

const payloadBucket = "payloads"

// Store is a bbolt-backed bag of raw payload bytes.
type Store struct {
	db      *bolt.DB
	batcher *Batcher
}

// Open opens (creating if needed) the session file at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o644, nil)
	if err != nil {
		return nil, fmt.Errorf("session: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(payloadBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("session: init %s: %w", path, err)
	}
	return &Store{db: db, batcher: NewBatcher(db, payloadBucket)}, nil
}

// Add records one raw payload. Duplicate content hashes to the same key
// and overwrites itself.
func (s *Store) Add(raw []byte) {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], xxhash.Sum64(raw))
	val := make([]byte, len(raw))
	copy(val, raw)
	s.batcher.Put(key[:], val)
}

// Each calls fn for every stored payload.
func (s *Store) Each(fn func(raw []byte) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(payloadBucket)).ForEach(func(_, v []byte) error {
			return fn(v)
		})
	})
}

// Count returns the number of stored payloads.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket([]byte(payloadBucket)).Stats().KeyN
		return nil
	})
	return n, err
}

// Close flushes pending writes and closes the file.
func (s *Store) Close() error {
	s.batcher.Close()
	return s.db.Close()
}

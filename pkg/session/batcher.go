// pkg/session/batcher.go
package session

import (
	"time"

	bolt "go.etcd.io/bbolt"
)

type kv struct{ k, v []byte }

// Batcher coalesces puts into batched bbolt transactions. A scan of a
// multi-page sheet yields dozens of payloads at once; one transaction
// per payload would thrash the session file.
type Batcher struct {
	db     *bolt.DB
	bucket string
	ch     chan kv
	done   chan struct{}
}

// NewBatcher starts a batcher writing into the named bucket.
func NewBatcher(db *bolt.DB, bucket string) *Batcher {
	b := &Batcher{db: db, bucket: bucket, ch: make(chan kv, 1024), done: make(chan struct{})}
	go b.loop()
	return b
}

// Put queues one write.
func (b *Batcher) Put(k, v []byte) { b.ch <- kv{k, v} }

// Close flushes everything queued and stops the batcher.
func (b *Batcher) Close() {
	close(b.ch)
	<-b.done
}

func (b *Batcher) loop() {
	defer close(b.done)
	buf := make([]kv, 0, 100)
	flush := func() {
		if len(buf) == 0 {
			return
		}
		_ = b.db.Update(func(tx *bolt.Tx) error {
			bk := tx.Bucket([]byte(b.bucket))
			for _, p := range buf {
				bk.Put(p.k, p.v)
			}
			return nil
		})
		buf = buf[:0]
	}
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case p, ok := <-b.ch:
			if !ok {
				flush()
				return
			}
			buf = append(buf, p)
			if len(buf) >= 100 {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

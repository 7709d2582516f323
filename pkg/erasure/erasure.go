// pkg/erasure/erasure.go
package erasure

import (
	"errors"
	"fmt"

	"github.com/klauspost/reedsolomon"
)

// MaxShards caps k+r. klauspost/reedsolomon switches to the GF(2^16)
// codec above 256 shards and tops out at 65536.
const MaxShards = 65536

var (
	// ErrInsufficient is returned when fewer than k distinct shards are
	// presented to Reconstruct. There is no partial recovery.
	ErrInsufficient = errors.New("erasure: insufficient shards")
	// ErrIndexOutOfRange is returned for a shard index >= k+r.
	ErrIndexOutOfRange = errors.New("erasure: shard index out of range")
	// ErrShardSizeMismatch is returned when a presented shard does not
	// match the coder's fixed shard size.
	ErrShardSizeMismatch = errors.New("erasure: shard size mismatch")
)

// Coder wraps a Reed-Solomon encoder over fixed-size shards with 'k'
// data shards and 'r' recovery shards.
type Coder struct {
	rs        reedsolomon.Encoder // nil when r == 0
	k, r      int
	shardSize int
}

// New creates a coder for k data shards, r recovery shards and the given
// shard size in bytes.
func New(k, r, shardSize int) (*Coder, error) {
	if k <= 0 || r < 0 || shardSize <= 0 {
		return nil, fmt.Errorf("erasure: invalid parameters: k=%d, r=%d, shardSize=%d", k, r, shardSize)
	}
	if k+r > MaxShards {
		return nil, fmt.Errorf("erasure: too many shards: k+r=%d, max=%d", k+r, MaxShards)
	}
	c := &Coder{k: k, r: r, shardSize: shardSize}
	if r > 0 {
		rs, err := reedsolomon.New(k, r)
		if err != nil {
			return nil, fmt.Errorf("erasure: create RS encoder: %w", err)
		}
		c.rs = rs
	}
	return c, nil
}

// Encode computes the r recovery shards for the given k data shards.
// The data shards are not modified.
func (c *Coder) Encode(data [][]byte) ([][]byte, error) {
	if len(data) != c.k {
		return nil, fmt.Errorf("erasure: expected %d data shards, got %d", c.k, len(data))
	}
	for i, sh := range data {
		if len(sh) != c.shardSize {
			return nil, fmt.Errorf("%w: shard %d has %d bytes, want %d", ErrShardSizeMismatch, i, len(sh), c.shardSize)
		}
	}
	if c.r == 0 {
		return nil, nil
	}
	shards := make([][]byte, c.k+c.r)
	copy(shards, data)
	for i := c.k; i < c.k+c.r; i++ {
		shards[i] = make([]byte, c.shardSize)
	}
	if err := c.rs.Encode(shards); err != nil {
		return nil, fmt.Errorf("erasure: encode recovery shards: %w", err)
	}
	return shards[c.k:], nil
}

// Reconstruct recovers the k data shards from any k of the k+r total.
// 'present' maps shard index to shard bytes; missing entries are fine as
// long as at least k distinct indices remain.
func (c *Coder) Reconstruct(present map[uint32][]byte) ([][]byte, error) {
	if len(present) < c.k {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficient, len(present), c.k)
	}
	shards := make([][]byte, c.k+c.r)
	for idx, sh := range present {
		if int(idx) >= c.k+c.r {
			return nil, fmt.Errorf("%w: index %d, total %d", ErrIndexOutOfRange, idx, c.k+c.r)
		}
		if len(sh) != c.shardSize {
			return nil, fmt.Errorf("%w: shard %d has %d bytes, want %d", ErrShardSizeMismatch, idx, len(sh), c.shardSize)
		}
		shards[idx] = sh
	}
	if c.rs != nil {
		if err := c.rs.Reconstruct(shards); err != nil {
			return nil, fmt.Errorf("erasure: reconstruct shards: %w", err)
		}
	}
	for i := 0; i < c.k; i++ {
		if shards[i] == nil {
			// only reachable with r == 0 and a data shard missing
			return nil, fmt.Errorf("%w: data shard %d missing", ErrInsufficient, i)
		}
	}
	return shards[:c.k], nil
}

// Join concatenates the k data shards and truncates to blobLen, undoing
// the zero padding applied to the final shard at encode time.
func Join(data [][]byte, blobLen uint64) []byte {
	out := make([]byte, 0, len(data)*len(data[0]))
	for _, sh := range data {
		out = append(out, sh...)
	}
	if uint64(len(out)) > blobLen {
		out = out[:blobLen]
	}
	return out
}

// Split cuts blob into k shards of shardSize bytes, zero-padding the
// final shard. It requires (k-1)*shardSize < len(blob) <= k*shardSize.
func Split(blob []byte, k, shardSize int) ([][]byte, error) {
	if len(blob) > k*shardSize || len(blob) <= (k-1)*shardSize {
		return nil, fmt.Errorf("erasure: blob of %d bytes does not fit k=%d shards of %d bytes", len(blob), k, shardSize)
	}
	shards := make([][]byte, k)
	for i := 0; i < k; i++ {
		sh := make([]byte, shardSize)
		lo := i * shardSize
		if lo < len(blob) {
			copy(sh, blob[lo:min(lo+shardSize, len(blob))])
		}
		shards[i] = sh
	}
	return shards, nil
}

// pkg/plan/plan.go
// Shard planning: given the input size and the page geometry exposed by
// the page sink, decide shard size, data shard count k, recovery shard
// count r, and the payload-to-slot mapping.
package plan

import (
	"errors"
	"fmt"

	"github.com/dattu/paperback/pkg/erasure"
)

// ErrBlobTooLarge is returned when the input cannot fit any practical
// (k, shard_size) combination under the requested geometry.
var ErrBlobTooLarge = errors.New("plan: input too large for requested geometry")

// Framing overhead around one shard: header (4 magic + 1 version +
// 8 document id + 1 kind), 4-byte shard index, 8-byte checksum.
const shardOverhead = 4 + 1 + 8 + 1 + 4 + 8

// Geometry is what the page sink tells the planner about one page: the
// usable grid of large QR cells, plus the small cells reserved for
// metadata duplication.
type Geometry struct {
	LargeCols int // large cells per row
	LargeRows int // large cell rows per page
	SmallCells int // small metadata cells per page

	// LargeCapacity is the number of base58 characters one large cell
	// holds, i.e. the chosen QR version's alphanumeric capacity.
	LargeCapacity int
}

// LargePerPage returns the number of shard slots on one page.
func (g Geometry) LargePerPage() int { return g.LargeCols * g.LargeRows }

// Plan fixes the erasure-coding parameters for one document.
type Plan struct {
	ShardSize int
	K         int
	R         int
	Pages     int
}

// TotalShards returns k+r.
func (p Plan) TotalShards() int { return p.K + p.R }

// Base58Len bounds the base58-encoded length of n raw bytes.
// log58(256) is about 1.366, so 137/100 plus one spare character is a
// safe ceiling for planning against symbol capacity.
func Base58Len(n int) int {
	return n*137/100 + 1
}

// MaxShardSize finds the largest shard size whose framed, base58-expanded
// payload stays within 'capacity' characters, by binary search.
func MaxShardSize(capacity int) int {
	lo, hi := 0, capacity // shard size never exceeds the character budget
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if Base58Len(mid+shardOverhead) <= capacity {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// New computes the plan for a blob of blobLen bytes against the given
// geometry and recovery factor.
func New(blobLen int, geom Geometry, rf RecoveryFactor) (Plan, error) {
	if blobLen <= 0 {
		return Plan{}, fmt.Errorf("plan: nothing to encode")
	}
	if geom.LargePerPage() <= 0 || geom.SmallCells <= 0 {
		return Plan{}, fmt.Errorf("plan: unusable geometry %+v", geom)
	}
	shardSize := MaxShardSize(geom.LargeCapacity)
	if shardSize < 1 {
		return Plan{}, fmt.Errorf("%w: no shard fits a %d-character cell", ErrBlobTooLarge, geom.LargeCapacity)
	}
	k := (blobLen + shardSize - 1) / shardSize
	r := rf.Shards(k, geom.LargePerPage())
	if r < 1 {
		r = 1
	}
	if k+r > erasure.MaxShards {
		return Plan{}, fmt.Errorf("%w: k=%d r=%d exceeds %d shards", ErrBlobTooLarge, k, r, erasure.MaxShards)
	}
	total := k + r
	pages := (total + geom.LargePerPage() - 1) / geom.LargePerPage()
	return Plan{ShardSize: shardSize, K: k, R: r, Pages: pages}, nil
}

// Slot identifies one QR cell on the printed output.
type Slot struct {
	Page  int
	Index int // slot index within the page, row-major
	Small bool
	// Shard is the shard index carried by a large slot; unused for the
	// metadata in small slots.
	Shard uint32
}

// Placements returns the deterministic payload order: page by page, each
// page's small metadata slots first, then its large slots carrying data
// shards before recovery shards in ascending index.
func (p Plan) Placements(geom Geometry) []Slot {
	perPage := geom.LargePerPage()
	slots := make([]Slot, 0, p.Pages*(geom.SmallCells+perPage))
	next := uint32(0)
	for page := 0; page < p.Pages; page++ {
		for s := 0; s < geom.SmallCells; s++ {
			slots = append(slots, Slot{Page: page, Index: s, Small: true})
		}
		for s := 0; s < perPage && int(next) < p.TotalShards(); s++ {
			slots = append(slots, Slot{Page: page, Index: s, Shard: next})
			next++
		}
	}
	return slots
}

// pkg/document/collect.go
package document

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/glycerine/base58"

	"github.com/dattu/paperback/pkg/erasure"
	"github.com/dattu/paperback/pkg/payload"
)

// Document-level decode errors. Per-payload framing errors are never
// surfaced; they are the normal cost of scanning paper.
var (
	// ErrNoMetadata means no metadata payload was recognized at all.
	ErrNoMetadata = errors.New("document: no metadata payload found")
	// ErrInconsistentMetadata means two differing metadata payloads
	// claimed the same document id.
	ErrInconsistentMetadata = errors.New("document: inconsistent metadata")
)

// InsufficientShardsError reports that fewer than k distinct shards
// survived the scan.
type InsufficientShardsError struct {
	Have int
	Need int
}

func (e *InsufficientShardsError) Error() string {
	return fmt.Sprintf("document: insufficient shards: have %d, need %d", e.Have, e.Need)
}

// Diagnostics summarizes what a scan produced, for reporting which
// sheets to find or rescan.
type Diagnostics struct {
	Candidates     int      // strings offered to the collector
	DroppedFraming int      // candidates refused by base58 or framing, plus shards whose size differs from the metadata's
	Documents      int      // distinct document ids seen
	UnrelatedShards int     // shards belonging to documents other than the chosen one
	Conflicts      []uint32 // shard indices dropped because duplicates disagreed
	OutOfRange     int      // shard payloads with index >= k+r
}

// docState accretes one document's payloads.
//
//	Empty -> MetadataKnown (metadata seen) -> Recoverable (>= k shards)
type docState struct {
	meta         *payload.Metadata
	metaSum      uint64 // xxhash of the canonical metadata bytes
	inconsistent bool
	shards       map[uint32][]byte
	conflicted   map[uint32]bool
}

// Collector accretes decoded QR candidates into documents and recovers
// the blob once one of them is ready. The result is deterministic with
// respect to the multiset of candidates, regardless of arrival order.
type Collector struct {
	docs  map[uint64]*docState
	diags Diagnostics
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{docs: make(map[uint64]*docState)}
}

// AddText offers one decoded QR content string. Anything that does not
// parse as a payload is dropped silently; scanners hand us plenty of
// noise and unrelated codes.
func (c *Collector) AddText(s string) {
	c.AddRaw(base58.Decode(s))
}

// CanonicalRaw returns the raw payload bytes behind a QR content string
// when it parses as a valid payload. Callers persisting payloads (the
// restore session) store this form rather than scanner noise.
func CanonicalRaw(s string) ([]byte, bool) {
	raw := base58.Decode(s)
	if _, err := payload.Parse(raw); err != nil {
		return nil, false
	}
	return raw, true
}

// AddRaw offers one candidate payload in raw (pre-base58) form.
func (c *Collector) AddRaw(raw []byte) {
	c.diags.Candidates++
	p, err := payload.Parse(raw)
	if err != nil {
		c.diags.DroppedFraming++
		return
	}
	st := c.docs[p.DocID()]
	if st == nil {
		st = &docState{shards: make(map[uint32][]byte), conflicted: make(map[uint32]bool)}
		c.docs[p.DocID()] = st
	}
	switch v := p.(type) {
	case *payload.Metadata:
		canonical, _ := v.Marshal() // identical copies re-marshal identically
		sum := xxhash.Sum64(canonical)
		switch {
		case st.meta == nil:
			st.meta, st.metaSum = v, sum
		case st.metaSum != sum:
			st.inconsistent = true
		}
	case *payload.Shard:
		if st.conflicted[v.Index] {
			return
		}
		prev, ok := st.shards[v.Index]
		switch {
		case !ok:
			st.shards[v.Index] = v.Data
		case !bytes.Equal(prev, v.Data):
			// Same index, different bytes: drop both and remember the
			// index so the user can be told which sheet to rescan.
			delete(st.shards, v.Index)
			st.conflicted[v.Index] = true
			c.diags.Conflicts = append(c.diags.Conflicts, v.Index)
		}
	}
}

// Diagnostics returns the running scan summary.
func (c *Collector) Diagnostics() Diagnostics {
	d := c.diags
	d.Documents = len(c.docs)
	sort.Slice(d.Conflicts, func(i, j int) bool { return d.Conflicts[i] < d.Conflicts[j] })
	return d
}

// Recovered is the outcome of a successful decode.
type Recovered struct {
	Blob       []byte
	DocumentID uint64
	Meta       *payload.Metadata
	// ShardsUsed is the number of distinct shard indices available when
	// the coder ran.
	ShardsUsed int
	Diags      Diagnostics
}

// target picks the document with the most shards; ties break toward the
// smaller document id so the choice is order-independent.
func (c *Collector) target() (uint64, *docState) {
	var bestID uint64
	var best *docState
	for id, st := range c.docs {
		if best == nil || len(st.shards) > len(best.shards) ||
			(len(st.shards) == len(best.shards) && id < bestID) {
			bestID, best = id, st
		}
	}
	return bestID, best
}

// Result reconstructs the blob from the accreted payloads, or explains
// why it cannot.
func (c *Collector) Result() (*Recovered, error) {
	id, st := c.target()
	if st == nil || st.meta == nil {
		// Either nothing parsed, or shards arrived without any metadata.
		return nil, ErrNoMetadata
	}
	if st.inconsistent {
		return nil, fmt.Errorf("%w: document %016x", ErrInconsistentMetadata, id)
	}
	meta := st.meta

	diags := c.Diagnostics()
	for did, other := range c.docs {
		if did != id {
			diags.UnrelatedShards += len(other.shards)
		}
	}

	// Validate shard indices and sizes now that metadata pairs them.
	present := make(map[uint32][]byte, len(st.shards))
	for idx, data := range st.shards {
		if idx >= meta.TotalShards() {
			diags.OutOfRange++
			continue
		}
		if uint32(len(data)) != meta.ShardSize {
			diags.DroppedFraming++
			continue
		}
		present[idx] = data
	}
	if len(present) < int(meta.K) {
		return nil, &InsufficientShardsError{Have: len(present), Need: int(meta.K)}
	}

	coder, err := erasure.New(int(meta.K), int(meta.R), int(meta.ShardSize))
	if err != nil {
		return nil, err
	}
	data, err := coder.Reconstruct(present)
	if err != nil {
		// Unreachable if the gating above holds; fatal if it happens.
		return nil, err
	}
	return &Recovered{
		Blob:       erasure.Join(data, meta.BlobLen),
		DocumentID: id,
		Meta:       meta,
		ShardsUsed: len(present),
		Diags:      diags,
	}, nil
}

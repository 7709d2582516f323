// pkg/document/encode.go
package document

import (
	"fmt"

	"github.com/dattu/paperback/pkg/erasure"
	"github.com/dattu/paperback/pkg/payload"
	"github.com/dattu/paperback/pkg/plan"
)

// EncodeOptions parameterize one encode invocation.
type EncodeOptions struct {
	// DocumentID is the 64-bit document identity; zero means draw a
	// fresh random one. Fixing it (together with Descriptor) makes the
	// whole output byte stream deterministic.
	DocumentID uint64
	// Descriptor is the free-form build info stored in the metadata
	// payload. It is never consulted on restore.
	Descriptor string
	// Recovery controls the recovery shard count; zero value (which is
	// also what "0%" parses to) applies the 25% default.
	Recovery plan.RecoveryFactor
}

// Encode turns blob into one document: it plans the shard layout, runs
// the erasure coder, frames every payload and hands the base58 symbols
// to the encoder and sink in deterministic order. It returns the plan
// actually used.
func Encode(blob []byte, enc QrEncoder, sink PageSink, opts EncodeOptions) (plan.Plan, error) {
	geom := sink.Geometry()
	rf := opts.Recovery
	if rf == (plan.RecoveryFactor{}) {
		rf = plan.DefaultRecoveryFactor
	}
	pl, err := plan.New(len(blob), geom, rf)
	if err != nil {
		return plan.Plan{}, err
	}

	docID := opts.DocumentID
	if docID == 0 {
		if docID, err = payload.NewDocumentID(); err != nil {
			return plan.Plan{}, err
		}
	}

	data, err := erasure.Split(blob, pl.K, pl.ShardSize)
	if err != nil {
		return plan.Plan{}, err
	}
	coder, err := erasure.New(pl.K, pl.R, pl.ShardSize)
	if err != nil {
		return plan.Plan{}, err
	}
	recovery, err := coder.Encode(data)
	if err != nil {
		return plan.Plan{}, err
	}
	shards := append(data, recovery...)

	meta := &payload.Metadata{
		DocumentID: docID,
		K:          uint32(pl.K),
		R:          uint32(pl.R),
		ShardSize:  uint32(pl.ShardSize),
		BlobLen:    uint64(len(blob)),
		Descriptor: opts.Descriptor,
	}
	metaText, err := payload.EncodeText(meta)
	if err != nil {
		return plan.Plan{}, err
	}

	for _, slot := range pl.Placements(geom) {
		var text string
		kind := CellLarge
		if slot.Small {
			kind = CellSmall
			text = metaText
		} else {
			sh := &payload.Shard{DocumentID: docID, Index: slot.Shard, Data: shards[slot.Shard]}
			if text, err = payload.EncodeText(sh); err != nil {
				return plan.Plan{}, err
			}
		}
		sym, err := enc.EncodeSymbol(text, kind)
		if err != nil {
			return plan.Plan{}, fmt.Errorf("document: encode symbol for page %d slot %d: %w", slot.Page, slot.Index, err)
		}
		if err := sink.Place(slot.Page, slot.Index, kind, sym); err != nil {
			return plan.Plan{}, fmt.Errorf("document: place symbol on page %d slot %d: %w", slot.Page, slot.Index, err)
		}
	}
	return pl, sink.Flush()
}

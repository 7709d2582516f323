// pkg/payload/payload.go
// Binary framing for the bytes carried by one QR symbol.
package payload

import (
	"bytes"
	"crypto/rand"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/glycerine/base58"
)

// Magic opens every payload on the wire.
const Magic = "PBAK"

// FormatVersion is the only version this build reads or writes.
// Unknown versions are refused; there are no silent upgrades.
const FormatVersion = 1

// Kind tags the two payload variants.
type Kind byte

const (
	KindMetadata Kind = 'M'
	KindShard    Kind = 'S'
)

const (
	headerLen   = 4 + 1 + 8 + 1 // magic, version, document id, kind
	checksumLen = 8             // SHA-512 truncated to its first 8 bytes
	metaBodyLen = 4 + 4 + 4 + 8 // k, r, shard_size, blob_len; descriptor follows
	shardHdrLen = 4             // shard_index

	// MaxDescriptorLen bounds the metadata descriptor (u16 length prefix).
	MaxDescriptorLen = 1<<16 - 1
)

// Framing errors, in the order parsing can raise them.
var (
	ErrTruncated        = errors.New("payload: truncated")
	ErrBadMagic         = errors.New("payload: bad magic")
	ErrUnknownVersion   = errors.New("payload: unknown format version")
	ErrChecksumMismatch = errors.New("payload: checksum mismatch")
	ErrBadKind          = errors.New("payload: unrecognized kind")

	// ErrBadShardIndex names a shard index outside 0..k+r, which is only
	// detectable once a shard payload is paired with its document's
	// metadata. Parse never returns it.
	ErrBadShardIndex = errors.New("payload: shard index out of range")
)

// Payload is the tagged union carried by one QR symbol: *Metadata or *Shard.
type Payload interface {
	DocID() uint64
	PayloadKind() Kind
	Marshal() ([]byte, error)
}

// Metadata is the document header. Every page duplicates it, and all
// copies within one document are byte-identical.
type Metadata struct {
	DocumentID uint64
	K          uint32 // data shard count
	R          uint32 // recovery shard count
	ShardSize  uint32 // bytes per shard, excluding framing
	BlobLen    uint64 // exact length of the original input
	Descriptor string // human-readable build info; not consulted on restore
}

// Shard carries exactly one erasure-coded shard. Indices 0..k-1 are data
// shards, k..k+r-1 recovery shards.
type Shard struct {
	DocumentID uint64
	Index      uint32
	Data       []byte
}

func (m *Metadata) DocID() uint64     { return m.DocumentID }
func (m *Metadata) PayloadKind() Kind { return KindMetadata }
func (s *Shard) DocID() uint64        { return s.DocumentID }
func (s *Shard) PayloadKind() Kind    { return KindShard }

// TotalShards returns k+r.
func (m *Metadata) TotalShards() uint32 { return m.K + m.R }

// Marshal serializes the metadata payload. Serialization is
// deterministic: identical fields produce identical bytes.
func (m *Metadata) Marshal() ([]byte, error) {
	if len(m.Descriptor) > MaxDescriptorLen {
		return nil, fmt.Errorf("payload: descriptor too long (%d bytes)", len(m.Descriptor))
	}
	buf := make([]byte, 0, headerLen+metaBodyLen+2+len(m.Descriptor)+checksumLen)
	buf = appendHeader(buf, m.DocumentID, KindMetadata)
	buf = binary.BigEndian.AppendUint32(buf, m.K)
	buf = binary.BigEndian.AppendUint32(buf, m.R)
	buf = binary.BigEndian.AppendUint32(buf, m.ShardSize)
	buf = binary.BigEndian.AppendUint64(buf, m.BlobLen)
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(m.Descriptor)))
	buf = append(buf, m.Descriptor...)
	return appendChecksum(buf), nil
}

// Marshal serializes the shard payload.
func (s *Shard) Marshal() ([]byte, error) {
	if len(s.Data) == 0 {
		return nil, fmt.Errorf("payload: empty shard %d", s.Index)
	}
	buf := make([]byte, 0, headerLen+shardHdrLen+len(s.Data)+checksumLen)
	buf = appendHeader(buf, s.DocumentID, KindShard)
	buf = binary.BigEndian.AppendUint32(buf, s.Index)
	buf = append(buf, s.Data...)
	return appendChecksum(buf), nil
}

func appendHeader(buf []byte, docID uint64, kind Kind) []byte {
	buf = append(buf, Magic...)
	buf = append(buf, FormatVersion)
	buf = binary.BigEndian.AppendUint64(buf, docID)
	return append(buf, byte(kind))
}

func appendChecksum(buf []byte) []byte {
	sum := sha512.Sum512(buf)
	return append(buf, sum[:checksumLen]...)
}

// Parse reads one framed payload back. It validates magic, version and
// the trailing checksum before looking at the body, so any single-bit
// corruption is refused with one of the framing errors above.
func Parse(b []byte) (Payload, error) {
	if len(b) < len(Magic) {
		return nil, ErrTruncated
	}
	if !bytes.Equal(b[:len(Magic)], []byte(Magic)) {
		return nil, ErrBadMagic
	}
	if len(b) < headerLen+checksumLen {
		return nil, ErrTruncated
	}
	if b[4] != FormatVersion {
		return nil, ErrUnknownVersion
	}
	body, trailer := b[:len(b)-checksumLen], b[len(b)-checksumLen:]
	sum := sha512.Sum512(body)
	if !bytes.Equal(sum[:checksumLen], trailer) {
		return nil, ErrChecksumMismatch
	}

	docID := binary.BigEndian.Uint64(b[5:13])
	rest := body[headerLen:]
	switch Kind(b[13]) {
	case KindMetadata:
		return parseMetadata(docID, rest)
	case KindShard:
		return parseShard(docID, rest)
	default:
		return nil, ErrBadKind
	}
}

func parseMetadata(docID uint64, body []byte) (*Metadata, error) {
	if len(body) < metaBodyLen+2 {
		return nil, ErrTruncated
	}
	m := &Metadata{
		DocumentID: docID,
		K:          binary.BigEndian.Uint32(body[0:4]),
		R:          binary.BigEndian.Uint32(body[4:8]),
		ShardSize:  binary.BigEndian.Uint32(body[8:12]),
		BlobLen:    binary.BigEndian.Uint64(body[12:20]),
	}
	dlen := int(binary.BigEndian.Uint16(body[20:22]))
	if len(body) != metaBodyLen+2+dlen {
		return nil, ErrTruncated
	}
	m.Descriptor = string(body[22 : 22+dlen])
	return m, nil
}

func parseShard(docID uint64, body []byte) (*Shard, error) {
	if len(body) < shardHdrLen+1 {
		return nil, ErrTruncated
	}
	data := make([]byte, len(body)-shardHdrLen)
	copy(data, body[shardHdrLen:])
	return &Shard{
		DocumentID: docID,
		Index:      binary.BigEndian.Uint32(body[0:4]),
		Data:       data,
	}, nil
}

// EncodeText frames the payload and applies the base58 text step, the
// form handed to the QR encoder.
func EncodeText(p Payload) (string, error) {
	raw, err := p.Marshal()
	if err != nil {
		return "", err
	}
	return base58.Encode(raw), nil
}

// DecodeText reverses EncodeText. The base58 step swallows garbage by
// returning an empty buffer, which Parse refuses as truncated.
func DecodeText(s string) (Payload, error) {
	return Parse(base58.Decode(s))
}

// NewDocumentID draws a random 64-bit document id. 64 bits of entropy
// keeps independently-created documents from colliding at human scales.
func NewDocumentID() (uint64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("payload: read random document id: %w", err)
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

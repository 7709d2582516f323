// pkg/document/document.go
// Encode and decode pipelines for one paper archive document. The
// package knows nothing about PDFs, pixels or the filesystem; it talks
// to the outside through the QrEncoder, PageSink and QrDecoder
// capabilities below.
package document

import (
	"image"

	"github.com/dattu/paperback/pkg/plan"
)

// CellKind distinguishes the two QR cell sizes on a page.
type CellKind uint8

const (
	// CellLarge holds one shard payload.
	CellLarge CellKind = iota
	// CellSmall holds the duplicated metadata payload.
	CellSmall
)

// QrEncoder renders one base58 payload string into a QR symbol. The
// encoder picks the smallest QR version that fits at the configured
// module size.
type QrEncoder interface {
	EncodeSymbol(text string, kind CellKind) (image.Image, error)
}

// PageSink exposes the printable page geometry and accepts rendered
// symbols keyed by (page, slot). Flush commits the pages to whatever
// surface the sink writes.
type PageSink interface {
	Geometry() plan.Geometry
	Place(page, slot int, kind CellKind, sym image.Image) error
	Flush() error
}

// QrDecoder yields every recognized QR content string from one raster
// image, in no particular order and with no de-duplication.
type QrDecoder interface {
	DecodeImage(img image.Image) []string
}

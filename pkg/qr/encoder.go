// pkg/qr/encoder.go
// QR symbol rasterization behind the document.QrEncoder capability.
package qr

import (
	"fmt"
	"image"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/dattu/paperback/pkg/document"
)

// Encoder renders base58 payload strings as QR symbol images. The
// underlying library picks the smallest QR version that fits, which is
// at most the version the layout budgeted for.
type Encoder struct {
	level ECLevel
	// pixels drawn per QR module; the sink maps modules to physical
	// millimetres, so this only affects raster resolution
	scale int
}

// NewEncoder creates an encoder at the given error correction level
// drawing 'scale' pixels per module.
func NewEncoder(level ECLevel, scale int) *Encoder {
	if scale < 1 {
		scale = 1
	}
	return &Encoder{level: level, scale: scale}
}

func (e *Encoder) recoveryLevel() qrcode.RecoveryLevel {
	switch e.level {
	case ECLow:
		return qrcode.Low
	case ECMedium:
		return qrcode.Medium
	case ECQuartile:
		return qrcode.High
	default:
		return qrcode.Highest
	}
}

// EncodeSymbol implements document.QrEncoder. The returned image
// includes the standard four-module quiet zone.
func (e *Encoder) EncodeSymbol(text string, kind document.CellKind) (image.Image, error) {
	q, err := qrcode.New(text, e.recoveryLevel())
	if err != nil {
		return nil, fmt.Errorf("qr: encode %d characters: %w", len(text), err)
	}
	return q.Image(-e.scale), nil
}

// pkg/qr/decoder.go
// QR detection from raster images behind the document.QrDecoder
// capability.
package qr

import (
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/multi"
	zxqrcode "github.com/makiuchi-d/gozxing/multi/qrcode"
)

// Decoder extracts QR contents from scanned page images.
type Decoder struct {
	reader multi.MultipleBarcodeReader
	hints  map[gozxing.DecodeHintType]interface{}
}

// NewDecoder creates a decoder that tries hard: scans are skewed,
// smudged and photographed at an angle.
func NewDecoder() *Decoder {
	return &Decoder{
		reader: zxqrcode.NewQRCodeMultiReader(),
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}
}

// DecodeImage implements document.QrDecoder. It returns every QR content
// recognized in the image; an image with no readable code yields an
// empty slice, never an error, since unreadable regions are expected on
// paper scans.
func (d *Decoder) DecodeImage(img image.Image) []string {
	src := gozxing.NewLuminanceSourceFromImage(img)
	bmp, err := gozxing.NewBinaryBitmap(gozxing.NewHybridBinarizer(src))
	if err != nil {
		return nil
	}
	results, err := d.reader.DecodeMultiple(bmp, d.hints)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.GetText())
	}
	return out
}
